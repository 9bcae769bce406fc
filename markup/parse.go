package markup

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/xfunc/log"
)

// DefaultMaxDepth is the default limit on tag nesting.
const DefaultMaxDepth = 100

// Option configures parsing.
type Option func(*parser)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// WithMaxDepth sets the maximum tag nesting depth.
// Values less than 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		p.maxDepth = depth
	}
}

// Parse extracts the first tag subtree from s and returns it along with the
// unconsumed remainder of s.
//
// If s contains nothing but whitespace, Parse returns a nil node, an empty
// remainder and a nil error. Positions in returned nodes and errors are
// relative to the start of s.
func Parse(
	ctx context.Context,
	s string,
	opts ...Option,
) (node *Node, rest string, err error) {
	p := newParser(s, opts...)

	node, err = p.next()
	if err != nil {
		return nil, s, err
	}

	if node == nil {
		return nil, "", nil
	}

	p.logger.TraceContext(ctx, "markup element parsed",
		slog.String("name", node.Name),
		slog.Int("offset", p.pos),
	)

	return node, s[p.pos:], nil
}

// ParseString parses every top-level tag subtree in s, in document order.
func ParseString(ctx context.Context, s string, opts ...Option) ([]*Node, error) {
	p := newParser(s, opts...)

	var nodes []*Node

	for {
		node, err := p.next()
		if err != nil {
			return nil, err
		}

		if node == nil {
			break
		}

		nodes = append(nodes, node)
	}

	p.logger.TraceContext(ctx, "markup parse complete",
		slog.Int("element_count", len(nodes)),
		slog.Int("bytes", len(s)),
	)

	return nodes, nil
}

// ParseReader reads all of r and parses it with [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) ([]*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// parser holds the parser state.
type parser struct {
	input    []byte
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int
	logger   log.Logger
}

func newParser(s string, opts ...Option) *parser {
	p := &parser{
		input:    []byte(s),
		line:     1,
		col:      1,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// next returns the next top-level element, or nil at end of input.
func (p *parser) next() (*Node, error) {
	p.skipWhitespace()

	if p.eof() {
		return nil, nil
	}

	if p.peek() != '<' {
		return nil, ErrUntaggedContent.WithPosition(p.position()).
			Wrapf("found %q outside of any tag", p.excerpt())
	}

	if p.peekN(2) == "</" {
		return nil, ErrUnexpectedClose.WithPosition(p.position()).
			Wrapf("%s has no open element", p.excerpt())
	}

	return p.parseElement()
}

// parseElement parses an element starting at its opening '<'.
func (p *parser) parseElement() (*Node, error) {
	pos := p.position()

	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	p.advance() // skip '<'

	raw, err := p.parseName()
	if err != nil {
		return nil, err
	}

	node := &Node{Name: strings.ToLower(raw), Pos: pos}

	open, err := p.parseAttrs(node)
	if err != nil {
		return nil, err
	}

	if !open {
		node.SelfClosing = true

		return node, nil
	}

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, ErrUnterminatedTag.WithPosition(pos).
				Wrapf("<%s> is never closed", raw)
		}

		if p.peek() != '<' {
			return nil, ErrUntaggedContent.WithPosition(p.position()).
				Wrapf("found %q inside <%s>", p.excerpt(), raw)
		}

		if p.peekN(2) == "</" {
			return node, p.parseClose(raw)
		}

		child, err := p.parseElement()
		if err != nil {
			return nil, err
		}

		node.Children = append(node.Children, child)
	}
}

// parseClose consumes a closing tag that must match the opening tag name
// exactly as written.
func (p *parser) parseClose(open string) error {
	pos := p.position()

	p.advance() // skip '<'
	p.advance() // skip '/'

	name, err := p.parseName()
	if err != nil {
		return err
	}

	p.skipWhitespace()

	switch {
	case p.eof():
		return ErrUnterminatedTag.WithPosition(pos).
			Wrapf("</%s is missing '>'", name)

	case p.peek() != '>':
		return ErrInvalidAttribute.WithPosition(p.position()).
			Wrapf("closing tag </%s> cannot have attributes", name)
	}

	p.advance() // skip '>'

	if name != open {
		return ErrMismatchedTag.WithPosition(pos).
			With(slog.String("open", open), slog.String("close", name)).
			Wrapf("</%s> does not close <%s>", name, open)
	}

	return nil
}

// parseAttrs consumes attributes up to and including the end of the opening
// tag. It reports whether the element is open (">") rather than
// self-closing ("/>").
func (p *parser) parseAttrs(node *Node) (open bool, err error) {
	for {
		p.skipWhitespace()

		if p.eof() {
			return false, ErrUnterminatedTag.WithPosition(node.Pos).
				Wrapf("<%s is missing '>'", node.Name)
		}

		switch ch := p.peek(); {
		case ch == '>':
			p.advance()

			return true, nil

		case ch == '/':
			if p.peekN(2) != "/>" {
				return false, ErrStrayBracket.WithPosition(p.position()).
					Wrapf("'/' in <%s> not followed by '>'", node.Name)
			}

			p.advance()
			p.advance()

			return false, nil

		case ch == '<':
			return false, ErrStrayBracket.WithPosition(p.position()).
				Wrapf("'<' inside <%s>", node.Name)

		case isNameStart(ch):
			attr, err := p.parseAttr()
			if err != nil {
				return false, err
			}

			if node.HasAttr(attr.Key) {
				return false, ErrDuplicateAttribute.WithPosition(attr.Pos).
					With(slog.String("tag", node.Name)).
					Wrapf("%q declared more than once in <%s>", attr.Key, node.Name)
			}

			node.Attrs = append(node.Attrs, attr)

		default:
			return false, ErrInvalidAttribute.WithPosition(p.position()).
				Wrapf("unexpected %q in <%s>", ch, node.Name)
		}
	}
}

// parseAttr parses: Name '=' Value.
func (p *parser) parseAttr() (Attr, error) {
	pos := p.position()

	key, err := p.parseName()
	if err != nil {
		return Attr{}, err
	}

	key = strings.ToLower(key)

	p.skipWhitespace()

	if !p.expect('=') {
		return Attr{}, ErrInvalidAttribute.WithPosition(p.position()).
			Wrapf("attribute %q is missing '='", key)
	}

	p.skipWhitespace()

	value, err := p.parseValue(key)
	if err != nil {
		return Attr{}, err
	}

	return Attr{Key: key, Value: value, Pos: pos}, nil
}

// parseValue parses a single- or double-quoted value, or an unquoted run of
// letters, digits, '.', '-', '+' and '_'.
func (p *parser) parseValue(key string) (string, error) {
	pos := p.position()

	switch quote := p.peek(); quote {
	case '"', '\'':
		p.advance()

		start := p.pos

		for !p.eof() && p.peek() != quote {
			p.advance()
		}

		if p.eof() {
			return "", ErrUnterminatedQuote.WithPosition(pos).
				Wrapf("value of %q opened with %c", key, quote)
		}

		value := string(p.input[start:p.pos])

		p.advance() // skip closing quote

		return value, nil
	}

	start := p.pos

	for !p.eof() && isBareValue(p.peek()) {
		p.advance()
	}

	if p.pos == start {
		return "", ErrInvalidAttribute.WithPosition(pos).
			Wrapf("attribute %q has no value", key)
	}

	return string(p.input[start:p.pos]), nil
}

// parseName parses a letter followed by letters and digits.
func (p *parser) parseName() (string, error) {
	start := p.pos

	if !isNameStart(p.peek()) {
		return "", ErrInvalidName.WithPosition(p.position()).
			Wrapf("expected a name, found %q", p.excerpt())
	}

	p.advance()

	for !p.eof() && isNameContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// excerpt returns a short prefix of the unconsumed input for messages.
func (p *parser) excerpt() string {
	const n = 16

	s := p.peekN(n)
	if i := strings.IndexFunc(s, unicode.IsSpace); i > 0 {
		s = s[:i]
	}

	return s
}

// Character classification

func isNameStart(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isNameContinue(r rune) bool {
	return isNameStart(r) || ('0' <= r && r <= '9')
}

func isBareValue(r rune) bool {
	return isNameContinue(r) || r == '.' || r == '-' || r == '+' || r == '_'
}
