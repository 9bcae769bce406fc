package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/xfunc/log"
	"github.com/ardnew/xfunc/markup"
)

const (
	tagFunc  = "func"
	attrFunc = "name"
)

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = markup.DefaultMaxDepth

// Option configures parsing and building of a [Program].
type Option func(*config)

type config struct {
	logger   log.Logger
	maxDepth int
	search   []string
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithLogger sets the logger used for trace output while parsing and
// building. The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxDepth sets the maximum nesting depth of markup and expressions.
// Values less than 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithSearchPath sets directories that [Load] searches for relative source
// paths, after the working directory.
func WithSearchPath(dirs ...string) Option {
	return func(c *config) { c.search = dirs }
}

// Function is a built expression paired with the argument table used to
// validate and interpret calls to it.
type Function struct {
	Name  string
	Args  *ArgDefs
	Root  *Node
	Index int
}

// Signature returns a description of the function's parameters, such as
// "area(int w, double h)". Unnamed functions are identified by index.
func (f *Function) Signature() string {
	return f.Ident() + f.Args.String()
}

// Ident returns the function's name, or "#i" for an unnamed function at
// index i.
func (f *Function) Ident() string {
	if f.Name != "" {
		return f.Name
	}

	return "#" + strconv.Itoa(f.Index)
}

// Call validates args against the function's declared arguments and
// evaluates it.
//
// At least as many arguments as declared are required; extra arguments are
// ignored. A Float argument for an Integer slot is an error. An Integer
// argument for a Float slot is widened.
func (f *Function) Call(args ...Number) (Number, error) {
	args, err := f.check(args)
	if err != nil {
		return Number{}, err
	}

	return f.Root.Eval(args), nil
}

func (f *Function) check(args []Number) ([]Number, error) {
	n := f.Args.Len()
	if len(args) < n {
		return nil, ErrArgCount.
			With(slog.String("func", f.Ident())).
			Wrapf("%s requires %d arguments, have %d", f.Signature(), n, len(args))
	}

	widened, copied := args, false

	for i := range n {
		switch typ := f.Args.Type(i); {
		case typ == TypeInteger && !args[i].IsInteger():
			return nil, ErrArgTypeMismatch.
				With(slog.String("func", f.Ident()), slog.Int("index", i)).
				Wrapf("argument %d of %s is %s, have %s %s",
					i, f.Signature(), typ, args[i].Type(), args[i])

		case typ == TypeFloat && args[i].IsInteger():
			if !copied {
				widened, copied = append([]Number(nil), args...), true
			}

			widened[i] = args[i].As(TypeFloat)
		}
	}

	return widened, nil
}

// Program is a set of functions built from one source document.
//
// A Program is read-only once built; its functions may be evaluated
// concurrently.
type Program struct {
	funcs  []*Function
	index  map[string]int
	digest uint64
}

// ParseString builds a program from source text.
//
// The text holds either a single function, an <arglist> followed by one
// expression, or any number of <func> elements optionally sharing a
// top-level <arglist>. Declarations and comments are ignored.
func ParseString(ctx context.Context, src string, opts ...Option) (*Program, error) {
	c := makeConfig(opts...)

	text, err := markup.Strip(src)
	if err != nil {
		return nil, ErrStructure.Wrap(err)
	}

	nodes, err := markup.ParseString(ctx, text,
		markup.WithLogger(c.logger),
		markup.WithMaxDepth(c.maxDepth),
	)
	if err != nil {
		return nil, ErrStructure.Wrap(err)
	}

	prog, err := build(ctx, c, nodes)
	if err != nil {
		return nil, err
	}

	prog.digest = xxh3.HashString(src)

	c.logger.TraceContext(ctx, "program built",
		slog.Int("functions", prog.Len()),
		slog.Int("bytes", len(src)),
		slog.String("digest", strconv.FormatUint(prog.digest, 36)),
	)

	return prog, nil
}

// ParseReader reads all of r and builds a program with [ParseString].
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

func build(ctx context.Context, c config, nodes []*markup.Node) (*Program, error) {
	prog := &Program{index: make(map[string]int)}

	multi := false

	for _, n := range nodes {
		if n.Name == tagFunc {
			multi = true

			break
		}
	}

	if !multi {
		return prog, prog.buildSingle(ctx, c, nodes)
	}

	return prog, prog.buildMulti(ctx, c, nodes)
}

// buildSingle builds the form: <arglist>...</arglist> <expr/>.
func (p *Program) buildSingle(ctx context.Context, c config, nodes []*markup.Node) error {
	if len(nodes) == 0 {
		return ErrMissingArgList.Wrapf("empty document")
	}

	defs, err := BuildArgDefs(nodes[0])
	if err != nil {
		return err
	}

	root, err := p.buildRoot(ctx, c, nil, nodes[0], nodes[1:], defs)
	if err != nil {
		return err
	}

	return p.add(ctx, c, "", root, defs)
}

// buildMulti builds the form: [<arglist>] <func name="f">[<arglist>] <expr/></func>...
func (p *Program) buildMulti(ctx context.Context, c config, nodes []*markup.Node) error {
	var shared *ArgDefs

	for _, n := range nodes {
		switch n.Name {
		case tagFunc:
		case tagArgList:
			if shared != nil {
				return unexpected(n, "only one shared <%s> is allowed", tagArgList)
			}

			defs, err := BuildArgDefs(n)
			if err != nil {
				return err
			}

			shared = defs
		default:
			return unexpected(n, "top-level element must be <%s> or <%s>",
				tagFunc, tagArgList)
		}
	}

	for _, n := range nodes {
		if n.Name != tagFunc {
			continue
		}

		var name string

		for _, a := range n.Attrs {
			if a.Key != attrFunc {
				return ErrUnknownAttribute.
					With(slog.String("tag", n.Name)).
					Wrapf("%s: <%s>: %q is not valid here", n.Pos, n.Name, a.Key)
			}

			name = strings.TrimSpace(a.Value)
		}

		defs, body := shared, n.Children
		if len(body) > 0 && body[0].Name == tagArgList {
			private, err := BuildArgDefs(body[0])
			if err != nil {
				return err
			}

			defs, body = private, body[1:]
		}

		if defs == nil {
			return ErrMissingArgList.
				Wrapf("%s: <%s name=%q> has no <%s> and none is shared",
					n.Pos, tagFunc, name, tagArgList)
		}

		root, err := p.buildRoot(ctx, c, n, n, body, defs)
		if err != nil {
			return err
		}

		if err := p.add(ctx, c, name, root, defs); err != nil {
			return err
		}
	}

	return nil
}

// buildRoot builds the single expression in body. owner is the element
// enclosing body, or nil at the top level; after is the element preceding
// body and is used to position errors.
func (p *Program) buildRoot(
	ctx context.Context,
	c config,
	owner, after *markup.Node,
	body []*markup.Node,
	defs *ArgDefs,
) (*Node, error) {
	where := "document"
	if owner != nil {
		where = "<" + owner.Name + ">"
	}

	switch {
	case len(body) == 0:
		return nil, ErrMissingRoot.
			Wrapf("%s: %s has no expression after <%s>", after.Pos, where, tagArgList)

	case len(body) > 1:
		return nil, ErrMultipleRoots.
			Wrapf("%s: %s has more than one expression", body[1].Pos, where)

	case body[0].Name == tagArgList || body[0].Name == tagFunc:
		return nil, unexpected(body[0], "<%s> is not an expression", body[0].Name)
	}

	b := &builder{
		ctx:      ctx,
		logger:   c.logger,
		defs:     defs,
		maxDepth: c.maxDepth,
	}

	return b.build(body[0])
}

func (p *Program) add(
	ctx context.Context,
	c config,
	name string,
	root *Node,
	defs *ArgDefs,
) error {
	if name != "" {
		if _, dup := p.index[name]; dup {
			return ErrDuplicateFunc.
				With(slog.String("name", name)).
				Wrapf("%q is already defined", name)
		}

		p.index[name] = len(p.funcs)
	}

	fn := &Function{Name: name, Args: defs, Root: root, Index: len(p.funcs)}
	p.funcs = append(p.funcs, fn)

	c.logger.TraceContext(ctx, "function defined",
		slog.String("signature", fn.Signature()),
		slog.Int("depth", root.Depth()),
	)

	return nil
}

func unexpected(n *markup.Node, format string, args ...any) *Error {
	return ErrUnexpectedTag.
		With(slog.String("tag", n.Name)).
		Wrapf("%s: "+format, append([]any{n.Pos}, args...)...)
}

// Digest returns a hash of the source text p was built from.
func (p *Program) Digest() uint64 { return p.digest }

// Len returns the number of functions in p.
func (p *Program) Len() int { return len(p.funcs) }

// Functions returns an iterator over the functions of p in declaration
// order.
func (p *Program) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, f := range p.funcs {
			if !yield(f) {
				return
			}
		}
	}
}

// Func returns the function at index i.
func (p *Program) Func(i int) (*Function, error) {
	if i < 0 || i >= len(p.funcs) {
		return nil, ErrFuncIndex.
			With(slog.Int("index", i)).
			Wrapf("index %d not in [0, %d)", i, len(p.funcs))
	}

	return p.funcs[i], nil
}

// Lookup returns the function with the given name.
func (p *Program) Lookup(name string) (*Function, error) {
	i, ok := p.index[name]
	if !ok {
		return nil, ErrFuncName.
			With(slog.String("name", name)).
			Wrapf("%q is not defined", name)
	}

	return p.funcs[i], nil
}

// Only returns the program's function if it has exactly one.
func (p *Program) Only() (*Function, error) {
	switch len(p.funcs) {
	case 0:
		return nil, ErrNoFunctions
	case 1:
		return p.funcs[0], nil
	default:
		return nil, ErrAmbiguousCall.Wrapf(
			"program defines %d functions; select one by name or index",
			len(p.funcs))
	}
}

// Select returns the function identified by sel: a declared name, a
// zero-based index optionally prefixed with '#', or the empty string when
// the program has exactly one function. Names take precedence.
func (p *Program) Select(sel string) (*Function, error) {
	if sel == "" {
		return p.Only()
	}

	if f, err := p.Lookup(sel); err == nil {
		return f, nil
	}

	num := sel
	if num[0] == '#' {
		num = num[1:]
	}

	if i, err := strconv.Atoi(num); err == nil {
		return p.Func(i)
	}

	return p.Lookup(sel)
}

// Eval calls the program's only function.
func (p *Program) Eval(args ...Number) (Number, error) {
	f, err := p.Only()
	if err != nil {
		return Number{}, err
	}

	return f.Call(args...)
}

// EvalIndex calls the function at index i.
func (p *Program) EvalIndex(i int, args ...Number) (Number, error) {
	f, err := p.Func(i)
	if err != nil {
		return Number{}, err
	}

	return f.Call(args...)
}

// EvalName calls the function with the given name.
func (p *Program) EvalName(name string, args ...Number) (Number, error) {
	f, err := p.Lookup(name)
	if err != nil {
		return Number{}, err
	}

	return f.Call(args...)
}
