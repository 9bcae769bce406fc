package lang

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/ardnew/xfunc/log"
	"github.com/ardnew/xfunc/markup"
)

// Attribute keys recognized on expression tags.
const (
	attrValue = "value"
	attrIndex = "index"
	attrName  = "name"
	attrArg   = "arg"
	attrArg1  = "arg1"
	attrArg2  = "arg2"
	attrBase  = "base"
)

// BuildExpr builds an expression tree from a markup element, resolving
// argument references against defs.
func BuildExpr(
	ctx context.Context,
	node *markup.Node,
	defs *ArgDefs,
	opts ...Option,
) (*Node, error) {
	c := makeConfig(opts...)

	b := &builder{
		ctx:      ctx,
		logger:   c.logger,
		defs:     defs,
		maxDepth: c.maxDepth,
	}

	return b.build(node)
}

// builder converts markup elements into expression nodes.
type builder struct {
	ctx      context.Context
	logger   log.Logger
	defs     *ArgDefs
	maxDepth int
	depth    int
}

func (b *builder) build(n *markup.Node) (*Node, error) {
	b.depth++
	defer func() { b.depth-- }()

	if b.depth > b.maxDepth {
		return nil, b.fail(n, ErrMaxDepthExceeded, "nesting exceeds %d", b.maxDepth)
	}

	op, typ, ok := lookupOp(n.Name)
	if !ok {
		return nil, b.fail(n, ErrUnknownOperator, "no operator named %q", n.Name)
	}

	switch op.Family() {
	case FamilyConst:
		return b.buildConst(n, typ)
	case FamilyArg:
		return b.buildArg(n)
	default:
		return b.buildOp(n, op)
	}
}

// buildConst builds a literal: <double value="1.5"/>.
func (b *builder) buildConst(n *markup.Node, typ Type) (*Node, error) {
	if err := b.checkAttrs(n, attrValue); err != nil {
		return nil, err
	}

	if len(n.Children) > 0 {
		return nil, b.fail(n, ErrArity, "literal cannot have child elements")
	}

	s, ok := n.Attr(attrValue)
	if !ok {
		return nil, b.fail(n, ErrInvalidLiteral, "missing %q attribute", attrValue)
	}

	v, rest, ok := scanNumber(s, typ)
	if !ok {
		return nil, b.fail(n, ErrInvalidLiteral, "%q is not a valid %s", s, typ)
	}

	if rest != "" {
		return nil, b.fail(n, ErrExtraneousData, "%q after %s literal", rest, typ)
	}

	return NewConst(v), nil
}

// buildArg builds an argument reference: <arg index="0"/> or <arg name="x"/>.
func (b *builder) buildArg(n *markup.Node) (*Node, error) {
	if err := b.checkAttrs(n, attrIndex, attrName); err != nil {
		return nil, err
	}

	if len(n.Children) > 0 {
		return nil, b.fail(n, ErrArgReference, "reference cannot have child elements")
	}

	index, hasIndex := n.Attr(attrIndex)
	name, hasName := n.Attr(attrName)

	switch {
	case hasIndex && hasName:
		return nil, b.fail(n, ErrArgReference,
			"%q and %q are mutually exclusive", attrIndex, attrName)

	case hasIndex:
		v, rest, ok := scanNumber(index, TypeInteger)
		if !ok {
			return nil, b.fail(n, ErrInvalidLiteral, "index %q is not an integer", index)
		}

		if rest != "" {
			return nil, b.fail(n, ErrExtraneousData, "%q after index", rest)
		}

		if i := v.Int(); i < 0 || i >= int64(b.defs.Len()) {
			return nil, b.fail(n, ErrArgIndex,
				"index %d not in [0, %d)", i, b.defs.Len())
		}

		return NewArg(int(v.Int())), nil

	case hasName:
		i, ok := b.defs.Lookup(strings.TrimSpace(name))
		if !ok {
			return nil, b.fail(n, ErrUnknownArgName, "%q is not declared", name)
		}

		return NewArg(i), nil

	default:
		return nil, b.fail(n, ErrArgReference,
			"requires either %q or %q", attrIndex, attrName)
	}
}

// buildOp builds a unary, binary or variadic operator. Operands come from
// the operator's positional attributes and then from its children, which
// fill the slots left empty in document order.
func (b *builder) buildOp(n *markup.Node, op Op) (*Node, error) {
	var keys []string

	switch op.Family() {
	case FamilyUnary:
		keys = []string{attrArg}
	default:
		keys = []string{attrArg1, attrArg2}
	}

	allowed := keys
	if op == OpLog {
		allowed = append([]string{attrBase}, keys...)
	}

	if err := b.checkAttrs(n, allowed...); err != nil {
		return nil, err
	}

	// Unary and binary operators have a slot per key. Variadic operators
	// have a slot per key up to the last one given.
	slots := len(keys)

	if op.Family() == FamilyVariadic {
		slots = 0

		for i, k := range keys {
			if n.HasAttr(k) {
				slots = i + 1
			}
		}
	}

	operands := make([]*Node, slots)

	for i := range slots {
		s, ok := n.Attr(keys[i])
		if !ok {
			continue
		}

		o, err := b.resolve(n, keys[i], s)
		if err != nil {
			return nil, err
		}

		operands[i] = o
	}

	children := n.Children

	for i := range operands {
		if operands[i] != nil || len(children) == 0 {
			continue
		}

		o, err := b.build(children[0])
		if err != nil {
			return nil, err
		}

		operands[i], children = o, children[1:]
	}

	if len(children) > 0 {
		if op.Family() != FamilyVariadic {
			return nil, b.fail(n, ErrArity,
				"too many operands: want %d, have %d",
				slots, slots+len(children))
		}

		for _, c := range children {
			o, err := b.build(c)
			if err != nil {
				return nil, err
			}

			operands = append(operands, o)
		}
	}

	have := 0
	for _, o := range operands {
		if o != nil {
			have++
		}
	}

	switch {
	case have < len(operands):
		return nil, b.fail(n, ErrArity,
			"too few operands: want %d, have %d", len(operands), have)

	case have == 0:
		return nil, b.fail(n, ErrArity, "too few operands: want at least 1, have 0")
	}

	if op == OpLog {
		base, err := b.logBase(n)
		if err != nil {
			return nil, err
		}

		return NewLog(base, operands[0]), nil
	}

	return NewOp(op, operands...), nil
}

// resolve interprets an attribute operand as an integer literal, a float
// literal or a declared argument name, in that order.
func (b *builder) resolve(n *markup.Node, key, s string) (*Node, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, b.fail(n, ErrInvalidLiteral, "%s is empty", key)
	}

	tok := fields[0]

	var node *Node

	if v, rest, ok := scanNumber(tok, TypeInteger); ok && rest == "" {
		node = NewConst(v)
	} else if v, rest, ok := scanNumber(tok, TypeFloat); ok {
		if rest != "" {
			return nil, b.fail(n, ErrExtraneousData, "%q after %s=%s",
				rest, key, strings.TrimSuffix(tok, rest))
		}

		node = NewConst(v)
	} else {
		i, ok := b.defs.Lookup(tok)
		if !ok {
			return nil, b.fail(n, ErrUnknownArgName,
				"%s=%q is neither a number nor a declared argument", key, tok)
		}

		node = NewArg(i)
	}

	if len(fields) > 1 {
		return nil, b.fail(n, ErrExtraneousData, "%q after %s=%s",
			strings.Join(fields[1:], " "), key, tok)
	}

	return node, nil
}

func (b *builder) logBase(n *markup.Node) (float64, error) {
	s, ok := n.Attr(attrBase)
	if !ok {
		return defaultLogBase, nil
	}

	v, rest, ok := scanNumber(s, TypeFloat)
	if !ok {
		return 0, b.fail(n, ErrLogBase, "%q is not a number", s)
	}

	if rest != "" {
		return 0, b.fail(n, ErrExtraneousData, "%q after base", rest)
	}

	base := v.Float()
	if base <= 0 || base == 1 || math.IsInf(base, 0) {
		return 0, b.fail(n, ErrLogBase,
			"base must be positive, finite and not 1, have %s", v)
	}

	return base, nil
}

// checkAttrs reports the first attribute of n whose key is not allowed.
func (b *builder) checkAttrs(n *markup.Node, allowed ...string) error {
	for _, a := range n.Attrs {
		if !slices.Contains(allowed, a.Key) {
			return b.fail(n, ErrUnknownAttribute, "%q is not valid here", a.Key)
		}
	}

	return nil
}

// fail derives an error from sentinel that identifies the offending
// element and its position.
func (b *builder) fail(
	n *markup.Node,
	sentinel *Error,
	format string,
	args ...any,
) *Error {
	err := sentinel.With(
		slog.String("tag", n.Name),
		slog.Int("line", n.Pos.Line),
		slog.Int("column", n.Pos.Column),
	).Wrapf("%s: <%s>: %s", n.Pos, n.Name, fmt.Sprintf(format, args...))

	b.logger.TraceContext(b.ctx, "build failed", slog.Any("error", err))

	return err
}
