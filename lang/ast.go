package lang

import (
	"iter"
	"math"
)

// Family groups operators by operand shape.
type Family int

const (
	FamilyConst Family = iota
	FamilyArg
	FamilyUnary
	FamilyBinary
	FamilyVariadic
)

// String returns the name of the family.
func (f Family) String() string {
	switch f {
	case FamilyConst:
		return "const"
	case FamilyArg:
		return "arg"
	case FamilyUnary:
		return "unary"
	case FamilyBinary:
		return "binary"
	case FamilyVariadic:
		return "variadic"
	default:
		return "unknown"
	}
}

// Op identifies the operation performed by a [Node].
type Op int

const (
	OpConst Op = iota
	OpArg

	// Unary operators.
	OpNeg
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpDeg
	OpRad
	OpAbs
	OpSqrt
	OpExp
	OpLn
	OpLog

	// Binary operators.
	OpSub
	OpDiv
	OpPow
	OpMod
	OpAtan2

	// Variadic operators.
	OpAdd
	OpMult

	opCount
)

// opTags maps each operator to the tag that spells it. Constants are
// spelled by their type keyword instead.
var opTags = [opCount]string{
	OpConst: "const",
	OpArg:   "arg",
	OpNeg:   "neg",
	OpSin:   "sin",
	OpCos:   "cos",
	OpTan:   "tan",
	OpAsin:  "asin",
	OpAcos:  "acos",
	OpAtan:  "atan",
	OpDeg:   "deg",
	OpRad:   "rad",
	OpAbs:   "abs",
	OpSqrt:  "sqrt",
	OpExp:   "exp",
	OpLn:    "ln",
	OpLog:   "log",
	OpSub:   "sub",
	OpDiv:   "div",
	OpPow:   "pow",
	OpMod:   "mod",
	OpAtan2: "atan2",
	OpAdd:   "add",
	OpMult:  "mult",
}

// constTags maps the literal tag synonyms to the type they produce.
var constTags = map[string]Type{
	"double":  TypeFloat,
	"float":   TypeFloat,
	"real":    TypeFloat,
	"integer": TypeInteger,
	"int":     TypeInteger,
}

// String returns the tag name of the operator.
func (o Op) String() string {
	if o < 0 || o >= opCount {
		return "unknown"
	}

	return opTags[o]
}

// Family returns the operand shape of the operator.
func (o Op) Family() Family {
	switch {
	case o == OpConst:
		return FamilyConst
	case o == OpArg:
		return FamilyArg
	case o <= OpLog:
		return FamilyUnary
	case o <= OpAtan2:
		return FamilyBinary
	default:
		return FamilyVariadic
	}
}

// lookupOp returns the operator spelled by tag. Literal tags report
// [OpConst] along with the literal's type.
func lookupOp(tag string) (Op, Type, bool) {
	if typ, ok := constTags[tag]; ok {
		return OpConst, typ, true
	}

	for op := OpArg; op < opCount; op++ {
		if opTags[op] == tag {
			return op, TypeFloat, true
		}
	}

	return 0, 0, false
}

const defaultLogBase = 10

// Node is a node of a built expression tree.
//
// Which fields are meaningful depends on Op:
//
//   - OpConst: Value
//   - OpArg: Index
//   - OpLog: Operands[0], Base and Scale, which is 1/ln(Base)
//   - other unary operators: Operands[0]
//   - binary operators: Operands[0] and Operands[1]
//   - variadic operators: one or more Operands
//
// Each node exclusively owns its operands. A built tree is never mutated.
type Node struct {
	Operands []*Node
	Value    Number
	Base     float64
	Scale    float64
	Index    int
	Op       Op
}

// NewConst returns a literal node.
func NewConst(v Number) *Node { return &Node{Op: OpConst, Value: v} }

// NewArg returns a node referencing argument i.
func NewArg(i int) *Node { return &Node{Op: OpArg, Index: i} }

// NewLog returns a logarithm node with the given base.
func NewLog(base float64, x *Node) *Node {
	return &Node{
		Op:       OpLog,
		Base:     base,
		Scale:    1 / math.Log(base),
		Operands: []*Node{x},
	}
}

// NewOp returns an operator node. The caller is responsible for supplying
// the number of operands the operator's family requires.
func NewOp(op Op, operands ...*Node) *Node {
	if op == OpLog && len(operands) == 1 {
		return NewLog(defaultLogBase, operands[0])
	}

	return &Node{Op: op, Operands: operands}
}

// All returns an iterator over n and its descendants in pre-order.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, o := range n.Operands {
		if !o.walk(yield) {
			return false
		}
	}

	return true
}

// Depth returns the height of the tree rooted at n. A leaf has depth 1.
func (n *Node) Depth() int {
	d := 0
	for _, o := range n.Operands {
		d = max(d, o.Depth())
	}

	return d + 1
}
