package lang

import "math"

// Eval evaluates the tree rooted at n against args.
//
// Eval performs no validation: every [OpArg] index in the tree must be less
// than len(args). Use [Function.Call] to evaluate with argument checking.
// Eval never mutates n and may be called concurrently.
func (n *Node) Eval(args []Number) Number {
	switch n.Op {
	case OpConst:
		return n.Value

	case OpArg:
		return args[n.Index]

	case OpNeg:
		v := n.Operands[0].Eval(args)
		v.Negate()

		return v

	case OpAbs:
		v := n.Operands[0].Eval(args)
		v.Abs()

		return v

	case OpSin, OpCos, OpTan, OpAsin, OpAcos, OpAtan,
		OpDeg, OpRad, OpSqrt, OpExp, OpLn, OpLog:
		return Float(n.unary(n.Operands[0].Eval(args).Float()))

	case OpSub, OpDiv, OpMod:
		a, b := n.Operands[0].Eval(args), n.Operands[1].Eval(args)
		if a.IsInteger() && b.IsInteger() {
			if v, ok := n.integer(a.Int(), b.Int()); ok {
				return Int(v)
			}
		}

		return Float(n.binary(a.Float(), b.Float()))

	case OpPow, OpAtan2:
		a, b := n.Operands[0].Eval(args), n.Operands[1].Eval(args)

		return Float(n.binary(a.Float(), b.Float()))

	case OpAdd, OpMult:
		return n.accumulate(args)
	}

	panic("lang: invalid operator " + n.Op.String())
}

func (n *Node) unary(x float64) float64 {
	switch n.Op {
	case OpSin:
		return math.Sin(x)
	case OpCos:
		return math.Cos(x)
	case OpTan:
		return math.Tan(x)
	case OpAsin:
		return math.Asin(x)
	case OpAcos:
		return math.Acos(x)
	case OpAtan:
		return math.Atan(x)
	case OpDeg:
		return x * 180 / math.Pi
	case OpRad:
		return x * math.Pi / 180
	case OpSqrt:
		return math.Sqrt(x)
	case OpExp:
		return math.Exp(x)
	case OpLn:
		return math.Log(x)
	default: // OpLog
		return n.Scale * math.Log(x)
	}
}

// integer applies a binary operator to Integer operands. It reports false
// when the result is not representable as an integer (division by zero),
// in which case the caller falls back to floating-point arithmetic.
func (n *Node) integer(a, b int64) (int64, bool) {
	switch n.Op {
	case OpSub:
		return a - b, true
	case OpDiv:
		if b == 0 {
			return 0, false
		}

		return a / b, true
	default: // OpMod
		if b == 0 {
			return 0, false
		}

		return a % b, true
	}
}

func (n *Node) binary(a, b float64) float64 {
	switch n.Op {
	case OpSub:
		return a - b
	case OpDiv:
		return a / b
	case OpMod:
		return math.Mod(a, b)
	case OpPow:
		return math.Pow(a, b)
	default: // OpAtan2
		return math.Atan2(a, b)
	}
}

// accumulate folds the operands of a variadic node into both an integer
// and a floating-point accumulator. The result is Integer only if every
// operand is Integer.
func (n *Node) accumulate(args []Number) Number {
	var (
		i     int64
		f     float64
		exact = true
	)

	if n.Op == OpMult {
		i, f = 1, 1
	}

	for _, o := range n.Operands {
		v := o.Eval(args)
		exact = exact && v.IsInteger()

		if n.Op == OpMult {
			i *= v.Int()
			f *= v.Float()
		} else {
			i += v.Int()
			f += v.Float()
		}
	}

	if exact {
		return Int(i)
	}

	return Float(f)
}
