// Package calc evaluates command-line arithmetic with expr-lang.
//
// Call arguments given to the CLI and lines typed into the REPL are expr
// expressions such as "2*pi" or "-3". When a [lang.Program] is attached, its
// functions are callable by name from those expressions:
//
//	area(2.5) + scale(3, 1e-3)
//
// Functions whose names are not valid identifiers, or that collide with a
// builtin, stay reachable through call("name", args...) or call("#i", ...).
package calc

import (
	"log/slog"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/xfunc/lang"
)

// callFunc is the builtin that calls a program function by selector.
const callFunc = "call"

// constants are predefined in every environment.
var constants = map[string]any{
	"pi":  math.Pi,
	"e":   math.E,
	"phi": math.Phi,
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

var ident = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Env compiles and runs expressions. The zero Env has no program attached.
type Env struct {
	prog  *lang.Program
	funcs map[string]*lang.Function
}

// New returns an Env exposing the functions of prog, which may be nil.
func New(prog *lang.Program) *Env {
	e := &Env{prog: prog, funcs: map[string]*lang.Function{}}

	if prog == nil {
		return e
	}

	for fn := range prog.Functions() {
		if callable(fn.Name) {
			e.funcs[fn.Name] = fn
		}
	}

	return e
}

// callable reports whether name can be bound as an expr function.
func callable(name string) bool {
	if !ident.MatchString(name) || name == callFunc {
		return false
	}

	if _, ok := constants[name]; ok {
		return false
	}

	_, ok := builtin.Index[name]

	return !ok
}

// Program returns the attached program.
func (e *Env) Program() *lang.Program { return e.prog }

// Functions returns the sorted names of program functions callable directly.
func (e *Env) Functions() []string {
	return slices.Sorted(maps.Keys(e.funcs))
}

// Function returns the program function bound to name.
func (e *Env) Function(name string) (*lang.Function, bool) {
	fn, ok := e.funcs[name]

	return fn, ok
}

// Constants returns the sorted names of predefined constants.
func Constants() []string {
	return slices.Sorted(maps.Keys(constants))
}

// Builtins returns the sorted names of the expr builtins available in every
// expression, plus call.
func Builtins() []string {
	names := append(slices.Clone(builtin.Names), callFunc)
	slices.Sort(names)

	return slices.Compact(names)
}

func (e *Env) options() []expr.Option {
	opts := []expr.Option{expr.Env(constants)}

	for name, fn := range e.funcs {
		opts = append(opts, expr.Function(name, e.bind(fn)))
	}

	return append(opts, expr.Function(callFunc, e.call))
}

// Compile checks src and prepares it for [Env.Run].
func (e *Env) Compile(src string) (*vm.Program, error) {
	p, err := expr.Compile(src, e.options()...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("expr", src))
	}

	return p, nil
}

// Run executes a compiled expression and converts its result to a Number.
func (e *Env) Run(p *vm.Program) (lang.Number, error) {
	out, err := expr.Run(p, constants)
	if err != nil {
		return lang.Number{}, ErrRun.Wrap(err)
	}

	return ToNumber(out)
}

// Eval compiles and runs src.
func (e *Env) Eval(src string) (lang.Number, error) {
	p, err := e.Compile(src)
	if err != nil {
		return lang.Number{}, err
	}

	n, err := e.Run(p)
	if err != nil {
		return lang.Number{}, lang.WrapError(err).With(slog.String("expr", src))
	}

	return n, nil
}

func (e *Env) bind(fn *lang.Function) func(...any) (any, error) {
	return func(params ...any) (any, error) {
		return invoke(fn, params)
	}
}

// call implements call(selector, args...).
func (e *Env) call(params ...any) (any, error) {
	if e.prog == nil {
		return nil, lang.ErrNoFunctions
	}

	if len(params) == 0 {
		return nil, lang.ErrArgCount.Wrapf("%s requires a function selector", callFunc)
	}

	var sel string

	switch v := params[0].(type) {
	case string:
		sel = v
	case int:
		sel = strconv.Itoa(v)
	default:
		return nil, lang.ErrInvalidArgument.Wrapf("invalid selector %v", v)
	}

	fn, err := e.prog.Select(sel)
	if err != nil {
		return nil, err
	}

	return invoke(fn, params[1:])
}

func invoke(fn *lang.Function, params []any) (any, error) {
	args := make([]lang.Number, len(params))

	for i, p := range params {
		n, err := ToNumber(p)
		if err != nil {
			return nil, lang.WrapError(err).With(
				slog.String("func", fn.Ident()),
				slog.Int("index", i),
			)
		}

		args[i] = n
	}

	out, err := fn.Call(args...)
	if err != nil {
		return nil, err
	}

	return FromNumber(out), nil
}

// Arg evaluates a single call argument. Plain numeric literals are parsed
// exactly; anything else is evaluated as an expression without program
// functions.
func Arg(src string) (lang.Number, error) {
	if n, err := lang.ParseNumber(src); err == nil {
		return n, nil
	}

	return (&Env{}).Eval(src)
}

// Args evaluates each argument with [Arg].
func Args(srcs ...string) ([]lang.Number, error) {
	args := make([]lang.Number, len(srcs))

	for i, src := range srcs {
		n, err := Arg(src)
		if err != nil {
			return nil, err
		}

		args[i] = n
	}

	return args, nil
}

// ToNumber converts an expr value to a Number. Go integer kinds become
// Integer and floating-point kinds become Float.
func ToNumber(v any) (lang.Number, error) {
	switch n := v.(type) {
	case int:
		return lang.Int(int64(n)), nil
	case int8:
		return lang.Int(int64(n)), nil
	case int16:
		return lang.Int(int64(n)), nil
	case int32:
		return lang.Int(int64(n)), nil
	case int64:
		return lang.Int(n), nil
	case uint8:
		return lang.Int(int64(n)), nil
	case uint16:
		return lang.Int(int64(n)), nil
	case uint32:
		return lang.Int(int64(n)), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return lang.Number{}, ErrNotNumber.Wrapf("%d overflows int64", n)
		}

		return lang.Int(int64(n)), nil
	case uint64:
		if n > math.MaxInt64 {
			return lang.Number{}, ErrNotNumber.Wrapf("%d overflows int64", n)
		}

		return lang.Int(int64(n)), nil
	case float32:
		return lang.Float(float64(n)), nil
	case float64:
		return lang.Float(n), nil
	case lang.Number:
		return n, nil
	default:
		return lang.Number{}, ErrNotNumber.Wrapf("%v (%T)", v, v)
	}
}

// FromNumber converts a Number to the expr value of its type.
func FromNumber(n lang.Number) any {
	if n.IsInteger() {
		return int(n.Int())
	}

	return n.Float()
}
