package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/xfunc/cli/cmd/calc"
	"github.com/ardnew/xfunc/lang"
)

// builtinParams names the parameters of the expr builtins most useful for
// arithmetic. Other builtins are completed but have no signature hint.
var builtinParams = map[string][]string{
	"abs":    {"x"},
	"ceil":   {"x"},
	"floor":  {"x"},
	"round":  {"x"},
	"int":    {"v"},
	"float":  {"v"},
	"len":    {"v"},
	"min":    {"...x"},
	"max":    {"...x"},
	"sum":    {"array"},
	"mean":   {"array"},
	"median": {"array"},
	"call":   {"selector", "...args"},
}

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// isIdentRune reports whether r may appear in a function name.
func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectFunctionCall finds the innermost call whose parentheses enclose the
// cursor and the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// signature returns the parameter names of the function called name, or
// false if it has no known signature.
func signature(env *calc.Env, name string) ([]string, bool) {
	if fn, ok := env.Function(name); ok {
		return paramNames(fn), true
	}

	params, ok := builtinParams[name]

	return params, ok
}

// paramNames describes each declared argument of fn as "type name", or just
// the type for unnamed arguments.
func paramNames(fn *lang.Function) []string {
	params := make([]string, 0, fn.Args.Len())

	for arg := range fn.Args.All() {
		p := "double"
		if arg.Type == lang.TypeInteger {
			p = "int"
		}

		if arg.Name != "" {
			p += " " + arg.Name
		}

		params = append(params, p)
	}

	return params
}

// renderSignatureHint renders name(params...) with the parameter at index
// current highlighted. A variadic parameter stays highlighted for every
// index at or beyond its own.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if current == i || (variadic && current > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
