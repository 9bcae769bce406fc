package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes p in the tag dialect. Every operand is written as a child
// element and every function carries its own argument list, so the output
// builds an equivalent program.
//
// If indent is greater than zero, each element is written on its own line
// indented by that many spaces per level. Otherwise the output is a single
// line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{w: w, indent: indent}

	multi := len(p.funcs) != 1 || p.funcs[0].Name != ""

	for _, fn := range p.funcs {
		depth := 0

		if multi {
			if fn.Name != "" {
				f.line(depth, `<%s %s=%s>`, tagFunc, attrFunc, quote(fn.Name))
			} else {
				f.line(depth, "<%s>", tagFunc)
			}

			depth++
		}

		f.argList(fn.Args, depth)
		f.node(fn.Root, fn.Args, depth)

		if multi {
			f.line(0, "</%s>", tagFunc)
		}
	}

	if indent <= 0 {
		f.printf("\n")
	}

	return f.err
}

// FormatJSON writes p as JSON. If indent is greater than zero the output is
// indented by that many spaces per level.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes p as YAML. If indent is greater than zero it sets the
// block indentation; otherwise flow style is used.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// Print writes an indented outline of every function's expression tree.
func (p *Program) Print(w io.Writer) {
	for _, fn := range p.funcs {
		fmt.Fprintln(w, fn.Signature())
		fn.Root.Print(w, fn.Args, 1)
	}
}

// Print writes an indented outline of the tree rooted at n. Argument
// references are annotated with their declared names from defs, which
// may be nil.
func (n *Node) Print(w io.Writer, defs *ArgDefs, depth int) {
	pad := strings.Repeat("  ", depth)

	switch n.Op {
	case OpConst:
		fmt.Fprintf(w, "%s%s %s\n", pad, n.Value.Type(), n.Value)

	case OpArg:
		if name := argName(defs, n.Index); name != "" {
			fmt.Fprintf(w, "%sarg %d (%s)\n", pad, n.Index, name)
		} else {
			fmt.Fprintf(w, "%sarg %d\n", pad, n.Index)
		}

	case OpLog:
		fmt.Fprintf(w, "%slog base %s\n", pad, formatFloat(n.Base))

	default:
		fmt.Fprintf(w, "%s%s\n", pad, n.Op)
	}

	for _, o := range n.Operands {
		o.Print(w, defs, depth+1)
	}
}

func argName(defs *ArgDefs, i int) string {
	if i < defs.Len() {
		return defs.Name(i)
	}

	return ""
}

// formatFloat formats f so that it scans back to the same value. Infinite
// values are written as out-of-range literals.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1e999"
	case math.IsInf(f, -1):
		return "-1e999"
	}

	return Float(f).String()
}

// quote encloses an attribute value in double quotes, or in single quotes
// if it contains a double quote.
func quote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}

// formatter writes markup, retaining the first write error.
type formatter struct {
	w      io.Writer
	err    error
	indent int
}

func (f *formatter) printf(format string, args ...any) {
	if f.err == nil {
		_, f.err = fmt.Fprintf(f.w, format, args...)
	}
}

func (f *formatter) line(depth int, format string, args ...any) {
	if f.indent > 0 {
		f.printf("%s", strings.Repeat(" ", depth*f.indent))
	}

	f.printf(format, args...)

	if f.indent > 0 {
		f.printf("\n")
	}
}

func (f *formatter) argList(defs *ArgDefs, depth int) {
	f.line(depth, "<%s>", tagArgList)

	for a := range defs.All() {
		if a.Name != "" {
			f.line(depth+1, `<%s type="%s" name=%s/>`, tagArg, a.Type, quote(a.Name))
		} else {
			f.line(depth+1, `<%s type="%s"/>`, tagArg, a.Type)
		}
	}

	f.line(depth, "</%s>", tagArgList)
}

func (f *formatter) node(n *Node, defs *ArgDefs, depth int) {
	switch n.Op {
	case OpConst:
		v := n.Value.String()
		if !n.Value.IsInteger() {
			v = formatFloat(n.Value.Float())
		}

		f.line(depth, `<%s %s="%s"/>`, n.Value.Type(), attrValue, v)

		return

	case OpArg:
		if name := argName(defs, n.Index); name != "" {
			f.line(depth, `<%s %s=%s/>`, tagArg, attrName, quote(name))
		} else {
			f.line(depth, `<%s %s="%d"/>`, tagArg, attrIndex, n.Index)
		}

		return

	case OpLog:
		if n.Base != defaultLogBase {
			f.line(depth, `<%s %s="%s">`, n.Op, attrBase, formatFloat(n.Base))

			break
		}

		fallthrough

	default:
		f.line(depth, "<%s>", n.Op)
	}

	for _, o := range n.Operands {
		f.node(o, defs, depth+1)
	}

	f.line(depth, "</%s>", n.Op)
}

// ToMap converts p to a structure of maps and slices suitable for generic
// encoders.
func (p *Program) ToMap() map[string]any {
	funcs := make([]any, 0, len(p.funcs))

	for _, fn := range p.funcs {
		args := make([]any, 0, fn.Args.Len())

		for a := range fn.Args.All() {
			m := map[string]any{"type": a.Type.String()}
			if a.Name != "" {
				m["name"] = a.Name
			}

			args = append(args, m)
		}

		m := map[string]any{
			"index": fn.Index,
			"args":  args,
			"expr":  fn.Root.ToMap(fn.Args),
		}
		if fn.Name != "" {
			m["name"] = fn.Name
		}

		funcs = append(funcs, m)
	}

	return map[string]any{"functions": funcs}
}

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the tree rooted at n to a structure of maps and slices.
func (n *Node) ToMap(defs *ArgDefs) map[string]any {
	m := map[string]any{"op": n.Op.String()}

	switch n.Op {
	case OpConst:
		m["type"] = n.Value.Type().String()
		m["value"] = n.Value

	case OpArg:
		m["index"] = n.Index
		if name := argName(defs, n.Index); name != "" {
			m["name"] = name
		}

	case OpLog:
		m["base"] = Float(n.Base)
	}

	if len(n.Operands) > 0 {
		operands := make([]any, len(n.Operands))
		for i, o := range n.Operands {
			operands[i] = o.ToMap(defs)
		}

		m["operands"] = operands
	}

	return m
}

// String returns the single-line markup form of the tree rooted at n.
func (n *Node) String() string {
	var b strings.Builder

	f := &formatter{w: &b}
	f.node(n, nil, 0)

	return b.String()
}
