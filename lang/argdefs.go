package lang

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/ardnew/xfunc/markup"
)

const (
	tagArgList = "arglist"
	tagArg     = "arg"
)

// ArgDefs is an ordered table of declared argument slots.
//
// Each slot has a [Type] and an optional name. Names are unique within a
// table; unnamed slots are reachable only by index.
// An ArgDefs is read-only once built and safe for concurrent use.
type ArgDefs struct {
	types []Type
	names []string
	index map[string]int
}

// Arg describes a single declared argument slot.
type Arg struct {
	Name  string
	Type  Type
	Index int
}

// NewArgDefs returns an empty argument table.
func NewArgDefs() *ArgDefs {
	return &ArgDefs{index: make(map[string]int)}
}

// Add appends a slot to the table. An empty name declares an unnamed slot.
func (d *ArgDefs) Add(typ Type, name string) error {
	if name != "" {
		if _, dup := d.index[name]; dup {
			return ErrDuplicateArgName.
				With(slog.String("name", name)).
				Wrapf("%q is already declared", name)
		}

		d.index[name] = len(d.types)
	}

	d.types = append(d.types, typ)
	d.names = append(d.names, name)

	return nil
}

// Len returns the number of declared slots.
func (d *ArgDefs) Len() int {
	if d == nil {
		return 0
	}

	return len(d.types)
}

// Type returns the declared type of slot i.
func (d *ArgDefs) Type(i int) Type { return d.types[i] }

// Name returns the declared name of slot i, or "" if it is unnamed.
func (d *ArgDefs) Name(i int) string { return d.names[i] }

// Lookup returns the index of the slot with the given name.
func (d *ArgDefs) Lookup(name string) (int, bool) {
	if d == nil {
		return 0, false
	}

	i, ok := d.index[name]

	return i, ok
}

// All returns an iterator over the declared slots in order.
func (d *ArgDefs) All() iter.Seq[Arg] {
	return func(yield func(Arg) bool) {
		for i := range d.Len() {
			if !yield(Arg{Name: d.names[i], Type: d.types[i], Index: i}) {
				return
			}
		}
	}
}

// String formats the table as a parameter list, e.g. "(int n, double x)".
func (d *ArgDefs) String() string {
	var b strings.Builder

	b.WriteByte('(')

	for a := range d.All() {
		if a.Index > 0 {
			b.WriteString(", ")
		}

		if a.Type == TypeInteger {
			b.WriteString("int")
		} else {
			b.WriteString("double")
		}

		if a.Name != "" {
			b.WriteByte(' ')
			b.WriteString(a.Name)
		}
	}

	b.WriteByte(')')

	return b.String()
}

// BuildArgDefs builds an argument table from an <arglist> element.
//
//	<arglist>
//	  <arg type="int" name="n"/>
//	  <arg name="x"/>
//	</arglist>
//
// The type attribute defaults to double when absent.
func BuildArgDefs(node *markup.Node) (*ArgDefs, error) {
	if node == nil || node.Name != tagArgList {
		return nil, ErrMissingArgList.Wrapf("expected <%s>", tagArgList)
	}

	if len(node.Children) == 0 {
		return nil, ErrEmptyArgList.Wrapf("<%s> declares no arguments", tagArgList)
	}

	if len(node.Attrs) > 0 {
		return nil, ErrInvalidArgDecl.Wrapf(
			"<%s> does not accept attribute %q", tagArgList, node.Attrs[0].Key)
	}

	defs := NewArgDefs()

	for i, child := range node.Children {
		if child.Name != tagArg {
			return nil, ErrInvalidArgDecl.
				With(slog.Int("index", i)).
				Wrapf("<%s> may only contain <%s>, found <%s>",
					tagArgList, tagArg, child.Name)
		}

		if len(child.Children) > 0 {
			return nil, ErrInvalidArgDecl.
				With(slog.Int("index", i)).
				Wrapf("<%s> declaration %d cannot have children", tagArg, i)
		}

		typ := TypeFloat

		var name string

		for _, a := range child.Attrs {
			switch a.Key {
			case "type":
				t, err := ParseType(a.Value)
				if err != nil {
					return nil, WrapError(err).With(slog.Int("index", i))
				}

				typ = t

			case "name":
				name = strings.TrimSpace(a.Value)

			default:
				return nil, ErrInvalidArgDecl.
					With(slog.Int("index", i)).
					Wrapf("<%s> does not accept attribute %q", tagArg, a.Key)
			}
		}

		if err := defs.Add(typ, name); err != nil {
			return nil, err
		}
	}

	return defs, nil
}
