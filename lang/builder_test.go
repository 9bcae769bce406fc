package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestBuild_ShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    *Error
		message string
	}{
		{"unknown operator", `<foo/>`, ErrUnknownOperator, "foo"},
		{"sub one child", `<sub><int value="1"/></sub>`, ErrArity, "<sub>: too few operands"},
		{"sub one attr", `<sub arg1="1"/>`, ErrArity, "<sub>: too few operands"},
		{"sub attr and two children", `<sub arg1="1"><int value="2"/><int value="3"/></sub>`, ErrArity, "<sub>: too many operands"},
		{"neg empty", `<neg/>`, ErrArity, "<neg>: too few operands"},
		{"neg attr and child", `<neg arg="1"><int value="2"/></neg>`, ErrArity, "<neg>: too many operands"},
		{"atan2 three children", `<atan2><int value="1"/><int value="2"/><int value="3"/></atan2>`, ErrArity, "too many operands"},
		{"add empty", `<add/>`, ErrArity, "<add>: too few operands"},
		{"add arg2 only", `<add arg2="1"/>`, ErrArity, "<add>: too few operands"},
		{"int with fraction", `<int value="1.5"/>`, ErrExtraneousData, `".5"`},
		{"int not a number", `<int value="x"/>`, ErrInvalidLiteral, ""},
		{"double missing value", `<double/>`, ErrInvalidLiteral, "value"},
		{"double with child", `<double value="1"><int value="2"/></double>`, ErrArity, ""},
		{"double unknown attr", `<double value="1" x="2"/>`, ErrUnknownAttribute, `"x"`},
		{"arg index too large", `<arg index="2"/>`, ErrArgIndex, "[0, 2)"},
		{"arg index negative", `<arg index="-1"/>`, ErrArgIndex, ""},
		{"arg index not integer", `<arg index="1.0"/>`, ErrExtraneousData, ""},
		{"arg unknown name", `<arg name="y"/>`, ErrUnknownArgName, `"y"`},
		{"arg index and name", `<arg index="0" name="n"/>`, ErrArgReference, "mutually exclusive"},
		{"arg empty", `<arg/>`, ErrArgReference, ""},
		{"arg with child", `<arg index="0"><int value="1"/></arg>`, ErrArgReference, ""},
		{"arg declaration attr", `<arg type="int"/>`, ErrUnknownAttribute, `"type"`},
		{"operand unknown name", `<neg arg="y"/>`, ErrUnknownArgName, `"y"`},
		{"operand trailing text", `<neg arg="3x"/>`, ErrExtraneousData, `"x"`},
		{"operand extra field", `<neg arg="3 4"/>`, ErrExtraneousData, `"4"`},
		{"operand empty", `<neg arg=""/>`, ErrInvalidLiteral, ""},
		{"operand markup", `<neg arg='<int value="1"/>'/>`, ErrUnknownArgName, `"<int"`},
		{"unary with binary key", `<neg arg1="3"/>`, ErrUnknownAttribute, `"arg1"`},
		{"binary with unary key", `<sub arg="3" arg2="1"/>`, ErrUnknownAttribute, `"arg"`},
		{"log zero base", `<log base="0" arg="3"/>`, ErrLogBase, ""},
		{"log negative base", `<log base="-2" arg="3"/>`, ErrLogBase, ""},
		{"log unit base", `<log base="1" arg="3"/>`, ErrLogBase, ""},
		{"log name base", `<log base="e" arg="3"/>`, ErrLogBase, ""},
		{"base on sin", `<sin base="2" arg="1"/>`, ErrUnknownAttribute, `"base"`},
		{"nested error", `<add arg1="1"><mult><foo/></mult></add>`, ErrUnknownOperator, "<foo>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(t.Context(), evalHeader+tt.expr)
			if err == nil {
				t.Fatalf("expected error for %s", tt.expr)
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if k := KindOf(err); k != KindShape {
				t.Errorf("KindOf = %s, want %s", k, KindShape)
			}

			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.message)
			}
		})
	}
}

func TestBuild_ErrorPosition(t *testing.T) {
	src := evalHeader + "\n<add arg1=\"1\">\n  <sub arg1=\"2\"/>\n</add>"

	_, err := ParseString(t.Context(), src)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("error = %v, want %v", err, ErrArity)
	}

	if want := "line 3, column 3: <sub>"; !strings.Contains(err.Error(), want) {
		t.Errorf("message %q does not contain %q", err.Error(), want)
	}
}

func TestBuild_MaxDepth(t *testing.T) {
	const depth = 10

	expr := strings.Repeat("<neg>", depth) + `<int value="1"/>` +
		strings.Repeat("</neg>", depth)

	prog, err := ParseString(t.Context(), evalHeader+expr, WithMaxDepth(depth+1))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got, err := prog.Eval(Int(0), Float(0)); err != nil || got.Int() != 1 {
		t.Errorf("Eval = %v, %v; want 1", got, err)
	}

	_, err = ParseString(t.Context(), evalHeader+expr, WithMaxDepth(depth))
	if KindOf(err) != KindStructure {
		t.Errorf("KindOf(%v) = %s, want %s", err, KindOf(err), KindStructure)
	}
}

func TestBuildExpr(t *testing.T) {
	defs := NewArgDefs()
	if err := defs.Add(TypeInteger, "k"); err != nil {
		t.Fatal(err)
	}

	root, err := BuildExpr(t.Context(),
		parseElement(t, `<mult arg1="k"><int value="3"/></mult>`), defs)
	if err != nil {
		t.Fatalf("BuildExpr error: %v", err)
	}

	if got := root.Eval([]Number{Int(5)}); !sameNumber(got, Int(15)) {
		t.Errorf("Eval = %v (%s), want 15", got, got.Type())
	}

	_, err = BuildExpr(t.Context(), parseElement(t, `<neg arg="j"/>`), defs)
	if !errors.Is(err, ErrUnknownArgName) {
		t.Errorf("error = %v, want %v", err, ErrUnknownArgName)
	}
}
