package calc

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/ardnew/xfunc/lang"
)

const source = `
<arglist><arg name="r"/></arglist>
<func name="area">
  <mult arg1="3"><pow arg1="r" arg2="2"/></mult>
</func>
<func name="scale">
  <arglist><arg type="int" name="k"/><arg name="v"/></arglist>
  <mult arg1="k" arg2="v"/>
</func>
<func name="len">
  <abs arg="r"/>
</func>
<func>
  <neg arg="r"/>
</func>`

func mustEnv(t *testing.T) *Env {
	t.Helper()

	prog, err := lang.ParseString(t.Context(), source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	return New(prog)
}

func same(a, b lang.Number) bool {
	return a.Type() == b.Type() && a.String() == b.String()
}

func TestArg(t *testing.T) {
	tests := []struct {
		src     string
		want    lang.Number
		wantErr error
	}{
		{src: "3", want: lang.Int(3)},
		{src: " -12 ", want: lang.Int(-12)},
		{src: "2.5", want: lang.Float(2.5)},
		{src: "1e3", want: lang.Float(1000)},
		{src: "1 + 2", want: lang.Int(3)},
		{src: "7 / 2", want: lang.Float(3.5)},
		{src: "2 * pi", want: lang.Float(2 * math.Pi)},
		{src: "abs(-4)", want: lang.Int(4)},
		{src: "abc", wantErr: ErrCompile},
		{src: "1 +", wantErr: ErrCompile},
		{src: `"text"`, wantErr: ErrNotNumber},
		{src: "true", wantErr: ErrNotNumber},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Arg(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !same(got, tt.want) {
				t.Errorf("Arg(%q) = %v (%s), want %v (%s)",
					tt.src, got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestArgs(t *testing.T) {
	got, err := Args("1", "pi / 2")
	if err != nil {
		t.Fatal(err)
	}

	want := []lang.Number{lang.Int(1), lang.Float(math.Pi / 2)}
	if !slices.EqualFunc(got, want, same) {
		t.Errorf("Args = %v, want %v", got, want)
	}

	if _, err := Args("1", "nope"); !errors.Is(err, ErrCompile) {
		t.Errorf("error = %v, want %v", err, ErrCompile)
	}
}

func TestEnv_Eval(t *testing.T) {
	env := mustEnv(t)

	tests := []struct {
		src     string
		want    lang.Number
		wantErr error
	}{
		{src: "area(2)", want: lang.Float(12)},
		{src: "area(2) + 1", want: lang.Float(13)},
		{src: "scale(3, 1.5)", want: lang.Float(4.5)},
		{src: "scale(2, area(1))", want: lang.Float(6)},
		{src: `call("#3", 4)`, want: lang.Float(-4)},
		{src: "call(3, 4)", want: lang.Float(-4)},
		{src: `call("len", -2)`, want: lang.Float(2)},
		{src: "len([1, 2, 3])", want: lang.Int(3)},
		{src: "scale(1.5, 2)", wantErr: ErrRun},
		{src: "area()", wantErr: ErrRun},
		{src: `call("missing", 1)`, wantErr: ErrRun},
		{src: "missing(1)", wantErr: ErrCompile},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := env.Eval(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !same(got, tt.want) {
				t.Errorf("Eval(%q) = %v (%s), want %v (%s)",
					tt.src, got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestEnv_Functions(t *testing.T) {
	env := mustEnv(t)

	if got, want := env.Functions(), []string{"area", "scale"}; !slices.Equal(got, want) {
		t.Errorf("Functions() = %q, want %q", got, want)
	}

	if _, ok := env.Function("len"); ok {
		t.Error("builtin name bound as a program function")
	}

	if fn, ok := env.Function("area"); !ok || fn.Name != "area" {
		t.Errorf("Function(area) = %v, %v", fn, ok)
	}
}

func TestEnv_NoProgram(t *testing.T) {
	var env Env

	if _, err := env.Eval(`call("#0")`); !errors.Is(err, ErrRun) {
		t.Errorf("error = %v, want %v", err, ErrRun)
	}

	if env.Program() != nil {
		t.Error("zero Env has a program")
	}
}

func TestNames(t *testing.T) {
	if got, want := Constants(), []string{"e", "inf", "nan", "phi", "pi"}; !slices.Equal(got, want) {
		t.Errorf("Constants() = %q, want %q", got, want)
	}

	b := Builtins()
	if !slices.IsSorted(b) {
		t.Error("Builtins() is not sorted")
	}

	for _, name := range []string{"abs", "len", "call"} {
		if !slices.Contains(b, name) {
			t.Errorf("Builtins() missing %q", name)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in      any
		want    lang.Number
		wantErr bool
	}{
		{in: 3, want: lang.Int(3)},
		{in: int32(-3), want: lang.Int(-3)},
		{in: uint8(7), want: lang.Int(7)},
		{in: 2.5, want: lang.Float(2.5)},
		{in: float32(0.5), want: lang.Float(0.5)},
		{in: lang.Int(9), want: lang.Int(9)},
		{in: uint64(math.MaxUint64), wantErr: true},
		{in: "3", wantErr: true},
		{in: nil, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ToNumber(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrNotNumber) {
				t.Errorf("ToNumber(%#v) error = %v, want %v", tt.in, err, ErrNotNumber)
			}

			continue
		}

		if err != nil || !same(got, tt.want) {
			t.Errorf("ToNumber(%#v) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if v := FromNumber(lang.Int(4)); v != 4 {
		t.Errorf("FromNumber(Int) = %#v", v)
	}

	if v := FromNumber(lang.Float(4)); v != 4.0 {
		t.Errorf("FromNumber(Float) = %#v", v)
	}
}
