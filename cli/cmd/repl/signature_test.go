package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/xfunc/cli/cmd/calc"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "area", 4, "", 0, false},
		{"grouping parens", "(2 + 3", 6, "", 0, false},
		{"first arg", "scale(", 6, "scale", 0, true},
		{"first arg with value", "scale(1", 7, "scale", 0, true},
		{"second arg", "scale(1,", 8, "scale", 1, true},
		{"second arg with value", "scale(1, 2", 10, "scale", 1, true},
		{"nested call", "scale(area(2), ", 15, "scale", 1, true},
		{"cursor in nested call", "scale(area(2), 4)", 11, "area", 0, true},
		{"array literal", "max([1, 2], ", 12, "max", 1, true},
		{"closed call", "area(2) + ", 10, "", 0, false},
		{"call selector", `call("#1", 2, `, 14, "call", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {name:%s argIndex:%d inCall:%v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	env := calc.New(mustProgram(t))

	tests := []struct {
		name   string
		want   []string
		wantOK bool
	}{
		{"area", []string{"double r"}, true},
		{"scale", []string{"int k", "double v"}, true},
		{"max", []string{"...x"}, true},
		{"call", []string{"selector", "...args"}, true},
		{"filter", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := signature(env, tt.name)
			if ok != tt.wantOK || !slices.Equal(got, tt.want) {
				t.Errorf("signature(%q) = %q, %v; want %q, %v",
					tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	got := renderSignatureHint("scale", []string{"int k", "double v"}, 1)

	for _, want := range []string{"scale", "int k", "double v"} {
		if !strings.Contains(got, want) {
			t.Errorf("hint %q missing %q", got, want)
		}
	}
}
