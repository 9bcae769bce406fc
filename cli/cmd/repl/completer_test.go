package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/xfunc/cli/cmd/calc"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "area", 4, "area", 0, 4},
		{"after_plus", "a + ar", 6, "ar", 4, 6},
		{"after_minus", "pi-ar", 5, "ar", 3, 5},
		{"after_paren", "scale(ar", 8, "ar", 6, 8},
		{"after_comma", "scale(2, p", 10, "p", 9, 10},
		{"in_quotes", `call("sc`, 8, "sc", 6, 8},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "scale", 2, "scale", 0, 5},
		{"at_start", "pi", 0, "pi", 0, 2},
		{"underscore", "x_len", 5, "x_len", 0, 5},
		{"cursor_past_end", "pi", 9, "pi", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	env := calc.New(mustProgram(t))

	got := candidates(env)

	if !slices.Equal(got[:2], []string{"area", "scale"}) {
		t.Errorf("program functions not listed first: %q", got[:2])
	}

	for _, want := range []string{"pi", "abs", "call"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q", want)
		}
	}
}

func TestModel_ComputeMatches(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("2 * ar")
	m.input.SetCursor(6)
	m.refreshMatches(false)

	if len(m.matches) == 0 || m.matches[0].Str != "area" {
		t.Fatalf("matches = %v, want area first", m.matches)
	}

	if m.wordStart != 4 || m.wordEnd != 6 {
		t.Errorf("word bounds = %d..%d, want 4..6", m.wordStart, m.wordEnd)
	}

	m = m.switchToMode(modeCtrl)
	m.input.SetValue("rel")
	m.input.SetCursor(3)
	m.refreshMatches(false)

	if len(m.matches) != 1 || m.matches[0].Str != "reload" {
		t.Errorf("ctrl matches = %v, want [reload]", m.matches)
	}
}

func TestModel_IsFunction(t *testing.T) {
	m := newTestModel(t)

	for name, want := range map[string]bool{
		"area":  true,
		"abs":   true,
		"call":  true,
		"pi":    false,
		"nope":  false,
		"scale": true,
	} {
		if got := m.isFunction(name); got != want {
			t.Errorf("isFunction(%q) = %v, want %v", name, got, want)
		}
	}
}
