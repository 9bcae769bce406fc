package repl

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/xfunc/lang"
)

const testSource = `
<arglist><arg name="r"/></arglist>
<func name="area">
  <mult arg1="3"><pow arg1="r" arg2="2"/></mult>
</func>
<func name="scale">
  <arglist><arg type="int" name="k"/><arg name="v"/></arglist>
  <mult arg1="k" arg2="v"/>
</func>
<func>
  <neg arg="r"/>
</func>`

func mustProgram(t *testing.T) *lang.Program {
	t.Helper()

	prog, err := lang.ParseString(t.Context(), testSource)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	return prog
}

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), Config{Program: mustProgram(t)}, NewHistory(""))
}

func typeRunes(m model, s string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})

	return next.(model)
}

func press(m model, key tea.KeyType) (model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})

	return next.(model), cmd
}

func TestModel_TabCompletion(t *testing.T) {
	m := typeRunes(newTestModel(t), "sca")

	m, _ = press(m, tea.KeyTab)

	if got := m.input.Value(); got != "scale" {
		t.Errorf("input after tab = %q, want scale", got)
	}
}

func TestModel_TabCycleAndEscape(t *testing.T) {
	m := typeRunes(newTestModel(t), "a")
	if len(m.matches) < 2 {
		t.Fatalf("want several matches for %q, have %v", "a", m.matches)
	}

	m, _ = press(m, tea.KeyTab)
	first := m.input.Value()

	m, _ = press(m, tea.KeyTab)
	if m.input.Value() == first {
		t.Errorf("second tab did not advance from %q", first)
	}

	m, _ = press(m, tea.KeyEsc)
	if got := m.input.Value(); got != "a" || m.tabActive {
		t.Errorf("escape restored %q (tabActive=%v), want a", got, m.tabActive)
	}
}

func TestModel_Execute(t *testing.T) {
	m := typeRunes(newTestModel(t), "area(2) + 1")

	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("enter returned no command")
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if e, err := m.history.Entry(0); err != nil || e != (Entry{"area(2) + 1", modeEval}) {
		t.Errorf("history entry = %v, %v", e, err)
	}
}

func TestModel_ModeToggleAndHistory(t *testing.T) {
	m := typeRunes(newTestModel(t), "pi")

	m, _ = press(m, tea.KeyEsc)
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("mode = %v, input = %q after esc", m.mode, m.input.Value())
	}

	m = typeRunes(m, "list")
	m, _ = press(m, tea.KeyEnter)

	m, _ = press(m, tea.KeyEsc)
	if m.mode != modeEval || m.input.Value() != "" {
		t.Fatalf("saved input survived submit: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = press(m, tea.KeyUp)
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Errorf("history up: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = press(m, tea.KeyDown)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("history down: input = %q, index = %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Quit(t *testing.T) {
	m, cmd := press(newTestModel(t), tea.KeyCtrlD)
	if !m.quitting || cmd == nil {
		t.Error("ctrl+d on empty input did not quit")
	}

	if m.View() != "" {
		t.Errorf("View() after quit = %q", m.View())
	}
}

func TestModel_ProgramMsg(t *testing.T) {
	m := newModel(t.Context(), Config{}, NewHistory(""))

	if m.env.Program() != nil {
		t.Fatal("program loaded without source")
	}

	next, _ := m.Update(programMsg{prog: mustProgram(t), verb: "reloaded"})
	if got := next.(model).env.Functions(); len(got) != 2 {
		t.Errorf("functions after reload = %q", got)
	}
}
