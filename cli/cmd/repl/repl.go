// Package repl implements the interactive session of the repl command.
//
// The session has two input modes. In eval mode each line is an arithmetic
// expression in which the loaded program's functions are callable by name;
// in command mode lines are session commands such as list or edit. Esc
// toggles between them.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/xfunc/cli/cmd/calc"
	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
)

// programMsg replaces the session's program after an edit or reload.
type programMsg struct {
	prog *lang.Program
	verb string
}

// editCancelledMsg is sent when the user emptied the editor content.
type editCancelledMsg struct{}

// editUnchangedMsg is sent when the user saved the program unmodified.
type editUnchangedMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a build
// error.
type editDeclinedMsg struct{}

// errorMsg reports a failed session command.
type errorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List the functions of the program
  edit     Edit the program in $EDITOR
  reload   Rebuild the program from its source
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an expression to evaluate it, e.g. area(2.5) * 2
  Functions without a usable name are called as call("#1", x)
  Press Tab / Shift-Tab to cycle through completions
  Press Space to accept the current completion
  Use Up/Down arrows for history (mode switches automatically)
  Use Shift+Up/Shift+Down for history within the current mode
  Use Alt+Up/Alt+Down to browse command history
  Press Ctrl+C on an empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = hintStyle
	signatureNameStyle = promptStyle
	currentParamStyle  = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// Config describes a REPL session.
type Config struct {
	// Source is reloaded by the reload command. It may be empty.
	Source string
	// Program is the initial program, or nil to start without one.
	Program *lang.Program
	// Options are used whenever the program is rebuilt.
	Options []lang.Option
	// CacheDir holds the history file. History is not saved when empty.
	CacheDir string
	Logger   log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	env        *calc.Env
	source     string
	opts       []lang.Option
	logger     log.Logger
	history    *History
	historyIdx int

	matches   fuzzy.Matches // current fuzzy match results
	wordStart int           // byte offset of current word start
	wordEnd   int           // byte offset of current word end
	suggIdx   int           // selected candidate index
	tabActive bool          // whether user is tab-cycling
	preTab    snapshot      // input before tab-cycling began

	altNavActive bool      // whether user is in Alt+Up/Down navigation
	altNavOrig   snapshot  // input before Alt navigation began
	altNavMode   inputMode // mode before Alt navigation began

	width    int
	quitting bool
	mode     inputMode
	saved    [2]snapshot // input of each mode while the other is active
}

// snapshot is the text and cursor of the input line.
type snapshot struct {
	text   string
	cursor int
}

// Run starts an interactive session and blocks until the user quits.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var path string
	if cfg.CacheDir != "" {
		path = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("source", cfg.Source),
		slog.Int("history", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        calc.New(cfg.Program),
		source:     cfg.Source,
		opts:       cfg.Options,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case programMsg:
		m.env = calc.New(msg.prog)
		m.logger.TraceContext(m.ctxFunc(), "repl program replaced",
			slog.String("by", msg.verb),
			slog.Int("functions", msg.prog.Len()),
		)

		return m, tea.Println(resultStyle.Render(fmt.Sprintf(
			"✔ %s %d function(s)", msg.verb, msg.prog.Len())))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editUnchangedMsg:
		return m, tea.Println(hintStyle.Render("no changes"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case errorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
			" (press Esc to return)")
	}

	if m.mode == modeEval && len(m.matches) == 0 {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if params, ok := signature(m.env, call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return m.renderCandidateBar()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		m.refreshMatches(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.browseCtrl(-1), nil
		}

		return m.browse(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.browseCtrl(1), nil
		}

		return m.browse(1, false), nil

	case tea.KeyShiftUp:
		return m.browse(-1, true), nil

	case tea.KeyShiftDown:
		return m.browse(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.restore(m.preTab)
			m.refreshMatches(false)

			return m, nil
		}

		m.altNavActive = false

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the selected completion by step, wrapping at either end. A
// single candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTab = m.snapshot()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) snapshot() snapshot {
	return snapshot{text: m.input.Value(), cursor: m.input.Position()}
}

func (m *model) restore(s snapshot) {
	m.input.SetValue(s.text)
	m.input.SetCursor(s.cursor)
}

// replaceCurrentWord replaces the word under the cursor with replacement.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes completions for the current input. With
// autoConfirm, a word that already equals its only candidate is accepted.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]snapshot{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	result, err := m.env.Eval(input)

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("input", input),
		slog.Bool("success", err == nil),
	)

	if err != nil {
		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(
		resultStyle.Render(result.String())+" "+hintStyle.Render(result.Type().String())))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.list()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "r", "reload":
		return m, tea.Sequence(echo, m.reload())

	default:
		return m, tea.Println(
			errorStyle.Render("unknown command: " + parts[0] + " (try 'help')"))
	}
}

// list describes each function of the program.
func (m model) list() string {
	prog := m.env.Program()
	if prog == nil || prog.Len() == 0 {
		return hintStyle.Render("  no functions loaded")
	}

	var b strings.Builder

	for fn := range prog.Functions() {
		fmt.Fprintf(&b, "  %s %s\n",
			hintStyle.Render(fmt.Sprintf("#%-2d", fn.Index)),
			renderSignatureHint(fn.Ident(), paramNames(fn), -1))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		prog:    m.env.Program(),
		opts:    m.opts,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return errorMsg{err: err}
		case cmd.unchanged:
			return editUnchangedMsg{}
		case cmd.result == nil:
			return editCancelledMsg{}
		default:
			return programMsg{prog: cmd.result, verb: "edited"}
		}
	})
}

func (m model) reload() tea.Cmd {
	source, opts, ctx := m.source, m.opts, m.ctxFunc()

	return func() tea.Msg {
		if source == "" {
			return errorMsg{err: ErrNoSource}
		}

		prog, err := lang.Load(ctx, source, opts...)
		if err != nil {
			return errorMsg{err: err}
		}

		return programMsg{prog: prog, verb: "reloaded"}
	}
}

// browse moves through history by step. In mode-local browsing, entries of
// the other mode are skipped; otherwise the mode follows the entry.
func (m model) browse(step int, local bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		e, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if local && e.Mode != m.mode {
			continue
		}

		if e.Mode != m.mode {
			m = m.switchToMode(e.Mode)
		}

		m.historyIdx = i
		m.restore(snapshot{text: e.Line, cursor: len(e.Line)})
		m.refreshMatches(false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches(false)
	}

	return m
}

// browseCtrl moves through command history only. Running off either end
// restores the mode and input from before browsing began.
func (m model) browseCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavMode = m.mode
		m.altNavOrig = m.snapshot()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	before := m.historyIdx

	m = m.browse(step, true)
	if m.historyIdx != before && m.historyIdx < m.history.Len() {
		return m
	}

	m.altNavActive = false
	if m.mode != m.altNavMode {
		m = m.switchToMode(m.altNavMode)
	}

	m.restore(m.altNavOrig)
	m.historyIdx = m.history.Len()
	m.refreshMatches(false)

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring the saved input of the new one.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = m.snapshot()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.restore(m.saved[mode])
	m.refreshMatches(false)

	return m
}
