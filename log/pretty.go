package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles are bound to a
// renderer for the handler's output, so colors are dropped automatically
// when the output is not a terminal.
type palette struct {
	key, str, num, dur, time, src, msg lipgloss.Style
	yes, no, null                      lipgloss.Style
	level                              map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		dur:  fg("5"),
		time: fg("8"),
		src:  fg("8").Italic(true),
		msg:  r.NewStyle().Bold(true),
		yes:  fg("2"),
		no:   fg("1"),
		null: fg("8"),
		level: map[Level]lipgloss.Style{
			LevelTrace: fg("4").Faint(true),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3"),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (p *palette) levelStyle(level slog.Level) lipgloss.Style {
	switch l := Level(level); {
	case l >= LevelError:
		return p.level[LevelError]
	case l >= LevelWarn:
		return p.level[LevelWarn]
	case l >= LevelInfo:
		return p.level[LevelInfo]
	case l >= LevelDebug:
		return p.level[LevelDebug]
	default:
		return p.level[LevelTrace]
	}
}

// field is a flattened attribute. Group members are keyed by their dotted
// path.
type field struct {
	key string
	val slog.Value
}

// prettyHandler writes styled records for a human reader. In text format each
// record is one line. In JSON format each record is a brace-delimited block
// with one field per line.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *palette
	attrs  []field
	groups []string
	format Format
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		style:  newPalette(w),
		format: format,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minimum := slog.LevelInfo
	if h.opts.Level != nil {
		minimum = h.opts.Level.Level()
	}

	return level >= minimum
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.groups, a)
	}

	return c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	c.groups = append(slices.Clip(h.groups), name)

	return c
}

func (h *prettyHandler) clone() *prettyHandler {
	c := *h
	c.attrs = slices.Clip(h.attrs)
	c.groups = slices.Clip(h.groups)

	return &c
}

// appendAttr resolves a, applies ReplaceAttr and flattens groups.
func (h *prettyHandler) appendAttr(
	fields []field,
	groups []string,
	a slog.Attr,
) []field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return fields
		}

		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, m := range members {
			fields = h.appendAttr(fields, groups, m)
		}

		return fields
	}

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return fields
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	return append(fields, field{key: key, val: a.Value})
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var head []field

	if !r.Time.IsZero() {
		head = h.appendAttr(head, nil, slog.Time(slog.TimeKey, r.Time))
	}

	head = h.appendAttr(head, nil, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			head = append(head, field{
				key: slog.SourceKey,
				val: slog.StringValue(
					fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line),
				),
			})
		}
	}

	body := slices.Clip(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		body = h.appendAttr(body, h.groups, a)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeBlock(&buf, r, head, body)
	} else {
		h.writeLine(&buf, r, head, body)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// writeLine renders: time LEVEL source message key=value ...
func (h *prettyHandler) writeLine(
	buf *bytes.Buffer,
	r slog.Record,
	head, body []field,
) {
	for _, f := range head {
		switch f.key {
		case slog.TimeKey:
			buf.WriteString(h.style.time.Render(f.val.String()))
		case slog.LevelKey:
			buf.WriteString(
				h.style.levelStyle(r.Level).Render(fmt.Sprintf("%-5s", f.val)),
			)
		case slog.SourceKey:
			buf.WriteString(h.style.src.Render(f.val.String()))
		}

		buf.WriteByte(' ')
	}

	buf.WriteString(h.style.msg.Render(r.Message))

	for _, f := range body {
		buf.WriteByte(' ')
		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		h.writeValue(buf, f.val, false)
	}

	buf.WriteByte('\n')
}

// writeBlock renders a record as an indented JSON object.
func (h *prettyHandler) writeBlock(
	buf *bytes.Buffer,
	r slog.Record,
	head, body []field,
) {
	fields := append(slices.Clip(head), field{
		key: slog.MessageKey,
		val: slog.StringValue(r.Message),
	})
	fields = append(fields, body...)

	buf.WriteString("{\n")

	for i, f := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(strconv.Quote(f.key)))
		buf.WriteString(": ")

		switch f.key {
		case slog.LevelKey:
			buf.WriteString(
				h.style.levelStyle(r.Level).Render(strconv.Quote(f.val.String())),
			)
		default:
			h.writeValue(buf, f.val, true)
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value, quote bool) {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		str := v.String()
		if quote || needsQuote(str) {
			str = strconv.Quote(str)
		}

		buf.WriteString(s.str.Render(str))

	case slog.KindInt64:
		buf.WriteString(s.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(s.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(
			s.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)),
		)

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(s.yes.Render("true"))
		} else {
			buf.WriteString(s.no.Render("false"))
		}

	case slog.KindDuration:
		str := v.Duration().String()
		if quote {
			str = strconv.Quote(str)
		}

		buf.WriteString(s.dur.Render(str))

	case slog.KindTime:
		str := v.Time().Format("2006-01-02T15:04:05.000Z07:00")
		if quote {
			str = strconv.Quote(str)
		}

		buf.WriteString(s.time.Render(str))

	default:
		if v.Any() == nil {
			buf.WriteString(s.null.Render("null"))

			return
		}

		str := v.String()
		if quote || needsQuote(str) {
			str = strconv.Quote(str)
		}

		buf.WriteString(s.str.Render(str))
	}
}

// needsQuote reports whether a text value would be ambiguous unquoted.
func needsQuote(s string) bool {
	if s == "" {
		return true
	}

	return strings.ContainsFunc(s, func(r rune) bool {
		return r == ' ' || r == '=' || r == '"' || r < ' ' || r == 0x7f
	})
}
