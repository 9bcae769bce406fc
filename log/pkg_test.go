package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func withDefault(t *testing.T, l Logger) {
	t.Helper()

	original := Default()

	SetDefault(l)
	t.Cleanup(func() { SetDefault(original) })
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	withDefault(t, Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(m string, a ...slog.Attr) { TraceContext(t.Context(), m, a...) }, "TRACE"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(t.Context(), m, a...) }, "DEBUG"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(t.Context(), m, a...) }, "INFO"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(t.Context(), m, a...) }, "WARN"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(t.Context(), m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			entries := decode(t, buf.Bytes())
			if len(entries) != 1 {
				t.Fatalf("got %d records, want 1", len(entries))
			}

			e := entries[0]
			if e["msg"] != "package message" || e["level"] != tt.level || e["key"] != "value" {
				t.Errorf("unexpected record: %v", e)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	withDefault(t, Make(&buf).Named("cli"))

	Config(WithLevel(LevelDebug), WithTimeLayout("none"))
	Debug("configured")

	if got, want := buf.String(), "level=DEBUG msg=configured component=cli\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if Default().Level() != LevelDebug {
		t.Errorf("Default().Level() = %v, want debug", Default().Level())
	}
}

func TestPackage_With_Named(t *testing.T) {
	var buf bytes.Buffer

	withDefault(t, Make(&buf, WithLevel(LevelInfo), WithTimeLayout("none")))

	Named("repl").With(slog.Int("line", 4)).Info("evaluated")

	out := buf.String()
	if !strings.Contains(out, "component=repl") || !strings.Contains(out, "line=4") {
		t.Errorf("output = %q", out)
	}
}
