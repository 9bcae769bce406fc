package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decode(t *testing.T, b []byte) []map[string]any {
	t.Helper()

	var entries []map[string]any

	for line := range bytes.Lines(b) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("invalid JSON record %q: %v", line, err)
		}

		entries = append(entries, entry)
	}

	return entries
}

func TestLogger_Make_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.Writer() != &buf {
		t.Error("Writer() is not the configured output")
	}

	logger.Info("hidden")
	logger.Warn("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output for default level: %q", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  []string
	}{
		{"trace", LevelTrace, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", LevelInfo, []string{"INFO", "WARN", "ERROR"}},
		{"error", LevelError, []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithLevel(tt.level), WithFormat(FormatJSON))

			l.Trace("m")
			l.Debug("m")
			l.Info("m")
			l.Warn("m")
			l.Error("m")

			entries := decode(t, buf.Bytes())
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d records, want %d:\n%s", len(entries), len(tt.want), &buf)
			}

			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("record %d level = %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	ctx := t.Context()

	l.TraceContext(ctx, "trace", slog.Int("n", 1))
	l.DebugContext(ctx, "debug", slog.Int("n", 2))
	l.InfoContext(ctx, "info", slog.Int("n", 3))
	l.WarnContext(ctx, "warn", slog.Int("n", 4))
	l.ErrorContext(ctx, "error", slog.Int("n", 5))

	entries := decode(t, buf.Bytes())
	if len(entries) != 5 {
		t.Fatalf("got %d records, want 5", len(entries))
	}

	for i, e := range entries {
		if e["n"] != float64(i+1) {
			t.Errorf("record %d n = %v, want %d", i, e["n"], i+1)
		}
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithLevel(LevelInfo))
	l.Info("with caller")
	l.InfoContext(t.Context(), "with caller")

	for _, e := range decode(t, buf.Bytes()) {
		src, ok := e["source"].(map[string]any)
		if !ok {
			t.Fatalf("missing source in %v", e)
		}

		if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
			t.Errorf("source file = %q, want log_test.go", file)
		}
	}

	buf.Reset()

	Make(&buf, WithFormat(FormatJSON), WithLevel(LevelInfo)).Info("no caller")

	if strings.Contains(buf.String(), `"source"`) {
		t.Errorf("source included when disabled: %s", &buf)
	}
}

func TestLogger_With_Named(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelInfo))
	l := base.Named("lang").With(slog.String("func", "area"))
	l.Info("function defined")
	base.Info("plain")

	entries := decode(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("got %d records, want 2", len(entries))
	}

	if entries[0]["component"] != "lang" || entries[0]["func"] != "area" {
		t.Errorf("attributes missing: %v", entries[0])
	}

	if _, ok := entries[1]["component"]; ok {
		t.Errorf("With modified the parent logger: %v", entries[1])
	}
}

func TestLogger_Wrap_KeepsAttributes(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelError)).
		With(slog.String("component", "cli")).
		Wrap(WithFormat(FormatJSON), WithLevel(LevelDebug))

	l.Debug("wrapped")

	entries := decode(t, buf.Bytes())
	if len(entries) != 1 {
		t.Fatalf("got %d records, want 1", len(entries))
	}

	if entries[0]["component"] != "cli" {
		t.Errorf("Wrap dropped attributes: %v", entries[0])
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("test")
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")

	if l.With(slog.String("key", "value")).Logger != nil {
		t.Error("With on zero value returned a live logger")
	}

	if l.Enabled(t.Context(), LevelError) {
		t.Error("zero value reports enabled")
	}

	var buf bytes.Buffer

	w := l.Wrap(WithOutput(&buf), WithLevel(LevelInfo))
	w.Info("revived")

	if !strings.Contains(buf.String(), "revived") {
		t.Errorf("Wrap on zero value did not log: %q", &buf)
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	l := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelInfo))

	for i := range 16 {
		wg.Go(func() {
			l.With(slog.Int("worker", i)).Info("concurrent")
		})
	}

	wg.Wait()

	if n := len(decode(t, buf.Bytes())); n != 16 {
		t.Errorf("got %d records, want 16", n)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Bytes()
}

func BenchmarkLogger_Info(b *testing.B) {
	l := Make(&bytes.Buffer{}, WithLevel(LevelInfo))

	for b.Loop() {
		l.Info("benchmark", slog.Int("n", 1))
	}
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	l := Make(&bytes.Buffer{})

	b.ReportAllocs()

	for b.Loop() {
		l.Trace("benchmark", slog.Int("n", 1))
	}
}
