// Package log provides leveled structured logging for xfunc, based on
// [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Info("program loaded", slog.Int("functions", 3))
//
// A [Logger] is immutable. [Logger.Wrap] derives a logger with a modified
// configuration, [Logger.With] one with extra attributes, and
// [Logger.Named] one tagged with a component name:
//
//	build := logger.Named("lang")
//	build.Trace("function defined", slog.String("func", "area"))
//
// The zero Logger discards everything, so libraries can accept one as an
// optional dependency.
//
// # Package Logger
//
// The package-level functions ([Info], [Error] and friends) write to a
// default logger on [os.Stderr]. [Config] reconfigures it and [Default]
// returns it for callers that need a [Logger] value.
//
// Context-unaware functions use the context returned by
// [DefaultContextProvider].
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace records the steps of building and
// evaluating programs and is normally disabled.
//
// # Output
//
// Records are written as logfmt text ([FormatText], the default) or JSON
// ([FormatJSON]). With [WithPretty], records are styled for a terminal
// using lipgloss. Styling degrades to plain text when the output is not a
// terminal.
//
// Timestamps use [WithTimeLayout], which accepts [time] package layout names
// such as "RFC3339" or "Kitchen", short aliases like "ms", or a literal
// layout. The layout "none" omits timestamps.
package log
