// Package cli contains the command line interface for xfunc.
//
// # Usage
//
//	xfunc [flags] <command> [args]
//
// The default command is eval, so a source and its arguments may follow the
// global flags directly:
//
//	xfunc shapes.xfn -F area 2.5
//	xfunc eval -t '<arglist><arg type="int" name="n"/></arglist><neg arg="n"/>' 3
//
// Other commands are fmt (native, json, yaml, ast), list, repl and init.
//
// # Sources
//
// A source is a file path, literal markup text, or '-' for standard input.
// Relative paths that do not exist in the working directory are looked up in
// each --path directory and then in each directory of XFUNC_PATH.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/xfunc/config.yaml). The init command
// writes that file from the current flag values. Keys are flag names; nested
// mappings join with hyphens:
//
//	log:
//	  level: debug
//	max-depth: 32
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time: timestamp layout (rfc3339, kitchen, timeonly, none, ...)
//   - --log-caller: include the caller's source position
//   - --log-pretty: align text records and indent JSON records
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile to record (cpu, heap, allocs, trace, ...)
//   - --pprof-dir: output directory (default ~/.cache/xfunc/pprof)
package cli
