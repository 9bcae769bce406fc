// Package profile provides optional runtime profiling for the xfunc command.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only when the
// binary is built with the "pprof" build tag:
//
//	go build -tags pprof .
//	./xfunc --pprof-mode cpu eval -F area 2.5
//	go tool pprof ./xfunc "$XDG_CACHE_HOME/xfunc/pprof/cpu.pprof"
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need build tags of their own.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace. Each writes a file named after the mode into
// [Profiler.Dir].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
