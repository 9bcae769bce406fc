package profile

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unsupported Mode disables profiling.
	Mode string
	// Dir receives the profile. The working directory is used when empty.
	Dir string
	// Quiet suppresses the messages printed when profiling starts and stops.
	Quiet bool
}

// Enabled reports whether p would start a profiler.
func (p Profiler) Enabled() bool {
	if p.Mode == "" {
		return false
	}

	_, ok := modes[p.Mode]

	return ok
}

// Start begins profiling and returns the [Stopper] that ends it.
// Start and the returned Stop are always safe to call, even when profiling is
// not compiled in or p is not [Profiler.Enabled].
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
