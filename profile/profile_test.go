package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Disabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"zero", Profiler{}},
		{"unknown mode", Profiler{Mode: "disk", Dir: t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Enabled() {
				t.Fatal("Enabled() = true")
			}

			s := tt.p.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", s)
			}

			s.Stop()
			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	m := Modes()

	if !slices.IsSorted(m) {
		t.Errorf("Modes() not sorted: %v", m)
	}

	for _, mode := range m {
		if !(Profiler{Mode: mode}).Enabled() {
			t.Errorf("mode %q listed but not enabled", mode)
		}
	}
}
