package diag

import (
	"fmt"
	"io"
	"time"
)

// Profiler records wall-clock duration for each named compiler phase and
// prints a table to an io.Writer on request. This is hplc's Go-shaped
// replacement for original_source/src/time_profiler.cpp's static event
// ring (spec.md §9 "Global/static state": moved onto a context-owned
// value instead of process-global state).
type Profiler struct {
	enabled bool
	spans   []span
	started map[string]time.Time
}

type span struct {
	name string
	d    time.Duration
}

// NewProfiler returns a Profiler. When enabled is false, Begin/End are
// no-ops so the profile_time=false configuration carries no overhead.
func NewProfiler(enabled bool) *Profiler {
	return &Profiler{enabled: enabled, started: make(map[string]time.Time)}
}

// Begin marks the start of a named phase.
func (p *Profiler) Begin(name string) {
	if !p.enabled {
		return
	}
	p.started[name] = time.Now()
}

// End marks the end of a named phase previously started with Begin.
func (p *Profiler) End(name string) {
	if !p.enabled {
		return
	}
	start, ok := p.started[name]
	if !ok {
		return
	}
	p.spans = append(p.spans, span{name: name, d: time.Since(start)})
	delete(p.started, name)
}

// Report writes one line per recorded phase span to w, in recording
// order, matching the profile_time config option's stderr-on-exit
// contract (spec.md §6).
func (p *Profiler) Report(w io.Writer) {
	if !p.enabled {
		return
	}
	for _, s := range p.spans {
		fmt.Fprintf(w, "phase %-16s %v\n", s.name, s.d)
	}
}
