package diag

import (
	"fmt"
	"io"
)

// ArenaStats is the minimal surface MemStats needs from an
// internal/arena.Arena[T], avoided as a generic dependency so MemStats
// can hold arenas of different element types in one slice.
type ArenaStats interface {
	HighWaterMark() int
	Len() int
}

// MemStats collects high-water-mark usage from every arena registered
// with Track and reports it on teardown, the Go-shaped replacement for
// original_source/src/memory.cpp's allocator trace (spec.md's
// diagnose_memory option). compiler.Context registers no arena, so the
// report it prints is empty.
type MemStats struct {
	enabled bool
	regions []namedRegion
}

type namedRegion struct {
	name string
	a    ArenaStats
}

// NewMemStats returns a MemStats. When enabled is false, Track is a
// no-op so the diagnose_memory=false configuration carries no overhead.
func NewMemStats(enabled bool) *MemStats {
	return &MemStats{enabled: enabled}
}

// Track registers an arena under a human-readable name so Report can
// later include it.
func (m *MemStats) Track(name string, a ArenaStats) {
	if !m.enabled {
		return
	}
	m.regions = append(m.regions, namedRegion{name: name, a: a})
}

// Report writes one line per tracked arena's element count and
// high-water mark to w.
func (m *MemStats) Report(w io.Writer) {
	if !m.enabled {
		return
	}
	for _, r := range m.regions {
		fmt.Fprintf(w, "arena %-16s items=%-8d bytes~=%d\n", r.name, r.a.Len(), r.a.HighWaterMark())
	}
}
