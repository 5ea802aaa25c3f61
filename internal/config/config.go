// Package config implements the compiler driver's configuration object
// (spec.md §6) and its TOML loading, grounded on
// lookbusy1344-arm_emulator/config/config.go's DefaultConfig-plus-
// toml.DecodeFile pattern.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Target selects the ABI the code generator lowers calling conventions
// for (spec.md §4.6).
type Target string

const (
	TargetWindows Target = "amd64-windows"
	TargetUnix    Target = "amd64-unix"
)

// Phase names the point at which the driver stops, per spec.md §6's
// stop_after option.
type Phase string

const (
	PhaseLex     Phase = "lex"
	PhaseParse   Phase = "parse"
	PhaseCheck   Phase = "check"
	PhaseIR      Phase = "ir"
	PhaseCodegen Phase = "codegen"
	PhaseLink    Phase = "link"
)

var phaseOrder = map[Phase]int{
	PhaseLex: 0, PhaseParse: 1, PhaseCheck: 2, PhaseIR: 3, PhaseCodegen: 4, PhaseLink: 5,
}

// Before reports whether p comes strictly before other in pipeline
// order (spec.md §2's leaves-first phase list).
func (p Phase) Before(other Phase) bool { return phaseOrder[p] < phaseOrder[other] }

// Config is the compiler driver's configuration object, matching
// spec.md §6's table exactly.
type Config struct {
	Target                 Target `toml:"target"`
	MaxErrorCount          int    `toml:"max_error_count"`
	MaxLineArrowErrorCount int    `toml:"max_line_arrow_error_count"`
	StopAfter              Phase  `toml:"stop_after"`
	DiagnoseMemory         bool   `toml:"diagnose_memory"`
	ProfileTime            bool   `toml:"profile_time"`
}

// DefaultConfig returns the configuration spec.md §6 implies when no
// file is loaded: System-V target, the documented error-count defaults,
// running the whole pipeline through link, diagnostics off.
func DefaultConfig() *Config {
	return &Config{
		Target:                 TargetUnix,
		MaxErrorCount:          6,
		MaxLineArrowErrorCount: 4,
		StopAfter:              PhaseLink,
		DiagnoseMemory:         false,
		ProfileTime:            false,
	}
}

// Load reads and decodes a TOML configuration file, starting from
// DefaultConfig so a file that sets only one option leaves the rest at
// their documented defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects inconsistent option combinations the way
// original_source/src/args_util.cpp rejects malformed argv, collecting
// every problem found rather than stopping at the first (SPEC_FULL.md
// "args_util-style multi-error options validation").
func (c *Config) Validate() []error {
	var errs []error
	if c.Target != TargetWindows && c.Target != TargetUnix {
		errs = append(errs, fmt.Errorf("config: target %q is not one of %q, %q", c.Target, TargetWindows, TargetUnix))
	}
	if c.MaxErrorCount <= 0 {
		errs = append(errs, fmt.Errorf("config: max_error_count must be positive, got %d", c.MaxErrorCount))
	}
	if c.MaxLineArrowErrorCount < 0 {
		errs = append(errs, fmt.Errorf("config: max_line_arrow_error_count must not be negative, got %d", c.MaxLineArrowErrorCount))
	}
	if _, ok := phaseOrder[c.StopAfter]; !ok {
		errs = append(errs, fmt.Errorf("config: stop_after %q is not a known phase", c.StopAfter))
	}
	return errs
}
