package codegen

import "github.com/gmofishsauce/hplc/internal/ir"

// Machine is a backend for one target architecture, grounded on
// internal/engine/wazevo/backend.Machine — here specialized to hplc's
// already-flat per-routine IR, so there is no block start/end, only a
// routine boundary.
type Machine interface {
	// SetCompilationContext installs ctx for the lifetime of the Machine.
	SetCompilationContext(CompilationContext)

	// StartRoutine begins lowering r; the Machine resets its per-routine
	// virtual-register counter and target Routine.
	StartRoutine(r *ir.Routine)

	// LowerInstr lowers one IR instruction into zero or more target
	// instructions appended to the current Routine's body.
	LowerInstr(instr *ir.Instruction)

	// EndRoutine finishes the current routine and returns its target
	// form (prologue/epilogue are filled in later, by internal/regalloc).
	EndRoutine() *Routine

	// Reset clears Machine state between routines/compilations.
	Reset()
}

// CompilationContext is passed to a Machine to let it request fresh
// virtual registers and consult the active ABI, mirroring
// internal/engine/wazevo/backend.CompilationContext's narrow, need-only
// surface.
type CompilationContext interface {
	// NewVReg allocates a fresh virtual register of the given class.
	NewVReg(class RegClass) Reg

	// ABI returns the calling convention the current compilation targets.
	ABI() ABI
}
