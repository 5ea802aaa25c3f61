package amd64

import "github.com/gmofishsauce/hplc/internal/regalloc"

// RegisterPool returns AMD64's allocable register inventory for
// internal/regalloc (spec.md §4.7), in the same caller-save-first order
// used throughout this package.
func RegisterPool() regalloc.Pool {
	return regalloc.Pool{
		CallerSaveInt: IntCallerSave,
		CalleeSaveInt: IntCalleeSave,
		Float:         FloatRegs,
	}
}
