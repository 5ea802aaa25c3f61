// Package amd64 lowers IR instructions to AMD64 target instructions
// (spec.md §4.6), implementing codegen.Machine. Grounded on
// internal/engine/wazevo/backend/isa/amd64's Machine implementation
// shape and vreg.go's register-class split, re-expressed over hplc's
// flat instruction stream instead of wazero's SSA basic blocks.
package amd64

import "github.com/gmofishsauce/hplc/internal/codegen"

// Integer and floating-point physical register names in allocation
// order, caller-saves first so internal/regalloc's free-pool ordering
// (spec.md §4.7) prefers them over callee-saves.
var (
	IntCallerSave = []string{"rax", "rcx", "rdx", "rsi", "rdi", "r8", "r9", "r10", "r11"}
	IntCalleeSave = []string{"rbx", "r12", "r13", "r14", "r15"}

	FloatRegs = []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
		"xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15"}

	// RBP/RSP are reserved for the frame pointer and stack pointer and
	// never handed out by the allocator's free pool.
	RBP = "rbp"
	RSP = "rsp"
)

func physReg(class codegen.RegClass, name string) codegen.Reg {
	return codegen.Reg{Class: class, Name: name}
}

var (
	regRAX = physReg(codegen.ClassInt, "rax")
	regRDX = physReg(codegen.ClassInt, "rdx")
)
