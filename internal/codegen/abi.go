package codegen

import "github.com/gmofishsauce/hplc/internal/types"

// ABI classifies calling-convention parameter placement (spec.md §4.6).
type ABI int

const (
	ABISystemV ABI = iota
	ABIWindows
)

// ArgClass says where one call argument lands: a named integer/pointer
// register, a named float register, or the stack.
type ArgClass struct {
	Reg     string // empty if OnStack
	IsFloat bool
	OnStack bool
}

// intRegsSystemV/intRegsWindows are listed in calling-convention order;
// floatRegs are the argument-passing xmm registers in order.
var (
	intRegsSystemV  = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	floatRegsSystemV = []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

	intRegsWindows  = []string{"rcx", "rdx", "r8", "r9"}
	floatRegsWindows = []string{"xmm0", "xmm1", "xmm2", "xmm3"}
)

// ShadowSpaceBytes is the Windows x64 ABI's mandatory caller-reserved
// area below rsp (spec.md §4.6).
const ShadowSpaceBytes = 32

// StructByAddressThreshold is the size above which a struct argument is
// passed by address rather than by value (spec.md §4.6; per §9's open
// question, applied uniformly to both ABIs).
const StructByAddressThreshold = 8

// ClassifyArgs assigns each parameter type an ArgClass in order,
// following the Windows x64 shared-index-between-classes rule or the
// System-V class-local-index rule (spec.md §4.6).
func ClassifyArgs(abi ABI, paramTypes []*types.Type) []ArgClass {
	classes := make([]ArgClass, len(paramTypes))
	switch abi {
	case ABIWindows:
		idx := 0
		for i, t := range paramTypes {
			isFloat := passedAsFloat(t)
			if idx < len(intRegsWindows) {
				if isFloat {
					classes[i] = ArgClass{Reg: floatRegsWindows[idx], IsFloat: true}
				} else {
					classes[i] = ArgClass{Reg: intRegsWindows[idx]}
				}
			} else {
				classes[i] = ArgClass{OnStack: true, IsFloat: isFloat}
			}
			idx++
		}
	default:
		ints, floats := 0, 0
		for i, t := range paramTypes {
			if passedAsFloat(t) {
				if floats < len(floatRegsSystemV) {
					classes[i] = ArgClass{Reg: floatRegsSystemV[floats], IsFloat: true}
					floats++
				} else {
					classes[i] = ArgClass{OnStack: true, IsFloat: true}
				}
			} else {
				if ints < len(intRegsSystemV) {
					classes[i] = ArgClass{Reg: intRegsSystemV[ints]}
					ints++
				} else {
					classes[i] = ArgClass{OnStack: true}
				}
			}
		}
	}
	return classes
}

func passedAsFloat(t *types.Type) bool { return t != nil && t.IsFloat() }

// PassByAddress reports whether a struct-typed argument is passed by
// address (spec.md §4.6 "Struct arguments whose size exceeds 8 bytes are
// passed by address").
func PassByAddress(t *types.Type) bool {
	return t != nil && t.Kind == types.Struct && t.Width() > StructByAddressThreshold
}
