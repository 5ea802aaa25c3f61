package amd64

import (
	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/types"
)

// LowerInstr implements codegen.Machine, translating one IR instruction
// to zero or more target instructions (spec.md §4.6).
func (m *Machine) LowerInstr(instr *ir.Instruction) {
	m.placeLabelIfNeeded()
	defer func() { m.instrIndex++ }()

	switch instr.Op {
	case ir.OpNone, ir.OpArg:
		// Args are read in bulk when the matching Call is reached, by
		// walking the backward-linked chain (spec.md §4.5); nothing to
		// lower for the Arg instruction itself.
	case ir.OpMov:
		m.emit(movMnemonic(instr.Target.Type), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpMovSX:
		m.emit("movsx", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpSToF32:
		m.emit("cvtsi2ss", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpSToF64:
		m.emit("cvtsi2sd", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpF32ToS:
		m.emit("cvttss2si", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpF64ToS:
		m.emit("cvttsd2si", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpF32ToF64:
		m.emit("cvtss2sd", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpF64ToF32:
		m.emit("cvtsd2ss", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	case ir.OpAddr:
		m.emit("lea", "", toOperand(instr.Target, codegen.Write), m.memOperand(instr.Oper1))
	case ir.OpDeref:
		m.emit(movMnemonic(instr.Target.Type), "", toOperand(instr.Target, codegen.Write), m.derefOperand(instr.Oper1))
	case ir.OpStoreDeref:
		m.emit(movMnemonic(instr.Oper1.Type), "", m.derefOperand(instr.Target), toOperand(instr.Oper1, codegen.Read))
	case ir.OpMovMember:
		m.emit(movMnemonic(instr.Target.Type), "member load", toOperand(instr.Target, codegen.Write), m.memberOperand(instr.Oper1, instr.Oper2))
	case ir.OpStoreMember:
		m.emit(movMnemonic(instr.Oper2.Type), "member store", m.memberOperand(instr.Target, instr.Oper1), toOperand(instr.Oper2, codegen.Read))
	case ir.OpMovElement:
		m.emit(movMnemonic(instr.Target.Type), "element load", toOperand(instr.Target, codegen.Write), m.elementOperand(instr.Oper1, instr.Oper2, instr.Target.Type))
	case ir.OpStoreElement:
		m.emit(movMnemonic(instr.Oper2.Type), "element store", m.elementOperand(instr.Target, instr.Oper1, instr.Oper2.Type), toOperand(instr.Oper2, codegen.Read))
	case ir.OpAdd, ir.OpSub:
		m.lowerAddSub(instr)
	case ir.OpMul:
		m.lowerMul(instr)
	case ir.OpDiv, ir.OpMod:
		m.lowerDivMod(instr)
	case ir.OpBitOr:
		m.lowerSimpleBinary(instr, "or")
	case ir.OpBitXor:
		m.lowerSimpleBinary(instr, "xor")
	case ir.OpBitAnd:
		m.lowerSimpleBinary(instr, "and")
	case ir.OpShl:
		m.lowerSimpleBinary(instr, "shl")
	case ir.OpShr:
		m.lowerSimpleBinary(instr, "shr")
	case ir.OpNeg:
		m.lowerUnaryInPlace(instr, "neg")
	case ir.OpCompl:
		m.lowerUnaryInPlace(instr, "not")
	case ir.OpNot:
		m.lowerLogicalNot(instr)
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLeq, ir.OpGt, ir.OpGeq:
		m.lowerCompare(instr)
	case ir.OpJump:
		m.emit("jmp", "", toOperand(instr.Target, 0))
	case ir.OpJz:
		m.emit("test", "", toOperand(instr.Oper1, codegen.Read), toOperand(instr.Oper1, codegen.Read))
		m.emit("jz", "", toOperand(instr.Target, 0))
	case ir.OpJnz:
		m.emit("test", "", toOperand(instr.Oper1, codegen.Read), toOperand(instr.Oper1, codegen.Read))
		m.emit("jnz", "", toOperand(instr.Target, 0))
	case ir.OpCall, ir.OpCallForeign:
		m.lowerCall(instr)
	case ir.OpReturn:
		m.emit("ret", "")
	}
}

func sameOperand(a, b ir.Operand) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.OperVariable, ir.OperTemporary:
		return a.Name.Bytes == b.Name.Bytes
	}
	return false
}

// lowerAddSub implements spec.md §4.6's "if target != oper1, first emit
// a typed move; then add/sub".
func (m *Machine) lowerAddSub(instr *ir.Instruction) {
	if !sameOperand(instr.Target, instr.Oper1) {
		m.emit(movMnemonic(instr.Target.Type), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	}
	m.emit(addSubMnemonic(instr.Op, instr.Target.Type), "", toOperand(instr.Target, codegen.ReadWrite), toOperand(instr.Oper2, codegen.Read))
}

func (m *Machine) lowerMul(instr *ir.Instruction) {
	t := instr.Target.Type
	if t != nil && t.IsFloat() {
		mnem := "mulss"
		if t.Kind == types.F64 {
			mnem = "mulsd"
		}
		if !sameOperand(instr.Target, instr.Oper1) {
			m.emit(movMnemonic(t), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
		}
		m.emit(mnem, "", toOperand(instr.Target, codegen.ReadWrite), toOperand(instr.Oper2, codegen.Read))
		return
	}
	if t != nil && t.IsSigned() {
		if !sameOperand(instr.Target, instr.Oper1) {
			m.emit("mov", "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
		}
		m.emit("imul", "", toOperand(instr.Target, codegen.ReadWrite), toOperand(instr.Oper2, codegen.Read))
		return
	}
	// Unsigned multiply uses the fixed-register rax/rdx idiom (spec.md
	// §4.6): rax and rdx are tagged with a fresh liveness id so the
	// allocator tracks the three uses as one live range.
	rax := m.fixedReg(regRAX)
	rdx := m.fixedReg(regRDX)
	m.emit("xor", "", rdx, rdx)
	m.emit("mov", "", rax, toOperand(instr.Oper1, codegen.Read))
	m.emit("mul", "", toOperand(instr.Oper2, codegen.Read))
	m.emit("mov", "", toOperand(instr.Target, codegen.Write), rax)
}

func (m *Machine) lowerDivMod(instr *ir.Instruction) {
	t := instr.Target.Type
	if t != nil && t.IsFloat() {
		mnem := "divss"
		if t.Kind == types.F64 {
			mnem = "divsd"
		}
		if !sameOperand(instr.Target, instr.Oper1) {
			m.emit(movMnemonic(t), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
		}
		m.emit(mnem, "", toOperand(instr.Target, codegen.ReadWrite), toOperand(instr.Oper2, codegen.Read))
		return
	}

	rax := m.fixedReg(regRAX)
	rdx := m.fixedReg(regRDX)
	m.emit("mov", "", rax, toOperand(instr.Oper1, codegen.Read))
	signed := t != nil && t.IsSigned()
	if signed {
		m.emit("cqo", "", rdx, rax)
	} else {
		m.emit("xor", "", rdx, rdx)
	}
	divMnem := "div"
	if signed {
		divMnem = "idiv"
	}
	m.emit(divMnem, "", toOperand(instr.Oper2, codegen.Read))
	if instr.Op == ir.OpDiv {
		m.emit("mov", "", toOperand(instr.Target, codegen.Write), rax)
	} else {
		m.emit("mov", "", toOperand(instr.Target, codegen.Write), rdx)
	}
}

func (m *Machine) lowerSimpleBinary(instr *ir.Instruction, mnem string) {
	if !sameOperand(instr.Target, instr.Oper1) {
		m.emit(movMnemonic(instr.Target.Type), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	}
	m.emit(mnem, "", toOperand(instr.Target, codegen.ReadWrite), toOperand(instr.Oper2, codegen.Read))
}

func (m *Machine) lowerUnaryInPlace(instr *ir.Instruction, mnem string) {
	if !sameOperand(instr.Target, instr.Oper1) {
		m.emit(movMnemonic(instr.Target.Type), "", toOperand(instr.Target, codegen.Write), toOperand(instr.Oper1, codegen.Read))
	}
	m.emit(mnem, "", toOperand(instr.Target, codegen.ReadWrite))
}

func immOperand(t *types.Type, v int64) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TImmediate, Type: t, Imm: ir.Operand{Kind: ir.OperImmediate, Type: t, ImmInt: v}}
}

// lowerLogicalNot computes `!x` as `x == 0` (spec.md's Open Questions
// section treats Not as its own opcode, never falling through into
// Compl the way the C++ original's switch arguably did by accident).
func (m *Machine) lowerLogicalNot(instr *ir.Instruction) {
	m.emit("test", "", toOperand(instr.Oper1, codegen.Read), toOperand(instr.Oper1, codegen.Read))
	m.emit("mov", "", toOperand(instr.Target, codegen.Write), immOperand(instr.Target.Type, 0))
	m.emit("setz", "", toOperand(instr.Target, codegen.ReadWrite))
}

func cmovMnemonic(op ir.Opcode, signed bool) string {
	switch op {
	case ir.OpEq:
		return "cmove"
	case ir.OpNeq:
		return "cmovne"
	case ir.OpLt:
		if signed {
			return "cmovl"
		}
		return "cmovb"
	case ir.OpLeq:
		if signed {
			return "cmovle"
		}
		return "cmovbe"
	case ir.OpGt:
		if signed {
			return "cmovg"
		}
		return "cmova"
	case ir.OpGeq:
		if signed {
			return "cmovge"
		}
		return "cmovae"
	}
	return "cmove"
}

// lowerCompare implements spec.md §4.6: cmp/comiss/comisd followed by
// `mov target, 0` and a predicated cmovCC target, 1.
func (m *Machine) lowerCompare(instr *ir.Instruction) {
	operandType := instr.Oper1.Type
	if operandType != nil && operandType.IsFloat() {
		mnem := "comiss"
		if operandType.Kind == types.F64 {
			mnem = "comisd"
		}
		m.emit(mnem, "", toOperand(instr.Oper1, codegen.Read), toOperand(instr.Oper2, codegen.Read))
	} else {
		m.emit("cmp", "", toOperand(instr.Oper1, codegen.Read), toOperand(instr.Oper2, codegen.Read))
	}
	m.emit("mov", "", toOperand(instr.Target, codegen.Write), immOperand(instr.Target.Type, 0))
	signed := operandType != nil && operandType.IsSigned()
	m.emit(cmovMnemonic(instr.Op, signed), "", toOperand(instr.Target, codegen.ReadWrite), immOperand(instr.Target.Type, 1))
}

func (m *Machine) memOperand(base ir.Operand) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TMemoryIR, Type: base.Type, Access: codegen.Read, IRBase: base}
}

func (m *Machine) derefOperand(ptr ir.Operand) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TMemoryIR, Type: ptr.Type, Access: codegen.ReadWrite, IRBase: ptr}
}

func (m *Machine) memberOperand(base, idx ir.Operand) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TMemoryIR, Type: idx.Type, IRBase: base, Offset: memberByteOffset(base.Type, idx.ImmInt)}
}

// memberByteOffset sums the widths of the members preceding ordinal within
// base's struct type (struct value or pointer-to-struct), since a member's
// ordinal position and its byte offset diverge once an earlier member is
// wider than one byte.
func memberByteOffset(base *types.Type, ordinal int64) int64 {
	st := base
	if st != nil && st.Kind == types.Pointer {
		st = st.Elem
	}
	if st == nil || st.Kind != types.Struct {
		return ordinal
	}
	var off int64
	for i := int64(0); i < ordinal && int(i) < len(st.Members); i++ {
		off += int64(st.Members[i].Type.Width())
	}
	return off
}

func (m *Machine) elementOperand(base, idx ir.Operand, elemType *types.Type) codegen.TOperand {
	scale := 1
	if elemType != nil {
		scale = elemType.Width()
	}
	return codegen.TOperand{Kind: codegen.TMemoryIR, Type: elemType, IRBase: base, Scale: scale, IR: idx}
}

// lowerCall walks the backward-linked Arg chain (spec.md §4.5) starting
// at the instruction index recorded in instr.Oper2, classifies each
// argument against the active ABI (spec.md §4.6), and emits the moves
// that place them before the call.
func (m *Machine) lowerCall(instr *ir.Instruction) {
	var args []ir.Operand
	idx := int(instr.Oper2.ImmInt)
	for idx >= 0 {
		argInstr := m.routine.Instrs[idx]
		args = append([]ir.Operand{argInstr.Oper1}, args...)
		idx = argInstr.Target.PrevArgIndex
	}

	abi := codegen.ABISystemV
	if m.ctx != nil {
		abi = m.ctx.ABI()
	}

	argTypes := make([]*types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	classes := codegen.ClassifyArgs(abi, argTypes)

	if abi == codegen.ABIWindows {
		m.emit("sub", "shadow space", physOp(RSP), immOperand(nil, codegen.ShadowSpaceBytes))
	}

	for i, a := range args {
		c := classes[i]
		if codegen.PassByAddress(a.Type) {
			m.emit("lea", "struct by address", m.argDest(c, a.Type), m.memOperand(a))
			continue
		}
		m.emit(movMnemonic(a.Type), "arg", m.argDest(c, a.Type), toOperand(a, codegen.Read))
	}

	m.emit("call", "", toOperand(instr.Oper1, codegen.Read))

	if abi == codegen.ABIWindows {
		m.emit("add", "release shadow space", physOp(RSP), immOperand(nil, codegen.ShadowSpaceBytes))
	}

	if instr.Target.Kind != ir.OperNone {
		rax := m.fixedReg(regRAX)
		m.emit(movMnemonic(instr.Target.Type), "return value", toOperand(instr.Target, codegen.Write), rax)
	}
}

func physOp(name string) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TPhysReg, Reg: physReg(codegen.ClassInt, name), Access: codegen.ReadWrite}
}

func (m *Machine) fixedReg(r codegen.Reg) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TFixedReg, Reg: r, LivenessID: m.newLiveness(), Access: codegen.ReadWrite}
}

func (m *Machine) argDest(c codegen.ArgClass, t *types.Type) codegen.TOperand {
	if c.OnStack {
		return codegen.TOperand{Kind: codegen.TMemory, Type: t, Base: physReg(codegen.ClassInt, RSP), Access: codegen.Write}
	}
	class := codegen.ClassInt
	if c.IsFloat {
		class = codegen.ClassFloat
	}
	return m.fixedReg(physReg(class, c.Reg))
}
