package amd64

import (
	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/types"
)

// Machine implements codegen.Machine for the AMD64 target (spec.md
// §4.6). It is stateful for the duration of one routine: StartRoutine
// resets the virtual-register counter and the in-progress target
// Routine, LowerInstr appends to its body, EndRoutine hands it back.
type Machine struct {
	ctx codegen.CompilationContext

	routine *ir.Routine // the IR routine currently being lowered
	out     *codegen.Routine

	vregSeq     int
	livenessSeq int

	instrIndex  int          // index of the IR instruction LowerInstr is processing
	labelAtIndex map[int]bool // IR instruction indices that a label resolves to
}

// New returns a Machine with no compilation context set; the caller
// must call SetCompilationContext before StartRoutine.
func New() *Machine { return &Machine{} }

func (m *Machine) SetCompilationContext(ctx codegen.CompilationContext) { m.ctx = ctx }

func (m *Machine) StartRoutine(r *ir.Routine) {
	m.routine = r
	m.out = codegen.NewRoutine(r.Name.Bytes)
	m.vregSeq = 0
	m.instrIndex = 0
	m.labelAtIndex = make(map[int]bool)
	for _, instr := range r.Instrs {
		for _, o := range []ir.Operand{instr.Target, instr.Oper1, instr.Oper2} {
			if o.Kind == ir.OperLabel && o.Lbl != nil {
				m.labelAtIndex[o.Lbl.Target] = true
			}
		}
	}
}

// placeLabelIfNeeded emits a bare label line when the instruction about
// to be lowered is the resolved target of some label (spec.md §4.8).
func (m *Machine) placeLabelIfNeeded() {
	if m.labelAtIndex[m.instrIndex] {
		m.out.Emit(codegen.TInstruction{Label: labelName(m.instrIndex)})
	}
}

func labelName(idx int) string {
	return "L" + itoaLabel(idx)
}

func itoaLabel(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "0"
	}
	var rev []byte
	for n > 0 {
		rev = append(rev, digits[n%10])
		n /= 10
	}
	buf := make([]byte, len(rev))
	for i, c := range rev {
		buf[len(rev)-1-i] = c
	}
	return string(buf)
}

func (m *Machine) EndRoutine() *codegen.Routine { return m.out }

func (m *Machine) Reset() {
	m.routine = nil
	m.out = nil
	m.vregSeq = 0
	m.livenessSeq = 0
	m.instrIndex = 0
	m.labelAtIndex = nil
}

func (m *Machine) newVReg(class codegen.RegClass) codegen.Reg {
	m.vregSeq++
	return codegen.Reg{Class: class, Virtual: true, ID: m.vregSeq}
}

func (m *Machine) newLiveness() int {
	m.livenessSeq++
	return m.livenessSeq
}

func classOf(t *types.Type) codegen.RegClass {
	if t != nil && t.IsFloat() {
		return codegen.ClassFloat
	}
	return codegen.ClassInt
}

// toOperand lowers an ir.Operand reference (variable/temporary/
// immediate/routine) to the IrOperand placeholder form internal/regalloc
// later rewrites to a physical register or memory operand, or to a
// direct immediate/label form that never needs allocation.
func toOperand(o ir.Operand, access codegen.Access) codegen.TOperand {
	switch o.Kind {
	case ir.OperImmediate:
		return codegen.TOperand{Kind: codegen.TImmediate, Type: o.Type, Access: codegen.Read, Imm: o}
	case ir.OperLabel:
		return codegen.TOperand{Kind: codegen.TLabel, Label: o.Lbl}
	case ir.OperNone:
		return codegen.TOperand{Kind: codegen.TNone}
	default:
		return codegen.TOperand{Kind: codegen.TIrOperand, Type: o.Type, Access: access, IR: o}
	}
}

func (m *Machine) emit(mnemonic string, comment string, ops ...codegen.TOperand) {
	m.out.Emit(codegen.TInstruction{Mnemonic: mnemonic, Operands: ops, Comment: comment})
}

// movMnemonic picks mov/movss/movsd by the operand's type tag (spec.md
// §4.6 "Mov selects mov/movss/movsd by the IR operand's type tag").
func movMnemonic(t *types.Type) string {
	if t == nil {
		return "mov"
	}
	switch t.Kind {
	case types.F32:
		return "movss"
	case types.F64:
		return "movsd"
	}
	return "mov"
}

func addSubMnemonic(op ir.Opcode, t *types.Type) string {
	isAdd := op == ir.OpAdd
	if t != nil && t.IsFloat() {
		single := t.Kind == types.F32
		switch {
		case isAdd && single:
			return "addss"
		case isAdd && !single:
			return "addsd"
		case !isAdd && single:
			return "subss"
		default:
			return "subsd"
		}
	}
	if isAdd {
		return "add"
	}
	return "sub"
}
