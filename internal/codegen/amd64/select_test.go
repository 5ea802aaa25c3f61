package amd64_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/codegen/amd64"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerOne(t *testing.T, instrs []ir.Instruction) *codegen.Routine {
	t.Helper()
	r := ir.NewRoutine(name.New("f"), nil)
	r.Instrs = instrs
	m := amd64.New()
	m.StartRoutine(r)
	for i := range r.Instrs {
		m.LowerInstr(&r.Instrs[i])
	}
	return m.EndRoutine()
}

func varOp(n string, t *types.Type) ir.Operand {
	return ir.Operand{Kind: ir.OperVariable, Type: t, Name: name.New(n), PrevArgIndex: -1}
}

func immOp(t *types.Type, v int64) ir.Operand {
	return ir.Operand{Kind: ir.OperImmediate, Type: t, ImmInt: v, PrevArgIndex: -1}
}

func TestLowerInstr_AddSkipsMovWhenTargetIsOper1(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpAdd, Target: varOp("a", s32), Oper1: varOp("a", s32), Oper2: immOp(s32, 1)},
	})
	require.Len(t, out.Body, 1)
	assert.Equal(t, "add", out.Body[0].Mnemonic)
}

func TestLowerInstr_AddEmitsMovWhenTargetDiffersFromOper1(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpAdd, Target: varOp("t", s32), Oper1: varOp("a", s32), Oper2: varOp("b", s32)},
	})
	require.Len(t, out.Body, 2)
	assert.Equal(t, "mov", out.Body[0].Mnemonic)
	assert.Equal(t, "add", out.Body[1].Mnemonic)
}

func TestLowerInstr_FloatAddUsesAddsd(t *testing.T) {
	f64 := &types.Type{Kind: types.F64}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpAdd, Target: varOp("t", f64), Oper1: varOp("a", f64), Oper2: varOp("b", f64)},
	})
	require.Len(t, out.Body, 2)
	assert.Equal(t, "movsd", out.Body[0].Mnemonic)
	assert.Equal(t, "addsd", out.Body[1].Mnemonic)
}

func TestLowerInstr_SignedDivUsesCqoAndIdiv(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpDiv, Target: varOp("t", s32), Oper1: varOp("a", s32), Oper2: varOp("b", s32)},
	})
	var mnems []string
	for _, instr := range out.Body {
		mnems = append(mnems, instr.Mnemonic)
	}
	assert.Contains(t, mnems, "cqo")
	assert.Contains(t, mnems, "idiv")
	assert.NotContains(t, mnems, "div")
}

func TestLowerInstr_UnsignedDivUsesXorAndDiv(t *testing.T) {
	u32 := &types.Type{Kind: types.U32}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpDiv, Target: varOp("t", u32), Oper1: varOp("a", u32), Oper2: varOp("b", u32)},
	})
	var mnems []string
	for _, instr := range out.Body {
		mnems = append(mnems, instr.Mnemonic)
	}
	assert.Contains(t, mnems, "xor")
	assert.Contains(t, mnems, "div")
	assert.NotContains(t, mnems, "idiv")
}

func TestLowerInstr_CompareEmitsCmpMovAndCmov(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	boolT := &types.Type{Kind: types.Bool}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpLt, Target: varOp("t", boolT), Oper1: varOp("a", s32), Oper2: varOp("b", s32)},
	})
	require.Len(t, out.Body, 3)
	assert.Equal(t, "cmp", out.Body[0].Mnemonic)
	assert.Equal(t, "mov", out.Body[1].Mnemonic)
	assert.Contains(t, out.Body[2].Mnemonic, "cmov")
}

func TestLowerInstr_JzEmitsTestThenJz(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	lbl := &ir.Label{Target: 5}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpJz, Target: ir.Operand{Kind: ir.OperLabel, Lbl: lbl, PrevArgIndex: -1}, Oper1: varOp("c", s32)},
	})
	require.Len(t, out.Body, 2)
	assert.Equal(t, "test", out.Body[0].Mnemonic)
	assert.Equal(t, "jz", out.Body[1].Mnemonic)
}

func TestLowerInstr_MemberOffsetSumsPrecedingWidths(t *testing.T) {
	s64 := &types.Type{Kind: types.S64}
	s32 := &types.Type{Kind: types.S32}
	st := &types.Type{Kind: types.Struct, Members: []types.Member{
		{Name: "a", Type: s64},
		{Name: "b", Type: s32},
	}}
	idx := ir.Operand{Kind: ir.OperImmediate, Type: s32, ImmInt: 1, PrevArgIndex: -1}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpMovMember, Target: varOp("t", s32), Oper1: varOp("s", st), Oper2: idx},
	})
	require.Len(t, out.Body, 1)
	require.Len(t, out.Body[0].Operands, 2)
	assert.Equal(t, int64(8), out.Body[0].Operands[1].Offset, "member 1 follows an 8-byte s64 member, so its offset is 8, not its ordinal 1")
}

func TestLowerInstr_LabelPlacedAtBackpatchedIndex(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	lbl := &ir.Label{Target: 1}
	out := lowerOne(t, []ir.Instruction{
		{Op: ir.OpJump, Target: ir.Operand{Kind: ir.OperLabel, Lbl: lbl, PrevArgIndex: -1}},
		{Op: ir.OpMov, Target: varOp("x", s32), Oper1: immOp(s32, 0)},
	})
	require.Len(t, out.Body, 3)
	assert.Equal(t, "L1", out.Body[1].Label)
	assert.Equal(t, "mov", out.Body[2].Mnemonic)
}
