package asmprint_test

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/hplc/internal/asmprint"
	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reg(name string) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TPhysReg, Reg: codegen.Reg{Name: name}}
}

func TestRoutine_FramingSections(t *testing.T) {
	r := codegen.NewRoutine("add")
	r.Prologue = []codegen.TInstruction{{Mnemonic: "push", Operands: []codegen.TOperand{reg("rbp")}}}
	r.Body = []codegen.TInstruction{{Mnemonic: "mov", Operands: []codegen.TOperand{reg("rax"), reg("rdi")}}}
	r.Epilogue = []codegen.TInstruction{{Mnemonic: "ret"}}

	var b strings.Builder
	asmprint.Routine(&b, r)
	out := b.String()

	assert.True(t, strings.HasPrefix(out, "add:\n"))
	assert.Contains(t, out, "; prologue\n\tpush\trbp\n")
	assert.Contains(t, out, "; routine body\n\tmov\trax, rdi\n")
	assert.Contains(t, out, "; epilogue\n\tret\n")
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestWriteInstr_BareLabelLine(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{{Label: "L3"}, {Mnemonic: "ret"}}
	var b strings.Builder
	asmprint.Routine(&b, r)
	assert.Contains(t, b.String(), "L3:\n\tret\n")
}

func TestImmediateText(t *testing.T) {
	s64 := &types.Type{Kind: types.S64}
	str := &types.Type{Kind: types.String}
	boolT := &types.Type{Kind: types.Bool}
	f32 := &types.Type{Kind: types.F32}
	f64 := &types.Type{Kind: types.F64}
	ptr := &types.Type{Kind: types.Pointer}

	cases := []struct {
		name string
		imm  ir.Operand
		want string
	}{
		{"int", ir.Operand{Type: s64, ImmInt: 42}, "42"},
		{"bool true", ir.Operand{Type: boolT, ImmBool: true}, "(true)"},
		{"bool false", ir.Operand{Type: boolT}, "(false)"},
		{"null", ir.Operand{ImmIsNull: true}, "(null)"},
		{"string short", ir.Operand{Type: str, ImmString: `hi "there"`}, `"hi \"there\""`},
		{"float32", ir.Operand{Type: f32, ImmFloat: 1.5}, "1.5f"},
		{"float64", ir.Operand{Type: f64, ImmFloat: 2.5}, "2.5d"},
		{"nonzero pointer", ir.Operand{Type: ptr, ImmInt: 0x10}, "0x10"},
		{"null pointer", ir.Operand{Type: ptr, ImmInt: 0}, "(null)"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			instr := codegen.TInstruction{
				Mnemonic: "mov",
				Operands: []codegen.TOperand{{Kind: codegen.TImmediate, Imm: c.imm}},
			}
			r := codegen.NewRoutine("f")
			r.Body = []codegen.TInstruction{instr}
			var b strings.Builder
			asmprint.Routine(&b, r)
			require.Contains(t, b.String(), c.want)
		})
	}
}

func TestImmediateText_StringTruncation(t *testing.T) {
	str := &types.Type{Kind: types.String}
	long := strings.Repeat("x", 30)
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{{
		Mnemonic: "mov",
		Operands: []codegen.TOperand{{Kind: codegen.TImmediate, Imm: ir.Operand{Type: str, ImmString: long}}},
	}}
	var b strings.Builder
	asmprint.Routine(&b, r)
	out := b.String()
	assert.Contains(t, out, strings.Repeat("x", 20)+`"...`)
}

func TestMemoryOperand_Formatting(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{{
		Mnemonic: "mov",
		Operands: []codegen.TOperand{
			reg("rax"),
			{Kind: codegen.TMemory, Base: codegen.Reg{Name: "rbp"}, Offset: -8},
		},
	}}
	var b strings.Builder
	asmprint.Routine(&b, r)
	assert.Contains(t, b.String(), "[rbp-8]")
}
