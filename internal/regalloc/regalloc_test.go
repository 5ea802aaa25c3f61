package regalloc_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/regalloc"
	"github.com/gmofishsauce/hplc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func irVar(n string) codegen.TOperand {
	s32 := &types.Type{Kind: types.S32}
	return codegen.TOperand{
		Kind: codegen.TIrOperand, Type: s32, Access: codegen.ReadWrite,
		IR: ir.Operand{Kind: ir.OperVariable, Type: s32, Name: name.New(n)},
	}
}

// onePool gives the allocator exactly one caller-save integer register,
// forcing the second distinct variable to evict (and spill) the first.
func onePool() regalloc.Pool {
	return regalloc.Pool{CallerSaveInt: []string{"rax"}, CalleeSaveInt: nil, Float: []string{"xmm0"}}
}

func TestAllocate_SpillsOnEviction(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("a")}},
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("b")}},
	}

	a := regalloc.New(onePool(), false)
	a.Allocate(r)

	var sawSpill bool
	for _, instr := range r.Body {
		if instr.Comment == "spill" {
			sawSpill = true
		}
	}
	assert.True(t, sawSpill, "expected a spill when the single register is reclaimed by a second variable")
	assert.NotEmpty(t, r.LocalOffsets)
}

func TestAllocate_ReusesLiveBindingWithoutReload(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("a")}},
		{Mnemonic: "add", Operands: []codegen.TOperand{irVar("a")}},
	}

	a := regalloc.New(onePool(), false)
	a.Allocate(r)

	for _, instr := range r.Body {
		assert.NotEqual(t, "reload", instr.Comment)
	}
}

func TestAllocate_BuildsFrameWithPrologueAndEpilogue(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{{Mnemonic: "ret"}}

	a := regalloc.New(onePool(), false)
	a.Allocate(r)

	require.NotEmpty(t, r.Prologue)
	assert.Equal(t, "push", r.Prologue[0].Mnemonic)
	require.NotEmpty(t, r.Epilogue)
	assert.Equal(t, "ret", r.Epilogue[len(r.Epilogue)-1].Mnemonic)
	// the lone ret in Body was replaced by CalleeSaveUnspill (empty here)
	// plus Epilogue, whose trailing ret is now the body's only ret.
	assert.Equal(t, r.Epilogue, r.Body)
}

func TestAllocate_LocalsSizeIs16ByteAligned(t *testing.T) {
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("a")}},
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("b")}},
		{Mnemonic: "ret"},
	}

	a := regalloc.New(onePool(), false)
	a.Allocate(r)

	assert.Equal(t, 0, r.LocalsSize%16)
}

// TestAllocate_LocalsSizeAccountsForOddCalleeSaveCount exercises a pool
// whose only register is callee-save, so the one live variable dirties
// exactly one callee-save register. CalleeSaveSpill's single push prints
// before push rbp (asmprint.Routine), shifting rsp's residue by 8 bytes;
// LocalsSize must round to 8 mod 16, not 0, to keep rsp 16-byte aligned
// at any call inside the body (spec.md §8 property 5).
func TestAllocate_LocalsSizeAccountsForOddCalleeSaveCount(t *testing.T) {
	pool := regalloc.Pool{CallerSaveInt: nil, CalleeSaveInt: []string{"rbx"}, Float: []string{"xmm0"}}
	r := codegen.NewRoutine("f")
	r.Body = []codegen.TInstruction{
		{Mnemonic: "mov", Operands: []codegen.TOperand{irVar("a")}},
		{Mnemonic: "ret"},
	}

	a := regalloc.New(pool, false)
	a.Allocate(r)

	require.Len(t, r.CalleeSaveSpill, 1, "exactly one callee-save register should have been dirtied")
	assert.Equal(t, 8, r.LocalsSize%16)
}
