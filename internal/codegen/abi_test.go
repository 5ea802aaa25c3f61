package codegen_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyArgs_SystemVSeparatesIntAndFloatIndices(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	f64 := &types.Type{Kind: types.F64}
	classes := codegen.ClassifyArgs(codegen.ABISystemV, []*types.Type{s32, f64, s32})

	require.Len(t, classes, 3)
	assert.Equal(t, "rdi", classes[0].Reg)
	assert.Equal(t, "xmm0", classes[1].Reg)
	assert.True(t, classes[1].IsFloat)
	assert.Equal(t, "rsi", classes[2].Reg, "the second int arg should continue from the int index, unaffected by the float arg before it")
}

func TestClassifyArgs_WindowsSharesOneIndexAcrossClasses(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	f64 := &types.Type{Kind: types.F64}
	classes := codegen.ClassifyArgs(codegen.ABIWindows, []*types.Type{s32, f64})

	require.Len(t, classes, 2)
	assert.Equal(t, "rcx", classes[0].Reg)
	assert.Equal(t, "xmm1", classes[1].Reg, "windows assigns the float its same-index slot, not xmm0")
}

func TestClassifyArgs_OverflowGoesOnStack(t *testing.T) {
	s32 := &types.Type{Kind: types.S32}
	params := make([]*types.Type, 8)
	for i := range params {
		params[i] = s32
	}
	classes := codegen.ClassifyArgs(codegen.ABISystemV, params)
	for i := 0; i < 6; i++ {
		assert.False(t, classes[i].OnStack)
	}
	assert.True(t, classes[6].OnStack)
	assert.True(t, classes[7].OnStack)
}

func TestPassByAddress_OnlyLargeStructs(t *testing.T) {
	small := &types.Type{Kind: types.Struct, Members: []types.Member{{Name: "x", Type: &types.Type{Kind: types.S32}}}}
	large := &types.Type{Kind: types.Struct, Members: []types.Member{
		{Name: "a", Type: &types.Type{Kind: types.S64}},
		{Name: "b", Type: &types.Type{Kind: types.S64}},
	}}
	assert.False(t, codegen.PassByAddress(small))
	assert.True(t, codegen.PassByAddress(large))
	assert.False(t, codegen.PassByAddress(&types.Type{Kind: types.S32}), "non-struct types are never passed by address")
}
