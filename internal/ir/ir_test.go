package ir_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/lexer"
	"github.com/gmofishsauce/hplc/internal/parser"
	"github.com/gmofishsauce/hplc/internal/sema"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) *ir.Module {
	t.Helper()
	file := &token.File{Name: "t.hp", Path: "t.hp", Src: append([]byte(src), 0)}
	diags := diag.NewBag(6, 4)
	toks := lexer.New(file, diags).Lex()
	f := parser.New(file, toks, diags).ParseFile("t.hp")
	env := symbols.NewEnvironment()
	a := sema.New(env, diags, nil, "t.hp")
	a.Analyze(f)
	require.Equal(t, 0, diags.Count(), "fixture must be semantically clean")
	gen := ir.NewGenerator(env, a.Symbols)
	return gen.Generate(f, a.FuncSymbols())
}

func TestGenerate_SimpleReturn(t *testing.T) {
	mod := generate(t, `
add :: (a: s32, b: s32) : s32 {
	return a + b;
}
`)
	r, ok := mod.ByName["add"]
	require.True(t, ok)
	require.Len(t, r.Params, 2)

	var sawAdd, sawMovRet, sawReturn bool
	for _, instr := range r.Instrs {
		switch instr.Op {
		case ir.OpAdd:
			sawAdd = true
		case ir.OpMov:
			if instr.Target.Name.Bytes == "$ret" {
				sawMovRet = true
			}
		case ir.OpReturn:
			sawReturn = true
		}
	}
	assert.True(t, sawAdd)
	assert.True(t, sawMovRet)
	assert.True(t, sawReturn)
}

func TestGenerate_IfElseLabelsResolve(t *testing.T) {
	mod := generate(t, `
pick :: (c: bool) : s32 {
	if (c) {
		return 1;
	} else {
		return 2;
	}
}
`)
	r := mod.ByName["pick"]
	var jzCount, jumpCount int
	for _, instr := range r.Instrs {
		switch instr.Op {
		case ir.OpJz:
			jzCount++
			require.NotNil(t, instr.Target.Lbl)
			assert.GreaterOrEqual(t, instr.Target.Lbl.Target, 0, "label must be backpatched to a real instruction index")
		case ir.OpJump:
			jumpCount++
			require.NotNil(t, instr.Target.Lbl)
			assert.GreaterOrEqual(t, instr.Target.Lbl.Target, 0)
		}
	}
	assert.Equal(t, 1, jzCount)
	assert.Equal(t, 1, jumpCount)
}

func TestGenerate_WhileLoopBackEdge(t *testing.T) {
	mod := generate(t, `
count :: () : s32 {
	i := 0;
	while (i < 10) {
		i = i + 1;
	}
	return i;
}
`)
	r := mod.ByName["count"]
	var sawBackEdge bool
	for idx, instr := range r.Instrs {
		if instr.Op == ir.OpJump && instr.Target.Lbl.Target <= idx {
			sawBackEdge = true
		}
	}
	assert.True(t, sawBackEdge, "while loop must jump backward to re-check its condition")
}

func TestGenerate_BreakJumpsToLoopExit(t *testing.T) {
	mod := generate(t, `
f :: () : s32 {
	while (0 < 1) {
		break;
	}
	return 0;
}
`)
	r := mod.ByName["f"]
	var breakJumpIdx = -1
	for idx, instr := range r.Instrs {
		if instr.Op == ir.OpJump && instr.Target.Lbl.Target > idx+1 {
			breakJumpIdx = idx
		}
	}
	assert.GreaterOrEqual(t, breakJumpIdx, 0, "break should emit a forward jump past the loop")
}

func TestGenerate_ShadowedLocalsGetDistinctNames(t *testing.T) {
	mod := generate(t, `
f :: () : s32 {
	x := 1;
	{
		x := 2;
		return x;
	}
}
`)
	r := mod.ByName["f"]
	names := map[string]bool{}
	for _, instr := range r.Instrs {
		if instr.Op == ir.OpMov && instr.Target.Kind == ir.OperVariable {
			names[instr.Target.Name.Bytes] = true
		}
	}
	assert.GreaterOrEqual(t, len(names), 2, "inner shadowing x must get a distinct IR key from the outer x")
}

func TestGenerate_OverloadedFunctionsGetMangledNames(t *testing.T) {
	mod := generate(t, `
pick :: (x: s32) : s32 {
	return x;
}
pick :: (x: f64) : f64 {
	return x;
}
`)
	_, hasBare := mod.ByName["pick"]
	_, hasMangled := mod.ByName["pick$1"]
	assert.True(t, hasBare)
	assert.True(t, hasMangled)
}

func TestGenerate_GlobalVarInitializerGoesToToplevel(t *testing.T) {
	mod := generate(t, `
count := 0;
`)
	require.NotEmpty(t, mod.Toplevel.Instrs)
	assert.Equal(t, ir.OpMov, mod.Toplevel.Instrs[0].Op)
}
