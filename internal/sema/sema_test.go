package sema_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/lexer"
	"github.com/gmofishsauce/hplc/internal/parser"
	"github.com/gmofishsauce/hplc/internal/sema"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*ast.File, *sema.Analyzer, *diag.Bag) {
	t.Helper()
	file := &token.File{Name: "t.hp", Path: "t.hp", Src: append([]byte(src), 0)}
	diags := diag.NewBag(6, 4)
	toks := lexer.New(file, diags).Lex()
	f := parser.New(file, toks, diags).ParseFile("t.hp")
	env := symbols.NewEnvironment()
	a := sema.New(env, diags, nil, "t.hp")
	a.Analyze(f)
	return f, a, diags
}

func TestAnalyze_SimpleFunctionIsClean(t *testing.T) {
	_, _, diags := analyze(t, `
add :: (a: s32, b: s32) : s32 {
	return a + b;
}
`)
	assert.Equal(t, 0, diags.Count())
}

func TestAnalyze_UndefinedReferenceReported(t *testing.T) {
	_, _, diags := analyze(t, `
broken :: () : s32 {
	return missing;
}
`)
	require.Greater(t, diags.Count(), 0)
	assert.Contains(t, diags.Items()[0].String(), "undefined reference to \"missing\"")
}

func TestAnalyze_RedeclaredGlobalReported(t *testing.T) {
	_, _, diags := analyze(t, `
x := 1;
x := 2;
`)
	require.Greater(t, diags.Count(), 0)
	assert.Contains(t, diags.Items()[0].Msg, "redeclared")
}

func TestAnalyze_RedeclaredParameterReported(t *testing.T) {
	_, _, diags := analyze(t, `
f :: (a: s32, a: s32) : s32 {
	return a;
}
`)
	require.Greater(t, diags.Count(), 0)
	assert.Contains(t, diags.Items()[0].Msg, "parameter")
}

func TestAnalyze_MutualRecursionResolves(t *testing.T) {
	_, _, diags := analyze(t, `
is_even :: (n: s32) : bool {
	return is_odd(n);
}
is_odd :: (n: s32) : bool {
	return is_even(n);
}
`)
	assert.Equal(t, 0, diags.Count())
}

func TestAnalyze_OverloadResolvesExactMatch(t *testing.T) {
	f, a, diags := analyze(t, `
pick :: (x: s32) : s32 {
	return x;
}
pick :: (x: f64) : f64 {
	return x;
}
caller :: () : s32 {
	return pick(1);
}
`)
	require.Equal(t, 0, diags.Count())
	var callExpr *ast.CallExpr
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Name.Bytes != "caller" {
			continue
		}
		ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
		callExpr = ret.Value.(*ast.CallExpr)
	}
	require.NotNil(t, callExpr)
	ident := callExpr.Callee.(*ast.Ident)
	sym := a.Symbols[ident]
	require.NotNil(t, sym)
	assert.Equal(t, "s32", sym.Type.Return.String())
}

func TestAnalyze_NoMatchingOverloadReported(t *testing.T) {
	_, _, diags := analyze(t, `
needs_struct :: (p: thing) : s32 {
	return 0;
}
thing :: struct {
	v : s32;
}
caller :: () : s32 {
	return needs_struct(1);
}
`)
	require.Greater(t, diags.Count(), 0)
}

func TestAnalyze_IncompatibleCoercionReported(t *testing.T) {
	_, _, diags := analyze(t, `
f :: () : s32 {
	x : *s32 = 1;
	return 0;
}
`)
	require.Greater(t, diags.Count(), 0)
}

func TestAnalyze_ImplicitWideningInsertsSyntheticCast(t *testing.T) {
	f, _, diags := analyze(t, `
f :: () : s64 {
	x : s64 = 1;
	return x;
}
`)
	require.Equal(t, 0, diags.Count())
	fn := f.Decls[0].(*ast.FuncDecl)
	vd := fn.Body.Stmts[0].(*ast.VarDecl)
	cast, ok := vd.Value.(*ast.CastExpr)
	require.True(t, ok, "narrower int literal assigned to s64 should be wrapped in a synthetic cast")
	assert.True(t, cast.Synthetic)
}
