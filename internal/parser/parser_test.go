package parser_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/lexer"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/parser"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	file := &token.File{Name: "t.hp", Path: "t.hp", Src: append([]byte(src), 0)}
	diags := diag.NewBag(6, 4)
	toks := lexer.New(file, diags).Lex()
	f := parser.New(file, toks, diags).ParseFile("t.hp")
	return f, diags
}

func TestParseFile_FuncDecl(t *testing.T) {
	f, diags := parseSrc(t, `
add :: (a: s32, b: s32) : s32 {
	return a + b;
}
`)
	require.Equal(t, 0, diags.Count())
	require.Len(t, f.Decls, 1)
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, name.New("add"), fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, name.New("a"), fn.Params[0].Name)
	require.NotNil(t, fn.RetTE)
	assert.Equal(t, name.New("s32"), fn.RetTE.NamedIdent)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, bin.Op)
}

func TestParseFile_VarDeclInferred(t *testing.T) {
	f, diags := parseSrc(t, `x := 42;`)
	require.Equal(t, 0, diags.Count())
	require.Len(t, f.Decls, 1)
	v, ok := f.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, name.New("x"), v.Name)
	assert.Nil(t, v.TE)
	lit, ok := v.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, uint64(42), lit.Value)
}

func TestParseFile_Import(t *testing.T) {
	f, diags := parseSrc(t, `import "util";`)
	require.Equal(t, 0, diags.Count())
	require.Len(t, f.Decls, 1)
	imp, ok := f.Decls[0].(*ast.ImportStmt)
	require.True(t, ok)
	assert.Equal(t, "util", imp.Path)
	assert.True(t, imp.Alias.IsEmpty())
}

func TestParseFile_StructDecl(t *testing.T) {
	f, diags := parseSrc(t, `
point :: struct {
	x : s32;
	y : s32;
}
`)
	require.Equal(t, 0, diags.Count())
	sd, ok := f.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, name.New("point"), sd.Name)
	require.Len(t, sd.Members, 2)
	assert.Equal(t, name.New("x"), sd.Members[0].Name)
}

func TestParseFile_ForeignBlock(t *testing.T) {
	f, diags := parseSrc(t, `
foreign {
	puts :: (s: *char) : s32;
}
`)
	require.Equal(t, 0, diags.Count())
	fb, ok := f.Decls[0].(*ast.ForeignBlock)
	require.True(t, ok)
	require.Len(t, fb.Decls, 1)
	assert.Equal(t, name.New("puts"), fb.Decls[0].Name)
}

func TestParseExpr_PrecedenceClimbsCorrectly(t *testing.T) {
	f, diags := parseSrc(t, `
r :: () : s32 {
	return 1 + 2 * 3;
}
`)
	require.Equal(t, 0, diags.Count())
	fn := f.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, top.Op)
	_, leftIsLit := top.Left.(*ast.IntLit)
	assert.True(t, leftIsLit)
	mul, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinMul, mul.Op)
}

func TestParseExpr_EqualityIsNonAssociative(t *testing.T) {
	_, diags := parseSrc(t, `
r :: () : s32 {
	return 1 == 2 == 3;
}
`)
	assert.Greater(t, diags.Count(), 0)
}

func TestParseIf_ElseIfChain(t *testing.T) {
	f, diags := parseSrc(t, `
r :: () : s32 {
	if (1) {
		return 1;
	} else if (2) {
		return 2;
	} else {
		return 3;
	}
}
`)
	require.Equal(t, 0, diags.Count())
	fn := f.Decls[0].(*ast.FuncDecl)
	top, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	elseIf, ok := top.Else.(*ast.IfStmt)
	require.True(t, ok)
	_, elseIsBlock := elseIf.Else.(*ast.BlockStmt)
	assert.True(t, elseIsBlock)
}

func TestParseUnexpectedToken_RecoversAndResyncs(t *testing.T) {
	f, diags := parseSrc(t, `
bad ::;
good :: () : s32 {
	return 0;
}
`)
	require.Equal(t, 1, diags.Count())
	var sawGood bool
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name.Bytes == "good" {
			sawGood = true
		}
	}
	assert.True(t, sawGood, "parser should resync and still pick up the later, valid declaration")
}
