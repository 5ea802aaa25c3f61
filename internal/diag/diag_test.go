package diag_test

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(file *token.File, line, col, start int) token.Location {
	return token.Location{File: file, Line: line, Col: col, StartByte: start, EndByte: start + 1}
}

func TestBag_FullAtMaxErrors(t *testing.T) {
	b := diag.NewBag(2, 4)
	f := &token.File{Name: "t.hp"}
	assert.False(t, b.Full())
	b.Add(diag.Redeclaration, loc(f, 1, 1, 0), "x redeclared")
	assert.False(t, b.Full())
	b.Add(diag.Redeclaration, loc(f, 2, 1, 5), "y redeclared")
	assert.True(t, b.Full())
}

func TestBag_ShouldEchoSourceBudget(t *testing.T) {
	b := diag.NewBag(10, 2)
	assert.True(t, b.ShouldEchoSource())
	assert.True(t, b.ShouldEchoSource())
	assert.False(t, b.ShouldEchoSource())
}

func TestDiagnostic_StringPadsPrefix(t *testing.T) {
	f := &token.File{Name: "a.hp"}
	d := diag.Diagnostic{Kind: diag.NotTypename, Loc: loc(f, 1, 1, 0), Msg: "boom"}
	s := d.String()
	assert.Contains(t, s, "boom")
	assert.Contains(t, s, "a.hp:1:1")
}

func TestBag_ErrorJoinsAllDiagnostics(t *testing.T) {
	b := diag.NewBag(10, 4)
	f := &token.File{Name: "t.hp"}
	b.Add(diag.UndefinedReference, loc(f, 1, 1, 0), "first")
	b.Add(diag.UndefinedReference, loc(f, 2, 1, 0), "second")
	require.Equal(t, 2, b.Count())
	lines := strings.Split(b.Error(), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestWriteSourceEcho_PointsAtColumn(t *testing.T) {
	f := &token.File{Name: "t.hp", Src: []byte("let x = 1\n")}
	var b strings.Builder
	diag.WriteSourceEcho(&b, token.Location{File: f, Line: 1, Col: 5, StartByte: 4, EndByte: 5})
	out := b.String()
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "let x = 1", lines[0])
	assert.Equal(t, "    ^", lines[1])
}
