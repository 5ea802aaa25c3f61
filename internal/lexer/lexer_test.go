package lexer_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/lexer"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	file := &token.File{Name: "t.hp", Path: "t.hp", Src: append([]byte(src), 0)}
	diags := diag.NewBag(6, 4)
	return lexer.New(file, diags).Lex(), diags
}

func TestLex_Punctuation(t *testing.T) {
	toks, diags := lex(t, "(){};,")
	require.False(t, diags.Count() > 0)
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Semicolon, token.Comma, token.EOF,
	}, kinds)
}

func TestLex_KeywordVsIdent(t *testing.T) {
	toks, _ := lex(t, "if iffy")
	require.Len(t, toks, 3) // if, iffy, eof
	assert.Equal(t, token.KwIf, toks[0].Kind)
	assert.Equal(t, token.Ident, toks[1].Kind)
	assert.Equal(t, "iffy", toks[1].Text)
}

func TestLex_IntAndFloatLiterals(t *testing.T) {
	toks, diags := lex(t, "42 3.14")
	require.Equal(t, 0, diags.Count())
	require.Len(t, toks, 3)
	assert.Equal(t, token.IntLit, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Text)
	assert.Equal(t, token.FloatLit, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Text)
}

func TestLex_StringLiteral(t *testing.T) {
	toks, diags := lex(t, `"hello\n"`)
	require.Equal(t, 0, diags.Count())
	require.Len(t, toks, 2)
	assert.Equal(t, token.StringLit, toks[0].Kind)
}

func TestLex_UnterminatedStringReportsDiagnostic(t *testing.T) {
	_, diags := lex(t, `"never closed`)
	assert.Greater(t, diags.Count(), 0)
	assert.Contains(t, diags.Items()[0].String(), "t.hp")
}

func TestLex_InvalidByteResumesScanning(t *testing.T) {
	toks, diags := lex(t, "a `  b")
	assert.Equal(t, 1, diags.Count())
	var idents []string
	for _, tok := range toks {
		if tok.Kind == token.Ident {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"a", "b"}, idents)
}

func TestLex_LineColumnTracking(t *testing.T) {
	toks, _ := lex(t, "a\nb")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Loc.Line)
	assert.Equal(t, 2, toks[1].Loc.Line)
}
