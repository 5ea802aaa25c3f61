package token_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestLocation_StringWithAndWithoutFile(t *testing.T) {
	f := &token.File{Name: "a.hp"}
	withFile := token.Location{File: f, Line: 3, Col: 5}
	assert.Equal(t, "a.hp:3:5", withFile.String())

	noFile := token.Location{Line: 1, Col: 1}
	assert.Equal(t, "1:1", noFile.String())
}

func TestKind_StringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "if", token.KwIf.String())
	assert.Equal(t, "::", token.ColonColon.String())
	unknown := token.Kind(9999)
	assert.Contains(t, unknown.String(), "Kind(9999)")
}

func TestKeywords_MapsEveryReservedWord(t *testing.T) {
	cases := map[string]token.Kind{
		"if": token.KwIf, "while": token.KwWhile, "struct": token.KwStruct,
		"s32": token.KwS32, "f64": token.KwF64, "foreign": token.KwForeign,
	}
	for lexeme, want := range cases {
		got, ok := token.Keywords[lexeme]
		assert.True(t, ok, lexeme)
		assert.Equal(t, want, got, lexeme)
	}
	_, ok := token.Keywords["not_a_keyword"]
	assert.False(t, ok)
}

func TestToken_StringIncludesKindTextAndLoc(t *testing.T) {
	f := &token.File{Name: "a.hp"}
	tok := token.Token{Kind: token.Ident, Text: "foo", Loc: token.Location{File: f, Line: 1, Col: 1}}
	s := tok.String()
	assert.Contains(t, s, "identifier")
	assert.Contains(t, s, `"foo"`)
	assert.Contains(t, s, "a.hp:1:1")
}
