package symbols_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_DeclareAndRedeclare(t *testing.T) {
	s := symbols.NewScope(nil)
	a := &symbols.Symbol{Name: name.New("x"), Kind: symbols.KindVariable}
	_, redeclared := s.Declare(a)
	assert.False(t, redeclared)

	b := &symbols.Symbol{Name: name.New("x"), Kind: symbols.KindVariable}
	prev, redeclared := s.Declare(b)
	assert.True(t, redeclared)
	assert.Same(t, a, prev)
}

func TestScope_DeclareOverloadChains(t *testing.T) {
	s := symbols.NewScope(nil)
	first := &symbols.Symbol{Name: name.New("pick"), Kind: symbols.KindFunction}
	second := &symbols.Symbol{Name: name.New("pick"), Kind: symbols.KindFunction}
	s.DeclareOverload(first)
	s.DeclareOverload(second)

	sym, ok := s.LookupLocal(name.New("pick"))
	require.True(t, ok)
	overloads := sym.Overloads()
	require.Len(t, overloads, 2)
	assert.Same(t, first, overloads[0])
	assert.Same(t, second, overloads[1])
}

func TestScope_LookupWalksAncestors(t *testing.T) {
	parent := symbols.NewScope(nil)
	parent.Declare(&symbols.Symbol{Name: name.New("outer"), Kind: symbols.KindVariable})
	child := symbols.NewScope(parent)

	sym, ok := child.Lookup(name.New("outer"))
	require.True(t, ok)
	assert.Equal(t, "outer", sym.Name.Bytes)

	_, ok = child.LookupLocal(name.New("outer"))
	assert.False(t, ok, "LookupLocal must not search ancestors")
}

func TestEnvironment_OpenCloseScope(t *testing.T) {
	env := symbols.NewEnvironment()
	require.Same(t, env.Global, env.Current())

	child := env.OpenFunctionScope()
	assert.True(t, child.IsFunctionScope)
	assert.Same(t, child, env.Current())

	env.CloseScope()
	assert.Same(t, env.Global, env.Current())
}

func TestEnvironment_CloseScopeAtGlobalIsNoop(t *testing.T) {
	env := symbols.NewEnvironment()
	env.CloseScope()
	assert.Same(t, env.Global, env.Current())
}
