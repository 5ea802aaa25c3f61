package symbols

import "github.com/gmofishsauce/hplc/internal/types"

// Environment owns the scope graph, the type table and the "current
// scope" cursor used while walking the AST (spec.md §3 "Environment").
// Scopes and symbols are ordinary heap values, each scope keeping its
// symbols in a Go map; nothing here allocates from internal/arena.
type Environment struct {
	Types   *types.Table
	Global  *Scope
	current *Scope
}

// NewEnvironment returns an Environment with a fresh global scope.
func NewEnvironment() *Environment {
	g := NewScope(nil)
	return &Environment{Types: types.NewTable(), Global: g, current: g}
}

// Current returns the scope currently being populated/searched.
func (e *Environment) Current() *Scope { return e.current }

// OpenScope pushes a new child scope of the current scope and returns it.
func (e *Environment) OpenScope() *Scope {
	s := NewScope(e.current)
	e.current = s
	return s
}

// OpenFunctionScope is like OpenScope but marks the new scope as a
// function scope so return-type inference has somewhere to live.
func (e *Environment) OpenFunctionScope() *Scope {
	s := e.OpenScope()
	s.IsFunctionScope = true
	return s
}

// CloseScope pops back to the parent of the current scope.
func (e *Environment) CloseScope() {
	if e.current.parent != nil {
		e.current = e.current.parent
	}
}
