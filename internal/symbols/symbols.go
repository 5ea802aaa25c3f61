// Package symbols implements the Symbol, Scope and Environment types of
// spec.md §3, grounded on internal/engine/wazevo/ssa/builder.go's
// variables-map-plus-current-block-cursor pattern (here generalized to a
// parented scope chain rather than a single function's SSA variable
// table).
package symbols

import (
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/gmofishsauce/hplc/internal/types"
)

// Kind enumerates every symbol kind spec.md §3 lists.
type Kind int

const (
	KindModule Kind = iota
	KindFunction
	KindForeignFunction
	KindConstant
	KindVariable
	KindParameter
	KindStruct
	KindTypeAlias
	KindPrimitiveType
)

// Flag is a bitset of symbol attributes.
type Flag uint32

const (
	FlagNone   Flag = 0
	FlagGlobal Flag = 1 << iota
)

// Symbol is one named entity resolvable from a Scope.
type Symbol struct {
	Name     name.Name
	Kind     Kind
	Type     *types.Type
	DefLoc   token.Location
	Flags    Flag
	NextOverload *Symbol // linked list of overloads sharing Name, built by DeclareOverload

	// ModuleScope is populated for KindModule symbols, giving qualified
	// (`a::b`) lookups a scope to search (SPEC_FULL.md's supplemented
	// module-qualified-access feature).
	ModuleScope *Scope
}

// IsGlobal reports whether FlagGlobal is set.
func (s *Symbol) IsGlobal() bool { return s.Flags&FlagGlobal != 0 }

// Overloads returns every Symbol in s's overload chain, including s
// itself, in declaration order.
func (s *Symbol) Overloads() []*Symbol {
	var out []*Symbol
	for c := s; c != nil; c = c.NextOverload {
		out = append(out, c)
	}
	return out
}

// Scope maps Name to Symbol with a parent pointer. The root scope (no
// parent) is the global scope.
type Scope struct {
	parent *Scope
	table  map[string]*Symbol

	// IsFunctionScope marks a scope that owns return-type inference
	// state (spec.md §3 "Scope").
	IsFunctionScope bool
	ReturnType      *types.Type
	ReturnInferLoc  token.Location
	ReturnCount     int

	// LoopDepth tracks nested while/for contexts for break/continue
	// validation (spec.md §4.4 "Control-flow contexts").
	LoopDepth int
}

// NewScope returns a child scope of parent (nil for the global scope).
func NewScope(parent *Scope) *Scope {
	s := &Scope{parent: parent, table: make(map[string]*Symbol)}
	if parent != nil {
		s.LoopDepth = parent.LoopDepth
	}
	return s
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare inserts sym under its Name. It returns the previously declared
// symbol (if any) so callers can detect redeclaration (spec.md §3's "A
// Name may map to at most one Symbol within a scope" invariant). Declare
// never chains overloads, whatever the symbols' kinds: function and
// foreign-function symbols go through DeclareOverload instead.
func (s *Scope) Declare(sym *Symbol) (prev *Symbol, redeclared bool) {
	if existing, ok := s.table[sym.Name.Bytes]; ok {
		return existing, true
	}
	s.table[sym.Name.Bytes] = sym
	return nil, false
}

// DeclareOverload appends sym to the overload chain of an existing
// function symbol with the same Name, or declares it fresh if none
// exists yet.
func (s *Scope) DeclareOverload(sym *Symbol) {
	if existing, ok := s.table[sym.Name.Bytes]; ok {
		tail := existing
		for tail.NextOverload != nil {
			tail = tail.NextOverload
		}
		tail.NextOverload = sym
		return
	}
	s.table[sym.Name.Bytes] = sym
}

// Lookup searches s and its ancestors for n, returning the nearest
// definition.
func (s *Scope) Lookup(n name.Name) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.table[n.Bytes]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal searches only s itself, not its ancestors; used to detect
// parameter shadowing within the same function scope.
func (s *Scope) LookupLocal(n name.Name) (*Symbol, bool) {
	sym, ok := s.table[n.Bytes]
	return sym, ok
}

// EnclosingFunctionScope walks up from s to the nearest function scope,
// used for return-type inference bookkeeping.
func (s *Scope) EnclosingFunctionScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.IsFunctionScope {
			return cur
		}
	}
	return nil
}
