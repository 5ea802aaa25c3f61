package types

import (
	"fmt"
	"strings"
)

// Table owns every Type constructed during a compilation. Pointer and
// function types are structurally deduplicated so that two equal
// constructions return the same *Type (referential equality implies
// semantic equality, per spec.md §3); struct types are never deduplicated
// — each textual struct definition is its own distinct type.
type Table struct {
	prims    map[Kind]*Type
	pointers map[*Type]*Type
	funcs    map[string]*Type
}

// NewTable returns a Table pre-populated with every primitive singleton.
func NewTable() *Table {
	t := &Table{
		prims:    make(map[Kind]*Type),
		pointers: make(map[*Type]*Type),
		funcs:    make(map[string]*Type),
	}
	for _, k := range []Kind{
		None, Null, Void, Bool, Char,
		S8, S16, S32, S64, U8, U16, U32, U64, F32, F64, String,
	} {
		t.prims[k] = &Type{Kind: k}
	}
	return t
}

func (t *Table) Prim(k Kind) *Type { return t.prims[k] }

// Pending returns a fresh pending type with no resolved base.
func (t *Table) Pending() *Type { return &Type{Kind: Pending} }

// ResolvePending mutates p in place to resolve to base, per spec.md
// §4.4's return-type-inference contract (the same *Type value used at
// every earlier reference becomes resolved).
func (t *Table) ResolvePending(p *Type, base *Type) {
	p.Base = base
}

// Pointer returns the canonical pointer-to-elem type.
func (t *Table) Pointer(elem *Type) *Type {
	if existing, ok := t.pointers[elem]; ok {
		return existing
	}
	p := &Type{Kind: Pointer, Elem: elem}
	t.pointers[elem] = p
	return p
}

// Function returns the canonical function type for the given parameter
// and return types, keyed by the identity of those *Types (sufficient
// since each is itself canonical, or unique per struct definition or
// per pending slot).
func (t *Table) Function(params []*Type, ret *Type) *Type {
	key := funcKey(params, ret)
	if existing, ok := t.funcs[key]; ok {
		return existing
	}
	f := &Type{Kind: Function, Params: params, Return: ret}
	t.funcs[key] = f
	return f
}

func funcKey(params []*Type, ret *Type) string {
	var sb strings.Builder
	for _, p := range params {
		fmt.Fprintf(&sb, "%p,", p)
	}
	fmt.Fprintf(&sb, "->%p", ret)
	return sb.String()
}

// NewStruct allocates a brand-new struct type; callers pass the already
// resolved, ordered member list. Each call yields a distinct *Type even
// when two struct bodies are textually identical (spec.md §4.3: "struct
// types by identity").
func (t *Table) NewStruct(name string, members []Member) *Type {
	return &Type{Kind: Struct, StructName: name, Members: members}
}

// MemberIndex returns the ordinal index of name within st's member list,
// or -1 if absent.
func MemberIndex(st *Type, member string) int {
	for i, m := range st.Members {
		if m.Name == member {
			return i
		}
	}
	return -1
}
