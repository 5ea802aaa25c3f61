// Package ast defines the AST node family of spec.md §3: two broad
// families, statements and expressions, each carrying a file location.
// Expression nodes additionally carry a resolved ExprType, populated by
// internal/sema.
//
// Nodes are plain heap-allocated structs rather than internal/arena
// slabs: the parser allocates roughly one node per source construct, the
// whole tree is dropped together when the owning internal/compiler.Context
// is dropped (spec.md §3 "Lifecycle"), and Go's garbage collector already
// gives bulk, no-individual-free deallocation for that shape of lifetime
// for free. internal/ir's routines use index-based storage instead (one
// flat instruction slice per routine, with labels holding instruction
// indices; grounded on internal/engine/wazevo/ssa/basic_block.go), because IR
// instructions really are allocated and indexed in bulk per routine, in
// the pattern the teacher's pool[T] exists to serve; forcing the same
// machinery onto twenty-odd AST node kinds here would be the
// abstraction-for-its-own-sake spec.md §9 warns against, not a
// continuation of it.
package ast

import (
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/gmofishsauce/hplc/internal/types"
)

// ValueCategory classifies whether an expression denotes an assignable
// location or a computed value (spec.md §4.4).
type ValueCategory int

const (
	NonAssignable ValueCategory = iota
	Assignable
)

// Node is implemented by every statement and expression node.
type Node interface {
	Loc() token.Location
}

// Base is embedded by every concrete node to provide Loc() and carry the
// source location uniformly, per spec.md §3.
type Base struct {
	Location token.Location
}

func (b *Base) Loc() token.Location { return b.Location }

// NewBase returns a Base anchored at loc, used by internal/parser when
// constructing node literals.
func NewBase(loc token.Location) Base { return Base{Location: loc} }

// ===== Type syntax (pre-resolution) =====

// TypeExpr is the parsed form of a type reference, before internal/sema
// resolves it against the type table (spec.md §4.2 "Type grammar").
type TypeExpr struct {
	Base
	// Exactly one of the following is set.
	NamedIdent name.Name      // plain type name
	PointerTo  *TypeExpr      // *T
	SliceOf    *TypeExpr      // []T
	FuncParams []*TypeExpr    // (Ts) : R
	FuncReturn *TypeExpr      // nil if untyped/void

	Resolved *types.Type // filled in by internal/sema
}

// ===== Expressions =====

// Expr is implemented by every expression node; ExprType/ValueCat are
// populated during internal/sema's recursive type inference walk.
type Expr interface {
	Node
	exprNode()
	Type() *types.Type
	SetType(*types.Type)
	ValueCat() ValueCategory
	SetValueCat(ValueCategory)
}

// ExprBase is embedded by every expression node.
type ExprBase struct {
	Base
	ExprType  *types.Type
	ValueCate ValueCategory
}

// NewExprBase returns an ExprBase anchored at loc, with an unresolved
// type, used by internal/parser when constructing expression literals.
func NewExprBase(loc token.Location) ExprBase { return ExprBase{Base: NewBase(loc)} }

func (e *ExprBase) exprNode()                   {}
func (e *ExprBase) Type() *types.Type           { return e.ExprType }
func (e *ExprBase) SetType(t *types.Type)       { e.ExprType = t }
func (e *ExprBase) ValueCat() ValueCategory     { return e.ValueCate }
func (e *ExprBase) SetValueCat(v ValueCategory) { e.ValueCate = v }

type IntLit struct {
	ExprBase
	Value            uint64
	ExplicitUnsigned bool
}

type FloatLit struct {
	ExprBase
	Value    float64
	IsSingle bool // 'f' suffix selects f32, 'd' (or none) selects f64
}

type StringLit struct {
	ExprBase
	Value string
}

type CharLit struct {
	ExprBase
	Value byte
}

type BoolLit struct {
	ExprBase
	Value bool
}

type NullLit struct {
	ExprBase
}

// Ident is a bare identifier reference, resolved to a symbol by
// internal/sema (the *symbols.Symbol itself is attached during analysis
// via a side table to avoid an import cycle between ast and symbols).
type Ident struct {
	ExprBase
	Name name.Name
}

// ModuleMember is the supplemented `module::member` qualified-access
// expression (SPEC_FULL.md).
type ModuleMember struct {
	ExprBase
	Module name.Name
	Member name.Name
}

type BinOp int

const (
	BinAssign BinOp = iota
	BinAddAssign
	BinSubAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinAndAssign
	BinXorAssign
	BinOrAssign
	BinLogOr
	BinLogAnd
	BinEq
	BinNeq
	BinLt
	BinLeq
	BinGt
	BinGeq
	BinBitOr
	BinBitXor
	BinBitAnd
	BinShl
	BinShr
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
)

// BinaryExpr covers every level-1..9 operator of spec.md §4.2's
// precedence table, including the assignment operators (level 1), which
// spec.md's grammar treats as right-associative binary operators whose
// LHS must be Assignable.
type BinaryExpr struct {
	ExprBase
	Op          BinOp
	Left, Right Expr
}

type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryNeg
	UnaryCompl // ~
	UnaryNot   // !
	UnaryAddr  // &
	UnaryDeref // @
)

type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

type IndexExpr struct {
	ExprBase
	X     Expr
	Index Expr
}

type MemberExpr struct {
	ExprBase
	X      Expr
	Member name.Name
}

// CastExpr is both the explicit `expr -> type` postfix cast of spec.md
// §4.2's grammar and the synthetic node internal/sema inserts to make an
// implicit coercion explicit (spec.md §4.4). Synthetic is false for the
// former, true for the latter.
type CastExpr struct {
	ExprBase
	Operand   Expr
	TargetTE  *TypeExpr // nil for synthetic casts; ExprType already holds the target
	Synthetic bool
}

// ===== Statements =====

type Stmt interface {
	Node
	stmtNode()
}

// StmtBase is embedded by every statement node.
type StmtBase struct{ Base }

// NewStmtBase returns a StmtBase anchored at loc, used by internal/parser
// when constructing statement literals.
func NewStmtBase(loc token.Location) StmtBase { return StmtBase{Base: NewBase(loc)} }

func (s *StmtBase) stmtNode() {}

type ExprStmt struct {
	StmtBase
	X Expr
}

type ReturnStmt struct {
	StmtBase
	Value Expr // nil for a bare `return;`
}

type BreakStmt struct{ StmtBase }
type ContinueStmt struct{ StmtBase }

type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

type IfStmt struct {
	StmtBase
	Cond       Expr
	Then       *BlockStmt
	Else       Stmt // *BlockStmt or *IfStmt (else-if chain), nil if absent
}

type WhileStmt struct {
	StmtBase
	Cond Expr
	Body *BlockStmt
}

// ForStmt models the language's `for` with an optional induction-variable
// declaration (spec.md §4.4 "A for that declares its own induction
// variable opens an inner scope").
type ForStmt struct {
	StmtBase
	Init *VarDecl // nil if the for loop has no induction variable
	Cond Expr
	Post Expr
	Body *BlockStmt
}

// VarDecl covers `name : type;`, `name : type = expr;` and `name := expr;`.
type VarDecl struct {
	StmtBase
	Name  name.Name
	TE    *TypeExpr // nil when the type is to be inferred from Value
	Value Expr      // nil for `name : type;`
}

// Param is one function parameter.
type Param struct {
	Name name.Name
	TE   *TypeExpr
	Loc  token.Location
}

// FuncDecl covers `name :: (params) : ret { body }` including the
// return-type-inference case where RetTE is nil (spec.md §4.4 "Return
// type inference").
type FuncDecl struct {
	StmtBase
	Name   name.Name
	Params []Param
	RetTE  *TypeExpr // nil when the return type must be inferred
	Body   *BlockStmt
}

// ForeignDecl is one declaration inside a `foreign { ... }` block
// (SPEC_FULL.md's supplemented foreign-function feature).
type ForeignDecl struct {
	StmtBase
	Name   name.Name
	Params []Param
	RetTE  *TypeExpr
}

type ForeignBlock struct {
	StmtBase
	Decls []*ForeignDecl
}

type StructDecl struct {
	StmtBase
	Name    name.Name
	Members []StructMember
}

type StructMember struct {
	Name name.Name
	TE   *TypeExpr
	Loc  token.Location
}

// ImportStmt covers both `import "name";` and `name :: import "name";`
// (Alias is the empty Name for the former).
type ImportStmt struct {
	StmtBase
	Alias name.Name
	Path  string
}

// File is the parsed form of one source file: an ordered list of
// top-level declarations (spec.md §4.2 "Top level accepts declarations
// in any order").
type File struct {
	Path  string
	Decls []Stmt
}
