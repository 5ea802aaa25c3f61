// Package sema implements the semantic analyzer of spec.md §4.4: name
// resolution, type inference, type coercion, overload resolution and
// AST rewriting to make coercions explicit. Grounded on
// original_source/src/semantic_check.cpp for exact coercion/overload
// scoring edge cases and on internal/engine/wazevo/ssa/opt.go's
// pass-over-a-flat-sequence shape for the walk structure.
package sema

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/gmofishsauce/hplc/internal/types"
)

// maxInferRounds bounds the deferred-inference retry loop (spec.md §4.4
// "Expressions deferred for inference").
const maxInferRounds = 10

// Importer resolves and compiles an imported module on demand, returning
// its top-level scope so module-qualified access can search it. The
// compiler package supplies the real implementation; it closes over
// dedup-by-resolved-path (spec.md §4.4 "Module imports").
type Importer interface {
	Import(fromPath, importPath string) (*symbols.Scope, bool)
}

// pendingExpr is one expression snapshot enqueued for a later inference
// round because its type resolved to an unresolved pending type.
type pendingExpr struct {
	expr  ast.Expr
	scope *symbols.Scope
}

// Analyzer walks one file's AST, mutating the shared Environment as it
// goes.
type Analyzer struct {
	Env      *symbols.Environment
	Diags    *diag.Bag
	Importer Importer
	FilePath string

	pending []pendingExpr
	funcSym map[*ast.FuncDecl]*symbols.Symbol

	// Symbols maps every Ident/ModuleMember expression node to the
	// Symbol it resolved to. internal/ir consults this side table when
	// lowering variable/function references, since internal/ast cannot
	// import internal/symbols directly (see internal/ast's package doc).
	Symbols map[ast.Expr]*symbols.Symbol
}

// New returns an Analyzer sharing env and diags with the rest of the
// compilation (spec.md §5: the environment is mutated only by the
// current phase, never concurrently).
func New(env *symbols.Environment, diags *diag.Bag, importer Importer, filePath string) *Analyzer {
	return &Analyzer{
		Env: env, Diags: diags, Importer: importer, FilePath: filePath,
		funcSym: make(map[*ast.FuncDecl]*symbols.Symbol),
		Symbols: make(map[ast.Expr]*symbols.Symbol),
	}
}

func (a *Analyzer) errorf(loc token.Location, kind diag.Kind, format string, args ...any) {
	a.Diags.Add(kind, loc, format, args...)
}

// stopped reports whether the analyzer should stop doing further work
// this phase, mirroring internal/parser's error-budget check.
func (a *Analyzer) stopped() bool { return a.Diags.Full() }

// FuncSymbols returns the FuncDecl->Symbol map built during Analyze, so
// internal/ir can look up each function's resolved Symbol (for its
// parameter/return types) without internal/ast importing internal/symbols.
func (a *Analyzer) FuncSymbols() map[*ast.FuncDecl]*symbols.Symbol { return a.funcSym }

// Analyze walks every top-level declaration of f in order (spec.md
// §4.4 "Walk order"), then drains the deferred-inference queue.
func (a *Analyzer) Analyze(f *ast.File) {
	for _, d := range f.Decls {
		if a.stopped() {
			return
		}
		a.declareTopLevel(d)
	}
	// Type every function with an annotated return type before any body
	// is checked, so a body can call a function declared after it.
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.RetTE == nil {
			continue
		}
		var params []*types.Type
		for _, p := range fn.Params {
			params = append(params, a.resolveTypeExpr(p.TE, a.Env.Global))
		}
		a.funcSym[fn].Type = a.Env.Types.Function(params, a.resolveTypeExpr(fn.RetTE, a.Env.Global))
	}
	for _, d := range f.Decls {
		if a.stopped() {
			return
		}
		a.analyzeTopLevel(d)
	}
	a.drainPending()
}

// declareTopLevel makes one forward pass inserting every top-level name
// into the global scope before bodies are checked; Analyze then types
// every function with an annotated return type, so mutually recursive
// functions resolve. Struct members and foreign signatures are resolved
// as each declaration is reached, so they see only structs declared
// earlier in the file.
func (a *Analyzer) declareTopLevel(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.ImportStmt:
		a.declareImport(n)
	case *ast.StructDecl:
		a.declareStruct(n)
	case *ast.FuncDecl:
		a.declareFunc(n)
	case *ast.ForeignBlock:
		for _, fd := range n.Decls {
			a.declareForeign(fd)
		}
	case *ast.VarDecl:
		a.declareGlobalVar(n)
	}
}

func (a *Analyzer) declareImport(n *ast.ImportStmt) {
	if a.Importer == nil {
		a.errorf(n.Loc(), diag.UndefinedReference, "module %q cannot be resolved in this configuration", n.Path)
		return
	}
	scope, ok := a.Importer.Import(a.FilePath, n.Path)
	if !ok {
		a.errorf(n.Loc(), diag.UndefinedReference, "cannot import %q", n.Path)
		return
	}
	alias := n.Alias
	if alias.IsEmpty() {
		alias = name.New(n.Path)
	}
	sym := &symbols.Symbol{Name: alias, Kind: symbols.KindModule, DefLoc: n.Loc(), ModuleScope: scope, Flags: symbols.FlagGlobal}
	if _, redeclared := a.Env.Global.Declare(sym); redeclared {
		a.errorf(n.Loc(), diag.Redeclaration, "module alias %q redeclared", alias.String())
	}
}

func (a *Analyzer) declareStruct(n *ast.StructDecl) {
	var members []types.Member
	for _, m := range n.Members {
		members = append(members, types.Member{Name: m.Name.String(), Type: nil})
	}
	st := a.Env.Types.NewStruct(n.Name.String(), members)
	sym := &symbols.Symbol{Name: n.Name, Kind: symbols.KindStruct, Type: st, DefLoc: n.Loc(), Flags: symbols.FlagGlobal}
	if _, redeclared := a.Env.Global.Declare(sym); redeclared {
		a.errorf(n.Loc(), diag.Redeclaration, "type %q redeclared", n.Name.String())
	}
	// Resolve member types now that this struct's own name is registered
	// (so a member may point to the struct itself). A struct declared
	// later in the file is not yet visible here.
	for i, m := range n.Members {
		st.Members[i].Type = a.resolveTypeExpr(m.TE, a.Env.Global)
	}
}

func (a *Analyzer) declareFunc(n *ast.FuncDecl) {
	sym := &symbols.Symbol{Name: n.Name, Kind: symbols.KindFunction, DefLoc: n.Loc(), Flags: symbols.FlagGlobal}
	a.Env.Global.DeclareOverload(sym)
	a.funcSym[n] = sym
}

func (a *Analyzer) declareForeign(n *ast.ForeignDecl) {
	var params []*types.Type
	for _, p := range n.Params {
		params = append(params, a.resolveTypeExpr(p.TE, a.Env.Global))
	}
	ret := a.resolveTypeExpr(n.RetTE, a.Env.Global) // nil RetTE resolves to void
	sym := &symbols.Symbol{Name: n.Name, Kind: symbols.KindForeignFunction, Type: a.Env.Types.Function(params, ret), DefLoc: n.Loc(), Flags: symbols.FlagGlobal}
	a.Env.Global.DeclareOverload(sym)
}

func (a *Analyzer) declareGlobalVar(n *ast.VarDecl) {
	// Type starts as the table's shared None singleton, never nil, so a
	// forward reference from an earlier-declared function body (resolved
	// in the second, analyzeTopLevel pass) cannot dereference a nil
	// *types.Type before analyzeGlobalVar assigns the real type below.
	sym := &symbols.Symbol{Name: n.Name, Kind: symbols.KindVariable, Type: a.Env.Types.Prim(types.None), DefLoc: n.Loc(), Flags: symbols.FlagGlobal}
	if _, redeclared := a.Env.Global.Declare(sym); redeclared {
		a.errorf(n.Loc(), diag.Redeclaration, "%q redeclared", n.Name.String())
	}
}

// analyzeTopLevel type-checks bodies now that every top-level name is
// declared.
func (a *Analyzer) analyzeTopLevel(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		a.analyzeFunc(n)
	case *ast.VarDecl:
		a.analyzeGlobalVar(n)
	case *ast.StructDecl, *ast.ImportStmt, *ast.ForeignBlock:
		// Fully handled during declareTopLevel.
	}
}

func (a *Analyzer) analyzeGlobalVar(n *ast.VarDecl) {
	sym, _ := a.Env.Global.LookupLocal(n.Name)
	declTy := a.resolveOptionalTypeExpr(n.TE, a.Env.Global)
	if n.Value != nil {
		valTy := a.checkExpr(n.Value, a.Env.Global)
		if declTy == nil {
			declTy = valTy
		} else {
			n.Value = a.coerceOrCast(n.Value, valTy, declTy, n.Loc())
		}
	}
	if sym != nil {
		sym.Type = declTy
	}
}

// resolveOptionalTypeExpr resolves te, or returns nil if te is nil
// (the `name := expr` form with no annotation).
func (a *Analyzer) resolveOptionalTypeExpr(te *ast.TypeExpr, scope *symbols.Scope) *types.Type {
	if te == nil {
		return nil
	}
	return a.resolveTypeExpr(te, scope)
}

// resolveTypeExpr resolves the parsed type syntax against the type
// table, reporting not-a-typename diagnostics for unresolvable names
// (spec.md §4.3).
func (a *Analyzer) resolveTypeExpr(te *ast.TypeExpr, scope *symbols.Scope) *types.Type {
	if te == nil {
		return a.Env.Types.Prim(types.Void)
	}
	if te.Resolved != nil {
		return te.Resolved
	}
	var t *types.Type
	switch {
	case te.PointerTo != nil:
		t = a.Env.Types.Pointer(a.resolveTypeExpr(te.PointerTo, scope))
	case te.SliceOf != nil:
		// Slice-like types are treated as pointers to their element type
		// for the current semantic treatment (spec.md §3 "see §4.2 for
		// current semantic treatment").
		t = a.Env.Types.Pointer(a.resolveTypeExpr(te.SliceOf, scope))
	case te.FuncParams != nil || te.FuncReturn != nil:
		var params []*types.Type
		for _, p := range te.FuncParams {
			params = append(params, a.resolveTypeExpr(p, scope))
		}
		ret := a.Env.Types.Prim(types.Void)
		if te.FuncReturn != nil {
			ret = a.resolveTypeExpr(te.FuncReturn, scope)
		}
		t = a.Env.Types.Function(params, ret)
	default:
		t = a.resolveNamedType(te.NamedIdent, scope, te.Loc())
	}
	te.Resolved = t
	return t
}

func (a *Analyzer) resolveNamedType(n name.Name, scope *symbols.Scope, loc token.Location) *types.Type {
	if prim, ok := primitiveKind(n); ok {
		return a.Env.Types.Prim(prim)
	}
	sym, ok := scope.Lookup(n)
	if !ok || sym.Kind != symbols.KindStruct {
		a.errorf(loc, diag.NotTypename, "%q is not a typename", n.String())
		return a.Env.Types.Prim(types.None)
	}
	return sym.Type
}

func primitiveKind(n name.Name) (types.Kind, bool) {
	switch n.Bytes {
	case "bool":
		return types.Bool, true
	case "char":
		return types.Char, true
	case "string":
		return types.String, true
	case "void":
		return types.Void, true
	case "s8":
		return types.S8, true
	case "s16":
		return types.S16, true
	case "s32":
		return types.S32, true
	case "s64":
		return types.S64, true
	case "u8":
		return types.U8, true
	case "u16":
		return types.U16, true
	case "u32":
		return types.U32, true
	case "u64":
		return types.U64, true
	case "f32":
		return types.F32, true
	case "f64":
		return types.F64, true
	}
	return 0, false
}
