package sema

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/gmofishsauce/hplc/internal/types"
)

// checkExpr types e in scope, returning its resolved type. The result is
// also stashed on e itself via SetType/SetValueCat (spec.md §4.4 "each
// node returns (type, value-category)").
func (a *Analyzer) checkExpr(e ast.Expr, scope *symbols.Scope) *types.Type {
	t, cat := a.typeExpr(e, scope)
	e.SetType(t)
	e.SetValueCat(cat)
	if t.Kind == types.Pending && t.Base == nil {
		a.pending = append(a.pending, pendingExpr{expr: e, scope: scope})
	}
	return t
}

func (a *Analyzer) typeExpr(e ast.Expr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.NaturalIntLiteralType(a.Env.Types, n.Value, n.ExplicitUnsigned), ast.NonAssignable
	case *ast.FloatLit:
		if n.IsSingle {
			return a.Env.Types.Prim(types.F32), ast.NonAssignable
		}
		return a.Env.Types.Prim(types.F64), ast.NonAssignable
	case *ast.StringLit:
		return a.Env.Types.Prim(types.String), ast.NonAssignable
	case *ast.CharLit:
		return a.Env.Types.Prim(types.Char), ast.NonAssignable
	case *ast.BoolLit:
		return a.Env.Types.Prim(types.Bool), ast.NonAssignable
	case *ast.NullLit:
		return a.Env.Types.Prim(types.Null), ast.NonAssignable
	case *ast.Ident:
		return a.typeIdent(n, scope)
	case *ast.ModuleMember:
		return a.typeModuleMember(n, scope)
	case *ast.UnaryExpr:
		return a.typeUnary(n, scope)
	case *ast.BinaryExpr:
		return a.typeBinary(n, scope)
	case *ast.CallExpr:
		return a.typeCall(n, scope)
	case *ast.IndexExpr:
		return a.typeIndex(n, scope)
	case *ast.MemberExpr:
		return a.typeMember(n, scope)
	case *ast.CastExpr:
		return a.typeCast(n, scope)
	}
	return a.Env.Types.Prim(types.None), ast.NonAssignable
}

func (a *Analyzer) typeIdent(n *ast.Ident, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	sym, ok := scope.Lookup(n.Name)
	if !ok {
		a.errorf(n.Loc(), diag.UndefinedReference, "undefined reference to %q", n.Name.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	a.Symbols[n] = sym
	switch sym.Kind {
	case symbols.KindVariable, symbols.KindParameter:
		return sym.Type, ast.Assignable
	case symbols.KindFunction, symbols.KindForeignFunction:
		return sym.Type, ast.NonAssignable
	default:
		return sym.Type, ast.NonAssignable
	}
}

func (a *Analyzer) typeModuleMember(n *ast.ModuleMember, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	modSym, ok := scope.Lookup(n.Module)
	if !ok || modSym.Kind != symbols.KindModule || modSym.ModuleScope == nil {
		a.errorf(n.Loc(), diag.UndefinedReference, "undefined module %q", n.Module.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	sym, ok := modSym.ModuleScope.LookupLocal(n.Member)
	if !ok {
		a.errorf(n.Loc(), diag.UndefinedReference, "%q has no member %q", n.Module.String(), n.Member.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	a.Symbols[n] = sym
	cat := ast.NonAssignable
	if sym.Kind == symbols.KindVariable {
		cat = ast.Assignable
	}
	return sym.Type, cat
}

func (a *Analyzer) typeUnary(n *ast.UnaryExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	operandTy := a.checkExpr(n.Operand, scope)
	switch n.Op {
	case ast.UnaryAddr:
		if n.Operand.ValueCat() != ast.Assignable {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "cannot take the address of a non-assignable expression")
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return a.Env.Types.Pointer(operandTy), ast.NonAssignable
	case ast.UnaryDeref:
		if operandTy.Kind != types.Pointer {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "cannot dereference non-pointer type %s", operandTy.String())
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return operandTy.Elem, ast.Assignable
	case ast.UnaryNot:
		if operandTy.Kind != types.Bool {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "! requires bool, got %s", operandTy.String())
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return operandTy, ast.NonAssignable
	case ast.UnaryCompl:
		if !operandTy.IsInteger() {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "~ requires an integer type, got %s", operandTy.String())
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return operandTy, ast.NonAssignable
	case ast.UnaryPlus, ast.UnaryNeg:
		if !operandTy.IsNumeric() {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "unary %s requires a numeric type, got %s", unaryOpText(n.Op), operandTy.String())
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return operandTy, ast.NonAssignable
	}
	return a.Env.Types.Prim(types.None), ast.NonAssignable
}

func unaryOpText(op ast.UnaryOp) string {
	switch op {
	case ast.UnaryPlus:
		return "+"
	case ast.UnaryNeg:
		return "-"
	}
	return "?"
}

func (a *Analyzer) typeIndex(n *ast.IndexExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	xTy := a.checkExpr(n.X, scope)
	idxTy := a.checkExpr(n.Index, scope)
	if !idxTy.IsInteger() {
		a.errorf(n.Loc(), diag.InvalidSubscript, "subscript index must be an integer, got %s", idxTy.String())
	}
	if xTy.Kind != types.Pointer {
		a.errorf(n.Loc(), diag.InvalidSubscript, "cannot subscript non-pointer type %s", xTy.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	return xTy.Elem, ast.Assignable
}

func (a *Analyzer) typeMember(n *ast.MemberExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	xTy := a.checkExpr(n.X, scope)
	st := xTy
	if st.Kind == types.Pointer {
		st = st.Elem
	}
	if st.Kind != types.Struct {
		a.errorf(n.Loc(), diag.IncompatibleOperands, "member access on non-struct type %s", xTy.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	idx := types.MemberIndex(st, n.Member.String())
	if idx < 0 {
		a.errorf(n.Loc(), diag.UndefinedReference, "%s has no member %q", st.String(), n.Member.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	return st.Members[idx].Type, ast.Assignable
}

func (a *Analyzer) typeCast(n *ast.CastExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	a.checkExpr(n.Operand, scope)
	target := a.resolveTypeExpr(n.TargetTE, scope)
	n.SetType(target)
	return target, ast.NonAssignable
}

func (a *Analyzer) typeCall(n *ast.CallExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	ident, ok := n.Callee.(*ast.Ident)
	if !ok {
		// Calling through an arbitrary expression (e.g. a function-typed
		// variable): no overload set to resolve against, just check the
		// callee is function-typed and use its return type.
		calleeTy := a.checkExpr(n.Callee, scope)
		for _, arg := range n.Args {
			a.checkExpr(arg, scope)
		}
		if calleeTy.Kind != types.Function {
			a.errorf(n.Loc(), diag.NotCallable, "expression is not callable")
			return a.Env.Types.Prim(types.None), ast.NonAssignable
		}
		return calleeTy.Return, ast.NonAssignable
	}

	sym, ok := scope.Lookup(ident.Name)
	if !ok {
		a.errorf(n.Loc(), diag.UndefinedReference, "undefined reference to %q", ident.Name.String())
		for _, arg := range n.Args {
			a.checkExpr(arg, scope)
		}
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	a.Symbols[ident] = sym
	if sym.Kind != symbols.KindFunction && sym.Kind != symbols.KindForeignFunction {
		a.errorf(n.Loc(), diag.NotCallable, "%q is not callable", ident.Name.String())
		for _, arg := range n.Args {
			a.checkExpr(arg, scope)
		}
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}

	var argTypes []*types.Type
	for _, arg := range n.Args {
		argTypes = append(argTypes, a.checkExpr(arg, scope))
	}

	best, bestScore, tie := a.resolveOverload(sym, argTypes)
	if best == nil {
		a.errorf(n.Loc(), diag.NoOverload, "no overload of %q accepts the given argument types", ident.Name.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	if tie != nil {
		a.errorf(n.Loc(), diag.AmbiguousOverload, "ambiguous call to %q: candidates at %s and %s", ident.Name.String(), best.DefLoc, tie.DefLoc)
	}
	_ = bestScore
	a.Symbols[ident] = best

	ident.SetType(best.Type)
	for i, arg := range n.Args {
		if i < len(best.Type.Params) {
			n.Args[i] = a.coerceOrCast(arg, argTypes[i], best.Type.Params[i], arg.Loc())
		}
	}
	return best.Type.Return, ast.NonAssignable
}

// resolveOverload implements spec.md §4.4's scoring table: exact type
// equality = 3, coercion preserving signedness = 2, other accepted
// coercion = 1, no coercion = ineligible. Parameter-count mismatches are
// ineligible outright.
func (a *Analyzer) resolveOverload(head *symbols.Symbol, argTypes []*types.Type) (best *symbols.Symbol, bestScore int, tie *symbols.Symbol) {
	bestScore = -1
	for _, cand := range head.Overloads() {
		if cand.Type == nil || len(cand.Type.Params) != len(argTypes) {
			continue
		}
		score, eligible := scoreCall(cand.Type.Params, argTypes)
		if !eligible {
			continue
		}
		switch {
		case score > bestScore:
			bestScore, best, tie = score, cand, nil
		case score == bestScore && best != nil:
			tie = cand
		}
	}
	return best, bestScore, tie
}

func scoreCall(params []*types.Type, args []*types.Type) (score int, eligible bool) {
	for i, pt := range params {
		at := args[i]
		switch {
		case at == pt:
			score += 3
		case preservesSignedness(at, pt) && types.CheckTypeCoercion(at, pt):
			score += 2
		case types.CheckTypeCoercion(at, pt):
			score += 1
		default:
			return 0, false
		}
	}
	return score, true
}

func preservesSignedness(from, to *types.Type) bool {
	return (from.IsSigned() && to.IsSigned()) || (!from.IsSigned() && !to.IsSigned() && from.IsInteger() && to.IsInteger())
}

// coerceOrCast checks that from coerces to to, reporting a diagnostic if
// not, and wraps e in a synthetic CastExpr when from != to so the
// coercion is explicit in the tree for internal/ir (spec.md §4.4).
func (a *Analyzer) coerceOrCast(e ast.Expr, from, to *types.Type, loc token.Location) ast.Expr {
	if from == to || from.Kind == types.None || to.Kind == types.None {
		return e
	}
	if !types.CheckTypeCoercion(from, to) {
		a.errorf(loc, diag.IncompatibleOperands, "cannot implicitly convert %s to %s", from.String(), to.String())
		return e
	}
	cast := &ast.CastExpr{ExprBase: ast.NewExprBase(e.Loc()), Operand: e, Synthetic: true}
	cast.SetType(to)
	cast.SetValueCat(ast.NonAssignable)
	return cast
}

// drainPending re-checks every expression whose type resolved to an
// unresolved pending type, up to maxInferRounds times (spec.md §4.4
// "Expressions deferred for inference").
func (a *Analyzer) drainPending() {
	for round := 0; round < maxInferRounds && len(a.pending) > 0; round++ {
		remaining := a.pending[:0]
		for _, pe := range a.pending {
			t := pe.expr.Type()
			if t.Kind == types.Pending && t.Base != nil {
				pe.expr.SetType(t.ResolvedBase())
				continue
			}
			if t.Kind == types.Pending {
				remaining = append(remaining, pe)
			}
		}
		a.pending = remaining
	}
	if len(a.pending) > 0 {
		first := a.pending[0]
		a.errorf(first.expr.Loc(), diag.CouldNotInfer, "could not infer type of expression")
	}
}
