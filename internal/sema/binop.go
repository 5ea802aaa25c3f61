package sema

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
	"github.com/gmofishsauce/hplc/internal/types"
)

// typeBinary implements spec.md §4.4's binary-operator coercion rules,
// rewriting n.Left/n.Right in place with synthetic casts where the
// chosen result type differs from an operand's natural type.
func (a *Analyzer) typeBinary(n *ast.BinaryExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	if isAssignOp(n.Op) {
		return a.typeAssign(n, scope)
	}

	lt := a.checkExpr(n.Left, scope)
	rt := a.checkExpr(n.Right, scope)

	switch n.Op {
	case ast.BinLogOr, ast.BinLogAnd:
		a.requireOperandBool(lt, n.Left.Loc())
		a.requireOperandBool(rt, n.Right.Loc())
		return a.Env.Types.Prim(types.Bool), ast.NonAssignable
	case ast.BinEq, ast.BinNeq, ast.BinLt, ast.BinLeq, ast.BinGt, ast.BinGeq:
		return a.typeComparison(n, lt, rt)
	case ast.BinBitOr, ast.BinBitXor, ast.BinBitAnd, ast.BinShl, ast.BinShr, ast.BinMod:
		return a.typeIntegralOnly(n, lt, rt)
	case ast.BinAdd, ast.BinSub:
		if res, cat, ok := a.typePointerArith(n, lt, rt); ok {
			return res, cat
		}
		return a.typeNumeric(n, lt, rt)
	default: // BinMul, BinDiv
		return a.typeNumeric(n, lt, rt)
	}
}

func isAssignOp(op ast.BinOp) bool {
	switch op {
	case ast.BinAssign, ast.BinAddAssign, ast.BinSubAssign, ast.BinMulAssign, ast.BinDivAssign,
		ast.BinModAssign, ast.BinAndAssign, ast.BinXorAssign, ast.BinOrAssign:
		return true
	}
	return false
}

func (a *Analyzer) typeAssign(n *ast.BinaryExpr, scope *symbols.Scope) (*types.Type, ast.ValueCategory) {
	lt := a.checkExpr(n.Left, scope)
	if n.Left.ValueCat() != ast.Assignable {
		a.errorf(n.Left.Loc(), diag.IncompatibleOperands, "left-hand side of assignment is not assignable")
	}
	rt := a.checkExpr(n.Right, scope)
	n.Right = a.coerceOrCast(n.Right, rt, lt, n.Right.Loc())
	return lt, ast.NonAssignable
}

func (a *Analyzer) requireOperandBool(t *types.Type, loc token.Location) {
	if t.Kind != types.Bool && t.Kind != types.None {
		a.errorf(loc, diag.IncompatibleOperands, "logical operator requires bool, got %s", t.String())
	}
}

func (a *Analyzer) typeComparison(n *ast.BinaryExpr, lt, rt *types.Type) (*types.Type, ast.ValueCategory) {
	boolT := a.Env.Types.Prim(types.Bool)
	switch {
	case lt.Kind == types.None || rt.Kind == types.None:
		return boolT, ast.NonAssignable
	case lt.Kind == types.Pointer && rt.Kind == types.Null:
		return boolT, ast.NonAssignable
	case lt.Kind == types.Null && rt.Kind == types.Pointer:
		return boolT, ast.NonAssignable
	case lt.Kind == types.Pointer && rt.Kind == types.Pointer:
		if lt.Elem != rt.Elem {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "cannot compare %s and %s", lt.String(), rt.String())
		}
		return boolT, ast.NonAssignable
	case lt.IsNumeric() && rt.IsNumeric():
		result, errMsg := a.numericResult(lt, rt)
		if errMsg != "" {
			a.errorf(n.Loc(), diag.IncompatibleOperands, "%s", errMsg)
			return boolT, ast.NonAssignable
		}
		n.Left = a.coerceOrCast(n.Left, lt, result, n.Left.Loc())
		n.Right = a.coerceOrCast(n.Right, rt, result, n.Right.Loc())
		return boolT, ast.NonAssignable
	default:
		a.errorf(n.Loc(), diag.IncompatibleOperands, "cannot compare %s and %s", lt.String(), rt.String())
		return boolT, ast.NonAssignable
	}
}

func (a *Analyzer) typeIntegralOnly(n *ast.BinaryExpr, lt, rt *types.Type) (*types.Type, ast.ValueCategory) {
	if lt.Kind == types.None || rt.Kind == types.None {
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	if !lt.IsInteger() || !rt.IsInteger() {
		a.errorf(n.Loc(), diag.IncompatibleOperands, "operator requires integral operands, got %s and %s", lt.String(), rt.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	result, errMsg := a.numericResult(lt, rt)
	if errMsg != "" {
		a.errorf(n.Loc(), diag.IncompatibleOperands, "%s", errMsg)
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	n.Left = a.coerceOrCast(n.Left, lt, result, n.Left.Loc())
	n.Right = a.coerceOrCast(n.Right, rt, result, n.Right.Loc())
	return result, ast.NonAssignable
}

// typePointerArith handles `pointer + integer` and `pointer - integer`,
// in either operand order, keeping the pointer type (spec.md §4.4).
func (a *Analyzer) typePointerArith(n *ast.BinaryExpr, lt, rt *types.Type) (*types.Type, ast.ValueCategory, bool) {
	if lt.Kind == types.Pointer && rt.IsInteger() {
		return lt, ast.NonAssignable, true
	}
	if n.Op == ast.BinAdd && rt.Kind == types.Pointer && lt.IsInteger() {
		return rt, ast.NonAssignable, true
	}
	return nil, ast.NonAssignable, false
}

func (a *Analyzer) typeNumeric(n *ast.BinaryExpr, lt, rt *types.Type) (*types.Type, ast.ValueCategory) {
	if lt.Kind == types.None || rt.Kind == types.None {
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		a.errorf(n.Loc(), diag.IncompatibleOperands, "operator requires numeric operands, got %s and %s", lt.String(), rt.String())
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	result, errMsg := a.numericResult(lt, rt)
	if errMsg != "" {
		a.errorf(n.Loc(), diag.IncompatibleOperands, "%s", errMsg)
		return a.Env.Types.Prim(types.None), ast.NonAssignable
	}
	n.Left = a.coerceOrCast(n.Left, lt, result, n.Left.Loc())
	n.Right = a.coerceOrCast(n.Right, rt, result, n.Right.Loc())
	return result, ast.NonAssignable
}

// numericResult implements spec.md §4.4's ordered binary-operator
// coercion table: f64 dominates; else f32; else u64 (signed operand is
// an error); else s64; else u32 (promotes a signed operand to s64,
// otherwise both become u32); else s32 (both cast to s32).
func (a *Analyzer) numericResult(lt, rt *types.Type) (result *types.Type, errMsg string) {
	has := func(k types.Kind) bool { return lt.Kind == k || rt.Kind == k }
	other := func(k types.Kind) *types.Type {
		if lt.Kind == k {
			return rt
		}
		return lt
	}

	switch {
	case has(types.F64):
		return a.Env.Types.Prim(types.F64), ""
	case has(types.F32):
		return a.Env.Types.Prim(types.F32), ""
	case has(types.U64):
		if other(types.U64).IsSigned() {
			return nil, "mixing u64 with a signed operand is an error"
		}
		return a.Env.Types.Prim(types.U64), ""
	case has(types.S64):
		return a.Env.Types.Prim(types.S64), ""
	case has(types.U32):
		if other(types.U32).IsSigned() {
			return a.Env.Types.Prim(types.S64), ""
		}
		return a.Env.Types.Prim(types.U32), ""
	default:
		return a.Env.Types.Prim(types.S32), ""
	}
}
