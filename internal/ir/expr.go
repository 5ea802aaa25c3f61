package ir

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/types"
)

type lvalueKind int

const (
	lvVar lvalueKind = iota
	lvMember
	lvElement
	lvDeref
)

// lvalue is the Generator's description of an assignable location,
// computed once and shared by the load and store paths so a compound
// assignment like `a.b += 1` addresses `a.b` exactly once.
type lvalue struct {
	kind lvalueKind

	varOp Operand // lvVar

	base       Operand     // lvMember, lvElement, lvDeref
	memberIdx  int64       // lvMember
	memberType *types.Type // lvMember
	index      Operand     // lvElement
	elemType   *types.Type // lvElement, lvDeref
}

func (g *Generator) genLValue(e ast.Expr) lvalue {
	switch n := e.(type) {
	case *ast.Ident:
		return lvalue{kind: lvVar, varOp: g.identOperand(n)}
	case *ast.ModuleMember:
		return lvalue{kind: lvVar, varOp: g.moduleMemberOperand(n)}
	case *ast.MemberExpr:
		base := g.genExpr(n.X)
		idx, mt := memberIndex(structTypeOf(n.X.Type()), n.Member)
		return lvalue{kind: lvMember, base: base, memberIdx: idx, memberType: mt}
	case *ast.IndexExpr:
		base := g.genExpr(n.X)
		idx := g.genExpr(n.Index)
		return lvalue{kind: lvElement, base: base, index: idx, elemType: n.X.Type().Elem}
	case *ast.UnaryExpr:
		if n.Op == ast.UnaryDeref {
			ptr := g.genExpr(n.Operand)
			return lvalue{kind: lvDeref, base: ptr, elemType: n.Operand.Type().Elem}
		}
	}
	return lvalue{kind: lvVar, varOp: g.genExpr(e)}
}

func (g *Generator) loadLValue(lv lvalue, _ *types.Type) Operand {
	switch lv.kind {
	case lvMember:
		t := g.cur.NewTemp(lv.memberType)
		g.cur.Emit(Instruction{Op: OpMovMember, Target: t, Oper1: lv.base,
			Oper2: Operand{Kind: OperImmediate, Type: lv.memberType, ImmInt: lv.memberIdx, PrevArgIndex: -1}})
		return t
	case lvElement:
		t := g.cur.NewTemp(lv.elemType)
		g.cur.Emit(Instruction{Op: OpMovElement, Target: t, Oper1: lv.base, Oper2: lv.index})
		return t
	case lvDeref:
		t := g.cur.NewTemp(lv.elemType)
		g.cur.Emit(Instruction{Op: OpDeref, Target: t, Oper1: lv.base})
		return t
	}
	return lv.varOp
}

func (g *Generator) storeLValue(lv lvalue, val Operand) {
	switch lv.kind {
	case lvMember:
		g.cur.Emit(Instruction{Op: OpStoreMember, Target: lv.base,
			Oper1: Operand{Kind: OperImmediate, Type: lv.memberType, ImmInt: lv.memberIdx, PrevArgIndex: -1},
			Oper2: val})
	case lvElement:
		g.cur.Emit(Instruction{Op: OpStoreElement, Target: lv.base, Oper1: lv.index, Oper2: val})
	case lvDeref:
		g.cur.Emit(Instruction{Op: OpStoreDeref, Target: lv.base, Oper1: val})
	default:
		g.cur.Emit(Instruction{Op: OpMov, Target: lv.varOp, Oper1: val})
	}
}

func structTypeOf(t *types.Type) *types.Type {
	if t.Kind == types.Pointer {
		return t.Elem
	}
	return t
}

func memberIndex(st *types.Type, member name.Name) (int64, *types.Type) {
	if st == nil {
		return 0, nil
	}
	i := types.MemberIndex(st, member.Bytes)
	if i < 0 {
		return 0, nil
	}
	return int64(i), st.Members[i].Type
}

// genExpr lowers e to the Operand holding its value, emitting whatever
// instructions are needed along the way (spec.md §4.5).
func (g *Generator) genExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.IntLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmInt: int64(n.Value), PrevArgIndex: -1}
	case *ast.FloatLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmFloat: n.Value, PrevArgIndex: -1}
	case *ast.StringLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmString: n.Value, PrevArgIndex: -1}
	case *ast.CharLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmInt: int64(n.Value), PrevArgIndex: -1}
	case *ast.BoolLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmBool: n.Value, PrevArgIndex: -1}
	case *ast.NullLit:
		return Operand{Kind: OperImmediate, Type: n.Type(), ImmIsNull: true, PrevArgIndex: -1}
	case *ast.Ident:
		return g.identOperand(n)
	case *ast.ModuleMember:
		return g.moduleMemberOperand(n)
	case *ast.UnaryExpr:
		return g.genUnary(n)
	case *ast.BinaryExpr:
		return g.genBinary(n)
	case *ast.CallExpr:
		return g.genCall(n)
	case *ast.IndexExpr:
		return g.loadLValue(g.genLValue(n), n.Type())
	case *ast.MemberExpr:
		return g.loadLValue(g.genLValue(n), n.Type())
	case *ast.CastExpr:
		return g.genCast(n)
	}
	return NoneOperand
}

func (g *Generator) identOperand(n *ast.Ident) Operand {
	if key, ok := g.lookupLocal(n.Name); ok {
		return Operand{Kind: OperVariable, Type: n.Type(), Name: key, PrevArgIndex: -1}
	}
	sym := g.Symbols[n]
	if sym == nil {
		return Operand{Kind: OperVariable, Type: n.Type(), Name: n.Name, PrevArgIndex: -1}
	}
	switch sym.Kind {
	case symbols.KindFunction:
		r := g.routine[sym]
		rn := n.Name
		if r != nil {
			rn = r.Name
		}
		return Operand{Kind: OperRoutine, Type: n.Type(), Routine: r, Name: rn, PrevArgIndex: -1}
	case symbols.KindForeignFunction:
		fname, ok := g.foreignName[sym]
		if !ok {
			fname = n.Name
		}
		return Operand{Kind: OperForeignRoutine, Type: n.Type(), Name: fname, PrevArgIndex: -1}
	case symbols.KindVariable:
		if key, ok := g.globalName[sym]; ok {
			return Operand{Kind: OperVariable, Type: n.Type(), Name: key, PrevArgIndex: -1}
		}
		return Operand{Kind: OperVariable, Type: n.Type(), Name: sym.Name, PrevArgIndex: -1}
	default:
		return Operand{Kind: OperVariable, Type: n.Type(), Name: sym.Name, PrevArgIndex: -1}
	}
}

// moduleMemberOperand represents a qualified `module::member` reference
// by name alone: resolving it to another file's Routine/global is the
// job of whatever links this Module's output with the imported
// module's, not of a single file's Generator.
func (g *Generator) moduleMemberOperand(n *ast.ModuleMember) Operand {
	qualified := name.New(n.Module.Bytes + "::" + n.Member.Bytes)
	sym := g.Symbols[n]
	if sym != nil {
		switch sym.Kind {
		case symbols.KindFunction:
			return Operand{Kind: OperRoutine, Type: n.Type(), Name: qualified, PrevArgIndex: -1}
		case symbols.KindForeignFunction:
			return Operand{Kind: OperForeignRoutine, Type: n.Type(), Name: qualified, PrevArgIndex: -1}
		}
	}
	return Operand{Kind: OperVariable, Type: n.Type(), Name: qualified, PrevArgIndex: -1}
}

func (g *Generator) genUnary(n *ast.UnaryExpr) Operand {
	switch n.Op {
	case ast.UnaryAddr:
		lv := g.genLValue(n.Operand)
		switch lv.kind {
		case lvMember:
			base := g.cur.NewTemp(g.Env.Types.Pointer(lv.memberType))
			g.cur.Emit(Instruction{Op: OpAddr, Target: base, Oper1: lv.base})
			t := g.cur.NewTemp(n.Type())
			g.cur.Emit(Instruction{Op: OpAdd, Target: t, Oper1: base,
				Oper2: Operand{Kind: OperImmediate, Type: lv.memberType, ImmInt: lv.memberIdx, PrevArgIndex: -1}})
			return t
		case lvElement:
			t := g.cur.NewTemp(n.Type())
			g.cur.Emit(Instruction{Op: OpAdd, Target: t, Oper1: lv.base, Oper2: lv.index})
			return t
		case lvDeref:
			return lv.base
		default:
			t := g.cur.NewTemp(n.Type())
			g.cur.Emit(Instruction{Op: OpAddr, Target: t, Oper1: lv.varOp})
			return t
		}
	case ast.UnaryDeref:
		return g.loadLValue(g.genLValue(n.Operand), n.Type())
	case ast.UnaryPlus:
		return g.genExpr(n.Operand)
	default:
		v := g.genExpr(n.Operand)
		t := g.cur.NewTemp(n.Type())
		g.cur.Emit(Instruction{Op: unaryOpcode(n.Op), Target: t, Oper1: v})
		return t
	}
}

func unaryOpcode(op ast.UnaryOp) Opcode {
	switch op {
	case ast.UnaryNeg:
		return OpNeg
	case ast.UnaryCompl:
		return OpCompl
	case ast.UnaryNot:
		return OpNot
	}
	return OpNone
}

func (g *Generator) genBinary(n *ast.BinaryExpr) Operand {
	switch n.Op {
	case ast.BinAssign:
		lv := g.genLValue(n.Left)
		v := g.genExpr(n.Right)
		g.storeLValue(lv, v)
		return v
	case ast.BinAddAssign, ast.BinSubAssign, ast.BinMulAssign, ast.BinDivAssign,
		ast.BinModAssign, ast.BinAndAssign, ast.BinXorAssign, ast.BinOrAssign:
		return g.genCompoundAssign(n)
	case ast.BinLogAnd:
		return g.genShortCircuit(n, true)
	case ast.BinLogOr:
		return g.genShortCircuit(n, false)
	}
	l := g.genExpr(n.Left)
	r := g.genExpr(n.Right)
	t := g.cur.NewTemp(n.Type())
	g.cur.Emit(Instruction{Op: binOpcode(n.Op), Target: t, Oper1: l, Oper2: r})
	return t
}

func (g *Generator) genCompoundAssign(n *ast.BinaryExpr) Operand {
	lv := g.genLValue(n.Left)
	cur := g.loadLValue(lv, n.Left.Type())
	r := g.genExpr(n.Right)
	t := g.cur.NewTemp(n.Type())
	g.cur.Emit(Instruction{Op: compoundOpcode(n.Op), Target: t, Oper1: cur, Oper2: r})
	g.storeLValue(lv, t)
	return t
}

func compoundOpcode(op ast.BinOp) Opcode {
	switch op {
	case ast.BinAddAssign:
		return OpAdd
	case ast.BinSubAssign:
		return OpSub
	case ast.BinMulAssign:
		return OpMul
	case ast.BinDivAssign:
		return OpDiv
	case ast.BinModAssign:
		return OpMod
	case ast.BinAndAssign:
		return OpBitAnd
	case ast.BinXorAssign:
		return OpBitXor
	case ast.BinOrAssign:
		return OpBitOr
	}
	return OpNone
}

func binOpcode(op ast.BinOp) Opcode {
	switch op {
	case ast.BinEq:
		return OpEq
	case ast.BinNeq:
		return OpNeq
	case ast.BinLt:
		return OpLt
	case ast.BinLeq:
		return OpLeq
	case ast.BinGt:
		return OpGt
	case ast.BinGeq:
		return OpGeq
	case ast.BinBitOr:
		return OpBitOr
	case ast.BinBitXor:
		return OpBitXor
	case ast.BinBitAnd:
		return OpBitAnd
	case ast.BinShl:
		return OpShl
	case ast.BinShr:
		return OpShr
	case ast.BinAdd:
		return OpAdd
	case ast.BinSub:
		return OpSub
	case ast.BinMul:
		return OpMul
	case ast.BinDiv:
		return OpDiv
	case ast.BinMod:
		return OpMod
	}
	return OpNone
}

// genShortCircuit lowers && (and=true) / || (and=false) to a jump over
// the right operand plus a merge write, rather than evaluating both
// sides unconditionally (spec.md §4.5).
func (g *Generator) genShortCircuit(n *ast.BinaryExpr, and bool) Operand {
	result := g.cur.NewTemp(n.Type())
	l := g.genExpr(n.Left)
	g.cur.Emit(Instruction{Op: OpMov, Target: result, Oper1: l})

	skip := g.cur.NewLabel()
	skipOp := OpJz
	if !and {
		skipOp = OpJnz
	}
	g.cur.Emit(Instruction{Op: skipOp, Target: Operand{Kind: OperLabel, Lbl: skip, PrevArgIndex: -1}, Oper1: result})

	r := g.genExpr(n.Right)
	g.cur.Emit(Instruction{Op: OpMov, Target: result, Oper1: r})
	g.cur.PlaceLabel(skip)
	return result
}

// genCall lowers a call to an Arg chain (each Arg's Target carries the
// previous Arg's instruction index via PrevArgIndex, spec.md §4.5)
// followed by a Call or CallForeign referencing the chain's last index.
func (g *Generator) genCall(n *ast.CallExpr) Operand {
	last := -1
	for _, arg := range n.Args {
		v := g.genExpr(arg)
		idx := g.cur.Emit(Instruction{Op: OpArg, Target: Operand{Kind: OperNone, PrevArgIndex: last}, Oper1: v})
		last = idx
	}

	callee := g.calleeOperand(n.Callee)
	var target Operand
	if n.Type() == nil || n.Type().Kind == types.Void {
		target = NoneOperand
	} else {
		target = g.cur.NewTemp(n.Type())
	}

	op := OpCall
	if callee.Kind == OperForeignRoutine {
		op = OpCallForeign
	}
	g.cur.Emit(Instruction{Op: op, Target: target, Oper1: callee,
		Oper2: Operand{Kind: OperImmediate, ImmInt: int64(last), PrevArgIndex: -1}})
	return target
}

func (g *Generator) calleeOperand(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.Ident:
		return g.identOperand(n)
	case *ast.ModuleMember:
		return g.moduleMemberOperand(n)
	}
	return g.genExpr(e)
}

func (g *Generator) genCast(n *ast.CastExpr) Operand {
	v := g.genExpr(n.Operand)
	op, ok := castOpcode(n.Operand.Type(), n.Type())
	if !ok {
		return v
	}
	t := g.cur.NewTemp(n.Type())
	g.cur.Emit(Instruction{Op: op, Target: t, Oper1: v})
	return t
}

// castOpcode picks the IR conversion opcode for a cast between from and
// to (spec.md §4.6 notes the float/int conversions need an explicit
// opcode; same-domain widening/narrowing is a plain Mov or MovSX).
func castOpcode(from, to *types.Type) (Opcode, bool) {
	switch {
	case from.IsFloat() && to.IsFloat():
		if from.Kind == types.F32 && to.Kind == types.F64 {
			return OpF32ToF64, true
		}
		if from.Kind == types.F64 && to.Kind == types.F32 {
			return OpF64ToF32, true
		}
		return OpNone, false
	case from.IsFloat() && to.IsInteger():
		if from.Kind == types.F32 {
			return OpF32ToS, true
		}
		return OpF64ToS, true
	case from.IsInteger() && to.IsFloat():
		if to.Kind == types.F32 {
			return OpSToF32, true
		}
		return OpSToF64, true
	case from.IsInteger() && to.IsInteger():
		if to.Width() > from.Width() {
			return OpMovSX, true
		}
		return OpMov, true
	}
	return OpMov, true
}
