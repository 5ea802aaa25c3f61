package ir

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/name"
)

// returnReg is the pseudo-variable codegen recognizes as "the return
// value, wherever the ABI puts it" (spec.md §4.6).
var returnReg = name.New("$ret")

func (g *Generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		g.genBlock(n)
	case *ast.VarDecl:
		g.genLocalVar(n)
	case *ast.ExprStmt:
		g.genExpr(n.X)
	case *ast.IfStmt:
		g.genIf(n)
	case *ast.WhileStmt:
		g.genWhile(n)
	case *ast.ForStmt:
		g.genFor(n)
	case *ast.ReturnStmt:
		g.genReturn(n)
	case *ast.BreakStmt:
		g.emitJumpTo(g.breakables)
	case *ast.ContinueStmt:
		g.emitJumpTo(g.continuables)
	case *ast.StructDecl:
		// Local struct declarations only extend the type table during
		// sema; nothing to lower here.
	}
}

func (g *Generator) emitJumpTo(stack []*Label) {
	if len(stack) == 0 {
		return
	}
	lbl := stack[len(stack)-1]
	g.cur.Emit(Instruction{Op: OpJump, Target: Operand{Kind: OperLabel, Lbl: lbl, PrevArgIndex: -1}})
}

func (g *Generator) genLocalVar(n *ast.VarDecl) {
	key := g.declareLocal(n.Name)
	if n.Value == nil {
		return
	}
	v := g.genExpr(n.Value)
	g.cur.Emit(Instruction{
		Op:     OpMov,
		Target: Operand{Kind: OperVariable, Type: n.Value.Type(), Name: key, PrevArgIndex: -1},
		Oper1:  v,
	})
}

func (g *Generator) genIf(n *ast.IfStmt) {
	cond := g.genExpr(n.Cond)
	end := g.cur.NewLabel()

	if n.Else == nil {
		g.cur.Emit(Instruction{Op: OpJz, Target: Operand{Kind: OperLabel, Lbl: end, PrevArgIndex: -1}, Oper1: cond})
		g.genBlock(n.Then)
		g.cur.PlaceLabel(end)
		return
	}

	elseLbl := g.cur.NewLabel()
	g.cur.Emit(Instruction{Op: OpJz, Target: Operand{Kind: OperLabel, Lbl: elseLbl, PrevArgIndex: -1}, Oper1: cond})
	g.genBlock(n.Then)
	g.cur.Emit(Instruction{Op: OpJump, Target: Operand{Kind: OperLabel, Lbl: end, PrevArgIndex: -1}})
	g.cur.PlaceLabel(elseLbl)
	g.genStmt(n.Else)
	g.cur.PlaceLabel(end)
}

func (g *Generator) genWhile(n *ast.WhileStmt) {
	start := g.cur.NewLabel()
	g.cur.PlaceLabel(start)
	end := g.cur.NewLabel()

	cond := g.genExpr(n.Cond)
	g.cur.Emit(Instruction{Op: OpJz, Target: Operand{Kind: OperLabel, Lbl: end, PrevArgIndex: -1}, Oper1: cond})

	g.breakables = append(g.breakables, end)
	g.continuables = append(g.continuables, start)
	g.genBlock(n.Body)
	g.breakables = g.breakables[:len(g.breakables)-1]
	g.continuables = g.continuables[:len(g.continuables)-1]

	g.cur.Emit(Instruction{Op: OpJump, Target: Operand{Kind: OperLabel, Lbl: start, PrevArgIndex: -1}})
	g.cur.PlaceLabel(end)
}

// genFor routes continue through the post-expression label so a
// `continue` still runs the loop's increment, matching internal/sema's
// analyzeFor scope (spec.md §4.4 "A for that declares its own induction
// variable opens an inner scope").
func (g *Generator) genFor(n *ast.ForStmt) {
	g.pushScope()
	defer g.popScope()

	if n.Init != nil {
		g.genLocalVar(n.Init)
	}

	start := g.cur.NewLabel()
	g.cur.PlaceLabel(start)
	end := g.cur.NewLabel()
	if n.Cond != nil {
		cond := g.genExpr(n.Cond)
		g.cur.Emit(Instruction{Op: OpJz, Target: Operand{Kind: OperLabel, Lbl: end, PrevArgIndex: -1}, Oper1: cond})
	}

	post := g.cur.NewLabel()
	g.breakables = append(g.breakables, end)
	g.continuables = append(g.continuables, post)
	g.genBlock(n.Body)
	g.breakables = g.breakables[:len(g.breakables)-1]
	g.continuables = g.continuables[:len(g.continuables)-1]

	g.cur.PlaceLabel(post)
	if n.Post != nil {
		g.genExpr(n.Post)
	}
	g.cur.Emit(Instruction{Op: OpJump, Target: Operand{Kind: OperLabel, Lbl: start, PrevArgIndex: -1}})
	g.cur.PlaceLabel(end)
}

func (g *Generator) genReturn(n *ast.ReturnStmt) {
	if n.Value != nil {
		v := g.genExpr(n.Value)
		g.cur.Emit(Instruction{
			Op:     OpMov,
			Target: Operand{Kind: OperVariable, Type: n.Value.Type(), Name: returnReg, PrevArgIndex: -1},
			Oper1:  v,
		})
	}
	g.cur.Emit(Instruction{Op: OpReturn})
}
