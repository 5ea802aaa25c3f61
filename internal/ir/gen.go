package ir

import (
	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/types"
)

// Generator lowers a semantically analyzed AST to IR (spec.md §4.5).
// Grounded on internal/engine/wazevo/ssa/builder.go's currentBB-style
// "current routine" cursor, generalized from a block-graph builder to
// this package's flat per-routine instruction stream.
type Generator struct {
	Env     *symbols.Environment
	Symbols map[ast.Expr]*symbols.Symbol // from sema.Analyzer.Symbols

	mod *Module

	routine     map[*symbols.Symbol]*Routine // declared functions
	globalName  map[*symbols.Symbol]name.Name
	foreignName map[*symbols.Symbol]name.Name

	cur        *Routine
	scopeIDGen int
	locals     []map[string]name.Name // lexical frames, innermost last

	breakables   []*Label
	continuables []*Label
}

// NewGenerator returns a Generator sharing env and the symbol side-table
// built by internal/sema.
func NewGenerator(env *symbols.Environment, syms map[ast.Expr]*symbols.Symbol) *Generator {
	return &Generator{
		Env: env, Symbols: syms,
		routine:     make(map[*symbols.Symbol]*Routine),
		globalName:  make(map[*symbols.Symbol]name.Name),
		foreignName: make(map[*symbols.Symbol]name.Name),
	}
}

// Generate lowers every top-level declaration of f into a fresh Module's
// routines, plus the synthetic @toplevel routine for module-level
// initializers (spec.md §4.5).
func (g *Generator) Generate(f *ast.File, funcSym map[*ast.FuncDecl]*symbols.Symbol) *Module {
	g.mod = NewModule()

	for _, d := range f.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			sym := funcSym[n]
			var retTy *types.Type
			if sym != nil && sym.Type != nil {
				retTy = sym.Type.Return
			}
			r := NewRoutine(g.routineName(sym, n.Name), retTy)
			g.routine[sym] = r
			g.mod.AddRoutine(r)
		case *ast.ForeignBlock:
			for _, fd := range n.Decls {
				sym, _ := g.Env.Global.LookupLocal(fd.Name)
				g.foreignName[sym] = fd.Name
			}
		}
	}

	g.cur = g.mod.Toplevel
	for _, d := range f.Decls {
		if vd, ok := d.(*ast.VarDecl); ok {
			g.genGlobalVar(vd)
		}
	}

	for _, d := range f.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		sym := funcSym[fd]
		g.genFunc(fd, sym, g.routine[sym])
	}

	return g.mod
}

// routineName mangles overloaded functions so Module.ByName stays a
// one-to-one map; the first declaration of a name keeps it bare.
func (g *Generator) routineName(sym *symbols.Symbol, n name.Name) name.Name {
	if _, taken := g.mod.ByName[n.Bytes]; !taken {
		return n
	}
	suffix := 1
	for {
		candidate := name.New(n.Bytes + "$" + itoa(suffix))
		if _, taken := g.mod.ByName[candidate.Bytes]; !taken {
			return candidate
		}
		suffix++
	}
}

func (g *Generator) genGlobalVar(n *ast.VarDecl) {
	sym, _ := g.Env.Global.LookupLocal(n.Name)
	key := name.New(n.Name.Bytes + "$global")
	g.globalName[sym] = key
	if n.Value == nil {
		return
	}
	val := g.genExpr(n.Value)
	g.cur.Emit(Instruction{
		Op:     OpMov,
		Target: Operand{Kind: OperVariable, Type: n.Value.Type(), Name: key, PrevArgIndex: -1},
		Oper1:  val,
	})
}

func (g *Generator) genFunc(fd *ast.FuncDecl, sym *symbols.Symbol, r *Routine) {
	saved := g.cur
	g.cur = r
	defer func() { g.cur = saved }()

	g.pushScope()
	defer g.popScope()

	var paramTypes []*types.Type
	if sym != nil && sym.Type != nil {
		paramTypes = sym.Type.Params
	}
	for i, p := range fd.Params {
		var pt *types.Type
		if i < len(paramTypes) {
			pt = paramTypes[i]
		}
		key := g.declareLocal(p.Name)
		r.Params = append(r.Params, Operand{Kind: OperVariable, Type: pt, Name: key, PrevArgIndex: -1})
	}

	g.genBlock(fd.Body)
}

func (g *Generator) genBlock(b *ast.BlockStmt) {
	g.pushScope()
	defer g.popScope()
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
}

// pushScope/popScope/declareLocal/lookupLocal implement the lexical
// scoping internal/sema's Scope chain already validated: each
// declaration gets a fresh `name$N` IR key (spec.md §4.5 "IR variables
// keyed varname$scope-id"), and lookups walk frames innermost-first so
// a shadowing declaration in a nested block wins.
func (g *Generator) pushScope() { g.locals = append(g.locals, make(map[string]name.Name)) }

func (g *Generator) popScope() { g.locals = g.locals[:len(g.locals)-1] }

func (g *Generator) declareLocal(n name.Name) name.Name {
	g.scopeIDGen++
	key := name.New(n.Bytes + "$" + itoa(g.scopeIDGen))
	g.locals[len(g.locals)-1][n.Bytes] = key
	return key
}

func (g *Generator) lookupLocal(n name.Name) (name.Name, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if key, ok := g.locals[i][n.Bytes]; ok {
			return key, true
		}
	}
	return name.Name{}, false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}
