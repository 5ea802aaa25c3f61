// Package compiler drives the whole-program pipeline of spec.md §5:
// lex, parse, check, generate IR, select instructions, allocate
// registers and print assembly, one module at a time, recursing
// synchronously into imports as the semantic analyzer encounters them.
// Grounded on internal/engine/wazevo's compiler.go, whose Compiler type
// owns exactly this kind of context (environment, machine, diagnostics)
// threaded through a fixed phase sequence.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gmofishsauce/hplc/internal/asmprint"
	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/codegen/amd64"
	"github.com/gmofishsauce/hplc/internal/config"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/lexer"
	"github.com/gmofishsauce/hplc/internal/parser"
	"github.com/gmofishsauce/hplc/internal/regalloc"
	"github.com/gmofishsauce/hplc/internal/sema"
	"github.com/gmofishsauce/hplc/internal/symbols"
	"github.com/gmofishsauce/hplc/internal/token"
)

// internalError marks a panic raised for a condition the pipeline
// considers a compiler bug rather than a user-facing diagnostic,
// mirroring internal/engine/wazevo's "BUG:" panics. Recovered only at
// CompileFile's boundary.
type internalError struct{ msg string }

func (e internalError) Error() string { return e.msg }

func bug(format string, args ...any) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}

// Context bundles every resource one compilation owns end to end:
// configuration, diagnostics, the shared symbol/type environment, the
// two supplemented debugging aids, and the per-module module-dedup
// ledger (spec.md §5 "Module imports introduce apparent recursion").
type Context struct {
	Cfg     *config.Config
	Diags   *diag.Bag
	Env     *symbols.Environment
	Profile *diag.Profiler
	Mem     *diag.MemStats

	machine *amd64.Machine
	abi     codegen.ABI
	windows bool

	vregSeq int

	compiling map[string]bool           // resolved path -> in progress
	completed map[string]*symbols.Scope // resolved path -> done

	routines []*codegen.Routine
}

// NewContext wires a fresh Context from cfg, choosing the ABI and
// shadow-space policy from cfg.Target (spec.md §4.6, §6).
func NewContext(cfg *config.Config) *Context {
	c := &Context{
		Cfg:       cfg,
		Diags:     diag.NewBag(cfg.MaxErrorCount, cfg.MaxLineArrowErrorCount),
		Env:       symbols.NewEnvironment(),
		Profile:   diag.NewProfiler(cfg.ProfileTime),
		Mem:       diag.NewMemStats(cfg.DiagnoseMemory),
		machine:   amd64.New(),
		compiling: make(map[string]bool),
		completed: make(map[string]*symbols.Scope),
	}
	if cfg.Target == config.TargetWindows {
		c.abi = codegen.ABIWindows
		c.windows = true
	} else {
		c.abi = codegen.ABISystemV
	}
	c.machine.SetCompilationContext(c)
	return c
}

// ABI implements codegen.CompilationContext.
func (c *Context) ABI() codegen.ABI { return c.abi }

// NewVReg implements codegen.CompilationContext.
func (c *Context) NewVReg(class codegen.RegClass) codegen.Reg {
	c.vregSeq++
	return codegen.Reg{Class: class, Virtual: true, ID: c.vregSeq}
}

// Import implements sema.Importer. Because hplc's semantic analyzer
// declares every top-level symbol into one flat Env.Global scope
// regardless of which file declared it (see internal/sema's
// declareFunc/declareGlobalVar/declareImport), the scope returned here
// is always that same global scope, populated with importPath's symbols
// once its whole pipeline has run. A module-qualified lookup
// (`alias::member`) therefore searches the whole program's flat
// namespace rather than one module's private slice of it; this is a
// direct consequence of the single-scope design this compiler inherited
// and is accepted as-is (see DESIGN.md).
func (c *Context) Import(fromPath, importPath string) (*symbols.Scope, bool) {
	resolved := resolveImportPath(fromPath, importPath)
	return c.compileModule(resolved)
}

// resolveImportPath implements spec.md §6's module path resolution: for
// `import "foo"` in path/to/X.hp, open path/to/foo.hp.
func resolveImportPath(fromPath, importPath string) string {
	dir := filepath.Dir(fromPath)
	return filepath.Clean(filepath.Join(dir, importPath+".hp"))
}

// compileModule runs the whole pipeline on resolvedPath, deduplicating
// on resolved filename (spec.md §5 "Cycles are prevented by
// deduplicating modules on resolved filename"). Returns the module's
// scope (always Env.Global, see Import's doc comment) and whether it
// compiled (or had already compiled) cleanly enough to be importable.
func (c *Context) compileModule(resolvedPath string) (*symbols.Scope, bool) {
	if scope, ok := c.completed[resolvedPath]; ok {
		return scope, true
	}
	if c.compiling[resolvedPath] {
		// Already in progress higher up the call stack: a cycle. Skip.
		return nil, false
	}
	c.compiling[resolvedPath] = true
	defer delete(c.compiling, resolvedPath)

	// stop ends this module's pipeline early: a full diagnostic bag fails
	// it, while a stop_after gate leaves it complete and importable.
	stop := func() (*symbols.Scope, bool) {
		if c.Diags.Full() {
			return nil, false
		}
		c.completed[resolvedPath] = c.Env.Global
		return c.Env.Global, true
	}

	src, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, false
	}
	// Append the in-memory NUL lex terminator (spec.md §6); it is not
	// part of the file's logical content.
	src = append(src, 0)
	file := &token.File{Name: filepath.Base(resolvedPath), Path: resolvedPath, Src: src}

	c.Profile.Begin("lex")
	lx := lexer.New(file, c.Diags)
	toks := lx.Lex()
	c.Profile.End("lex")
	if c.Diags.Full() || !config.PhaseLex.Before(c.Cfg.StopAfter) {
		return stop()
	}

	c.Profile.Begin("parse")
	p := parser.New(file, toks, c.Diags)
	astFile := p.ParseFile(resolvedPath)
	c.Profile.End("parse")
	if c.Diags.Full() || !config.PhaseParse.Before(c.Cfg.StopAfter) {
		return stop()
	}

	c.Profile.Begin("check")
	analyzer := sema.New(c.Env, c.Diags, c, resolvedPath)
	analyzer.Analyze(astFile)
	c.Profile.End("check")
	if c.Diags.Full() || !config.PhaseCheck.Before(c.Cfg.StopAfter) {
		return stop()
	}

	c.Profile.Begin("ir")
	gen := ir.NewGenerator(c.Env, analyzer.Symbols)
	mod := gen.Generate(astFile, analyzer.FuncSymbols())
	c.Profile.End("ir")
	if c.Diags.Full() || !config.PhaseIR.Before(c.Cfg.StopAfter) {
		c.completed[resolvedPath] = c.Env.Global
		return c.Env.Global, true
	}

	c.Profile.Begin("codegen")
	routines := append([]*ir.Routine{}, mod.Routines...)
	if len(mod.Toplevel.Instrs) > 0 {
		routines = append(routines, mod.Toplevel)
	}
	for _, r := range routines {
		c.routines = append(c.routines, c.lowerRoutine(r))
	}
	c.Profile.End("codegen")

	c.completed[resolvedPath] = c.Env.Global
	return c.Env.Global, true
}

// lowerRoutine runs one IR routine through instruction selection
// (internal/codegen/amd64) and register allocation (internal/regalloc),
// returning the fully framed target Routine ready to print.
func (c *Context) lowerRoutine(r *ir.Routine) *codegen.Routine {
	c.machine.StartRoutine(r)
	for i := range r.Instrs {
		c.machine.LowerInstr(&r.Instrs[i])
	}
	out := c.machine.EndRoutine()
	if out == nil {
		bug("machine.EndRoutine returned nil for routine %q", r.Name.Bytes)
	}
	c.machine.Reset()
	c.machine.SetCompilationContext(c)

	alloc := regalloc.New(amd64.RegisterPool(), c.windows)
	alloc.Allocate(out)
	return out
}

// CompileFile runs the pipeline on the given top-level source file and
// returns the printed assembly listing plus whether compilation
// completed with no diagnostics. Internal-bug panics (internalError)
// are recovered here and reported as a single synthetic diagnostic
// rather than crashing the driver, mirroring internal/engine/wazevo's
// "BUG:" panic convention.
func (c *Context) CompileFile(path string) (asm string, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if ie, isInternal := rec.(internalError); isInternal {
				err = ie
				ok = false
				return
			}
			panic(rec)
		}
	}()

	resolved := filepath.Clean(path)
	_, compiled := c.compileModule(resolved)
	if !compiled {
		return "", false, nil
	}
	if c.Diags.Count() > 0 {
		return "", false, nil
	}
	if !config.PhaseCodegen.Before(c.Cfg.StopAfter) {
		// Stopped before the link phase: nothing to print yet.
		return "", true, nil
	}
	return asmprint.Module(c.routines), true, nil
}

// Diagnostics renders every recorded diagnostic, echoing source context
// for the first max_line_arrow_error_count of them (spec.md §6).
func (c *Context) Diagnostics() string {
	var b strings.Builder
	for _, d := range c.Diags.Items() {
		b.WriteString(d.String())
		b.WriteByte('\n')
		if c.Diags.ShouldEchoSource() {
			diag.WriteSourceEcho(&b, d.Loc)
		}
	}
	return b.String()
}

// Teardown reports the supplemented diagnostics (profile_time,
// diagnose_memory) to w; every resource the context owns is released
// simply by dropping the Context (spec.md §5 "Resource discipline").
func (c *Context) Teardown(w *os.File) {
	c.Profile.Report(w)
	c.Mem.Report(w)
}
