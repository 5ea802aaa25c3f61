// Package regalloc implements the single forward-pass register allocator
// of spec.md §4.7: a live map (Name/LivenessID -> physical register), its
// inverse, and a dirty bitset, rewritten instruction by instruction with
// no backward liveness analysis. Grounded on the real wazero amd64
// backend's regalloc.VReg/spill-slot-map vocabulary (retrieval-pack
// reference), generalized from wazero's post-hoc linear-scan-over-SSA
// allocator down to the spec's simpler single-pass model.
package regalloc

import (
	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/types"
)

// Pool is one architecture's allocable register inventory, ordered so
// caller-saves are handed out before callee-saves (spec.md §4.7 "free-
// register pool ... ordered so that caller-saves are popped before
// callee-saves").
type Pool struct {
	CallerSaveInt []string
	CalleeSaveInt []string
	Float         []string
}

// binding is one live Name/LivenessID's current physical register.
type binding struct {
	reg   string
	class codegen.RegClass
}

// Allocator holds the mapping state for one routine at a time; Allocate
// resets it at the start of each call.
type Allocator struct {
	pool    Pool
	windows bool

	freeInt   []string
	freeFloat []string

	live     map[string]binding // key -> binding
	regOwner map[string]string  // reg name -> key currently bound to it
	dirty    map[string]bool    // reg name -> written since last spill

	localOffsets map[string]int
	localTypes   map[string]*types.Type
	nextOffset   int

	calleeSaveOrder []string
	calleeSaveUsed  map[string]bool

	usesCall bool

	// spills accumulates reload/displacement-store instructions that must
	// precede the instruction currently being rewritten.
	spills []codegen.TInstruction
}

// New returns an Allocator for one ABI's register pool. windows selects
// the Windows x64 shadow-space addition to locals_size.
func New(pool Pool, windows bool) *Allocator {
	return &Allocator{pool: pool, windows: windows}
}

// Allocate rewrites r.Body's IrOperand/FixedReg placeholders to physical
// registers and memory operands, and fills r.Prologue/Epilogue/
// CalleeSave*/LocalsSize/LocalOffsets/UsesShadowSpace.
func (a *Allocator) Allocate(r *codegen.Routine) {
	a.resetForRoutine(r)

	var newBody []codegen.TInstruction
	for _, instr := range r.Body {
		if instr.Mnemonic == "call" {
			a.usesCall = true
		}
		a.spills = a.spills[:0]
		ops := make([]codegen.TOperand, len(instr.Operands))
		for i, op := range instr.Operands {
			ops[i] = a.rewriteOperand(op)
		}
		newBody = append(newBody, a.spills...)
		instr.Operands = ops
		newBody = append(newBody, instr)
	}
	r.Body = newBody

	a.buildFrame(r)
	a.spliceReturns(r)
}

func (a *Allocator) resetForRoutine(r *codegen.Routine) {
	a.freeInt = append([]string{}, a.pool.CallerSaveInt...)
	a.freeInt = append(a.freeInt, a.pool.CalleeSaveInt...)
	a.freeFloat = append([]string{}, a.pool.Float...)

	a.live = make(map[string]binding)
	a.regOwner = make(map[string]string)
	a.dirty = make(map[string]bool)
	a.localOffsets = r.LocalOffsets
	a.localTypes = make(map[string]*types.Type)
	a.nextOffset = 0
	a.calleeSaveOrder = nil
	a.calleeSaveUsed = make(map[string]bool)
	a.usesCall = false
	a.spills = nil
}

func (a *Allocator) rewriteOperand(op codegen.TOperand) codegen.TOperand {
	switch op.Kind {
	case codegen.TIrOperand:
		key := "n:" + op.IR.Name.Bytes
		b := a.bindAny(key, classOf(op.Type), op.Type, op.Access)
		return codegen.TOperand{Kind: codegen.TPhysReg, Type: op.Type, Access: op.Access, Reg: codegen.Reg{Class: b.class, Name: b.reg}}
	case codegen.TFixedReg:
		key := "l:" + itoa(op.LivenessID)
		b := a.bindSpecific(key, op.Reg, op.Type, op.Access)
		return codegen.TOperand{Kind: codegen.TPhysReg, Type: op.Type, Access: op.Access, Reg: codegen.Reg{Class: b.class, Name: b.reg}}
	case codegen.TMemoryIR:
		key := "n:" + op.IRBase.Name.Bytes
		baseB := a.bindAny(key, codegen.ClassInt, op.IRBase.Type, codegen.Read)
		mem := codegen.TOperand{
			Kind: codegen.TMemory, Type: op.Type, Access: op.Access,
			Base: codegen.Reg{Class: baseB.class, Name: baseB.reg},
			Scale: op.Scale, Offset: op.Offset,
		}
		if op.IR.Kind != ir.OperNone { // an index value was stashed for element addressing
			idxKey := "n:" + op.IR.Name.Bytes
			idxB := a.bindAny(idxKey, codegen.ClassInt, op.IR.Type, codegen.Read)
			mem.Index = codegen.Reg{Class: idxB.class, Name: idxB.reg}
		}
		return mem
	default:
		return op
	}
}

func classOf(t *types.Type) codegen.RegClass {
	if t != nil && t.IsFloat() {
		return codegen.ClassFloat
	}
	return codegen.ClassInt
}

// bindAny satisfies spec.md §4.7 step 2 for IrOperand-kind operands: reuse
// an existing mapping, or claim a free register (displacing and, if
// dirty, spilling whatever it held), reloading the key's previous value
// first if this is a read of a key that was spilled earlier.
func (a *Allocator) bindAny(key string, class codegen.RegClass, t *types.Type, access codegen.Access) binding {
	if b, ok := a.live[key]; ok {
		a.markWrite(key, b.reg, access)
		return b
	}

	free := &a.freeInt
	if class == codegen.ClassFloat {
		free = &a.freeFloat
	}

	var regName string
	if len(*free) > 0 {
		regName = (*free)[0]
		*free = (*free)[1:]
	} else {
		regName = a.evict(class)
	}

	a.claim(key, regName, class)
	a.localTypes[key] = t
	if access&codegen.Read != 0 {
		if off, spilled := a.localOffsets[key]; spilled {
			a.spills = append(a.spills, loadInstr(regName, class, off, t))
		}
	}
	a.markWrite(key, regName, access)
	return a.live[key]
}

// bindSpecific satisfies step 2 for FixedReg operands, which must land in
// one particular physical register (the rax/rdx mul/div idiom).
func (a *Allocator) bindSpecific(key string, want codegen.Reg, t *types.Type, access codegen.Access) binding {
	if b, ok := a.live[key]; ok && b.reg == want.Name {
		a.markWrite(key, b.reg, access)
		return b
	}
	if b, ok := a.live[key]; ok {
		a.release(b.reg)
	}
	if occupant, ok := a.regOwner[want.Name]; ok && occupant != key {
		a.displace(want.Name)
	}
	a.removeFree(want.Name, want.Class)
	a.claim(key, want.Name, want.Class)
	a.localTypes[key] = t
	if access&codegen.Read != 0 {
		if off, spilled := a.localOffsets[key]; spilled {
			a.spills = append(a.spills, loadInstr(want.Name, want.Class, off, t))
		}
	}
	a.markWrite(key, want.Name, access)
	return a.live[key]
}

func (a *Allocator) removeFree(regName string, class codegen.RegClass) {
	free := &a.freeInt
	if class == codegen.ClassFloat {
		free = &a.freeFloat
	}
	for i, r := range *free {
		if r == regName {
			*free = append((*free)[:i], (*free)[i+1:]...)
			return
		}
	}
}

func (a *Allocator) returnFree(regName string, class codegen.RegClass) {
	if class == codegen.ClassFloat {
		a.freeFloat = append(a.freeFloat, regName)
		return
	}
	a.freeInt = append(a.freeInt, regName)
}

func (a *Allocator) claim(key, regName string, class codegen.RegClass) {
	a.live[key] = binding{reg: regName, class: class}
	a.regOwner[regName] = key
	if a.isCalleeSave(regName) && !a.calleeSaveUsed[regName] {
		a.calleeSaveUsed[regName] = true
		a.calleeSaveOrder = append(a.calleeSaveOrder, regName)
	}
}

func (a *Allocator) isCalleeSave(regName string) bool {
	for _, r := range a.pool.CalleeSaveInt {
		if r == regName {
			return true
		}
	}
	return false
}

func (a *Allocator) markWrite(key, regName string, access codegen.Access) {
	if access&codegen.Write != 0 {
		a.dirty[regName] = true
	}
}

// release frees regName back to its pool without spilling, used when a
// key's binding moves to a new, specific register.
func (a *Allocator) release(regName string) {
	key, ok := a.regOwner[regName]
	if !ok {
		return
	}
	class := a.live[key].class
	delete(a.regOwner, regName)
	delete(a.dirty, regName)
	delete(a.live, key)
	a.returnFree(regName, class)
}

// evict picks an occupied register of class to displace when the free
// pool is empty, spilling its value if dirty.
func (a *Allocator) evict(class codegen.RegClass) string {
	var order []string
	if class == codegen.ClassFloat {
		order = a.pool.Float
	} else {
		order = append(append([]string{}, a.pool.CallerSaveInt...), a.pool.CalleeSaveInt...)
	}
	for _, regName := range order {
		if _, occupied := a.regOwner[regName]; occupied {
			a.displace(regName)
			return regName
		}
	}
	if len(order) > 0 {
		return order[0]
	}
	return ""
}

// displace spills regName's current occupant (if dirty) and clears its
// bookkeeping, returning the register to service.
func (a *Allocator) displace(regName string) {
	key, occupied := a.regOwner[regName]
	if !occupied {
		return
	}
	if a.dirty[regName] {
		class := a.live[key].class
		off := a.offsetFor(key, a.localTypes[key])
		a.spills = append(a.spills, storeInstr(regName, class, off, a.localTypes[key]))
	}
	delete(a.regOwner, regName)
	delete(a.dirty, regName)
	delete(a.live, key)
}

// offsetFor assigns (or returns) key's stack-slot offset, sized and
// aligned to t's width (spec.md §4.7 "local_offset is assigned on first
// spill per Name ... aligned to operand alignment").
func (a *Allocator) offsetFor(key string, t *types.Type) int {
	if off, ok := a.localOffsets[key]; ok {
		return off
	}
	width := 8
	if t != nil {
		width = t.Width()
	}
	align := width
	if align > 8 {
		align = 8
	}
	if align > 0 {
		if rem := a.nextOffset % align; rem != 0 {
			a.nextOffset += align - rem
		}
	}
	a.nextOffset += width
	a.localOffsets[key] = a.nextOffset
	return a.nextOffset
}

func regOp(class codegen.RegClass, name string) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TPhysReg, Access: codegen.ReadWrite, Reg: codegen.Reg{Class: class, Name: name}}
}

func immOp(v int64) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TImmediate, Access: codegen.Read, Imm: ir.Operand{Kind: ir.OperImmediate, ImmInt: v}}
}

func memRBP(t *types.Type, offset int, access codegen.Access) codegen.TOperand {
	return codegen.TOperand{Kind: codegen.TMemory, Type: t, Access: access, Base: codegen.Reg{Class: codegen.ClassInt, Name: "rbp"}, Offset: -int64(offset)}
}

func spillMnemonic(class codegen.RegClass, t *types.Type) string {
	if class != codegen.ClassFloat {
		return "mov"
	}
	if t != nil && t.Kind == types.F32 {
		return "movss"
	}
	return "movsd"
}

func storeInstr(regName string, class codegen.RegClass, offset int, t *types.Type) codegen.TInstruction {
	return codegen.TInstruction{
		Mnemonic: spillMnemonic(class, t),
		Operands: []codegen.TOperand{memRBP(t, offset, codegen.Write), regOp(class, regName)},
		Comment:  "spill",
	}
}

func loadInstr(regName string, class codegen.RegClass, offset int, t *types.Type) codegen.TInstruction {
	return codegen.TInstruction{
		Mnemonic: spillMnemonic(class, t),
		Operands: []codegen.TOperand{regOp(class, regName), memRBP(t, offset, codegen.Read)},
		Comment:  "reload",
	}
}

// buildFrame fills in the routine's prologue, epilogue and callee-save
// push/pop lists (spec.md §4.7).
func (a *Allocator) buildFrame(r *codegen.Routine) {
	localsSize := a.nextOffset
	if a.windows && a.usesCall {
		localsSize += codegen.ShadowSpaceBytes
		r.UsesShadowSpace = true
	}

	// CalleeSaveSpill's pushes print before this prologue's own push rbp
	// (asmprint.Routine), so an odd count of dirtied callee-save registers
	// shifts rsp's residue mod 16 by 8 bytes; localsSize must round to the
	// matching residue rather than always to a multiple of 16, or rsp at
	// a call inside the body would violate the mod-16 invariant.
	target := 0
	if len(a.calleeSaveOrder)%2 != 0 {
		target = 8
	}
	if rem := localsSize % 16; rem != target {
		localsSize += (target - rem + 16) % 16
	}
	r.LocalsSize = localsSize

	r.Prologue = []codegen.TInstruction{
		{Mnemonic: "push", Operands: []codegen.TOperand{regOp(codegen.ClassInt, "rbp")}},
		{Mnemonic: "mov", Operands: []codegen.TOperand{regOp(codegen.ClassInt, "rbp"), regOp(codegen.ClassInt, "rsp")}},
		{Mnemonic: "sub", Operands: []codegen.TOperand{regOp(codegen.ClassInt, "rsp"), immOp(int64(localsSize))}},
	}

	for _, reg := range a.calleeSaveOrder {
		r.CalleeSaveSpill = append(r.CalleeSaveSpill, codegen.TInstruction{Mnemonic: "push", Operands: []codegen.TOperand{regOp(codegen.ClassInt, reg)}})
	}
	for i := len(a.calleeSaveOrder) - 1; i >= 0; i-- {
		reg := a.calleeSaveOrder[i]
		r.CalleeSaveUnspill = append(r.CalleeSaveUnspill, codegen.TInstruction{Mnemonic: "pop", Operands: []codegen.TOperand{regOp(codegen.ClassInt, reg)}})
	}

	r.Epilogue = []codegen.TInstruction{
		{Mnemonic: "mov", Operands: []codegen.TOperand{regOp(codegen.ClassInt, "rsp"), regOp(codegen.ClassInt, "rbp")}},
		{Mnemonic: "pop", Operands: []codegen.TOperand{regOp(codegen.ClassInt, "rbp")}},
		{Mnemonic: "ret"},
	}
}

// spliceReturns inlines the callee-save unspill plus epilogue sequence
// before every `ret` in the body (spec.md §4.7 "epilogue inserted before
// each ret"), so every early-return path restores the frame correctly.
func (a *Allocator) spliceReturns(r *codegen.Routine) {
	var out []codegen.TInstruction
	for _, instr := range r.Body {
		if instr.Mnemonic == "ret" {
			out = append(out, r.CalleeSaveUnspill...)
			out = append(out, r.Epilogue...)
			continue
		}
		out = append(out, instr)
	}
	r.Body = out
}

func itoa(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var rev []byte
	for n > 0 {
		rev = append(rev, digits[n%10])
		n /= 10
	}
	if neg {
		rev = append(rev, '-')
	}
	buf := make([]byte, len(rev))
	for i, c := range rev {
		buf[len(rev)-1-i] = c
	}
	return string(buf)
}
