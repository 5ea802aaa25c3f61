// Package asmprint serialises a lowered, register-allocated codegen.Routine
// stream to the textual assembly format of spec.md §4.8. Grounded on
// original_source/src/amd64_codegen.cpp's instruction-printing tail
// (format strings keyed by operand kind), re-expressed in the teacher's
// direct strings.Builder-plus-fmt.Fprintf style (ssa/builder.go's
// Format() debug string is the closest teacher analogue).
package asmprint

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/hplc/internal/codegen"
	"github.com/gmofishsauce/hplc/internal/ir"
	"github.com/gmofishsauce/hplc/internal/types"
)

// Module prints every routine in routines, in the order given. It does
// no filtering of its own: internal/compiler decides whether the
// synthetic @toplevel routine is included (only when it has
// instructions).
func Module(routines []*codegen.Routine) string {
	var b strings.Builder
	for _, r := range routines {
		Routine(&b, r)
	}
	return b.String()
}

// Routine appends one routine's framed listing to b (spec.md §4.8
// "Routines are printed as: <name>:, ; prologue, ..., ; routine body,
// ..., ; epilogue, ..., blank").
func Routine(b *strings.Builder, r *codegen.Routine) {
	fmt.Fprintf(b, "%s:\n", r.Name)

	b.WriteString("; prologue\n")
	for _, reg := range r.CalleeSaveSpill {
		writeInstr(b, reg)
	}
	for _, instr := range r.Prologue {
		writeInstr(b, instr)
	}

	b.WriteString("; routine body\n")
	for _, instr := range r.Body {
		writeInstr(b, instr)
	}

	b.WriteString("; epilogue\n")
	for _, instr := range r.Epilogue {
		writeInstr(b, instr)
	}

	b.WriteString("\n")
}

// writeInstr prints one instruction: tab, opcode, tab, comma-separated
// operands, optional `;` comment. A bare label-placement pseudo-
// instruction (a Label with no mnemonic) is printed as "name:" on its
// own line by the first check below.
func writeInstr(b *strings.Builder, instr codegen.TInstruction) {
	if instr.Label != "" && instr.Mnemonic == "" {
		fmt.Fprintf(b, "%s:\n", instr.Label)
		return
	}
	if instr.Mnemonic == "" {
		return
	}
	b.WriteString("\t")
	b.WriteString(instr.Mnemonic)
	if len(instr.Operands) > 0 {
		b.WriteString("\t")
		parts := make([]string, len(instr.Operands))
		for i, op := range instr.Operands {
			parts[i] = operandText(op)
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	if instr.Comment != "" {
		b.WriteString("\t; ")
		b.WriteString(instr.Comment)
	}
	b.WriteString("\n")
}

func operandText(op codegen.TOperand) string {
	switch op.Kind {
	case codegen.TPhysReg, codegen.TFixedReg:
		return op.Reg.Name
	case codegen.TImmediate:
		return immediateText(op.Imm)
	case codegen.TLabel:
		if op.Label == nil {
			return "?"
		}
		return fmt.Sprintf("L%d", op.Label.Target)
	case codegen.TMemory:
		return memoryText(op)
	case codegen.TMemoryIR, codegen.TIrOperand:
		return "<unallocated>"
	default:
		return ""
	}
}

func memoryText(op codegen.TOperand) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(op.Base.Name)
	if op.Index.Name != "" {
		fmt.Fprintf(&b, "+%s", op.Index.Name)
		if op.Scale > 1 {
			fmt.Fprintf(&b, "*%d", op.Scale)
		}
	}
	if op.Offset != 0 {
		if op.Offset > 0 {
			fmt.Fprintf(&b, "+%d", op.Offset)
		} else {
			fmt.Fprintf(&b, "-%d", -op.Offset)
		}
	}
	b.WriteString("]")
	return b.String()
}

// immediateText formats a typed immediate per spec.md §4.8: integers
// decimal, f/d suffix on floats, strings backslash-escaped and truncated
// to 20 chars with "...", pointers as hex or (null), bools as
// (true)/(false).
func immediateText(imm ir.Operand) string {
	t := imm.Type
	switch {
	case imm.ImmIsNull:
		return "(null)"
	case t != nil && t.Kind == types.Null:
		return "(null)"
	case t != nil && t.Kind == types.Bool:
		if imm.ImmBool {
			return "(true)"
		}
		return "(false)"
	case t != nil && t.Kind == types.String:
		return quoteTruncate(imm.ImmString)
	case t != nil && t.Kind == types.F32:
		return fmt.Sprintf("%gf", imm.ImmFloat)
	case t != nil && t.Kind == types.F64:
		return fmt.Sprintf("%gd", imm.ImmFloat)
	case t != nil && t.Kind == types.Pointer:
		if imm.ImmInt == 0 {
			return "(null)"
		}
		return fmt.Sprintf("0x%x", uint64(imm.ImmInt))
	default:
		return fmt.Sprintf("%d", imm.ImmInt)
	}
}

// quoteTruncate backslash-escapes s and truncates to 20 characters with
// a trailing "..." marker (spec.md §4.8).
func quoteTruncate(s string) string {
	const maxLen = 20
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`).Replace(s)
	truncated := false
	if len(escaped) > maxLen {
		escaped = escaped[:maxLen]
		truncated = true
	}
	out := `"` + escaped + `"`
	if truncated {
		out += "..."
	}
	return out
}
