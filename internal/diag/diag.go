// Package diag implements the compiler's diagnostic bag and its two
// supplemented debugging aids, Profiler and MemStats (spec.md §6-§7,
// SPEC_FULL.md "Supplemented features"). Grounded on
// internal/engine/wazevo's pack sibling db47h-ngaro/asm/parser.go, whose
// ErrAsm type accumulates positioned errors with a single combined
// Error() string.
package diag

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/hplc/internal/token"
)

// Kind classifies a diagnostic by the phase-specific taxonomy of
// spec.md §7.
type Kind string

const (
	InvalidByte            Kind = "invalid-byte"
	UnterminatedString     Kind = "unterminated-string"
	UnterminatedChar       Kind = "unterminated-char"
	UnterminatedComment    Kind = "unterminated-block-comment"
	UnexpectedToken        Kind = "unexpected-token"
	UnexpectedEOF          Kind = "unexpected-eof"
	UndefinedReference     Kind = "undefined-reference"
	Redeclaration          Kind = "redeclaration"
	ShadowingParameter     Kind = "shadowing-parameter"
	NotTypename            Kind = "not-typename"
	NotCallable            Kind = "not-callable"
	NoOverload             Kind = "no-overload"
	AmbiguousOverload      Kind = "ambiguous-overload"
	ReturnTypeMismatch     Kind = "return-type-mismatch"
	ReturnTypeInferFailure Kind = "return-type-infer-failure"
	IncompatibleOperands   Kind = "incompatible-operands"
	InvalidSubscript       Kind = "invalid-subscript"
	InvalidCast            Kind = "invalid-cast"
	StrayBreak             Kind = "stray-break"
	StrayContinue          Kind = "stray-continue"
	CouldNotInfer          Kind = "could-not-infer"
)

// Diagnostic is a single positioned compiler message.
type Diagnostic struct {
	Kind Kind
	Loc  token.Location
	Msg  string
}

func (d Diagnostic) String() string {
	// "filename:line:col: message", the second colon padded to at least 7
	// characters as spec.md §6 requires.
	prefix := fmt.Sprintf("%s:", d.Loc)
	if len(prefix) < 7 {
		prefix += strings.Repeat(" ", 7-len(prefix))
	}
	return prefix + " " + d.Msg
}

// Bag accumulates diagnostics across every phase of a single compilation
// and knows how to stop accepting new ones once a configured maximum is
// reached.
type Bag struct {
	items        []Diagnostic
	maxErrors    int
	maxArrowEcho int
	arrowsShown  int
}

// NewBag returns a Bag configured with the compilation's error-count
// ceiling and source-context-echo ceiling (spec.md §6).
func NewBag(maxErrors, maxArrowEcho int) *Bag {
	if maxErrors <= 0 {
		maxErrors = 6
	}
	if maxArrowEcho <= 0 {
		maxArrowEcho = 4
	}
	return &Bag{maxErrors: maxErrors, maxArrowEcho: maxArrowEcho}
}

// Add appends a diagnostic unconditionally; phases call Full to decide
// whether to keep analyzing.
func (b *Bag) Add(kind Kind, loc token.Location, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// Count returns the number of diagnostics recorded so far.
func (b *Bag) Count() int { return len(b.items) }

// Full reports whether the configured maximum error count has been
// reached; callers should stop analysis at their next natural
// continuation point once this is true (spec.md §5 "Cancellation").
func (b *Bag) Full() bool { return len(b.items) >= b.maxErrors }

// ShouldEchoSource reports whether the next diagnostic is still within
// the max_line_arrow_error_count budget, and consumes one unit of that
// budget if so.
func (b *Bag) ShouldEchoSource() bool {
	if b.arrowsShown >= b.maxArrowEcho {
		return false
	}
	b.arrowsShown++
	return true
}

// Items returns the recorded diagnostics in emission order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Error implements the error interface, joining every diagnostic with a
// newline, mirroring db47h-ngaro/asm's ErrAsm.Error.
func (b *Bag) Error() string {
	lines := make([]string, len(b.items))
	for i, d := range b.items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// WriteSourceEcho writes the offending source line followed by a caret
// line pointing at loc.Col, the way spec.md §6 describes for the first
// max_line_arrow_error_count diagnostics.
func WriteSourceEcho(w *strings.Builder, loc token.Location) {
	if loc.File == nil {
		return
	}
	src := loc.File.Src
	// Find the bounds of the line containing loc.StartByte.
	start := loc.StartByte
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := loc.StartByte
	for end < len(src) && src[end] != '\n' && src[end] != 0 {
		end++
	}
	line := string(src[start:end])
	w.WriteString(line)
	w.WriteByte('\n')
	col := loc.Col
	if col < 1 {
		col = 1
	}
	w.WriteString(strings.Repeat(" ", col-1))
	w.WriteString("^\n")
}
