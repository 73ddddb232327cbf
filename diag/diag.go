// Package diag defines the source-located diagnostic model shared by every
// compiler phase. There is no global logger: rendering a diagnostic
// requires only the original source bytes and the Diagnostic value itself.
package diag

import (
	"fmt"

	"github.com/oxy-lang/pngb/token"
)

// Kind names a diagnostic's phase and category. Kinds are not error types
// in the Go sense (no errors.Is tree); they are a flat taxonomy for
// reporting.
type Kind string

const (
	// Lex kinds.
	UnexpectedByte     Kind = "unexpected-byte"
	UnterminatedString Kind = "unterminated-string"
	BadNumber          Kind = "bad-number"

	// Parse kinds.
	UnexpectedToken Kind = "unexpected-token"
	TooDeep         Kind = "too-deep"

	// Analyze kinds.
	UnknownField        Kind = "unknown-field"
	TypeMismatch        Kind = "type-mismatch"
	UnresolvedReference Kind = "unresolved-reference"
	DuplicateDecl       Kind = "duplicate-declaration"
	ImportCycle         Kind = "import-cycle"
	PoolMismatch        Kind = "pool-mismatch"
	InvalidFrame        Kind = "invalid-frame"
	MissingField        Kind = "missing-field"

	// Emit kinds.
	TableOverflow Kind = "table-overflow"
	OperandTooBig Kind = "operand-too-large"

	// A non-fatal informational diagnostic (e.g. "no reflector, falling
	// back to user-declared uniform layout").
	Warning Kind = "warning"
)

// Diagnostic is a single source-located error or warning. Every compiler
// phase produces these; analysis accumulates many, the other phases stop
// at the first.
type Diagnostic struct {
	Kind    Kind
	Message string
	Range   token.Range
}

// New builds a Diagnostic with a formatted message.
func New(kind Kind, rng token.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Range: rng}
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped anywhere a plain error is expected (lex/parse stop-on-first-error
// paths return a single Diagnostic this way).
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d-%d: %s", d.Kind, d.Range.Start, d.Range.End, d.Message)
}

// IsWarning reports whether d is informational rather than fatal to the
// analysis pass that produced it.
func (d Diagnostic) IsWarning() bool {
	return d.Kind == Warning
}
