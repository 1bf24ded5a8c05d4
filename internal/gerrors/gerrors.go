// Package gerrors is the toolkit's error taxonomy: one Kind per failure
// class, each carrying both a short technical Error() string and a longer
// human-readable message with a resolution hint, with Unwrap support. The
// technical message is for logs and Go error chains; the diagnostic is for
// people.
package gerrors

import (
	"errors"
	"fmt"
)

// Kind identifies which failure class an error belongs to.
type Kind string

const (
	GrammarFileMissing   Kind = "GRAMMAR_FILE_MISSING"
	GrammarMalformedLine Kind = "GRAMMAR_MALFORMED_LINE"
	UndefinedSymbolInRHS Kind = "UNDEFINED_SYMBOL_IN_RHS"
	LLNoRule             Kind = "LL_NO_RULE"
	LLUnexpectedTerminal Kind = "LL_UNEXPECTED_TERMINAL"
	LLAmbiguousRule      Kind = "LL_AMBIGUOUS_RULE"
	LRNoAction           Kind = "LR_NO_ACTION"
	LRAmbiguousAction    Kind = "LR_AMBIGUOUS_ACTION"
	LRMissingGoto        Kind = "LR_MISSING_GOTO"
)

// GrammarError carries both a technical message (returned by Error) and a
// longer human-readable diagnostic with a resolution hint (returned by
// Diagnostic).
type GrammarError struct {
	kind       Kind
	msg        string
	diagnostic string
	wrap       error
}

// Error returns the short technical message.
func (e *GrammarError) Error() string {
	return e.msg
}

// Kind returns which row of the taxonomy this error belongs to.
func (e *GrammarError) Kind() Kind {
	return e.kind
}

// Diagnostic returns the longer human-readable message, including a
// resolution hint where one applies. Falls back to Error() if none was set.
func (e *GrammarError) Diagnostic() string {
	if e.diagnostic == "" {
		return e.msg
	}
	return e.diagnostic
}

// Unwrap returns the wrapped error, if any.
func (e *GrammarError) Unwrap() error {
	return e.wrap
}

// New constructs a GrammarError of the given kind with a technical message
// and a human diagnostic (which may include a resolution hint).
func New(kind Kind, msg, diagnostic string) *GrammarError {
	return &GrammarError{kind: kind, msg: msg, diagnostic: diagnostic}
}

// Newf is New with fmt.Sprintf-style formatting applied to msg, and
// diagnostic used verbatim (it usually doesn't need per-call interpolation
// beyond what the caller already baked in).
func Newf(kind Kind, diagnostic string, format string, args ...any) *GrammarError {
	return &GrammarError{kind: kind, msg: fmt.Sprintf(format, args...), diagnostic: diagnostic}
}

// Wrap constructs a GrammarError that wraps an underlying error.
func Wrap(kind Kind, wrapped error, msg, diagnostic string) *GrammarError {
	return &GrammarError{kind: kind, msg: msg, diagnostic: diagnostic, wrap: wrapped}
}

// Diagnostic returns the human-readable diagnostic for any error: if err is
// (or wraps) a *GrammarError, its Diagnostic(); otherwise err.Error().
func Diagnostic(err error) string {
	var ge *GrammarError
	if errors.As(err, &ge) {
		return ge.Diagnostic()
	}
	return err.Error()
}
