package ll1

import (
	"github.com/dekarrin/parsesmith/internal/gerrors"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/trace"
	"github.com/dekarrin/parsesmith/internal/util"
)

// Recognizer is a pushdown automaton driven by a built Table.
type Recognizer struct {
	table Table
	g     *grammar.Grammar
}

// NewRecognizer binds a built table to the grammar it was built from. The
// grammar must already be LL(1); Recognizer does not check this itself (use
// internal/conflict to check the table before building a Recognizer from
// it).
func NewRecognizer(table Table, g *grammar.Grammar) Recognizer {
	return Recognizer{table: table, g: g}
}

// Parse simulates the PDA against tokens, emitting one trace row per loop
// iteration to sink. Callers must not include the "$" sentinel in tokens;
// Parse appends it internally.
//
// Initial stack (bottom to top): $, S. Loop: let X be the top of stack, a
// the current input symbol.
//
//	X = a = $                    -> accept
//	X = a (terminal match)        -> pop, advance input
//	X terminal, X != a             -> fail UNEXPECTED_TERMINAL
//	X nonterminal                  -> consult M[X][a]; empty/multi -> fail;
//	                                   else pop X, push RHS right-to-left
func (rec Recognizer) Parse(tokens []string, sink trace.Sink) error {
	input := append(append([]string{}, tokens...), grammar.EndOfInput)
	pos := 0

	stack := util.Stack[string]{Of: []string{grammar.EndOfInput, rec.g.StartSymbol()}}

	for {
		X := stack.Peek()
		a := input[pos]

		if X == grammar.EndOfInput && a == grammar.EndOfInput {
			trace.Writef(sink, "stack=%v input=%v action=accept", stack.Of, input[pos:])
			return nil
		}

		if rec.g.IsTerminal(X) {
			if X == a {
				trace.Writef(sink, "stack=%v input=%v action=match %s", stack.Of, input[pos:], X)
				stack.Pop()
				pos++
				continue
			}
			trace.Writef(sink, "stack=%v input=%v action=FAIL unexpected terminal", stack.Of, input[pos:])
			return gerrors.Newf(gerrors.LLUnexpectedTerminal,
				"the grammar does not allow a "+a+" here; expected "+X,
				"unexpected terminal %q while expecting %q", a, X)
		}

		// X is a nonterminal: consult M[X][a].
		alts := rec.table.Get(X, a)
		switch len(alts) {
		case 0:
			trace.Writef(sink, "stack=%v input=%v action=FAIL no rule for (%s,%s)", stack.Of, input[pos:], X, a)
			return gerrors.Newf(gerrors.LLNoRule,
				"there is no way to continue parsing "+X+" when the next token is "+a,
				"no LL(1) rule for (%s, %s)", X, a)
		case 1:
			alpha := alts[0]
			trace.Writef(sink, "stack=%v input=%v action=expand %s -> %s", stack.Of, input[pos:], X, alpha.String())
			stack.Pop()
			if !alpha.IsEpsilon() {
				for i := len(alpha) - 1; i >= 0; i-- {
					stack.Push(alpha[i])
				}
			}
		default:
			trace.Writef(sink, "stack=%v input=%v action=FAIL ambiguous cell (%s,%s)", stack.Of, input[pos:], X, a)
			return gerrors.Newf(gerrors.LLAmbiguousRule,
				"the grammar is ambiguous about what "+X+" should expand to here; not picking a branch",
				"ambiguous LL(1) cell (%s, %s) has %d alternatives", X, a, len(alts))
		}
	}
}
