package lr0

import (
	"github.com/dekarrin/parsesmith/internal/gerrors"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/trace"
	"github.com/dekarrin/parsesmith/internal/util"
)

// Recognizer drives the dual-stack shift-reduce simulation against a built
// Table.
type Recognizer struct {
	table *Table
}

// NewRecognizer binds a built SLR table to a recognizer.
func NewRecognizer(table *Table) Recognizer {
	return Recognizer{table: table}
}

// Parse simulates the automaton: an integer state stack (initially [0]) and
// a parallel symbol stack (initially empty). Input has "$" appended
// internally; callers must not include it in tokens.
//
//	shift(j):       push symbol a, push state j, advance input.
//	reduce(A, γ):   pop |γ| entries from both stacks (0 if γ is empty); let t
//	                be the new state-stack top; push symbol A, push state
//	                GOTO[t][A].
//	accept:         done.
//	empty/multi/missing GOTO -> fail.
func (rec Recognizer) Parse(tokens []string, sink trace.Sink) error {
	input := append(append([]string{}, tokens...), grammar.EndOfInput)
	pos := 0

	states := util.Stack[int]{Of: []int{0}}
	symbols := util.Stack[string]{Of: nil}

	for {
		s := states.Peek()
		a := input[pos]

		actions := rec.table.ActionsAt(s, a)
		switch len(actions) {
		case 0:
			trace.Writef(sink, "states=%v symbols=%v input=%v action=FAIL no action", states.Of, symbols.Of, input[pos:])
			return gerrors.Newf(gerrors.LRNoAction,
				"parsing cannot continue: nothing can follow this input here",
				"no ACTION entry for (state %d, %q)", s, a)
		case 1:
			act := actions[0]
			switch act.Kind {
			case Shift:
				trace.Writef(sink, "states=%v symbols=%v input=%v action=shift %d", states.Of, symbols.Of, input[pos:], act.ShiftState)
				symbols.Push(a)
				states.Push(act.ShiftState)
				pos++

			case Reduce:
				n := len(act.ReduceRHS)
				if act.ReduceRHS.IsEpsilon() {
					n = 0
				}
				trace.Writef(sink, "states=%v symbols=%v input=%v action=reduce %s -> %s", states.Of, symbols.Of, input[pos:], act.ReduceLHS, act.ReduceRHS.String())
				for i := 0; i < n; i++ {
					states.Pop()
					symbols.Pop()
				}
				t := states.Peek()
				j, ok := rec.table.GotoAt(t, act.ReduceLHS)
				if !ok {
					return gerrors.Newf(gerrors.LRMissingGoto,
						"the parser reduced to "+act.ReduceLHS+" but doesn't know how to continue from here",
						"no GOTO entry for (state %d, %q)", t, act.ReduceLHS)
				}
				symbols.Push(act.ReduceLHS)
				states.Push(j)

			case Accept:
				trace.Writef(sink, "states=%v symbols=%v input=%v action=accept", states.Of, symbols.Of, input[pos:])
				return nil
			}
		default:
			trace.Writef(sink, "states=%v symbols=%v input=%v action=FAIL ambiguous action", states.Of, symbols.Of, input[pos:])
			return gerrors.Newf(gerrors.LRAmbiguousAction,
				"the grammar is ambiguous about how to continue here; not picking a branch",
				"ambiguous ACTION entry for (state %d, %q) has %d actions", s, a, len(actions))
		}
	}
}
