package lr0

import (
	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/util"
)

// Table is the populated ACTION/GOTO pair for an SLR(1) automaton, plus the
// canonical collection it was built from (kept around since the recognizer
// needs state-to-item-set lookups for nothing beyond debugging, but the
// collection is cheap to keep and useful for diag's table printer).
type Table struct {
	Collection *Collection
	GPrime     *grammar.Grammar

	// Action[state][terminal] holds every action that applies; more than one
	// entry is a conflict, preserved for internal/conflict to classify.
	Action util.Matrix2[int, string, []Action]

	// Goto[state][nonterminal] = next state. Partial: absence means no
	// transition is defined.
	Goto map[int]map[string]int
}

// appendAction appends a to ACTION[state][sym], unless an equal action is
// already present there — two complete items for the same rule at the same
// state (which can happen with a nonterminal that has repeated symbols)
// must not manufacture a phantom conflict.
func (t *Table) appendAction(state int, sym string, a Action) {
	existing, _ := t.Action.Get(state, sym)
	for _, e := range existing {
		if e.Equal(a) {
			return
		}
	}
	t.Action.Set(state, sym, append(existing, a))
}

// ActionsAt returns the (possibly empty, possibly multi-entry) ACTION cell
// for (state, symbol).
func (t *Table) ActionsAt(state int, symbol string) []Action {
	v, _ := t.Action.Get(state, symbol)
	return v
}

// GotoAt returns the GOTO entry for (state, nonterminal) and whether it is
// defined.
func (t *Table) GotoAt(state int, nonterminal string) (int, bool) {
	row, ok := t.Goto[state]
	if !ok {
		return 0, false
	}
	j, ok := row[nonterminal]
	return j, ok
}

// BuildSLRTable constructs the canonical collection for g and populates the
// ACTION/GOTO tables. ff must be the FIRST/FOLLOW/NULLABLE result computed
// against the *original* (unaugmented) grammar g — FOLLOW is never
// consulted for the synthetic start symbol S', only for g's own
// nonterminals.
func BuildSLRTable(g *grammar.Grammar, ff firstfollow.Result) *Table {
	gPrime := g.Augmented()
	coll := BuildCanonicalCollection(gPrime)

	table := &Table{
		Collection: coll,
		GPrime:     gPrime,
		Action:     util.NewMatrix2[int, string, []Action](),
		Goto:       map[int]map[string]int{},
	}

	for state, trans := range coll.Transitions {
		for sym, next := range trans {
			if gPrime.IsTerminal(sym) {
				// For each state i, for each terminal X such that
				// GOTO(i, X) = j: append shift(j) to ACTION[i][X].
				table.appendAction(state, sym, Action{Kind: Shift, ShiftState: next})
			} else {
				if table.Goto[state] == nil {
					table.Goto[state] = map[string]int{}
				}
				table.Goto[state][sym] = next
			}
		}
	}

	var acceptStates []int
	for state, items := range coll.States {
		for _, it := range items.Elements() {
			if !it.IsComplete() {
				continue
			}

			if it.NonTerminal == gPrime.StartSymbol() {
				acceptStates = append(acceptStates, state)
				continue
			}

			// For each complete item (A -> γ ·) with A != S': for every
			// t in FOLLOW(A) (SLR reduce placement), append reduce(A, γ)
			// to ACTION[i][t].
			for t := range ff.FollowOf(it.NonTerminal) {
				table.appendAction(state, t, Action{
					Kind:      Reduce,
					ReduceLHS: it.NonTerminal,
					ReduceRHS: it.Rule(),
				})
			}
		}
	}

	// For each state i containing the complete item (S' -> S ·): set
	// ACTION[i][$] = accept. This is an assignment made after reduce
	// placement, so accept is never combined with other actions.
	for _, state := range acceptStates {
		table.Action.Set(state, grammar.EndOfInput, []Action{{Kind: Accept}})
	}

	return table
}
