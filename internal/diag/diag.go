// Package diag renders human-readable output for the toolkit: pretty-printed
// LL(1)/ACTION/GOTO tables and conflict explanations. It is deliberately
// separate from internal/trace — a trace sink and a display channel have
// two different audiences.
package diag

import (
	"fmt"

	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/dekarrin/parsesmith/internal/gerrors"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/lr0"
	"github.com/dekarrin/rosed"
)

// LL1Table renders an LL(1) table as a fixed-width grid via rosed's
// InsertTableOpts, rather than a plain fmt.Stringer fallback.
func LL1Table(table ll1.Table) string {
	nts := table.NonTerminals()
	terms := table.Terminals()

	headers := []string{"NT", "|"}
	for _, term := range terms {
		headers = append(headers, term)
	}

	data := [][]string{headers}
	for _, nt := range nts {
		row := []string{nt, "|"}
		for _, term := range terms {
			row = append(row, table.Cell(nt, term))
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// ActionGotoTable renders an SLR(1) ACTION/GOTO table: one column per
// terminal under an "A:" group, then one per nonterminal under a "G:"
// group.
func ActionGotoTable(table *lr0.Table) string {
	terms := append(append([]string{}, table.GPrime.Terminals()...), "$")
	var nts []string
	for _, nt := range table.GPrime.NonTerminals() {
		if nt == table.GPrime.StartSymbol() {
			continue
		}
		nts = append(nts, nt)
	}

	headers := []string{"state", "|"}
	for _, t := range terms {
		headers = append(headers, "A:"+t)
	}
	headers = append(headers, "|")
	for _, nt := range nts {
		headers = append(headers, "G:"+nt)
	}

	data := [][]string{headers}
	for state := range table.Collection.States {
		row := []string{fmt.Sprintf("%d", state), "|"}
		for _, t := range terms {
			cell := ""
			actions := table.ActionsAt(state, t)
			if len(actions) > 0 {
				cell = actions[0].String()
				for _, a := range actions[1:] {
					cell += "/" + a.String()
				}
			}
			row = append(row, cell)
		}
		row = append(row, "|")
		for _, nt := range nts {
			cell := ""
			if j, ok := table.GotoAt(state, nt); ok {
				cell = fmt.Sprintf("%d", j)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// Explain renders a resolution hint for a classified conflict: what
// collided, what a forced choice would do, and what change to the grammar
// would remove the collision. It only explains; it never mutates a grammar
// or a table.
func Explain(c conflict.Conflict) string {
	switch c.Kind {
	case conflict.LL1Multi:
		return fmt.Sprintf(
			"M[%s][%s] has %d colliding alternatives: %v. This is usually left recursion or a "+
				"common prefix between alternatives; consider left-factoring %s or eliminating its "+
				"left recursion before building an LL(1) table.",
			c.Location.NonTerminal, c.Location.Terminal, len(c.Offenders), c.Offenders, c.Location.NonTerminal)
	case conflict.ShiftReduce:
		hint := ""
		if c.Location.Symbol == "e" || c.Location.Symbol == "else" {
			hint = " This looks like the classic dangling-else ambiguity;"
		}
		return fmt.Sprintf(
			"state %d has both a shift and a reduce action on %q: %v.%s The SLR(1) recognizer does not "+
				"pick one and rejects input that reaches this cell; the usual forced choice is to shift, "+
				"which binds %q to the nearest unmatched construct.",
			c.Location.State, c.Location.Symbol, c.Offenders, hint, c.Location.Symbol)
	case conflict.ShiftShift:
		return fmt.Sprintf(
			"state %d has more than one shift action on %q: %v. This should never happen from a "+
				"correctly constructed LR(0) automaton; it indicates a bug in canonical collection "+
				"construction rather than a property of the grammar.",
			c.Location.State, c.Location.Symbol, c.Offenders)
	case conflict.ReduceReduce:
		return fmt.Sprintf(
			"state %d has more than one applicable reduce action on %q: %v. SLR(1) cannot "+
				"distinguish which rule applies here; a more precise lookahead scheme (LALR(1), LR(1)) "+
				"or a grammar change is needed.",
			c.Location.State, c.Location.Symbol, c.Offenders)
	default:
		return fmt.Sprintf("state %d has an unresolved conflict on %q: %v.", c.Location.State, c.Location.Symbol, c.Offenders)
	}
}

// ExplainError renders a resolution-hint diagnostic for any error produced
// by the toolkit, falling back to the bare error text for non-GrammarError
// values.
func ExplainError(err error) string {
	return gerrors.Diagnostic(err)
}
