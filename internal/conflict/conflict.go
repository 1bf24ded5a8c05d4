// Package conflict is a pure inspection of a built LL(1) table and/or a
// built ACTION table that classifies every multi-entry cell into one of the
// five conflict kinds, in deterministic order. It never mutates either
// table.
package conflict

import (
	"fmt"
	"sort"

	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/lr0"
)

// Kind is one of the five conflict classifications.
type Kind string

const (
	LL1Multi     Kind = "LL1_MULTI"
	ShiftShift   Kind = "SHIFT_SHIFT"
	ShiftReduce  Kind = "SHIFT_REDUCE"
	ReduceReduce Kind = "REDUCE_REDUCE"
	MultiAction  Kind = "MULTI_ACTION"
)

// Location identifies where a conflict was found: either an LL(1) cell
// (NonTerminal, Terminal) or an LR cell (State, Symbol).
type Location struct {
	NonTerminal string
	Terminal    string

	State  int
	Symbol string
}

// Conflict is one multi-entry cell, classified, with every colliding entry
// preserved as a human-readable string.
type Conflict struct {
	Kind      Kind
	Location  Location
	Offenders []string
}

// DetectLL1 finds every LL1_MULTI conflict in table: a cell with more than
// one alternative. Results are sorted by (A, t) lexicographically.
func DetectLL1(table ll1.Table) []Conflict {
	var out []Conflict

	nts := table.NonTerminals()
	for _, A := range nts {
		terms := table.Terminals()
		for _, a := range terms {
			alts := table.Get(A, a)
			if len(alts) <= 1 {
				continue
			}
			offenders := make([]string, len(alts))
			for i, alt := range alts {
				offenders[i] = alt.String()
			}
			out = append(out, Conflict{
				Kind:      LL1Multi,
				Location:  Location{NonTerminal: A, Terminal: a},
				Offenders: offenders,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Location.NonTerminal != out[j].Location.NonTerminal {
			return out[i].Location.NonTerminal < out[j].Location.NonTerminal
		}
		return out[i].Location.Terminal < out[j].Location.Terminal
	})

	return out
}

// DetectLR finds every conflict in table's ACTION cells, classifying each by
// counting shift and reduce actions present:
//
//	>=1 shift and >=1 reduce -> SHIFT_REDUCE
//	>=2 shifts, 0 reduces    -> SHIFT_SHIFT (should never occur from a
//	                            correctly built LR(0) automaton)
//	>=2 reduces, 0 shifts    -> REDUCE_REDUCE
//	otherwise                -> MULTI_ACTION
//
// Results are sorted by (state, symbol).
func DetectLR(table *lr0.Table) []Conflict {
	var out []Conflict

	terms := append(append([]string{}, table.GPrime.Terminals()...), grammar.EndOfInput)
	sort.Strings(terms)

	for state := range table.Collection.States {
		for _, sym := range terms {
			actions := table.ActionsAt(state, sym)
			if len(actions) <= 1 {
				continue
			}

			var shifts, reduces int
			offenders := make([]string, len(actions))
			for i, a := range actions {
				offenders[i] = a.String()
				switch a.Kind {
				case lr0.Shift:
					shifts++
				case lr0.Reduce:
					reduces++
				}
			}

			kind := MultiAction
			switch {
			case shifts >= 1 && reduces >= 1:
				kind = ShiftReduce
			case shifts >= 2 && reduces == 0:
				kind = ShiftShift
			case reduces >= 2 && shifts == 0:
				kind = ReduceReduce
			}

			out = append(out, Conflict{
				Kind:      kind,
				Location:  Location{State: state, Symbol: sym},
				Offenders: offenders,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Location.State != out[j].Location.State {
			return out[i].Location.State < out[j].Location.State
		}
		return out[i].Location.Symbol < out[j].Location.Symbol
	})

	return out
}

// String renders a conflict as a single human-readable line, used by
// internal/diag as the base before resolution hints are appended.
func (c Conflict) String() string {
	var loc string
	if c.Location.NonTerminal != "" || c.Location.Terminal != "" {
		loc = fmt.Sprintf("(%s, %s)", c.Location.NonTerminal, c.Location.Terminal)
	} else {
		loc = fmt.Sprintf("(state %d, %s)", c.Location.State, c.Location.Symbol)
	}
	return fmt.Sprintf("%s at %s: %v", c.Kind, loc, c.Offenders)
}
