// Package ll1 implements LL(1) predictive table construction and the
// stack-driven recognizer that simulates it.
package ll1

import (
	"fmt"
	"strings"

	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/util"
)

// Table is M: N x (T ∪ {$}) -> ordered list of alternatives. A cell with
// more than one entry is a conflict; Build retains every colliding
// alternative rather than the first one, so the conflict detector has
// something to classify.
type Table util.Matrix2[string, string, []grammar.Production]

// Get returns the (possibly empty, possibly multi-entry) cell for
// (nonterminal, terminal).
func (t Table) Get(nonterminal, terminal string) []grammar.Production {
	v, _ := util.Matrix2[string, string, []grammar.Production](t).Get(nonterminal, terminal)
	return v
}

// append adds alt to the cell for (nonterminal, terminal), unless an equal
// production is already present there — a terminal in both FIRST(α)\{ε} and
// FOLLOW(A) for a nullable α must not record the same alternative twice and
// manufacture a phantom conflict.
func (t Table) append(nonterminal, terminal string, alt grammar.Production) {
	m := util.Matrix2[string, string, []grammar.Production](t)
	existing, _ := m.Get(nonterminal, terminal)
	for _, e := range existing {
		if e.Equal(alt) {
			return
		}
	}
	m.Set(nonterminal, terminal, append(existing, alt))
}

// NonTerminals returns the nonterminals that have at least one populated
// cell, sorted.
func (t Table) NonTerminals() []string {
	m := util.Matrix2[string, string, []grammar.Production](t)
	return util.OrderedKeys[map[string][]grammar.Production](m)
}

// Terminals returns every terminal (or "$") that appears as a column key
// anywhere in the table, sorted.
func (t Table) Terminals() []string {
	seen := map[string]bool{}
	m := util.Matrix2[string, string, []grammar.Production](t)
	for _, row := range m {
		for term := range row {
			seen[term] = true
		}
	}
	return util.OrderedKeys[bool](seen)
}

// Cell returns the serialized form of a table cell: colliding alternatives
// joined by "|", symbols within an alternative joined by single spaces, ε
// spelled literally.
func (t Table) Cell(nonterminal, terminal string) string {
	alts := t.Get(nonterminal, terminal)
	if len(alts) == 0 {
		return ""
	}
	parts := make([]string, len(alts))
	for i, a := range alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}

// Build constructs the LL(1) predictive table for g from a precomputed
// firstfollow.Result:
//
//	For each production A -> α:
//	  let F = FIRST(α) (sequence form).
//	  for each a in F \ {ε}, append α to M[A][a].
//	  if ε in F, then for each b in FOLLOW(A), append α to M[A][b].
//
// Build never rejects a grammar for having conflicts: cells with more than
// one alternative are preserved as-is. internal/conflict is what decides
// whether a built table is usable.
func Build(g *grammar.Grammar, ff firstfollow.Result) Table {
	M := Table(util.NewMatrix2[string, string, []grammar.Production]())

	for _, A := range g.NonTerminals() {
		rule, _ := g.Rule(A)
		for _, alpha := range rule.Productions {
			F := ff.FirstOfSequence(alpha)

			for a := range F {
				if a != grammar.Epsilon {
					M.append(A, a, alpha)
				}
			}

			if F.Has(grammar.Epsilon) {
				for b := range ff.FollowOf(A) {
					M.append(A, b, alpha)
				}
			}
		}
	}

	return M
}

// String renders M with one row per nonterminal and one column per
// terminal-or-$ (see internal/diag for the rosed-backed pretty-printer used
// by the CLI and REPL; this String is a plain fallback used by tests and %v
// formatting).
func (t Table) String() string {
	var sb strings.Builder
	nts := t.NonTerminals()
	terms := t.Terminals()

	fmt.Fprintf(&sb, "%-8s", "")
	for _, term := range terms {
		fmt.Fprintf(&sb, "%-14s", term)
	}
	sb.WriteByte('\n')

	for _, nt := range nts {
		fmt.Fprintf(&sb, "%-8s", nt)
		for _, term := range terms {
			fmt.Fprintf(&sb, "%-14s", t.Cell(nt, term))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
