// Package grammar implements the data model of a context-free grammar:
// symbols, productions, and the Grammar container that classifies terminals from
// nonterminals and tracks the start symbol. It is deliberately inert — no
// FIRST/FOLLOW, no table construction lives here, only the shape of a
// context-free grammar and the invariants that make the later engines safe
// to run against it.
package grammar

import (
	"fmt"
	"strings"
)

// Epsilon is the empty-string marker. It is never a member of T or N.
const Epsilon = "ε"

// EndOfInput is the end-of-input sentinel. It is never a member of T or N
// and never appears inside a grammar file.
const EndOfInput = "$"

// Production is an ordered sequence of symbols forming one alternative of a
// nonterminal's rule. The canonical empty alternative is the singleton
// []string{Epsilon}.
type Production []string

// IsEpsilon reports whether p is the canonical empty alternative.
func (p Production) IsEpsilon() bool {
	return len(p) == 1 && p[0] == Epsilon
}

// Copy returns a deep copy of p.
func (p Production) Copy() Production {
	p2 := make(Production, len(p))
	copy(p2, p)
	return p2
}

// Equal reports whether p and other contain the same symbols in the same
// order.
func (p Production) Equal(other Production) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders p the way the external wire format expects: symbols
// separated by single spaces, with the empty alternative spelled literally
// as "ε".
func (p Production) String() string {
	if p.IsEpsilon() {
		return Epsilon
	}
	return strings.Join(p, " ")
}

// Rule is the set of alternatives for one left-hand-side nonterminal.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Copy returns a deep copy of r.
func (r Rule) Copy() Rule {
	r2 := Rule{NonTerminal: r.NonTerminal, Productions: make([]Production, len(r.Productions))}
	for i, p := range r.Productions {
		r2.Productions[i] = p.Copy()
	}
	return r2
}

// Grammar is an ordered mapping from nonterminal to its Rule, plus the
// derived terminal set and the distinguished start symbol. The zero value is
// not usable; construct with New.
type Grammar struct {
	start string
	order []string // insertion order of LHS nonterminals
	rules map[string]Rule
}

// New returns an empty Grammar ready to have rules added to it via AddRule.
func New() *Grammar {
	return &Grammar{rules: map[string]Rule{}}
}

// AddRule appends production as an alternative for nonterminal, registering
// nonterminal as a new LHS (and, if this is the first rule added, as the
// start symbol) if it has not been seen before.
func (g *Grammar) AddRule(nonterminal string, production []string) {
	prod := Production(production)
	if len(prod) == 0 {
		prod = Production{Epsilon}
	}

	r, ok := g.rules[nonterminal]
	if !ok {
		r = Rule{NonTerminal: nonterminal}
		g.order = append(g.order, nonterminal)
		if g.start == "" {
			g.start = nonterminal
		}
	}
	r.Productions = append(r.Productions, prod)
	g.rules[nonterminal] = r
}

// StartSymbol returns S, the LHS of the first production added to g.
func (g *Grammar) StartSymbol() string {
	return g.start
}

// Rule returns the Rule for nonterminal and whether it exists.
func (g *Grammar) Rule(nonterminal string) (Rule, bool) {
	r, ok := g.rules[nonterminal]
	return r, ok
}

// NonTerminals returns N in insertion order (order of first appearance as an
// LHS).
func (g *Grammar) NonTerminals() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// IsNonTerminal reports whether sym is in N.
func (g *Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return ok
}

// IsTerminal reports whether sym is in T: every RHS symbol that is not a
// declared LHS and is not Epsilon is a terminal. T is derived, never
// declared.
func (g *Grammar) IsTerminal(sym string) bool {
	if sym == Epsilon || sym == EndOfInput {
		return false
	}
	return !g.IsNonTerminal(sym)
}

// Terminals returns T, derived from every RHS symbol across every production
// that is not an LHS and not Epsilon. Order is first-appearance order over
// nonterminals-then-productions-then-symbols, which is deterministic given a
// fixed grammar.
func (g *Grammar) Terminals() []string {
	seen := map[string]bool{}
	var out []string
	for _, nt := range g.order {
		for _, prod := range g.rules[nt].Productions {
			for _, sym := range prod {
				if sym == Epsilon {
					continue
				}
				if g.IsNonTerminal(sym) {
					continue
				}
				if !seen[sym] {
					seen[sym] = true
					out = append(out, sym)
				}
			}
		}
	}
	return out
}

// Copy returns a deep copy of g.
func (g *Grammar) Copy() *Grammar {
	g2 := &Grammar{
		start: g.start,
		order: make([]string, len(g.order)),
		rules: make(map[string]Rule, len(g.rules)),
	}
	copy(g2.order, g.order)
	for k, r := range g.rules {
		g2.rules[k] = r.Copy()
	}
	return g2
}

// Augmented returns a new Grammar G' = G ∪ {S' -> S} with a fresh start
// symbol S' guaranteed not to collide with any existing nonterminal: it
// mints S', S'', ... until a name disjoint from N is found, rather than
// assuming S+"'" is unused.
func (g *Grammar) Augmented() *Grammar {
	g2 := g.Copy()

	fresh := g.start + "'"
	for g.IsNonTerminal(fresh) {
		fresh += "'"
	}

	g2.order = append([]string{fresh}, g2.order...)
	g2.rules[fresh] = Rule{NonTerminal: fresh, Productions: []Production{{g.start}}}
	g2.start = fresh

	return g2
}

// String renders the grammar as one "LHS -> alt1 | alt2" line per
// nonterminal, in insertion order.
func (g *Grammar) String() string {
	var sb strings.Builder
	for _, nt := range g.order {
		r := g.rules[nt]
		alts := make([]string, len(r.Productions))
		for i, p := range r.Productions {
			alts[i] = p.String()
		}
		fmt.Fprintf(&sb, "%s -> %s\n", nt, strings.Join(alts, " | "))
	}
	return sb.String()
}

// Validate checks the structural invariants of a usable grammar: S is in N,
// at least one production has LHS S, and the rule list is non-empty.
func (g *Grammar) Validate() error {
	if len(g.order) == 0 {
		return fmt.Errorf("grammar has no productions")
	}
	if g.start == "" || !g.IsNonTerminal(g.start) {
		return fmt.Errorf("start symbol %q is not a declared nonterminal", g.start)
	}
	for _, nt := range g.order {
		r := g.rules[nt]
		if len(r.Productions) == 0 {
			return fmt.Errorf("nonterminal %q has no alternatives", nt)
		}
	}
	return nil
}
