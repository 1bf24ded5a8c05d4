// Package firstfollow computes NULLABLE, FIRST, and FOLLOW for a grammar as
// a joint monotone fixed point. LL(1) table construction and SLR(1) reduce
// placement both consume its output and neither mutates it.
//
// The algorithm is an explicit saturating loop with a changed flag, not a
// recursive memo-free formula: every iteration strictly grows at least one
// set, all sets are bounded by T ∪ {ε, $}, so it terminates.
package firstfollow

import (
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/util"
)

// Result holds the three saturated maps, keyed by symbol (including the
// synthetic Epsilon key so sequence-FIRST computations can treat it
// uniformly with everything else).
type Result struct {
	First    map[string]util.Set[string]
	Follow   map[string]util.Set[string]
	Nullable map[string]bool
}

// IsNullable reports NULLABLE(X), defaulting to false for any symbol not in
// the map (which can only be a terminal, since every nonterminal and Epsilon
// are seeded explicitly).
func (r Result) IsNullable(sym string) bool {
	return r.Nullable[sym]
}

// FirstOf returns FIRST(X) for a single symbol.
func (r Result) FirstOf(sym string) util.Set[string] {
	if f, ok := r.First[sym]; ok {
		return f
	}
	return util.NewSet(sym)
}

// FollowOf returns FOLLOW(A) for a nonterminal. FOLLOW is never defined for
// terminals; anything not in the map gets an empty set.
func (r Result) FollowOf(nonterminal string) util.Set[string] {
	if f, ok := r.Follow[nonterminal]; ok {
		return f
	}
	return util.NewSet[string]()
}

// FirstOfSequence computes FIRST(X1...Xn): the union of FIRST(Xi)\{ε} for
// the longest nullable prefix, plus ε iff every Xi is nullable. The empty
// sequence's FIRST is {ε}.
func (r Result) FirstOfSequence(seq []string) util.Set[string] {
	out := util.NewSet[string]()
	if len(seq) == 0 {
		out.Add(grammar.Epsilon)
		return out
	}

	allNullable := true
	for _, sym := range seq {
		firstSym := r.FirstOf(sym)
		for a := range firstSym {
			if a != grammar.Epsilon {
				out.Add(a)
			}
		}
		if !r.IsNullable(sym) {
			allNullable = false
			break
		}
	}
	if allNullable {
		out.Add(grammar.Epsilon)
	}
	return out
}

// Compute returns the saturated FIRST, FOLLOW, and NULLABLE maps for g. It
// is pure, idempotent, and deterministic: a function of the grammar only,
// and it neither mutates g nor retains a reference to it after returning.
func Compute(g *grammar.Grammar) Result {
	r := Result{
		First:    map[string]util.Set[string]{},
		Follow:   map[string]util.Set[string]{},
		Nullable: map[string]bool{},
	}

	// Seed: every terminal's FIRST is itself and it is never nullable; ε's
	// FIRST is itself and it is (vacuously) nullable; every nonterminal
	// starts with an empty FIRST set and not-nullable.
	for _, t := range g.Terminals() {
		r.First[t] = util.NewSet(t)
		r.Nullable[t] = false
	}
	r.First[grammar.Epsilon] = util.NewSet(grammar.Epsilon)
	r.Nullable[grammar.Epsilon] = true

	nts := g.NonTerminals()
	for _, nt := range nts {
		r.First[nt] = util.NewSet[string]()
		r.Nullable[nt] = false
	}

	computeFirstAndNullable(g, nts, r)
	computeFollow(g, nts, r)

	return r
}

// computeFirstAndNullable runs the joint FIRST/NULLABLE fixed point: walk
// every production left to right, adding FIRST(Xi)\{ε} to FIRST(A) and
// stopping as soon as Xi is not nullable; if the whole walk is nullable, add
// ε to FIRST(A) and mark A nullable. Iterate until nothing changes.
func computeFirstAndNullable(g *grammar.Grammar, nts []string, r Result) {
	changed := true
	for changed {
		changed = false

		for _, A := range nts {
			rule, _ := g.Rule(A)
			for _, alt := range rule.Productions {
				// alt may be the canonical epsilon alternative [ε]; ε is
				// seeded with FIRST(ε)={ε} and NULLABLE(ε)=true, so walking
				// it through the same loop as any other alternative falls
				// straight out the bottom as "every symbol nullable".
				allNullableSoFar := true
				for _, sym := range alt {
					firstSym := r.First[sym]
					for a := range firstSym {
						if a == grammar.Epsilon {
							continue
						}
						if r.First[A].Add(a) {
							changed = true
						}
					}
					if !r.Nullable[sym] {
						allNullableSoFar = false
						break
					}
				}
				if allNullableSoFar {
					if r.First[A].Add(grammar.Epsilon) {
						changed = true
					}
					if !r.Nullable[A] {
						r.Nullable[A] = true
						changed = true
					}
				}
			}
		}
	}
}

// computeFollow runs the FOLLOW fixed point, seeding FOLLOW(S) with {$}
// before iterating.
func computeFollow(g *grammar.Grammar, nts []string, r Result) {
	for _, nt := range nts {
		r.Follow[nt] = util.NewSet[string]()
	}
	r.Follow[g.StartSymbol()].Add(grammar.EndOfInput)

	changed := true
	for changed {
		changed = false

		for _, A := range nts {
			rule, _ := g.Rule(A)
			for _, alt := range rule.Productions {
				for i, B := range alt {
					if !g.IsNonTerminal(B) {
						continue
					}

					beta := alt[i+1:]
					betaFirst := r.FirstOfSequence(beta)

					for a := range betaFirst {
						if a == grammar.Epsilon {
							continue
						}
						if r.Follow[B].Add(a) {
							changed = true
						}
					}

					if betaFirst.Has(grammar.Epsilon) {
						if r.Follow[B].AddAll(r.Follow[A]) {
							changed = true
						}
					}
				}
			}
		}
	}
}
