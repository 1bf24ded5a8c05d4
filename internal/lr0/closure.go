package lr0

import (
	"sort"
	"strings"

	"github.com/dekarrin/parsesmith/internal/grammar"
)

// ItemSet is a set of Items keyed by their String() form; Item itself isn't
// a valid Go map key (it embeds slices), so membership and equality both go
// through the string form.
type ItemSet map[string]Item

// NewItemSet returns an ItemSet containing the given items.
func NewItemSet(items ...Item) ItemSet {
	s := ItemSet{}
	for _, it := range items {
		s[it.String()] = it
	}
	return s
}

// Add adds it to the set. Returns true if the set grew.
func (s ItemSet) Add(it Item) bool {
	key := it.String()
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = it
	return true
}

// Elements returns the items of the set, sorted by their String() form so
// that iteration (and therefore canonical-collection state numbering) is
// deterministic.
func (s ItemSet) Elements() []Item {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]Item, len(keys))
	for i, k := range keys {
		items[i] = s[k]
	}
	return items
}

// key returns a string uniquely identifying this item set's contents
// (independent of insertion order), used to test item-set equality in the
// canonical-collection construction. State identity is item-set equality.
func (s ItemSet) key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n")
}

// Closure saturates items under the CLOSURE operator: while any non-complete
// item (A -> α·Bβ) with B a nonterminal exists, add every (B -> ·γ) for
// every alternative γ of B. Idempotent: running Closure again on its own
// output changes nothing, since the loop below only stops once no item can
// add anything new.
func Closure(g *grammar.Grammar, items ItemSet) ItemSet {
	result := ItemSet{}
	for k, v := range items {
		result[k] = v
	}

	changed := true
	for changed {
		changed = false
		for _, it := range result.Elements() {
			B, ok := it.NextSymbol()
			if !ok || !g.IsNonTerminal(B) {
				continue
			}
			rule, _ := g.Rule(B)
			for _, alt := range rule.Productions {
				// only the dot-at-start item of each alternative; the
				// advanced positions are reached through GOTO, never
				// through closure.
				if result.Add(itemsOfAlternative(B, alt)[0]) {
					changed = true
				}
			}
		}
	}

	return result
}

// Goto computes GOTO(I, X): the closure of every item that advances over X.
// Returns an empty ItemSet if no item in I advances on X.
func Goto(g *grammar.Grammar, items ItemSet, X string) ItemSet {
	advanced := ItemSet{}
	for _, it := range items.Elements() {
		sym, ok := it.NextSymbol()
		if !ok || sym != X {
			continue
		}
		advanced.Add(it.Advance())
	}
	if len(advanced) == 0 {
		return ItemSet{}
	}
	return Closure(g, advanced)
}

// symbolsAfterDot returns, in deterministic order, every distinct symbol
// that appears immediately after a dot in items — the candidates for GOTO
// transitions out of this state.
func symbolsAfterDot(items ItemSet) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items.Elements() {
		sym, ok := it.NextSymbol()
		if !ok || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
