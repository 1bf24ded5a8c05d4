// Package lr0 implements the LR(0) canonical collection construction,
// SLR(1) ACTION/GOTO population on top of it, and the dual-stack
// shift-reduce recognizer. CLOSURE and GOTO are the two set operators;
// everything else is BFS over item sets and table filling.
package lr0

import (
	"fmt"
	"strings"

	"github.com/dekarrin/parsesmith/internal/grammar"
)

// Item is an LR(0) item (A, γ, k): Left holds the first k symbols of the
// alternative (already matched), Right holds the rest (yet to match). The
// item is complete when Right is empty.
type Item struct {
	NonTerminal string
	Left        []string
	Right       []string
}

// String renders the item as "A -> α.β" (a plain "." marks the dot), the
// form used in trace output and diagnostics.
func (it Item) String() string {
	return fmt.Sprintf("%s -> %s.%s", it.NonTerminal, strings.Join(it.Left, " "), strings.Join(it.Right, " "))
}

// IsComplete reports whether the dot is at the end of the alternative, i.e.
// whether this item represents "A -> γ ·".
func (it Item) IsComplete() bool {
	return len(it.Right) == 0
}

// NextSymbol returns the symbol immediately after the dot and true, or ""
// and false if the item is complete.
func (it Item) NextSymbol() (string, bool) {
	if it.IsComplete() {
		return "", false
	}
	return it.Right[0], true
}

// Advance returns the item with the dot moved one position to the right
// over NextSymbol(). Panics if the item is already complete; callers must
// check IsComplete first.
func (it Item) Advance() Item {
	left := make([]string, len(it.Left)+1)
	copy(left, it.Left)
	left[len(it.Left)] = it.Right[0]

	right := make([]string, len(it.Right)-1)
	copy(right, it.Right[1:])

	return Item{NonTerminal: it.NonTerminal, Left: left, Right: right}
}

// Rule returns the full alternative this item is an instance of, ignoring
// dot position: the alternative is Left followed by Right.
func (it Item) Rule() grammar.Production {
	p := make(grammar.Production, 0, len(it.Left)+len(it.Right))
	p = append(p, it.Left...)
	p = append(p, it.Right...)
	if len(p) == 0 {
		return grammar.Production{grammar.Epsilon}
	}
	return p
}

// itemsOfAlternative returns every LR(0) item of one alternative of
// nonterminal. The singleton epsilon alternative normalizes to the empty
// sequence, so "B -> ε" becomes the single complete item "B -> ·" rather
// than an item with Right=[ε].
func itemsOfAlternative(nonterminal string, alt grammar.Production) []Item {
	if alt.IsEpsilon() {
		return []Item{{NonTerminal: nonterminal, Left: nil, Right: nil}}
	}

	items := make([]Item, 0, len(alt)+1)
	for dot := 0; dot <= len(alt); dot++ {
		items = append(items, Item{
			NonTerminal: nonterminal,
			Left:        append([]string{}, alt[:dot]...),
			Right:       append([]string{}, alt[dot:]...),
		})
	}
	return items
}
