package lr0

import "github.com/dekarrin/parsesmith/internal/grammar"

// Collection is the canonical collection of LR(0) item sets:
// States[i] is the item set for state i, and Transitions[i][X] = j means
// GOTO(States[i], X) = States[j]. Terminal-keyed transitions are shift
// candidates; nonterminal-keyed transitions are GOTO entries. State 0 is
// always CLOSURE({S' -> ·S}).
type Collection struct {
	States      []ItemSet
	Transitions []map[string]int
}

// BuildCanonicalCollection runs a BFS over the item sets of the augmented
// grammar gPrime (caller is responsible for calling grammar.Augmented first;
// this function does not augment on its own, since the generator needs the
// un-augmented start symbol too, to recognize the accepting item).
//
// Start with C0 = CLOSURE({(S' -> ·S)}) as state 0. For each state, for each
// symbol X that appears immediately after some dot in the state, compute
// J = GOTO(state, X); if J is non-empty, look it up by item-set equality —
// if new, assign the next integer id; either way record the transition.
func BuildCanonicalCollection(gPrime *grammar.Grammar) *Collection {
	startRule, _ := gPrime.Rule(gPrime.StartSymbol())
	startItem := itemsOfAlternative(gPrime.StartSymbol(), startRule.Productions[0])[0]

	c0 := Closure(gPrime, NewItemSet(startItem))

	coll := &Collection{
		States:      []ItemSet{c0},
		Transitions: []map[string]int{{}},
	}

	byKey := map[string]int{c0.key(): 0}

	// BFS over states; new states get appended to coll.States as they're
	// discovered, so ranging by index (not over a fixed slice) naturally
	// keeps processing until nothing new is found.
	for i := 0; i < len(coll.States); i++ {
		state := coll.States[i]
		for _, X := range symbolsAfterDot(state) {
			J := Goto(gPrime, state, X)
			if len(J) == 0 {
				continue
			}

			key := J.key()
			j, known := byKey[key]
			if !known {
				j = len(coll.States)
				byKey[key] = j
				coll.States = append(coll.States, J)
				coll.Transitions = append(coll.Transitions, map[string]int{})
			}
			coll.Transitions[i][X] = j
		}
	}

	return coll
}
