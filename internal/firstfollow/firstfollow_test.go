package firstfollow

import (
	"testing"

	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/stretchr/testify/assert"
)

// exprGrammar is the classic expression grammar.
func exprGrammar() *grammar.Grammar {
	g := grammar.New()
	g.AddRule("E", []string{"T", "E'"})
	g.AddRule("E'", []string{"+", "T", "E'"})
	g.AddRule("E'", []string{})
	g.AddRule("T", []string{"F", "T'"})
	g.AddRule("T'", []string{"*", "F", "T'"})
	g.AddRule("T'", []string{})
	g.AddRule("F", []string{"(", "E", ")"})
	g.AddRule("F", []string{"id"})
	return g
}

func setOf(elems ...string) map[string]bool {
	m := map[string]bool{}
	for _, e := range elems {
		m[e] = true
	}
	return m
}

func asMap(s map[string]bool) map[string]bool { return s }

func TestCompute_ClassicExpressionGrammar(t *testing.T) {
	g := exprGrammar()
	r := Compute(g)

	assert.True(t, r.Nullable["E'"])
	assert.True(t, r.Nullable["T'"])
	assert.False(t, r.Nullable["E"])
	assert.False(t, r.Nullable["T"])
	assert.False(t, r.Nullable["F"])

	wantFirstEorTorF := setOf("(", "id")
	assert.Equal(t, wantFirstEorTorF, asMap(r.First["E"]))
	assert.Equal(t, wantFirstEorTorF, asMap(r.First["T"]))
	assert.Equal(t, wantFirstEorTorF, asMap(r.First["F"]))

	assert.Equal(t, setOf("+", "ε"), asMap(r.First["E'"]))
	assert.Equal(t, setOf("*", "ε"), asMap(r.First["T'"]))

	wantFollowEorEp := setOf("$", ")")
	assert.Equal(t, wantFollowEorEp, asMap(r.Follow["E"]))
	assert.Equal(t, wantFollowEorEp, asMap(r.Follow["E'"]))

	wantFollowTorTp := setOf("+", "$", ")")
	assert.Equal(t, wantFollowTorTp, asMap(r.Follow["T"]))
	assert.Equal(t, wantFollowTorTp, asMap(r.Follow["T'"]))

	assert.Equal(t, setOf("*", "+", "$", ")"), asMap(r.Follow["F"]))
}

// TestCompute_EpsilonOnly exercises S -> A B; A -> a | ε; B -> b | ε.
func TestCompute_EpsilonOnly(t *testing.T) {
	g := grammar.New()
	g.AddRule("S", []string{"A", "B"})
	g.AddRule("A", []string{"a"})
	g.AddRule("A", []string{})
	g.AddRule("B", []string{"b"})
	g.AddRule("B", []string{})

	r := Compute(g)

	assert.True(t, r.Nullable["S"])
	assert.True(t, r.Nullable["A"])
	assert.True(t, r.Nullable["B"])
	assert.Equal(t, setOf("a", "b", "ε"), asMap(r.First["S"]))
}

// Universal invariants that must hold for any grammar.
func TestCompute_UniversalInvariants(t *testing.T) {
	grammars := []*grammar.Grammar{exprGrammar(), leftRecursiveExprGrammar()}

	for _, g := range grammars {
		r := Compute(g)

		// 1. ε ∈ FIRST(X) ⟺ NULLABLE(X), for every nonterminal.
		for _, nt := range g.NonTerminals() {
			_, hasEps := r.First[nt][grammar.Epsilon]
			assert.Equal(t, r.Nullable[nt], hasEps, "nonterminal %s", nt)
		}

		// 2. FIRST(t) = {t} and not nullable, for every terminal.
		for _, term := range g.Terminals() {
			assert.Equal(t, setOf(term), asMap(r.First[term]))
			assert.False(t, r.Nullable[term])
		}

		// 3. $ ∈ FOLLOW(S).
		assert.True(t, r.Follow[g.StartSymbol()].Has(grammar.EndOfInput))

		// 4. ε ∉ FOLLOW(A) for any A.
		for _, nt := range g.NonTerminals() {
			assert.False(t, r.Follow[nt].Has(grammar.Epsilon))
		}
	}
}

// leftRecursiveExprGrammar is left-recursive: E -> E + T | T; T -> T * F | F;
// F -> ( E ) | id.
func leftRecursiveExprGrammar() *grammar.Grammar {
	g := grammar.New()
	g.AddRule("E", []string{"E", "+", "T"})
	g.AddRule("E", []string{"T"})
	g.AddRule("T", []string{"T", "*", "F"})
	g.AddRule("T", []string{"F"})
	g.AddRule("F", []string{"(", "E", ")"})
	g.AddRule("F", []string{"id"})
	return g
}

func TestCompute_IsIdempotent(t *testing.T) {
	g := exprGrammar()
	r1 := Compute(g)
	r2 := Compute(g)
	assert.Equal(t, asMap(r1.First["E"]), asMap(r2.First["E"]))
	assert.Equal(t, asMap(r1.Follow["E'"]), asMap(r2.Follow["E'"]))
}
