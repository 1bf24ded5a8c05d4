package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprGrammar() *Grammar {
	g := New()
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

func TestGrammar_StartSymbol(t *testing.T) {
	g := exprGrammar()
	assert.Equal(t, "E", g.StartSymbol())
}

func TestGrammar_TerminalsAndNonTerminals(t *testing.T) {
	g := exprGrammar()

	nts := g.NonTerminals()
	assert.Equal(t, []string{"E", "E'", "T", "T'", "F"}, nts)

	terms := g.Terminals()
	assert.ElementsMatch(t, []string{"+", "*", "(", ")", "id"}, terms)

	for _, nt := range nts {
		assert.True(t, g.IsNonTerminal(nt))
		assert.False(t, g.IsTerminal(nt))
	}
	for _, term := range terms {
		assert.True(t, g.IsTerminal(term))
		assert.False(t, g.IsNonTerminal(term))
	}
}

func TestGrammar_EpsilonAlternativeCanonicalized(t *testing.T) {
	g := exprGrammar()
	r, ok := g.Rule("E'")
	require.True(t, ok)
	require.Len(t, r.Productions, 2)
	assert.True(t, r.Productions[1].IsEpsilon())
	assert.Equal(t, Epsilon, r.Productions[1].String())
}

func TestGrammar_Augmented(t *testing.T) {
	g := exprGrammar()
	g2 := g.Augmented()

	// g already has a nonterminal literally named "E'", so the naive
	// S+"'" trick the source used would collide; Augmented must skip past it.
	assert.Equal(t, "E''", g2.StartSymbol())
	assert.NotEqual(t, "E'", g2.StartSymbol())

	r, ok := g2.Rule(g2.StartSymbol())
	require.True(t, ok)
	require.Len(t, r.Productions, 1)
	assert.Equal(t, Production{"E"}, r.Productions[0])

	// original grammar is untouched
	assert.Equal(t, "E", g.StartSymbol())
}

func TestGrammar_Validate(t *testing.T) {
	g := exprGrammar()
	assert.NoError(t, g.Validate())

	empty := New()
	assert.Error(t, empty.Validate())
}

func TestGrammar_Copy_IsIndependent(t *testing.T) {
	g := exprGrammar()
	g2 := g.Copy()
	g2.AddRule("F", []string{"num"})

	_, ok := g.Rule("F")
	require.True(t, ok)
	r, _ := g.Rule("F")
	assert.Len(t, r.Productions, 2)

	r2, _ := g2.Rule("F")
	assert.Len(t, r2.Productions, 3)
}
