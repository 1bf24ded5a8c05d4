package diag

import (
	"testing"

	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/lr0"
	"github.com/stretchr/testify/assert"
)

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

func TestLL1Table_ContainsExpectedCells(t *testing.T) {
	g := exprGrammar()
	ff := firstfollow.Compute(g)
	table := ll1.Build(g, ff)

	out := LL1Table(table)
	assert.Contains(t, out, "E")
	assert.Contains(t, out, "id")
}

func TestActionGotoTable_ContainsStateColumn(t *testing.T) {
	g := exprGrammar()
	ff := firstfollow.Compute(g)
	table := lr0.BuildSLRTable(g, ff)

	out := ActionGotoTable(table)
	assert.Contains(t, out, "state")
	assert.Contains(t, out, "acc")
}

func TestExplain_ShiftReduceMentionsDanglingElse(t *testing.T) {
	c := conflict.Conflict{
		Kind:      conflict.ShiftReduce,
		Location:  conflict.Location{State: 7, Symbol: "e"},
		Offenders: []string{"s12", "rS->i E t S "},
	}
	out := Explain(c)
	assert.Contains(t, out, "dangling-else")
}

func TestExplain_LL1MultiSuggestsLeftFactoring(t *testing.T) {
	c := conflict.Conflict{
		Kind:      conflict.LL1Multi,
		Location:  conflict.Location{NonTerminal: "E", Terminal: "id"},
		Offenders: []string{"E + T", "T"},
	}
	out := Explain(c)
	assert.Contains(t, out, "left-factor")
}

func TestExplain_ReduceReduceMentionsLALR(t *testing.T) {
	c := conflict.Conflict{
		Kind:      conflict.ReduceReduce,
		Location:  conflict.Location{State: 3, Symbol: "$"},
		Offenders: []string{"rA->x ", "rB->x "},
	}
	out := Explain(c)
	assert.Contains(t, out, "LALR")
}
