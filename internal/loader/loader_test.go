package loader

import (
	"strings"
	"testing"

	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ClassicExpressionGrammar(t *testing.T) {
	src := `
# classic expression grammar
E -> T E'
E' -> + T E' | ε
T -> F T'
T' -> * F T' | ε
F -> ( E ) | id
`
	g, warnings, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "E", g.StartSymbol())
	rule, ok := g.Rule("E'")
	require.True(t, ok)
	require.Len(t, rule.Productions, 2)
	assert.True(t, rule.Productions[1].IsEpsilon())
}

func TestLoad_UnicodeArrow(t *testing.T) {
	src := "S → a\n"
	g, _, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "S", g.StartSymbol())
}

func TestLoad_MalformedLineSkippedWithWarning(t *testing.T) {
	src := "S -> a\nthis line has no arrow at all\nS -> b\n"
	g, warnings, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Line)

	rule, _ := g.Rule("S")
	assert.Len(t, rule.Productions, 2)
}

func TestLoad_UndefinedRHSSymbolBecomesTerminalSilently(t *testing.T) {
	src := "S -> a B\n"
	g, warnings, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, g.IsTerminal("B"))
}

func TestLoad_CommentToEndOfLine(t *testing.T) {
	src := "S -> a # trailing comment about a\n"
	g, _, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	rule, _ := g.Rule("S")
	require.Len(t, rule.Productions, 1)
	assert.Equal(t, grammar.Production{"a"}, rule.Productions[0])
}

func TestLoadFile_MissingFileIsFatal(t *testing.T) {
	_, _, err := LoadFile("/nonexistent/path/to/grammar.txt")
	require.Error(t, err)
}

func TestLoad_EmptySourceFailsValidation(t *testing.T) {
	_, _, err := Load(strings.NewReader(""))
	assert.Error(t, err)
}
