package store

import (
	"context"
	"testing"

	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetGrammar(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveGrammar(ctx, "expr", "E -> T E'\n")
	require.NoError(t, err)

	rec, err := s.GetGrammar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "expr", rec.Name)
	assert.Equal(t, "E -> T E'\n", rec.Source)
}

func TestGetGrammar_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetGrammar(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndGetAnalysisRun_RoundTripsSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	grammarID, err := s.SaveGrammar(ctx, "expr", "E -> T E'\n")
	require.NoError(t, err)

	snapshot := AnalysisSnapshot{
		LL1Table:        "E | id | ( \nT E'\n",
		ActionGotoTable: "state 0 | acc\n",
		Conflicts: SnapshotConflicts([]conflict.Conflict{
			{Kind: conflict.ShiftReduce, Location: conflict.Location{State: 4, Symbol: "e"}, Offenders: []string{"s5", "rS->i E t S "}},
		}),
	}

	runID, err := s.SaveAnalysisRun(ctx, grammarID, snapshot, "1 SHIFT_REDUCE conflict")
	require.NoError(t, err)

	rec, err := s.GetAnalysisRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, grammarID, rec.GrammarID)
	assert.Equal(t, "1 SHIFT_REDUCE conflict", rec.ConflictSummary)
	assert.Equal(t, snapshot.LL1Table, rec.Tables.LL1Table)
	require.Len(t, rec.Tables.Conflicts, 1)
	assert.Equal(t, "SHIFT_REDUCE", rec.Tables.Conflicts[0].Kind)
}

func TestListAnalysisRuns_MostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	grammarID, err := s.SaveGrammar(ctx, "expr", "E -> T E'\n")
	require.NoError(t, err)

	_, err = s.SaveAnalysisRun(ctx, grammarID, AnalysisSnapshot{}, "first")
	require.NoError(t, err)
	_, err = s.SaveAnalysisRun(ctx, grammarID, AnalysisSnapshot{}, "second")
	require.NoError(t, err)

	runs, err := s.ListAnalysisRuns(ctx, grammarID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].ConflictSummary)
	assert.Equal(t, "first", runs[1].ConflictSummary)
}
