// Package store implements sqlite-backed persistence of submitted grammars
// and their analysis runs. Computed tables are rezi-encoded and
// base64-wrapped into a TEXT column rather than spread over relational
// columns; they are only ever read back whole.
package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// ErrNotFound is returned by Get* methods when no row matches the given ID.
var ErrNotFound = errors.New("not found")

// GrammarRecord is one submitted grammar, as persisted.
type GrammarRecord struct {
	ID        uuid.UUID
	Name      string
	Source    string
	CreatedAt time.Time
}

// AnalysisRunRecord is one completed analysis of a GrammarRecord.
type AnalysisRunRecord struct {
	ID              uuid.UUID
	GrammarID       uuid.UUID
	Tables          AnalysisSnapshot
	ConflictSummary string
	CreatedAt       time.Time
}

// ConflictSnapshot is the persistable form of a conflict.Conflict, flattened
// so it can be rezi-encoded and JSON-served without reaching back into the
// analysis packages.
type ConflictSnapshot struct {
	Kind        string
	NonTerminal string
	Terminal    string
	State       int
	Symbol      string
	Offenders   []string
}

// MarshalBinary encodes cs in rezi format, field by field in declaration
// order. It always returns a nil error.
func (cs ConflictSnapshot) MarshalBinary() ([]byte, error) {
	var enc []byte
	enc = append(enc, rezi.EncString(cs.Kind)...)
	enc = append(enc, rezi.EncString(cs.NonTerminal)...)
	enc = append(enc, rezi.EncString(cs.Terminal)...)
	enc = append(enc, rezi.EncInt(cs.State)...)
	enc = append(enc, rezi.EncString(cs.Symbol)...)
	enc = append(enc, rezi.EncSliceString(cs.Offenders)...)
	return enc, nil
}

// UnmarshalBinary decodes a ConflictSnapshot encoded by MarshalBinary.
func (cs *ConflictSnapshot) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	if cs.Kind, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	data = data[n:]
	if cs.NonTerminal, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("non-terminal: %w", err)
	}
	data = data[n:]
	if cs.Terminal, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	data = data[n:]
	if cs.State, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	data = data[n:]
	if cs.Symbol, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("symbol: %w", err)
	}
	data = data[n:]
	if cs.Offenders, _, err = rezi.DecSliceString(data); err != nil {
		return fmt.Errorf("offenders: %w", err)
	}
	return nil
}

// AnalysisSnapshot is the full set of computed tables for one analysis run,
// rendered to their display form and bundled with the conflict list. It is
// what gets rezi-encoded, then base64-wrapped, into the analysis_runs.tables
// TEXT column.
type AnalysisSnapshot struct {
	LL1Table        string
	ActionGotoTable string
	Conflicts       []ConflictSnapshot
}

// MarshalBinary encodes snap in rezi format: both rendered tables, then a
// count-prefixed sequence of conflicts. It always returns a nil error.
func (snap AnalysisSnapshot) MarshalBinary() ([]byte, error) {
	var enc []byte
	enc = append(enc, rezi.EncString(snap.LL1Table)...)
	enc = append(enc, rezi.EncString(snap.ActionGotoTable)...)
	enc = append(enc, rezi.EncInt(len(snap.Conflicts))...)
	for i := range snap.Conflicts {
		enc = append(enc, rezi.EncBinary(snap.Conflicts[i])...)
	}
	return enc, nil
}

// UnmarshalBinary decodes an AnalysisSnapshot encoded by MarshalBinary.
func (snap *AnalysisSnapshot) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	if snap.LL1Table, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("ll1 table: %w", err)
	}
	data = data[n:]
	if snap.ActionGotoTable, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("action/goto table: %w", err)
	}
	data = data[n:]

	var count int
	if count, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("conflict count: %w", err)
	}
	data = data[n:]

	snap.Conflicts = nil
	for i := 0; i < count; i++ {
		var cs ConflictSnapshot
		if n, err = rezi.DecBinary(data, &cs); err != nil {
			return fmt.Errorf("conflict %d: %w", i, err)
		}
		data = data[n:]
		snap.Conflicts = append(snap.Conflicts, cs)
	}
	return nil
}

// SnapshotConflicts converts conflict.Conflict values into their
// rezi-encodable form.
func SnapshotConflicts(cs []conflict.Conflict) []ConflictSnapshot {
	out := make([]ConflictSnapshot, len(cs))
	for i, c := range cs {
		out[i] = ConflictSnapshot{
			Kind:        string(c.Kind),
			NonTerminal: c.Location.NonTerminal,
			Terminal:    c.Location.Terminal,
			State:       c.Location.State,
			Symbol:      c.Location.Symbol,
			Offenders:   c.Offenders,
		}
	}
	return out
}

// Store is a handle on the sqlite database holding grammars and analysis
// runs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database file under dataDir
// and ensures its schema exists.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "parsesmith.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT NOT NULL PRIMARY KEY,
		grammar_id TEXT NOT NULL REFERENCES grammars(id) ON DELETE CASCADE,
		tables TEXT NOT NULL,
		conflict_summary TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveGrammar inserts a new grammar record and returns its generated ID.
func (s *Store) SaveGrammar(ctx context.Context, name, source string) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("generate grammar id: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grammars (id, name, source, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), name, source, time.Now().Unix())
	if err != nil {
		return uuid.UUID{}, wrapDBError(err)
	}
	return id, nil
}

// GetGrammar fetches a grammar record by ID.
func (s *Store) GetGrammar(ctx context.Context, id uuid.UUID) (GrammarRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, created_at FROM grammars WHERE id = ?`, id.String())

	var rec GrammarRecord
	var idStr string
	var createdAt int64
	if err := row.Scan(&idStr, &rec.Name, &rec.Source, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GrammarRecord{}, ErrNotFound
		}
		return GrammarRecord{}, wrapDBError(err)
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return GrammarRecord{}, fmt.Errorf("decode stored grammar id: %w", err)
	}
	rec.ID = parsed
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}

// SaveAnalysisRun inserts a new analysis run record for grammarID and
// returns its generated ID. snapshot is rezi-encoded and base64-wrapped so a
// BLOB-shaped value can live in a TEXT column.
func (s *Store) SaveAnalysisRun(ctx context.Context, grammarID uuid.UUID, snapshot AnalysisSnapshot, conflictSummary string) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("generate analysis run id: %w", err)
	}

	encoded := rezi.EncBinary(&snapshot)
	stored := base64.StdEncoding.EncodeToString(encoded)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, grammar_id, tables, conflict_summary, created_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), grammarID.String(), stored, conflictSummary, time.Now().Unix())
	if err != nil {
		return uuid.UUID{}, wrapDBError(err)
	}
	return id, nil
}

// GetAnalysisRun fetches an analysis run record by ID.
func (s *Store) GetAnalysisRun(ctx context.Context, id uuid.UUID) (AnalysisRunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, grammar_id, tables, conflict_summary, created_at FROM analysis_runs WHERE id = ?`, id.String())

	var rec AnalysisRunRecord
	var idStr, grammarIDStr, stored string
	var createdAt int64
	if err := row.Scan(&idStr, &grammarIDStr, &stored, &rec.ConflictSummary, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRunRecord{}, ErrNotFound
		}
		return AnalysisRunRecord{}, wrapDBError(err)
	}

	decodedID, err := uuid.Parse(idStr)
	if err != nil {
		return AnalysisRunRecord{}, fmt.Errorf("decode stored analysis run id: %w", err)
	}
	decodedGrammarID, err := uuid.Parse(grammarIDStr)
	if err != nil {
		return AnalysisRunRecord{}, fmt.Errorf("decode stored grammar id: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return AnalysisRunRecord{}, fmt.Errorf("decode stored tables: %w", err)
	}

	var snapshot AnalysisSnapshot
	n, err := rezi.DecBinary(raw, &snapshot)
	if err != nil {
		return AnalysisRunRecord{}, fmt.Errorf("REZI decode: %w", err)
	}
	if n != len(raw) {
		return AnalysisRunRecord{}, fmt.Errorf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(raw))
	}

	rec.ID = decodedID
	rec.GrammarID = decodedGrammarID
	rec.Tables = snapshot
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}

// ListAnalysisRuns returns every analysis run recorded for grammarID, most
// recent first.
func (s *Store) ListAnalysisRuns(ctx context.Context, grammarID uuid.UUID) ([]AnalysisRunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM analysis_runs WHERE grammar_id = ? ORDER BY created_at DESC, rowid DESC`, grammarID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}

	out := make([]AnalysisRunRecord, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("decode stored analysis run id: %w", err)
		}
		rec, err := s.GetAnalysisRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	return err
}
