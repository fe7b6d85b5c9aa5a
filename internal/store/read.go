package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrNotFound reports a lookup that matched no cached run.
var ErrNotFound = errors.New("run not found")

const recordColumns = `id, program, graph_hash, policy_hash, pipe_hash, stage_count, pipe_json`

// Lookup returns the cached run for a (graph hash, policy hash) pair.
// Returns ErrNotFound if the pair has not been partitioned yet.
func (s *Store) Lookup(ctx context.Context, graphHash, policyHash string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM runs
		WHERE graph_hash = ? AND policy_hash = ?
	`, graphHash, policyHash)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.WithMessagef(ErrNotFound, "graph %s policy %s", graphHash, policyHash)
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "lookup run")
	}
	return rec, nil
}

// Get returns one cached run by id.
// Returns ErrNotFound if no such run exists.
func (s *Store) Get(ctx context.Context, runID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM runs
		WHERE id = ?
	`, runID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.WithMessagef(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "get run %s", runID)
	}
	return rec, nil
}

// List returns every cached run with deterministic ordering:
// ORDER BY id ASC COLLATE BINARY. UUIDv7 ids make that creation order.
//
// Returns an empty slice (not nil) when the cache is empty.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []Record{}
	}

	return records, nil
}

// scanner abstracts sql.Row and sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	err := sc.Scan(
		&rec.ID,
		&rec.Program,
		&rec.GraphHash,
		&rec.PolicyHash,
		&rec.PipeHash,
		&rec.StageCount,
		&rec.PipeJSON,
	)
	return rec, err
}
