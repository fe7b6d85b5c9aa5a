package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/split"
)

// SaveResult reports the outcome of a Save call.
type SaveResult struct {
	RunID    string
	Inserted bool
}

// Save caches a partition result, keyed by the content hashes of the input
// graph and the policy config.
//
// Uses ON CONFLICT(graph_hash, policy_hash) DO NOTHING for idempotency:
// saving an already-cached pair is silently ignored and the existing run is
// reported with Inserted=false. The pipe body is stored as RFC 8785
// canonical JSON, so equal results produce byte-equal rows.
func (s *Store) Save(ctx context.Context, g *graph.Graph, cfg split.Config, result *pipe.IR) (SaveResult, error) {
	graphHash, err := graph.HashGraph(g)
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: hash graph")
	}
	policyHash, err := split.HashConfig(cfg)
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: hash policy")
	}
	pipeHash, err := result.Hash()
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: hash pipe")
	}
	pipeJSON, err := result.CanonicalJSON()
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: marshal pipe")
	}
	id, err := s.ids.NewID()
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run")
	}

	// Use a transaction to ensure atomicity of insert-or-select
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: begin tx")
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, program, graph_hash, policy_hash, pipe_hash, stage_count, pipe_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(graph_hash, policy_hash) DO NOTHING
	`,
		id,
		result.Graph.Name,
		graphHash,
		policyHash,
		pipeHash,
		len(result.Stages),
		string(pipeJSON),
	)
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: insert")
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: rows affected")
	}

	saved := SaveResult{RunID: id, Inserted: true}
	if rowsAffected == 0 {
		// Conflict - the pair is already cached, fetch the existing run
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM runs
			WHERE graph_hash = ? AND policy_hash = ?
		`, graphHash, policyHash).Scan(&saved.RunID)
		if err != nil {
			return SaveResult{}, errors.Wrap(err, "save run: select existing")
		}
		saved.Inserted = false
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, errors.Wrap(err, "save run: commit")
	}

	return saved, nil
}
