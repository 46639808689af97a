package db

import (
	"context"

	"github.com/healthcare-bi/backend/internal/models"
)

const (
	RunKindIngestClinical = "ingest_clinical"
	RunKindIngestBuilding = "ingest_building"
	RunKindSyncCompanies  = "sync_companies"

	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
)

func (s *Store) CreateRun(ctx context.Context, kind string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `INSERT INTO runs (kind, status, started_at) VALUES ($1, $2, NOW()) RETURNING id::text`, kind, RunStatusRunning).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3::uuid`, status, summary, runID)
	return err
}

// GetLatestRun returns the most recently started run, optionally restricted
// to one kind. pgx.ErrNoRows is returned when there is none.
func (s *Store) GetLatestRun(ctx context.Context, kind string) (models.Run, error) {
	query := `SELECT id::text, kind, started_at, finished_at, status, summary FROM runs`
	var args []any
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY started_at DESC LIMIT 1`

	var r models.Run
	var summary []byte
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.Kind, &r.StartedAt, &r.FinishedAt, &r.Status, &summary); err != nil {
		return models.Run{}, err
	}
	if len(summary) > 0 {
		r.Summary = summary
	}
	return r, nil
}
