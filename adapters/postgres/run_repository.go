// Package postgres persists the run ledger: one row per pipeline run,
// listable as recent history in the UI.
package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"lightlab/domain/core"
	"lightlab/internal/errors"
	"lightlab/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS lightcurve_runs (
	id              TEXT PRIMARY KEY,
	identifier      TEXT NOT NULL,
	trial_period    DOUBLE PRECISION NOT NULL,
	bin_size        DOUBLE PRECISION NOT NULL,
	outcome         TEXT NOT NULL,
	detected_period DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration_ms     BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_lightcurve_runs_created_at ON lightcurve_runs (created_at DESC);
`

// RunRepository implements ports.RunLedgerPort on PostgreSQL.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository connects and ensures the schema exists.
func NewRunRepository(databaseURL string) (*RunRepository, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &RunRepository{db: db}, nil
}

// runRow is the storage shape of one ledger entry.
type runRow struct {
	ID             string    `db:"id"`
	Identifier     string    `db:"identifier"`
	TrialPeriod    float64   `db:"trial_period"`
	BinSize        float64   `db:"bin_size"`
	Outcome        string    `db:"outcome"`
	DetectedPeriod float64   `db:"detected_period"`
	DurationMS     int64     `db:"duration_ms"`
	CreatedAt      time.Time `db:"created_at"`
}

// Record inserts one run into the ledger.
func (r *RunRepository) Record(ctx context.Context, rec ports.RunRecord) error {
	row := runRow{
		ID:             rec.ID.String(),
		Identifier:     rec.Identifier,
		TrialPeriod:    rec.TrialPeriod,
		BinSize:        rec.BinSize,
		Outcome:        rec.Outcome,
		DetectedPeriod: rec.DetectedPeriod,
		DurationMS:     rec.Duration.Milliseconds(),
		CreatedAt:      rec.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO lightcurve_runs
			(id, identifier, trial_period, bin_size, outcome, detected_period, duration_ms, created_at)
		VALUES
			(:id, :identifier, :trial_period, :bin_size, :outcome, :detected_period, :duration_ms, :created_at)`,
		row)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// Recent lists the newest runs, newest first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, identifier, trial_period, bin_size, outcome, detected_period, duration_ms, created_at
		FROM lightcurve_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}

	records := make([]ports.RunRecord, len(rows))
	for i, row := range rows {
		records[i] = ports.RunRecord{
			ID:             core.RunID(row.ID),
			Identifier:     row.Identifier,
			TrialPeriod:    row.TrialPeriod,
			BinSize:        row.BinSize,
			Outcome:        row.Outcome,
			DetectedPeriod: row.DetectedPeriod,
			Duration:       time.Duration(row.DurationMS) * time.Millisecond,
			CreatedAt:      row.CreatedAt,
		}
	}
	return records, nil
}

// Close releases the connection pool.
func (r *RunRepository) Close() error {
	return r.db.Close()
}
