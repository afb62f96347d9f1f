package ports

import (
	"context"
	"time"

	"lightlab/domain/core"
)

// RunRecord is the durable trace of one pipeline run.
type RunRecord struct {
	ID          core.RunID `db:"id"`
	Identifier  string     `db:"identifier"`
	TrialPeriod float64    `db:"trial_period"`
	BinSize     float64    `db:"bin_size"`
	// Outcome is "found", "not_found" or "failed".
	Outcome string `db:"outcome"`
	// DetectedPeriod is the periodogram peak in days; zero unless the
	// outcome is "found".
	DetectedPeriod float64       `db:"detected_period"`
	Duration       time.Duration `db:"duration_ms"`
	CreatedAt      time.Time     `db:"created_at"`
}

// RunLedgerPort records pipeline runs and lists recent history. A nil
// implementation is allowed: the ledger is optional infrastructure.
type RunLedgerPort interface {
	Record(ctx context.Context, rec RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}
