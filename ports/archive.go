package ports

import (
	"context"

	"lightlab/domain/observation"
)

// ArchiveQuery narrows an archive search to one mission product line.
type ArchiveQuery struct {
	// Target is the canonical query string, e.g. "KIC 8758161".
	Target string
	// Author is the product pipeline, fixed to "Kepler" here.
	Author string
	// Cadence selects the cadence class, fixed to "long" here.
	Cadence string
}

// ArchivePort fetches pixel-level observations from the external data
// archive. A target with no matching observation is reported through
// core.ErrTargetNotFound so callers can treat it as an outcome, not a
// failure. Anything else (transport, decode) comes back as a real
// error.
type ArchivePort interface {
	FetchTargetPixels(ctx context.Context, q ArchiveQuery) (*observation.TargetPixelFile, error)
}
