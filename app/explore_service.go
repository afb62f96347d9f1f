// Package app wires the interactive exploration pipeline: resolve the
// target, fetch and reduce the observation, compute the periodogram
// and render the figure. The pipeline itself is a pure function of the
// query parameters plus the immutable catalog and the archive content;
// this package adds run bookkeeping around it.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"lightlab/domain/catalog"
	"lightlab/domain/core"
	"lightlab/domain/periodogram"
	"lightlab/domain/run"
	"lightlab/ports"
)

// Archive query constants for this tool: Kepler long cadence only.
const (
	archiveAuthor  = "Kepler"
	archiveCadence = "long"
)

// PipelineSettings are the numeric knobs of the reduction.
type PipelineSettings struct {
	FlattenWindow int
	OutlierSigma  float64
	Oversample    int
}

// Figure is the displayable product of one run: the encoded image plus
// enough metadata for the control surface.
type Figure struct {
	RunID   core.RunID
	Params  run.Params
	Outcome run.Outcome
	PNG     []byte
}

// ExploreService runs the observation pipeline for committed parameter
// changes. Rapid successive changes race: each new run supersedes the
// previous generation and cancels its context, so only the newest
// run's figure ever becomes current.
type ExploreService struct {
	catalog  catalog.Catalog
	archive  ports.ArchivePort
	renderer ports.FigureRendererPort
	ledger   ports.RunLedgerPort // optional, may be nil
	events   EventPublisher
	settings PipelineSettings

	mu         sync.Mutex
	generation uint64
	cancelPrev context.CancelFunc
	current    *Figure
}

// NewExploreService creates the service. ledger may be nil; events may
// be nil.
func NewExploreService(
	cat catalog.Catalog,
	archive ports.ArchivePort,
	renderer ports.FigureRendererPort,
	ledger ports.RunLedgerPort,
	events EventPublisher,
	settings PipelineSettings,
) *ExploreService {
	if events == nil {
		events = nopPublisher{}
	}
	if settings.FlattenWindow <= 0 {
		settings.FlattenWindow = 401
	}
	if settings.OutlierSigma <= 0 {
		settings.OutlierSigma = 5
	}
	if settings.Oversample <= 0 {
		settings.Oversample = periodogram.DefaultOversample
	}
	return &ExploreService{
		catalog:  cat,
		archive:  archive,
		renderer: renderer,
		ledger:   ledger,
		events:   events,
		settings: settings,
	}
}

// Catalog exposes the immutable reference table.
func (s *ExploreService) Catalog() catalog.Catalog { return s.catalog }

// Explore runs the pipeline once for params and returns the explicit
// outcome. It never returns an error for an unknown target; that is
// OutcomeNotFound. Parameter validation failures and compute failures
// come back as OutcomeFailed with Err set.
func (s *ExploreService) Explore(ctx context.Context, params run.Params) run.Result {
	return s.exploreAs(ctx, core.NewRunID(), params)
}

func (s *ExploreService) exploreAs(ctx context.Context, id core.RunID, params run.Params) run.Result {
	res := run.Result{ID: id, Params: params}

	if err := params.Validate(); err != nil {
		res.Outcome = run.OutcomeFailed
		res.Err = err
		return res
	}

	resolution := s.catalog.Resolve(params.Identifier)
	res.LiteraturePeriod = resolution.LiteraturePeriod
	res.HasLiterature = resolution.HasLiterature

	tpf, err := s.archive.FetchTargetPixels(ctx, ports.ArchiveQuery{
		Target:  resolution.Query,
		Author:  archiveAuthor,
		Cadence: archiveCadence,
	})
	if err != nil {
		if ctx.Err() != nil {
			res.Outcome = run.OutcomeFailed
			res.Err = ctx.Err()
			return res
		}
		// A failed fetch is treated as not-found: no retries, no
		// distinction between a missing target and a dead archive.
		if !core.IsNotFoundError(err) {
			log.Printf("[Explore] fetch failed for %q, treating as not found: %v", resolution.Query, err)
		}
		res.Outcome = run.OutcomeNotFound
		return res
	}

	raw, err := tpf.ToLightCurve()
	if err != nil {
		return failed(res, err)
	}
	flat, err := raw.Flatten(s.settings.FlattenWindow)
	if err != nil {
		return failed(res, err)
	}
	clean := flat.RemoveOutliers(s.settings.OutlierSigma)

	folded, err := clean.Fold(params.TrialPeriod)
	if err != nil {
		return failed(res, err)
	}
	binned, err := folded.Bin(params.BinSize)
	if err != nil {
		return failed(res, err)
	}

	// The periodogram sees the clean unfolded series, so bin size can
	// never move the detected period.
	pg, err := periodogram.FromLightCurve(clean, s.settings.Oversample)
	if err != nil {
		return failed(res, err)
	}

	res.Outcome = run.OutcomeFound
	res.Raw = flat
	res.Folded = folded
	res.Binned = binned
	res.Periodogram = pg
	res.PeriodAtMaxPower = pg.PeriodAtMaxPower()
	return res
}

func failed(res run.Result, err error) run.Result {
	res.Outcome = run.OutcomeFailed
	res.Err = err
	return res
}

// RunAndRender executes one committed parameter change end to end:
// start a new generation (cancelling any in-flight older run), run the
// pipeline, render the figure, record the ledger entry, and promote
// the figure to current only if no newer generation started meanwhile.
func (s *ExploreService) RunAndRender(ctx context.Context, params run.Params) (*Figure, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelPrev = cancel
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	runID := core.NewRunID()
	s.events.Publish(Event{
		Type:       EventTypeRunStarted,
		RunID:      runID,
		Identifier: params.Identifier.String(),
		Timestamp:  start,
	})

	res := s.exploreAs(runCtx, runID, params)

	if res.Outcome == run.OutcomeFailed {
		s.events.Publish(Event{
			Type:       EventTypeRunFailed,
			RunID:      res.ID,
			Identifier: params.Identifier.String(),
			Timestamp:  time.Now(),
			Data:       RunFailedData{Error: res.Err.Error()},
		})
		s.record(res, time.Since(start))
		return nil, res.Err
	}

	png, err := s.renderer.Render(res)
	if err != nil {
		s.events.Publish(Event{
			Type:       EventTypeRunFailed,
			RunID:      res.ID,
			Identifier: params.Identifier.String(),
			Timestamp:  time.Now(),
			Data:       RunFailedData{Error: err.Error()},
		})
		return nil, err
	}

	fig := &Figure{
		RunID:   res.ID,
		Params:  params,
		Outcome: res.Outcome,
		PNG:     png,
	}

	s.mu.Lock()
	if gen == s.generation {
		s.current = fig
	}
	s.mu.Unlock()

	s.record(res, time.Since(start))
	s.events.Publish(Event{
		Type:       EventTypeRunCompleted,
		RunID:      res.ID,
		Identifier: params.Identifier.String(),
		Timestamp:  time.Now(),
		Data: RunCompletedData{
			Outcome:          string(res.Outcome),
			PeriodAtMaxPower: res.PeriodAtMaxPower,
			DurationMS:       time.Since(start).Milliseconds(),
		},
	})
	return fig, nil
}

// CurrentFigure returns the most recent completed figure, if any.
func (s *ExploreService) CurrentFigure() (*Figure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// record writes the ledger entry; ledger failures are logged, never
// surfaced, the run already happened.
func (s *ExploreService) record(res run.Result, elapsed time.Duration) {
	if s.ledger == nil {
		return
	}
	rec := ports.RunRecord{
		ID:             res.ID,
		Identifier:     res.Params.Identifier.String(),
		TrialPeriod:    res.Params.TrialPeriod,
		BinSize:        res.Params.BinSize,
		Outcome:        string(res.Outcome),
		DetectedPeriod: res.PeriodAtMaxPower,
		Duration:       elapsed,
		CreatedAt:      time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ledger.Record(ctx, rec); err != nil {
		log.Printf("[Explore] ledger record failed: %v", err)
	}
}

// RecentRuns lists ledger history; empty without a ledger.
func (s *ExploreService) RecentRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.Recent(ctx, limit)
}
