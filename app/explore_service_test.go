package app

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightlab/domain/catalog"
	"lightlab/domain/core"
	"lightlab/domain/observation"
	"lightlab/domain/run"
	"lightlab/ports"
)

const testSignalPeriod = 0.5

// fakeArchive serves a synthetic single-pixel observation for one known
// target.
type fakeArchive struct {
	known string
	err   error // forced failure when set

	mu      sync.Mutex
	fetches []string
}

func (a *fakeArchive) FetchTargetPixels(ctx context.Context, q ports.ArchiveQuery) (*observation.TargetPixelFile, error) {
	a.mu.Lock()
	a.fetches = append(a.fetches, q.Target)
	a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	if q.Target != a.known {
		return nil, core.NewNotFoundError("target", q.Target)
	}

	n := 600
	tpf := &observation.TargetPixelFile{
		Target:       q.Target,
		Width:        1,
		Height:       1,
		Time:         make([]float64, n),
		Quality:      make([]int32, n),
		Flux:         make([][]float32, n),
		FluxErr:      make([][]float32, n),
		PipelineMask: []bool{true},
	}
	for i := 0; i < n; i++ {
		t := float64(i) * 0.02
		tpf.Time[i] = 120 + t
		tpf.Flux[i] = []float32{float32(1 + 0.01*math.Sin(2*math.Pi*t/testSignalPeriod))}
		tpf.FluxErr[i] = []float32{0.0005}
	}
	return tpf, nil
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(run.Result) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png-bytes"), nil
}

type captureLedger struct {
	mu      sync.Mutex
	records []ports.RunRecord
}

func (l *captureLedger) Record(_ context.Context, rec ports.RunRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (l *captureLedger) Recent(context.Context, int) ([]ports.RunRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.RunRecord(nil), l.records...), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testCatalog() catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Identifier: "8758161", Porb: 3.5},
		{Identifier: "5632781", Porb: 0.8},
	})
}

func testSettings() PipelineSettings {
	// A short flatten window keeps the half-day test signal intact.
	return PipelineSettings{FlattenWindow: 51, OutlierSigma: 5, Oversample: 5}
}

func newService(archive ports.ArchivePort, ledger ports.RunLedgerPort, events EventPublisher) *ExploreService {
	return NewExploreService(testCatalog(), archive, fakeRenderer{}, ledger, events, testSettings())
}

func validParams() run.Params {
	return run.Params{Identifier: "8758161", TrialPeriod: testSignalPeriod, BinSize: 0.02}
}

func TestExplore_Found(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	res := s.Explore(context.Background(), validParams())
	require.Equal(t, run.OutcomeFound, res.Outcome)
	require.NoError(t, res.Err)

	assert.True(t, res.HasLiterature)
	assert.InDelta(t, 3.5, res.LiteraturePeriod, 1e-12)
	assert.InDelta(t, testSignalPeriod, res.PeriodAtMaxPower, 0.01)
	assert.Greater(t, res.Raw.Len(), 0)
	assert.Greater(t, res.Binned.Len(), 0)
	assert.Greater(t, res.Periodogram.Len(), 0)
}

func TestExplore_UnknownTargetIsNotFoundNotError(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	params := validParams()
	params.Identifier = "999999999"
	res := s.Explore(context.Background(), params)

	assert.Equal(t, run.OutcomeNotFound, res.Outcome)
	assert.NoError(t, res.Err)
	assert.False(t, res.HasLiterature)
}

func TestExplore_ArchiveFailureIsNotFound(t *testing.T) {
	// A dead archive and a missing target look the same to the user:
	// the placeholder figure.
	s := newService(&fakeArchive{err: errors.New("connection refused")}, nil, nil)

	res := s.Explore(context.Background(), validParams())
	assert.Equal(t, run.OutcomeNotFound, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestExplore_InvalidParamsFail(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	params := validParams()
	params.TrialPeriod = -1
	res := s.Explore(context.Background(), params)

	assert.Equal(t, run.OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)

	params = validParams()
	params.BinSize = 0
	res = s.Explore(context.Background(), params)
	assert.Equal(t, run.OutcomeFailed, res.Outcome)
}

func TestExplore_CancelledContextFails(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.Explore(ctx, validParams())

	assert.Equal(t, run.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestExplore_BinSizeNeverMovesDetectedPeriod(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	a := validParams()
	b := validParams()
	b.BinSize = 0.05

	resA := s.Explore(context.Background(), a)
	resB := s.Explore(context.Background(), b)
	require.Equal(t, run.OutcomeFound, resA.Outcome)
	require.Equal(t, run.OutcomeFound, resB.Outcome)

	assert.Equal(t, resA.PeriodAtMaxPower, resB.PeriodAtMaxPower)
	assert.NotEqual(t, resA.Binned.Len(), resB.Binned.Len())
}

func TestRunAndRender_PromotesFigureAndRecords(t *testing.T) {
	ledger := &captureLedger{}
	pub := &capturePublisher{}
	s := newService(&fakeArchive{known: "KIC 8758161"}, ledger, pub)

	fig, err := s.RunAndRender(context.Background(), validParams())
	require.NoError(t, err)
	require.NotNil(t, fig)
	assert.Equal(t, run.OutcomeFound, fig.Outcome)
	assert.Equal(t, []byte("png-bytes"), fig.PNG)

	current, ok := s.CurrentFigure()
	require.True(t, ok)
	assert.Equal(t, fig.RunID, current.RunID)

	assert.Equal(t, []EventType{EventTypeRunStarted, EventTypeRunCompleted}, pub.types())

	require.Len(t, ledger.records, 1)
	rec := ledger.records[0]
	assert.Equal(t, "8758161", rec.Identifier)
	assert.Equal(t, string(run.OutcomeFound), rec.Outcome)
	assert.InDelta(t, testSignalPeriod, rec.DetectedPeriod, 0.01)
}

func TestRunAndRender_FailurePublishesRunFailed(t *testing.T) {
	pub := &capturePublisher{}
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, pub)

	params := validParams()
	params.TrialPeriod = 0
	_, err := s.RunAndRender(context.Background(), params)
	require.Error(t, err)

	assert.Equal(t, []EventType{EventTypeRunStarted, EventTypeRunFailed}, pub.types())
	_, ok := s.CurrentFigure()
	assert.False(t, ok)
}

func TestRunAndRender_RenderErrorSurfaces(t *testing.T) {
	s := NewExploreService(testCatalog(), &fakeArchive{known: "KIC 8758161"},
		fakeRenderer{err: errors.New("encode failed")}, nil, nil, testSettings())

	_, err := s.RunAndRender(context.Background(), validParams())
	assert.Error(t, err)
}

func TestRunAndRender_LatestRunWins(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)

	first, err := s.RunAndRender(context.Background(), validParams())
	require.NoError(t, err)

	second := validParams()
	second.BinSize = 0.05
	fig, err := s.RunAndRender(context.Background(), second)
	require.NoError(t, err)
	require.NotEqual(t, first.RunID, fig.RunID)

	current, ok := s.CurrentFigure()
	require.True(t, ok)
	assert.Equal(t, fig.RunID, current.RunID)
	assert.InDelta(t, 0.05, current.Params.BinSize, 1e-12)
}

func TestRecentRuns_NilLedger(t *testing.T) {
	s := newService(&fakeArchive{known: "KIC 8758161"}, nil, nil)
	records, err := s.RecentRuns(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, records)
}
