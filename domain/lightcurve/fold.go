package lightcurve

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"lightlab/domain/core"
)

// FoldedLightCurve is a lightcurve remapped onto orbital phase for an
// assumed period. Phase is expressed in days in [-period/2, period/2)
// and samples are ordered by phase.
type FoldedLightCurve struct {
	phase   []float64
	flux    []float64
	fluxErr []float64
	period  float64
}

// Fold phase-folds the series on period (days) relative to the first
// timestamp. Samples exactly an integer number of periods apart land
// on identical phases. The receiver is unchanged.
func (lc LightCurve) Fold(period float64) (FoldedLightCurve, error) {
	if period <= 0 {
		return FoldedLightCurve{}, core.NewNonPositiveError("period", period)
	}
	if lc.Len() == 0 {
		return FoldedLightCurve{}, core.ErrEmptySeries
	}

	epoch := lc.time[0]
	n := lc.Len()
	folded := FoldedLightCurve{
		phase:   make([]float64, n),
		flux:    append([]float64(nil), lc.flux...),
		fluxErr: append([]float64(nil), lc.fluxErr...),
		period:  period,
	}
	for i, t := range lc.time {
		folded.phase[i] = foldPhase(t-epoch, period)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return folded.phase[idx[a]] < folded.phase[idx[b]] })

	sorted := FoldedLightCurve{
		phase:   make([]float64, n),
		flux:    make([]float64, n),
		fluxErr: make([]float64, n),
		period:  period,
	}
	for i, j := range idx {
		sorted.phase[i] = folded.phase[j]
		sorted.flux[i] = folded.flux[j]
		sorted.fluxErr[i] = folded.fluxErr[j]
	}
	return sorted, nil
}

// foldPhase maps an elapsed time onto [-period/2, period/2).
func foldPhase(dt, period float64) float64 {
	p := math.Mod(dt+period/2, period)
	if p < 0 {
		p += period
	}
	return p - period/2
}

// Len returns the number of folded samples.
func (f FoldedLightCurve) Len() int { return len(f.phase) }

// Period returns the fold period in days.
func (f FoldedLightCurve) Period() float64 { return f.period }

// Phases returns a copy of the phase column.
func (f FoldedLightCurve) Phases() []float64 { return append([]float64(nil), f.phase...) }

// Fluxes returns a copy of the flux column.
func (f FoldedLightCurve) Fluxes() []float64 { return append([]float64(nil), f.flux...) }

// FluxErrs returns a copy of the flux error column.
func (f FoldedLightCurve) FluxErrs() []float64 { return append([]float64(nil), f.fluxErr...) }

// Bin averages the folded series into fixed width phase bins
// (binSize in days). Empty bins are skipped; each kept bin carries the
// mean flux, the bin center phase, and the standard error of the mean.
// The receiver is unchanged.
func (f FoldedLightCurve) Bin(binSize float64) (FoldedLightCurve, error) {
	if binSize <= 0 {
		return FoldedLightCurve{}, core.NewNonPositiveError("bin_size", binSize)
	}
	if f.Len() == 0 {
		return FoldedLightCurve{}, core.ErrEmptySeries
	}

	start := -f.period / 2
	nBins := int(math.Ceil(f.period / binSize))
	if nBins < 1 {
		nBins = 1
	}

	type bucket struct {
		flux []float64
		errs []float64
	}
	buckets := make([]bucket, nBins)
	for i := range f.phase {
		b := int((f.phase[i] - start) / binSize)
		if b < 0 {
			b = 0
		}
		if b >= nBins {
			b = nBins - 1
		}
		buckets[b].flux = append(buckets[b].flux, f.flux[i])
		buckets[b].errs = append(buckets[b].errs, f.fluxErr[i])
	}

	out := FoldedLightCurve{period: f.period}
	for b := range buckets {
		if len(buckets[b].flux) == 0 {
			continue
		}
		mean, err := stats.Mean(buckets[b].flux)
		if err != nil {
			continue
		}
		out.phase = append(out.phase, start+(float64(b)+0.5)*binSize)
		out.flux = append(out.flux, mean)
		out.fluxErr = append(out.fluxErr, binError(buckets[b].errs))
	}
	return out, nil
}

// binError propagates per-sample errors into a standard error of the
// bin mean over the finite entries.
func binError(errs []float64) float64 {
	var (
		sumSq float64
		n     int
	)
	for _, e := range errs {
		if math.IsNaN(e) {
			continue
		}
		sumSq += e * e
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq) / float64(n)
}
