package lightcurve

import (
	"math"

	"lightlab/domain/core"
)

// LightCurve is an ordered series of (time, flux, flux_err) samples.
// Times are mission days (BKJD). Values are never mutated in place:
// every transformation returns a freshly allocated series and leaves
// the receiver unchanged.
type LightCurve struct {
	time    []float64
	flux    []float64
	fluxErr []float64
}

// New builds a LightCurve from parallel columns. The input slices are
// copied so later caller-side mutation cannot reach into the series.
func New(time, flux, fluxErr []float64) (LightCurve, error) {
	if len(time) != len(flux) {
		return LightCurve{}, core.ErrLengthMismatch
	}
	if fluxErr != nil && len(fluxErr) != len(time) {
		return LightCurve{}, core.ErrLengthMismatch
	}
	lc := LightCurve{
		time: append([]float64(nil), time...),
		flux: append([]float64(nil), flux...),
	}
	if fluxErr != nil {
		lc.fluxErr = append([]float64(nil), fluxErr...)
	} else {
		lc.fluxErr = make([]float64, len(time))
	}
	return lc, nil
}

// Len returns the number of samples.
func (lc LightCurve) Len() int { return len(lc.time) }

// Times returns a copy of the time column.
func (lc LightCurve) Times() []float64 { return append([]float64(nil), lc.time...) }

// Fluxes returns a copy of the flux column.
func (lc LightCurve) Fluxes() []float64 { return append([]float64(nil), lc.flux...) }

// FluxErrs returns a copy of the flux error column.
func (lc LightCurve) FluxErrs() []float64 { return append([]float64(nil), lc.fluxErr...) }

// Sample returns one sample by index.
func (lc LightCurve) Sample(i int) (t, f, ferr float64) {
	return lc.time[i], lc.flux[i], lc.fluxErr[i]
}

// Span returns the baseline, last time minus first time.
func (lc LightCurve) Span() float64 {
	if len(lc.time) < 2 {
		return 0
	}
	return lc.time[len(lc.time)-1] - lc.time[0]
}

// MedianCadence estimates the typical sampling step from consecutive
// time differences.
func (lc LightCurve) MedianCadence() float64 {
	if len(lc.time) < 2 {
		return 0
	}
	diffs := make([]float64, 0, len(lc.time)-1)
	for i := 1; i < len(lc.time); i++ {
		d := lc.time[i] - lc.time[i-1]
		if !math.IsNaN(d) && d > 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return 0
	}
	return median(diffs)
}
