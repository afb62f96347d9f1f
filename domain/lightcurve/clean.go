package lightcurve

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultOutlierSigma is the clipping threshold used by the reference
// pipeline.
const DefaultOutlierSigma = 5.0

// madToSigma rescales a median absolute deviation to the standard
// deviation of a normal distribution.
const madToSigma = 1.4826

// RemoveNaNs returns a new series without samples whose time or flux
// is NaN.
func (lc LightCurve) RemoveNaNs() LightCurve {
	out := LightCurve{
		time:    make([]float64, 0, lc.Len()),
		flux:    make([]float64, 0, lc.Len()),
		fluxErr: make([]float64, 0, lc.Len()),
	}
	for i := range lc.time {
		if math.IsNaN(lc.time[i]) || math.IsNaN(lc.flux[i]) {
			continue
		}
		out.time = append(out.time, lc.time[i])
		out.flux = append(out.flux, lc.flux[i])
		out.fluxErr = append(out.fluxErr, lc.fluxErr[i])
	}
	return out
}

// RemoveOutliers sigma-clips the flux column around its median using a
// MAD-derived sigma, which keeps deep but narrow astrophysical signal
// from dragging the threshold the way a plain standard deviation
// would. Samples farther than sigma deviations are dropped. NaNs are
// dropped too, so RemoveNaNs().RemoveOutliers(s) and RemoveOutliers(s)
// agree on finite samples.
func (lc LightCurve) RemoveOutliers(sigma float64) LightCurve {
	clean := lc.RemoveNaNs()
	if clean.Len() == 0 || sigma <= 0 {
		return clean
	}

	med, err := stats.Median(clean.flux)
	if err != nil {
		return clean
	}
	mad, err := stats.MedianAbsoluteDeviation(clean.flux)
	if err != nil {
		return clean
	}
	scale := mad * madToSigma
	if scale == 0 {
		// Perfectly flat series: nothing can be an outlier.
		return clean
	}

	out := LightCurve{
		time:    make([]float64, 0, clean.Len()),
		flux:    make([]float64, 0, clean.Len()),
		fluxErr: make([]float64, 0, clean.Len()),
	}
	limit := sigma * scale
	for i := range clean.time {
		if math.Abs(clean.flux[i]-med) > limit {
			continue
		}
		out.time = append(out.time, clean.time[i])
		out.flux = append(out.flux, clean.flux[i])
		out.fluxErr = append(out.fluxErr, clean.fluxErr[i])
	}
	return out
}

func median(v []float64) float64 {
	m, err := stats.Median(v)
	if err != nil {
		return math.NaN()
	}
	return m
}
