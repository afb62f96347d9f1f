// Package observation models raw pixel-level data as it comes back
// from the archive, before any lightcurve processing.
package observation

import (
	"math"

	"lightlab/domain/core"
	"lightlab/domain/lightcurve"
)

// TargetPixelFile is a stack of small pixel images, one per cadence,
// together with the pipeline aperture mask chosen by the mission.
type TargetPixelFile struct {
	// Target is the canonical query string this observation answers.
	Target string
	// Width and Height are the pixel stamp dimensions.
	Width, Height int
	// Time holds one BKJD timestamp per cadence.
	Time []float64
	// Quality holds the mission quality flags per cadence; nonzero
	// means the cadence is compromised.
	Quality []int32
	// Flux holds one row-major Width*Height image per cadence,
	// electrons per second.
	Flux [][]float32
	// FluxErr mirrors Flux with per-pixel uncertainties. May be nil
	// when the product carries none.
	FluxErr [][]float32
	// PipelineMask marks the pixels the mission pipeline summed for
	// its own photometry, row-major.
	PipelineMask []bool
}

// Validate checks the stamp geometry is internally consistent.
func (t *TargetPixelFile) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return core.ErrBadAperture
	}
	if len(t.PipelineMask) != t.Width*t.Height {
		return core.ErrBadAperture
	}
	if len(t.Time) != len(t.Flux) || len(t.Time) != len(t.Quality) {
		return core.ErrLengthMismatch
	}
	if t.FluxErr != nil && len(t.FluxErr) != len(t.Time) {
		return core.ErrLengthMismatch
	}
	for _, img := range t.Flux {
		if len(img) != t.Width*t.Height {
			return core.ErrBadAperture
		}
	}
	return nil
}

// ToLightCurve performs aperture photometry over the pipeline mask:
// per cadence, the masked pixels are summed into a single flux value
// and their uncertainties added in quadrature. Cadences with nonzero
// quality flags are dropped; cadences whose masked pixels are all NaN
// yield a NaN sample (cleaned later, not here).
func (t *TargetPixelFile) ToLightCurve() (lightcurve.LightCurve, error) {
	if err := t.Validate(); err != nil {
		return lightcurve.LightCurve{}, err
	}

	times := make([]float64, 0, len(t.Time))
	fluxes := make([]float64, 0, len(t.Time))
	errors := make([]float64, 0, len(t.Time))

	for i := range t.Time {
		if t.Quality[i] != 0 {
			continue
		}
		sum := 0.0
		varSum := 0.0
		seen := false
		for p, inMask := range t.PipelineMask {
			if !inMask {
				continue
			}
			v := float64(t.Flux[i][p])
			if math.IsNaN(v) {
				continue
			}
			sum += v
			seen = true
			if t.FluxErr != nil {
				e := float64(t.FluxErr[i][p])
				if !math.IsNaN(e) {
					varSum += e * e
				}
			}
		}
		times = append(times, t.Time[i])
		if !seen {
			fluxes = append(fluxes, math.NaN())
			errors = append(errors, math.NaN())
			continue
		}
		fluxes = append(fluxes, sum)
		errors = append(errors, math.Sqrt(varSum))
	}

	if len(times) == 0 {
		return lightcurve.LightCurve{}, core.ErrEmptySeries
	}
	return lightcurve.New(times, fluxes, errors)
}
