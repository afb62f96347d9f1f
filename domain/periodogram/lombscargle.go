package periodogram

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lightlab/domain/core"
	"lightlab/domain/lightcurve"
)

// DefaultOversample controls the density of the frequency grid
// relative to the natural resolution 1/baseline.
const DefaultOversample = 5

// Periodogram is an ordered sequence of (frequency, power) pairs over
// an unevenly sampled lightcurve, plus the derived peak location.
// Frequencies are cycles per day, powers use the standard Lomb-Scargle
// normalization (chi-squared around the mean), so they fall in [0, 1].
type Periodogram struct {
	freq  []float64
	power []float64

	peakIdx int
}

// FromLightCurve computes a Lomb-Scargle periodogram of the clean,
// unfolded series. The frequency grid spans 1/baseline up to the
// pseudo-Nyquist frequency 1/(2 * median cadence), oversampled by the
// given factor (DefaultOversample when <= 0).
func FromLightCurve(lc lightcurve.LightCurve, oversample int) (Periodogram, error) {
	if lc.Len() < 3 {
		return Periodogram{}, core.ErrInsufficientData
	}
	if oversample <= 0 {
		oversample = DefaultOversample
	}

	times := lc.Times()
	flux := lc.Fluxes()

	span := lc.Span()
	cadence := lc.MedianCadence()
	if span <= 0 || cadence <= 0 {
		return Periodogram{}, core.ErrInsufficientData
	}

	fMin := 1 / span
	fMax := 1 / (2 * cadence)
	if fMax <= fMin {
		return Periodogram{}, core.ErrInsufficientData
	}
	nFreq := int(float64(oversample) * span * (fMax - fMin))
	if nFreq < 2 {
		nFreq = 2
	}

	freq := make([]float64, nFreq)
	floats.Span(freq, fMin, fMax)

	power := lombScargle(times, flux, freq)

	p := Periodogram{freq: freq, power: power}
	p.peakIdx = floats.MaxIdx(power)
	return p, nil
}

// lombScargle evaluates the classic Lomb normal periodogram with the
// tau phase shift, normalized by the sample variance.
func lombScargle(t, y, freq []float64) []float64 {
	n := len(y)
	mean, variance := stat.MeanVariance(y, nil)

	resid := make([]float64, n)
	for i := range y {
		resid[i] = y[i] - mean
	}

	power := make([]float64, len(freq))
	if variance == 0 {
		return power
	}
	// Standard normalization: divide by the total residual sum of
	// squares so a pure sinusoid approaches power 1.
	norm := 1 / (float64(n-1) * variance)

	for k, f := range freq {
		omega := 2 * math.Pi * f

		var s2, c2 float64
		for i := range t {
			s, c := math.Sincos(2 * omega * t[i])
			s2 += s
			c2 += c
		}
		tau := math.Atan2(s2, c2) / (2 * omega)

		var cs, cc, ss, sc float64
		for i := range t {
			s, c := math.Sincos(omega * (t[i] - tau))
			cs += resid[i] * c
			sc += resid[i] * s
			cc += c * c
			ss += s * s
		}

		var p float64
		if cc > 0 {
			p += cs * cs / cc
		}
		if ss > 0 {
			p += sc * sc / ss
		}
		power[k] = p * norm
	}
	return power
}

// Len returns the number of frequency samples.
func (p Periodogram) Len() int { return len(p.freq) }

// Frequencies returns a copy of the frequency grid in cycles per day.
func (p Periodogram) Frequencies() []float64 { return append([]float64(nil), p.freq...) }

// Powers returns a copy of the power column.
func (p Periodogram) Powers() []float64 { return append([]float64(nil), p.power...) }

// Periods returns a copy of the grid expressed as periods in days.
func (p Periodogram) Periods() []float64 {
	periods := make([]float64, len(p.freq))
	for i, f := range p.freq {
		periods[i] = 1 / f
	}
	return periods
}

// MaxPower returns the peak power value.
func (p Periodogram) MaxPower() float64 {
	if len(p.power) == 0 {
		return math.NaN()
	}
	return p.power[p.peakIdx]
}

// PeriodAtMaxPower returns the period (days) of the strongest peak.
func (p Periodogram) PeriodAtMaxPower() float64 {
	if len(p.freq) == 0 {
		return math.NaN()
	}
	return 1 / p.freq[p.peakIdx]
}

// FrequencyAtMaxPower returns the frequency (1/day) of the strongest peak.
func (p Periodogram) FrequencyAtMaxPower() float64 {
	if len(p.freq) == 0 {
		return math.NaN()
	}
	return p.freq[p.peakIdx]
}
