package lightcurve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"lightlab/domain/core"
)

// DefaultFlattenWindow matches the reference smoothing window used for
// Kepler long cadence data: 401 cadences of roughly 30 minutes, about
// 8 days of baseline per fit.
const DefaultFlattenWindow = 401

const flattenPolyOrder = 2

// Flatten removes slow instrumental trends by dividing the series by a
// Savitzky-Golay style local quadratic fit evaluated at each sample.
// window is the fit width in cadences and is forced odd. Gaps and NaN
// samples are skipped inside each window rather than poisoning it, so
// a stray NaN only stays NaN for its own sample. The receiver is left
// untouched.
func (lc LightCurve) Flatten(window int) (LightCurve, error) {
	if lc.Len() == 0 {
		return LightCurve{}, core.ErrEmptySeries
	}
	if window < flattenPolyOrder+2 {
		return LightCurve{}, core.NewValidationError("window", "too small for quadratic fit")
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	n := lc.Len()
	out := LightCurve{
		time:    append([]float64(nil), lc.time...),
		flux:    make([]float64, n),
		fluxErr: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(lc.flux[i]) || math.IsNaN(lc.time[i]) {
			out.flux[i] = math.NaN()
			out.fluxErr[i] = math.NaN()
			continue
		}
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		trend := localQuadratic(lc.time[lo:hi+1], lc.flux[lo:hi+1], lc.time[i])
		if trend == 0 || math.IsNaN(trend) {
			out.flux[i] = math.NaN()
			out.fluxErr[i] = math.NaN()
			continue
		}
		out.flux[i] = lc.flux[i] / trend
		out.fluxErr[i] = lc.fluxErr[i] / math.Abs(trend)
	}
	return out, nil
}

// localQuadratic fits flux = a + b*x + c*x^2 over the window by least
// squares and evaluates the fit at t0. Times are shifted to t0 before
// building the normal equations to keep them well conditioned. NaN
// samples are skipped; with fewer than three usable points the window
// mean (or NaN) is returned instead.
func localQuadratic(times, fluxes []float64, t0 float64) float64 {
	var (
		s0, s1, s2, s3, s4 float64
		b0, b1, b2         float64
		count              int
		sum                float64
	)
	for k := range times {
		y := fluxes[k]
		if math.IsNaN(y) || math.IsNaN(times[k]) {
			continue
		}
		x := times[k] - t0
		x2 := x * x
		s0++
		s1 += x
		s2 += x2
		s3 += x2 * x
		s4 += x2 * x2
		b0 += y
		b1 += y * x
		b2 += y * x2
		count++
		sum += y
	}
	if count == 0 {
		return math.NaN()
	}
	if count <= flattenPolyOrder {
		return sum / float64(count)
	}

	a := mat.NewDense(3, 3, []float64{
		s0, s1, s2,
		s1, s2, s3,
		s2, s3, s4,
	})
	b := mat.NewVecDense(3, []float64{b0, b1, b2})
	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		// Degenerate window (e.g. identical timestamps); fall back to
		// the mean level.
		return sum / float64(count)
	}
	// Evaluated at x = 0 only the constant term survives.
	return coef.AtVec(0)
}
