package observation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByOne builds a 2x1 stamp with both pixels in the mask unless
// overridden.
func twoByOne() *TargetPixelFile {
	return &TargetPixelFile{
		Target: "KIC 8758161",
		Width:  2,
		Height: 1,
		Time:   []float64{120.0, 120.02, 120.04},
		Quality: []int32{0, 0, 0},
		Flux: [][]float32{
			{10, 1},
			{20, 2},
			{30, 3},
		},
		FluxErr: [][]float32{
			{3, 4},
			{3, 4},
			{3, 4},
		},
		PipelineMask: []bool{true, true},
	}
}

func TestToLightCurve_SumsMaskedPixels(t *testing.T) {
	tpf := twoByOne()
	lc, err := tpf.ToLightCurve()
	require.NoError(t, err)

	assert.Equal(t, []float64{11, 22, 33}, lc.Fluxes())
	// Quadrature: sqrt(9+16) = 5.
	for _, e := range lc.FluxErrs() {
		assert.InDelta(t, 5.0, e, 1e-9)
	}
}

func TestToLightCurve_MaskExcludesPixels(t *testing.T) {
	tpf := twoByOne()
	tpf.PipelineMask = []bool{true, false}

	lc, err := tpf.ToLightCurve()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, lc.Fluxes())
}

func TestToLightCurve_DropsFlaggedCadences(t *testing.T) {
	tpf := twoByOne()
	tpf.Quality[1] = 16

	lc, err := tpf.ToLightCurve()
	require.NoError(t, err)
	assert.Equal(t, 2, lc.Len())
	assert.Equal(t, []float64{120.0, 120.04}, lc.Times())
}

func TestToLightCurve_AllNaNCadenceStaysNaN(t *testing.T) {
	tpf := twoByOne()
	nan := float32(math.NaN())
	tpf.Flux[1] = []float32{nan, nan}

	lc, err := tpf.ToLightCurve()
	require.NoError(t, err)
	require.Equal(t, 3, lc.Len())
	assert.True(t, math.IsNaN(lc.Fluxes()[1]))
	assert.False(t, math.IsNaN(lc.Fluxes()[0]))
}

func TestToLightCurve_PartialNaNSkipsPixel(t *testing.T) {
	tpf := twoByOne()
	tpf.Flux[0] = []float32{float32(math.NaN()), 7}

	lc, err := tpf.ToLightCurve()
	require.NoError(t, err)
	assert.InDelta(t, 7.0, lc.Fluxes()[0], 1e-9)
}

func TestValidate_Geometry(t *testing.T) {
	tpf := twoByOne()
	tpf.PipelineMask = []bool{true}
	assert.Error(t, tpf.Validate())

	tpf = twoByOne()
	tpf.Quality = []int32{0}
	assert.Error(t, tpf.Validate())

	tpf = twoByOne()
	tpf.Flux[2] = []float32{1}
	assert.Error(t, tpf.Validate())

	assert.NoError(t, twoByOne().Validate())
}

func TestToLightCurve_AllFlaggedIsError(t *testing.T) {
	tpf := twoByOne()
	tpf.Quality = []int32{1, 1, 1}
	_, err := tpf.ToLightCurve()
	assert.Error(t, err)
}
