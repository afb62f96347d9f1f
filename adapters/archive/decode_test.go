package archive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightlab/internal/testkit"
)

func TestDecodeTargetPixelFile(t *testing.T) {
	times, flux := testkit.SineSeries(10, 0.02, 1.5, 1000, 10)
	quality := make([]int32, 10)
	quality[3] = 1024
	raw := testkit.BuildTargetPixelFITS(testkit.TPFSpec{Time: times, Flux: flux, Quality: quality})

	tpf, err := decodeTargetPixelFile("KIC 8758161", raw)
	require.NoError(t, err)

	assert.Equal(t, 3, tpf.Width)
	assert.Equal(t, 3, tpf.Height)
	require.Len(t, tpf.Time, 10)
	assert.Equal(t, int32(1024), tpf.Quality[3])
	require.NotNil(t, tpf.FluxErr)

	// Center pixel flux survives decoding intact.
	assert.InDelta(t, flux[0], float64(tpf.Flux[0][4]), 1e-3)
}

func TestDecodeTargetPixelFile_ZeroTimestampBecomesNaN(t *testing.T) {
	times, flux := testkit.SineSeries(6, 0.02, 1.5, 1000, 10)
	times[2] = 0 // missing cadence marker
	raw := testkit.BuildTargetPixelFITS(testkit.TPFSpec{Time: times, Flux: flux})

	tpf, err := decodeTargetPixelFile("KIC 8758161", raw)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(tpf.Time[2]))
	assert.False(t, math.IsNaN(tpf.Time[1]))
}

func TestDecodeTargetPixelFile_RejectsGarbage(t *testing.T) {
	_, err := decodeTargetPixelFile("KIC 8758161", []byte("junk"))
	assert.Error(t, err)
}
