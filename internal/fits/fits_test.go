package fits

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightlab/internal/testkit"
)

func parseSynthetic(t *testing.T, n int) *File {
	t.Helper()
	times, flux := testkit.SineSeries(n, 0.02, 1.5, 1000, 10)
	raw := testkit.BuildTargetPixelFITS(testkit.TPFSpec{Time: times, Flux: flux})
	f, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	return f
}

func TestRead_HDULayout(t *testing.T) {
	f := parseSynthetic(t, 8)
	require.Len(t, f.HDUs, 3)

	table, ok := f.Extension("TARGETTABLES")
	require.True(t, ok)
	xt, _ := table.Header.Str("XTENSION")
	assert.Equal(t, "BINTABLE", xt)

	_, ok = f.Extension("APERTURE")
	assert.True(t, ok)

	_, ok = f.Extension("NOSUCH")
	assert.False(t, ok)
}

func TestBinTable_Columns(t *testing.T) {
	f := parseSynthetic(t, 8)
	hdu, ok := f.Extension("TARGETTABLES")
	require.True(t, ok)

	bt, err := NewBinTable(hdu)
	require.NoError(t, err)
	assert.Equal(t, 8, bt.Rows())

	times, err := bt.Float64s("TIME")
	require.NoError(t, err)
	require.Len(t, times, 8)
	assert.InDelta(t, 120.0, times[0], 1e-12)
	assert.InDelta(t, 0.02, times[1]-times[0], 1e-12)

	quality, err := bt.Int32s("QUALITY")
	require.NoError(t, err)
	for _, q := range quality {
		assert.Zero(t, q)
	}

	pix, err := bt.Float32Arrays("FLUX")
	require.NoError(t, err)
	require.Len(t, pix, 8)
	require.Len(t, pix[0], 9)
	// Only the center pixel carries signal.
	assert.False(t, math.IsNaN(float64(pix[0][4])))
	assert.True(t, math.IsNaN(float64(pix[0][0])))

	_, err = bt.Float64s("NOSUCH")
	assert.Error(t, err)
	// Wrong element type for the accessor.
	_, err = bt.Float64s("QUALITY")
	assert.Error(t, err)
}

func TestInt32Image(t *testing.T) {
	f := parseSynthetic(t, 4)
	hdu, ok := f.Extension("APERTURE")
	require.True(t, ok)

	w, h, pixels, err := hdu.Int32Image()
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 3, h)
	require.Len(t, pixels, 9)
	assert.Equal(t, int32(3), pixels[4])
	assert.Equal(t, int32(1), pixels[0])
}

func TestRead_RejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a fits file")))
	assert.Error(t, err)

	_, err = Read(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestNewBinTable_RejectsImageHDU(t *testing.T) {
	f := parseSynthetic(t, 4)
	hdu, ok := f.Extension("APERTURE")
	require.True(t, ok)
	_, err := NewBinTable(hdu)
	assert.Error(t, err)
}
