// Package testkit builds synthetic observations for tests: FITS
// target pixel files with known signals, so pipeline behavior can be
// checked against analytically known answers without touching the
// network.
package testkit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	fitsBlock = 2880
	fitsCard  = 80
)

// TPFSpec describes a synthetic 3x3 target pixel file. The signal
// lives in the center pixel; the mission aperture mask selects the
// center pixel only.
type TPFSpec struct {
	Time    []float64
	Flux    []float64 // center pixel flux per cadence
	Quality []int32   // nil means all good
}

// SineSeries generates n cadences spaced dt days apart carrying
// level + amp*sin(2*pi*t/period).
func SineSeries(n int, dt, period, level, amp float64) (times, flux []float64) {
	times = make([]float64, n)
	flux = make([]float64, n)
	// Offset into a plausible BKJD range; a zero timestamp means a
	// missing cadence in real products.
	const start = 120.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		times[i] = start + t
		flux[i] = level + amp*math.Sin(2*math.Pi*t/period)
	}
	return times, flux
}

// BuildTargetPixelFITS encodes the spec as a Kepler-shaped FITS file:
// an empty primary HDU, a TARGETTABLES binary table with TIME,
// QUALITY, FLUX and FLUX_ERR columns, and a 3x3 APERTURE image whose
// center pixel carries the optimal-aperture bit.
func BuildTargetPixelFITS(spec TPFSpec) []byte {
	n := len(spec.Time)
	quality := spec.Quality
	if quality == nil {
		quality = make([]int32, n)
	}

	var buf bytes.Buffer

	// Primary HDU: header only.
	writeHeader(&buf, []string{
		card("SIMPLE", "T"),
		card("BITPIX", "8"),
		card("NAXIS", "0"),
	})

	// TARGETTABLES: TIME (1D) + QUALITY (1J) + FLUX (9E) + FLUX_ERR (9E).
	rowLen := 8 + 4 + 9*4 + 9*4
	writeHeader(&buf, []string{
		card("XTENSION", "'BINTABLE'"),
		card("BITPIX", "8"),
		card("NAXIS", "2"),
		card("NAXIS1", fmt.Sprint(rowLen)),
		card("NAXIS2", fmt.Sprint(n)),
		card("TFIELDS", "4"),
		card("TTYPE1", "'TIME    '"),
		card("TFORM1", "'1D      '"),
		card("TTYPE2", "'QUALITY '"),
		card("TFORM2", "'1J      '"),
		card("TTYPE3", "'FLUX    '"),
		card("TFORM3", "'9E      '"),
		card("TTYPE4", "'FLUX_ERR'"),
		card("TFORM4", "'9E      '"),
		card("EXTNAME", "'TARGETTABLES'"),
	})
	var data bytes.Buffer
	for i := 0; i < n; i++ {
		binary.Write(&data, binary.BigEndian, spec.Time[i])
		binary.Write(&data, binary.BigEndian, quality[i])
		for p := 0; p < 9; p++ {
			v := float32(math.NaN())
			if p == 4 {
				v = float32(spec.Flux[i])
			}
			binary.Write(&data, binary.BigEndian, v)
		}
		for p := 0; p < 9; p++ {
			binary.Write(&data, binary.BigEndian, float32(0.001))
		}
	}
	writeData(&buf, data.Bytes())

	// APERTURE: 3x3 int32 image, center pixel in the optimal aperture.
	writeHeader(&buf, []string{
		card("XTENSION", "'IMAGE   '"),
		card("BITPIX", "32"),
		card("NAXIS", "2"),
		card("NAXIS1", "3"),
		card("NAXIS2", "3"),
		card("EXTNAME", "'APERTURE'"),
	})
	var aperture bytes.Buffer
	for p := 0; p < 9; p++ {
		v := int32(1)
		if p == 4 {
			v = 3 // collected + optimal aperture
		}
		binary.Write(&aperture, binary.BigEndian, v)
	}
	writeData(&buf, aperture.Bytes())

	return buf.Bytes()
}

func card(key, value string) string {
	c := fmt.Sprintf("%-8s= %20s", key, value)
	if len(c) > fitsCard {
		c = c[:fitsCard]
	}
	return c + string(bytes.Repeat([]byte{' '}, fitsCard-len(c)))
}

func writeHeader(buf *bytes.Buffer, cards []string) {
	for _, c := range cards {
		buf.WriteString(c)
	}
	end := fmt.Sprintf("%-80s", "END")
	buf.WriteString(end)
	written := (len(cards) + 1) * fitsCard
	pad := (fitsBlock - written%fitsBlock) % fitsBlock
	buf.Write(bytes.Repeat([]byte{' '}, pad))
}

func writeData(buf *bytes.Buffer, data []byte) {
	buf.Write(data)
	pad := (fitsBlock - len(data)%fitsBlock) % fitsBlock
	buf.Write(bytes.Repeat([]byte{0}, pad))
}
