package archive

import (
	"bytes"
	"fmt"
	"math"

	"lightlab/domain/core"
	"lightlab/domain/observation"
	"lightlab/internal/errors"
	"lightlab/internal/fits"
)

// Kepler target pixel file layout.
const (
	extTargetTables = "TARGETTABLES"
	extAperture     = "APERTURE"

	colTime    = "TIME"
	colQuality = "QUALITY"
	colFlux    = "FLUX"
	colFluxErr = "FLUX_ERR"
)

// apertureOptimalBit flags pixels the mission pipeline summed for its
// own photometry.
const apertureOptimalBit = 1 << 1

// decodeTargetPixelFile parses a Kepler target pixel FITS product into
// the observation model.
func decodeTargetPixelFile(target string, raw []byte) (*observation.TargetPixelFile, error) {
	f, err := fits.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.DecodeError("bad FITS payload", err)
	}

	tableHDU, ok := f.Extension(extTargetTables)
	if !ok {
		return nil, errors.DecodeError("pixel table missing", fmt.Errorf("%w: %s", core.ErrBadColumn, extTargetTables))
	}
	table, err := fits.NewBinTable(tableHDU)
	if err != nil {
		return nil, errors.DecodeError("bad pixel table", err)
	}

	times, err := table.Float64s(colTime)
	if err != nil {
		return nil, errors.DecodeError("bad TIME column", err)
	}
	quality, err := table.Int32s(colQuality)
	if err != nil {
		return nil, errors.DecodeError("bad QUALITY column", err)
	}
	flux, err := table.Float32Arrays(colFlux)
	if err != nil {
		return nil, errors.DecodeError("bad FLUX column", err)
	}
	// FLUX_ERR is optional in practice; older products omit it.
	fluxErr, err := table.Float32Arrays(colFluxErr)
	if err != nil {
		fluxErr = nil
	}

	apertureHDU, ok := f.Extension(extAperture)
	if !ok {
		return nil, errors.DecodeError("aperture extension missing", fmt.Errorf("%w: %s", core.ErrBadColumn, extAperture))
	}
	width, height, pixels, err := apertureHDU.Int32Image()
	if err != nil {
		return nil, errors.DecodeError("bad aperture image", err)
	}

	mask := make([]bool, len(pixels))
	for i, p := range pixels {
		mask[i] = p&apertureOptimalBit != 0
	}

	tpf := &observation.TargetPixelFile{
		Target:       target,
		Width:        width,
		Height:       height,
		Time:         times,
		Quality:      quality,
		Flux:         flux,
		FluxErr:      fluxErr,
		PipelineMask: mask,
	}
	// Cadences with no timestamp are unusable; mark them NaN so the
	// cleaning stage drops them.
	for i, t := range tpf.Time {
		if t == 0 {
			tpf.Time[i] = math.NaN()
		}
	}
	if err := tpf.Validate(); err != nil {
		return nil, errors.DecodeError("inconsistent pixel file", err)
	}
	return tpf, nil
}
