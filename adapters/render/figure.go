// Package render draws the four-panel diagnostic figure for one
// pipeline run and encodes it as PNG. Each call builds a fresh figure;
// nothing is shared or retained between runs.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"lightlab/domain/run"
)

const (
	figWidth  = 13 * vg.Inch
	figHeight = 6.5 * vg.Inch
)

var (
	rawColor    = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	foldColor   = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0x80}
	binColor    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	markerColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

// Figure renders pipeline results into the fixed 2x2 panel layout:
// raw series, folded series, periodogram over frequency, periodogram
// over log period with peak markers and the literature annotation.
type Figure struct{}

// NewFigure creates the renderer.
func NewFigure() *Figure {
	return &Figure{}
}

// Render produces the PNG for one result. A not-found result yields
// the same 2x2 frame with empty panels and a visible placeholder
// annotation; it never fails for that case.
func (f *Figure) Render(res run.Result) ([]byte, error) {
	var (
		panels [2][2]*plot.Plot
		err    error
	)
	if res.Found() {
		panels, err = f.resultPanels(res)
	} else {
		panels, err = f.placeholderPanels()
	}
	if err != nil {
		return nil, err
	}
	return encode(panels)
}

func (f *Figure) resultPanels(res run.Result) ([2][2]*plot.Plot, error) {
	var panels [2][2]*plot.Plot

	raw, err := rawPanel(res)
	if err != nil {
		return panels, err
	}
	folded, err := foldedPanel(res)
	if err != nil {
		return panels, err
	}
	freq, err := frequencyPanel(res)
	if err != nil {
		return panels, err
	}
	period, err := periodPanel(res)
	if err != nil {
		return panels, err
	}

	panels[0][0], panels[0][1] = raw, folded
	panels[1][0], panels[1][1] = freq, period
	return panels, nil
}

func (f *Figure) placeholderPanels() ([2][2]*plot.Plot, error) {
	var panels [2][2]*plot.Plot
	titles := [2][2]string{
		{"Lightcurve", "Folded lightcurve"},
		{"Periodogram", "Periodogram (period)"},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			p := plot.New()
			p.Title.Text = titles[i][j]
			// Empty panels need explicit ranges or the axes collapse.
			p.X.Min, p.X.Max = 0, 1
			p.Y.Min, p.Y.Max = 0, 1
			panels[i][j] = p
		}
	}
	note, err := annotation(0.5, 0.5, "Target not found")
	if err != nil {
		return panels, err
	}
	panels[1][1].Add(note)
	return panels, nil
}

func rawPanel(res run.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Lightcurve"
	p.X.Label.Text = "Time (BKJD, days)"
	p.Y.Label.Text = "Normalized flux"

	sc, err := scatter(res.Raw.Times(), res.Raw.Fluxes(), rawColor, 0.8)
	if err != nil {
		return nil, err
	}
	p.Add(sc)
	return p, nil
}

func foldedPanel(res run.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Folded at %.3f d", res.Params.TrialPeriod)
	p.X.Label.Text = "Phase (days)"
	p.Y.Label.Text = "Normalized flux"

	sc, err := scatter(res.Folded.Phases(), res.Folded.Fluxes(), foldColor, 0.8)
	if err != nil {
		return nil, err
	}
	p.Add(sc)

	if res.Binned.Len() > 0 {
		ln, err := line(res.Binned.Phases(), res.Binned.Fluxes(), binColor)
		if err != nil {
			return nil, err
		}
		p.Add(ln)
	}
	return p, nil
}

func frequencyPanel(res run.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Periodogram"
	p.X.Label.Text = "Frequency (1/day)"
	p.Y.Label.Text = "Power"

	ln, err := line(res.Periodogram.Frequencies(), res.Periodogram.Powers(), rawColor)
	if err != nil {
		return nil, err
	}
	p.Add(ln)
	return p, nil
}

func periodPanel(res run.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Periodogram (period)"
	p.X.Label.Text = "Period (days)"
	p.Y.Label.Text = "Power"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	ln, err := line(res.Periodogram.Periods(), res.Periodogram.Powers(), rawColor)
	if err != nil {
		return nil, err
	}
	p.Add(ln)

	peak := res.PeriodAtMaxPower
	top := res.Periodogram.MaxPower() * 1.05
	for _, mark := range []float64{peak, 2 * peak} {
		rule, err := line([]float64{mark, mark}, []float64{0, top}, markerColor)
		if err != nil {
			return nil, err
		}
		rule.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(rule)
	}

	lines := []string{
		fmt.Sprintf("Period at max power: %.4f d", peak),
		fmt.Sprintf("Twice period at max power: %.4f d", 2*peak),
	}
	if res.HasLiterature {
		lines = append(lines, fmt.Sprintf("Period from literature: %.4f d", res.LiteraturePeriod))
	}
	// Stack the annotation lines in the lower right of the panel.
	periods := res.Periodogram.Periods()
	xMax := periods[0]
	for _, v := range periods {
		if v > xMax {
			xMax = v
		}
	}
	for i, text := range lines {
		note, err := annotation(xMax*0.9, top*(0.16-0.05*float64(i)), text)
		if err != nil {
			return nil, err
		}
		p.Add(note)
	}
	return p, nil
}

func scatter(xs, ys []float64, c color.Color, radius float64) (*plotter.Scatter, error) {
	sc, err := plotter.NewScatter(toXYs(xs, ys))
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(radius)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	return sc, nil
}

func line(xs, ys []float64, c color.Color) (*plotter.Line, error) {
	ln, err := plotter.NewLine(toXYs(xs, ys))
	if err != nil {
		return nil, err
	}
	ln.LineStyle.Color = c
	ln.LineStyle.Width = vg.Points(1)
	return ln, nil
}

func annotation(x, y float64, text string) (*plotter.Labels, error) {
	return plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{text},
	})
}

// toXYs pairs the columns, dropping non-finite samples the plotters
// refuse to draw.
func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func encode(panels [2][2]*plot.Plot) ([]byte, error) {
	img := vgimg.New(figWidth, figHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 2,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}

	grid := [][]*plot.Plot{
		{panels[0][0], panels[0][1]},
		{panels[1][0], panels[1][1]},
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		for j := range grid[i] {
			grid[i][j].Draw(canvases[i][j])
		}
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
