package ports

import (
	"lightlab/domain/run"
)

// FigureRendererPort turns a pipeline result into an encoded figure.
// The renderer owns figure resources for exactly one call: each Render
// builds a fresh figure and returns its bytes, nothing is retained
// between runs. Render must not panic on a not-found result; it draws
// the placeholder frame instead.
type FigureRendererPort interface {
	Render(res run.Result) ([]byte, error)
}
