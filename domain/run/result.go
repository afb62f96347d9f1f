// Package run defines the parameter and result types of one pipeline
// run. Outcomes are explicit values rather than raised errors so every
// caller has to handle found, not-found and failed deliberately.
package run

import (
	"lightlab/domain/core"
	"lightlab/domain/lightcurve"
	"lightlab/domain/periodogram"
)

// Params fully determines a pipeline run together with the immutable
// catalog and the archive's current content.
type Params struct {
	Identifier core.TargetID
	// TrialPeriod is the fold period in days, > 0.
	TrialPeriod float64
	// BinSize is the phase bin width in days, > 0.
	BinSize float64
}

// Validate rejects non-positive numeric parameters.
func (p Params) Validate() error {
	if _, err := core.ParseTargetID(p.Identifier.String()); err != nil {
		return core.NewValidationError("identifier", err.Error())
	}
	if p.TrialPeriod <= 0 {
		return core.NewNonPositiveError("trial_period", p.TrialPeriod)
	}
	if p.BinSize <= 0 {
		return core.NewNonPositiveError("bin_size", p.BinSize)
	}
	return nil
}

// Outcome tags a Result.
type Outcome string

const (
	// OutcomeFound means the pipeline produced a full result.
	OutcomeFound Outcome = "found"
	// OutcomeNotFound means the archive has no observation for the
	// target. Recovered locally: the figure shows a placeholder.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means some collaborator failed in a way the
	// pipeline does not absorb.
	OutcomeFailed Outcome = "failed"
)

// Result is the pipeline output for one Params value.
type Result struct {
	ID      core.RunID
	Params  Params
	Outcome Outcome

	// Err carries the failure when Outcome is OutcomeFailed.
	Err error

	// The fields below are meaningful only when Outcome is
	// OutcomeFound.
	Raw         lightcurve.LightCurve
	Folded      lightcurve.FoldedLightCurve
	Binned      lightcurve.FoldedLightCurve
	Periodogram periodogram.Periodogram
	// PeriodAtMaxPower is the detected period in days.
	PeriodAtMaxPower float64
	// LiteraturePeriod is the catalog value in days when
	// HasLiterature is set.
	LiteraturePeriod float64
	HasLiterature    bool
}

// Found reports whether the run produced a full result.
func (r Result) Found() bool { return r.Outcome == OutcomeFound }
