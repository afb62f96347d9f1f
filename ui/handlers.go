package ui

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/gomarkdown/markdown"

	"lightlab/domain/core"
	"lightlab/domain/run"
	"lightlab/ports"
)

func templateHTML(b []byte) template.HTML { return template.HTML(b) }

// indexData feeds the index template.
type indexData struct {
	Identifiers []string
	Identifier  string
	TrialPeriod float64
	BinSize     float64
}

// handleIndex renders the control surface. The page pre-populates the
// first catalog identifier and the default fold parameters, and its
// image tag immediately requests the initial figure, so a figure
// appears without any interaction.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	ids := a.service.Catalog().Identifiers()
	data := indexData{
		Identifiers: ids,
		TrialPeriod: DefaultTrialPeriod,
		BinSize:     DefaultBinSize,
	}
	if len(ids) > 0 {
		data.Identifier = ids[0]
	}
	if err := a.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("[UI] index template failed: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleFigure runs the pipeline for the requested parameters and
// serves the resulting PNG. Every committed control change lands here
// exactly once.
func (a *App) handleFigure(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fig, err := a.service.RunAndRender(r.Context(), params)
	if err != nil {
		// A superseded run's context gets cancelled; the browser has
		// already abandoned this request.
		if r.Context().Err() != nil {
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(fig.PNG); err != nil {
		log.Printf("[UI] figure write failed: %v", err)
	}
}

func parseParams(r *http.Request) (run.Params, error) {
	q := r.URL.Query()

	id, err := core.ParseTargetID(q.Get("identifier"))
	if err != nil {
		return run.Params{}, err
	}

	period := DefaultTrialPeriod
	if raw := q.Get("period"); raw != "" {
		period, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return run.Params{}, core.NewValidationError("period", err.Error())
		}
	}

	binSize := DefaultBinSize
	if raw := q.Get("bin"); raw != "" {
		binSize, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return run.Params{}, core.NewValidationError("bin", err.Error())
		}
	}

	params := run.Params{Identifier: id, TrialPeriod: period, BinSize: binSize}
	return params, params.Validate()
}

// handleIdentifiers serves the selectable identifier list as JSON.
func (a *App) handleIdentifiers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.service.Catalog().Identifiers()); err != nil {
		log.Printf("[UI] identifiers encode failed: %v", err)
	}
}

// handleRuns serves recent ledger history as JSON; an empty list when
// no ledger is configured.
func (a *App) handleRuns(w http.ResponseWriter, r *http.Request) {
	records, err := a.service.RecentRuns(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if records == nil {
		records = []ports.RunRecord{}
	}
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.Printf("[UI] runs encode failed: %v", err)
	}
}

// handleMethod renders the embedded method notes from markdown.
func (a *App) handleMethod(w http.ResponseWriter, r *http.Request) {
	src, err := embeddedFiles.ReadFile("docs/method.md")
	if err != nil {
		http.Error(w, "method notes unavailable", http.StatusNotFound)
		return
	}
	body := markdown.ToHTML(src, nil, nil)
	if err := a.templates.ExecuteTemplate(w, "method.html", map[string]interface{}{
		"Body": templateHTML(body),
	}); err != nil {
		log.Printf("[UI] method template failed: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
