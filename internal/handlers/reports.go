package handlers

import (
	"fmt"
	"net/http"
	"time"

	"newsroom/internal/report"
	"newsroom/internal/store"
)

// reportDateLayout is the format for the start and end query parameters.
const reportDateLayout = "2006-01-02"

// Reports groups the administrator-only reporting handlers.
type Reports struct {
	generator *report.Generator
}

// NewReports creates a Reports handler group.
func NewReports(generator *report.Generator) *Reports {
	return &Reports{generator: generator}
}

// Generate computes article statistics over the window given by the
// start and end query parameters (YYYY-MM-DD). Omitted bounds default to
// one month ago and today.
func (h *Reports) Generate(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		respondError(w, err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		respondError(w, err)
		return
	}

	rep, err := h.generator.Generate(start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(reportDateLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q must be a YYYY-MM-DD date", store.ErrValidation, key)
	}
	return &t, nil
}
