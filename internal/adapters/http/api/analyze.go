package api

import (
	"net/http"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/types"
)

// AnalyzeHandler handles POST /v1/analyze.
type AnalyzeHandler struct {
	handlerBase
	deps Dependencies
}

// HandleAnalyze returns stroke diagnostics against the posted circle.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if !allow(w, r, op, http.MethodPost) {
		return
	}

	var req types.AnalyzeRequest
	if err := h.decode(w, r, op, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	d, err := h.deps.Analyze(r.Context(), geometry.Stroke(req.Stroke), req.Circle)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.AnalyzeResponse(d))
}
