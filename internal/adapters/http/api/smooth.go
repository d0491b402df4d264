package api

import (
	"net/http"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/types"
)

// SmoothHandler handles POST /v1/smooth.
type SmoothHandler struct {
	handlerBase
	deps Dependencies
}

// HandleSmooth returns a smoothed copy of the posted points.
func (h *SmoothHandler) HandleSmooth(w http.ResponseWriter, r *http.Request) {
	const op = "api.smooth"
	if !allow(w, r, op, http.MethodPost) {
		return
	}

	var req types.SmoothRequest
	if err := h.decode(w, r, op, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	precision := h.deps.DefaultPrecision()
	if req.Precision != nil {
		precision = *req.Precision
	}

	out, err := h.deps.Smooth(r.Context(), geometry.Stroke(req.Points), precision)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if out == nil {
		out = geometry.Stroke{}
	}
	writeJSON(w, http.StatusOK, types.SmoothResponse{Points: out})
}
