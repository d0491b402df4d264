package api

import (
	"net/http"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/internal/domain/types"
)

// ScoreHandler handles POST /v1/score and POST /v1/score/batch.
type ScoreHandler struct {
	handlerBase
	deps Dependencies
}

// HandleScore scores one attempt synchronously.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if !allow(w, r, op, http.MethodPost) {
		return
	}

	var req types.ScoreRequest
	if err := h.decode(w, r, op, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	scores, err := h.deps.Score(r.Context(), toAttempt(&req))
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.ScoreResponse{AttemptID: req.AttemptID, Subscores: scores})
}

// HandleBatch scores a batch of attempts on the worker pool.
func (h *ScoreHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_batch"
	if !allow(w, r, op, http.MethodPost) {
		return
	}

	var req types.BatchRequest
	if err := h.decode(w, r, op, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	attempts := make([]model.Attempt, len(req.Attempts))
	for i := range req.Attempts {
		attempts[i] = toAttempt(&req.Attempts[i])
	}

	batch, err := h.deps.ScoreBatch(r.Context(), attempts)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}

	resp := types.BatchResponse{BatchID: batch.ID, Results: make([]types.BatchResult, len(batch.Results))}
	for i, res := range batch.Results {
		out := types.BatchResult{AttemptID: res.AttemptID}
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else {
			scores := res.Scores
			out.Scores = &scores
		}
		resp.Results[i] = out
	}
	writeJSON(w, http.StatusOK, resp)
}

func toAttempt(req *types.ScoreRequest) model.Attempt {
	difficulty := scoring.DefaultDifficulty
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}
	return model.Attempt{
		ID:         req.AttemptID,
		Stroke:     geometry.Stroke(req.Stroke),
		Circle:     req.Circle,
		Difficulty: difficulty,
		Penalty:    req.Penalty,
		Thresholds: req.Thresholds,
	}
}
