package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/fplkit/planner/internal/usecase"
)

type backtestRequest struct {
	EntryID   int `json:"entry_id" validate:"required,gt=0"`
	Gameweeks int `json:"gameweeks" validate:"omitempty,gt=0"`
}

func (h *Handler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBacktest")
	defer span.End()

	var req backtestRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Gameweeks == 0 {
		req.Gameweeks = h.backtestLookback
	}

	results, err := h.backtestService.Replay(ctx, req.EntryID, req.Gameweeks)
	if err != nil {
		h.logger.WarnContext(ctx, "backtest failed", "entry_id", req.EntryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	var predicted, actual float64
	for _, gw := range results {
		predicted += gw.PredictedPoints
		actual += gw.ActualPoints
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"entry_id":        req.EntryID,
		"gameweeks":       results,
		"total_predicted": predicted,
		"total_actual":    actual,
	})
}
