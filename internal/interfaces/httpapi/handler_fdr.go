package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/usecase"
)

func (h *Handler) GetDifficultyGrid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDifficultyGrid")
	defer span.End()

	horizon, err := queryInt(r, "horizon", 0)
	if err != nil || horizon < 0 {
		writeError(ctx, w, fmt.Errorf("%w: invalid horizon", usecase.ErrInvalidInput))
		return
	}

	schedules, err := h.plannerService.DifficultyGrid(ctx, horizon)
	if err != nil {
		h.logger.WarnContext(ctx, "difficulty grid failed", "horizon", horizon, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, schedules)
}

// overrideEntryDTO mirrors the override file format: a home and away rating
// per team name.
type overrideEntryDTO struct {
	Home int `json:"H" validate:"required,min=1,max=5"`
	Away int `json:"A" validate:"required,min=1,max=5"`
}

func (h *Handler) GetDifficultyOverrides(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDifficultyOverrides")
	defer span.End()

	table, err := h.overrideStore.Load(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "load overrides failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make(map[string]overrideEntryDTO, len(table))
	for name, o := range table {
		out[name] = overrideEntryDTO{Home: o.Home, Away: o.Away}
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SaveDifficultyOverrides(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveDifficultyOverrides")
	defer span.End()

	var req map[string]overrideEntryDTO
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	table := make(fdr.OverrideTable, len(req))
	for name, entry := range req {
		if name == "" {
			writeError(ctx, w, fmt.Errorf("%w: team name cannot be empty", usecase.ErrInvalidInput))
			return
		}
		if err := h.validateRequest(ctx, entry); err != nil {
			writeError(ctx, w, fmt.Errorf("override for %q: %w", name, err))
			return
		}
		table[name] = fdr.Override{Home: entry.Home, Away: entry.Away}
	}

	if err := h.overrideStore.Save(ctx, table); err != nil {
		h.logger.ErrorContext(ctx, "save overrides failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"saved": len(table)})
}
