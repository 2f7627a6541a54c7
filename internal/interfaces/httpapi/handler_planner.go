package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/squad"
	"github.com/fplkit/planner/internal/usecase"
)

type squadMemberDTO struct {
	PlayerID int             `json:"player_id"`
	Name     string          `json:"name"`
	Position player.Position `json:"position"`
	Team     string          `json:"team"`
	Price    float64         `json:"price"`
	NextXP   float64         `json:"next_xp"`
	TotalXP  float64         `json:"total_xp"`
	CapScore float64         `json:"cap_score"`
}

type planDTO struct {
	Gameweek      int                           `json:"gameweek"`
	Starters      []squadMemberDTO              `json:"starters"`
	Bench         []squadMemberDTO              `json:"bench"`
	CaptainID     int                           `json:"captain_id,omitempty"`
	ViceCaptainID int                           `json:"vice_captain_id,omitempty"`
	Insights      map[int]usecase.PlayerInsight `json:"insights"`
	Warning       string                        `json:"warning,omitempty"`
}

func planToDTO(result usecase.PlanResult, warning string) planDTO {
	dto := planDTO{
		Gameweek: result.Gameweek,
		Starters: membersToDTO(result.Selection.Starters, result.Insights),
		Bench:    membersToDTO(result.Selection.Bench, result.Insights),
		Insights: result.Insights,
		Warning:  warning,
	}
	if result.Selection.Captain != nil {
		dto.CaptainID = result.Selection.Captain.Player.ID
	}
	if result.Selection.ViceCaptain != nil {
		dto.ViceCaptainID = result.Selection.ViceCaptain.Player.ID
	}
	return dto
}

func membersToDTO(members []squad.Member, insights map[int]usecase.PlayerInsight) []squadMemberDTO {
	out := make([]squadMemberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, squadMemberDTO{
			PlayerID: m.Player.ID,
			Name:     m.Player.Name,
			Position: m.Player.Position,
			Team:     insights[m.Player.ID].TeamName,
			Price:    m.Player.Price,
			NextXP:   m.NextXP,
			TotalXP:  m.TotalXP,
			CapScore: m.CapScore,
		})
	}
	return out
}

func (h *Handler) GetPlayerExpectedPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerExpectedPoints")
	defer span.End()

	playerID, err := strconv.Atoi(strings.TrimSpace(r.PathValue("playerID")))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid player id", usecase.ErrInvalidInput))
		return
	}

	insight, err := h.plannerService.PlayerEstimate(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "player estimate failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, insight)
}

type optimizeLineupRequest struct {
	EntryID   int   `json:"entry_id" validate:"omitempty,gt=0"`
	PlayerIDs []int `json:"player_ids" validate:"omitempty,min=1,dive,gt=0"`
}

func (h *Handler) OptimizeLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OptimizeLineup")
	defer span.End()

	var req optimizeLineupRequest
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
	if req.EntryID == 0 && len(req.PlayerIDs) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: entry_id or player_ids is required", usecase.ErrInvalidInput))
		return
	}

	var (
		result usecase.PlanResult
		err    error
	)
	if req.EntryID > 0 {
		result, err = h.plannerService.OptimizeEntry(ctx, req.EntryID)
	} else {
		result, err = h.plannerService.OptimizeSquad(ctx, req.PlayerIDs)
	}

	// A weak-invariant squad still produces a best-effort selection; surface
	// the problem as a warning instead of discarding the plan.
	warning := ""
	if err != nil {
		if !errors.Is(err, usecase.ErrInvalidSquad) {
			h.logger.WarnContext(ctx, "optimize lineup failed", "entry_id", req.EntryID, "error", err)
			writeError(ctx, w, err)
			return
		}
		warning = err.Error()
	}

	writeSuccess(ctx, w, http.StatusOK, planToDTO(result, warning))
}

func (h *Handler) ListCaptaincyCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCaptaincyCandidates")
	defer span.End()

	entryID, err := queryInt(r, "entry", 0)
	if err != nil || entryID <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: entry query parameter must be a positive integer", usecase.ErrInvalidInput))
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid limit", usecase.ErrInvalidInput))
		return
	}

	candidates, gameweek, err := h.plannerService.CaptaincyCandidates(ctx, entryID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "captaincy candidates failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"gameweek":   gameweek,
		"candidates": candidates,
	})
}

func (h *Handler) ListTransferCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransferCandidates")
	defer span.End()

	position := player.Position(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("position"))))
	maxPrice, err := queryFloat(r, "max_price", 0)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid max_price", usecase.ErrInvalidInput))
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid limit", usecase.ErrInvalidInput))
		return
	}

	candidates, err := h.plannerService.TransferCandidates(ctx, usecase.TransferInput{
		Position: position,
		MaxPrice: maxPrice,
		Limit:    limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer candidates failed", "position", string(position), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, candidates)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
