package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/platform/logging"
	"github.com/fplkit/planner/internal/usecase"
)

// OverrideStore reads and persists the user-authored difficulty overrides.
type OverrideStore interface {
	Load(ctx context.Context) (fdr.OverrideTable, error)
	Save(ctx context.Context, table fdr.OverrideTable) error
}

const defaultBacktestLookback = 5

type Handler struct {
	plannerService   *usecase.PlannerService
	backtestService  *usecase.BacktestService
	overrideStore    OverrideStore
	logger           *logging.Logger
	validator        *validator.Validate
	backtestLookback int
}

func NewHandler(
	plannerService *usecase.PlannerService,
	backtestService *usecase.BacktestService,
	overrideStore OverrideStore,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		plannerService:   plannerService,
		backtestService:  backtestService,
		overrideStore:    overrideStore,
		logger:           logger,
		validator:        validator.New(),
		backtestLookback: defaultBacktestLookback,
	}
}

// SetBacktestLookback overrides the gameweek window used when a backtest
// request omits one.
func (h *Handler) SetBacktestLookback(n int) {
	if n > 0 {
		h.backtestLookback = n
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
