package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/fplkit/planner/internal/infrastructure/overrides"
	"github.com/fplkit/planner/internal/infrastructure/repository/memory"
	"github.com/fplkit/planner/internal/platform/logging"
	"github.com/fplkit/planner/internal/usecase"
)

type envelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       json.RawMessage  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	data := memory.Seeded()
	store := overrides.NewFileStore(filepath.Join(t.TempDir(), "custom_fdr.json"))
	logger := logging.NewNop()

	engine := usecase.NewXPService(usecase.DefaultEngineConfig())
	planner := usecase.NewPlannerService(data, store, engine, usecase.NewLineupService(), logger)
	backtest := usecase.NewBacktestService(data, store, engine, logger)

	handler := NewHandler(planner, backtest, store, logger)
	return NewRouter(handler, logger, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func seededSquadBody() string {
	return `{"player_ids": [101, 102, 111, 112, 113, 114, 115, 121, 122, 123, 124, 125, 131, 132, 133]}`
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if env.APIVersion != "2.0" {
		t.Fatalf("got apiVersion %q, want 2.0", env.APIVersion)
	}
}

func TestHandler_GetPlayerExpectedPoints(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/players/121/xp", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var insight usecase.PlayerInsight
	if err := sonic.Unmarshal(env.Data, &insight); err != nil {
		t.Fatalf("decode insight: %v", err)
	}
	if insight.PlayerID != 121 || insight.Name != "Saka" {
		t.Fatalf("got %+v", insight)
	}
	if insight.Estimate.Total <= 0 {
		t.Fatalf("expected positive estimate, got %v", insight.Estimate.Total)
	}
}

func TestHandler_GetPlayerExpectedPoints_BadID(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/players/abc/xp", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Errors[0].Reason != "invalidInput" {
		t.Fatalf("got error %+v", env.Error)
	}
}

func TestHandler_GetPlayerExpectedPoints_Unknown(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/players/9999/xp", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Status != "NOT_FOUND" {
		t.Fatalf("got error %+v", env.Error)
	}
}

func TestHandler_OptimizeLineup_PlayerIDs(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/v1/lineup/optimize", seededSquadBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var plan planDTO
	if err := sonic.Unmarshal(env.Data, &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Gameweek != 4 {
		t.Fatalf("got gameweek %d, want 4", plan.Gameweek)
	}
	if len(plan.Starters) != 11 || len(plan.Bench) != 4 {
		t.Fatalf("got %d starters / %d bench", len(plan.Starters), len(plan.Bench))
	}
	if plan.CaptainID == 0 || plan.ViceCaptainID == 0 {
		t.Fatalf("captaincy not assigned: %+v", plan)
	}
	if plan.Warning != "" {
		t.Fatalf("unexpected warning %q", plan.Warning)
	}
	if len(plan.Insights) != 15 {
		t.Fatalf("got %d insights, want 15", len(plan.Insights))
	}
}

func TestHandler_OptimizeLineup_Entry(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/v1/lineup/optimize", `{"entry_id": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var plan planDTO
	if err := sonic.Unmarshal(env.Data, &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if len(plan.Starters) != 11 {
		t.Fatalf("got %d starters, want 11", len(plan.Starters))
	}
}

func TestHandler_OptimizeLineup_ShortSquadWarns(t *testing.T) {
	router := newTestRouter(t)

	body := `{"player_ids": [101, 111, 112, 113, 121, 122, 131]}`
	rec, env := doRequest(t, router, http.MethodPost, "/v1/lineup/optimize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var plan planDTO
	if err := sonic.Unmarshal(env.Data, &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Warning == "" {
		t.Fatal("short squad should carry a warning")
	}
	if len(plan.Starters) == 0 {
		t.Fatal("short squad should still yield a best-effort lineup")
	}
}

func TestHandler_OptimizeLineup_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	cases := map[string]string{
		"invalid json":   `{not json`,
		"empty body":     `{}`,
		"unknown field":  `{"entry": 1}`,
		"negative entry": `{"entry_id": -3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := doRequest(t, router, http.MethodPost, "/v1/lineup/optimize", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_ListCaptaincyCandidates(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/captaincy?entry=1&limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Gameweek   int                     `json:"gameweek"`
		Candidates []usecase.PlayerInsight `json:"candidates"`
	}
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode candidates: %v", err)
	}
	if payload.Gameweek != 4 {
		t.Fatalf("got gameweek %d, want 4", payload.Gameweek)
	}
	if len(payload.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(payload.Candidates))
	}
}

func TestHandler_ListCaptaincyCandidates_MissingEntry(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/captaincy", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestHandler_ListTransferCandidates(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/transfers?position=mid&max_price=9.5&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var candidates []usecase.PlayerInsight
	if err := sonic.Unmarshal(env.Data, &candidates); err != nil {
		t.Fatalf("decode candidates: %v", err)
	}
	if len(candidates) == 0 || len(candidates) > 2 {
		t.Fatalf("got %d candidates, want 1-2", len(candidates))
	}
	for _, c := range candidates {
		if c.Position != "MID" {
			t.Fatalf("candidate %d has position %s", c.PlayerID, c.Position)
		}
	}
}

func TestHandler_GetDifficultyGrid(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/fdr?horizon=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var schedules []usecase.TeamSchedule
	if err := sonic.Unmarshal(env.Data, &schedules); err != nil {
		t.Fatalf("decode schedules: %v", err)
	}
	if len(schedules) != 4 {
		t.Fatalf("got %d schedules, want 4", len(schedules))
	}
	for i := 1; i < len(schedules); i++ {
		if schedules[i-1].TotalDifficulty > schedules[i].TotalDifficulty {
			t.Fatal("schedules not sorted easiest first")
		}
	}
}

func TestHandler_OverrideRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/fdr/overrides", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("initial get: got status %d, want 200", rec.Code)
	}

	rec, env = doRequest(t, router, http.MethodPut, "/v1/fdr/overrides",
		`{"Arsenal": {"H": 5, "A": 4}, "Luton": {"H": 2, "A": 1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var saved struct {
		Saved int `json:"saved"`
	}
	if err := sonic.Unmarshal(env.Data, &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if saved.Saved != 2 {
		t.Fatalf("got saved=%d, want 2", saved.Saved)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/fdr/overrides", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get after put: got status %d, want 200", rec.Code)
	}
	var table map[string]overrideEntryDTO
	if err := sonic.Unmarshal(env.Data, &table); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if len(table) != 2 || table["Arsenal"].Home != 5 || table["Luton"].Away != 1 {
		t.Fatalf("got %v", table)
	}
}

func TestHandler_SaveOverrides_RejectsOutOfRange(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPut, "/v1/fdr/overrides", `{"Arsenal": {"H": 9, "A": 4}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_RunBacktest(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/v1/backtest", `{"entry_id": 1, "gameweeks": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		EntryID        int                        `json:"entry_id"`
		Gameweeks      []usecase.BacktestGameweek `json:"gameweeks"`
		TotalPredicted float64                    `json:"total_predicted"`
		TotalActual    float64                    `json:"total_actual"`
	}
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode backtest: %v", err)
	}
	if payload.EntryID != 1 || len(payload.Gameweeks) != 2 {
		t.Fatalf("got %+v", payload)
	}
	if payload.TotalActual <= 0 {
		t.Fatalf("expected positive actual points, got %v", payload.TotalActual)
	}
}

func TestHandler_RunBacktest_DefaultsLookback(t *testing.T) {
	router := newTestRouter(t)

	// Three gameweeks are finished in the seed, so the default lookback
	// replays all of them.
	rec, env := doRequest(t, router, http.MethodPost, "/v1/backtest", `{"entry_id": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Gameweeks []usecase.BacktestGameweek `json:"gameweeks"`
	}
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode backtest: %v", err)
	}
	if len(payload.Gameweeks) != 3 {
		t.Fatalf("got %d gameweeks, want 3", len(payload.Gameweeks))
	}
}

func TestHandler_RunBacktest_MissingEntry(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/backtest", `{"gameweeks": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/fdr", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("got allow-origin %q, want *", got)
	}
}
