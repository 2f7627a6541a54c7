package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPlannerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/xp", handler.GetPlayerExpectedPoints)
	mux.HandleFunc("POST /v1/lineup/optimize", handler.OptimizeLineup)
	mux.HandleFunc("GET /v1/captaincy", handler.ListCaptaincyCandidates)
	mux.HandleFunc("GET /v1/transfers", handler.ListTransferCandidates)
	mux.HandleFunc("GET /v1/fdr", handler.GetDifficultyGrid)
	mux.HandleFunc("GET /v1/fdr/overrides", handler.GetDifficultyOverrides)
	mux.HandleFunc("PUT /v1/fdr/overrides", handler.SaveDifficultyOverrides)
	mux.HandleFunc("POST /v1/backtest", handler.RunBacktest)
}
