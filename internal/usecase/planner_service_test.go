package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/team"
)

// stubProvider is an in-memory DataProvider seeded per test.
type stubProvider struct {
	snap     Snapshot
	details  map[int]PlayerDetail
	fixtures []fixture.Fixture
	picks    map[int]Picks
}

func (s *stubProvider) Bootstrap(context.Context) (Snapshot, error) { return s.snap, nil }

func (s *stubProvider) PlayerDetail(_ context.Context, playerID int) (PlayerDetail, error) {
	detail, ok := s.details[playerID]
	if !ok {
		return PlayerDetail{}, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}
	return detail, nil
}

func (s *stubProvider) Fixtures(context.Context) ([]fixture.Fixture, error) {
	return s.fixtures, nil
}

func (s *stubProvider) EntryPicks(_ context.Context, _, gameweek int) (Picks, error) {
	p, ok := s.picks[gameweek]
	if !ok {
		return Picks{}, fmt.Errorf("%w: picks for gameweek %d", ErrNotFound, gameweek)
	}
	return p, nil
}

type captureLog struct {
	predictions []PredictionRecord
	runs        []BacktestRecord
}

func (l *captureLog) RecordPredictions(_ context.Context, records []PredictionRecord) error {
	l.predictions = append(l.predictions, records...)
	return nil
}

func (l *captureLog) RecordBacktest(_ context.Context, record BacktestRecord) error {
	l.runs = append(l.runs, record)
	return nil
}

func testSquadIDs() []int {
	return []int{1, 2, 11, 12, 13, 14, 15, 21, 22, 23, 24, 25, 31, 32, 33}
}

func newStubProvider() *stubProvider {
	teams := team.NewIndex([]team.Team{
		{ID: 1, Name: "Alpha", Short: "ALP", AttackHome: 1100, AttackAway: 1100, DefenceHome: 1100, DefenceAway: 1100},
		{ID: 2, Name: "Beta", Short: "BET", AttackHome: 1100, AttackAway: 1100, DefenceHome: 1100, DefenceAway: 1100},
	})

	position := func(id int) player.Position {
		switch {
		case id < 10:
			return player.PositionGoalkeeper
		case id < 20:
			return player.PositionDefender
		case id < 30:
			return player.PositionMidfielder
		default:
			return player.PositionForward
		}
	}

	var players []player.Player
	details := make(map[int]PlayerDetail)
	for _, id := range testSquadIDs() {
		p := player.Player{
			ID:                id,
			Name:              fmt.Sprintf("Player %d", id),
			TeamID:            1,
			Position:          position(id),
			Price:             5.0,
			SelectedByPercent: 10,
			PointsPerGame:     3.5,
			SeasonMinutes:     900,
		}
		players = append(players, p)

		hist := make(player.History, 0, 3)
		for round := 1; round <= 3; round++ {
			hist = append(hist, player.GameRecord{
				Round:           round,
				Minutes:         90,
				TotalPoints:     id%7 + 2,
				ExpectedGoals:   0.3,
				ExpectedAssists: 0.1,
				WasHome:         round%2 == 1,
				OpponentID:      2,
			})
		}
		details[id] = PlayerDetail{
			Upcoming: []fixture.Fixture{{Gameweek: 4, HomeTeamID: 1, AwayTeamID: 2}},
			History:  hist,
		}
	}

	picks := make(map[int]Picks)
	for gw := 1; gw <= 3; gw++ {
		picks[gw] = Picks{PlayerIDs: testSquadIDs(), CaptainID: 21}
	}

	return &stubProvider{
		snap: Snapshot{
			Teams:   teams,
			Players: players,
			Events: []fixture.Event{
				{ID: 1, Finished: true},
				{ID: 2, Finished: true},
				{ID: 3, Finished: true, IsCurrent: true},
				{ID: 4, IsNext: true},
				{ID: 5},
			},
		},
		details:  details,
		fixtures: []fixture.Fixture{{Gameweek: 4, HomeTeamID: 1, AwayTeamID: 2}, {Gameweek: 5, HomeTeamID: 2, AwayTeamID: 1}},
		picks:    picks,
	}
}

func newTestPlanner(data DataProvider) *PlannerService {
	return NewPlannerService(data, nil, NewXPService(DefaultEngineConfig()), NewLineupService(), nil)
}

func TestPlannerService_OptimizeSquad(t *testing.T) {
	provider := newStubProvider()
	svc := newTestPlanner(provider)

	plan, err := svc.OptimizeSquad(t.Context(), testSquadIDs())
	if err != nil {
		t.Fatalf("optimize squad failed: %v", err)
	}

	if plan.Gameweek != 4 {
		t.Fatalf("got gameweek %d, want 4", plan.Gameweek)
	}
	if len(plan.Selection.Starters) != 11 || len(plan.Selection.Bench) != 4 {
		t.Fatalf("got %d starters / %d bench", len(plan.Selection.Starters), len(plan.Selection.Bench))
	}
	if len(plan.Insights) != 15 {
		t.Fatalf("got %d insights, want 15", len(plan.Insights))
	}

	insight, ok := plan.Insights[21]
	if !ok {
		t.Fatal("missing insight for player 21")
	}
	if insight.NextFixture != "BET (H)" {
		t.Fatalf("next fixture label: got %q, want %q", insight.NextFixture, "BET (H)")
	}
	if len(insight.Upcoming) != 1 || insight.Upcoming[0].Gameweek != 4 {
		t.Fatalf("upcoming outlook: got %v", insight.Upcoming)
	}
}

func TestPlannerService_OptimizeSquad_RecordsPredictions(t *testing.T) {
	provider := newStubProvider()
	svc := newTestPlanner(provider)

	log := &captureLog{}
	svc.SetPredictionLog(log)

	if _, err := svc.OptimizeSquad(t.Context(), testSquadIDs()); err != nil {
		t.Fatalf("optimize squad failed: %v", err)
	}

	if len(log.predictions) != 15 {
		t.Fatalf("got %d prediction records, want 15", len(log.predictions))
	}
	for _, rec := range log.predictions {
		if rec.Gameweek != 4 {
			t.Fatalf("prediction gameweek: got %d, want 4", rec.Gameweek)
		}
		if rec.Strategy != "threat" {
			t.Fatalf("prediction strategy: got %q, want threat", rec.Strategy)
		}
		if rec.CreatedAt.IsZero() {
			t.Fatal("prediction timestamp should be set")
		}
	}
}

func TestPlannerService_OptimizeSquad_EmptyIDs(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	_, err := svc.OptimizeSquad(t.Context(), nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestPlannerService_OptimizeSquad_UnknownPlayer(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	_, err := svc.OptimizeSquad(t.Context(), []int{999})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPlannerService_OptimizeEntry(t *testing.T) {
	provider := newStubProvider()
	svc := newTestPlanner(provider)

	plan, err := svc.OptimizeEntry(t.Context(), 42)
	if err != nil {
		t.Fatalf("optimize entry failed: %v", err)
	}
	if plan.Gameweek != 4 {
		t.Fatalf("got gameweek %d, want 4", plan.Gameweek)
	}
	if len(plan.Insights) != 15 {
		t.Fatalf("got %d insights, want 15", len(plan.Insights))
	}
}

func TestPlannerService_OptimizeEntry_InvalidID(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	_, err := svc.OptimizeEntry(t.Context(), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestPlannerService_PlayerEstimate(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	insight, err := svc.PlayerEstimate(t.Context(), 21)
	if err != nil {
		t.Fatalf("player estimate failed: %v", err)
	}
	if insight.PlayerID != 21 || insight.TeamName != "Alpha" {
		t.Fatalf("got %+v", insight)
	}
	if insight.Estimate.Total <= 0 {
		t.Fatalf("estimate total should be positive, got %v", insight.Estimate.Total)
	}
	if insight.Stats.MinutesPercentL5 != 100 {
		t.Fatalf("minutes percent: got %v, want 100", insight.Stats.MinutesPercentL5)
	}
}

func TestPlannerService_CaptaincyCandidates(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	candidates, gameweek, err := svc.CaptaincyCandidates(t.Context(), 42, 3)
	if err != nil {
		t.Fatalf("captaincy candidates failed: %v", err)
	}
	if gameweek != 4 {
		t.Fatalf("got gameweek %d, want 4", gameweek)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].CapScore < candidates[i].CapScore {
			t.Fatalf("candidates not sorted by cap score: %v then %v",
				candidates[i-1].CapScore, candidates[i].CapScore)
		}
	}
}

func TestPlannerService_TransferCandidates(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	ranked, err := svc.TransferCandidates(t.Context(), TransferInput{
		Position: player.PositionMidfielder,
		MaxPrice: 8.0,
		Limit:    3,
	})
	if err != nil {
		t.Fatalf("transfer candidates failed: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d candidates, want 3", len(ranked))
	}
	for _, c := range ranked {
		if c.Position != player.PositionMidfielder {
			t.Fatalf("candidate %d has position %s", c.PlayerID, c.Position)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Estimate.Total < ranked[i].Estimate.Total {
			t.Fatal("candidates not sorted by total expected points")
		}
	}
}

func TestPlannerService_TransferCandidates_InvalidInput(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	if _, err := svc.TransferCandidates(t.Context(), TransferInput{Position: "XX", MaxPrice: 8}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown position: got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.TransferCandidates(t.Context(), TransferInput{Position: player.PositionForward}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing price cap: got %v, want ErrInvalidInput", err)
	}
}

func TestPlannerService_DifficultyGrid(t *testing.T) {
	svc := newTestPlanner(newStubProvider())

	schedules, err := svc.DifficultyGrid(t.Context(), 5)
	if err != nil {
		t.Fatalf("difficulty grid failed: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("got %d schedules, want 2", len(schedules))
	}
	for i := 1; i < len(schedules); i++ {
		if schedules[i-1].TotalDifficulty > schedules[i].TotalDifficulty {
			t.Fatal("schedules not sorted easiest first")
		}
	}
	for _, s := range schedules {
		if len(s.Fixtures) != 2 {
			t.Fatalf("team %s: got %d fixtures, want 2", s.TeamName, len(s.Fixtures))
		}
	}
}
