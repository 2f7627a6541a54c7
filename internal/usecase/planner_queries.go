package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
)

// PlayerEstimate computes the expected points and breakdowns for one player.
func (s *PlannerService) PlayerEstimate(ctx context.Context, playerID int) (PlayerInsight, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.PlayerEstimate")
	defer span.End()

	if playerID <= 0 {
		return PlayerInsight{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return PlayerInsight{}, fmt.Errorf("bootstrap snapshot: %w", err)
	}
	p, ok := snap.PlayerByID(playerID)
	if !ok {
		return PlayerInsight{}, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}
	detail, err := s.data.PlayerDetail(ctx, playerID)
	if err != nil {
		return PlayerInsight{}, fmt.Errorf("player %d detail: %w", playerID, err)
	}

	table, err := s.overrides.Load(ctx)
	if err != nil {
		table = nil
	}
	resolver := fdr.NewResolver(table)

	nextGW := fixture.NextGameweek(snap.Events)
	est := s.engine.Estimate(ctx, p, snap.Teams, detail.Upcoming, detail.History, resolver)
	capScore := CaptaincyScore(p, est.ForGameweek(nextGW), detail.History)

	return s.buildInsight(p, snap.Teams, detail, est, capScore, nextGW), nil
}

// CaptaincyCandidates ranks an entry's full 15 by captaincy score and
// returns the top n.
func (s *PlannerService) CaptaincyCandidates(ctx context.Context, entryID, limit int) ([]PlayerInsight, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.CaptaincyCandidates")
	defer span.End()

	if limit <= 0 {
		limit = 5
	}

	plan, err := s.OptimizeEntry(ctx, entryID)
	if err != nil && plan.Insights == nil {
		return nil, 0, err
	}

	candidates := make([]PlayerInsight, 0, len(plan.Insights))
	for _, insight := range plan.Insights {
		candidates = append(candidates, insight)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CapScore != candidates[j].CapScore {
			return candidates[i].CapScore > candidates[j].CapScore
		}
		return candidates[i].PlayerID < candidates[j].PlayerID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, plan.Gameweek, nil
}

// TransferInput filters the transfer candidate scan.
type TransferInput struct {
	Position player.Position
	MaxPrice float64
	Limit    int
}

// transferMinSeasonMinutes excludes players without meaningful pitch time
// from the candidate scan.
const transferMinSeasonMinutes = 200

// TransferCandidates ranks available players of a position under a budget by
// total expected points over the lookahead horizon.
func (s *PlannerService) TransferCandidates(ctx context.Context, input TransferInput) ([]PlayerInsight, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.TransferCandidates")
	defer span.End()

	if _, ok := player.AllPositions[input.Position]; !ok {
		return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, input.Position)
	}
	if input.MaxPrice <= 0 {
		return nil, fmt.Errorf("%w: max price must be positive", ErrInvalidInput)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap snapshot: %w", err)
	}

	var ids []int
	for _, p := range snap.Players {
		if p.Position != input.Position || p.Price > input.MaxPrice {
			continue
		}
		if p.SeasonMinutes <= transferMinSeasonMinutes {
			continue
		}
		if p.AvailabilityFraction() < 0.5 {
			continue
		}
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	table, err := s.overrides.Load(ctx)
	if err != nil {
		table = nil
	}
	resolver := fdr.NewResolver(table)
	nextGW := fixture.NextGameweek(snap.Events)

	_, insights, err := s.rateSquad(ctx, snap, ids, nextGW, resolver)
	if err != nil {
		return nil, err
	}

	ranked := make([]PlayerInsight, 0, len(insights))
	for _, insight := range insights {
		ranked = append(ranked, insight)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Estimate.Total != ranked[j].Estimate.Total {
			return ranked[i].Estimate.Total > ranked[j].Estimate.Total
		}
		return ranked[i].PlayerID < ranked[j].PlayerID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// GridFixture is one cell of the difficulty grid.
type GridFixture struct {
	Gameweek   int    `json:"gameweek"`
	Opponent   string `json:"opponent"`
	Home       bool   `json:"home"`
	Difficulty int    `json:"difficulty"`
}

// TeamSchedule is one team's upcoming run of fixtures with the summed
// difficulty; lower totals mean an easier run.
type TeamSchedule struct {
	TeamID          int           `json:"team_id"`
	TeamName        string        `json:"team_name"`
	Fixtures        []GridFixture `json:"fixtures"`
	TotalDifficulty int           `json:"total_difficulty"`
}

// DifficultyGrid builds the per-team fixture difficulty schedule over the
// horizon, sorted easiest run first.
func (s *PlannerService) DifficultyGrid(ctx context.Context, horizon int) ([]TeamSchedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.DifficultyGrid")
	defer span.End()

	if horizon <= 0 {
		horizon = s.engine.Config().Horizon
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap snapshot: %w", err)
	}
	fixtures, err := s.data.Fixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("fixture list: %w", err)
	}

	table, err := s.overrides.Load(ctx)
	if err != nil {
		table = nil
	}
	resolver := fdr.NewResolver(table)

	fromGW := fixture.NextGameweek(snap.Events)

	schedules := make([]TeamSchedule, 0, len(snap.Teams))
	for id, t := range snap.Teams {
		upcoming := fixture.UpcomingForTeam(fixtures, id, fromGW, horizon)
		schedule := TeamSchedule{TeamID: id, TeamName: t.Name}
		for _, f := range upcoming {
			opponentID, home, ok := f.OpponentOf(id)
			if !ok {
				continue
			}
			difficulty, ok := resolver.Difficulty(f, id, snap.Teams)
			if !ok {
				continue
			}
			schedule.Fixtures = append(schedule.Fixtures, GridFixture{
				Gameweek:   f.Gameweek,
				Opponent:   snap.Teams.ShortOf(opponentID),
				Home:       home,
				Difficulty: difficulty,
			})
			schedule.TotalDifficulty += difficulty
		}
		schedules = append(schedules, schedule)
	}

	sort.Slice(schedules, func(i, j int) bool {
		if schedules[i].TotalDifficulty != schedules[j].TotalDifficulty {
			return schedules[i].TotalDifficulty < schedules[j].TotalDifficulty
		}
		return schedules[i].TeamName < schedules[j].TeamName
	})
	return schedules, nil
}
