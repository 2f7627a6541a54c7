package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/squad"
	"github.com/fplkit/planner/internal/domain/team"
	"github.com/fplkit/planner/internal/domain/xp"
	"github.com/fplkit/planner/internal/platform/logging"
)

const defaultPlannerWorkers = 8

// AdvancedStats are display statistics derived from the last five
// appearances, attached to plan output for the presentation layer.
type AdvancedStats struct {
	MinutesPercentL5     float64 `json:"mins_percent_l5"`
	DefensivePer90       float64 `json:"def_per_90"`
	PointsPer90L5        float64 `json:"pts_per_90_l5"`
	PointsPer90PerMillion float64 `json:"pts_per_90_per_m_l5"`
}

// UpcomingFixtureXP is one row of a player's fixture outlook.
type UpcomingFixtureXP struct {
	Gameweek int     `json:"gameweek"`
	Opponent string  `json:"opponent"`
	Home     bool    `json:"home"`
	XP       float64 `json:"xp"`
}

// PlayerInsight is the per-player detail accompanying a plan: the estimate,
// display stats and fixture outlook.
type PlayerInsight struct {
	PlayerID    int                 `json:"player_id"`
	Name        string              `json:"name"`
	TeamName    string              `json:"team"`
	Position    player.Position     `json:"position"`
	Price       float64             `json:"price"`
	NextFixture string              `json:"next_fixture"`
	Estimate    xp.Estimate         `json:"estimate"`
	CapScore    float64             `json:"cap_score"`
	Stats       AdvancedStats       `json:"stats"`
	Upcoming    []UpcomingFixtureXP `json:"upcoming"`
}

// PlanResult is one full optimization pass: the target gameweek, the lineup
// selection and the per-player insights backing it.
type PlanResult struct {
	Gameweek  int
	Selection squad.Selection
	Insights  map[int]PlayerInsight
}

// PredictionRecord is one logged per-player prediction for later backtest
// comparison.
type PredictionRecord struct {
	Gameweek        int
	PlayerID        int
	PredictedPoints float64
	CapScore        float64
	Strategy        string
	CreatedAt       time.Time
}

// PredictionLog persists plan predictions. Implementations must tolerate
// repeated writes for the same gameweek/player pair.
type PredictionLog interface {
	RecordPredictions(ctx context.Context, records []PredictionRecord) error
}

// PlannerService orchestrates the engine, captaincy scorer and lineup
// optimizer over a data provider. All heavy computation fans out over a
// bounded worker pool; the services underneath are pure and reentrant.
type PlannerService struct {
	data       DataProvider
	overrides  OverrideSource
	engine     *XPService
	lineup     *LineupService
	log        PredictionLog
	logger     *logging.Logger
	maxWorkers int
	now        func() time.Time
}

func NewPlannerService(
	data DataProvider,
	overrides OverrideSource,
	engine *XPService,
	lineup *LineupService,
	logger *logging.Logger,
) *PlannerService {
	if logger == nil {
		logger = logging.Default()
	}
	if overrides == nil {
		overrides = StaticOverrides(nil)
	}
	return &PlannerService{
		data:       data,
		overrides:  overrides,
		engine:     engine,
		lineup:     lineup,
		logger:     logger,
		maxWorkers: defaultPlannerWorkers,
		now:        time.Now,
	}
}

// SetPredictionLog attaches an optional prediction sink.
func (s *PlannerService) SetPredictionLog(log PredictionLog) { s.log = log }

// SetMaxWorkers bounds the per-player computation pool.
func (s *PlannerService) SetMaxWorkers(n int) {
	if n > 0 {
		s.maxWorkers = n
	}
}

// OptimizeEntry fetches the squad an entry fielded in the current gameweek
// and optimizes it for the next one.
func (s *PlannerService) OptimizeEntry(ctx context.Context, entryID int) (PlanResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.OptimizeEntry")
	defer span.End()

	if entryID <= 0 {
		return PlanResult{}, fmt.Errorf("%w: entry id must be positive", ErrInvalidInput)
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("bootstrap snapshot: %w", err)
	}

	current := fixture.CurrentGameweek(snap.Events)
	picks, err := s.data.EntryPicks(ctx, entryID, current)
	if err != nil {
		return PlanResult{}, fmt.Errorf("entry picks for gameweek %d: %w", current, err)
	}

	return s.optimize(ctx, snap, picks.PlayerIDs)
}

// OptimizeSquad optimizes an explicit list of player ids.
func (s *PlannerService) OptimizeSquad(ctx context.Context, playerIDs []int) (PlanResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlannerService.OptimizeSquad")
	defer span.End()

	if len(playerIDs) == 0 {
		return PlanResult{}, fmt.Errorf("%w: player ids are required", ErrInvalidInput)
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("bootstrap snapshot: %w", err)
	}

	return s.optimize(ctx, snap, playerIDs)
}

func (s *PlannerService) optimize(ctx context.Context, snap Snapshot, playerIDs []int) (PlanResult, error) {
	nextGW := fixture.NextGameweek(snap.Events)

	table, err := s.overrides.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "override table unavailable, using defaults", "error", err)
		table = nil
	}
	resolver := fdr.NewResolver(table)

	members, insights, err := s.rateSquad(ctx, snap, playerIDs, nextGW, resolver)
	if err != nil {
		return PlanResult{}, err
	}

	selection, optErr := s.lineup.Optimize(ctx, members)

	result := PlanResult{
		Gameweek:  nextGW,
		Selection: selection,
		Insights:  insights,
	}

	s.recordPredictions(ctx, nextGW, members)

	// optErr is the optimizer's weak-invariant signal; the selection is
	// still usable best-effort output.
	return result, optErr
}

// rateSquad runs the engine and captaincy scorer for every squad member over
// a bounded worker pool.
func (s *PlannerService) rateSquad(
	ctx context.Context,
	snap Snapshot,
	playerIDs []int,
	nextGW int,
	resolver *fdr.Resolver,
) ([]squad.Member, map[int]PlayerInsight, error) {
	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return nil, nil, fmt.Errorf("create planner worker pool: %w", err)
	}
	defer pool.Release()

	type rated struct {
		member  squad.Member
		insight PlayerInsight
		err     error
	}

	results := make([]rated, len(playerIDs))
	var wg sync.WaitGroup

	for i, id := range playerIDs {
		i, id := i, id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			p, ok := snap.PlayerByID(id)
			if !ok {
				results[i].err = fmt.Errorf("%w: player %d not in snapshot", ErrNotFound, id)
				return
			}
			detail, err := s.data.PlayerDetail(ctx, id)
			if err != nil {
				results[i].err = fmt.Errorf("player %d detail: %w", id, err)
				return
			}

			est := s.engine.Estimate(ctx, p, snap.Teams, detail.Upcoming, detail.History, resolver)
			nextXP := est.ForGameweek(nextGW)
			capScore := CaptaincyScore(p, nextXP, detail.History)

			results[i].member = squad.Member{
				Player:   p,
				NextXP:   nextXP,
				TotalXP:  est.Total,
				CapScore: capScore,
				Estimate: est,
			}
			results[i].insight = s.buildInsight(p, snap.Teams, detail, est, capScore, nextGW)
		})
		if submitErr != nil {
			wg.Done()
			results[i].err = fmt.Errorf("submit player %d: %w", id, submitErr)
		}
	}
	wg.Wait()

	members := make([]squad.Member, 0, len(results))
	insights := make(map[int]PlayerInsight, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, nil, r.err
		}
		members = append(members, r.member)
		insights[r.member.Player.ID] = r.insight
	}
	return members, insights, nil
}

func (s *PlannerService) buildInsight(
	p player.Player,
	teams team.Index,
	detail PlayerDetail,
	est xp.Estimate,
	capScore float64,
	nextGW int,
) PlayerInsight {
	insight := PlayerInsight{
		PlayerID: p.ID,
		Name:     p.Name,
		TeamName: teams.NameOf(p.TeamID),
		Position: p.Position,
		Price:    p.Price,
		Estimate: est,
		CapScore: capScore,
		Stats:    advancedStats(p, detail.History),
	}

	for _, f := range detail.Upcoming {
		opponentID, home, ok := f.OpponentOf(p.TeamID)
		if !ok {
			continue
		}
		short := teams.ShortOf(opponentID)
		if short == "" {
			continue
		}
		label := short + venueTag(home)
		if f.Gameweek == nextGW {
			insight.NextFixture = label
		}
		if _, estimated := est.PerGameweek[f.Gameweek]; estimated {
			insight.Upcoming = append(insight.Upcoming, UpcomingFixtureXP{
				Gameweek: f.Gameweek,
				Opponent: label,
				Home:     home,
				XP:       est.PerGameweek[f.Gameweek],
			})
		}
	}
	sort.Slice(insight.Upcoming, func(i, j int) bool {
		return insight.Upcoming[i].Gameweek < insight.Upcoming[j].Gameweek
	})

	return insight
}

func venueTag(home bool) string {
	if home {
		return " (H)"
	}
	return " (A)"
}

// advancedStats mirrors the presentation-layer statistics: last-five minutes
// share, defensive contributions per 90, points per 90 and points per 90 per
// million of price.
func advancedStats(p player.Player, hist player.History) AdvancedStats {
	last5 := hist.LastN(5)
	if len(last5) == 0 {
		return AdvancedStats{}
	}

	var minutes, points, defensive float64
	for _, rec := range last5 {
		minutes += float64(rec.Minutes)
		points += float64(rec.TotalPoints)
		defensive += float64(rec.DefensiveContribution)
	}

	stats := AdvancedStats{}
	maxMinutes := float64(len(last5)) * 90
	if maxMinutes > 0 {
		stats.MinutesPercentL5 = minutes / maxMinutes * 100
	}
	if minutes > 0 {
		stats.DefensivePer90 = defensive / minutes * 90
		stats.PointsPer90L5 = points / minutes * 90
	}
	if p.Price > 0 {
		stats.PointsPer90PerMillion = stats.PointsPer90L5 / p.Price
	}
	return stats
}

func (s *PlannerService) recordPredictions(ctx context.Context, gameweek int, members []squad.Member) {
	if s.log == nil {
		return
	}

	records := make([]PredictionRecord, 0, len(members))
	now := s.now().UTC()
	for _, m := range members {
		records = append(records, PredictionRecord{
			Gameweek:        gameweek,
			PlayerID:        m.Player.ID,
			PredictedPoints: m.NextXP,
			CapScore:        m.CapScore,
			Strategy:        s.engine.Strategy(),
			CreatedAt:       now,
		})
	}
	if err := s.log.RecordPredictions(ctx, records); err != nil {
		s.logger.WarnContext(ctx, "prediction log write failed", "error", err, "gameweek", gameweek)
	}
}
