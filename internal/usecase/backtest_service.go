package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/platform/logging"
)

const defaultBacktestWorkers = 4

// BacktestGameweek compares what the engine would have predicted before a
// completed gameweek against the points the squad actually scored.
type BacktestGameweek struct {
	Gameweek        int     `json:"gameweek"`
	PredictedPoints float64 `json:"predicted_points"`
	ActualPoints    float64 `json:"actual_points"`
	Difference      float64 `json:"difference"`
}

// BacktestRecord is a persisted backtest run summary.
type BacktestRecord struct {
	EntryID   int
	Gameweeks []BacktestGameweek
	Strategy  string
	CreatedAt time.Time
}

// BacktestLog persists backtest runs.
type BacktestLog interface {
	RecordBacktest(ctx context.Context, record BacktestRecord) error
}

// BacktestService replays past completed gameweeks through the engine using
// only the history that was known at the time, and compares the prediction
// with realized scores. Deterministic for fixed inputs.
type BacktestService struct {
	data      DataProvider
	overrides OverrideSource
	engine    *XPService
	log       BacktestLog
	logger    *logging.Logger
	workers   int
	now       func() time.Time
}

func NewBacktestService(
	data DataProvider,
	overrides OverrideSource,
	engine *XPService,
	logger *logging.Logger,
) *BacktestService {
	if logger == nil {
		logger = logging.Default()
	}
	if overrides == nil {
		overrides = StaticOverrides(nil)
	}
	return &BacktestService{
		data:      data,
		overrides: overrides,
		engine:    engine,
		logger:    logger,
		workers:   defaultBacktestWorkers,
		now:       time.Now,
	}
}

// SetBacktestLog attaches an optional run sink.
func (s *BacktestService) SetBacktestLog(log BacktestLog) { s.log = log }

// Replay evaluates the engine against the n most recently completed
// gameweeks for an entry, chronological order.
func (s *BacktestService) Replay(ctx context.Context, entryID, gameweeks int) ([]BacktestGameweek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BacktestService.Replay")
	defer span.End()

	if entryID <= 0 {
		return nil, fmt.Errorf("%w: entry id must be positive", ErrInvalidInput)
	}
	if gameweeks <= 0 {
		return nil, fmt.Errorf("%w: gameweek count must be positive", ErrInvalidInput)
	}

	snap, err := s.data.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap snapshot: %w", err)
	}

	completed := completedGameweeks(snap.Events, gameweeks)
	if len(completed) == 0 {
		return nil, fmt.Errorf("%w: no completed gameweeks to replay", ErrNotFound)
	}

	table, err := s.overrides.Load(ctx)
	if err != nil {
		table = nil
	}
	resolver := fdr.NewResolver(table)

	results := make([]BacktestGameweek, len(completed))
	errs := make([]error, len(completed))

	workers := pool.New().WithMaxGoroutines(s.workers)
	for i, gw := range completed {
		i, gw := i, gw
		workers.Go(func() {
			results[i], errs[i] = s.replayGameweek(ctx, snap, entryID, gw, resolver)
		})
	}
	workers.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Gameweek < results[j].Gameweek })

	s.recordRun(ctx, entryID, results)
	return results, nil
}

func (s *BacktestService) replayGameweek(
	ctx context.Context,
	snap Snapshot,
	entryID, gameweek int,
	resolver *fdr.Resolver,
) (BacktestGameweek, error) {
	picks, err := s.data.EntryPicks(ctx, entryID, gameweek)
	if err != nil {
		return BacktestGameweek{}, fmt.Errorf("entry picks for gameweek %d: %w", gameweek, err)
	}

	result := BacktestGameweek{Gameweek: gameweek}
	for _, id := range picks.PlayerIDs {
		p, ok := snap.PlayerByID(id)
		if !ok {
			continue
		}
		detail, err := s.data.PlayerDetail(ctx, id)
		if err != nil {
			return BacktestGameweek{}, fmt.Errorf("player %d detail: %w", id, err)
		}

		// A player with no record for this round scored nothing and, with
		// no synthetic fixture to build, predicts nothing either.
		rec, played := detail.History.ForRound(gameweek)
		if !played {
			continue
		}

		predicted := s.predictForRecord(ctx, p, snap, rec, detail.History.Before(gameweek), resolver, gameweek)
		actual := float64(rec.TotalPoints)

		if id == picks.CaptainID {
			predicted *= 2
			actual *= 2
		}
		result.PredictedPoints += predicted
		result.ActualPoints += actual
	}
	result.Difference = result.ActualPoints - result.PredictedPoints
	return result, nil
}

// predictForRecord reconstructs the single fixture the record describes and
// runs the engine over it using only pre-gameweek history.
func (s *BacktestService) predictForRecord(
	ctx context.Context,
	p player.Player,
	snap Snapshot,
	rec player.GameRecord,
	priorHistory player.History,
	resolver *fdr.Resolver,
	gameweek int,
) float64 {
	synthetic := fixture.Fixture{Gameweek: gameweek}
	if rec.WasHome {
		synthetic.HomeTeamID = p.TeamID
		synthetic.AwayTeamID = rec.OpponentID
	} else {
		synthetic.HomeTeamID = rec.OpponentID
		synthetic.AwayTeamID = p.TeamID
	}

	est := s.engine.Estimate(ctx, p, snap.Teams, []fixture.Fixture{synthetic}, priorHistory, resolver)
	return est.ForGameweek(gameweek)
}

// completedGameweeks returns the last n finished events in chronological
// order.
func completedGameweeks(events []fixture.Event, n int) []int {
	var finished []int
	for _, ev := range events {
		if ev.Finished {
			finished = append(finished, ev.ID)
		}
	}
	sort.Ints(finished)
	if len(finished) > n {
		finished = finished[len(finished)-n:]
	}
	return finished
}

func (s *BacktestService) recordRun(ctx context.Context, entryID int, results []BacktestGameweek) {
	if s.log == nil {
		return
	}
	record := BacktestRecord{
		EntryID:   entryID,
		Gameweeks: results,
		Strategy:  s.engine.Strategy(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.log.RecordBacktest(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "backtest log write failed", "error", err, "entry_id", entryID)
	}
}
