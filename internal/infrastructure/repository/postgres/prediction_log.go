package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/fplkit/planner/internal/usecase"
)

// PredictionLogRepository stores engine predictions and backtest runs so
// past outputs can be compared against realized scores later.
type PredictionLogRepository struct {
	db *sqlx.DB
}

func NewPredictionLogRepository(db *sqlx.DB) *PredictionLogRepository {
	return &PredictionLogRepository{db: db}
}

type predictionInsertModel struct {
	Gameweek        int     `db:"gameweek"`
	PlayerID        int     `db:"player_id"`
	PredictedPoints float64 `db:"predicted_points"`
	CapScore        float64 `db:"cap_score"`
	Strategy        string  `db:"strategy"`
	CreatedAt       int64   `db:"created_at"`
}

const upsertPredictionQuery = `INSERT INTO predictions (gameweek, player_id, predicted_points, cap_score, strategy, created_at)
VALUES (:gameweek, :player_id, :predicted_points, :cap_score, :strategy, :created_at)
ON CONFLICT (gameweek, player_id)
DO UPDATE SET
    predicted_points = EXCLUDED.predicted_points,
    cap_score = EXCLUDED.cap_score,
    strategy = EXCLUDED.strategy,
    created_at = EXCLUDED.created_at`

func (r *PredictionLogRepository) RecordPredictions(ctx context.Context, records []usecase.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx record predictions: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, record := range records {
		insertModel := predictionInsertModel{
			Gameweek:        record.Gameweek,
			PlayerID:        record.PlayerID,
			PredictedPoints: record.PredictedPoints,
			CapScore:        record.CapScore,
			Strategy:        record.Strategy,
			CreatedAt:       timeToUnix(record.CreatedAt),
		}
		if _, err := tx.NamedExecContext(ctx, upsertPredictionQuery, insertModel); err != nil {
			return fmt.Errorf("upsert prediction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record predictions tx: %w", err)
	}
	return nil
}

type backtestInsertModel struct {
	EntryID   int    `db:"entry_id"`
	Gameweeks []byte `db:"gameweeks"`
	Strategy  string `db:"strategy"`
	CreatedAt int64  `db:"created_at"`
}

const insertBacktestQuery = `INSERT INTO backtest_runs (entry_id, gameweeks, strategy, created_at)
VALUES (:entry_id, :gameweeks, :strategy, :created_at)`

func (r *PredictionLogRepository) RecordBacktest(ctx context.Context, record usecase.BacktestRecord) error {
	gameweeks, err := sonic.Marshal(record.Gameweeks)
	if err != nil {
		return fmt.Errorf("marshal backtest gameweeks: %w", err)
	}

	insertModel := backtestInsertModel{
		EntryID:   record.EntryID,
		Gameweeks: gameweeks,
		Strategy:  record.Strategy,
		CreatedAt: timeToUnix(record.CreatedAt),
	}
	if _, err := r.db.NamedExecContext(ctx, insertBacktestQuery, insertModel); err != nil {
		return fmt.Errorf("insert backtest run: %w", err)
	}
	return nil
}

type predictionTableModel struct {
	Gameweek        int     `db:"gameweek"`
	PlayerID        int     `db:"player_id"`
	PredictedPoints float64 `db:"predicted_points"`
	CapScore        float64 `db:"cap_score"`
	Strategy        string  `db:"strategy"`
	CreatedAt       int64   `db:"created_at"`
}

const listPredictionsQuery = `SELECT gameweek, player_id, predicted_points, cap_score, strategy, created_at
FROM predictions
WHERE gameweek = $1
ORDER BY player_id`

// ListPredictions returns every prediction logged for one gameweek, ordered
// by player id.
func (r *PredictionLogRepository) ListPredictions(ctx context.Context, gameweek int) ([]usecase.PredictionRecord, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, listPredictionsQuery, gameweek); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]usecase.PredictionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.PredictionRecord{
			Gameweek:        row.Gameweek,
			PlayerID:        row.PlayerID,
			PredictedPoints: row.PredictedPoints,
			CapScore:        row.CapScore,
			Strategy:        row.Strategy,
			CreatedAt:       unixToTime(row.CreatedAt),
		})
	}
	return out, nil
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func unixToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}
