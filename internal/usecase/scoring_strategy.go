package usecase

import "github.com/fplkit/planner/internal/domain/player"

// formWeights decay the last five appearances, most recent first. Shorter
// histories renormalize over the weights actually used.
var formWeights = [5]float64{1.0, 0.9, 0.8, 0.7, 0.6}

// weightedRecent averages a per-game value over up to the last five records
// with descending weights. Empty history yields zero.
func weightedRecent(hist player.History, value func(player.GameRecord) float64) float64 {
	recent := hist.LastN(len(formWeights))
	if len(recent) == 0 {
		return 0
	}

	var sum, weightSum float64
	for i := 0; i < len(recent); i++ {
		rec := recent[len(recent)-1-i]
		w := formWeights[i]
		sum += value(rec) * w
		weightSum += w
	}
	return sum / weightSum
}

func weightedForm(hist player.History) float64 {
	return weightedRecent(hist, func(r player.GameRecord) float64 { return float64(r.TotalPoints) })
}

func weightedMinutes(hist player.History) float64 {
	return weightedRecent(hist, func(r player.GameRecord) float64 { return float64(r.Minutes) })
}

// ScoringStrategy turns a player's history into a base attacking potential,
// before any fixture context is applied. The two implementations mirror the
// engine's threat and legacy modes and stay independently testable.
type ScoringStrategy interface {
	Name() string
	BasePotential(p player.Player, hist player.History) float64
}

// ThreatStrategy derives potential from weighted expected goals and assists,
// valued at the position's points-per-goal and three per assist, inflated by
// the bonus factor.
type ThreatStrategy struct {
	BonusFactor float64
}

func (s ThreatStrategy) Name() string { return "threat" }

func (s ThreatStrategy) BasePotential(p player.Player, hist player.History) float64 {
	xg := weightedRecent(hist, func(r player.GameRecord) float64 { return r.ExpectedGoals })
	xa := weightedRecent(hist, func(r player.GameRecord) float64 { return r.ExpectedAssists })
	return (xg*goalPoints(p.Position) + xa*3.0) * s.BonusFactor
}

func goalPoints(pos player.Position) float64 {
	switch pos {
	case player.PositionGoalkeeper, player.PositionDefender:
		return 6
	case player.PositionMidfielder:
		return 5
	default:
		return 4
	}
}

// LegacyStrategy blends weighted recent form with the season points-per-game
// scaled by a minutes ratio. Appearance points are implicit in the blend.
type LegacyStrategy struct{}

func (LegacyStrategy) Name() string { return "legacy" }

func (LegacyStrategy) BasePotential(p player.Player, hist player.History) float64 {
	minutesRatio := weightedMinutes(hist) / 90
	if minutesRatio > 1.0 {
		minutesRatio = 1.0
	}
	return weightedForm(hist)*0.6 + p.PointsPerGame*minutesRatio*0.4
}
