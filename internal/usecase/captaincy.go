package usecase

import "github.com/fplkit/planner/internal/domain/player"

const (
	captaincyExplosivenessBias = 1.1
	captaincyOwnershipBias     = 1.05
	captaincyOwnershipFloor    = 30.0
	captaincyRotationPenalty   = 0.5
	captaincyMinutesFloor      = 60.0
)

// CaptaincyScore derives a risk-adjusted captaincy rating from the next
// gameweek's expected points. Midfielders and forwards get an explosiveness
// bias, heavily-owned players a safety bias, and players averaging under an
// hour over their last three appearances a rotation penalty. Multipliers
// compose in that order with no clamping.
func CaptaincyScore(p player.Player, nextGameweekXP float64, hist player.History) float64 {
	score := nextGameweekXP

	if p.Position == player.PositionMidfielder || p.Position == player.PositionForward {
		score *= captaincyExplosivenessBias
	}

	if p.SelectedByPercent > captaincyOwnershipFloor {
		score *= captaincyOwnershipBias
	}

	recent := hist.LastN(3)
	var minutes float64
	for _, rec := range recent {
		minutes += float64(rec.Minutes)
	}
	avgMinutes := 0.0
	if len(recent) > 0 {
		avgMinutes = minutes / float64(len(recent))
	}
	if avgMinutes < captaincyMinutesFloor {
		score *= captaincyRotationPenalty
	}

	return score
}
