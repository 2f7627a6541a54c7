package usecase

import (
	"context"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/team"
	"github.com/fplkit/planner/internal/domain/xp"
)

const (
	penaltyTakerBonus  = 1.15
	setPieceTakerBonus = 1.05

	cleanSheetBase      = 0.30
	cleanSheetStep      = 0.10
	cleanSheetFloor     = 0.05
	cleanSheetCeiling   = 0.80
	cleanSheetHomeBonus = 0.05

	// Matchup thresholds on the raw strength scale.
	matchupWeakStrength   = 1050
	matchupStrongStrength = 1250
)

// XPService is the expected-points engine. Every call is a pure, bounded
// computation over its inputs; it holds no state beyond configuration, so it
// is safe to share across goroutines as long as the snapshots passed in are
// not mutated mid-call.
type XPService struct {
	cfg      EngineConfig
	strategy ScoringStrategy
}

func NewXPService(cfg EngineConfig) *XPService {
	cfg = cfg.normalized()

	var strategy ScoringStrategy
	if cfg.UseThreatModel {
		strategy = ThreatStrategy{BonusFactor: cfg.BonusFactor}
	} else {
		strategy = LegacyStrategy{}
	}

	return &XPService{cfg: cfg, strategy: strategy}
}

func (s *XPService) Config() EngineConfig { return s.cfg }

// Strategy exposes the active scoring strategy name for diagnostics.
func (s *XPService) Strategy() string { return s.strategy.Name() }

// Estimate produces the per-gameweek and aggregate expected points for one
// player over the upcoming fixtures, with a full breakdown per gameweek.
// Fixtures with an unknown opponent are skipped silently; an empty history
// yields zero form, minutes and attacking potential rather than an error.
func (s *XPService) Estimate(
	ctx context.Context,
	p player.Player,
	teams team.Index,
	upcoming []fixture.Fixture,
	hist player.History,
	resolver *fdr.Resolver,
) xp.Estimate {
	_, span := startUsecaseSpan(ctx, "usecase.XPService.Estimate")
	defer span.End()

	if resolver == nil {
		resolver = fdr.NewResolver(nil)
	}

	appearance := appearancePoints(weightedMinutes(hist))
	base := s.strategy.BasePotential(p, hist)

	penTaker := s.isPenaltyTaker(p)
	spTaker := s.isSetPieceTaker(p)
	availability := p.AvailabilityFraction()

	est := xp.Estimate{
		PerGameweek: make(map[int]float64),
		Breakdowns:  make(map[int]xp.Breakdown),
	}

	fixtures := upcoming
	if len(fixtures) > s.cfg.Horizon {
		fixtures = fixtures[:s.cfg.Horizon]
	}

	for _, f := range fixtures {
		opponentID, home, ok := f.OpponentOf(p.TeamID)
		if !ok {
			continue
		}
		opponent, ok := teams.Get(opponentID)
		if !ok {
			continue
		}
		myTeam, ok := teams.Get(p.TeamID)
		if !ok {
			continue
		}

		difficulty, ok := resolver.Difficulty(f, p.TeamID, teams)
		if !ok {
			continue
		}
		// The same resolver inverted: how hard are we for the opponent.
		myDifficulty, ok := resolver.Difficulty(f, opponentID, teams)
		if !ok {
			continue
		}

		fixtureMult := 1.0 + float64(3-difficulty)*s.cfg.FixtureFactor
		matchupMult := matchupMultiplier(p.Position, opponent, myTeam, home)

		venueMult := s.cfg.AwayPenalty
		if home {
			venueMult = s.cfg.HomeBoost
		}

		csProb := cleanSheetProbability(myDifficulty, difficulty, home)

		perf, attackPts, savePts := positionPoints(p.Position, base, matchupMult, csProb, difficulty, myDifficulty)

		var value float64
		if s.cfg.UseThreatModel {
			// Appearance points are not fixture-dependent, so only the
			// performance component gets the fixture and venue scaling.
			value = appearance + perf*fixtureMult*venueMult
		} else {
			value = base * fixtureMult * matchupMult * venueMult
		}

		penBonus := 1.0
		if penTaker {
			penBonus = penaltyTakerBonus
		}
		spBonus := 1.0
		if spTaker {
			spBonus = setPieceTakerBonus
		}
		value *= penBonus * spBonus
		value *= availability

		est.PerGameweek[f.Gameweek] = value
		est.Breakdowns[f.Gameweek] = xp.Breakdown{
			Gameweek:       f.Gameweek,
			OpponentID:     opponentID,
			Opponent:       opponent.Name,
			Home:           home,
			Difficulty:     difficulty,
			OwnDifficulty:  myDifficulty,
			BasePotential:  base,
			FixtureMult:    fixtureMult,
			MatchupMult:    matchupMult,
			VenueMult:      venueMult,
			CleanSheetProb: csProb,
			AppearancePts:  appearance,
			AttackPts:      attackPts,
			SavePts:        savePts,
			PenaltyBonus:   penBonus,
			SetPieceBonus:  spBonus,
			Availability:   availability,
			Final:          value,
		}
		est.Total += value
	}

	return est
}

func appearancePoints(minutes float64) float64 {
	switch {
	case minutes >= 60:
		return 2.0
	case minutes > 0:
		return 1.0
	default:
		return 0
	}
}

func cleanSheetProbability(myDifficulty, difficulty int, home bool) float64 {
	p := cleanSheetBase + cleanSheetStep*float64(myDifficulty-difficulty)
	if p < cleanSheetFloor {
		p = cleanSheetFloor
	}
	if p > cleanSheetCeiling {
		p = cleanSheetCeiling
	}
	if home {
		p += cleanSheetHomeBonus
	}
	return p
}

// matchupMultiplier compares the opponent's relevant strength with our own.
// Defensive positions want a weak opposing attack backed by an adequate
// defence; attacking positions mirror that against the opposing defence.
func matchupMultiplier(pos player.Position, opponent, myTeam team.Team, home bool) float64 {
	opponentHome := !home

	switch pos {
	case player.PositionGoalkeeper, player.PositionDefender:
		if opponent.Attack(opponentHome) < matchupWeakStrength {
			if myTeam.Defence(home) < matchupWeakStrength {
				return 1.0
			}
			return 1.1
		}
		if myTeam.Defence(home) > matchupStrongStrength {
			return 1.0
		}
		return 0.9
	default:
		if opponent.Defence(opponentHome) < matchupWeakStrength {
			if myTeam.Attack(home) < matchupWeakStrength {
				return 1.0
			}
			return 1.1
		}
		if myTeam.Attack(home) > matchupStrongStrength {
			return 1.0
		}
		return 0.9
	}
}

func positionPoints(pos player.Position, base, matchupMult, csProb float64, difficulty, myDifficulty int) (perf, attackPts, savePts float64) {
	switch pos {
	case player.PositionGoalkeeper:
		savePts = goalkeeperSavePoints(difficulty, myDifficulty)
		perf = csProb*4.0 + savePts
		return perf, 0, savePts
	case player.PositionDefender:
		attackPts = base * 0.1 * matchupMult
		perf = csProb*4.0 + attackPts
		return perf, attackPts, 0
	case player.PositionMidfielder:
		attackPts = base * 0.8 * matchupMult
		perf = csProb*1.0 + attackPts
		return perf, attackPts, 0
	default:
		attackPts = base * 1.0 * matchupMult
		return attackPts, attackPts, 0
	}
}

// goalkeeperSavePoints rewards keepers facing much stronger opposition, who
// see more shots.
func goalkeeperSavePoints(difficulty, myDifficulty int) float64 {
	switch {
	case difficulty-myDifficulty >= 2:
		return 1.0
	case difficulty > myDifficulty:
		return 0.5
	default:
		return 0.2
	}
}

// isPenaltyTaker prefers structured order data, falling back to the
// configured name list only when the snapshot has no ordering at all.
func (s *XPService) isPenaltyTaker(p player.Player) bool {
	if p.PenaltiesOrder != nil {
		return *p.PenaltiesOrder == 1
	}
	return containsName(s.cfg.PenaltyTakerNames, p.Name)
}

func (s *XPService) isSetPieceTaker(p player.Player) bool {
	if p.DirectFreekicksOrder != nil || p.CornersOrder != nil {
		return orderIsFirst(p.DirectFreekicksOrder) || orderIsFirst(p.CornersOrder)
	}
	return containsName(s.cfg.SetPieceTakerNames, p.Name)
}

func orderIsFirst(order *int) bool {
	return order != nil && *order == 1
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
