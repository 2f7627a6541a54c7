package squad

import (
	"errors"
	"fmt"

	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/xp"
)

var (
	ErrInvalidSize      = errors.New("squad must contain exactly 15 players")
	ErrMissingPosition  = errors.New("squad is missing a position")
	ErrDuplicatePlayer  = errors.New("duplicate player in squad")
	ErrInvalidStructure = errors.New("squad position counts do not match 2-5-5-3")
)

const (
	Size = 15

	goalkeepersTotal = 2
	defendersTotal   = 5
	midfieldersTotal = 5
	forwardsTotal    = 3
)

// Member is one squad player with derived scores attached for selection.
type Member struct {
	Player player.Player
	// NextXP is the estimate for the gameweek being planned.
	NextXP float64
	// TotalXP is the aggregate over the lookahead horizon.
	TotalXP float64
	// CapScore is the risk-adjusted captaincy score.
	CapScore float64
	Estimate xp.Estimate
}

// Selection is the optimizer's output: a partition of the squad into a legal
// starting XI plus bench, with captaincy picks drawn from the starters.
type Selection struct {
	Starters    []Member
	Bench       []Member
	Captain     *Member
	ViceCaptain *Member
}

// Validate checks the canonical 15-player composition: 2 GK, 5 DEF, 5 MID,
// 3 FWD, no duplicates. The optimizer still produces a best-effort selection
// for squads that fail this; the error is the caller's signal.
func Validate(members []Member) error {
	if len(members) != Size {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, len(members))
	}

	seen := make(map[int]struct{}, len(members))
	counts := make(map[player.Position]int, 4)
	for _, m := range members {
		if _, dup := seen[m.Player.ID]; dup {
			return fmt.Errorf("%w: player %d", ErrDuplicatePlayer, m.Player.ID)
		}
		seen[m.Player.ID] = struct{}{}
		counts[m.Player.Position]++
	}

	for pos := range player.AllPositions {
		if counts[pos] == 0 {
			return fmt.Errorf("%w: %s", ErrMissingPosition, pos)
		}
	}

	if counts[player.PositionGoalkeeper] != goalkeepersTotal ||
		counts[player.PositionDefender] != defendersTotal ||
		counts[player.PositionMidfielder] != midfieldersTotal ||
		counts[player.PositionForward] != forwardsTotal {
		return fmt.Errorf("%w: %d-%d-%d-%d",
			ErrInvalidStructure,
			counts[player.PositionGoalkeeper],
			counts[player.PositionDefender],
			counts[player.PositionMidfielder],
			counts[player.PositionForward],
		)
	}

	return nil
}
