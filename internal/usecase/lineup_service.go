package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/squad"
)

const (
	startersTotal = 11

	startersGKExact = 1
	startersDEFMin  = 3
	startersMIDMin  = 2
	startersFWDMin  = 1

	startersDEFMax = 5
	startersMIDMax = 5
	startersFWDMax = 3
)

// LineupService partitions a 15-player squad into a legal starting XI plus
// bench and selects captain and vice-captain. The selection is a deterministic
// greedy pass, not a globally optimal solve; the interface leaves room to swap
// in a constrained-optimization implementation without touching the engine.
type LineupService struct{}

func NewLineupService() *LineupService {
	return &LineupService{}
}

// Optimize selects starters, bench, captain and vice-captain. A malformed
// squad (wrong size, missing position, duplicate) still produces a
// best-effort selection; the returned error carries the validation failure so
// callers can tell the degenerate case apart.
func (s *LineupService) Optimize(ctx context.Context, members []squad.Member) (squad.Selection, error) {
	_, span := startUsecaseSpan(ctx, "usecase.LineupService.Optimize")
	defer span.End()

	var validationErr error
	if err := squad.Validate(members); err != nil {
		validationErr = fmt.Errorf("%w: %v", ErrInvalidSquad, err)
	}

	pool := make([]squad.Member, len(members))
	copy(pool, members)
	sortByXP(pool)

	var gks, defs, mids, fwds []squad.Member
	for _, m := range pool {
		switch m.Player.Position {
		case player.PositionGoalkeeper:
			gks = append(gks, m)
		case player.PositionDefender:
			defs = append(defs, m)
		case player.PositionMidfielder:
			mids = append(mids, m)
		default:
			fwds = append(fwds, m)
		}
	}

	var starters, bench []squad.Member

	// Mandatory picks satisfy the minimum-formation rule: one keeper, at
	// least three defenders, one forward.
	if len(gks) > 0 {
		starters = append(starters, gks[0])
		bench = append(bench, gks[1:]...)
	}
	starters = append(starters, take(defs, startersDEFMin)...)
	starters = append(starters, take(mids, startersMIDMin)...)
	starters = append(starters, take(fwds, startersFWDMin)...)

	remaining := append(append(drop(defs, startersDEFMin), drop(mids, startersMIDMin)...), drop(fwds, startersFWDMin)...)
	sortByXP(remaining)

	nDef := min(len(defs), startersDEFMin)
	nMid := min(len(mids), startersMIDMin)
	nFwd := min(len(fwds), startersFWDMin)

	for _, m := range remaining {
		if len(starters) >= startersTotal {
			bench = append(bench, m)
			continue
		}
		switch m.Player.Position {
		case player.PositionDefender:
			if nDef < startersDEFMax {
				starters = append(starters, m)
				nDef++
				continue
			}
		case player.PositionMidfielder:
			if nMid < startersMIDMax {
				starters = append(starters, m)
				nMid++
				continue
			}
		case player.PositionForward:
			if nFwd < startersFWDMax {
				starters = append(starters, m)
				nFwd++
				continue
			}
		}
		bench = append(bench, m)
	}

	selection := squad.Selection{Starters: starters, Bench: bench}

	ranked := make([]squad.Member, len(starters))
	copy(ranked, starters)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CapScore != ranked[j].CapScore {
			return ranked[i].CapScore > ranked[j].CapScore
		}
		return ranked[i].Player.ID < ranked[j].Player.ID
	})
	if len(ranked) > 0 {
		selection.Captain = &ranked[0]
	}
	if len(ranked) > 1 {
		selection.ViceCaptain = &ranked[1]
	}

	return selection, validationErr
}

// sortByXP orders members descending by next-gameweek xP, with the player id
// as a stable tie-break so repeated runs produce identical selections.
func sortByXP(members []squad.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].NextXP != members[j].NextXP {
			return members[i].NextXP > members[j].NextXP
		}
		return members[i].Player.ID < members[j].Player.ID
	})
}

func take(members []squad.Member, n int) []squad.Member {
	if len(members) < n {
		n = len(members)
	}
	return members[:n]
}

func drop(members []squad.Member, n int) []squad.Member {
	if len(members) < n {
		return nil
	}
	out := make([]squad.Member, 0, len(members)-n)
	out = append(out, members[n:]...)
	return out
}
