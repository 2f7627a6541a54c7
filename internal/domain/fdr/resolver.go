package fdr

import (
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/team"
)

// Strength thresholds for the default difficulty buckets. The mapping never
// produces 1: the lowest band is reserved for overrides, so a default rating
// bottoms out at 2 even against the weakest opponent.
const (
	bucketEasy   = 1050
	bucketMedium = 1150
	bucketHard   = 1250
)

// Resolver computes a 1-5 difficulty rating for a team in a fixture,
// consulting user overrides before the strength-derived default. It is a pure
// function over its inputs; the override table and index must not be mutated
// mid-call by another goroutine.
type Resolver struct {
	overrides OverrideTable
}

func NewResolver(overrides OverrideTable) *Resolver {
	return &Resolver{overrides: overrides}
}

// Difficulty rates the fixture for the given team. ok is false when the team
// is not part of the fixture or the opponent is missing from the index, in
// which case callers skip the fixture.
func (r *Resolver) Difficulty(f fixture.Fixture, forTeamID int, index team.Index) (int, bool) {
	opponentID, home, ok := f.OpponentOf(forTeamID)
	if !ok {
		return 0, false
	}
	opponent, ok := index.Get(opponentID)
	if !ok {
		return 0, false
	}

	// The override is keyed by the opponent's name and defined from the
	// opponent's point of view. When we are home the opponent is away,
	// so the Away entry is the one that applies.
	if o, found := r.overrides.Lookup(opponent.Name); found {
		if home {
			return o.Away, true
		}
		return o.Home, true
	}

	return defaultBucket(opponent.CombinedStrength(!home)), true
}

func defaultBucket(combined float64) int {
	switch {
	case combined < bucketEasy:
		return 2
	case combined < bucketMedium:
		return 3
	case combined < bucketHard:
		return 4
	default:
		return 5
	}
}
