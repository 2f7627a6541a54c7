package usecase

import (
	"context"

	"github.com/fplkit/planner/internal/domain/fdr"
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/team"
)

// Snapshot is one complete bootstrap pull: teams with strength ratings, the
// full player pool and the season's event calendar. The core treats it as an
// immutable value for the duration of a call.
type Snapshot struct {
	Teams   team.Index
	Players []player.Player
	Events  []fixture.Event
}

// PlayerByID finds a player in the snapshot pool.
func (s Snapshot) PlayerByID(id int) (player.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return player.Player{}, false
}

// PlayerDetail is the per-player summary: upcoming fixtures and the
// chronological appearance history.
type PlayerDetail struct {
	Upcoming []fixture.Fixture
	History  player.History
}

// Picks is the squad an entry actually fielded for one gameweek.
type Picks struct {
	PlayerIDs []int
	CaptainID int
}

// DataProvider is the external data-fetch collaborator. The core never
// speaks HTTP itself; implementations own caching and retries.
type DataProvider interface {
	Bootstrap(ctx context.Context) (Snapshot, error)
	PlayerDetail(ctx context.Context, playerID int) (PlayerDetail, error)
	Fixtures(ctx context.Context) ([]fixture.Fixture, error)
	EntryPicks(ctx context.Context, entryID, gameweek int) (Picks, error)
}

// OverrideSource supplies the user-authored difficulty override table. The
// core only reads it; persistence belongs to the store implementation.
type OverrideSource interface {
	Load(ctx context.Context) (fdr.OverrideTable, error)
}

// StaticOverrides adapts a fixed table to the OverrideSource interface.
type StaticOverrides fdr.OverrideTable

func (s StaticOverrides) Load(context.Context) (fdr.OverrideTable, error) {
	return fdr.OverrideTable(s), nil
}
