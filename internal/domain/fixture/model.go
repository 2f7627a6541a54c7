package fixture

import "sort"

// Fixture represents one scheduled match. Difficulty values are the
// provider's optional pre-tagged ratings; zero means absent, in which case
// the resolver recomputes them from team strength.
type Fixture struct {
	Gameweek       int
	HomeTeamID     int
	AwayTeamID     int
	HomeDifficulty int
	AwayDifficulty int
}

// Involves reports whether the team plays in this fixture.
func (f Fixture) Involves(teamID int) bool {
	return f.HomeTeamID == teamID || f.AwayTeamID == teamID
}

// OpponentOf returns the other side for the given team and whether the given
// team is at home. ok is false when the team is not in the fixture.
func (f Fixture) OpponentOf(teamID int) (opponentID int, home bool, ok bool) {
	switch teamID {
	case f.HomeTeamID:
		return f.AwayTeamID, true, true
	case f.AwayTeamID:
		return f.HomeTeamID, false, true
	default:
		return 0, false, false
	}
}

// Event is one gameweek entry from the bootstrap events list.
type Event struct {
	ID        int
	Finished  bool
	IsCurrent bool
	IsNext    bool
}

// NextGameweek derives the next unfinished gameweek from the events list.
// Every caller that needs "the gameweek being planned for" goes through this
// one function so concurrent derivations cannot diverge.
func NextGameweek(events []Event) int {
	for _, ev := range events {
		if !ev.Finished {
			return ev.ID
		}
	}
	for _, ev := range events {
		if ev.IsNext {
			return ev.ID
		}
	}
	return 1
}

// CurrentGameweek returns the in-progress gameweek, falling back to the one
// before the next event during pre-deadline gaps.
func CurrentGameweek(events []Event) int {
	for _, ev := range events {
		if ev.IsCurrent {
			return ev.ID
		}
	}
	for _, ev := range events {
		if ev.IsNext {
			if ev.ID > 1 {
				return ev.ID - 1
			}
			return 1
		}
	}
	return 1
}

// UpcomingForTeam filters fixtures to those involving the team from the given
// gameweek onward, sorted by gameweek, capped at horizon entries.
func UpcomingForTeam(fixtures []Fixture, teamID, fromGameweek, horizon int) []Fixture {
	out := make([]Fixture, 0, horizon)
	for _, f := range fixtures {
		if f.Gameweek < fromGameweek || !f.Involves(teamID) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gameweek < out[j].Gameweek })
	if horizon > 0 && len(out) > horizon {
		out = out[:horizon]
	}
	return out
}
