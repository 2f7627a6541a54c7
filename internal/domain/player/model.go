package player

import "fmt"

// Position represents football position categories used in fantasy rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// PositionFromElementType maps the provider's element_type (1..4) to a Position.
func PositionFromElementType(elementType int) (Position, bool) {
	switch elementType {
	case 1:
		return PositionGoalkeeper, true
	case 2:
		return PositionDefender, true
	case 3:
		return PositionMidfielder, true
	case 4:
		return PositionForward, true
	default:
		return "", false
	}
}

// Player is one selectable athlete from the bootstrap snapshot. The core never
// mutates a Player; derived statistics travel on separate types.
type Player struct {
	ID       int
	Name     string
	TeamID   int
	Position Position

	// Price is in millions (now_cost / 10).
	Price float64

	// SelectedByPercent is the league-wide ownership percentage.
	SelectedByPercent float64

	// Availability is the chance of playing the next round in percent.
	// Nil means the provider reported nothing, which reads as fully available.
	Availability *int

	// Season aggregates from the bootstrap snapshot, used by the legacy
	// scoring strategy.
	Form          float64
	PointsPerGame float64
	SeasonMinutes int

	// Set-piece orders as reported by the provider. 1 means first choice.
	// Nil means the provider has no ordering data for this player.
	PenaltiesOrder       *int
	DirectFreekicksOrder *int
	CornersOrder         *int
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be positive")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.TeamID <= 0 {
		return fmt.Errorf("player team id must be positive")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	return nil
}

// AvailabilityFraction returns chance-of-playing as 0..1, treating absent
// data as fully available.
func (p Player) AvailabilityFraction() float64 {
	if p.Availability == nil {
		return 1.0
	}
	v := *p.Availability
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 1.0
	}
	return float64(v) / 100
}

// GameRecord is one completed appearance for a player. Records are append-only
// and chronologically ordered per player across gameweeks.
type GameRecord struct {
	Round                 int
	Minutes               int
	TotalPoints           int
	ExpectedGoals         float64
	ExpectedAssists       float64
	DefensiveContribution int
	WasHome               bool
	OpponentID            int
}

// History is a player's chronological list of game records.
type History []GameRecord

// LastN returns the most recent n records, newest last, without copying.
func (h History) LastN(n int) History {
	if n <= 0 || len(h) == 0 {
		return nil
	}
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Before splits off the records strictly earlier than the given round.
func (h History) Before(round int) History {
	out := make(History, 0, len(h))
	for _, rec := range h {
		if rec.Round < round {
			out = append(out, rec)
		}
	}
	return out
}

// ForRound returns the record for one round, if any.
func (h History) ForRound(round int) (GameRecord, bool) {
	for _, rec := range h {
		if rec.Round == round {
			return rec, true
		}
	}
	return GameRecord{}, false
}
