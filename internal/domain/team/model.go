package team

import "fmt"

// Team is one club from the bootstrap snapshot. Strength ratings are the
// provider's raw numbers, roughly centered at 1000, split by venue.
type Team struct {
	ID          int
	Name        string
	Short       string
	AttackHome  float64
	AttackAway  float64
	DefenceHome float64
	DefenceAway float64
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be positive")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

// Attack returns the venue-specific attack rating.
func (t Team) Attack(home bool) float64 {
	if home {
		return t.AttackHome
	}
	return t.AttackAway
}

// Defence returns the venue-specific defence rating.
func (t Team) Defence(home bool) float64 {
	if home {
		return t.DefenceHome
	}
	return t.DefenceAway
}

// CombinedStrength is the mean of attack and defence at the given venue.
func (t Team) CombinedStrength(home bool) float64 {
	return (t.Attack(home) + t.Defence(home)) / 2
}

// Index is a per-team strength lookup keyed by team identifier. It is built
// once per data refresh and treated as an immutable snapshot afterwards.
type Index map[int]Team

func NewIndex(teams []Team) Index {
	ix := make(Index, len(teams))
	for _, t := range teams {
		ix[t.ID] = t
	}
	return ix
}

func (ix Index) Get(id int) (Team, bool) {
	t, ok := ix[id]
	return t, ok
}

// NameOf returns the display name for a team id, or empty when unknown.
func (ix Index) NameOf(id int) string {
	if t, ok := ix[id]; ok {
		return t.Name
	}
	return ""
}

// ShortOf returns the short code, falling back to an uppercase prefix of the
// display name when the snapshot carries none.
func (ix Index) ShortOf(id int) string {
	t, ok := ix[id]
	if !ok {
		return ""
	}
	if t.Short != "" {
		return t.Short
	}
	name := t.Name
	if len(name) > 3 {
		name = name[:3]
	}
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
