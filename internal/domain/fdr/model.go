package fdr

// Override carries a user-authored difficulty pair for one team, defined
// relative to that team's own venue: Home is how hard the team is to face
// when it plays at home, Away when it travels.
type Override struct {
	Home int
	Away int
}

// Clamped returns the override with both values forced into [1,5].
func (o Override) Clamped() Override {
	return Override{Home: clampRating(o.Home), Away: clampRating(o.Away)}
}

func clampRating(v int) int {
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

const (
	MinRating = 1
	MaxRating = 5
)

// OverrideTable maps team display names to user overrides. The core only
// reads the table; persistence belongs to the override file store.
type OverrideTable map[string]Override

// Lookup returns the clamped override for a team name.
func (t OverrideTable) Lookup(teamName string) (Override, bool) {
	if t == nil {
		return Override{}, false
	}
	o, ok := t[teamName]
	if !ok {
		return Override{}, false
	}
	return o.Clamped(), true
}

// Clone copies the table so a caller can hold a snapshot while the source
// keeps being edited.
func (t OverrideTable) Clone() OverrideTable {
	if t == nil {
		return nil
	}
	out := make(OverrideTable, len(t))
	for name, o := range t {
		out[name] = o
	}
	return out
}
