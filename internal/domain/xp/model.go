package xp

// Breakdown records every multiplier and point component behind one
// per-gameweek estimate. It is produced by the engine, never mutated, and
// consumed only for explainability and backtest diagnostics.
type Breakdown struct {
	Gameweek     int     `json:"gameweek"`
	OpponentID   int     `json:"opponent_id"`
	Opponent     string  `json:"opponent"`
	Home         bool    `json:"home"`
	Difficulty   int     `json:"difficulty"`
	OwnDifficulty int    `json:"own_difficulty"`

	BasePotential  float64 `json:"base_potential"`
	FixtureMult    float64 `json:"fixture_mult"`
	MatchupMult    float64 `json:"matchup_mult"`
	VenueMult      float64 `json:"venue_mult"`
	CleanSheetProb float64 `json:"clean_sheet_prob"`

	AppearancePts float64 `json:"appearance_pts"`
	AttackPts     float64 `json:"attack_pts"`
	SavePts       float64 `json:"save_pts"`

	PenaltyBonus  float64 `json:"pen_bonus"`
	SetPieceBonus float64 `json:"set_piece_bonus"`
	Availability  float64 `json:"availability"`

	Final float64 `json:"final"`
}

// Estimate is the engine's output for one player over the lookahead horizon.
type Estimate struct {
	Total       float64           `json:"total"`
	PerGameweek map[int]float64   `json:"gw_points"`
	Breakdowns  map[int]Breakdown `json:"breakdowns"`
}

// ForGameweek returns the per-gameweek value, zero when the player has no
// fixture in that round.
func (e Estimate) ForGameweek(gw int) float64 {
	return e.PerGameweek[gw]
}
