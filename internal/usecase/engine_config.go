package usecase

// EngineConfig carries every tunable the expected-points engine reads. It is
// built once from the environment and passed in explicitly; the engine keeps
// no module-level state.
type EngineConfig struct {
	// Horizon caps how many upcoming fixtures one estimate spans.
	Horizon int

	// FixtureFactor scales how strongly the 1-5 difficulty moves the
	// fixture multiplier: mult = 1 + (3-difficulty)*factor.
	FixtureFactor float64

	// HomeBoost and AwayPenalty are the venue multipliers.
	HomeBoost   float64
	AwayPenalty float64

	// BonusFactor inflates threat-model attacking potential to approximate
	// unmodeled bonus-point variance. Sensible range is 1.1-1.3.
	BonusFactor float64

	// UseThreatModel selects the xG/xA strategy over the legacy
	// points-per-game blend.
	UseThreatModel bool

	// PenaltyTakerNames and SetPieceTakerNames are the degraded-mode
	// fallbacks, consulted only when the snapshot carries no set-piece
	// ordering data for a player.
	PenaltyTakerNames  []string
	SetPieceTakerNames []string
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Horizon:        5,
		FixtureFactor:  0.08,
		HomeBoost:      1.1,
		AwayPenalty:    0.95,
		BonusFactor:    1.2,
		UseThreatModel: true,
	}
}

func (c EngineConfig) normalized() EngineConfig {
	defaults := DefaultEngineConfig()
	if c.Horizon <= 0 {
		c.Horizon = defaults.Horizon
	}
	if c.FixtureFactor <= 0 {
		c.FixtureFactor = defaults.FixtureFactor
	}
	if c.HomeBoost <= 0 {
		c.HomeBoost = defaults.HomeBoost
	}
	if c.AwayPenalty <= 0 {
		c.AwayPenalty = defaults.AwayPenalty
	}
	if c.BonusFactor <= 0 {
		c.BonusFactor = defaults.BonusFactor
	}
	return c
}
