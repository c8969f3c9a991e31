package nudge

import "time"

// Config holds detector thresholds. Zero values are replaced by the
// defaults in DefaultConfig, except ExitRearm where zero means the exit
// nudge never re-arms after dismissal.
type Config struct {
	IdleTimeout    time.Duration
	IdleDiscount   float64
	IdleSampleSize int

	HesitationDelayMin time.Duration
	HesitationDelayMax time.Duration
	HesitationMaxStep  float64
	HesitationDiscount float64
	HoverDelay         time.Duration

	ExitRearm     time.Duration
	ExitTolerance float64

	ReplenishmentDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		IdleTimeout:        10 * time.Second,
		IdleDiscount:       10,
		IdleSampleSize:     3,
		HesitationDelayMin: 3 * time.Second,
		HesitationDelayMax: 5 * time.Second,
		HesitationMaxStep:  50,
		HesitationDiscount: 15,
		HoverDelay:         5 * time.Second,
		ExitRearm:          5 * time.Second,
		ExitTolerance:      0,
		ReplenishmentDelay: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.IdleDiscount <= 0 {
		c.IdleDiscount = d.IdleDiscount
	}
	if c.IdleSampleSize <= 0 {
		c.IdleSampleSize = d.IdleSampleSize
	}
	if c.HesitationDelayMin <= 0 {
		c.HesitationDelayMin = d.HesitationDelayMin
	}
	if c.HesitationDelayMax <= 0 {
		c.HesitationDelayMax = d.HesitationDelayMax
	}
	if c.HesitationDelayMax < c.HesitationDelayMin {
		c.HesitationDelayMax = c.HesitationDelayMin
	}
	if c.HesitationMaxStep <= 0 {
		c.HesitationMaxStep = d.HesitationMaxStep
	}
	if c.HesitationDiscount <= 0 {
		c.HesitationDiscount = d.HesitationDiscount
	}
	if c.HoverDelay <= 0 {
		c.HoverDelay = d.HoverDelay
	}
	if c.ExitRearm < 0 {
		c.ExitRearm = 0
	}
	if c.ReplenishmentDelay < 0 {
		c.ReplenishmentDelay = 0
	}
	return c
}
