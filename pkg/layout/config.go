package layout

import "math"

// Config holds the viewport and force constants of a simulation.
type Config struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`

	// Link rest distance is max(MinLinkDistance, LinkDistance - LinkDistanceStep*weight).
	LinkDistance     float64 `toml:"link_distance" json:"linkDistance"`
	MinLinkDistance  float64 `toml:"min_link_distance" json:"minLinkDistance"`
	LinkDistanceStep float64 `toml:"link_distance_step" json:"linkDistanceStep"`

	// Link strength is min(MaxLinkStrength, LinkStrength + LinkStrengthStep*weight).
	LinkStrength     float64 `toml:"link_strength" json:"linkStrength"`
	LinkStrengthStep float64 `toml:"link_strength_step" json:"linkStrengthStep"`
	MaxLinkStrength  float64 `toml:"max_link_strength" json:"maxLinkStrength"`

	ChargeStrength  float64 `toml:"charge_strength" json:"chargeStrength"`
	CollidePadding  float64 `toml:"collide_padding" json:"collidePadding"`
	CollideStrength float64 `toml:"collide_strength" json:"collideStrength"`

	AlphaTarget     float64 `toml:"alpha_target" json:"alphaTarget"`
	DragAlphaTarget float64 `toml:"drag_alpha_target" json:"dragAlphaTarget"`
	ResizeAlpha     float64 `toml:"resize_alpha" json:"resizeAlpha"`
	AlphaMin        float64 `toml:"alpha_min" json:"alphaMin"`
	AlphaDecay      float64 `toml:"alpha_decay" json:"alphaDecay"`
	VelocityDecay   float64 `toml:"velocity_decay" json:"velocityDecay"`
}

// DefaultConfig returns the constants used by the network page.
func DefaultConfig() Config {
	return Config{
		Width:            800,
		Height:           600,
		LinkDistance:     100,
		MinLinkDistance:  50,
		LinkDistanceStep: 15,
		LinkStrength:     0.5,
		LinkStrengthStep: 0.1,
		MaxLinkStrength:  0.8,
		ChargeStrength:   -300,
		CollidePadding:   5,
		CollideStrength:  0.7,
		AlphaTarget:      0.1,
		DragAlphaTarget:  0.3,
		ResizeAlpha:      0.3,
		AlphaMin:         0.001,
		AlphaDecay:       1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:    0.4,
	}
}

// withDefaults fills the fields a simulation cannot run without.
func (c Config) withDefaults() Config {
	if c == (Config{}) {
		return DefaultConfig()
	}
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		c.AlphaDecay = d.AlphaDecay
	}
	if c.VelocityDecay < 0 || c.VelocityDecay > 1 {
		c.VelocityDecay = d.VelocityDecay
	}
	return c
}

// Center returns the viewport center.
func (c Config) Center() (float64, float64) {
	return c.Width / 2, c.Height / 2
}

// LinkDistanceFor returns the rest length of a link with the given weight.
func (c Config) LinkDistanceFor(weight int) float64 {
	return math.Max(c.MinLinkDistance, c.LinkDistance-c.LinkDistanceStep*float64(weight))
}

// LinkStrengthFor returns the stiffness of a link with the given weight.
func (c Config) LinkStrengthFor(weight int) float64 {
	return math.Min(c.MaxLinkStrength, c.LinkStrength+c.LinkStrengthStep*float64(weight))
}
