package interaction

import "github.com/OFFIS-RIT/dramaturgy/pkg/network"

// Palette maps importance groups to fill colors.
type Palette map[network.Group]string

const fallbackColor = "#999999"

// DefaultPalette returns the stock group colors.
func DefaultPalette() Palette {
	return Palette{
		network.GroupMajor:      "#d62728",
		network.GroupSupporting: "#ff7f0e",
		network.GroupMinor:      "#2ca02c",
		network.GroupBackground: "#1f77b4",
	}
}

// Color returns the fill of g, falling back to grey.
func (p Palette) Color(g network.Group) string {
	if c, ok := p[g]; ok && c != "" {
		return c
	}
	return fallbackColor
}
