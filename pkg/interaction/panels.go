package interaction

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

const (
	scriptPath = "/script.html"
	noneText   = "None"
)

// SceneLink points at one scene of the script page.
type SceneLink struct {
	Scene play.SceneKey `json:"scene"`
	Label string        `json:"label"`
	Href  string        `json:"href"`
}

// DetailPanel is the sidebar content for a selected character.
type DetailPanel struct {
	Name            string         `json:"name"`
	Heading         string         `json:"heading"`
	Group           network.Group  `json:"group"`
	GroupLabel      string         `json:"groupLabel"`
	Color           string         `json:"color"`
	SceneCount      int            `json:"sceneCount"`
	LineCount       int            `json:"lineCount"`
	LinePercent     string         `json:"linePercent"`
	ConnectionCount int            `json:"connectionCount"`
	ConnectionLabel string         `json:"connectionLabel"`
	Strong          []string       `json:"strong"`
	Medium          []string       `json:"medium"`
	Weak            []string       `json:"weak"`
	StrongText      string         `json:"strongText"`
	MediumText      string         `json:"mediumText"`
	WeakText        string         `json:"weakText"`
	Acts            string         `json:"acts"`
	SceneRange      string         `json:"sceneRange"`
	Scenes          []SceneLink    `json:"scenes"`
	ScriptHref      string         `json:"scriptHref"`
	Metadata        metadata.Entry `json:"metadata"`
	HasMetadata     bool           `json:"hasMetadata"`
}

// ListItem is one row of the character list.
type ListItem struct {
	Name        string        `json:"name"`
	Heading     string        `json:"heading"`
	Group       network.Group `json:"group"`
	Color       string        `json:"color"`
	Overview    string        `json:"overview"`
	Description string        `json:"description,omitempty"`
	Image       string        `json:"image,omitempty"`
	Active      bool          `json:"active"`
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func names(conns []network.Connection) []string {
	out := make([]string, len(conns))
	for i, c := range conns {
		out[i] = c.Name
	}
	return out
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return noneText
	}
	return strings.Join(values, ", ")
}

// SceneHref links a scene on the script page.
func SceneHref(k play.SceneKey) string {
	return scriptPath + "?scene=" + k.Anchor()
}

// ScriptHref links all lines of a character on the script page.
func ScriptHref(name string) string {
	return scriptPath + "?player=" + util.CompactName(name)
}

// BuildDetail assembles the detail panel of name.
func BuildDetail(net *network.Network, name string, feed *metadata.Feed, palette Palette) (DetailPanel, bool) {
	node, ok := net.Node(name)
	if !ok {
		return DetailPanel{}, false
	}

	tiers := net.Partition(name)
	connections := tiers.Len()

	d := DetailPanel{
		Name:            node.Name,
		Heading:         strings.ToUpper(node.Name),
		Group:           node.Group,
		GroupLabel:      node.Group.Label(),
		Color:           palette.Color(node.Group),
		SceneCount:      node.SceneCount,
		LineCount:       node.LineCount,
		LinePercent:     FormatPercent(net.LinePercent(node.LineCount)),
		ConnectionCount: connections,
		ConnectionLabel: plural(connections, "character"),
		Strong:          names(tiers.Strong),
		Medium:          names(tiers.Medium),
		Weak:            names(tiers.Weak),
		ScriptHref:      ScriptHref(node.Name),
	}
	d.StrongText = joinOrNone(d.Strong)
	d.MediumText = joinOrNone(d.Medium)
	d.WeakText = joinOrNone(d.Weak)

	if analysis, ok := net.AnalyzeScenes(name); ok && len(analysis.Scenes) > 0 {
		d.Acts = analysis.ActsLabel()
		d.SceneRange = analysis.Range
	}
	for _, s := range node.Scenes {
		d.Scenes = append(d.Scenes, SceneLink{Scene: s, Label: s.Label(), Href: SceneHref(s)})
	}

	if entry, ok := feed.Lookup(node.Name); ok {
		d.Metadata = entry
		d.HasMetadata = !entry.Empty()
	}

	return d, true
}

// Overview is the generated one-line summary of a character, e.g.
// "Major Character · 10 lines (50.0%) · 2 scenes · 2 connections".
func Overview(net *network.Network, node network.Node) string {
	parts := []string{node.Group.Label()}
	if node.LineCount > 0 {
		parts = append(parts, fmt.Sprintf("%d lines (%s%%)", node.LineCount, FormatPercent(net.LinePercent(node.LineCount))))
	}
	if node.SceneCount > 0 {
		parts = append(parts, plural(node.SceneCount, "scene"))
	}
	if degree := net.Degree(node.Name); degree > 0 {
		parts = append(parts, plural(degree, "connection"))
	}
	return strings.Join(parts, " · ")
}

// BuildList returns the character list ordered by group, then line count
// descending, then name.
func BuildList(net *network.Network, feed *metadata.Feed, palette Palette) []ListItem {
	if net.Empty() {
		return nil
	}
	nodes := slices.Clone(net.Nodes)
	slices.SortStableFunc(nodes, func(a, b network.Node) int {
		if c := cmp.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		if c := cmp.Compare(b.LineCount, a.LineCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	items := make([]ListItem, 0, len(nodes))
	for _, n := range nodes {
		item := ListItem{
			Name:     n.Name,
			Heading:  strings.ToUpper(n.Name),
			Group:    n.Group,
			Color:    palette.Color(n.Group),
			Overview: Overview(net, n),
		}
		if entry, ok := feed.Lookup(n.Name); ok {
			item.Description = entry.Description
			item.Image = entry.Image
		}
		items = append(items, item)
	}
	return items
}

// TooltipKind tells node tooltips from link tooltips.
type TooltipKind string

const (
	TooltipNode TooltipKind = "node"
	TooltipLink TooltipKind = "link"
)

// Tooltip is the floating info box shown on hover.
type Tooltip struct {
	Visible bool        `json:"visible"`
	Kind    TooltipKind `json:"kind,omitempty"`
	Title   string      `json:"title,omitempty"`
	Lines   []string    `json:"lines,omitempty"`
}

// NodeTooltip describes a hovered node.
func NodeTooltip(net *network.Network, name string) (Tooltip, bool) {
	node, ok := net.Node(name)
	if !ok {
		return Tooltip{}, false
	}
	return Tooltip{
		Visible: true,
		Kind:    TooltipNode,
		Title:   node.Name,
		Lines: []string{
			fmt.Sprintf("Scenes: %d", node.SceneCount),
			fmt.Sprintf("Lines: %d (%s%%)", node.LineCount, FormatPercent(net.LinePercent(node.LineCount))),
			fmt.Sprintf("Connections: %d", net.Degree(node.Name)),
			fmt.Sprintf("Group: %s", node.Group.Label()),
		},
	}, true
}

// LinkTooltip describes a hovered link.
func LinkTooltip(net *network.Network, a, b string) (Tooltip, bool) {
	e, ok := net.Edge(a, b)
	if !ok {
		return Tooltip{}, false
	}
	scenes := make([]string, len(e.SharedScenes))
	for i, s := range e.SharedScenes {
		scenes[i] = s.String()
	}
	return Tooltip{
		Visible: true,
		Kind:    TooltipLink,
		Title:   e.Source + " ↔ " + e.Target,
		Lines: []string{
			fmt.Sprintf("Shared scenes: %d", e.Weight),
			strings.Join(scenes, ", "),
		},
	}, true
}
