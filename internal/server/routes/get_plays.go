package routes

import (
	"net/http"
	"net/url"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/server/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/labstack/echo/v4"
)

type playSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Format        string `json:"format"`
	LineCount     int32  `json:"line_count"`
}

func toPlaySummary(p db.Play) playSummary {
	return playSummary{
		ID:            p.ID,
		Title:         p.Title,
		Author:        p.Author,
		Status:        p.Status,
		StatusMessage: util.PlayStatusMessage(p.Status, p.ErrorMessage.String),
		Format:        p.Format,
		LineCount:     p.LineCount,
	}
}

func GetPlaysHandler(c echo.Context) error {
	rows, err := app(c).Catalog.ListPlays(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}

	plays := make([]playSummary, 0, len(rows))
	for _, p := range rows {
		plays = append(plays, toPlaySummary(p))
	}
	return c.JSON(http.StatusOK, plays)
}

func GetPlayHandler(c echo.Context) error {
	row, err := app(c).Catalog.GetPlay(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toPlaySummary(row))
}

// GetPlayNetworkHandler derives the character network of a ready play.
func GetPlayNetworkHandler(c echo.Context) error {
	type networkResponse struct {
		PlayID string `json:"play_id"`
		Title  string `json:"title"`
		Author string `json:"author"`
		*network.Network
		Stats      network.CastStats      `json:"stats"`
		Characters []interaction.ListItem `json:"characters"`
	}

	ctx := c.Request().Context()
	catalog := app(c).Catalog
	p, err := catalog.Play(ctx, c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	feed, err := catalog.Metadata(ctx, p.ID)
	if err != nil {
		return errorJSON(c, err)
	}

	net := network.Build(p.Lines)
	return c.JSON(http.StatusOK, networkResponse{
		PlayID:     p.ID,
		Title:      p.Title,
		Author:     p.Author,
		Network:    net,
		Stats:      net.Stats(),
		Characters: interaction.BuildList(net, feed, palette(c)),
	})
}

// GetPlayScenesHandler lists the scenes of a play for the navigation menu.
func GetPlayScenesHandler(c echo.Context) error {
	type scene struct {
		Scene  play.SceneKey `json:"scene"`
		Label  string        `json:"label"`
		Anchor string        `json:"anchor"`
		Href   string        `json:"href"`
	}

	p, err := app(c).Catalog.Play(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	scenes := make([]scene, 0)
	for _, k := range p.Scenes() {
		scenes = append(scenes, scene{
			Scene:  k,
			Label:  k.Label(),
			Anchor: k.Anchor(),
			Href:   interaction.SceneHref(k),
		})
	}
	return c.JSON(http.StatusOK, scenes)
}

// GetCharacterHandler returns the detail panel of one character.
func GetCharacterHandler(c echo.Context) error {
	name := c.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	ctx := c.Request().Context()
	catalog := app(c).Catalog
	p, err := catalog.Play(ctx, c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	feed, err := catalog.Metadata(ctx, p.ID)
	if err != nil {
		return errorJSON(c, err)
	}

	detail, ok := interaction.BuildDetail(network.Build(p.Lines), name, feed, palette(c))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "character not found"})
	}
	return c.JSON(http.StatusOK, detail)
}
