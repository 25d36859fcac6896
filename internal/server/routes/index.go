package routes

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// IndexHandler renders the list of imported plays.
func IndexHandler(c echo.Context) error {
	rows, err := app(c).Catalog.ListPlays(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}

	plays := make([]playSummary, 0, len(rows))
	for _, p := range rows {
		plays = append(plays, toPlaySummary(p))
	}

	var buf bytes.Buffer
	err = indexTemplate.Execute(&buf, map[string]any{
		"Title": "Character Networks",
		"Plays": plays,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
