package routes

import (
	"github.com/OFFIS-RIT/dramaturgy/internal/config"
	"github.com/OFFIS-RIT/dramaturgy/internal/server/middleware"
	"github.com/OFFIS-RIT/dramaturgy/internal/server/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	"github.com/labstack/echo/v4"
)

func app(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

func palette(c echo.Context) interaction.Palette {
	cfg := app(c).Config
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg.InteractionPalette()
}

func errorJSON(c echo.Context, err error) error {
	code, msg := util.ErrorStatus(err)
	if code >= 500 {
		logger.Error("Request failed", "path", c.Path(), "err", err)
	}
	return c.JSON(code, map[string]string{"error": msg})
}
