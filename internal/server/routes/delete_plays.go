package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeletePlayHandler queues the removal of a play. The worker deletes the
// stored files and the catalog rows.
func DeletePlayHandler(c echo.Context) error {
	type deletePlayData struct {
		PlayID string `param:"id" validate:"required"`
	}

	data := new(deletePlayData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	a := app(c)
	if a.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Import queue not configured"})
	}
	if _, err := a.Catalog.GetPlay(c.Request().Context(), data.PlayID); err != nil {
		return errorJSON(c, err)
	}

	if err := queue.PublishDelete(a.Queue, data.PlayID); err != nil {
		logger.Error("Failed to publish delete", "play_id", data.PlayID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	logger.Info("[Import] Queued play deletion", "play_id", data.PlayID)
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Play deletion queued"})
}
