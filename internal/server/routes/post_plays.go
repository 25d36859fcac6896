package routes

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/internal/storage"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreatePlayHandler registers a play and queues its import. The script is
// either uploaded as the "file" form field or fetched from "url". An
// optional "metadata" field carries the character metadata CSV.
func CreatePlayHandler(c echo.Context) error {
	type createPlayBody struct {
		Title  string `form:"title"`
		URL    string `form:"url" validate:"omitempty,url"`
		Format string `form:"format" validate:"omitempty,oneof=csv markdown"`
	}

	type createPlayResponse struct {
		Message string   `json:"message"`
		Play    *db.Play `json:"play,omitempty"`
	}

	data := new(createPlayBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createPlayResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createPlayResponse{Message: "Invalid request body"})
	}

	ctx := c.Request().Context()
	a := app(c)
	if a.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, createPlayResponse{Message: "Import queue not configured"})
	}

	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createPlayResponse{Message: "Internal server error"})
	}

	params := db.CreatePlayParams{
		ID:     id,
		Title:  strings.TrimSpace(data.Title),
		Status: db.PlayStatusPending,
		Format: data.Format,
	}

	script, _ := c.FormFile("file")
	switch {
	case script != nil:
		if a.Files == nil {
			return c.JSON(http.StatusServiceUnavailable, createPlayResponse{Message: "File storage not configured"})
		}
		key, err := upload(c, id, script)
		if err != nil {
			logger.Error("Failed to upload play file", "play_id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, createPlayResponse{Message: "Internal server error"})
		}
		params.Source = queue.SourceS3
		params.Location = key
		if params.Format == "" {
			params.Format = string(loader.DetectFormat(script.Filename))
		}
	case data.URL != "":
		params.Source = queue.SourceWeb
		params.Location = data.URL
		if params.Format == "" {
			params.Format = string(loader.DetectFormat(data.URL))
		}
	default:
		return c.JSON(http.StatusBadRequest, createPlayResponse{Message: "Either file or url is required"})
	}
	if params.Format == "" {
		return c.JSON(http.StatusBadRequest, createPlayResponse{Message: "Unknown play format"})
	}

	if meta, _ := c.FormFile("metadata"); meta != nil {
		if params.Source != queue.SourceS3 {
			return c.JSON(http.StatusBadRequest, createPlayResponse{Message: "Metadata upload requires a play file upload"})
		}
		key, err := upload(c, id, meta)
		if err != nil {
			logger.Error("Failed to upload metadata file", "play_id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, createPlayResponse{Message: "Internal server error"})
		}
		params.MetadataLocation = key
	}

	row, err := a.Catalog.CreatePlay(ctx, params)
	if err != nil {
		logger.Error("Failed to create play", "play_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, createPlayResponse{Message: "Internal server error"})
	}

	err = queue.PublishImport(a.Queue, queue.ImportPlayMsg{
		PlayID:           row.ID,
		Source:           row.Source,
		Location:         row.Location,
		Format:           row.Format,
		MetadataLocation: row.MetadataLocation,
	})
	if err != nil {
		logger.Error("Failed to publish import", "play_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, createPlayResponse{Message: "Internal server error"})
	}

	logger.Info("[Import] Queued play import", "play_id", row.ID, "source", row.Source, "format", row.Format)
	return c.JSON(http.StatusAccepted, createPlayResponse{
		Message: "Play import queued",
		Play:    &row,
	})
}

func upload(c echo.Context, playID string, header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fileID, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return app(c).Files.PutFile(c.Request().Context(), storage.PlayPrefix(playID), header.Filename, fileID, src)
}
