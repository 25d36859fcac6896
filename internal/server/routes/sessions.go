package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/dramaturgy/internal/session"

	"github.com/labstack/echo/v4"
)

type sessionPlayBody struct {
	PlayID string `json:"play_id" validate:"required"`
}

func sessions(c echo.Context) (*session.Manager, error) {
	m := app(c).Sessions
	if m == nil {
		return nil, session.ErrClosed
	}
	return m, nil
}

func lookupSession(c echo.Context) (*session.Session, error) {
	m, err := sessions(c)
	if err != nil {
		return nil, err
	}
	return m.Get(c.Param("id"))
}

// CreateSessionHandler opens a live view and starts loading a play into it.
func CreateSessionHandler(c echo.Context) error {
	data := new(sessionPlayBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	m, err := sessions(c)
	if err != nil {
		return errorJSON(c, err)
	}
	ctx := c.Request().Context()
	s, err := m.Create(ctx, data.PlayID)
	if err != nil {
		return errorJSON(c, err)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

func GetSessionHandler(c echo.Context) error {
	s, err := lookupSession(c)
	if err != nil {
		return errorJSON(c, err)
	}
	snap, err := s.Snapshot(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// SessionEventHandler applies one pointer or control event.
func SessionEventHandler(c echo.Context) error {
	event := new(session.Event)
	if err := c.Bind(event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	s, err := lookupSession(c)
	if err != nil {
		return errorJSON(c, err)
	}
	snap, err := s.Dispatch(c.Request().Context(), *event)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// LoadSessionPlayHandler switches a session to another play.
func LoadSessionPlayHandler(c echo.Context) error {
	data := new(sessionPlayBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	s, err := lookupSession(c)
	if err != nil {
		return errorJSON(c, err)
	}
	ctx := c.Request().Context()
	if err := s.Load(ctx, data.PlayID); err != nil {
		return errorJSON(c, err)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, snap)
}

func DeleteSessionHandler(c echo.Context) error {
	m, err := sessions(c)
	if err != nil {
		return errorJSON(c, err)
	}
	if err := m.Close(c.Param("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
