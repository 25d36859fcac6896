package util

import (
	"context"
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/session"
	"github.com/OFFIS-RIT/dramaturgy/pkg/layout"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
)

// ErrorStatus maps a domain error to an HTTP status code and message.
// Unknown errors become 500 with a generic message.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrPlayNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, db.ErrPlayNotReady), errors.Is(err, session.ErrNotReady):
		return http.StatusConflict, err.Error()
	case errors.Is(err, session.ErrUnknownEvent), errors.Is(err, session.ErrInvalidEvent),
		errors.Is(err, layout.ErrNoSuchNode),
		errors.Is(err, loader.ErrUnsupported):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrLimit):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, session.ErrClosed), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
