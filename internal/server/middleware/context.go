package middleware

import (
	"context"
	"io"

	"github.com/OFFIS-RIT/dramaturgy/internal/config"
	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/internal/session"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
)

// PlayCatalog is the play storage used by the routes. *db.Catalog
// implements it.
type PlayCatalog interface {
	ListPlays(ctx context.Context) ([]db.Play, error)
	GetPlay(ctx context.Context, id string) (db.Play, error)
	CreatePlay(ctx context.Context, arg db.CreatePlayParams) (db.Play, error)
	Play(ctx context.Context, id string) (*play.Play, error)
	Metadata(ctx context.Context, id string) (*metadata.Feed, error)
}

// FileStore receives uploaded play files. *storage.Store implements it.
type FileStore interface {
	PutFile(ctx context.Context, prefix, name, key string, file io.ReadSeeker) (string, error)
}

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	Catalog        PlayCatalog
	Queue          queue.Channel
	Key            keyfunc.Keyfunc
	Files          FileStore
	Sessions       *session.Manager
	Config         *config.Config
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
