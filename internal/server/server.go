package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/config"
	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	mid "github.com/OFFIS-RIT/dramaturgy/internal/server/middleware"
	"github.com/OFFIS-RIT/dramaturgy/internal/session"
	"github.com/OFFIS-RIT/dramaturgy/internal/storage"
	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho builds the HTTP server around app with all routes registered.
func NewEcho(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("Failed to load network config", "err", err)
	}

	var k keyfunc.Keyfunc
	if authURL := util.GetEnvString("AUTH_URL", ""); authURL != "" {
		k, err = keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
	} else {
		logger.Warn("AUTH_URL not set, only the master API key can import plays")
	}

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL, util.GetEnvString("MIGRATIONS_PATH", "internal/db/migrations")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	catalog := db.NewCatalog(conn)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	files, err := storage.NewStoreFromEnv(ctx)
	if err != nil {
		logger.Fatal("Failed to create s3 client", "err", err)
	}

	var source session.Source = catalog
	if path := util.GetEnvString("DEFAULT_PLAY", ""); path != "" {
		defaults, err := loadDefaultPlay(ctx, path, util.GetEnvString("DEFAULT_METADATA", ""))
		if err != nil {
			logger.Fatal("Failed to load default play", "path", path, "err", err)
		}
		source = session.Chain{defaults, catalog}
	}
	sessions := session.NewManager(source, cfg)
	defer sessions.Shutdown()

	parsedMasterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)

	e := NewEcho(&mid.App{
		Catalog:        catalog,
		Queue:          ch,
		Key:            k,
		Files:          files,
		Sessions:       sessions,
		Config:         cfg,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   parsedMasterUserID,
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	})

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
