package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/leaselock"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/csv"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/markdown"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"golang.org/x/sync/errgroup"
)

// replaceAttempts bounds retries of the content swap, which runs in a single
// transaction and can fail on a transient database error.
const replaceAttempts = 3

// PlayStore persists imported plays. *db.Catalog implements it.
type PlayStore interface {
	SetStatus(ctx context.Context, id, status string, cause error) error
	ReplaceContent(ctx context.Context, id string, p *play.Play, feed *metadata.Feed) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Locker serializes work on one play. *leaselock.Client implements it.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// FileStore removes stored play files. *storage.Store implements it.
type FileStore interface {
	DeleteFolder(ctx context.Context, prefix string) error
}

// Worker holds what the queue handlers need.
type Worker struct {
	Plays   PlayStore
	Locks   Locker
	Files   FileStore
	Loaders map[string]loader.FileLoader
}

// ProcessImportMessage loads the play file (and metadata file) named by the
// message and replaces the stored content of the play.
func (w *Worker) ProcessImportMessage(ctx context.Context, msg string) (err error) {
	data, err := decodeImport(msg)
	if err != nil {
		return err
	}

	defer func() {
		if err == nil || errors.Is(err, leaselock.ErrBusy) {
			return
		}
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if updateErr := w.Plays.SetStatus(updateCtx, data.PlayID, db.PlayStatusFailed, err); updateErr != nil {
			logger.Warn("[Import] Failed to mark play as failed", "play_id", data.PlayID, "err", updateErr)
		}
	}()

	fileLoader, ok := w.Loaders[data.Source]
	if !ok {
		return fmt.Errorf("%w: source %q", loader.ErrUnsupported, data.Source)
	}

	return w.Locks.WithLease(ctx, leaselock.PlayKey(data.PlayID), leaselock.ImportOptions, func(ctx context.Context) error {
		if err := w.Plays.SetStatus(ctx, data.PlayID, db.PlayStatusImporting, nil); err != nil {
			return err
		}

		start := time.Now()
		p, feed, err := loadImport(ctx, data, fileLoader)
		if err != nil {
			return err
		}
		err = util.RetryErrWithContext(ctx, replaceAttempts, func(ctx context.Context) error {
			return w.Plays.ReplaceContent(ctx, data.PlayID, p, feed)
		})
		if err != nil {
			return err
		}

		logger.Info(
			"[Import] Play imported",
			"play_id", data.PlayID,
			"title", p.Title,
			"lines", len(p.Lines),
			"metadata", feed.Len(),
			"duration", time.Since(start),
		)
		return nil
	})
}

func loadImport(ctx context.Context, data *ImportPlayMsg, fileLoader loader.FileLoader) (*play.Play, *metadata.Feed, error) {
	file := loader.NewPlayFile(data.PlayID, data.Location, loader.PlayFormat(data.Format), fileLoader)
	playLoader, err := PlayLoaderFor(file.Format, fileLoader)
	if err != nil {
		return nil, nil, err
	}

	var (
		p    *play.Play
		feed *metadata.Feed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := playLoader.LoadPlay(gctx, file)
		if err != nil {
			return fmt.Errorf("failed to load play: %w", err)
		}
		p = loaded
		return nil
	})
	if data.MetadataLocation != "" {
		g.Go(func() error {
			metaFile := loader.NewPlayFile(data.PlayID+"-metadata", data.MetadataLocation, loader.PlayFormatCSV, fileLoader)
			content, err := metaFile.GetBytes(gctx)
			if err != nil {
				return fmt.Errorf("failed to load metadata: %w", err)
			}
			parsed, err := metadata.ParseCSV(content)
			if err != nil {
				return fmt.Errorf("failed to parse metadata: %w", err)
			}
			feed = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return p, feed, nil
}

// PlayLoaderFor returns the parser of a play format.
func PlayLoaderFor(format loader.PlayFormat, base loader.FileLoader) (loader.PlayLoader, error) {
	switch format {
	case loader.PlayFormatCSV:
		return csv.NewCSVPlayLoader(base), nil
	case loader.PlayFormatMarkdown:
		return markdown.NewMarkdownPlayLoader(base), nil
	default:
		return nil, fmt.Errorf("%w: format %q", loader.ErrUnsupported, format)
	}
}
