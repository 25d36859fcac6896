package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/internal/session"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	loaderio "github.com/OFFIS-RIT/dramaturgy/pkg/loader/io"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
)

// DefaultPlayID is the session play id of the play named by DEFAULT_PLAY.
const DefaultPlayID = "default"

// loadDefaultPlay reads a local play file (and optional metadata CSV) into
// a memory source so sessions work without a prior import.
func loadDefaultPlay(ctx context.Context, path, metadataPath string) (*session.MemorySource, error) {
	files := loaderio.NewIOFileLoader()

	format := loader.DetectFormat(path)
	parser, err := queue.PlayLoaderFor(format, files)
	if err != nil {
		return nil, err
	}
	p, err := parser.LoadPlay(ctx, loader.NewPlayFile(DefaultPlayID, path, format, files))
	if err != nil {
		return nil, err
	}
	p.ID = DefaultPlayID
	if p.Title == "" {
		p.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var feed *metadata.Feed
	if metadataPath != "" {
		file := loader.NewPlayFile(DefaultPlayID+"-metadata", metadataPath, loader.PlayFormatCSV, files)
		content, err := file.GetBytes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		feed, err = metadata.ParseCSV(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}

	source := session.NewMemorySource()
	source.Add(p, feed)
	logger.Info("[Session] Loaded default play", "path", path, "title", p.Title, "lines", len(p.Lines))
	return source, nil
}
