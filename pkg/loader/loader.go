package loader

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// ErrUnsupported is returned for a play file in an unknown format.
var ErrUnsupported = errors.New("unsupported play format")

type PlayFormat string

const (
	PlayFormatCSV      PlayFormat = "csv"
	PlayFormatMarkdown PlayFormat = "markdown"
)

// PlayFile is a script or metadata file to import. The raw bytes are
// fetched through Loader.
type PlayFile struct {
	ID       string
	FilePath string
	Format   PlayFormat
	Loader   FileLoader
}

// NewPlayFile creates a PlayFile and detects its format from the file
// extension when format is empty.
func NewPlayFile(id, filePath string, format PlayFormat, l FileLoader) PlayFile {
	if format == "" {
		format = DetectFormat(filePath)
	}
	return PlayFile{
		ID:       id,
		FilePath: filePath,
		Format:   format,
		Loader:   l,
	}
}

// DetectFormat guesses the format from the extension of filePath, which may
// also be a URL.
func DetectFormat(filePath string) PlayFormat {
	p := filePath
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".csv":
		return PlayFormatCSV
	case ".md", ".markdown":
		return PlayFormatMarkdown
	default:
		return ""
	}
}

// GetBytes retrieves the raw content of the file using its Loader.
func (f *PlayFile) GetBytes(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileBytes(ctx, *f)
}

// FileLoader fetches raw file content. Implementations may read from disk,
// object storage or the web.
type FileLoader interface {
	GetFileBytes(ctx context.Context, file PlayFile) ([]byte, error)
}

// PlayLoader turns a PlayFile into a parsed play.
type PlayLoader interface {
	LoadPlay(ctx context.Context, file PlayFile) (*play.Play, error)
}

// CacheKey generates a unique cache key for a PlayFile based on its ID and path.
func CacheKey(file PlayFile) string {
	return file.ID + ":" + file.FilePath
}
