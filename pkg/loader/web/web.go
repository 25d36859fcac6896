package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// maxBodySize bounds a downloaded script.
const maxBodySize = 32 << 20

// WebFileLoader fetches play files from HTTP(S) URLs. File paths are URLs.
type WebFileLoader struct {
	client *http.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewWebFileLoader creates a web loader using http.DefaultClient.
func NewWebFileLoader() *WebFileLoader {
	return NewWebFileLoaderWithClient(http.DefaultClient)
}

// NewWebFileLoaderWithClient creates a web loader with a custom client.
func NewWebFileLoaderWithClient(client *http.Client) *WebFileLoader {
	return &WebFileLoader{
		client: client,
		cache:  make(map[string][]byte),
	}
}

// GetFileBytes downloads the URL in file.FilePath. Non-2xx responses are
// errors. Results are cached.
func (l *WebFileLoader) GetFileBytes(ctx context.Context, file loader.PlayFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.FilePath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch url: unexpected status %s", resp.Status)
		}

		result, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
