// Package artifact fetches precomputed corpus artifacts from a remote
// release store and caches them on local disk.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the timeout for a single artifact download.
	// Vector tables run to tens of megabytes.
	DefaultTimeout = 5 * time.Minute

	// DefaultRateLimit bounds requests against the release host.
	DefaultRateLimit = 2.0
)

// Cache downloads remote files into a local directory and serves them
// from disk afterwards. Local names derive from the final path segment
// of the remote reference. Fetches are idempotent: once a file exists
// locally it is returned without network access.
type Cache struct {
	baseURL string
	dir     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) {
		c.client = hc
	}
}

// WithLogger sets the logger used for download progress.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates an artifact cache rooted at dir, fetching from baseURL.
func New(baseURL, dir string, opts ...Option) *Cache {
	c := &Cache{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dir:     dir,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the local cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// LocalPath returns where a remote reference lands on disk.
func (c *Cache) LocalPath(filename string) string {
	return filepath.Join(c.dir, filepath.Base(filename))
}

// Fetch returns the local path for the named remote artifact, downloading
// it first if it is not already cached. A failed download never leaves a
// partial file readable as cached.
func (c *Cache) Fetch(ctx context.Context, filename string) (string, error) {
	localPath := c.LocalPath(filename)

	if info, err := os.Stat(localPath); err == nil && info.Mode().IsRegular() {
		return localPath, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url := c.baseURL + "/" + filename
	c.logger.Info("downloading artifact", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", filename, resp.StatusCode)
	}

	// Stream into a temp file, then rename, so an interrupted download
	// never shows up as a cached artifact.
	tempPath := localPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, localPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}

	c.logger.Info("cached artifact",
		zap.String("file", filepath.Base(localPath)),
		zap.Int64("bytes", written))

	return localPath, nil
}
