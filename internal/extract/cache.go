package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// CachedExtractor memoizes extracted pages by document content, so a document listed under
// several projects, or scored twice in one process, is extracted once.
type CachedExtractor struct {
	next   PageExtractor
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewCachedExtractor wraps next. ttl <= 0 keeps entries for the life of the process.
func NewCachedExtractor(next PageExtractor, ttl time.Duration, logger *slog.Logger) *CachedExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &CachedExtractor{
		next:   next,
		cache:  gocache.New(ttl, cleanup),
		logger: logger,
	}
}

func (c *CachedExtractor) Extract(ctx context.Context, path string) (entity.Pages, error) {
	sum, err := ContentHash(path)
	if err != nil {
		return nil, common.ExtractionError(fmt.Sprintf("cannot read %s", path), err)
	}
	key := sum + ":" + constants.NormalizeExt(filepath.Ext(path))

	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("extract.cache_hit", "path", path, "sha256", sum)
		return v.(entity.Pages).Offset(0), nil
	}

	pages, err := c.next.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, pages.Offset(0))
	return pages, nil
}

// Len is the number of cached documents.
func (c *CachedExtractor) Len() int { return c.cache.ItemCount() }

// ContentHash returns the hex sha256 of a file's bytes.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
