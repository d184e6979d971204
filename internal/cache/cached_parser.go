package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
)

// CachedParser wraps a *parser.Parser with a MemoryCache so repeated parses
// of the same note text under the same options skip re-running the header
// scorer and extractors entirely.
type CachedParser struct {
	parser *parser.Parser
	cache  *MemoryCache
}

// NewCachedParser wraps p with memoization backed by cache.
func NewCachedParser(p *parser.Parser, c *MemoryCache) *CachedParser {
	return &CachedParser{parser: p, cache: c}
}

// ParseNote returns the cached ParsedNote for (text, opts) if present,
// otherwise parses, caches, and returns the fresh result.
func (cp *CachedParser) ParseNote(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, error) {
	key := parseCacheKey(text, opts)

	if cached, ok := cp.cache.Get(key); ok {
		return cached.(domain.ParsedNote), nil
	}

	parsed, err := cp.parser.ParseNote(ctx, text, opts)
	if err != nil {
		return domain.ParsedNote{}, err
	}

	cp.cache.Set(key, parsed)
	return parsed, nil
}

// ParseAndRender parses (using the cache) then renders; rendering itself is
// cheap enough not to need memoizing on its own.
func (cp *CachedParser) ParseAndRender(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, domain.RenderedNote, error) {
	parsed, err := cp.ParseNote(ctx, text, opts)
	if err != nil {
		return domain.ParsedNote{}, domain.RenderedNote{}, err
	}

	rendered, err := cp.parser.RenderNote(parsed, opts)
	if err != nil {
		return domain.ParsedNote{}, domain.RenderedNote{}, err
	}

	return parsed, rendered, nil
}

// Stats returns the underlying cache's hit/miss counters.
func (cp *CachedParser) Stats() CacheStats {
	return cp.cache.Stats()
}

func parseCacheKey(text string, opts domain.Options) string {
	h := sha256.New()
	h.Write([]byte(text))
	fmt.Fprintf(h, "|%s|%t|%t|%s", opts.TemplateID, opts.SmartPhrase, opts.IncludeUnmapped, opts.LocaleUnits)
	return hex.EncodeToString(h.Sum(nil))
}
