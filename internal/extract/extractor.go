package extract

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"arktools/internal/discovery"
	arkerrors "arktools/internal/errors"
	"arktools/internal/logging"
)

// Options configures an Extractor.
type Options struct {
	// ParseTimeout bounds per-file parsing; expiry is a per-file error,
	// never a fatal abort. Default 300s.
	ParseTimeout time.Duration
	// Workers sets the extraction pool size; 1 keeps extraction sequential.
	Workers int
	// CacheSize is the parsed-file LRU capacity; 0 disables caching.
	CacheSize int
	// ForceFallback bypasses the structural extractor even when available.
	ForceFallback bool
	Logger        *logging.Logger
}

// Extractor turns discovered files into components. The structural
// (tree-sitter) path is preferred; the generic fallback parser covers
// builds without it and files it cannot parse.
type Extractor struct {
	native   *nativeExtractor
	fallback fallbackExtractor
	cache    *lru.Cache[string, []Component]
	opts     Options
	logger   *logging.Logger
}

// NewExtractor creates a component extractor.
func NewExtractor(opts Options) *Extractor {
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = 300 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}

	var cache *lru.Cache[string, []Component]
	if opts.CacheSize > 0 {
		cache, _ = lru.New[string, []Component](opts.CacheSize)
	}

	return &Extractor{
		native: newNativeExtractor(),
		cache:  cache,
		opts:   opts,
		logger: opts.Logger.WithComponent("extract"),
	}
}

// NativeActive reports whether the structural extraction path will be used.
func (e *Extractor) NativeActive() bool {
	return NativeAvailable() && !e.opts.ForceFallback
}

// Extract parses each discovered file into components. Per-file failures are
// recorded and recovered; extraction never aborts the batch on one bad file.
// Results are ordered by file path, then start line.
func (e *Extractor) Extract(ctx context.Context, files []discovery.DiscoveredFile) Result {
	var result Result
	if e.opts.Workers > 1 {
		result = e.extractParallel(ctx, files)
	} else {
		result = e.extractSequential(ctx, files)
	}

	sortComponents(result.Components)
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})
	ensureUniqueIDs(result.Components)
	return result
}

func (e *Extractor) extractSequential(ctx context.Context, files []discovery.DiscoveredFile) Result {
	var result Result
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		components, errs := e.extractOne(ctx, file)
		result.Components = append(result.Components, components...)
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

// extractOne processes a single file through cache, native, and fallback
// paths in that order.
func (e *Extractor) extractOne(ctx context.Context, file discovery.DiscoveredFile) ([]Component, []FileError) {
	lang, supported := LanguageFromExtension(file.Extension)
	if !supported {
		return nil, nil
	}

	cacheKey := e.cacheKey(file)
	if e.cache != nil && cacheKey != "" {
		if cached, ok := e.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	source, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, []FileError{{
			Path:    file.Path,
			Phase:   "read",
			Message: err.Error(),
		}}
	}

	var components []Component
	var errs []FileError

	if e.NativeActive() {
		parseCtx, cancel := context.WithTimeout(ctx, e.opts.ParseTimeout)
		components, err = e.native.extractFile(parseCtx, file.Path, source, lang)
		cancel()
		if err != nil {
			perr := arkerrors.Wrap(arkerrors.ParseError, "structural extraction failed", err)
			e.logger.Warn("structural extraction failed, using fallback", map[string]interface{}{
				"path": file.Path, "error": perr.Error(),
			})
			errs = append(errs, FileError{
				Path:    file.Path,
				Phase:   "native",
				Message: perr.Error(),
			})
			components = e.fallback.extractFile(file.Path, source, lang)
		}
	} else {
		components = e.fallback.extractFile(file.Path, source, lang)
	}

	if e.cache != nil && cacheKey != "" {
		e.cache.Add(cacheKey, components)
	}
	return components, errs
}

// cacheKey keys the LRU on path, size, and modification time so edits
// invalidate stale entries.
func (e *Extractor) cacheKey(file discovery.DiscoveredFile) string {
	info, err := os.Stat(file.Path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d|%v", file.Path, info.Size(), info.ModTime().UnixNano(), e.NativeActive())
}

func sortComponents(components []Component) {
	sort.Slice(components, func(i, j int) bool {
		if components[i].FilePath != components[j].FilePath {
			return components[i].FilePath < components[j].FilePath
		}
		return components[i].LineStart < components[j].LineStart
	})
}

// ensureUniqueIDs disambiguates repeated names within a file so component
// IDs stay unique within one analysis run.
func ensureUniqueIDs(components []Component) {
	seen := make(map[string]bool, len(components))
	for i := range components {
		id := components[i].ID
		if seen[id] {
			id = fmt.Sprintf("%s#%d", components[i].ID, components[i].LineStart)
			components[i].ID = id
		}
		seen[id] = true
	}
}
