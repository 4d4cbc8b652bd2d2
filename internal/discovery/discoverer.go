package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"arktools/internal/logging"
	"arktools/internal/paths"
)

// DiscoveredFile describes one candidate source file.
type DiscoveredFile struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	SizeBytes    int64  `json:"size_bytes"`
	Extension    string `json:"extension"`
}

// Discoverer walks a directory tree and enumerates candidate source files.
type Discoverer struct {
	logger *logging.Logger
}

// NewDiscoverer creates a file discoverer.
func NewDiscoverer(logger *logging.Logger) *Discoverer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Discoverer{logger: logger.WithComponent("discovery")}
}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Discover enumerates files under directory matching the tier's extensions.
// Matches are appended extension by extension in tier order until the tier
// ceiling is reached; files that fail stat are skipped with a warning. The
// result is sorted by relative path for reproducibility.
func (d *Discoverer) Discover(ctx context.Context, directory string, tier Tier) ([]DiscoveredFile, error) {
	maxFiles := tier.MaxFiles()
	var found []DiscoveredFile

	for _, ext := range tier.Extensions() {
		if maxFiles > 0 && len(found) >= maxFiles {
			break
		}

		err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				d.logger.Warn("walk error, skipping", map[string]interface{}{
					"path": path, "error": err.Error(),
				})
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if entry.IsDir() {
				name := entry.Name()
				if path != directory && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
					return fs.SkipDir
				}
				return nil
			}
			if maxFiles > 0 && len(found) >= maxFiles {
				return fs.SkipAll
			}
			if filepath.Ext(path) != ext {
				return nil
			}

			info, err := entry.Info()
			if err != nil {
				d.logger.Warn("cannot stat file, skipping", map[string]interface{}{
					"path": path, "error": err.Error(),
				})
				return nil
			}

			rel, err := filepath.Rel(directory, path)
			if err != nil {
				rel = path
			}
			found = append(found, DiscoveredFile{
				Path:         path,
				RelativePath: paths.Normalize(rel),
				SizeBytes:    info.Size(),
				Extension:    ext,
			})
			return nil
		})
		if err != nil {
			if err == context.Canceled || err == context.DeadlineExceeded || ctx.Err() != nil {
				return found, err
			}
			if os.IsNotExist(err) {
				return nil, err
			}
			return found, err
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].RelativePath < found[j].RelativePath
	})

	d.logger.Info("discovery complete", map[string]interface{}{
		"directory": directory,
		"tier":      string(tier),
		"files":     len(found),
	})
	return found, nil
}
