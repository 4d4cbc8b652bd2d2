// Package safety enforces the Read-Only Source Rule. A Guard tracks
// protected source roots, gates every filesystem mutation, and manages
// backup-and-rollback for files that are overwritten in place.
package safety

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	arkerrors "arktools/internal/errors"
	"arktools/internal/logging"
	"arktools/internal/paths"
)

// outputIndicators are directory-name tokens that mark a path as an intended
// output location. Advisory only: the authoritative gate is the protected
// registry.
var outputIndicators = []string{"generated", "output", "build", "dist", "tmp"}

// SyntaxChecker validates that generated source text parses. Implementations
// live outside this package so the guard carries no parser dependency.
type SyntaxChecker interface {
	// Available reports whether structural parsing is possible in this build.
	Available() bool
	// Check returns ok=false with a detail message when content fails to parse.
	Check(ctx context.Context, path string, content []byte) (ok bool, detail string)
}

// BackupRecord maps an original file to its backup copy.
type BackupRecord struct {
	OriginalPath string      `json:"originalPath"`
	BackupPath   string      `json:"backupPath"`
	BackupID     string      `json:"backupId"`
	Mode         os.FileMode `json:"mode"`
	ModTime      time.Time   `json:"modTime"`
}

// Guard is the safety core. The protected registry is append-only and safe
// for concurrent registration.
type Guard struct {
	mu        sync.RWMutex
	protected []string
	backups   map[string]BackupRecord

	backupRoot        string
	outputRootName    string
	maxGeneratedBytes int
	checker           SyntaxChecker
	logger            *logging.Logger
}

// Options configures a Guard.
type Options struct {
	// BackupRoot is the directory where backup copies are written.
	BackupRoot string
	// OutputRootName is the session output root token, recognized as an
	// output indicator alongside the fixed allow-list.
	OutputRootName string
	// MaxGeneratedBytes is the generated-file size ceiling (default 1 MB).
	MaxGeneratedBytes int
	// Checker validates generated source syntax; may be nil.
	Checker SyntaxChecker
	Logger  *logging.Logger
}

// NewGuard creates a Guard with the Read-Only Source Rule enabled.
func NewGuard(opts Options) *Guard {
	if opts.MaxGeneratedBytes <= 0 {
		opts.MaxGeneratedBytes = 1_000_000
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	g := &Guard{
		backups:           make(map[string]BackupRecord),
		backupRoot:        opts.BackupRoot,
		outputRootName:    opts.OutputRootName,
		maxGeneratedBytes: opts.MaxGeneratedBytes,
		checker:           opts.Checker,
		logger:            opts.Logger.WithComponent("safety"),
	}
	g.loadRegistry()
	return g
}

// Protect registers a directory as a read-only source root. Idempotent:
// protecting the same canonical path twice is a no-op.
func (g *Guard) Protect(directory string) error {
	canonical, err := paths.Canonicalize(directory)
	if err != nil {
		return arkerrors.Wrap(arkerrors.InternalError, "cannot canonicalize path", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.protected {
		if p == canonical {
			return nil
		}
	}
	g.protected = append(g.protected, canonical)
	g.logger.Info("protected source directory", map[string]interface{}{"path": canonical})
	return nil
}

// ProtectedPaths returns a copy of the protected registry.
func (g *Guard) ProtectedPaths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.protected))
	copy(out, g.protected)
	return out
}

// VerifyWritable fails with a PROTECTION_VIOLATION error if path is equal to
// or nested under any protected directory. Callers must invoke it before any
// filesystem mutation targeting a user-supplied path, and must abort rather
// than retry on failure.
func (g *Guard) VerifyWritable(path string) error {
	canonical, err := paths.Canonicalize(path)
	if err != nil {
		// The target cannot be checked against the registry; recoverable
		// for the caller, unlike an actual violation.
		return arkerrors.Wrap(arkerrors.ValidationFailed, "cannot canonicalize write target", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.protected {
		if paths.IsWithin(canonical, p) {
			return arkerrors.Newf(arkerrors.ProtectionViolation,
				"blocked write to protected source path %s", canonical)
		}
	}
	return nil
}

// Classification is the result of ClassifyOutputPath.
type Classification struct {
	Path string `json:"path"`
	// Safe is the authoritative verdict: the path is not under any
	// protected root.
	Safe bool `json:"safe"`
	// UnderProtected indicates the path failed the authoritative check.
	UnderProtected bool `json:"underProtected"`
	// HasOutputIndicator is advisory: some path element matches a
	// recognized output token.
	HasOutputIndicator bool `json:"hasOutputIndicator"`
}

// ClassifyOutputPath classifies a candidate output path. A path under a
// protected root is never safe; the output-indicator check informs UI hints
// only.
func (g *Guard) ClassifyOutputPath(path string) Classification {
	c := Classification{Path: path}

	canonical, err := paths.Canonicalize(path)
	if err != nil {
		c.UnderProtected = true
		return c
	}

	g.mu.RLock()
	for _, p := range g.protected {
		if paths.IsWithin(canonical, p) {
			c.UnderProtected = true
		}
	}
	g.mu.RUnlock()

	indicators := outputIndicators
	if g.outputRootName != "" {
		indicators = append([]string{g.outputRootName}, indicators...)
	}
	for _, name := range paths.AncestorNames(canonical) {
		for _, ind := range indicators {
			if name == ind {
				c.HasOutputIndicator = true
			}
		}
	}

	c.Safe = !c.UnderProtected
	return c
}

// Backup copies a file (content and metadata) into the backup root keyed by
// backupID, and records the mapping. It must be called before any in-place
// rewrite of a tracked file.
func (g *Guard) Backup(filePath, backupID string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", arkerrors.Newf(arkerrors.NotFound, "cannot backup non-existent file: %s", filePath)
		}
		return "", arkerrors.Wrap(arkerrors.InternalError, "cannot stat file for backup", err)
	}

	backupDir := filepath.Join(g.backupRoot, backupID)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", arkerrors.Wrap(arkerrors.InternalError, "cannot create backup directory", err)
	}

	backupPath := filepath.Join(backupDir, filepath.Base(filePath)+backupExt)
	if err := compressFile(filePath, backupPath); err != nil {
		return "", arkerrors.Wrap(arkerrors.InternalError, "backup copy failed", err)
	}

	record := BackupRecord{
		OriginalPath: filePath,
		BackupPath:   backupPath,
		BackupID:     backupID,
		Mode:         info.Mode(),
		ModTime:      info.ModTime(),
	}

	g.mu.Lock()
	g.backups[filepath.Clean(filePath)] = record
	g.mu.Unlock()

	if err := g.persistRegistry(); err != nil {
		g.logger.Warn("failed to persist backup registry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	g.logger.Info("created backup", map[string]interface{}{
		"original": filePath,
		"backup":   backupPath,
		"backupId": backupID,
	})
	return backupPath, nil
}

// Rollback restores a file from its most recent backup. It returns false
// (and logs) when no backup exists, the backup file is missing, or the
// restore fails; rollback never raises.
func (g *Guard) Rollback(originalPath string) bool {
	g.mu.RLock()
	record, ok := g.backups[filepath.Clean(originalPath)]
	g.mu.RUnlock()

	if !ok {
		g.logger.Warn("no backup found", map[string]interface{}{"path": originalPath})
		return false
	}
	if _, err := os.Stat(record.BackupPath); err != nil {
		g.logger.Error("backup file missing", map[string]interface{}{"backup": record.BackupPath})
		return false
	}

	if err := decompressFile(record.BackupPath, record.OriginalPath, record.Mode); err != nil {
		g.logger.Error("rollback failed", map[string]interface{}{
			"path":  originalPath,
			"error": err.Error(),
		})
		return false
	}
	_ = os.Chtimes(record.OriginalPath, record.ModTime, record.ModTime)

	g.logger.Info("rollback successful", map[string]interface{}{
		"backup": record.BackupPath,
		"path":   originalPath,
	})
	return true
}

// BackupCount returns the number of active backup records.
func (g *Guard) BackupCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.backups)
}

// Status summarizes the guard for status reporting.
type Status struct {
	ReadOnlySourceEnabled bool     `json:"readOnlySourceEnabled"`
	ProtectedPathsCount   int      `json:"protectedPathsCount"`
	ProtectedPaths        []string `json:"protectedPaths"`
	ActiveBackups         int      `json:"activeBackups"`
	SyntaxCheckAvailable  bool     `json:"syntaxCheckAvailable"`
}

// GetStatus returns the current safety system status.
func (g *Guard) GetStatus() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	protected := make([]string, len(g.protected))
	copy(protected, g.protected)
	return Status{
		ReadOnlySourceEnabled: true,
		ProtectedPathsCount:   len(protected),
		ProtectedPaths:        protected,
		ActiveBackups:         len(g.backups),
		SyntaxCheckAvailable:  g.checker != nil && g.checker.Available(),
	}
}
