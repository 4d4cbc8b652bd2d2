// Package paths provides path canonicalization helpers used by the safety
// layer. Protection checks must compare canonical absolute paths so that
// symlinks and relative traversal cannot sidestep the registry.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize resolves a path to an absolute, symlink-free form.
// Paths that do not exist yet are made absolute and cleaned without
// symlink resolution, so output targets can be classified before creation.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Resolve the deepest existing ancestor so a not-yet-created
			// file under a symlinked directory still canonicalizes.
			return canonicalizeMissing(abs), nil
		}
		return "", err
	}
	return resolved, nil
}

func canonicalizeMissing(abs string) string {
	dir, base := filepath.Split(filepath.Clean(abs))
	dir = filepath.Clean(dir)
	if dir == abs {
		return abs
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = canonicalizeMissing(dir)
		} else {
			resolved = dir
		}
	}
	return filepath.Join(resolved, base)
}

// IsWithin reports whether path is equal to or nested under root.
// Both arguments must already be canonical absolute paths.
func IsWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// Normalize converts a path to forward slashes for platform-independent
// comparison and artifact output.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// AncestorNames returns the names of every directory on the path, outermost
// first, including the final element.
func AncestorNames(path string) []string {
	clean := filepath.Clean(path)
	parts := strings.Split(filepath.ToSlash(clean), "/")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}
