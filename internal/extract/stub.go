//go:build !cgo

package extract

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when structural extraction is unavailable due to
// missing CGO.
var ErrNoCGO = errors.New("structural extraction requires CGO (tree-sitter)")

// NativeAvailable reports whether the tree-sitter extractor is compiled in.
func NativeAvailable() bool {
	return false
}

// nativeExtractor is a stub for non-CGO builds; the generic fallback parser
// handles extraction instead.
type nativeExtractor struct{}

func newNativeExtractor() *nativeExtractor {
	return nil
}

func (n *nativeExtractor) extractFile(ctx context.Context, path string, source []byte, lang Language) ([]Component, error) {
	return nil, ErrNoCGO
}

func (n *nativeExtractor) checkSyntax(ctx context.Context, path string, content []byte, lang Language) (bool, string) {
	return true, ""
}
