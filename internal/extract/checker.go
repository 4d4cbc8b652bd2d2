package extract

import (
	"context"
	"path/filepath"
)

// Checker adapts the structural parser for generated-output syntax
// validation. It satisfies the safety layer's SyntaxChecker contract.
type Checker struct {
	native *nativeExtractor
}

// NewChecker creates a syntax checker backed by the structural parser.
func NewChecker() *Checker {
	return &Checker{native: newNativeExtractor()}
}

// Available reports whether structural parsing is compiled in.
func (c *Checker) Available() bool {
	return NativeAvailable()
}

// Check reports whether content parses cleanly for its language. Unsupported
// languages are assumed valid.
func (c *Checker) Check(ctx context.Context, path string, content []byte) (bool, string) {
	if !NativeAvailable() {
		return true, ""
	}
	lang, supported := LanguageFromExtension(filepath.Ext(path))
	if !supported {
		return true, ""
	}
	return c.native.checkSyntax(ctx, path, content, lang)
}
