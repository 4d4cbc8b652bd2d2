// Package discovery enumerates candidate source files for analysis, bounded
// by an analysis tier that fixes the extension set and a file-count ceiling.
package discovery

import (
	arkerrors "arktools/internal/errors"
)

// Tier represents the analysis depth tier.
type Tier string

const (
	// TierQuick analyzes Python sources only, capped at 50 files.
	TierQuick Tier = "quick"
	// TierComprehensive adds the common companion languages, capped at 500.
	TierComprehensive Tier = "comprehensive"
	// TierDeep adds systems-language extensions with no ceiling.
	TierDeep Tier = "deep"
)

// ParseTier validates a tier token.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierQuick, TierComprehensive, TierDeep:
		return Tier(s), nil
	default:
		return "", arkerrors.Newf(arkerrors.UnknownTier,
			"unknown analysis tier: %q (expected quick, comprehensive, or deep)", s)
	}
}

// Extensions returns the tier's ordered extension list. Traversal appends
// matches extension by extension in this order.
func (t Tier) Extensions() []string {
	switch t {
	case TierQuick:
		return []string{".py"}
	case TierComprehensive:
		return []string{".py", ".js", ".ts", ".java", ".go"}
	case TierDeep:
		return []string{".py", ".js", ".ts", ".java", ".go", ".cpp", ".c", ".rb", ".php"}
	default:
		return nil
	}
}

// MaxFiles returns the file-count ceiling for the tier; 0 means unbounded.
// The ceiling applies across the whole result, not per extension.
func (t Tier) MaxFiles() int {
	switch t {
	case TierQuick:
		return 50
	case TierComprehensive:
		return 500
	default:
		return 0
	}
}
