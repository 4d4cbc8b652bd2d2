// Package duplicates finds near-duplicate components by coarse signature
// bucketing and a cheap weighted similarity score.
package duplicates

import (
	"fmt"

	"arktools/internal/extract"
	"arktools/internal/logging"
)

// ReportThreshold is the strict lower bound for reporting a pair.
const ReportThreshold = 0.85

// HighPotentialThreshold separates high from medium consolidation potential.
const HighPotentialThreshold = 0.95

// Potential grades how consolidatable a duplicate pair is.
type Potential string

const (
	PotentialHigh   Potential = "high"
	PotentialMedium Potential = "medium"
)

// Pair is a detected near-duplicate. Similarity is reported directionally:
// the original is the first-seen component with the shared signature.
type Pair struct {
	ID                     string    `json:"id"`
	OriginalComponentID    string    `json:"original_component"`
	DuplicateComponentID   string    `json:"duplicate_component"`
	Similarity             float64   `json:"similarity_score"`
	ConsolidationPotential Potential `json:"consolidation_potential"`
}

// Detector scores component pairs sharing a coarse signature.
type Detector struct {
	logger *logging.Logger
}

// NewDetector creates a duplicate detector.
func NewDetector(logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Detector{logger: logger.WithComponent("duplicates")}
}

// Detect buckets components by (kind, name, source length) and compares each
// later component against the first-seen one with the same signature. This
// linear-time approximation under-detects clusters larger than two;
// preserved as designed pending product-owner confirmation.
func (d *Detector) Detect(components []extract.Component) []Pair {
	var pairs []Pair
	firstSeen := make(map[string]extract.Component)

	for _, c := range components {
		signature := fmt.Sprintf("%s_%s_%d", c.Kind, c.Name, len(c.SourceText))

		original, seen := firstSeen[signature]
		if !seen {
			firstSeen[signature] = c
			continue
		}

		similarity := Similarity(original, c)
		if similarity <= ReportThreshold {
			continue
		}

		potential := PotentialMedium
		if similarity > HighPotentialThreshold {
			potential = PotentialHigh
		}
		pairs = append(pairs, Pair{
			ID:                     fmt.Sprintf("dup_%d", len(pairs)),
			OriginalComponentID:    original.ID,
			DuplicateComponentID:   c.ID,
			Similarity:             similarity,
			ConsolidationPotential: potential,
		})
	}

	d.logger.Debug("duplicate detection complete", map[string]interface{}{
		"components": len(components),
		"pairs":      len(pairs),
	})
	return pairs
}

// Similarity is the weighted sum of name, kind, and size similarity: name
// equality contributes 0.4 (1.0 on match, else 0.5), kind equality 0.3 (1.0
// or 0.0), and size-ratio 0.3 (min/max of source lengths; 1.0 when both are
// empty, 0.0 when exactly one is). Deterministic for fixed inputs.
func Similarity(a, b extract.Component) float64 {
	nameSim := 0.5
	if a.Name == b.Name {
		nameSim = 1.0
	}

	kindSim := 0.0
	if a.Kind == b.Kind {
		kindSim = 1.0
	}

	sizeA, sizeB := len(a.SourceText), len(b.SourceText)
	var sizeSim float64
	switch {
	case sizeA == 0 && sizeB == 0:
		sizeSim = 1.0
	case sizeA == 0 || sizeB == 0:
		sizeSim = 0.0
	default:
		minSize, maxSize := sizeA, sizeB
		if minSize > maxSize {
			minSize, maxSize = maxSize, minSize
		}
		sizeSim = float64(minSize) / float64(maxSize)
	}

	return nameSim*0.4 + kindSim*0.3 + sizeSim*0.3
}
