// Package patterns groups components by structural signature and reports
// repeated shapes with a frequency and confidence score.
package patterns

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"arktools/internal/extract"
	"arktools/internal/logging"
)

// SignificantFrequency is the threshold at which downstream consumers treat
// a pattern as significant. Patterns below it are retained for visibility
// but excluded from consolidation opportunities.
const SignificantFrequency = 3

// Pattern is a repeated structural shape across components.
type Pattern struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	ComponentIDs []string `json:"component_ids"`
	Frequency    int      `json:"frequency"`
	Confidence   float64  `json:"confidence"`
	DetectedBy   string   `json:"detected_by"`
}

// Significant reports whether the pattern meets the downstream significance
// threshold.
func (p Pattern) Significant() bool {
	return p.Frequency >= SignificantFrequency
}

// Detector groups components into patterns. Without a richer structural
// analyzer the grouping key is the component kind.
type Detector struct {
	logger *logging.Logger
}

// NewDetector creates a pattern detector.
func NewDetector(logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Detector{logger: logger.WithComponent("patterns")}
}

// Detect groups components by kind and reports each group with more than one
// member as a pattern. Confidence grows with frequency and saturates at 0.8;
// it never reaches 1.0 by this formula, which callers must treat as a known
// ceiling.
func (d *Detector) Detect(components []extract.Component) []Pattern {
	groups := make(map[extract.Kind][]extract.Component)
	for _, c := range components {
		groups[c.Kind] = append(groups[c.Kind], c)
	}

	kinds := make([]extract.Kind, 0, len(groups))
	for kind := range groups {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var patterns []Pattern
	for _, kind := range kinds {
		members := groups[kind]
		if len(members) <= 1 {
			continue
		}

		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		patterns = append(patterns, Pattern{
			ID:           fmt.Sprintf("pattern_%s", kind),
			Name:         fmt.Sprintf("%s Pattern", titleCase(string(kind))),
			Kind:         string(kind),
			ComponentIDs: ids,
			Frequency:    len(members),
			Confidence:   Confidence(len(members)),
			DetectedBy:   "fallback",
		})
	}

	d.logger.Debug("pattern detection complete", map[string]interface{}{
		"components": len(components),
		"patterns":   len(patterns),
	})
	return patterns
}

// Confidence is min(0.8, frequency/10): saturates at 0.8 once 8 or more
// members share the pattern.
func Confidence(frequency int) float64 {
	return math.Min(0.8, float64(frequency)/10)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
