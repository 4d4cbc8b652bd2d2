package analysis

import "fmt"

// Recommendation is a high-level actionable suggestion derived from the run.
type Recommendation struct {
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// Recommend derives summary-level recommendations from an analysis result.
func Recommend(result *Result) []Recommendation {
	var recs []Recommendation

	totalComponents := result.Summary.TotalComponents
	totalDuplicates := result.Summary.DuplicatesFound
	if totalDuplicates > 0 {
		denominator := totalComponents
		if denominator == 0 {
			denominator = 1
		}
		duplicatePct := float64(totalDuplicates) / float64(denominator) * 100

		switch {
		case duplicatePct > 20:
			recs = append(recs, Recommendation{
				Priority: "high",
				Type:     "duplication",
				Message:  fmt.Sprintf("High duplication detected (%.1f%%) - prioritize consolidation", duplicatePct),
				Action:   "Start with highest similarity duplicates first",
			})
		case duplicatePct > 10:
			recs = append(recs, Recommendation{
				Priority: "medium",
				Type:     "duplication",
				Message:  fmt.Sprintf("Moderate duplication found (%.1f%%) - consider consolidation", duplicatePct),
				Action:   "Review duplicate pairs for consolidation opportunities",
			})
		}
	}

	if len(result.PatternsFound) > 5 {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Type:     "patterns",
			Message:  fmt.Sprintf("Multiple patterns detected (%d) - opportunities for standardization", len(result.PatternsFound)),
			Action:   "Create reusable components for common patterns",
		})
	}

	if result.Summary.TotalFiles > 100 {
		recs = append(recs, Recommendation{
			Priority: "low",
			Type:     "organization",
			Message:  fmt.Sprintf("Large codebase (%d files) - consider modular organization", result.Summary.TotalFiles),
			Action:   "Group related files into logical modules",
		})
	}

	return recs
}
