// Package consolidate derives ranked consolidation opportunities from
// pattern and duplicate findings.
package consolidate

import (
	"fmt"

	"arktools/internal/duplicates"
	"arktools/internal/extract"
	"arktools/internal/logging"
	"arktools/internal/patterns"
)

// OpportunityType distinguishes the two opportunity sources.
type OpportunityType string

const (
	DuplicateConsolidation OpportunityType = "duplicate_consolidation"
	PatternConsolidation   OpportunityType = "pattern_consolidation"
)

// Opportunity is a derived suggestion to merge or extract code.
type Opportunity struct {
	ID                 string          `json:"id"`
	Type               OpportunityType `json:"type"`
	Priority           string          `json:"priority"`
	Description        string          `json:"description"`
	ComponentsInvolved []string        `json:"components_involved"`
	EstimatedReduction string          `json:"estimated_reduction"`
	EffortLevel        string          `json:"effort_level"`
	// Similarity carries the source pair's score for duplicate
	// opportunities; zero for pattern opportunities.
	Similarity float64 `json:"similarity,omitempty"`
	// Frequency carries the source pattern's frequency; zero for
	// duplicate opportunities.
	Frequency int `json:"frequency,omitempty"`
}

// Planner combines pattern and duplicate findings into opportunities.
type Planner struct {
	logger *logging.Logger
}

// NewPlanner creates a consolidation planner.
func NewPlanner(logger *logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Planner{logger: logger.WithComponent("consolidate")}
}

// Plan derives one opportunity per reported duplicate pair and one per
// pattern with frequency above the significance boundary (strictly greater
// than 3). Opportunities are purely additive: no deduplication across the
// two sources, so a component can appear in several.
func (p *Planner) Plan(components []extract.Component, pats []patterns.Pattern, pairs []duplicates.Pair) []Opportunity {
	var opportunities []Opportunity

	for _, pair := range pairs {
		if pair.ConsolidationPotential != duplicates.PotentialHigh &&
			pair.ConsolidationPotential != duplicates.PotentialMedium {
			continue
		}

		priority := "medium"
		effort := "medium"
		if pair.Similarity > duplicates.HighPotentialThreshold {
			priority = "high"
			effort = "low"
		}
		opportunities = append(opportunities, Opportunity{
			ID:       fmt.Sprintf("opp_dup_%d", len(opportunities)),
			Type:     DuplicateConsolidation,
			Priority: priority,
			Description: fmt.Sprintf("Consolidate near-duplicate components with %.1f%% similarity",
				pair.Similarity*100),
			ComponentsInvolved: []string{pair.OriginalComponentID, pair.DuplicateComponentID},
			EstimatedReduction: fmt.Sprintf("%.0f%%", pair.Similarity*100),
			EffortLevel:        effort,
			Similarity:         pair.Similarity,
		})
	}

	for _, pattern := range pats {
		if pattern.Frequency <= patterns.SignificantFrequency {
			continue
		}

		reduction := pattern.Frequency * 10
		if reduction > 75 {
			reduction = 75
		}
		opportunities = append(opportunities, Opportunity{
			ID:       fmt.Sprintf("opp_pattern_%d", len(opportunities)),
			Type:     PatternConsolidation,
			Priority: "medium",
			Description: fmt.Sprintf("Consolidate %d instances of %s",
				pattern.Frequency, pattern.Name),
			ComponentsInvolved: pattern.ComponentIDs,
			EstimatedReduction: fmt.Sprintf("%d%%", reduction),
			EffortLevel:        "medium",
			Frequency:          pattern.Frequency,
		})
	}

	p.logger.Debug("consolidation planning complete", map[string]interface{}{
		"opportunities": len(opportunities),
	})
	return opportunities
}
