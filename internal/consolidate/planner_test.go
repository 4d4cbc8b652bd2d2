package consolidate

import (
	"testing"

	"arktools/internal/duplicates"
	"arktools/internal/patterns"
)

func TestPlanDuplicateOpportunities(t *testing.T) {
	pairs := []duplicates.Pair{
		{
			ID:                     "dup_0",
			OriginalComponentID:    "a.py:f",
			DuplicateComponentID:   "b.py:f",
			Similarity:             1.0,
			ConsolidationPotential: duplicates.PotentialHigh,
		},
		{
			ID:                     "dup_1",
			OriginalComponentID:    "a.py:g",
			DuplicateComponentID:   "b.py:g",
			Similarity:             0.90,
			ConsolidationPotential: duplicates.PotentialMedium,
		},
	}

	p := NewPlanner(nil)
	opps := p.Plan(nil, nil, pairs)
	if len(opps) != 2 {
		t.Fatalf("planned %d opportunities, want 2", len(opps))
	}

	high := opps[0]
	if high.Priority != "high" || high.EffortLevel != "low" {
		t.Errorf("similarity 1.0 should be high priority, low effort: %+v", high)
	}
	if high.EstimatedReduction != "100%" {
		t.Errorf("reduction = %s, want 100%%", high.EstimatedReduction)
	}

	medium := opps[1]
	if medium.Priority != "medium" || medium.EffortLevel != "medium" {
		t.Errorf("similarity 0.90 should be medium priority and effort: %+v", medium)
	}
	if medium.EstimatedReduction != "90%" {
		t.Errorf("reduction = %s, want 90%%", medium.EstimatedReduction)
	}
	if len(medium.ComponentsInvolved) != 2 {
		t.Errorf("components involved = %v", medium.ComponentsInvolved)
	}
}

func TestPlanPatternFrequencyBoundary(t *testing.T) {
	pats := []patterns.Pattern{
		{ID: "pattern_function", Name: "Function Pattern", Frequency: 3,
			ComponentIDs: []string{"a", "b", "c"}},
		{ID: "pattern_class", Name: "Class Pattern", Frequency: 4,
			ComponentIDs: []string{"d", "e", "f", "g"}},
	}

	p := NewPlanner(nil)
	opps := p.Plan(nil, pats, nil)
	if len(opps) != 1 {
		t.Fatalf("planned %d opportunities, want 1 (frequency 3 is excluded)", len(opps))
	}
	if opps[0].Frequency != 4 {
		t.Errorf("surviving opportunity frequency = %d, want 4", opps[0].Frequency)
	}
	if opps[0].EstimatedReduction != "40%" {
		t.Errorf("reduction = %s, want 40%%", opps[0].EstimatedReduction)
	}
}

func TestPlanPatternReductionCap(t *testing.T) {
	pats := []patterns.Pattern{
		{ID: "pattern_function", Name: "Function Pattern", Frequency: 20,
			ComponentIDs: make([]string, 20)},
	}
	p := NewPlanner(nil)
	opps := p.Plan(nil, pats, nil)
	if len(opps) != 1 {
		t.Fatalf("planned %d opportunities, want 1", len(opps))
	}
	if opps[0].EstimatedReduction != "75%" {
		t.Errorf("reduction = %s, want capped 75%%", opps[0].EstimatedReduction)
	}
}

func TestPlanIsAdditive(t *testing.T) {
	// The same component may appear in a duplicate pair and a pattern; both
	// opportunities are kept.
	pairs := []duplicates.Pair{{
		OriginalComponentID:    "a.py:f",
		DuplicateComponentID:   "b.py:f",
		Similarity:             1.0,
		ConsolidationPotential: duplicates.PotentialHigh,
	}}
	pats := []patterns.Pattern{{
		ID: "pattern_function", Name: "Function Pattern", Frequency: 5,
		ComponentIDs: []string{"a.py:f", "b.py:f", "c.py:g", "d.py:h", "e.py:i"},
	}}

	p := NewPlanner(nil)
	opps := p.Plan(nil, pats, pairs)
	if len(opps) != 2 {
		t.Fatalf("planned %d opportunities, want 2 (no cross-source dedup)", len(opps))
	}
	if opps[0].Type != DuplicateConsolidation || opps[1].Type != PatternConsolidation {
		t.Errorf("unexpected opportunity types: %s, %s", opps[0].Type, opps[1].Type)
	}
}
