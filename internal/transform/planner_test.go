package transform

import (
	"strings"
	"testing"

	"arktools/internal/analysis"
	"arktools/internal/duplicates"
	arkerrors "arktools/internal/errors"
	"arktools/internal/extract"
	"arktools/internal/patterns"
)

func analysisFixture() *analysis.Result {
	return &analysis.Result{
		AnalysisID: "analysis-1",
		Summary:    analysis.Summary{TotalComponents: 10},
		Components: []extract.Component{
			{ID: "a.py:f", Name: "f", Kind: extract.KindFunction, SourceText: "def f():\n    return 1\n"},
			{ID: "b.py:f", Name: "f", Kind: extract.KindFunction, SourceText: "def f():\n    return 1\n"},
		},
		DuplicatesDetected: []duplicates.Pair{{
			ID:                     "dup_0",
			OriginalComponentID:    "a.py:f",
			DuplicateComponentID:   "b.py:f",
			Similarity:             0.90,
			ConsolidationPotential: duplicates.PotentialMedium,
		}},
		PatternsFound: []patterns.Pattern{{
			ID:           "pattern_function",
			Name:         "Function Pattern",
			Kind:         "function",
			ComponentIDs: []string{"a.py:f", "b.py:f", "c.py:g"},
			Frequency:    3,
		}},
	}
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"conservative", "moderate", "aggressive"} {
		if _, err := ParseStrategy(valid); err != nil {
			t.Errorf("ParseStrategy(%q) = %v, want nil", valid, err)
		}
	}
	_, err := ParseStrategy("reckless")
	if !arkerrors.HasCode(err, arkerrors.UnknownStrategy) {
		t.Errorf("ParseStrategy(reckless) = %v, want UNKNOWN_STRATEGY", err)
	}
}

func TestStrategyTable(t *testing.T) {
	tests := []struct {
		strategy  Strategy
		threshold float64
		maxPer    int
		comments  bool
		format    bool
	}{
		{StrategyConservative, 0.95, 3, true, true},
		{StrategyModerate, 0.85, 5, true, false},
		{StrategyAggressive, 0.70, 10, false, false},
	}
	for _, tt := range tests {
		cfg := tt.strategy.Config()
		if cfg.SimilarityThreshold != tt.threshold ||
			cfg.MaxChangesPerFile != tt.maxPer ||
			cfg.PreserveComments != tt.comments ||
			cfg.PreserveFormatting != tt.format {
			t.Errorf("%s config = %+v", tt.strategy, cfg)
		}
	}
}

func TestStrategyGatesDuplicateGroups(t *testing.T) {
	result := analysisFixture() // one pair at 0.90

	conservative, err := NewPlanner(false, nil).CreatePlan(result, StrategyConservative, "p1")
	if err != nil {
		t.Fatal(err)
	}
	aggressive, err := NewPlanner(false, nil).CreatePlan(result, StrategyAggressive, "p2")
	if err != nil {
		t.Fatal(err)
	}

	countDup := func(p *Plan) int {
		n := 0
		for _, g := range p.Groups {
			if g.Type == GroupDuplicate {
				n++
			}
		}
		return n
	}
	if got := countDup(conservative); got != 0 {
		t.Errorf("conservative admitted %d duplicate groups for 0.90 pair, want 0", got)
	}
	if got := countDup(aggressive); got != 1 {
		t.Errorf("aggressive admitted %d duplicate groups for 0.90 pair, want 1", got)
	}
}

func TestThresholdIsInclusive(t *testing.T) {
	result := analysisFixture()
	result.DuplicatesDetected[0].Similarity = 0.95

	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyConservative, "p1")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, g := range plan.Groups {
		if g.Type == GroupDuplicate {
			found = true
		}
	}
	if !found {
		t.Error("a pair scoring exactly the threshold must be admitted")
	}
}

func TestPatternGroupsIgnoreStrategy(t *testing.T) {
	result := analysisFixture() // pattern at frequency 3

	for _, strategy := range []Strategy{StrategyConservative, StrategyModerate, StrategyAggressive} {
		plan, err := NewPlanner(false, nil).CreatePlan(result, strategy, "p")
		if err != nil {
			t.Fatal(err)
		}
		count := 0
		for _, g := range plan.Groups {
			if g.Type == GroupPattern {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%s admitted %d pattern groups, want 1", strategy, count)
		}
	}
}

func TestPatternGroupExcludedBelowThree(t *testing.T) {
	result := analysisFixture()
	result.PatternsFound[0].Frequency = 2
	result.PatternsFound[0].ComponentIDs = []string{"a.py:f", "b.py:f"}

	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyAggressive, "p")
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range plan.Groups {
		if g.Type == GroupPattern {
			t.Errorf("frequency 2 pattern should be excluded: %+v", g)
		}
	}
}

func TestOperationExpansion(t *testing.T) {
	result := analysisFixture()
	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyModerate, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Operations) != len(plan.Groups) {
		t.Fatalf("%d operations for %d groups", len(plan.Operations), len(plan.Groups))
	}

	for _, op := range plan.Operations {
		if op.OperationID != "op_"+op.GroupID {
			t.Errorf("operation id %s does not follow op_<group>", op.OperationID)
		}
		if !strings.HasSuffix(op.OutputFile, ".py") {
			t.Errorf("output file %s should carry .py", op.OutputFile)
		}
		switch op.Type {
		case OpMergeDuplicates:
			if op.TransformationType != TextMerge {
				t.Errorf("non-structural planner should emit text_merge, got %s", op.TransformationType)
			}
			if len(op.Sources) != 2 {
				t.Errorf("merge op should embed both sources, got %d", len(op.Sources))
			}
		case OpExtractPattern:
			if op.TransformationType != TextExtract {
				t.Errorf("non-structural planner should emit text_extract, got %s", op.TransformationType)
			}
		}
	}
}

func TestStructuralPlannerEmitsASTTypes(t *testing.T) {
	result := analysisFixture()
	plan, err := NewPlanner(true, nil).CreatePlan(result, StrategyModerate, "p")
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range plan.Operations {
		if op.TransformationType != ASTMerge && op.TransformationType != ASTExtract {
			t.Errorf("structural planner emitted %s", op.TransformationType)
		}
	}
}

func TestEstimatedImpact(t *testing.T) {
	result := analysisFixture()
	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyModerate, "p")
	if err != nil {
		t.Fatal(err)
	}

	impact := plan.EstimatedImpact
	// One duplicate group of 2 (reduction 1, complexity 4) and one pattern
	// group of 3 (reduction 0.9, complexity 9) over 10 components.
	if impact.TotalComponents != 10 {
		t.Errorf("TotalComponents = %d", impact.TotalComponents)
	}
	if impact.ComponentsToConsolidate != 5 {
		t.Errorf("ComponentsToConsolidate = %d, want 5", impact.ComponentsToConsolidate)
	}
	if impact.EstimatedReduction != 1 {
		t.Errorf("EstimatedReduction = %d, want 1 (int truncation of 1.9)", impact.EstimatedReduction)
	}
	if impact.ReductionPercentage != 19.0 {
		t.Errorf("ReductionPercentage = %v, want 19.0", impact.ReductionPercentage)
	}
	if impact.ComplexityScore != 13 {
		t.Errorf("ComplexityScore = %d, want 13", impact.ComplexityScore)
	}
	if impact.FilesToGenerate != 2 {
		t.Errorf("FilesToGenerate = %d, want 2", impact.FilesToGenerate)
	}
	if impact.RiskLevel != "medium" {
		t.Errorf("RiskLevel = %s, want medium for moderate strategy", impact.RiskLevel)
	}
}

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		strategy Strategy
		ops      int
		want     string
	}{
		{StrategyConservative, 1, "low"},
		{StrategyConservative, 11, "medium"},
		{StrategyConservative, 21, "high"},
		{StrategyModerate, 1, "medium"},
		{StrategyAggressive, 1, "high"},
	}
	for _, tt := range tests {
		if got := assessRisk(tt.strategy, tt.ops); got != tt.want {
			t.Errorf("assessRisk(%s, %d) = %s, want %s", tt.strategy, tt.ops, got, tt.want)
		}
	}
}

func TestFixedValidationRulesAndRollback(t *testing.T) {
	result := analysisFixture()
	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyConservative, "p")
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.ValidationRules) != 3 {
		t.Fatalf("%d validation rules, want 3", len(plan.ValidationRules))
	}
	wantRules := []string{"syntax_validation", "import_resolution", "no_source_modification"}
	for i, rule := range plan.ValidationRules {
		if rule.RuleID != wantRules[i] {
			t.Errorf("rule %d = %s, want %s", i, rule.RuleID, wantRules[i])
		}
		if !rule.Critical {
			t.Errorf("rule %s should be critical", rule.RuleID)
		}
	}

	if len(plan.RollbackPlan) != 3 {
		t.Fatalf("%d rollback steps, want 3", len(plan.RollbackPlan))
	}
	wantSteps := []struct {
		action     string
		reversible bool
	}{
		{"delete_generated_files", false},
		{"restore_backups", true},
		{"clear_session_data", false},
	}
	for i, step := range plan.RollbackPlan {
		if step.Step != i+1 || step.Action != wantSteps[i].action || step.Reversible != wantSteps[i].reversible {
			t.Errorf("step %d = %+v, want %+v", i, step, wantSteps[i])
		}
	}
}

func TestCreatePlanRejectsUnknownStrategy(t *testing.T) {
	_, err := NewPlanner(false, nil).CreatePlan(analysisFixture(), Strategy("bogus"), "p")
	if !arkerrors.HasCode(err, arkerrors.UnknownStrategy) {
		t.Errorf("CreatePlan with bogus strategy = %v, want UNKNOWN_STRATEGY", err)
	}
}

func TestTargetNaming(t *testing.T) {
	result := analysisFixture()
	plan, err := NewPlanner(false, nil).CreatePlan(result, StrategyModerate, "p")
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range plan.Groups {
		switch g.Type {
		case GroupDuplicate:
			if g.TargetComponent != "consolidated_f" {
				t.Errorf("duplicate target = %s, want consolidated_f", g.TargetComponent)
			}
		case GroupPattern:
			if g.TargetComponent != "unified_function_pattern" {
				t.Errorf("pattern target = %s, want unified_function_pattern", g.TargetComponent)
			}
		}
	}
}
