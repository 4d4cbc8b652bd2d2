package transform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"arktools/internal/analysis"
	"arktools/internal/logging"
)

// Planner builds transformation plans from analysis results.
type Planner struct {
	// structural selects the ast_* transformation sub-types when the
	// precise rewrite path is compiled in.
	structural bool
	logger     *logging.Logger
}

// NewPlanner creates a transformation planner. structural reports whether
// the AST rewrite path is available in this build.
func NewPlanner(structural bool, logger *logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Planner{structural: structural, logger: logger.WithComponent("transform")}
}

// CreatePlan groups the analysis findings under the given strategy, expands
// groups into operations, and estimates impact. The plan is immutable once
// returned.
func (p *Planner) CreatePlan(result *analysis.Result, strategy Strategy, planID string) (*Plan, error) {
	start := time.Now()
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	cfg := strategy.Config()

	p.logger.Info("creating transformation plan", map[string]interface{}{
		"plan":     planID,
		"strategy": string(strategy),
	})

	plan := &Plan{
		PlanID:         planID,
		Strategy:       strategy,
		StrategyConfig: cfg,
		CreatedAt:      time.Now().UTC(),
		AnalysisID:     result.AnalysisID,
	}

	plan.Groups = append(plan.Groups, p.duplicateGroups(result, cfg)...)
	plan.Groups = append(plan.Groups, p.patternGroups(result)...)
	plan.Operations = p.expandOperations(plan.Groups, result)
	plan.EstimatedImpact = p.estimateImpact(plan, result)
	plan.ValidationRules = validationRules()
	plan.RollbackPlan = rollbackPlan()
	plan.PlanningTimeSeconds = time.Since(start).Seconds()

	p.logger.Info("transformation plan created", map[string]interface{}{
		"plan":       planID,
		"groups":     len(plan.Groups),
		"operations": len(plan.Operations),
	})
	return plan, nil
}

// duplicateGroups admits only pairs meeting the strategy's similarity
// threshold (inclusive).
func (p *Planner) duplicateGroups(result *analysis.Result, cfg StrategyConfig) []Group {
	var groups []Group
	for _, pair := range result.DuplicatesDetected {
		if pair.Similarity < cfg.SimilarityThreshold {
			continue
		}

		i := len(groups)
		groups = append(groups, Group{
			GroupID:               fmt.Sprintf("dup_group_%d", i),
			Type:                  GroupDuplicate,
			Name:                  fmt.Sprintf("Duplicate Consolidation Group %d", i+1),
			SourceComponents:      []string{pair.OriginalComponentID, pair.DuplicateComponentID},
			TargetComponent:       "consolidated_" + componentBaseName(pair.OriginalComponentID),
			ConsolidationStrategy: "merge_similar",
			SimilarityScore:       pair.Similarity,
			Priority:              duplicatePriority(pair.Similarity),
		})
	}
	return groups
}

// patternGroups admits patterns with frequency >= 3, regardless of strategy.
func (p *Planner) patternGroups(result *analysis.Result) []Group {
	var groups []Group
	for _, pattern := range result.PatternsFound {
		if !pattern.Significant() {
			continue
		}

		i := len(groups)
		groups = append(groups, Group{
			GroupID:               fmt.Sprintf("pattern_group_%d", i),
			Type:                  GroupPattern,
			Name:                  "Pattern Consolidation: " + pattern.Name,
			SourceComponents:      pattern.ComponentIDs,
			TargetComponent:       "unified_" + strings.ReplaceAll(strings.ToLower(pattern.Name), " ", "_"),
			ConsolidationStrategy: "extract_common_pattern",
			PatternKind:           pattern.Kind,
			Frequency:             pattern.Frequency,
			Priority:              "medium",
		})
	}
	return groups
}

// expandOperations yields one merge_duplicates operation per duplicate group
// and one extract_pattern operation per pattern group. The transformation
// sub-type surfaces which implementation the generator will use.
func (p *Planner) expandOperations(groups []Group, result *analysis.Result) []Operation {
	var operations []Operation
	for _, group := range groups {
		op := Operation{
			OperationID:     "op_" + group.GroupID,
			GroupID:         group.GroupID,
			InputComponents: group.SourceComponents,
			OutputFile:      group.TargetComponent + ".py",
			Sources:         p.collectSources(group.SourceComponents, result),
		}

		switch group.Type {
		case GroupDuplicate:
			op.Type = OpMergeDuplicates
			op.Description = fmt.Sprintf("Merge duplicate components with %.1f%% similarity",
				group.SimilarityScore*100)
			op.TransformationType = TextMerge
			if p.structural {
				op.TransformationType = ASTMerge
			}
			op.SafetyChecks = []string{"syntax_validation", "import_resolution"}
		case GroupPattern:
			op.Type = OpExtractPattern
			op.Description = fmt.Sprintf("Extract common pattern from %d components",
				group.Frequency)
			op.TransformationType = TextExtract
			if p.structural {
				op.TransformationType = ASTExtract
			}
			op.SafetyChecks = []string{"syntax_validation", "dependency_check"}
		}
		operations = append(operations, op)
	}
	return operations
}

func (p *Planner) collectSources(componentIDs []string, result *analysis.Result) map[string]string {
	sources := make(map[string]string)
	for _, id := range componentIDs {
		if c, ok := result.ComponentByID(id); ok {
			sources[id] = c.SourceText
		}
	}
	if len(sources) == 0 {
		return nil
	}
	return sources
}

// estimateImpact computes the reduction, risk, and complexity estimates:
// duplicates reduce by (size-1) components per group, patterns by 30% of
// group size.
func (p *Planner) estimateImpact(plan *Plan, result *analysis.Result) Impact {
	totalComponents := result.Summary.TotalComponents

	var toConsolidate int
	var reduction float64
	var complexity int
	for _, group := range plan.Groups {
		size := len(group.SourceComponents)
		toConsolidate += size
		switch group.Type {
		case GroupDuplicate:
			reduction += float64(size - 1)
			complexity += size * 2
		case GroupPattern:
			reduction += float64(size) * 0.3
			complexity += size * 3
		}
	}

	denominator := totalComponents
	if denominator < 1 {
		denominator = 1
	}
	pct := reduction / float64(denominator) * 100

	return Impact{
		TotalComponents:         totalComponents,
		ComponentsToConsolidate: toConsolidate,
		EstimatedReduction:      int(reduction),
		ReductionPercentage:     math.Round(pct*10) / 10,
		FilesToGenerate:         len(plan.Operations),
		RiskLevel:               assessRisk(plan.Strategy, len(plan.Operations)),
		ComplexityScore:         complexity,
	}
}

func assessRisk(strategy Strategy, operationCount int) string {
	switch {
	case strategy == StrategyAggressive || operationCount > 20:
		return "high"
	case strategy == StrategyModerate || operationCount > 10:
		return "medium"
	default:
		return "low"
	}
}

func duplicatePriority(similarity float64) string {
	if similarity > 0.95 {
		return "high"
	}
	return "medium"
}

func componentBaseName(componentID string) string {
	if i := strings.LastIndex(componentID, ":"); i >= 0 {
		return componentID[i+1:]
	}
	return componentID
}

// validationRules is the fixed list of critical post-generation checks.
func validationRules() []ValidationRule {
	return []ValidationRule{
		{
			RuleID:      "syntax_validation",
			Description: "All generated code must have valid syntax",
			Type:        "syntax_check",
			Critical:    true,
		},
		{
			RuleID:      "import_resolution",
			Description: "All imports must resolve correctly",
			Type:        "import_check",
			Critical:    true,
		},
		{
			RuleID:      "no_source_modification",
			Description: "Original source files must not be modified",
			Type:        "safety_check",
			Critical:    true,
		},
	}
}

// rollbackPlan is the fixed three-step rollback sequence.
func rollbackPlan() []RollbackStep {
	return []RollbackStep{
		{
			Step:        1,
			Action:      "delete_generated_files",
			Description: "Remove all generated files from output directory",
			Reversible:  false,
		},
		{
			Step:        2,
			Action:      "restore_backups",
			Description: "Restore any backed up files to original locations",
			Reversible:  true,
		},
		{
			Step:        3,
			Action:      "clear_session_data",
			Description: "Clear transformation session data and logs",
			Reversible:  false,
		},
	}
}
