package transform

import "time"

// GroupType distinguishes duplicate-merge from pattern-extract groups.
type GroupType string

const (
	GroupDuplicate GroupType = "duplicate_consolidation"
	GroupPattern   GroupType = "pattern_consolidation"
)

// OperationType is the closed set of plan operation tags. Dispatch happens
// through a lookup table keyed by this tag, never string branching at call
// sites.
type OperationType string

const (
	OpMergeDuplicates OperationType = "merge_duplicates"
	OpExtractPattern  OperationType = "extract_pattern"
)

// TransformationType tells the caller which implementation an operation will
// use. The structural path produces a faithful merge of the input sources;
// the textual path produces a templated placeholder module.
type TransformationType string

const (
	ASTMerge    TransformationType = "ast_merge"
	TextMerge   TransformationType = "text_merge"
	ASTExtract  TransformationType = "ast_extract"
	TextExtract TransformationType = "text_extract"
)

// Group collects source components destined for one target.
type Group struct {
	GroupID               string    `json:"group_id"`
	Type                  GroupType `json:"type"`
	Name                  string    `json:"name"`
	SourceComponents      []string  `json:"source_components"`
	TargetComponent       string    `json:"target_component"`
	ConsolidationStrategy string    `json:"consolidation_strategy"`
	SimilarityScore       float64   `json:"similarity_score,omitempty"`
	PatternKind           string    `json:"pattern_kind,omitempty"`
	Frequency             int       `json:"frequency,omitempty"`
	Priority              string    `json:"priority"`
}

// Operation is one concrete unit of code generation.
type Operation struct {
	OperationID        string             `json:"operation_id"`
	Type               OperationType      `json:"type"`
	GroupID            string             `json:"group_id"`
	Description        string             `json:"description"`
	InputComponents    []string           `json:"input_components"`
	OutputFile         string             `json:"output_file"`
	TransformationType TransformationType `json:"transformation_type"`
	SafetyChecks       []string           `json:"safety_checks"`
	// Sources maps input component IDs to their source text when the
	// analysis carried it; the structural merge path consumes it.
	Sources map[string]string `json:"sources,omitempty"`
}

// Impact is the estimated effect of executing a plan.
type Impact struct {
	TotalComponents         int     `json:"total_components"`
	ComponentsToConsolidate int     `json:"components_to_consolidate"`
	EstimatedReduction      int     `json:"estimated_reduction"`
	ReductionPercentage     float64 `json:"reduction_percentage"`
	FilesToGenerate         int     `json:"files_to_generate"`
	RiskLevel               string  `json:"risk_level"`
	ComplexityScore         int     `json:"complexity_score"`
}

// ValidationRule is a post-generation check carried by the plan.
type ValidationRule struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Critical    bool   `json:"critical"`
}

// RollbackStep is one step of the plan's fixed rollback sequence.
type RollbackStep struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Reversible  bool   `json:"reversible"`
}

// Plan is the reviewable unit of work handed to the code generator.
// Immutable once created.
type Plan struct {
	PlanID              string           `json:"plan_id"`
	Strategy            Strategy         `json:"strategy"`
	StrategyConfig      StrategyConfig   `json:"strategy_config"`
	CreatedAt           time.Time        `json:"created_at"`
	AnalysisID          string           `json:"analysis_id"`
	Groups              []Group          `json:"groups"`
	Operations          []Operation      `json:"operations"`
	EstimatedImpact     Impact           `json:"estimated_impact"`
	ValidationRules     []ValidationRule `json:"validation_rules"`
	RollbackPlan        []RollbackStep   `json:"rollback_plan"`
	PlanningTimeSeconds float64          `json:"planning_time_seconds"`
}
