// Package generate executes transformation plans against the safety guard,
// producing new files under a quarantined output root.
package generate

import "time"

// GeneratedFile describes one file written (or previewed) by a plan.
type GeneratedFile struct {
	Path        string `json:"path"`
	SizeBytes   int    `json:"size_bytes"`
	Lines       int    `json:"lines"`
	Description string `json:"description"`
}

// OperationError is a recovered per-operation failure.
type OperationError struct {
	Type        string `json:"type"`
	OperationID string `json:"operation_id"`
	Message     string `json:"message"`
}

// OperationResult is the outcome of executing one plan operation.
type OperationResult struct {
	OperationID   string           `json:"operation_id"`
	Type          string           `json:"type"`
	Success       bool             `json:"success"`
	GeneratedFile *GeneratedFile   `json:"generated_file,omitempty"`
	Errors        []OperationError `json:"errors,omitempty"`
	Preview       string           `json:"preview,omitempty"`
}

// RuleResult is the outcome of one plan validation rule across all
// generated files.
type RuleResult struct {
	RuleID      string   `json:"rule_id"`
	Description string   `json:"description"`
	Passed      bool     `json:"passed"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
}

// Metrics summarize a generation run.
type Metrics struct {
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
	FilesGenerated       int     `json:"files_generated"`
	OperationsExecuted   int     `json:"operations_executed"`
	ErrorsEncountered    int     `json:"errors_encountered"`
	SuccessRate          float64 `json:"success_rate"`
}

// Result is the terminal artifact of a generation run.
type Result struct {
	GenerationID       string            `json:"generation_id"`
	PlanID             string            `json:"plan_id"`
	DryRun             bool              `json:"dry_run"`
	Timestamp          time.Time         `json:"timestamp"`
	GeneratedFiles     []GeneratedFile   `json:"generated_files"`
	OperationsExecuted []OperationResult `json:"operations_executed"`
	Errors             []OperationError  `json:"errors"`
	ValidationResults  []RuleResult      `json:"validation_results"`
	Metrics            Metrics           `json:"metrics"`
}
