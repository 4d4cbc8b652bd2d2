package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"arktools/internal/analysis"
	"arktools/internal/engine"
	"arktools/internal/generate"
	"arktools/internal/safety"
	"arktools/internal/transform"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *analysis.Result:
		return formatAnalysisHuman(v), nil
	case *transform.Plan:
		return formatPlanHuman(v), nil
	case *generate.Result:
		return formatGenerationHuman(v), nil
	case *statusResponse:
		return formatStatusHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatAnalysisHuman(r *analysis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis %s (%s)\n", r.AnalysisID, r.AnalysisType)
	fmt.Fprintf(&b, "Directory: %s\n\n", r.Directory)
	fmt.Fprintf(&b, "Files analyzed:      %d\n", r.Summary.TotalFiles)
	fmt.Fprintf(&b, "Components found:    %d\n", r.Summary.TotalComponents)
	fmt.Fprintf(&b, "Patterns found:      %d\n", r.Summary.PatternsFound)
	fmt.Fprintf(&b, "Duplicates detected: %d\n", r.Summary.DuplicatesFound)
	fmt.Fprintf(&b, "Opportunities:       %d\n", len(r.ConsolidationOpportunities))
	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s\n", rec.Priority, rec.Message)
		}
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s/%s: %s\n", e.Phase, e.Type, e.Message)
		}
	}
	fmt.Fprintf(&b, "\nCompleted in %.2fs\n", r.Metrics.ExecutionTimeSeconds)
	return b.String()
}

func formatPlanHuman(p *transform.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transformation plan %s\n", p.PlanID)
	fmt.Fprintf(&b, "Strategy: %s (threshold %.2f)\n\n", p.Strategy, p.StrategyConfig.SimilarityThreshold)
	fmt.Fprintf(&b, "Groups:     %d\n", len(p.Groups))
	fmt.Fprintf(&b, "Operations: %d\n", len(p.Operations))
	fmt.Fprintf(&b, "Risk level: %s\n", p.EstimatedImpact.RiskLevel)
	fmt.Fprintf(&b, "Estimated reduction: %d components (%.1f%%)\n",
		p.EstimatedImpact.EstimatedReduction, p.EstimatedImpact.ReductionPercentage)
	for _, g := range p.Groups {
		fmt.Fprintf(&b, "  %s [%s] -> %s (%d components)\n",
			g.GroupID, g.Priority, g.TargetComponent, len(g.SourceComponents))
	}
	return b.String()
}

func formatGenerationHuman(r *generate.Result) string {
	var b strings.Builder
	mode := "generation"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "Code %s %s (plan %s)\n\n", mode, r.GenerationID, r.PlanID)
	fmt.Fprintf(&b, "Operations executed: %d\n", r.Metrics.OperationsExecuted)
	fmt.Fprintf(&b, "Files generated:     %d\n", r.Metrics.FilesGenerated)
	fmt.Fprintf(&b, "Errors:              %d\n", r.Metrics.ErrorsEncountered)
	fmt.Fprintf(&b, "Success rate:        %.0f%%\n", r.Metrics.SuccessRate*100)
	for _, f := range r.GeneratedFiles {
		fmt.Fprintf(&b, "  %s (%d lines)\n", f.Path, f.Lines)
	}
	if r.DryRun {
		b.WriteString("\nPreviews:\n")
		for _, op := range r.OperationsExecuted {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", op.OperationID, op.Preview)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error (%s) %s: %s\n", e.Type, e.OperationID, e.Message)
	}
	for _, v := range r.ValidationResults {
		status := "ok"
		if !v.Passed {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  validation %s: %s\n", v.RuleID, status)
	}
	return b.String()
}

// statusResponse bundles session and safety state for `ark status`.
type statusResponse struct {
	Session engine.SessionInfo `json:"session"`
	Safety  safety.Status      `json:"safety"`
}

func formatStatusHuman(s *statusResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session:   %s (%s)\n", s.Session.SessionID, s.Session.State)
	fmt.Fprintf(&b, "Workspace: %s\n", s.Session.Workspace)
	fmt.Fprintf(&b, "Output:    %s\n", s.Session.OutputDir)
	fmt.Fprintf(&b, "Version:   %s\n\n", s.Session.ArkVersion)
	fmt.Fprintf(&b, "Read-only source:     %v\n", s.Safety.ReadOnlySourceEnabled)
	fmt.Fprintf(&b, "Protected paths:      %d\n", s.Safety.ProtectedPathsCount)
	for _, p := range s.Safety.ProtectedPaths {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	fmt.Fprintf(&b, "Active backups:       %d\n", s.Safety.ActiveBackups)
	fmt.Fprintf(&b, "Syntax check:         %v\n", s.Safety.SyntaxCheckAvailable)
	return b.String()
}
