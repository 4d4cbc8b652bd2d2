package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	arkerrors "arktools/internal/errors"
	"arktools/internal/logging"
	"arktools/internal/safety"
	"arktools/internal/transform"
)

// previewLimit truncates operation previews.
const previewLimit = 500

// Generator executes a transformation plan's operations against the guard.
type Generator struct {
	guard  *safety.Guard
	logger *logging.Logger
}

// NewGenerator creates a code generator bound to a safety guard.
func NewGenerator(guard *safety.Guard, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{guard: guard, logger: logger.WithComponent("generate")}
}

// Generate executes plan operations in order. Per-operation failures are
// recorded and the batch continues; a protection violation aborts the run
// immediately. With dryRun set, nothing is written and previews carry the
// would-be output.
func (g *Generator) Generate(ctx context.Context, plan *transform.Plan, outputDir string, dryRun bool, generationID string) (*Result, error) {
	start := time.Now()
	g.logger.Info("generating code", map[string]interface{}{
		"generation": generationID,
		"plan":       plan.PlanID,
		"dryRun":     dryRun,
	})

	result := &Result{
		GenerationID:       generationID,
		PlanID:             plan.PlanID,
		DryRun:             dryRun,
		Timestamp:          start.UTC(),
		GeneratedFiles:     []GeneratedFile{},
		OperationsExecuted: []OperationResult{},
		Errors:             []OperationError{},
		ValidationResults:  []RuleResult{},
	}

	for _, op := range plan.Operations {
		opResult, err := g.executeOperation(op, outputDir, dryRun)
		if err != nil {
			// Only fatal errors propagate (a protection violation is a
			// hard stop for the run, never retried); everything else is
			// recorded on the operation.
			return result, err
		}
		result.OperationsExecuted = append(result.OperationsExecuted, opResult)
		if opResult.GeneratedFile != nil {
			result.GeneratedFiles = append(result.GeneratedFiles, *opResult.GeneratedFile)
		}
		result.Errors = append(result.Errors, opResult.Errors...)
	}

	if !dryRun {
		result.ValidationResults = g.validate(ctx, plan, result)
	}

	elapsed := time.Since(start).Seconds()
	opCount := len(result.OperationsExecuted)
	denominator := opCount
	if denominator < 1 {
		denominator = 1
	}
	result.Metrics = Metrics{
		ExecutionTimeSeconds: elapsed,
		FilesGenerated:       len(result.GeneratedFiles),
		OperationsExecuted:   opCount,
		ErrorsEncountered:    len(result.Errors),
		SuccessRate:          float64(opCount-len(result.Errors)) / float64(denominator),
	}

	g.logger.Info("generation complete", map[string]interface{}{
		"generation": generationID,
		"files":      len(result.GeneratedFiles),
		"errors":     len(result.Errors),
	})
	return result, nil
}

func (g *Generator) executeOperation(op transform.Operation, outputDir string, dryRun bool) (OperationResult, error) {
	opResult := OperationResult{
		OperationID: op.OperationID,
		Type:        string(op.Type),
	}

	handler, ok := contentHandlers[op.TransformationType]
	if !ok {
		recordOperationError(&opResult, op.OperationID, arkerrors.Newf(arkerrors.UnknownOperation,
			"unknown transformation type: %s", op.TransformationType))
		return opResult, nil
	}

	content, err := handler(op)
	if err != nil {
		recordOperationError(&opResult, op.OperationID,
			arkerrors.Wrap(arkerrors.TransformationFailed, "content handler failed", err))
		return opResult, nil
	}

	opResult.Preview = truncatePreview(content)

	if dryRun {
		opResult.Success = true
		return opResult, nil
	}

	target := filepath.Join(outputDir, op.OutputFile)

	// The single most important invariant in the system: every write target
	// is verified against the guard first.
	if err := g.guard.VerifyWritable(target); err != nil {
		if arkerrors.IsFatal(err) {
			return opResult, err
		}
		recordOperationError(&opResult, op.OperationID, err)
		return opResult, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		recordOperationError(&opResult, op.OperationID, err)
		return opResult, nil
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		recordOperationError(&opResult, op.OperationID, err)
		return opResult, nil
	}

	opResult.Success = true
	opResult.GeneratedFile = &GeneratedFile{
		Path:        target,
		SizeBytes:   len(content),
		Lines:       strings.Count(content, "\n") + 1,
		Description: op.Description,
	}
	return opResult, nil
}

// validate runs the plan's validation rules against each generated file.
// A failed rule is recorded; generated files are kept on disk for
// inspection, never auto-deleted.
func (g *Generator) validate(ctx context.Context, plan *transform.Plan, result *Result) []RuleResult {
	var ruleResults []RuleResult
	for _, rule := range plan.ValidationRules {
		rr := RuleResult{
			RuleID:      rule.RuleID,
			Description: rule.Description,
			Passed:      true,
			Errors:      []string{},
			Warnings:    []string{},
		}

		switch rule.Type {
		case "syntax_check":
			for _, file := range result.GeneratedFiles {
				report := g.guard.ValidateGeneratedOutput(ctx, file.Path)
				if err := report.Err(); err != nil {
					rr.Passed = false
					rr.Errors = append(rr.Errors, file.Path+": "+err.Error())
				}
			}
		case "safety_check":
			for _, file := range result.GeneratedFiles {
				c := g.guard.ClassifyOutputPath(file.Path)
				if !c.Safe {
					rr.Passed = false
					rr.Errors = append(rr.Errors, file.Path+": under a protected source root")
				}
			}
		case "import_check":
			rr.Warnings = append(rr.Warnings, "import resolution is not enforced in this build")
		}

		ruleResults = append(ruleResults, rr)
	}
	return ruleResults
}

// recordOperationError converts a recoverable error into a structured entry
// on the operation result, with the entry type derived from the error code.
func recordOperationError(opResult *OperationResult, opID string, err error) {
	opResult.Errors = append(opResult.Errors, OperationError{
		Type:        operationErrorType(err),
		OperationID: opID,
		Message:     err.Error(),
	})
}

func operationErrorType(err error) string {
	switch arkerrors.CodeOf(err) {
	case arkerrors.UnknownOperation:
		return "unknown_operation"
	case arkerrors.TransformationFailed:
		return "execution_error"
	case arkerrors.ValidationFailed:
		return "safety_error"
	default:
		return "write_error"
	}
}

func truncatePreview(content string) string {
	if len(content) > previewLimit {
		return content[:previewLimit] + "..."
	}
	return content
}
