package safety

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	arkerrors "arktools/internal/errors"
)

// ValidationReport is the structured pass/fail result for a generated file.
// Parse failures are reported here, never raised.
type ValidationReport struct {
	Path          string `json:"path"`
	Valid         bool   `json:"valid"`
	HasContent    bool   `json:"hasContent"`
	WithinSizeCap bool   `json:"withinSizeCap"`
	SyntaxValid   bool   `json:"syntaxValid"`
	SyntaxChecked bool   `json:"syntaxChecked"`
	SyntaxError   string `json:"syntaxError,omitempty"`
	FileSize      int    `json:"fileSize"`
	LineCount     int    `json:"lineCount"`
	Error         string `json:"error,omitempty"`
}

// Err converts a failed report into a VALIDATION_FAILED error carrying the
// most specific failure detail. Valid reports return nil.
func (r ValidationReport) Err() error {
	if r.Valid {
		return nil
	}
	detail := r.SyntaxError
	if detail == "" {
		detail = r.Error
	}
	if detail == "" {
		detail = "generated file is empty or exceeds the size ceiling"
	}
	return arkerrors.New(arkerrors.ValidationFailed, detail)
}

// ValidateGeneratedOutput checks a generated file: it must be non-empty,
// below the size ceiling, and, for Python sources, syntactically parseable
// when a checker is available.
func (g *Guard) ValidateGeneratedOutput(ctx context.Context, filePath string) ValidationReport {
	report := ValidationReport{Path: filePath, SyntaxValid: true}

	content, err := os.ReadFile(filePath)
	if err != nil {
		report.Error = "file does not exist or is unreadable"
		return report
	}

	report.FileSize = len(content)
	report.LineCount = len(strings.Split(string(content), "\n"))
	report.HasContent = len(strings.TrimSpace(string(content))) > 0
	report.WithinSizeCap = len(content) < g.maxGeneratedBytes

	if filepath.Ext(filePath) == ".py" && g.checker != nil && g.checker.Available() {
		report.SyntaxChecked = true
		ok, detail := g.checker.Check(ctx, filePath, content)
		report.SyntaxValid = ok
		if !ok {
			report.SyntaxError = detail
		}
	}

	report.Valid = report.HasContent && report.WithinSizeCap && report.SyntaxValid
	g.logger.Debug("generated output validated", map[string]interface{}{
		"path":  filePath,
		"valid": report.Valid,
	})
	return report
}
