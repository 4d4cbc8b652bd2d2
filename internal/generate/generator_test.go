package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	arkerrors "arktools/internal/errors"
	"arktools/internal/safety"
	"arktools/internal/transform"
)

func testGuard(t *testing.T, tmp string) *safety.Guard {
	t.Helper()
	return safety.NewGuard(safety.Options{
		BackupRoot:     filepath.Join(tmp, "backups"),
		OutputRootName: ".ark_output",
	})
}

func mergeOp(id string, tt transform.TransformationType) transform.Operation {
	return transform.Operation{
		OperationID:        id,
		Type:               transform.OpMergeDuplicates,
		GroupID:            "dup_group_0",
		Description:        "Merge duplicate components",
		InputComponents:    []string{"a.py:f", "b.py:f"},
		OutputFile:         "consolidated_f.py",
		TransformationType: tt,
		Sources: map[string]string{
			"a.py:f": "def f():\n    return 1\n",
			"b.py:f": "def f():\n    return 1\n",
		},
	}
}

func planWith(ops ...transform.Operation) *transform.Plan {
	return &transform.Plan{
		PlanID:     "plan-1",
		Strategy:   transform.StrategyModerate,
		Operations: ops,
		ValidationRules: []transform.ValidationRule{
			{RuleID: "syntax_validation", Type: "syntax_check", Critical: true},
			{RuleID: "import_resolution", Type: "import_check", Critical: true},
			{RuleID: "no_source_modification", Type: "safety_check", Critical: true},
		},
	}
}

func TestGenerateWritesFiles(t *testing.T) {
	tmp := t.TempDir()
	g := NewGenerator(testGuard(t, tmp), nil)
	outputDir := filepath.Join(tmp, "out")

	op := mergeOp("op_1", transform.ASTMerge)
	result, err := g.Generate(context.Background(), planWith(op), outputDir, false, "gen-1")
	if err != nil {
		t.Fatal(err)
	}

	if len(result.GeneratedFiles) != 1 {
		t.Fatalf("generated %d files, want 1", len(result.GeneratedFiles))
	}
	content, err := os.ReadFile(result.GeneratedFiles[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	// Two identical embedded sources collapse to one definition.
	if got := strings.Count(string(content), "def f():"); got != 1 {
		t.Errorf("merged file contains %d definitions, want 1", got)
	}
	if result.Metrics.SuccessRate != 1.0 {
		t.Errorf("success rate = %v, want 1.0", result.Metrics.SuccessRate)
	}
	if len(result.ValidationResults) != 3 {
		t.Errorf("%d validation results, want 3", len(result.ValidationResults))
	}
	for _, v := range result.ValidationResults {
		if !v.Passed {
			t.Errorf("rule %s failed: %v", v.RuleID, v.Errors)
		}
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	g := NewGenerator(testGuard(t, tmp), nil)
	outputDir := filepath.Join(tmp, "out")

	op := mergeOp("op_1", transform.TextMerge)
	result, err := g.Generate(context.Background(), planWith(op), outputDir, true, "gen-1")
	if err != nil {
		t.Fatal(err)
	}

	if !result.DryRun {
		t.Error("result should be flagged dry-run")
	}
	if len(result.GeneratedFiles) != 0 {
		t.Errorf("dry run generated files: %+v", result.GeneratedFiles)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("dry run created the output directory")
	}
	if result.OperationsExecuted[0].Preview == "" {
		t.Error("dry run should populate previews")
	}
	if len(result.ValidationResults) != 0 {
		t.Error("dry run should skip validation")
	}
}

func TestPreviewTruncatedAt500(t *testing.T) {
	tmp := t.TempDir()
	g := NewGenerator(testGuard(t, tmp), nil)

	op := mergeOp("op_1", transform.ASTMerge)
	op.Sources = map[string]string{
		"a.py:f": "def f():\n" + strings.Repeat("    x = 1\n", 100),
	}
	result, err := g.Generate(context.Background(), planWith(op), filepath.Join(tmp, "out"), true, "gen-1")
	if err != nil {
		t.Fatal(err)
	}

	preview := result.OperationsExecuted[0].Preview
	if len(preview) != previewLimit+len("...") {
		t.Errorf("preview length = %d, want %d", len(preview), previewLimit+3)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Error("truncated preview should end with ellipsis")
	}
}

func TestUnknownOperationRecordedBatchContinues(t *testing.T) {
	tmp := t.TempDir()
	g := NewGenerator(testGuard(t, tmp), nil)

	ops := []transform.Operation{
		mergeOp("op_1", transform.TextMerge),
		mergeOp("op_2", transform.TextMerge),
		mergeOp("op_3", transform.TransformationType("quantum_merge")),
		mergeOp("op_4", transform.TextMerge),
		mergeOp("op_5", transform.TextMerge),
	}
	ops[1].OutputFile = "b.py"
	ops[3].OutputFile = "d.py"
	ops[4].OutputFile = "e.py"

	result, err := g.Generate(context.Background(), planWith(ops...), filepath.Join(tmp, "out"), false, "gen-1")
	if err != nil {
		t.Fatal(err)
	}

	if len(result.OperationsExecuted) != 5 {
		t.Errorf("executed %d operation results, want all 5", len(result.OperationsExecuted))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("recorded %d errors, want 1: %+v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].OperationID != "op_3" {
		t.Errorf("error attributed to %s, want op_3", result.Errors[0].OperationID)
	}
	if result.Errors[0].Type != "unknown_operation" {
		t.Errorf("error type = %s, want unknown_operation", result.Errors[0].Type)
	}
	if !strings.Contains(result.Errors[0].Message, string(arkerrors.UnknownOperation)) {
		t.Errorf("error message should carry the error code, got %q", result.Errors[0].Message)
	}
	if len(result.GeneratedFiles) != 4 {
		t.Errorf("generated %d files, want 4", len(result.GeneratedFiles))
	}
	want := float64(5-1) / 5
	if result.Metrics.SuccessRate != want {
		t.Errorf("success rate = %v, want %v", result.Metrics.SuccessRate, want)
	}
}

func TestProtectionViolationAbortsGeneration(t *testing.T) {
	tmp := t.TempDir()
	guard := testGuard(t, tmp)

	protected := filepath.Join(tmp, "src")
	if err := os.MkdirAll(protected, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := guard.Protect(protected); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(guard, nil)
	ops := []transform.Operation{
		mergeOp("op_1", transform.TextMerge),
		mergeOp("op_2", transform.TextMerge),
	}
	ops[1].OutputFile = "second.py"

	// Pointing the output directory inside the protected tree must abort on
	// the first write attempt.
	_, err := g.Generate(context.Background(), planWith(ops...), protected, false, "gen-1")
	if !arkerrors.HasCode(err, arkerrors.ProtectionViolation) {
		t.Fatalf("Generate = %v, want PROTECTION_VIOLATION", err)
	}

	entries, readErr := os.ReadDir(protected)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("protected directory gained entries: %v", entries)
	}
}

func TestGenerateEmptyPlan(t *testing.T) {
	tmp := t.TempDir()
	g := NewGenerator(testGuard(t, tmp), nil)

	result, err := g.Generate(context.Background(), planWith(), filepath.Join(tmp, "out"), false, "gen-1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Metrics.SuccessRate != 0 {
		t.Errorf("empty plan success rate = %v, want 0 (0/max(1,0))", result.Metrics.SuccessRate)
	}
}

func TestOperationErrorTypes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown operation", arkerrors.New(arkerrors.UnknownOperation, "no handler"), "unknown_operation"},
		{"transformation failure", arkerrors.New(arkerrors.TransformationFailed, "handler failed"), "execution_error"},
		{"validation failure", arkerrors.New(arkerrors.ValidationFailed, "cannot canonicalize"), "safety_error"},
		{"plain os error", os.ErrPermission, "write_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := operationErrorType(tt.err); got != tt.want {
				t.Errorf("operationErrorType() = %s, want %s", got, tt.want)
			}
		})
	}
}
