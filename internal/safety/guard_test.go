package safety

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	arkerrors "arktools/internal/errors"
)

func newTestGuard(t *testing.T) (*Guard, string) {
	t.Helper()
	tmp := t.TempDir()
	guard := NewGuard(Options{
		BackupRoot:     filepath.Join(tmp, "backups"),
		OutputRootName: ".ark_output",
	})
	return guard, tmp
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyWritableBlocksProtectedPaths(t *testing.T) {
	guard, tmp := newTestGuard(t)

	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "app", "main.py"), "print('hi')\n")
	if err := guard.Protect(src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		blocked bool
	}{
		{"root itself", src, true},
		{"direct child", filepath.Join(src, "main.py"), true},
		{"nested child", filepath.Join(src, "app", "deep", "new.py"), true},
		{"sibling", filepath.Join(tmp, "out", "new.py"), false},
		{"prefix but not child", filepath.Join(tmp, "srcfoo", "new.py"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.VerifyWritable(tt.path)
			if tt.blocked {
				if !arkerrors.HasCode(err, arkerrors.ProtectionViolation) {
					t.Errorf("VerifyWritable(%s) = %v, want PROTECTION_VIOLATION", tt.path, err)
				}
			} else if err != nil {
				t.Errorf("VerifyWritable(%s) = %v, want nil", tt.path, err)
			}
		})
	}
}

func TestProtectIsIdempotent(t *testing.T) {
	guard, tmp := newTestGuard(t)
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "a.py"), "x = 1\n")

	for i := 0; i < 3; i++ {
		if err := guard.Protect(src); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(guard.ProtectedPaths()); got != 1 {
		t.Errorf("protected registry has %d entries, want 1", got)
	}
}

func TestProtectConcurrentRegistration(t *testing.T) {
	guard, tmp := newTestGuard(t)
	dirs := make([]string, 8)
	for i := range dirs {
		dirs[i] = filepath.Join(tmp, "src", string(rune('a'+i)))
		writeFile(t, filepath.Join(dirs[i], "f.py"), "pass\n")
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, d := range dirs {
				if err := guard.Protect(d); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	if got := len(guard.ProtectedPaths()); got != len(dirs) {
		t.Errorf("protected registry has %d entries, want %d", got, len(dirs))
	}
}

func TestClassifyOutputPath(t *testing.T) {
	guard, tmp := newTestGuard(t)
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "a.py"), "x = 1\n")
	if err := guard.Protect(src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		path          string
		wantSafe      bool
		wantIndicator bool
	}{
		{"under protected", filepath.Join(src, "generated", "x.py"), false, true},
		{"output root", filepath.Join(tmp, ".ark_output", "v_1", "x.py"), true, true},
		{"indicator token", filepath.Join(tmp, "build", "x.py"), true, true},
		{"plain unprotected", filepath.Join(tmp, "elsewhere", "x.py"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := guard.ClassifyOutputPath(tt.path)
			if c.Safe != tt.wantSafe {
				t.Errorf("Safe = %v, want %v", c.Safe, tt.wantSafe)
			}
			if c.HasOutputIndicator != tt.wantIndicator {
				t.Errorf("HasOutputIndicator = %v, want %v", c.HasOutputIndicator, tt.wantIndicator)
			}
		})
	}
}

func TestBackupMissingFile(t *testing.T) {
	guard, tmp := newTestGuard(t)
	_, err := guard.Backup(filepath.Join(tmp, "nope.py"), "b1")
	if !arkerrors.HasCode(err, arkerrors.NotFound) {
		t.Errorf("Backup of missing file = %v, want NOT_FOUND", err)
	}
}

func TestRollbackRestoresExactContent(t *testing.T) {
	guard, tmp := newTestGuard(t)

	original := "def f():\n    return 42\n"
	target := filepath.Join(tmp, "work", "f.py")
	writeFile(t, target, original)
	if err := os.Chmod(target, 0o640); err != nil {
		t.Fatal(err)
	}

	backupPath, err := guard.Backup(target, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file not written: %v", err)
	}

	// Clobber the original, then roll back.
	if err := os.WriteFile(target, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !guard.Rollback(target) {
		t.Fatal("Rollback returned false")
	}

	restored, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != original {
		t.Errorf("restored content = %q, want %q", restored, original)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("restored mode = %v, want 0640", info.Mode().Perm())
	}
}

func TestRollbackWithoutBackupReturnsFalse(t *testing.T) {
	guard, tmp := newTestGuard(t)
	if guard.Rollback(filepath.Join(tmp, "never-backed-up.py")) {
		t.Error("Rollback should return false for unknown path")
	}
}

func TestRollbackWithMissingBackupFileReturnsFalse(t *testing.T) {
	guard, tmp := newTestGuard(t)
	target := filepath.Join(tmp, "g.py")
	writeFile(t, target, "x = 1\n")

	backupPath, err := guard.Backup(target, "b2")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(backupPath); err != nil {
		t.Fatal(err)
	}
	if guard.Rollback(target) {
		t.Error("Rollback should return false when the backup file is gone")
	}
}

func TestGetStatus(t *testing.T) {
	guard, tmp := newTestGuard(t)
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "a.py"), "x = 1\n")
	if err := guard.Protect(src); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(tmp, "b.py")
	writeFile(t, target, "y = 2\n")
	if _, err := guard.Backup(target, "b3"); err != nil {
		t.Fatal(err)
	}

	status := guard.GetStatus()
	if !status.ReadOnlySourceEnabled {
		t.Error("ReadOnlySourceEnabled should always be true")
	}
	if status.ProtectedPathsCount != 1 {
		t.Errorf("ProtectedPathsCount = %d, want 1", status.ProtectedPathsCount)
	}
	if status.ActiveBackups != 1 {
		t.Errorf("ActiveBackups = %d, want 1", status.ActiveBackups)
	}
	if status.SyntaxCheckAvailable {
		t.Error("SyntaxCheckAvailable should be false without a checker")
	}
}

func TestValidateGeneratedOutput(t *testing.T) {
	guard, tmp := newTestGuard(t)
	ctx := context.Background()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(tmp, "ok.py")
		writeFile(t, path, "def f():\n    return 1\n")
		report := guard.ValidateGeneratedOutput(ctx, path)
		if !report.Valid || !report.HasContent || !report.WithinSizeCap {
			t.Errorf("unexpected report: %+v", report)
		}
		if report.SyntaxChecked {
			t.Error("syntax should not be checked without a checker")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(tmp, "empty.py")
		writeFile(t, path, "")
		report := guard.ValidateGeneratedOutput(ctx, path)
		if report.Valid || report.HasContent {
			t.Errorf("empty file should be invalid: %+v", report)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		small := NewGuard(Options{MaxGeneratedBytes: 10})
		path := filepath.Join(tmp, "big.py")
		writeFile(t, path, strings.Repeat("x", 11))
		report := small.ValidateGeneratedOutput(ctx, path)
		if report.Valid || report.WithinSizeCap {
			t.Errorf("oversized file should be invalid: %+v", report)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		report := guard.ValidateGeneratedOutput(ctx, filepath.Join(tmp, "gone.py"))
		if report.Valid || report.Error == "" {
			t.Errorf("missing file should report an error: %+v", report)
		}
	})
}

func TestBackupRegistryPersistsAcrossGuards(t *testing.T) {
	tmp := t.TempDir()
	backupRoot := filepath.Join(tmp, "backups")
	target := filepath.Join(tmp, "src", "util.py")
	original := "def util():\n    return 1\n"
	writeFile(t, target, original)

	first := NewGuard(Options{BackupRoot: backupRoot})
	if _, err := first.Backup(target, "bk-1"); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	// A fresh guard over the same backup root stands in for a new process
	// resuming the session.
	second := NewGuard(Options{BackupRoot: backupRoot})
	if got := second.BackupCount(); got != 1 {
		t.Fatalf("restored backup count = %d, want 1", got)
	}

	writeFile(t, target, "overwritten\n")
	if !second.Rollback(target) {
		t.Fatal("rollback with a restored registry should succeed")
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != original {
		t.Errorf("restored content = %q, want %q", content, original)
	}
}

func TestBackupRegistryUnreadable(t *testing.T) {
	tmp := t.TempDir()
	backupRoot := filepath.Join(tmp, "backups")
	writeFile(t, filepath.Join(backupRoot, "backups.json"), "{not json")

	guard := NewGuard(Options{BackupRoot: backupRoot})
	if got := guard.BackupCount(); got != 0 {
		t.Errorf("backup count = %d, want 0 for an unreadable registry", got)
	}
}

func TestValidationReportErr(t *testing.T) {
	valid := ValidationReport{Valid: true}
	if err := valid.Err(); err != nil {
		t.Errorf("valid report should have nil Err, got %v", err)
	}

	invalid := ValidationReport{SyntaxError: "unexpected indent"}
	err := invalid.Err()
	if err == nil {
		t.Fatal("invalid report should return an error")
	}
	if !arkerrors.HasCode(err, arkerrors.ValidationFailed) {
		t.Errorf("code = %v, want VALIDATION_FAILED", arkerrors.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "unexpected indent") {
		t.Errorf("error should carry the syntax detail, got %v", err)
	}
}
