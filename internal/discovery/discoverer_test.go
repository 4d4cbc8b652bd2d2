package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	arkerrors "arktools/internal/errors"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseTier(t *testing.T) {
	for _, valid := range []string{"quick", "comprehensive", "deep"} {
		if _, err := ParseTier(valid); err != nil {
			t.Errorf("ParseTier(%q) = %v, want nil", valid, err)
		}
	}
	_, err := ParseTier("exhaustive")
	if !arkerrors.HasCode(err, arkerrors.UnknownTier) {
		t.Errorf("ParseTier(exhaustive) = %v, want UNKNOWN_TIER", err)
	}
}

func TestTierExtensionsAndCeilings(t *testing.T) {
	tests := []struct {
		tier     Tier
		extCount int
		maxFiles int
	}{
		{TierQuick, 1, 50},
		{TierComprehensive, 5, 500},
		{TierDeep, 9, 0},
	}
	for _, tt := range tests {
		if got := len(tt.tier.Extensions()); got != tt.extCount {
			t.Errorf("%s: %d extensions, want %d", tt.tier, got, tt.extCount)
		}
		if got := tt.tier.MaxFiles(); got != tt.maxFiles {
			t.Errorf("%s: MaxFiles = %d, want %d", tt.tier, got, tt.maxFiles)
		}
	}
}

func TestDiscoverFiltersByTierExtensions(t *testing.T) {
	tmp := t.TempDir()
	writeFiles(t, tmp, "a.py", "b.js", "c.go", "d.cpp", "e.txt")

	d := NewDiscoverer(nil)
	ctx := context.Background()

	quick, err := d.Discover(ctx, tmp, TierQuick)
	if err != nil {
		t.Fatal(err)
	}
	if len(quick) != 1 || quick[0].Extension != ".py" {
		t.Errorf("quick tier found %v, want just a.py", quick)
	}

	comprehensive, err := d.Discover(ctx, tmp, TierComprehensive)
	if err != nil {
		t.Fatal(err)
	}
	if len(comprehensive) != 3 {
		t.Errorf("comprehensive tier found %d files, want 3", len(comprehensive))
	}

	deep, err := d.Discover(ctx, tmp, TierDeep)
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 4 {
		t.Errorf("deep tier found %d files, want 4", len(deep))
	}
}

func TestDiscoverSkipsHiddenAndDependencyDirs(t *testing.T) {
	tmp := t.TempDir()
	writeFiles(t, tmp,
		"keep.py",
		".git/skip.py",
		".venv/skip.py",
		"node_modules/skip.py",
		"vendor/skip.py",
		"__pycache__/skip.py",
		"nested/keep2.py",
	)

	d := NewDiscoverer(nil)
	files, err := d.Discover(context.Background(), tmp, TierQuick)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Base(f.Path) == "skip.py" {
			t.Errorf("should not have discovered %s", f.Path)
		}
	}
}

func TestDiscoverCeilingAcrossResult(t *testing.T) {
	tmp := t.TempDir()
	names := make([]string, 60)
	for i := range names {
		names[i] = fmt.Sprintf("f%02d.py", i)
	}
	writeFiles(t, tmp, names...)

	d := NewDiscoverer(nil)
	files, err := d.Discover(context.Background(), tmp, TierQuick)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 50 {
		t.Errorf("quick tier found %d files, want ceiling of 50", len(files))
	}
}

func TestDiscoverSortedByRelativePath(t *testing.T) {
	tmp := t.TempDir()
	writeFiles(t, tmp, "z.py", "a.py", "m/b.py")

	d := NewDiscoverer(nil)
	files, err := d.Discover(context.Background(), tmp, TierQuick)
	if err != nil {
		t.Fatal(err)
	}
	if !sort.SliceIsSorted(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	}) {
		t.Errorf("result not sorted: %v", files)
	}
}

func TestDiscoverCancelled(t *testing.T) {
	tmp := t.TempDir()
	writeFiles(t, tmp, "a.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDiscoverer(nil)
	if _, err := d.Discover(ctx, tmp, TierQuick); err == nil {
		t.Error("Discover should propagate context cancellation")
	}
}
