package utils_test

import (
	"path/filepath"
	"testing"

	"pycrawl/internal/utils"
)

func TestIsDirectory(t *testing.T) {
	directory := t.TempDir()
	if !utils.IsDirectory(directory) {
		t.Fatalf("expected %s to be a directory", directory)
	}
	if utils.IsDirectory(filepath.Join(directory, "missing")) {
		t.Fatalf("missing path must not be a directory")
	}
}

func TestMatchesAnyPattern(t *testing.T) {
	patterns := []string{"vendor", "*.bak", "["}
	if !utils.MatchesAnyPattern("vendor", patterns) {
		t.Fatalf("exact pattern must match")
	}
	if !utils.MatchesAnyPattern("old.bak", patterns) {
		t.Fatalf("glob pattern must match")
	}
	if utils.MatchesAnyPattern("src", patterns) {
		t.Fatalf("unrelated name must not match")
	}
}

func TestDeduplicatePatterns(t *testing.T) {
	deduplicated := utils.DeduplicatePatterns([]string{"a", "b", "a", "c", "b"})
	if len(deduplicated) != 3 {
		t.Fatalf("expected 3 patterns, got %v", deduplicated)
	}
	if deduplicated[0] != "a" || deduplicated[1] != "b" || deduplicated[2] != "c" {
		t.Fatalf("order must be preserved, got %v", deduplicated)
	}
}
