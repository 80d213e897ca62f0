package utils

import (
	"os"
	"path/filepath"
)

// IsDirectory returns true if the given path exists and is a directory.
func IsDirectory(path string) bool {
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

// MatchesAnyPattern reports whether entryName matches one of the glob
// patterns. Malformed patterns never match.
func MatchesAnyPattern(entryName string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, matchError := filepath.Match(pattern, entryName)
		if matchError == nil && matched {
			return true
		}
	}
	return false
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
func DeduplicatePatterns(patterns []string) []string {
	patternSet := make(map[string]struct{})
	var result []string
	for _, pattern := range patterns {
		if _, exists := patternSet[pattern]; !exists {
			patternSet[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}
