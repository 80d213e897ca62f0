// Package crawl walks a directory tree and assembles its structural map.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pycrawl/internal/extract"
	"pycrawl/internal/types"
	"pycrawl/internal/utils"
)

const (
	pythonFileExtension  = ".py"
	pycacheDirectoryName = "__pycache__"
	initFileName         = "__init__.py"
	hiddenNamePrefix     = "."

	// SkipReasonCacheDirectory explains skipping a bytecode cache directory.
	SkipReasonCacheDirectory = "bytecode cache directory"
	// SkipReasonHiddenDirectory explains skipping a dot-prefixed directory.
	SkipReasonHiddenDirectory = "hidden directory"
	// SkipReasonInitFile explains skipping the package init file.
	SkipReasonInitFile = "package init file"
	// SkipReasonNotSource explains skipping a file without the .py extension.
	SkipReasonNotSource = "not a Python source file"
	// SkipReasonExcluded explains skipping an entry matching an exclude pattern.
	SkipReasonExcluded = "matches exclude pattern"
	// SkipReasonUnreadable explains skipping a directory that cannot be read.
	SkipReasonUnreadable = "directory not readable"

	// errorInvalidRootFormat wraps ErrInvalidRoot with the offending path.
	errorInvalidRootFormat = "%w: %s"
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadFileFormat is used when a source file cannot be read.
	errorReadFileFormat = "reading %s: %w"
)

// ErrInvalidRoot reports that the crawl root does not exist or is not a directory.
var ErrInvalidRoot = errors.New("crawl root is not a directory")

// Observer receives walk notifications in traversal order. Implementations
// must not retain the nodes they are handed beyond the callback.
type Observer interface {
	// VisitDirectory is called when a directory node is entered.
	VisitDirectory(directoryPath string, depth int)
	// VisitFile is called after a file node is fully extracted.
	VisitFile(fileNode *types.FileNode, depth int)
	// SkipEntry is called for every excluded directory or file.
	SkipEntry(entryPath string, reason string)
	// ExtractionFailure is called when a file is listed without declarations
	// because its content could not be parsed or read.
	ExtractionFailure(entryPath string, failure error)
}

// Walker builds directory nodes for a root path, applying exclusion rules and
// invoking the declaration extractor on every eligible file.
type Walker struct {
	extractor       *extract.Extractor
	excludePatterns []string
	observers       []Observer
}

// NewWalker constructs a Walker using the provided extractor, user exclude
// patterns, and observers.
func NewWalker(extractor *extract.Extractor, excludePatterns []string, observers ...Observer) *Walker {
	return &Walker{
		extractor:       extractor,
		excludePatterns: utils.DeduplicatePatterns(excludePatterns),
		observers:       observers,
	}
}

// ValidateRoot resolves rootPath and confirms it is an existing directory.
// It returns the cleaned absolute path, or ErrInvalidRoot.
func ValidateRoot(rootPath string) (string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	absoluteRootPath = filepath.Clean(absoluteRootPath)
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil || !rootInfo.IsDir() {
		return "", fmt.Errorf(errorInvalidRootFormat, ErrInvalidRoot, rootPath)
	}
	return absoluteRootPath, nil
}

// Walk crawls rootPath and returns its fully populated directory node.
// Per-file extraction failures never abort the walk; ctx cancellation is
// checked between entries and aborts it.
func (walker *Walker) Walk(ctx context.Context, rootPath string) (*types.DirectoryNode, error) {
	absoluteRootPath, rootError := ValidateRoot(rootPath)
	if rootError != nil {
		return nil, rootError
	}
	rootNode := &types.DirectoryNode{
		Name: filepath.Base(absoluteRootPath),
		Path: absoluteRootPath,
	}
	walker.notifyDirectory(rootNode.Path, 0)
	if walkError := walker.walkDirectory(ctx, rootNode, 0); walkError != nil {
		return nil, walkError
	}
	return rootNode, nil
}

// walkDirectory fills directoryNode with its subdirectory and file children.
// Subdirectories are processed before files so that the traversal order
// matches the rendered order.
func (walker *Walker) walkDirectory(ctx context.Context, directoryNode *types.DirectoryNode, depth int) error {
	directoryEntries, readDirectoryError := os.ReadDir(directoryNode.Path)
	if readDirectoryError != nil {
		walker.notifySkip(directoryNode.Path, SkipReasonUnreadable)
		return nil
	}

	var subdirectoryEntries []os.DirEntry
	var fileEntries []os.DirEntry
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			subdirectoryEntries = append(subdirectoryEntries, directoryEntry)
		} else {
			fileEntries = append(fileEntries, directoryEntry)
		}
	}

	for _, subdirectoryEntry := range subdirectoryEntries {
		if cancellationError := ctx.Err(); cancellationError != nil {
			return cancellationError
		}
		childPath := filepath.Join(directoryNode.Path, subdirectoryEntry.Name())
		if reason := walker.directorySkipReason(subdirectoryEntry.Name()); reason != "" {
			walker.notifySkip(childPath, reason)
			continue
		}
		childNode := &types.DirectoryNode{
			Name: subdirectoryEntry.Name(),
			Path: childPath,
		}
		walker.notifyDirectory(childNode.Path, depth+1)
		if walkError := walker.walkDirectory(ctx, childNode, depth+1); walkError != nil {
			return walkError
		}
		directoryNode.Subdirectories = append(directoryNode.Subdirectories, childNode)
	}

	for _, fileEntry := range fileEntries {
		if cancellationError := ctx.Err(); cancellationError != nil {
			return cancellationError
		}
		childPath := filepath.Join(directoryNode.Path, fileEntry.Name())
		if reason := walker.fileSkipReason(fileEntry.Name()); reason != "" {
			walker.notifySkip(childPath, reason)
			continue
		}
		fileNode := walker.extractFile(childPath, fileEntry.Name())
		walker.notifyFile(fileNode, depth+1)
		directoryNode.Files = append(directoryNode.Files, fileNode)
	}

	return nil
}

// extractFile builds the file node for an eligible source file. Read and
// parse failures leave the node in place with zero declarations.
func (walker *Walker) extractFile(filePath string, fileName string) *types.FileNode {
	fileNode := &types.FileNode{Name: fileName, Path: filePath}
	fileContent, readFileError := os.ReadFile(filePath)
	if readFileError != nil {
		fileNode.ParseFailed = true
		walker.notifyExtractionFailure(filePath, fmt.Errorf(errorReadFileFormat, filePath, readFileError))
		return fileNode
	}
	declarations, extractError := walker.extractor.Extract(filePath, fileContent)
	if extractError != nil {
		fileNode.ParseFailed = true
		walker.notifyExtractionFailure(filePath, extractError)
		return fileNode
	}
	fileNode.Declarations = declarations
	return fileNode
}

// directorySkipReason returns a non-empty reason when the directory name is excluded.
func (walker *Walker) directorySkipReason(directoryName string) string {
	if directoryName == pycacheDirectoryName {
		return SkipReasonCacheDirectory
	}
	if strings.HasPrefix(directoryName, hiddenNamePrefix) {
		return SkipReasonHiddenDirectory
	}
	if utils.MatchesAnyPattern(directoryName, walker.excludePatterns) {
		return SkipReasonExcluded
	}
	return ""
}

// fileSkipReason returns a non-empty reason when the file name is excluded.
func (walker *Walker) fileSkipReason(fileName string) string {
	if strings.EqualFold(fileName, initFileName) {
		return SkipReasonInitFile
	}
	if !strings.EqualFold(filepath.Ext(fileName), pythonFileExtension) {
		return SkipReasonNotSource
	}
	if utils.MatchesAnyPattern(fileName, walker.excludePatterns) {
		return SkipReasonExcluded
	}
	return ""
}

func (walker *Walker) notifyDirectory(directoryPath string, depth int) {
	for _, observer := range walker.observers {
		observer.VisitDirectory(directoryPath, depth)
	}
}

func (walker *Walker) notifyFile(fileNode *types.FileNode, depth int) {
	for _, observer := range walker.observers {
		observer.VisitFile(fileNode, depth)
	}
}

func (walker *Walker) notifySkip(entryPath string, reason string) {
	for _, observer := range walker.observers {
		observer.SkipEntry(entryPath, reason)
	}
}

func (walker *Walker) notifyExtractionFailure(entryPath string, failure error) {
	for _, observer := range walker.observers {
		observer.ExtractionFailure(entryPath, failure)
	}
}
