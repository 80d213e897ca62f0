package crawl

import (
	"context"

	"pycrawl/internal/extract"
	"pycrawl/internal/render"
	"pycrawl/internal/types"
)

// Options carries the configuration of a single crawl invocation. A fresh
// Options value replaces any process-wide state; the crawl holds no mutable
// state between invocations.
type Options struct {
	RootPath        string
	TitleContext    string
	ExcludePatterns []string
	Observers       []Observer
}

// Result carries the outcome of one crawl: the immutable tree and its
// rendered map document.
type Result struct {
	Tree     *types.DirectoryNode
	Document string
}

// Crawl walks options.RootPath and renders the map document. It is usable
// without any presentation layer attached; persisting the document is the
// report sink's job. Re-running on an unchanged tree yields an identical
// document.
func Crawl(ctx context.Context, options Options) (*Result, error) {
	walker := NewWalker(extract.NewExtractor(), options.ExcludePatterns, options.Observers...)
	tree, walkError := walker.Walk(ctx, options.RootPath)
	if walkError != nil {
		return nil, walkError
	}
	return &Result{
		Tree:     tree,
		Document: render.Render(tree, options.TitleContext),
	}, nil
}

// Tally accumulates visit counts across one walk. It implements Observer and
// may be combined with other observers.
type Tally struct {
	Directories  int
	Files        int
	Declarations int
	Failures     int
	Skipped      int
}

// VisitDirectory implements Observer.
func (tally *Tally) VisitDirectory(directoryPath string, depth int) {
	tally.Directories++
}

// VisitFile implements Observer.
func (tally *Tally) VisitFile(fileNode *types.FileNode, depth int) {
	tally.Files++
	tally.Declarations += len(fileNode.Declarations)
}

// SkipEntry implements Observer.
func (tally *Tally) SkipEntry(entryPath string, reason string) {
	tally.Skipped++
}

// ExtractionFailure implements Observer.
func (tally *Tally) ExtractionFailure(entryPath string, failure error) {
	tally.Failures++
}

var _ Observer = (*Tally)(nil)
