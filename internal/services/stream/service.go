package stream

import (
	"context"
	"time"

	"pycrawl/internal/crawl"
	"pycrawl/internal/types"
)

type emitter struct {
	ctx context.Context
	out chan<- Event
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out}
}

// send delivers event unless the context is cancelled. Events dropped on
// cancellation are harmless: the walker aborts on the same context.
func (eventEmitter *emitter) send(event Event) {
	if eventEmitter.out == nil {
		return
	}
	event.Version = SchemaVersion
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-eventEmitter.ctx.Done():
	case eventEmitter.out <- event:
	}
}

// channelObserver adapts crawl.Observer callbacks onto the event channel.
type channelObserver struct {
	eventEmitter *emitter
}

func (observer *channelObserver) VisitDirectory(directoryPath string, depth int) {
	observer.eventEmitter.send(Event{Kind: EventKindDirectory, Path: directoryPath, Depth: depth})
}

func (observer *channelObserver) VisitFile(fileNode *types.FileNode, depth int) {
	observer.eventEmitter.send(Event{
		Kind:         EventKindFile,
		Path:         fileNode.Path,
		Depth:        depth,
		Declarations: fileNode.Declarations,
	})
}

func (observer *channelObserver) SkipEntry(entryPath string, reason string) {
	observer.eventEmitter.send(Event{Kind: EventKindSkip, Path: entryPath, Reason: reason})
}

func (observer *channelObserver) ExtractionFailure(entryPath string, failure error) {
	observer.eventEmitter.send(Event{Kind: EventKindParseError, Path: entryPath, Failure: failure.Error()})
}

var _ crawl.Observer = (*channelObserver)(nil)

// StreamCrawl runs one crawl for options, mirroring every visit onto out in
// traversal order. The Done event carries the crawl totals. The caller owns
// the channel; StreamCrawl does not close it.
func StreamCrawl(ctx context.Context, options crawl.Options, out chan<- Event) (*crawl.Result, error) {
	eventEmitter := newEmitter(ctx, out)
	eventEmitter.send(Event{Kind: EventKindStart, Path: options.RootPath})

	totals := &crawl.Tally{}
	options.Observers = append(options.Observers, totals, &channelObserver{eventEmitter: eventEmitter})

	result, crawlError := crawl.Crawl(ctx, options)
	if crawlError != nil {
		return nil, crawlError
	}

	eventEmitter.send(Event{
		Kind: EventKindDone,
		Path: options.RootPath,
		Totals: &TotalsEvent{
			Directories:  totals.Directories,
			Files:        totals.Files,
			Declarations: totals.Declarations,
			Skipped:      totals.Skipped,
			Failures:     totals.Failures,
		},
	})
	return result, nil
}
