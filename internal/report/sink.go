// Package report persists the rendered map artifact and the crawl audit log.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pycrawl/internal/crawl"
	"pycrawl/internal/types"
)

const (
	// DefaultMapFileName is the well-known name of the map artifact.
	DefaultMapFileName = "MAP.txt"
	// DefaultLogFileName is the well-known name of the audit log.
	DefaultLogFileName = "Crawl.log"

	// EventKindStart marks the beginning of a crawl in the audit log.
	EventKindStart = "START"
	// EventKindDirectory records a visited directory.
	EventKindDirectory = "DIR"
	// EventKindFile records a visited source file.
	EventKindFile = "FILE"
	// EventKindSkip records an excluded entry and its reason.
	EventKindSkip = "SKIP"
	// EventKindParseError records a file listed without declarations.
	EventKindParseError = "PARSE-ERROR"
	// EventKindEnd marks the successful end of a crawl.
	EventKindEnd = "END"
	// EventKindFail marks a crawl aborted after it started.
	EventKindFail = "FAIL"

	logTimestampLayout = "2006-01-02 15:04:05"
	logRecordFormat    = "%s [%s] %s\n"
	mapTempFilePattern = ".MAP-*.tmp"

	startDetailFormat = "crawling %s"
	endDetailFormat   = "crawl complete: %d directories, %d files, %d declarations, %d skipped, %d failures"
	fileDetailFormat  = "%s (%d declarations)"
	skipDetailFormat  = "%s: %s"

	errorOpenLogFormat   = "opening audit log %s: %w"
	errorWriteLogFormat  = "writing audit log %s: %w"
	errorWriteMapFormat  = "writing map artifact %s: %w"
	errorRenameMapFormat = "replacing map artifact %s: %w"
)

// errLogNotOpen reports audit writes before Begin or after Close.
var errLogNotOpen = errors.New("audit log is not open")

// Sink writes the two crawl artifacts. Each crawl invocation truncates and
// regenerates both files, so they always reflect the most recent crawl.
// Sink implements crawl.Observer so the walker's audit records land in the
// log in traversal order. Write failures are kept and surfaced by Finish;
// they are never retried.
type Sink struct {
	MapPath string
	LogPath string

	logFile    *os.File
	writeError error
	clock      func() time.Time
}

// NewSink constructs a Sink writing the given map and log paths.
func NewSink(mapPath string, logPath string) *Sink {
	return &Sink{
		MapPath: mapPath,
		LogPath: logPath,
		clock:   time.Now,
	}
}

// Begin truncates the audit log and records the start of a crawl for rootPath.
// Callers must validate the root before Begin so a failed invocation does not
// clobber the artifacts of a previous successful run.
func (sink *Sink) Begin(rootPath string) error {
	logFile, openError := os.Create(sink.LogPath)
	if openError != nil {
		return fmt.Errorf(errorOpenLogFormat, sink.LogPath, openError)
	}
	sink.logFile = logFile
	sink.writeError = nil
	return sink.AppendLog(EventKindStart, fmt.Sprintf(startDetailFormat, rootPath))
}

// AppendLog writes one timestamped record to the audit log.
func (sink *Sink) AppendLog(eventKind string, detail string) error {
	if sink.logFile == nil {
		return errLogNotOpen
	}
	timestamp := sink.clock().Format(logTimestampLayout)
	if _, printError := fmt.Fprintf(sink.logFile, logRecordFormat, timestamp, eventKind, detail); printError != nil {
		return fmt.Errorf(errorWriteLogFormat, sink.LogPath, printError)
	}
	return nil
}

// WriteMap persists the rendered document atomically: the document is written
// to a temporary file in the target directory and renamed over the map path
// only once complete, so readers never observe a partially written artifact.
func (sink *Sink) WriteMap(document string) error {
	targetDirectory := filepath.Dir(sink.MapPath)
	tempFile, tempFileError := os.CreateTemp(targetDirectory, mapTempFilePattern)
	if tempFileError != nil {
		return fmt.Errorf(errorWriteMapFormat, sink.MapPath, tempFileError)
	}
	tempFilePath := tempFile.Name()
	if _, writeError := tempFile.WriteString(document); writeError != nil {
		tempFile.Close()
		os.Remove(tempFilePath)
		return fmt.Errorf(errorWriteMapFormat, sink.MapPath, writeError)
	}
	if closeError := tempFile.Close(); closeError != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf(errorWriteMapFormat, sink.MapPath, closeError)
	}
	if renameError := os.Rename(tempFilePath, sink.MapPath); renameError != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf(errorRenameMapFormat, sink.MapPath, renameError)
	}
	return nil
}

// Finish records the crawl totals, closes the audit log, and surfaces the
// first audit write failure observed during the walk, if any.
func (sink *Sink) Finish(totals crawl.Tally) error {
	appendError := sink.AppendLog(EventKindEnd, fmt.Sprintf(endDetailFormat,
		totals.Directories, totals.Files, totals.Declarations, totals.Skipped, totals.Failures))
	closeError := sink.closeLog()
	if sink.writeError != nil {
		return sink.writeError
	}
	if appendError != nil {
		return appendError
	}
	return closeError
}

// Fail records an aborted crawl and closes the audit log.
func (sink *Sink) Fail(crawlError error) error {
	appendError := sink.AppendLog(EventKindFail, crawlError.Error())
	closeError := sink.closeLog()
	if appendError != nil {
		return appendError
	}
	return closeError
}

func (sink *Sink) closeLog() error {
	if sink.logFile == nil {
		return nil
	}
	closeError := sink.logFile.Close()
	sink.logFile = nil
	if closeError != nil {
		return fmt.Errorf(errorWriteLogFormat, sink.LogPath, closeError)
	}
	return nil
}

// record appends an audit line from an observer callback, keeping the first
// write failure for Finish to surface.
func (sink *Sink) record(eventKind string, detail string) {
	if appendError := sink.AppendLog(eventKind, detail); appendError != nil && sink.writeError == nil {
		sink.writeError = appendError
	}
}

// VisitDirectory implements crawl.Observer.
func (sink *Sink) VisitDirectory(directoryPath string, depth int) {
	sink.record(EventKindDirectory, directoryPath)
}

// VisitFile implements crawl.Observer.
func (sink *Sink) VisitFile(fileNode *types.FileNode, depth int) {
	sink.record(EventKindFile, fmt.Sprintf(fileDetailFormat, fileNode.Path, len(fileNode.Declarations)))
}

// SkipEntry implements crawl.Observer.
func (sink *Sink) SkipEntry(entryPath string, reason string) {
	sink.record(EventKindSkip, fmt.Sprintf(skipDetailFormat, entryPath, reason))
}

// ExtractionFailure implements crawl.Observer.
func (sink *Sink) ExtractionFailure(entryPath string, failure error) {
	sink.record(EventKindParseError, failure.Error())
}

var _ crawl.Observer = (*Sink)(nil)
