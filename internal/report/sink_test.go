package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pycrawl/internal/crawl"
	"pycrawl/internal/report"
	"pycrawl/internal/types"
)

func newTestSink(t *testing.T) (*report.Sink, string) {
	t.Helper()
	outputDirectory := t.TempDir()
	sink := report.NewSink(
		filepath.Join(outputDirectory, report.DefaultMapFileName),
		filepath.Join(outputDirectory, report.DefaultLogFileName),
	)
	return sink, outputDirectory
}

func TestWriteMapReplacesArtifactAtomically(t *testing.T) {
	sink, outputDirectory := newTestSink(t)

	if writeError := sink.WriteMap("# old\n"); writeError != nil {
		t.Fatalf("first write: %v", writeError)
	}
	if writeError := sink.WriteMap("# new\n"); writeError != nil {
		t.Fatalf("second write: %v", writeError)
	}

	content, readError := os.ReadFile(sink.MapPath)
	if readError != nil {
		t.Fatalf("read map: %v", readError)
	}
	if string(content) != "# new\n" {
		t.Fatalf("unexpected map content: %q", content)
	}

	leftovers, globError := filepath.Glob(filepath.Join(outputDirectory, ".MAP-*.tmp"))
	if globError != nil {
		t.Fatalf("glob: %v", globError)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestAuditLogRecordsVisitsInOrder(t *testing.T) {
	sink, _ := newTestSink(t)

	if beginError := sink.Begin("/src/proj"); beginError != nil {
		t.Fatalf("begin: %v", beginError)
	}
	sink.VisitDirectory("/src/proj", 0)
	sink.VisitFile(&types.FileNode{
		Name: "a.py",
		Path: "/src/proj/a.py",
		Declarations: []types.DeclarationEntry{
			{Kind: types.DeclarationKindFunction, Name: "f"},
		},
	}, 1)
	sink.SkipEntry("/src/proj/.git", "hidden directory")
	sink.ExtractionFailure("/src/proj/broken.py", os.ErrInvalid)
	if finishError := sink.Finish(crawl.Tally{Directories: 1, Files: 2, Declarations: 1, Skipped: 1, Failures: 1}); finishError != nil {
		t.Fatalf("finish: %v", finishError)
	}

	content, readError := os.ReadFile(sink.LogPath)
	if readError != nil {
		t.Fatalf("read log: %v", readError)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 records, got %d:\n%s", len(lines), content)
	}
	expectedKinds := []string{
		report.EventKindStart,
		report.EventKindDirectory,
		report.EventKindFile,
		report.EventKindSkip,
		report.EventKindParseError,
		report.EventKindEnd,
	}
	for index, expectedKind := range expectedKinds {
		if !strings.Contains(lines[index], "["+expectedKind+"]") {
			t.Fatalf("record %d missing kind %s: %q", index, expectedKind, lines[index])
		}
	}
	if !strings.Contains(lines[2], "a.py (1 declarations)") {
		t.Fatalf("file record missing declaration count: %q", lines[2])
	}
	if !strings.Contains(lines[5], "1 directories, 2 files, 1 declarations, 1 skipped, 1 failures") {
		t.Fatalf("end record missing totals: %q", lines[5])
	}
}

func TestBeginTruncatesPreviousLog(t *testing.T) {
	sink, _ := newTestSink(t)

	if beginError := sink.Begin("/first"); beginError != nil {
		t.Fatalf("first begin: %v", beginError)
	}
	sink.VisitDirectory("/first", 0)
	if finishError := sink.Finish(crawl.Tally{Directories: 1}); finishError != nil {
		t.Fatalf("first finish: %v", finishError)
	}

	if beginError := sink.Begin("/second"); beginError != nil {
		t.Fatalf("second begin: %v", beginError)
	}
	if finishError := sink.Finish(crawl.Tally{}); finishError != nil {
		t.Fatalf("second finish: %v", finishError)
	}

	content, readError := os.ReadFile(sink.LogPath)
	if readError != nil {
		t.Fatalf("read log: %v", readError)
	}
	if strings.Contains(string(content), "/first") {
		t.Fatalf("log still contains records of the previous run:\n%s", content)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected start and end records only, got %d:\n%s", len(lines), content)
	}
}

func TestAppendLogBeforeBeginFails(t *testing.T) {
	sink, _ := newTestSink(t)

	if appendError := sink.AppendLog(report.EventKindDirectory, "/never"); appendError == nil {
		t.Fatalf("expected error appending to an unopened log")
	}
}
