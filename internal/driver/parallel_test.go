package driver

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"testlint/internal/config"
	"testlint/internal/diag"
	"testlint/internal/dialect"
	"testlint/internal/rules"
	"testlint/internal/trace"
)

const cleanSample = `#include <gtest/gtest.h>

TEST(MathTest, Doubles) {
  EXPECT_EQ(Double(2), 4);
}

TEST(MathTest, Halves) {
  EXPECT_EQ(Half(4), 2);
}
`

const sleepySample = `#include <gtest/gtest.h>

TEST(SlowTest, WaitsForWorker) {
  usleep(1000);
  EXPECT_TRUE(done);
}
`

func writeTestTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"math_test.cpp": cleanSample,
		"slow_test.cpp": sleepySample,
		filepath.Join("nested", "more_test.cpp"): cleanSample,
		"ignored.txt": "not a test source",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestAnalyzeDir_OrderAndTotals(t *testing.T) {
	dir := writeTestTree(t)

	run, err := AnalyzeDir(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}
	if len(run.Files) != 3 {
		t.Fatalf("Files = %d, want 3 (ignored.txt must be skipped)", len(run.Files))
	}

	// Пути отсортированы, результаты следуют их порядку.
	wantOrder := []string{
		filepath.Join(dir, "math_test.cpp"),
		filepath.Join(dir, "nested", "more_test.cpp"),
		filepath.Join(dir, "slow_test.cpp"),
	}
	for i, want := range wantOrder {
		if run.Files[i].Path != want {
			t.Errorf("Files[%d].Path = %q, want %q", i, run.Files[i].Path, want)
		}
	}

	if run.Totals.Files != 3 || run.Totals.Errors != 1 || run.Totals.Warnings != 0 {
		t.Errorf("Totals = %+v, want 3 files, 1 error", run.Totals)
	}
	if !run.Failed(rules.FailOnError) {
		t.Error("run with a time-based-wait error must fail")
	}
	if run.Failed(rules.FailNever) {
		t.Error("FailNever must never fail")
	}
}

func TestAnalyzeDir_ParallelMatchesSequential(t *testing.T) {
	dir := writeTestTree(t)

	sequential := config.Default()
	sequential.Jobs = 1
	parallel := config.Default()
	parallel.Jobs = 8

	runSeq, err := AnalyzeDir(context.Background(), dir, &Options{Config: sequential})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	runPar, err := AnalyzeDir(context.Background(), dir, &Options{Config: parallel})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if len(runSeq.Files) != len(runPar.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(runSeq.Files), len(runPar.Files))
	}
	for i := range runSeq.Files {
		if !reflect.DeepEqual(runSeq.Files[i].Summary, runPar.Files[i].Summary) {
			t.Errorf("summaries for %q differ between jobs=1 and jobs=8", runSeq.Files[i].Path)
		}
	}
	if runSeq.Totals != runPar.Totals {
		t.Errorf("totals differ: %+v vs %+v", runSeq.Totals, runPar.Totals)
	}
}

func TestAnalyzePaths_MissingFileDegrades(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "ok_test.cpp")
	if err := os.WriteFile(real, []byte(cleanSample), 0o600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone_test.cpp")

	run, err := AnalyzePaths(context.Background(), []string{missing, real}, nil)
	if err != nil {
		t.Fatalf("a missing file must degrade, not abort: %v", err)
	}
	if len(run.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(run.Files))
	}

	// Отсортированный порядок: gone перед ok.
	broken := run.Files[0]
	if broken.Path != missing {
		t.Fatalf("Files[0].Path = %q", broken.Path)
	}
	if len(broken.Summary.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", broken.Summary.Diagnostics)
	}
	d := broken.Summary.Diagnostics[0]
	if d.Code.ID() != "file-unreadable" || d.Severity != diag.SevError {
		t.Errorf("diag = %s %v", d.Code.ID(), d.Severity)
	}
	// Спан должен разрешаться: для битого файла заводится пустая виртуальная запись.
	if int(d.Primary.File) >= run.FileSet.Len() {
		t.Fatalf("span file %d is outside the file set", d.Primary.File)
	}
	if got := run.FileSet.Get(d.Primary.File).Path; got != missing {
		t.Errorf("span resolves to %q, want %q", got, missing)
	}
	if run.Totals.Errors != 1 {
		t.Errorf("Totals.Errors = %d", run.Totals.Errors)
	}
}

func TestAnalyzeDir_EmptyDir(t *testing.T) {
	run, err := AnalyzeDir(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}
	if len(run.Files) != 0 || run.Totals.Files != 0 {
		t.Fatalf("expected an empty run, got %+v", run.Totals)
	}
	if run.Failed(rules.FailOnError) {
		t.Error("an empty run must not fail")
	}
}

func TestAnalyzeDir_TraceSpans(t *testing.T) {
	dir := writeTestTree(t)

	ring := trace.NewRingTracer(256, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := AnalyzeDir(ctx, dir, nil); err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}

	var batchID uint64
	fileSpans := 0
	phases := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		switch ev.Scope {
		case trace.ScopeDriver:
			batchID = ev.SpanID
		case trace.ScopeFile:
			fileSpans++
			if ev.ParentID != batchID {
				t.Errorf("file span parent = %d, want batch %d", ev.ParentID, batchID)
			}
		case trace.ScopePhase:
			phases[ev.Name] = true
		}
	}

	if batchID == 0 {
		t.Fatal("driver-scope analyze span missing")
	}
	if fileSpans != 3 {
		t.Errorf("file spans = %d, want 3", fileSpans)
	}
	for _, name := range []string{"detect", "scan", "extract", "analyze", "report"} {
		if !phases[name] {
			t.Errorf("phase span %q missing", name)
		}
	}
}

func TestAnalyzeDir_TracePhaseLevel(t *testing.T) {
	dir := writeTestTree(t)

	// На уровне phase видны границы запуска и файлов, но не фаз конвейера.
	ring := trace.NewRingTracer(256, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := AnalyzeDir(ctx, dir, nil); err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}

	fileSpans := 0
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopePhase || ev.Scope == trace.ScopeRule {
			t.Fatalf("unexpected %v event at phase level: %+v", ev.Scope, ev)
		}
		if ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopeFile {
			fileSpans++
		}
	}
	if fileSpans != 3 {
		t.Errorf("file spans = %d, want 3", fileSpans)
	}
}

func TestTestExtensions(t *testing.T) {
	auto := TestExtensions(config.Default())
	wantAll := map[string]bool{".cpp": true, "_test.go": true, ".c": true}
	for ext := range wantAll {
		found := false
		for _, got := range auto {
			if got == ext {
				found = true
			}
		}
		if !found {
			t.Errorf("auto extensions missing %q: %v", ext, auto)
		}
	}

	pinned := config.Default()
	pinned.Dialect = dialect.GoTest
	if got := TestExtensions(pinned); !reflect.DeepEqual(got, []string{"_test.go"}) {
		t.Errorf("gotest extensions = %v", got)
	}
}
