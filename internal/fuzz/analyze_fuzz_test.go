package fuzztests

import (
	"context"
	"testing"
	"time"

	"testlint/internal/driver"
	"testlint/internal/source"
)

// analyzeTimeout is the maximum time allowed for analyzing a single input.
// If analysis takes longer, it indicates a potential infinite loop.
const analyzeTimeout = 5 * time.Second

// FuzzAnalyzePipeline runs arbitrary bytes through the whole per-file
// pipeline: dialect detection, segmentation, extraction, feature counting
// and rule evaluation. Any input must produce a result without panicking.
func FuzzAnalyzePipeline(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz_test.cpp", input)

		result := driver.AnalyzeFile(fs, fileID, nil)
		if result == nil {
			t.Fatal("analysis of a loaded file returned nil")
		}
	})
}

// FuzzAnalyzeNoHang tests that the pipeline doesn't hang on any input.
// It uses a timeout to detect infinite loops that could be caused by
// malformed input or edge cases in brace and string recovery.
func FuzzAnalyzeNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// Add specific edge cases that stress recovery paths
	f.Add([]byte("TEST(A, B) { EXPECT_EQ(\"unterminated, 1); }"))   // string swallows the body
	f.Add([]byte("TEST(A, B) { { { { { } } }"))                     // unbalanced nesting
	f.Add([]byte("class T : public testing::Test { class U {} };")) // nested class bodies
	f.Add([]byte("TEST(A"))                                         // header cut short
	f.Add([]byte("func TestX(t *testing.T) { s := `raw\nstring` }")) // raw string with newline
	f.Add([]byte("TEST(A, B) {}\r\nTEST(C, D) {}\r\n"))             // CRLF line endings
	f.Add([]byte("/* comment never ends TEST(A, B) {"))             // unterminated block comment

	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		// Create a context with timeout to detect hangs
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()

		// Run the pipeline in a goroutine
		done := make(chan struct{})
		go func() {
			defer close(done)

			fs := source.NewFileSet()
			fileID := fs.AddVirtual("fuzz_test.cpp", input)
			_ = driver.AnalyzeFile(fs, fileID, nil)
		}()

		// Wait for completion or timeout
		select {
		case <-done:
			// Analysis completed
		case <-ctx.Done():
			t.Fatalf("analysis hang detected: run took longer than %v\ninput (%d bytes): %q",
				analyzeTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen], []byte("...")...)
}
