package dialect

import (
	"bytes"

	"testlint/internal/source"
)

type contentSignal struct {
	Dialect Kind
	Score   int
	Reason  string
}

// needleSignal binds a literal content needle to the evidence it produces.
// Word needles additionally require a non-word byte before the match so
// MY_TEST( does not count as TEST(.
type needleSignal struct {
	Needle  string
	Word    bool
	Signals []contentSignal
}

var contentSignals = []needleSignal{
	// GoogleTest
	{"gtest/gtest.h", false, []contentSignal{{GoogleTest, 8, "gtest include"}}},
	{"TEST(", true, []contentSignal{{GoogleTest, 3, "TEST macro"}}},
	{"TEST_F(", true, []contentSignal{{GoogleTest, 4, "TEST_F macro"}}},
	{"EXPECT_", true, []contentSignal{{GoogleTest, 2, "EXPECT_ assertion"}}},
	{"ASSERT_", true, []contentSignal{{GoogleTest, 2, "ASSERT_ assertion"}}},
	{"::testing::", false, []contentSignal{{GoogleTest, 4, "testing namespace"}}},

	// Catch2
	{"catch2/catch", false, []contentSignal{{Catch2, 8, "catch2 include"}}},
	{"catch.hpp", false, []contentSignal{{Catch2, 6, "catch include"}}},
	{"TEST_CASE(", true, []contentSignal{{Catch2, 5, "TEST_CASE macro"}}},
	{"TEST_CASE_METHOD(", true, []contentSignal{{Catch2, 5, "TEST_CASE_METHOD macro"}}},
	{"SCENARIO(", true, []contentSignal{{Catch2, 4, "SCENARIO macro"}}},
	{"REQUIRE(", true, []contentSignal{{Catch2, 3, "REQUIRE assertion"}}},
	{"SECTION(", true, []contentSignal{{Catch2, 3, "SECTION block"}}},
	// CHECK is shared by several C++ frameworks; keep it low-signal.
	{"CHECK(", true, []contentSignal{{Catch2, 1, "CHECK assertion"}}},

	// Go testing
	{"*testing.T", false, []contentSignal{{GoTest, 8, "testing.T parameter"}}},
	{"*testing.M", false, []contentSignal{{GoTest, 6, "testing.M parameter"}}},
	{"func Test", true, []contentSignal{{GoTest, 5, "test function"}}},
	{"t.Run(", true, []contentSignal{{GoTest, 3, "subtest call"}}},
	{"stretchr/testify", false, []contentSignal{{GoTest, 6, "testify import"}}},
}

// Collect scans raw file content for framework markers and records one hint
// per occurrence. It never changes segmentation or analysis behavior.
func Collect(e *Evidence, f *source.File) {
	if e == nil || f == nil || len(f.Content) == 0 {
		return
	}
	for _, ns := range contentSignals {
		collectNeedle(e, f, ns)
	}
}

func collectNeedle(e *Evidence, f *source.File, ns needleSignal) {
	needle := []byte(ns.Needle)
	from := 0
	for {
		i := bytes.Index(f.Content[from:], needle)
		if i < 0 {
			return
		}
		off := from + i
		from = off + 1
		if ns.Word && off > 0 && isWordByte(f.Content[off-1]) {
			continue
		}
		sp := source.Span{
			File:  f.ID,
			Start: uint32(off),
			End:   uint32(off + len(needle)),
		}
		for _, sig := range ns.Signals {
			e.Add(Hint{
				Dialect: sig.Dialect,
				Score:   sig.Score,
				Reason:  sig.Reason,
				Span:    sp,
			})
		}
	}
}

// Detect classifies one file from its raw content.
func Detect(f *source.File) Classification {
	e := NewEvidence()
	Collect(e, f)
	return Classifier{}.Classify(e)
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
