package dialect_test

import (
	"testing"

	"testlint/internal/dialect"
	"testlint/internal/source"
)

func classify(t *testing.T, path, content string) dialect.Classification {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))
	return dialect.Detect(fs.Get(id))
}

func TestDetectByContent(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		content string
		want    dialect.Kind
	}{
		{
			name: "googletest include and macros",
			path: "calc_test.cpp",
			content: `#include <gtest/gtest.h>

TEST(CalculatorTest, Addition) {
    EXPECT_EQ(4, add(2, 2));
}
`,
			want: dialect.GoogleTest,
		},
		{
			name: "googletest fixture without include",
			path: "fx_test.cpp",
			content: `class CalcFixture : public ::testing::Test {};
TEST_F(CalcFixture, Works) { ASSERT_TRUE(ok()); }
`,
			want: dialect.GoogleTest,
		},
		{
			name: "catch2 string named cases",
			path: "vec_test.cpp",
			content: `#include <catch2/catch_test_macros.hpp>

TEST_CASE("vectors can be sized") {
    REQUIRE(v.size() == 5);
    SECTION("resizing bigger") {
        REQUIRE(v.size() == 10);
    }
}
`,
			want: dialect.Catch2,
		},
		{
			name: "go test functions",
			path: "calc_test.go",
			content: `package calc

func TestAddition(t *testing.T) {
    t.Run("small", func(t *testing.T) {})
}
`,
			want: dialect.GoTest,
		},
		{
			name:    "no signals at all",
			path:    "notes.txt",
			content: "just some prose, nothing to score",
			want:    dialect.Unknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(t, tc.path, tc.content)
			if got.Kind != tc.want {
				t.Fatalf("Kind = %v (score %d/%d), want %v", got.Kind, got.Score, got.TotalScore, tc.want)
			}
			if tc.want != dialect.Unknown {
				if got.Score <= 0 || got.ObservedSignals == 0 {
					t.Fatalf("classification carries no evidence: %+v", got)
				}
				if got.Confidence <= 0 || got.Confidence > 1 {
					t.Fatalf("confidence out of range: %v", got.Confidence)
				}
			}
		})
	}
}

func TestDetectWordBoundary(t *testing.T) {
	// MY_TEST( must not score as the TEST( macro.
	got := classify(t, "x_test.cpp", "MY_TEST(Suite, Name) { }\n")
	if got.Kind != dialect.Unknown {
		t.Fatalf("Kind = %v, want unknown for a glued macro name", got.Kind)
	}
}

func TestDetectRunnerUp(t *testing.T) {
	content := `#include <gtest/gtest.h>
TEST(A, B) { EXPECT_EQ(1, 1); }
TEST_CASE("also here") { REQUIRE(true); }
`
	got := classify(t, "mixed_test.cpp", content)
	if got.Kind != dialect.GoogleTest {
		t.Fatalf("Kind = %v, want googletest to dominate", got.Kind)
	}
	if got.RunnerUp != dialect.Catch2 || got.RunnerUpScore <= 0 {
		t.Fatalf("runner-up = %v (%d), want catch2 with evidence", got.RunnerUp, got.RunnerUpScore)
	}
	if got.Score+got.RunnerUpScore > got.TotalScore {
		t.Fatalf("scores exceed total: %+v", got)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want dialect.Kind
		ok   bool
	}{
		{"auto", dialect.Unknown, true},
		{"", dialect.Unknown, true},
		{"googletest", dialect.GoogleTest, true},
		{"catch2", dialect.Catch2, true},
		{"gotest", dialect.GoTest, true},
		{"generic", dialect.Generic, true},
		{"pytest", 0, false},
	}
	for _, tc := range cases {
		got, err := dialect.ParseKind(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseKind(%q) error = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, k := range dialect.Kinds() {
		back, err := dialect.ParseKind(k.String())
		if err != nil || back != k {
			t.Errorf("round trip %v -> %q -> %v, err %v", k, k.String(), back, err)
		}
	}
}

func TestPresetShape(t *testing.T) {
	for _, k := range dialect.Kinds() {
		p := dialect.ForKind(k)
		if p.Kind != k {
			t.Errorf("ForKind(%v).Kind = %v", k, p.Kind)
		}
		if len(p.Forms) == 0 {
			t.Errorf("%v preset has no declaration forms", k)
		}
		if len(p.Patterns.Assertions) == 0 {
			t.Errorf("%v preset has no assertion patterns", k)
		}
		if len(p.Extensions) == 0 {
			t.Errorf("%v preset matches no files", k)
		}
	}
	if got := dialect.ForKind(dialect.Unknown); got.Kind != dialect.Generic {
		t.Errorf("ForKind(Unknown) = %v, want the generic fallback", got.Kind)
	}
}

func TestPresetMatchesPath(t *testing.T) {
	gtest := dialect.ForKind(dialect.GoogleTest)
	gotest := dialect.ForKind(dialect.GoTest)

	cases := []struct {
		preset *dialect.Preset
		path   string
		want   bool
	}{
		{&gtest, "tests/calc_test.cpp", true},
		{&gtest, "tests/Calc_Test.CC", true},
		{&gtest, "calc.go", false},
		{&gotest, "pkg/calc_test.go", true},
		{&gotest, "pkg/calc.go", false},
		{&gotest, "pkg/calc_test.cpp", false},
	}
	for _, tc := range cases {
		if got := tc.preset.MatchesPath(tc.path); got != tc.want {
			t.Errorf("%v MatchesPath(%q) = %v, want %v", tc.preset.Kind, tc.path, got, tc.want)
		}
	}
}
