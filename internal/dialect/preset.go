package dialect

import (
	"strings"

	"testlint/internal/feature"
	"testlint/internal/segment"
)

// Preset bundles everything the pipeline needs to analyze one dialect:
// declaration forms for the segmenter, method forms for fixture bodies,
// comment/string syntax and the default call-pattern lists.
type Preset struct {
	Kind   Kind
	Syntax segment.Syntax
	// Forms are matched at file scope.
	Forms []segment.Form
	// MethodForms are matched inside fixture class bodies.
	MethodForms []segment.Form
	Patterns    feature.Patterns
	// Extensions are the file suffixes discovery considers, lowercase.
	Extensions []string
}

// ForKind returns the preset for a dialect. Unknown maps to the generic
// preset so auto-detection always has a fallback.
func ForKind(k Kind) Preset {
	switch k {
	case GoogleTest:
		return googletestPreset()
	case Catch2:
		return catch2Preset()
	case GoTest:
		return gotestPreset()
	default:
		return genericPreset()
	}
}

// MatchesPath reports whether the preset considers a path a test source
// candidate.
func (p *Preset) MatchesPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range p.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func googletestPreset() Preset {
	return Preset{
		Kind:   GoogleTest,
		Syntax: segment.CSyntax(),
		Forms: []segment.Form{
			{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST"},
			{Kind: segment.FormFixtureTest, Shape: segment.ShapeCall, Keyword: "TEST_F"},
			{Kind: segment.FormFixtureTest, Shape: segment.ShapeCall, Keyword: "TEST_P"},
			{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "class", Marker: "testing::Test"},
			{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "struct", Marker: "testing::Test"},
		},
		MethodForms: []segment.Form{
			{Kind: segment.FormSetup, Shape: segment.ShapeCall, Keyword: "SetUp"},
			{Kind: segment.FormTeardown, Shape: segment.ShapeCall, Keyword: "TearDown"},
		},
		Patterns: feature.Patterns{
			Assertions:   gtestAssertions(),
			TimeWaits:    cppWaits(),
			IOCalls:      cppIO(),
			Conditionals: []string{"if", "switch", "case"},
			Ternary:      true,
		},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".h"},
	}
}

func catch2Preset() Preset {
	return Preset{
		Kind:   Catch2,
		Syntax: segment.CSyntax(),
		Forms: []segment.Form{
			{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST_CASE", NameFromString: true, SuiteFromFile: true},
			{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "SCENARIO", NameFromString: true, SuiteFromFile: true},
			{Kind: segment.FormFixtureTest, Shape: segment.ShapeCall, Keyword: "TEST_CASE_METHOD", NameFromString: true, SuiteFromFile: true},
			// Catch2 fixtures are plain structs; any class body may serve.
			{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "struct"},
			{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "class"},
		},
		Patterns: feature.Patterns{
			Assertions: []string{
				"REQUIRE", "REQUIRE_FALSE", "REQUIRE_THROWS", "REQUIRE_THROWS_AS",
				"REQUIRE_NOTHROW", "REQUIRE_THAT",
				"CHECK", "CHECK_FALSE", "CHECK_THROWS", "CHECK_NOTHROW", "CHECK_THAT",
			},
			TimeWaits:    cppWaits(),
			IOCalls:      cppIO(),
			Conditionals: []string{"if", "switch", "case"},
			Ternary:      true,
		},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".h"},
	}
}

func gotestPreset() Preset {
	return Preset{
		Kind:   GoTest,
		Syntax: segment.GoSyntax(),
		Forms: []segment.Form{
			{Kind: segment.FormTest, Shape: segment.ShapeFunc, Keyword: "func", NamePrefix: "Test", Marker: "*testing.T"},
			// TestMain is package setup, not a test case.
			{Kind: segment.FormSetup, Shape: segment.ShapeFunc, Keyword: "func", NamePrefix: "Test", Marker: "*testing.M"},
		},
		Patterns: feature.Patterns{
			Assertions: goAssertions(),
			TimeWaits:  []string{"time.Sleep", "time.After"},
			IOCalls: []string{
				"os.Open", "os.Create", "os.ReadFile", "os.WriteFile",
				"ioutil.ReadFile", "ioutil.WriteFile",
				"http.Get", "http.Post", "http.NewRequest", "net.Dial",
			},
			Conditionals: []string{"if", "switch", "case"},
		},
		Extensions: []string{"_test.go"},
	}
}

func genericPreset() Preset {
	return Preset{
		Kind:   Generic,
		Syntax: segment.CSyntax(),
		Forms: []segment.Form{
			{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST"},
			{Kind: segment.FormFixtureTest, Shape: segment.ShapeCall, Keyword: "TEST_F"},
			{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST_CASE", NameFromString: true, SuiteFromFile: true},
			{Kind: segment.FormSetup, Shape: segment.ShapeCall, Keyword: "SETUP"},
			{Kind: segment.FormTeardown, Shape: segment.ShapeCall, Keyword: "TEARDOWN"},
			{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "class", Marker: "testing::Test"},
		},
		MethodForms: []segment.Form{
			{Kind: segment.FormSetup, Shape: segment.ShapeCall, Keyword: "SetUp"},
			{Kind: segment.FormTeardown, Shape: segment.ShapeCall, Keyword: "TearDown"},
		},
		Patterns: feature.Patterns{
			Assertions: []string{
				"assert", "ASSERT", "EXPECT", "CHECK", "REQUIRE", "VERIFY",
			},
			TimeWaits:    cppWaits(),
			IOCalls:      cppIO(),
			Conditionals: []string{"if", "switch", "case"},
			Ternary:      true,
		},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".h", ".c"},
	}
}

func gtestAssertions() []string {
	suffixes := []string{
		"TRUE", "FALSE", "EQ", "NE", "LT", "LE", "GT", "GE",
		"STREQ", "STRNE", "THROW", "NO_THROW", "NEAR", "FLOAT_EQ", "DOUBLE_EQ",
	}
	out := make([]string, 0, 2*len(suffixes))
	for _, sfx := range suffixes {
		out = append(out, "EXPECT_"+sfx, "ASSERT_"+sfx)
	}
	return out
}

func goAssertions() []string {
	out := []string{
		"t.Error", "t.Errorf", "t.Fatal", "t.Fatalf", "t.Fail", "t.FailNow",
	}
	for _, pkg := range []string{"assert", "require"} {
		for _, fn := range []string{"Equal", "NotEqual", "True", "False", "Nil", "NotNil", "NoError", "Error", "Len", "Contains"} {
			out = append(out, pkg+"."+fn)
		}
	}
	return out
}

func cppWaits() []string {
	return []string{"sleep_for", "sleep_until", "sleep", "usleep", "nanosleep", "Sleep"}
}

func cppIO() []string {
	return []string{
		"ifstream", "ofstream", "fstream", "fopen", "freopen", "open",
		"socket", "connect", "bind", "send", "recv", "system",
	}
}
