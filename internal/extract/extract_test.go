package extract_test

import (
	"strings"
	"testing"

	"testlint/internal/diag"
	"testlint/internal/extract"
	"testlint/internal/segment"
	"testlint/internal/source"
)

func gtestForms() []segment.Form {
	return []segment.Form{
		{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST"},
		{Kind: segment.FormFixtureTest, Shape: segment.ShapeCall, Keyword: "TEST_F"},
		{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "class", Marker: "testing::Test"},
		{Kind: segment.FormFixtureClass, Shape: segment.ShapeClass, Keyword: "struct", Marker: "testing::Test"},
	}
}

func gtestMethodForms() []segment.Form {
	return []segment.Form{
		{Kind: segment.FormSetup, Shape: segment.ShapeCall, Keyword: "SetUp"},
		{Kind: segment.FormTeardown, Shape: segment.ShapeCall, Keyword: "TearDown"},
	}
}

// extractFrom прогоняет скан и извлечение для одного виртуального файла
func extractFrom(t *testing.T, name, content string, forms []segment.Form) (extract.Result, *diag.Bag, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(content))
	file := fs.Get(id)

	bag := diag.NewBag(64)
	segs := segment.Scan(file, forms, segment.CSyntax(), nil)
	res := extract.Extract(file, segs, extract.Options{
		MethodForms: gtestMethodForms(),
		Syntax:      segment.CSyntax(),
		Interner:    source.NewInterner(),
		Reporter:    &diag.BagReporter{Bag: bag},
	})
	return res, bag, file
}

func TestExtractCasesAndFixtures(t *testing.T) {
	content := "class CalculatorFixture : public ::testing::Test {\n" +
		" protected:\n" +
		"  void SetUp() override { value = 41; }\n" +
		"  void TearDown() override { value = 0; }\n" +
		"  int value;\n" +
		"};\n" +
		"\n" +
		"TEST(CalculatorTest, Addition) {\n" +
		"  EXPECT_EQ(2, add(1, 1));\n" +
		"}\n" +
		"\n" +
		"TEST_F(CalculatorFixture, UsingFixture) {\n" +
		"  EXPECT_EQ(41, value);\n" +
		"}\n"

	res, bag, file := extractFrom(t, "calculator_test.cpp", content, gtestForms())

	if bag.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", bag.Items())
	}
	if len(res.Cases) != 2 {
		t.Fatalf("cases = %d, want 2", len(res.Cases))
	}

	in := res.Interner
	first := res.Cases[0]
	if in.MustLookup(first.Suite) != "CalculatorTest" || in.MustLookup(first.Name) != "Addition" {
		t.Fatalf("first case = %s.%s", in.MustLookup(first.Suite), in.MustLookup(first.Name))
	}
	if first.HasFixture() {
		t.Error("TEST must not reference a fixture")
	}
	if !strings.Contains(string(first.Raw), "EXPECT_EQ(2, add(1, 1));") {
		t.Fatalf("raw body = %q", first.Raw)
	}

	second := res.Cases[1]
	if in.MustLookup(second.Suite) != "CalculatorFixture" || in.MustLookup(second.Name) != "UsingFixture" {
		t.Fatalf("second case = %s.%s", in.MustLookup(second.Suite), in.MustLookup(second.Name))
	}
	if !second.HasFixture() || in.MustLookup(second.Fixture) != "CalculatorFixture" {
		t.Error("TEST_F must reference its fixture")
	}
	if !second.Linked {
		t.Error("fixture reference must resolve against the declared class")
	}

	if len(res.Fixtures) != 1 {
		t.Fatalf("fixtures = %d, want 1", len(res.Fixtures))
	}
	fx := res.Fixtures[0]
	if in.MustLookup(fx.Name) != "CalculatorFixture" {
		t.Fatalf("fixture name = %q", in.MustLookup(fx.Name))
	}
	if !fx.HasSetup() || !fx.HasTeardown() {
		t.Fatalf("setup = %v, teardown = %v, want both", fx.HasSetup(), fx.HasTeardown())
	}
	setupText := string(file.Content[fx.Setup.Start:fx.Setup.End])
	if !strings.HasPrefix(setupText, "SetUp()") {
		t.Fatalf("setup span text = %q", setupText)
	}

	if got, ok := res.FixtureByName(second.Fixture); !ok || got.Name != fx.Name {
		t.Error("FixtureByName must resolve the referenced fixture")
	}
}

func TestExtractDuplicateTestName(t *testing.T) {
	content := "TEST(CalculatorTest, Addition) {\n  EXPECT_EQ(2, add(1, 1));\n}\n" +
		"TEST(CalculatorTest, Addition) {\n  EXPECT_EQ(3, add(1, 2));\n}\n"

	res, bag, _ := extractFrom(t, "calculator_test.cpp", content, gtestForms())

	if len(res.Cases) != 2 {
		t.Fatalf("cases = %d, want 2 (duplicates are still analyzed)", len(res.Cases))
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ExtractDuplicateTestName {
		t.Fatalf("code = %v, want duplicate-test-name", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Fatalf("severity = %v, want error", d.Severity)
	}
	if d.Test.Suite != "CalculatorTest" || d.Test.Case != "Addition" {
		t.Fatalf("test ref = %v", d.Test)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "first declared here" {
		t.Fatalf("notes = %v", d.Notes)
	}
	// Диагностика стоит на втором объявлении, заметка ведёт на первое.
	if d.Primary.Start <= d.Notes[0].Span.Start {
		t.Fatalf("primary %v should follow the first declaration %v", d.Primary, d.Notes[0].Span)
	}
}

func TestExtractOrphanFixtureReference(t *testing.T) {
	content := "TEST_F(MissingFixture, UsesFixture) {\n  EXPECT_TRUE(ready);\n}\n"

	res, bag, _ := extractFrom(t, "calculator_test.cpp", content, gtestForms())

	if len(res.Cases) != 1 {
		t.Fatalf("cases = %d, want 1", len(res.Cases))
	}
	if !res.Cases[0].HasFixture() {
		t.Error("orphan reference still counts as naming a fixture")
	}
	if res.Cases[0].Linked {
		t.Error("orphan reference must stay unlinked")
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ExtractOrphanFixtureRef {
		t.Fatalf("code = %v, want orphan-fixture-reference", d.Code)
	}
	if d.Severity != diag.SevWarning {
		t.Fatalf("severity = %v, want warning", d.Severity)
	}
	if !strings.Contains(d.Message, "MissingFixture") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestExtractSuiteFromFileStem(t *testing.T) {
	forms := []segment.Form{
		{
			Kind:           segment.FormTest,
			Shape:          segment.ShapeCall,
			Keyword:        "TEST_CASE",
			NameFromString: true,
			SuiteFromFile:  true,
		},
	}
	content := "TEST_CASE(\"vectors can be sized\", \"[vector]\") {\n  REQUIRE(v.size() == 5);\n}\n"

	res, bag, _ := extractFrom(t, "vector_test.cpp", content, forms)

	if bag.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", bag.Items())
	}
	if len(res.Cases) != 1 {
		t.Fatalf("cases = %d, want 1", len(res.Cases))
	}
	in := res.Interner
	c := res.Cases[0]
	if in.MustLookup(c.Suite) != "vector" {
		t.Fatalf("suite = %q, want file stem without _test", in.MustLookup(c.Suite))
	}
	if in.MustLookup(c.Name) != "vectors can be sized" {
		t.Fatalf("case = %q", in.MustLookup(c.Name))
	}
}

func TestExtractScopedSetupMacros(t *testing.T) {
	forms := []segment.Form{
		{Kind: segment.FormTest, Shape: segment.ShapeCall, Keyword: "TEST"},
		{Kind: segment.FormSetup, Shape: segment.ShapeCall, Keyword: "SETUP"},
		{Kind: segment.FormTeardown, Shape: segment.ShapeCall, Keyword: "TEARDOWN"},
	}
	content := "SETUP(Database) {\n  connect();\n}\n" +
		"TEARDOWN(Database) {\n  disconnect();\n}\n" +
		"TEST(Database, Ping) {\n  EXPECT_TRUE(ping());\n}\n"

	res, bag, _ := extractFrom(t, "database_test.cpp", content, forms)

	if bag.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", bag.Items())
	}
	if len(res.Fixtures) != 1 {
		t.Fatalf("fixtures = %d, want 1", len(res.Fixtures))
	}
	fx := res.Fixtures[0]
	if res.Interner.MustLookup(fx.Name) != "Database" {
		t.Fatalf("fixture name = %q", res.Interner.MustLookup(fx.Name))
	}
	if !fx.HasSetup() || !fx.HasTeardown() {
		t.Fatalf("setup = %v, teardown = %v, want both", fx.HasSetup(), fx.HasTeardown())
	}
	// Связь тест-фикстура задаётся только явной формой объявления.
	if res.Cases[0].HasFixture() {
		t.Error("plain TEST must stay unlinked even when scopes match")
	}
}

func TestExtractGoTestFunctions(t *testing.T) {
	forms := []segment.Form{
		{
			Kind:          segment.FormTest,
			Shape:         segment.ShapeFunc,
			Keyword:       "func",
			Marker:        "testing.T",
			NamePrefix:    "Test",
			SuiteFromFile: true,
		},
	}
	content := "package calc\n\nfunc TestAddition(t *testing.T) {\n\tif add(1, 1) != 2 {\n\t\tt.Error(\"wrong\")\n\t}\n}\n"

	fs := source.NewFileSet()
	id := fs.AddVirtual("calc_test.go", []byte(content))
	file := fs.Get(id)
	segs := segment.Scan(file, forms, segment.GoSyntax(), nil)
	res := extract.Extract(file, segs, extract.Options{Syntax: segment.GoSyntax()})

	if len(res.Cases) != 1 {
		t.Fatalf("cases = %d, want 1", len(res.Cases))
	}
	in := res.Interner
	c := res.Cases[0]
	if in.MustLookup(c.Suite) != "calc" || in.MustLookup(c.Name) != "TestAddition" {
		t.Fatalf("case = %s.%s", in.MustLookup(c.Suite), in.MustLookup(c.Name))
	}
}

func TestFileStem(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"vector_test.cpp", "vector"},
		{"calc_test.go", "calc"},
		{"dir/nested/io_test.cc", "io"},
		{"plain.cpp", "plain"},
		{"_test.cpp", "_test"},
	}
	for _, tc := range cases {
		if got := extract.FileStem(tc.path); got != tc.want {
			t.Errorf("FileStem(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
