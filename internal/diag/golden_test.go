package diag

import (
	"testing"

	"testlint/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/testdata/sample_test.cpp", []byte("TEST(A, B) {\n}\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     RuleTimeBasedWait,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 13, End: 14}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     RuleNoAssertions,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 13, End: 14},
		},
	}

	expected := "error time-based-wait sample_test.cpp:1:1 first line second\n" +
		"note time-based-wait sample_test.cpp:2:1 note line\n" +
		"warning no-assertions sample_test.cpp:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsKeepsRelativePath(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/testdata/sample_test.cpp", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     RuleConditionalLogic,
			Message:  "branching",
			Primary:  source.Span{File: file, Start: 0, End: 1},
		},
	}

	expected := "warning conditional-logic testdata/sample_test.cpp:1:1 branching"
	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
