package diag

import (
	"testlint/internal/source"
)

// Note attaches secondary context to a diagnostic: a remediation hint or a
// pointer at a related location (the first occurrence of a duplicated name).
type Note struct {
	Span source.Span
	Msg  string
}

// TestRef names the test case a diagnostic belongs to. File-scope conditions
// (unreadable file, truncated source) carry an empty ref.
type TestRef struct {
	Suite string
	Case  string
}

func (r TestRef) Empty() bool {
	return r.Suite == "" && r.Case == ""
}

func (r TestRef) String() string {
	if r.Empty() {
		return ""
	}
	return r.Suite + "." + r.Case
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Test     TestRef
	Notes    []Note
}
