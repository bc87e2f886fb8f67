package diag

import "testlint/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Notes:    nil,
	}
}

// NewDefault builds a diagnostic with the code's built-in severity.
func NewDefault(code Code, primary source.Span, msg string) Diagnostic {
	return New(code.DefaultSeverity(), code, primary, msg)
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// ForTest pins the diagnostic to the test case it was raised for.
func (d Diagnostic) ForTest(suite, name string) Diagnostic {
	d.Test = TestRef{Suite: suite, Case: name}
	return d
}
