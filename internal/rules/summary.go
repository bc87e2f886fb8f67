package rules

import "testlint/internal/diag"

// FailOn — порог, начиная с которого прогон считается проваленным
type FailOn uint8

const (
	// FailOnError fails the run only on errors. The default.
	FailOnError FailOn = iota
	// FailOnWarning fails on warnings and errors.
	FailOnWarning
	// FailOnInfo fails on any diagnostic at all.
	FailOnInfo
	// FailNever reports but never fails.
	FailNever
)

func (f FailOn) String() string {
	switch f {
	case FailOnError:
		return "error"
	case FailOnWarning:
		return "warning"
	case FailOnInfo:
		return "info"
	case FailNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseFailOn распознаёт error, warning, info, never без учёта регистра.
func ParseFailOn(s string) (FailOn, bool) {
	switch s {
	case "error", "Error", "ERROR":
		return FailOnError, true
	case "warning", "Warning", "WARNING":
		return FailOnWarning, true
	case "info", "Info", "INFO":
		return FailOnInfo, true
	case "never", "Never", "NEVER":
		return FailNever, true
	default:
		return FailOnError, false
	}
}

// Summary — итог анализа одного файла: упорядоченные диагностики
// и счётчики по серьёзности
type Summary struct {
	Path        string
	Diagnostics []diag.Diagnostic
	Errors      int
	Warnings    int
	Infos       int
}

// Summarize — чистая свёртка: от повторного вызова итог не меняется.
func Summarize(path string, diags []diag.Diagnostic) Summary {
	s := Summary{Path: path, Diagnostics: diags}
	for _, d := range diags {
		switch d.Severity {
		case diag.SevError:
			s.Errors++
		case diag.SevWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// Failed reports whether the summary crosses the fail ceiling.
func (s *Summary) Failed(ceiling FailOn) bool {
	return failed(s.Errors, s.Warnings, s.Infos, ceiling)
}

// Totals — сквозные счётчики по всем файлам прогона
type Totals struct {
	Files    int
	Errors   int
	Warnings int
	Infos    int
}

func (t *Totals) Add(s Summary) {
	t.Files++
	t.Errors += s.Errors
	t.Warnings += s.Warnings
	t.Infos += s.Infos
}

// Failed reports whether the whole run crosses the fail ceiling.
func (t Totals) Failed(ceiling FailOn) bool {
	return failed(t.Errors, t.Warnings, t.Infos, ceiling)
}

func failed(errors, warnings, infos int, ceiling FailOn) bool {
	switch ceiling {
	case FailNever:
		return false
	case FailOnInfo:
		return errors+warnings+infos > 0
	case FailOnWarning:
		return errors+warnings > 0
	default:
		return errors > 0
	}
}
