package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Сегментация исходника
	ScanInfo           Code = 1000
	ScanMalformedInput Code = 1001

	// Извлечение тест-кейсов
	ExtractInfo              Code = 2000
	ExtractDuplicateTestName Code = 2001
	ExtractOrphanFixtureRef  Code = 2002

	// Структурные правила
	RuleInfo                Code = 3000
	RuleNoAssertions        Code = 3001
	RuleExcessiveAssertions Code = 3002
	RuleTimeBasedWait       Code = 3003
	RuleConditionalLogic    Code = 3004
	RuleUncontrolledIO      Code = 3005
	RuleInternalError       Code = 3006

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

// codeID maps stable rule ids onto codes. Diagnostics are addressed by these
// strings everywhere a user can see or configure them; the numeric Code is an
// internal compact form.
var codeID = map[Code]string{
	ScanMalformedInput:       "malformed-input",
	ExtractDuplicateTestName: "duplicate-test-name",
	ExtractOrphanFixtureRef:  "orphan-fixture-reference",
	RuleNoAssertions:         "no-assertions",
	RuleExcessiveAssertions:  "excessive-assertions",
	RuleTimeBasedWait:        "time-based-wait",
	RuleConditionalLogic:     "conditional-logic",
	RuleUncontrolledIO:       "uncontrolled-io",
	RuleInternalError:        "internal-rule-error",
	IOLoadFileError:          "file-unreadable",
}

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	ScanInfo:                 "Segmentation information",
	ScanMalformedInput:       "Source truncated inside an unclosed region",
	ExtractInfo:              "Extraction information",
	ExtractDuplicateTestName: "Test case name duplicated within the file",
	ExtractOrphanFixtureRef:  "Test references a fixture that does not exist",
	RuleInfo:                 "Rule information",
	RuleNoAssertions:         "Test case contains no assertions",
	RuleExcessiveAssertions:  "Test case asserts more than the configured maximum",
	RuleTimeBasedWait:        "Test case waits on wall-clock time",
	RuleConditionalLogic:     "Test case branches on conditional logic",
	RuleUncontrolledIO:       "Test case performs I/O without a fixture",
	RuleInternalError:        "Rule evaluation failed internally",
	IOLoadFileError:          "File could not be read",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Pipeline timings",
}

// defaultSeverity carries the built-in severity of each reportable code;
// configuration may override any of them per rule id.
var defaultSeverity = map[Code]Severity{
	ScanMalformedInput:       SevWarning,
	ExtractDuplicateTestName: SevError,
	ExtractOrphanFixtureRef:  SevWarning,
	RuleNoAssertions:         SevWarning,
	RuleExcessiveAssertions:  SevInfo,
	RuleTimeBasedWait:        SevError,
	RuleConditionalLogic:     SevWarning,
	RuleUncontrolledIO:       SevWarning,
	RuleInternalError:        SevWarning,
	IOLoadFileError:          SevError,
}

// configurableCodes lists the codes a user may enable, disable, or reseverity,
// sorted by ID() so iteration order matches diagnostic ordering.
var configurableCodes = []Code{
	RuleConditionalLogic,     // conditional-logic
	ExtractDuplicateTestName, // duplicate-test-name
	RuleExcessiveAssertions,  // excessive-assertions
	RuleInternalError,        // internal-rule-error
	ScanMalformedInput,       // malformed-input
	RuleNoAssertions,         // no-assertions
	ExtractOrphanFixtureRef,  // orphan-fixture-reference
	RuleTimeBasedWait,        // time-based-wait
	RuleUncontrolledIO,       // uncontrolled-io
}

func (c Code) ID() string {
	if id, ok := codeID[c]; ok {
		return id
	}
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EXT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RULE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// DefaultSeverity returns the built-in severity for the code.
// Codes without a reportable default are informational.
func (c Code) DefaultSeverity() Severity {
	if sev, ok := defaultSeverity[c]; ok {
		return sev
	}
	return SevInfo
}

// ParseCode resolves a rule id string back to its code.
func ParseCode(id string) (Code, bool) {
	for code, s := range codeID {
		if s == id {
			return code, true
		}
	}
	return UnknownCode, false
}

// ConfigurableCodes returns the codes users may address in configuration,
// in ascending rule-id order. The returned slice must not be modified.
func ConfigurableCodes() []Code {
	return configurableCodes
}
