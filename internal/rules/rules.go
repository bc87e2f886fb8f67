package rules

import (
	"fmt"
	"sort"

	"testlint/internal/diag"
	"testlint/internal/feature"
	"testlint/internal/source"
)

// Params — пороги, доступные предикатам правил
type Params struct {
	MaxAssertions int
}

// Rule — правило как значение: код, предикат, текст и необязательная
// заметка. Новые правила добавляются в набор, а не в ветвления движка.
type Rule struct {
	Code diag.Code
	// When reports whether the rule fires for the vector.
	When func(v feature.Vector, p Params) bool
	// Message renders the diagnostic text for a firing rule.
	Message func(v feature.Vector, p Params) string
	// Note optionally anchors a remediation note; a zero span skips it.
	Note func(v feature.Vector) (source.Span, string)
}

// Defaults возвращает встроенный набор правил по вектору признаков.
// Пороги приходят через Params, движок ничего не прошивает.
func Defaults() []Rule {
	return []Rule{
		{
			Code: diag.RuleNoAssertions,
			When: func(v feature.Vector, _ Params) bool { return v.Assertions == 0 },
			Message: func(_ feature.Vector, _ Params) string {
				return "test makes no assertions"
			},
		},
		{
			Code: diag.RuleExcessiveAssertions,
			When: func(v feature.Vector, p Params) bool { return v.Assertions > p.MaxAssertions },
			Message: func(v feature.Vector, p Params) string {
				return fmt.Sprintf("test makes %d assertions, configured maximum is %d", v.Assertions, p.MaxAssertions)
			},
		},
		{
			Code: diag.RuleTimeBasedWait,
			When: func(v feature.Vector, _ Params) bool { return v.TimeWaits > 0 },
			Message: func(v feature.Vector, _ Params) string {
				return "test depends on real time: " + plural(v.TimeWaits, "wait call")
			},
			Note: func(v feature.Vector) (source.Span, string) {
				return v.FirstWait, "first wait call here"
			},
		},
		{
			Code: diag.RuleConditionalLogic,
			When: func(v feature.Vector, _ Params) bool { return v.Conditionals > 0 },
			Message: func(v feature.Vector, _ Params) string {
				return "test branches: " + plural(v.Conditionals, "conditional") + " in the body"
			},
			Note: func(v feature.Vector) (source.Span, string) {
				return v.FirstConditional, "first branch here"
			},
		},
		{
			Code: diag.RuleUncontrolledIO,
			When: func(v feature.Vector, _ Params) bool { return v.IOCalls > 0 && !v.HasFixture },
			Message: func(v feature.Vector, _ Params) string {
				return "test performs " + plural(v.IOCalls, "I/O call") + " outside any fixture"
			},
			Note: func(v feature.Vector) (source.Span, string) {
				return v.FirstIO, "first I/O call here"
			},
		},
	}
}

// Filter keeps only the rules whose code is enabled. A nil set keeps all.
func Filter(rs []Rule, enabled map[diag.Code]bool) []Rule {
	if enabled == nil {
		return rs
	}
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		if enabled[r.Code] {
			out = append(out, r)
		}
	}
	return out
}

// Set — упорядоченный набор правил для прогона по векторам
type Set struct {
	rules  []Rule
	params Params
}

// NewSet сортирует правила по возрастанию строкового идентификатора,
// порядок диагностики одного кейса детерминирован.
func NewSet(rs []Rule, params Params) *Set {
	sorted := make([]Rule, len(rs))
	copy(sorted, rs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Code.ID() < sorted[j].Code.ID()
	})
	return &Set{rules: sorted, params: params}
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Codes returns the rule codes in evaluation order.
func (s *Set) Codes() []diag.Code {
	out := make([]diag.Code, len(s.rules))
	for i := range s.rules {
		out[i] = s.rules[i].Code
	}
	return out
}

// Evaluate прогоняет весь набор по вектору одного тест-кейса.
// Диагностики встают на anchor (заголовок объявления теста).
func (s *Set) Evaluate(v feature.Vector, test diag.TestRef, anchor source.Span, rep diag.Reporter) {
	for i := range s.rules {
		s.evalOne(&s.rules[i], v, test, anchor, rep)
	}
}

// evalOne isolates one rule on one test case: a panic inside the predicate
// or message builder degrades to an internal-rule-error diagnostic.
func (s *Set) evalOne(r *Rule, v feature.Vector, test diag.TestRef, anchor source.Span, rep diag.Reporter) {
	defer func() {
		if rec := recover(); rec != nil {
			diag.Report(rep, diag.RuleInternalError, anchor,
				fmt.Sprintf("rule %s failed on %s: %v", r.Code.ID(), test, rec)).
				ForTest(test.Suite, test.Case).
				Emit()
		}
	}()

	if r.When == nil || !r.When(v, s.params) {
		return
	}
	msg := r.Code.Title()
	if r.Message != nil {
		msg = r.Message(v, s.params)
	}
	b := diag.Report(rep, r.Code, anchor, msg).ForTest(test.Suite, test.Case)
	if r.Note != nil {
		if sp, note := r.Note(v); !sp.Empty() && note != "" {
			b.WithNote(sp, note)
		}
	}
	b.Emit()
}

// Policy — пост-обработка собранных диагностик: переопределение
// серьёзности и отключённые правила. Применяется единообразно и к
// правилам движка, и к диагностикам экстрактора и сегментатора.
type Policy struct {
	Severity map[diag.Code]diag.Severity
	Disabled map[diag.Code]bool
}

// Apply returns a new slice with disabled codes dropped and severities
// rewritten. The input slice is not modified.
func (p Policy) Apply(diags []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if p.Disabled[d.Code] {
			continue
		}
		if sev, ok := p.Severity[d.Code]; ok {
			d.Severity = sev
		}
		out = append(out, d)
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
