package diag

import (
	"testing"

	"testlint/internal/source"
)

func TestBagSortOrdersByFileStartEndRuleID(t *testing.T) {
	bag := NewBag(16)

	// нарочно вразнобой
	bag.Add(New(SevWarning, RuleUncontrolledIO, source.Span{File: 1, Start: 40, End: 50}, "io"))
	bag.Add(New(SevError, RuleTimeBasedWait, source.Span{File: 0, Start: 40, End: 50}, "wait"))
	bag.Add(New(SevWarning, RuleNoAssertions, source.Span{File: 0, Start: 40, End: 50}, "none"))
	bag.Add(New(SevWarning, RuleConditionalLogic, source.Span{File: 0, Start: 10, End: 20}, "cond"))
	bag.Add(New(SevInfo, RuleExcessiveAssertions, source.Span{File: 0, Start: 40, End: 50}, "many"))

	bag.Sort()

	got := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Code.ID())
	}

	// file, start, end, затем rule id лексикографически
	want := []string{
		"conditional-logic",
		"excessive-assertions",
		"no-assertions",
		"time-based-wait",
		"uncontrolled-io",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	bag := NewBag(2)

	if !bag.Add(New(SevInfo, RuleInfo, source.Span{}, "one")) {
		t.Fatal("first Add should succeed")
	}
	if !bag.Add(New(SevInfo, RuleInfo, source.Span{}, "two")) {
		t.Fatal("second Add should succeed")
	}
	if bag.Add(New(SevInfo, RuleInfo, source.Span{}, "three")) {
		t.Fatal("Add past the limit should report false")
	}

	other := NewBag(4)
	other.Add(New(SevError, RuleTimeBasedWait, source.Span{}, "late"))
	bag.Merge(other)

	if bag.Len() != 3 {
		t.Fatalf("Merge should grow the bag past its limit, len = %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatal("merged bag should carry the error")
	}

	errors, warnings, infos := bag.CountBySeverity()
	if errors != 1 || warnings != 0 || infos != 2 {
		t.Fatalf("CountBySeverity = (%d, %d, %d), want (1, 0, 2)", errors, warnings, infos)
	}
}

func TestParseCodeRoundTrip(t *testing.T) {
	for _, code := range ConfigurableCodes() {
		id := code.ID()
		back, ok := ParseCode(id)
		if !ok || back != code {
			t.Errorf("ParseCode(%q) = (%v, %v), want (%v, true)", id, back, ok, code)
		}
	}

	if _, ok := ParseCode("no-such-rule"); ok {
		t.Error("ParseCode should reject unknown rule ids")
	}
}
