package trace

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  Level
	}{
		{"off", LevelOff},
		{"error", LevelError},
		{"phase", LevelPhase},
		{"detail", LevelDetail},
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
	}

	for _, tc := range cases {
		got, err := ParseLevel(tc.input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(\"verbose\") should fail")
	}
}

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopePhase, false},
		{LevelPhase, ScopeRule, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopePhase, true},
		{LevelDetail, ScopeRule, false},
		{LevelDebug, ScopeRule, true},
	}

	for _, tc := range cases {
		got := tc.level.ShouldEmit(tc.scope)
		if got != tc.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		input string
		want  Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"text", FormatText},
		{"ndjson", FormatNDJSON},
		{"NDJSON", FormatNDJSON},
	}

	for _, tc := range cases {
		got, err := ParseFormat(tc.input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := ParseFormat("chrome"); err == nil {
		t.Error("ParseFormat(\"chrome\") should fail")
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		input string
		want  StorageMode
	}{
		{"stream", ModeStream},
		{"ring", ModeRing},
		{"both", ModeBoth},
		{"Ring", ModeRing},
	}

	for _, tc := range cases {
		got, err := ParseMode(tc.input)
		if err != nil {
			t.Fatalf("ParseMode(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := ParseMode("disk"); err == nil {
		t.Error("ParseMode(\"disk\") should fail")
	}
}

func TestFormatEventText(t *testing.T) {
	ev := &Event{
		Time:   time.Now(),
		Seq:    1,
		Kind:   KindSpanBegin,
		Scope:  ScopeFile,
		SpanID: 42,
		Name:   "file:tests/calc_test.cpp",
	}

	out := string(FormatEvent(ev, FormatText))
	if !strings.Contains(out, "→ file:tests/calc_test.cpp") {
		t.Errorf("begin event missing arrow and name: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("text event must end with newline: %q", out)
	}
	if !strings.Contains(out, "ms]") {
		t.Errorf("text event missing elapsed stamp: %q", out)
	}

	ev.Kind = KindSpanEnd
	ev.Detail = "3 diagnostics"
	out = string(FormatEvent(ev, FormatText))
	if !strings.Contains(out, "← file:tests/calc_test.cpp (3 diagnostics)") {
		t.Errorf("end event missing arrow, name or detail: %q", out)
	}

	ev.Kind = KindPoint
	ev.Detail = ""
	ev.Extra = map[string]string{"rules": "9"}
	out = string(FormatEvent(ev, FormatText))
	if !strings.Contains(out, "• ") {
		t.Errorf("point event missing bullet: %q", out)
	}
	if !strings.Contains(out, "rules=9") {
		t.Errorf("point event missing extra pair: %q", out)
	}
}

func TestFormatEventNDJSON(t *testing.T) {
	ev := &Event{
		Time:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Seq:      7,
		Kind:     KindSpanEnd,
		Scope:    ScopePhase,
		SpanID:   3,
		ParentID: 1,
		Name:     "extract",
		Detail:   "4 cases",
	}

	data := FormatEvent(ev, FormatNDJSON)
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatalf("ndjson event must end with newline: %q", data)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ndjson event does not parse: %v", err)
	}

	if decoded["kind"] != "end" {
		t.Errorf("kind = %v, want end", decoded["kind"])
	}
	if decoded["scope"] != "phase" {
		t.Errorf("scope = %v, want phase", decoded["scope"])
	}
	if decoded["name"] != "extract" {
		t.Errorf("name = %v, want extract", decoded["name"])
	}
	if decoded["detail"] != "4 cases" {
		t.Errorf("detail = %v, want 4 cases", decoded["detail"])
	}
	if decoded["seq"] != float64(7) {
		t.Errorf("seq = %v, want 7", decoded["seq"])
	}
	if decoded["span_id"] != float64(3) {
		t.Errorf("span_id = %v, want 3", decoded["span_id"])
	}
}
