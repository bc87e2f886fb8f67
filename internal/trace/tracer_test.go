package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRingTracerSnapshotOrder(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)

	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: name})
	}

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"a", "b", "c"} {
		if events[i].Name != want {
			t.Errorf("events[%d].Name = %q, want %q", i, events[i].Name, want)
		}
	}
	if events[0].Seq >= events[1].Seq || events[1].Seq >= events[2].Seq {
		t.Errorf("sequence numbers must increase: %d, %d, %d",
			events[0].Seq, events[1].Seq, events[2].Seq)
	}
}

func TestRingTracerWraparound(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)

	for _, name := range []string{"e1", "e2", "e3", "e4", "e5", "e6"} {
		ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: name})
	}

	// Only the last 4 events survive, oldest first.
	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events after wraparound, got %d", len(events))
	}
	for i, want := range []string{"e3", "e4", "e5", "e6"} {
		if events[i].Name != want {
			t.Errorf("events[%d].Name = %q, want %q", i, events[i].Name, want)
		}
	}
}

func TestRingTracerRespectsLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)

	ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeFile, Name: "kept"})
	ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeRule, Name: "dropped"})
	// Heartbeats bypass the scope filter so hangs stay visible at any level.
	ring.Emit(&Event{Time: time.Now(), Kind: KindHeartbeat, Scope: ScopeDriver, Name: "heartbeat"})

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "kept" || events[1].Name != "heartbeat" {
		t.Errorf("unexpected survivors: %q, %q", events[0].Name, events[1].Name)
	}
}

func TestRingTracerDump(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "first"})
	ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "second"})

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Errorf("dump out of order: %q", buf.String())
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)

	tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindSpanBegin,
		Scope:  ScopeDriver,
		SpanID: 1,
		Name:   "check",
	})
	tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindSpanEnd,
		Scope:  ScopeDriver,
		SpanID: 1,
		Name:   "check",
		Detail: "2 files",
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", len(lines))
	}

	for i, line := range lines {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("line %d does not parse as JSON: %v", i, err)
		}
		if decoded["name"] != "check" {
			t.Errorf("line %d name = %v, want check", i, decoded["name"])
		}
	}
}

func TestStreamTracerFiltersScope(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewStreamTracer(&buf, LevelPhase, FormatText)

	tracer.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeRule, Name: "too-detailed"})
	if buf.Len() != 0 {
		t.Errorf("rule-scope event must be dropped at phase level: %q", buf.String())
	}

	tracer.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeFile, Name: "visible"})
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("file-scope event must be written at phase level: %q", buf.String())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelDebug, FormatText)
	ring := NewRingTracer(8, LevelDebug)
	multi := NewMultiTracer(LevelDebug, stream, ring)

	multi.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "both"})

	if !strings.Contains(buf.String(), "both") {
		t.Errorf("stream branch missed the event: %q", buf.String())
	}
	if events := ring.Snapshot(); len(events) != 1 || events[0].Name != "both" {
		t.Errorf("ring branch missed the event: %+v", events)
	}
}

func TestSpanBeginEnd(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)

	span := Begin(ring, ScopeFile, "file:calc_test.cpp", 0)
	child := Begin(ring, ScopePhase, "extract", span.ID())
	child.End("4 cases")
	span.WithExtra("diags", "2").End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	if events[0].Kind != KindSpanBegin || events[0].Name != "file:calc_test.cpp" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].ParentID != events[0].SpanID {
		t.Errorf("child parent = %d, want %d", events[1].ParentID, events[0].SpanID)
	}
	if events[2].Kind != KindSpanEnd || events[2].Detail != "4 cases" {
		t.Errorf("unexpected child end: %+v", events[2])
	}
	if events[3].SpanID != events[0].SpanID {
		t.Errorf("end span id = %d, want %d", events[3].SpanID, events[0].SpanID)
	}
	if events[3].Extra["diags"] != "2" {
		t.Errorf("extra not carried to end event: %+v", events[3].Extra)
	}
}

func TestSpanBelowLevelIsSilent(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)

	span := Begin(ring, ScopeRule, "rule:time-based-wait", 0)
	span.End("skipped")

	if events := ring.Snapshot(); len(events) != 0 {
		t.Errorf("rule-scope span must not emit at phase level: %+v", events)
	}
	if span.ID() != 0 {
		t.Errorf("silent span must have zero id, got %d", span.ID())
	}
}

func TestSpanNilTracer(t *testing.T) {
	span := Begin(nil, ScopeDriver, "check", 0)
	if dur := span.End(""); dur != 0 {
		t.Errorf("nil-tracer span duration = %v, want 0", dur)
	}
}

func TestNewTracer(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		tracer, err := New(Config{Level: LevelOff})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if tracer.Enabled() {
			t.Error("off tracer must be disabled")
		}
	})

	t.Run("ring", func(t *testing.T) {
		tracer, err := New(Config{Level: LevelDebug, Mode: ModeRing, RingSize: 16})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, ok := tracer.(*RingTracer); !ok {
			t.Fatalf("expected *RingTracer, got %T", tracer)
		}
	})

	t.Run("stream text by default", func(t *testing.T) {
		var buf bytes.Buffer
		tracer, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, Format: FormatAuto})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		tracer.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "hello"})
		if strings.Contains(buf.String(), "{") {
			t.Errorf("auto format without path hint must be text: %q", buf.String())
		}
	})

	t.Run("stream ndjson by extension", func(t *testing.T) {
		var buf bytes.Buffer
		tracer, err := New(Config{
			Level:      LevelPhase,
			Mode:       ModeStream,
			Output:     &buf,
			OutputPath: "run.ndjson",
			Format:     FormatAuto,
		})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		tracer.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "hello"})

		var decoded map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
			t.Fatalf(".ndjson path must select ndjson format: %v (%q)", err, buf.String())
		}
	})

	t.Run("both", func(t *testing.T) {
		var buf bytes.Buffer
		tracer, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, ok := tracer.(*MultiTracer); !ok {
			t.Fatalf("expected *MultiTracer, got %T", tracer)
		}
		tracer.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeDriver, Name: "dual"})
		if !strings.Contains(buf.String(), "dual") {
			t.Errorf("stream branch missed event: %q", buf.String())
		}
	})
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("empty context must yield Nop tracer")
	}

	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Error("tracer did not round-trip through context")
	}

	sc := SpanContext{SpanID: 10, GID: 3}
	ctx = WithSpanContext(ctx, sc)
	if got := CurrentSpan(ctx); got != sc {
		t.Errorf("span context = %+v, want %+v", got, sc)
	}
}

func TestStartHeartbeatGuards(t *testing.T) {
	if h := StartHeartbeat(nil, time.Second); h != nil {
		t.Error("nil tracer must not start a heartbeat")
	}
	if h := StartHeartbeat(Nop, time.Second); h != nil {
		t.Error("disabled tracer must not start a heartbeat")
	}
	if h := StartHeartbeat(NewRingTracer(8, LevelPhase), 0); h != nil {
		t.Error("zero interval must not start a heartbeat")
	}

	// Stop on nil receiver is safe.
	var h *Heartbeat
	h.Stop()
}

func TestHeartbeatEmits(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)

	h := StartHeartbeat(ring, 2*time.Millisecond)
	if h == nil {
		t.Fatal("heartbeat did not start")
	}
	time.Sleep(30 * time.Millisecond)
	h.Stop()

	beats := 0
	for _, ev := range ring.Snapshot() {
		if ev.Kind == KindHeartbeat {
			beats++
		}
	}
	if beats == 0 {
		t.Error("expected at least one heartbeat event")
	}
}
