package driver

import "testlint/internal/trace"

// tracePhases bridges phase events into phase-scope trace spans.
// Phases within one file run sequentially, so the span map needs no lock.
// When the tracer does not emit at phase scope, the observer chain is
// returned unchanged.
func tracePhases(tracer trace.Tracer, parent uint64, next PhaseObserver) PhaseObserver {
	if tracer == nil || !tracer.Level().ShouldEmit(trace.ScopePhase) {
		return next
	}

	spans := make(map[string]*trace.Span, 8)
	return func(ev PhaseEvent) {
		switch ev.Status {
		case PhaseStart:
			spans[ev.Name] = trace.Begin(tracer, trace.ScopePhase, ev.Name, parent)
		case PhaseEnd:
			if span := spans[ev.Name]; span != nil {
				span.End("")
				delete(spans, ev.Name)
			}
		}
		if next != nil {
			next(ev)
		}
	}
}
