// Package trace provides a tracing subsystem for the testlint analyzer.
//
// The trace package enables tracking of analysis phases, per-file pipelines,
// and rule evaluation to help diagnose performance issues and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	testlint check --trace=- --trace-level=phase tests/
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Run and per-file boundaries
//   - LevelDetail: Pipeline phases (detect, scan, extract, analyze, report)
//   - LevelDebug: Everything including per-rule evaluation
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopeFile: Per-file analysis
//   - ScopePhase: Pipeline phases within a file
//   - ScopeRule: Single rule on a single test case (most detailed)
//
// # Context Propagation
//
// Tracers are propagated through the analysis pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "extract", parentID)
//	defer span.End("")
package trace
