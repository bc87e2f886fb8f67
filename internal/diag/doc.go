// Package diag defines the core diagnostic model shared by all pipeline stages.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the segmenter / extractor / rule engine.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt;
// orchestration lives in the driver layer. The model deliberately carries no
// machine-applicable edits: findings describe structural test smells, and
// rewriting test code is out of scope for the tool.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) whose ID() is the
//     stable rule id string ("time-based-wait", "no-assertions", ...).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue,
//     normally the declaration header of the offending test case.
//   - Test – the (suite, case) pair the finding belongs to; empty for
//     file-scope conditions such as an unreadable or truncated file.
//   - Notes – optional secondary spans/messages: remediation hints, or the
//     first occurrence behind a duplicate-test-name finding.
//
// Notes should be used sparingly: each note must add new context (e.g. "first
// declared here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Stages should use a diag.Reporter to decouple emission from storage. The
// extractor, for example, constructs a ReportBuilder via NewReportBuilder (or
// the helper functions Report/ReportError/ReportWarning/ReportInfo) and chains
// WithNote / ForTest before calling Emit.
//
// When no additional metadata is needed, stages may call Reporter.Report(...)
// directly. For convenience, diag.BagReporter aggregates diagnostics into a
// Bag, which supports sorting, merging, and per-severity totals.
//
// # Ordering
//
// Bag.Sort orders diagnostics by (file, span start, span end, rule id). Rule
// ids compare as strings, so the ordering users observe matches the ids they
// configure. Every consumer that renders or serialises diagnostics must sort
// first; identical inputs then produce byte-identical output regardless of
// how many workers analysed the batch.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json/sarif formats.
//   - internal/driver: coordinates bag collection per file and transports
//     diagnostic data to CLI commands and the results cache.
//
// Keep the data model deterministic: any new fields should honour the package's
// layering constraints and avoid side effects, so the CLI and future tooling can
// safely serialise diagnostics for caching and testing.
package diag
