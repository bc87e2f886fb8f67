// Package dialect describes test-framework dialects: declaration forms,
// comment and string syntax, default call-pattern lists, and lightweight
// evidence scoring that picks a dialect for a file automatically.
//
// Detection is intentionally non-invasive: evidence collection must never
// change segmentation or analysis behavior, and any classification can be
// overridden by explicit configuration.
package dialect
