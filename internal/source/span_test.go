package source

import (
	"testing"
)

func TestSpan_ShiftLeft(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{
			name:     "shift normal span left by 5",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    5,
			expected: Span{File: 1, Start: 5, End: 15},
		},
		{
			name:     "shift span left by 0",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    0,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift equals start - boundary case",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    10,
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "shift larger than start - returns original",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    15,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift zero-length span",
			span:     Span{File: 1, Start: 10, End: 10},
			shift:    3,
			expected: Span{File: 1, Start: 7, End: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ShiftLeft(tt.shift)
			if result != tt.expected {
				t.Errorf("ShiftLeft() = %+v, want %+v", result, tt.expected)
			}
			if result.File != tt.span.File {
				t.Errorf("File ID changed: got %d, want %d", result.File, tt.span.File)
			}
		})
	}
}

func TestSpan_ShiftRight(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{
			name:     "shift normal span right by 5",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    5,
			expected: Span{File: 1, Start: 15, End: 25},
		},
		{
			name:     "shift span right by 0",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    0,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift far beyond span length",
			span:     Span{File: 1, Start: 5, End: 10},
			shift:    100,
			expected: Span{File: 1, Start: 105, End: 110},
		},
		{
			name:     "shift that would overflow - returns original",
			span:     Span{File: 1, Start: 0xFFFFFFF0, End: 0xFFFFFFFF},
			shift:    2,
			expected: Span{File: 1, Start: 0xFFFFFFF0, End: 0xFFFFFFFF},
		},
		{
			name:     "shift zero-length span",
			span:     Span{File: 1, Start: 10, End: 10},
			shift:    5,
			expected: Span{File: 1, Start: 15, End: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ShiftRight(tt.shift)
			if result != tt.expected {
				t.Errorf("ShiftRight() = %+v, want %+v", result, tt.expected)
			}
			if result.File != tt.span.File {
				t.Errorf("File ID changed: got %d, want %d", result.File, tt.span.File)
			}
		})
	}
}

func TestSpan_ZeroideToStart(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		expected Span
	}{
		{
			name:     "normal span",
			span:     Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 10, End: 10},
		},
		{
			name:     "already zero-length span",
			span:     Span{File: 1, Start: 15, End: 15},
			expected: Span{File: 1, Start: 15, End: 15},
		},
		{
			name:     "span at position 0",
			span:     Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 2, Start: 0, End: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ZeroideToStart()
			if result != tt.expected {
				t.Errorf("ZeroideToStart() = %+v, want %+v", result, tt.expected)
			}
			if result.Start != result.End {
				t.Errorf("Result is not zero-length: Start=%d, End=%d", result.Start, result.End)
			}
		})
	}
}

func TestSpan_ZeroideToEnd(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		expected Span
	}{
		{
			name:     "normal span",
			span:     Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 20, End: 20},
		},
		{
			name:     "already zero-length span",
			span:     Span{File: 1, Start: 15, End: 15},
			expected: Span{File: 1, Start: 15, End: 15},
		},
		{
			name:     "span at position 0",
			span:     Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 2, Start: 100, End: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ZeroideToEnd()
			if result != tt.expected {
				t.Errorf("ZeroideToEnd() = %+v, want %+v", result, tt.expected)
			}
			if result.Start != result.End {
				t.Errorf("Result is not zero-length: Start=%d, End=%d", result.Start, result.End)
			}
		})
	}
}

func TestSpan_CoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 15, End: 30}

	got := a.Cover(b)
	want := Span{File: 1, Start: 10, End: 30}
	if got != want {
		t.Errorf("Cover() = %+v, want %+v", got, want)
	}

	// Cover ignores spans from other files
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover() across files = %+v, want %+v", got, a)
	}

	if !a.Contains(10) || !a.Contains(19) {
		t.Error("Contains() should include start and last byte")
	}
	if a.Contains(20) || a.Contains(9) {
		t.Error("Contains() should exclude end and bytes before start")
	}
}
