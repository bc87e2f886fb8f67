package feature

import (
	"bytes"
	"sort"

	"testlint/internal/extract"
	"testlint/internal/segment"
	"testlint/internal/source"
)

// Patterns задают, какие вызовы и ключевые слова считает анализатор.
// Наборы приходят из пресета диалекта или из конфигурации, движок
// ничего не прошивает сам.
type Patterns struct {
	// Assertions, TimeWaits and IOCalls are call patterns: the name must
	// sit on a word boundary and be followed by an opening parenthesis.
	Assertions []string
	TimeWaits  []string
	IOCalls    []string
	// FixtureHelpers are call patterns whose argument regions shield I/O
	// calls from counting: such I/O is the fixture's declared duty.
	FixtureHelpers []string
	// Conditionals are branching keywords counted on word boundaries.
	// Bare else is deliberately absent: else if counts through its if.
	Conditionals []string
	// Ternary additionally counts ? operators.
	Ternary bool
}

// Vector — структурный портрет одного тест-кейса
type Vector struct {
	Assertions   int
	TimeWaits    int
	Conditionals int
	IOCalls      int
	HasFixture   bool
	BodyLines    int

	// First* anchor remediation notes at the first offending site.
	// Zero spans mean the category never matched.
	FirstWait        source.Span
	FirstConditional source.Span
	FirstIO          source.Span
}

// Analyzer вычисляет вектора по телам тест-кейсов
type Analyzer struct {
	fs   *source.FileSet
	syn  segment.Syntax
	pats Patterns
}

func NewAnalyzer(fs *source.FileSet, syn segment.Syntax, pats Patterns) *Analyzer {
	return &Analyzer{fs: fs, syn: syn, pats: pats}
}

// Analyze computes the feature vector of one test case. Counts run over a
// masked copy of the body, so strings and comments never match. The vector
// is rebuilt wholesale on every call.
func (a *Analyzer) Analyze(tc *extract.TestCase) Vector {
	masked := segment.Mask(tc.Raw, a.syn)
	base := tc.Body.Start
	file := tc.Body.File

	v := Vector{
		HasFixture: tc.Linked,
		BodyLines:  a.lineCount(tc),
	}

	v.Assertions, _ = callFeature(masked, a.pats.Assertions, nil, base, file)
	v.TimeWaits, v.FirstWait = callFeature(masked, a.pats.TimeWaits, nil, base, file)

	shield := argRegions(masked, a.pats.FixtureHelpers)
	v.IOCalls, v.FirstIO = callFeature(masked, a.pats.IOCalls, shield, base, file)

	v.Conditionals, v.FirstConditional = keywordFeature(masked, a.pats.Conditionals, a.pats.Ternary, base, file)
	return v
}

func (a *Analyzer) lineCount(tc *extract.TestCase) int {
	if a.fs != nil {
		if n := a.fs.LineCount(tc.Body); n > 0 {
			return int(n)
		}
	}
	return bytes.Count(tc.Raw, []byte("\n")) + 1
}

// match — одно совпадение паттерна вызова
type match struct {
	start int
	end   int
	// paren is the offset of the opening parenthesis; матчи разных
	// паттернов на одном вызове дедуплицируются по нему.
	paren int
}

// findCalls collects call matches for all patterns, deduplicated by the
// opening parenthesis and sorted by position.
func findCalls(text []byte, patterns []string) []match {
	seen := make(map[int]struct{})
	var out []match
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		needle := []byte(pat)
		from := 0
		for {
			i := bytes.Index(text[from:], needle)
			if i < 0 {
				break
			}
			at := from + i
			from = at + 1
			if !wordBoundary(text, at, len(pat)) {
				continue
			}
			p := parenAfter(text, at+len(pat))
			if p < 0 {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, match{start: at, end: at + len(pat), paren: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func callFeature(text []byte, patterns []string, shield []region, base uint32, file source.FileID) (int, source.Span) {
	var count int
	var first source.Span
	for _, m := range findCalls(text, patterns) {
		if insideAny(shield, m.paren) {
			continue
		}
		if count == 0 {
			first = source.Span{File: file, Start: base + uint32(m.start), End: base + uint32(m.end)}
		}
		count++
	}
	return count, first
}

func keywordFeature(text []byte, keywords []string, ternary bool, base uint32, file source.FileID) (int, source.Span) {
	count := 0
	firstAt := -1
	firstEnd := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		needle := []byte(kw)
		from := 0
		for {
			i := bytes.Index(text[from:], needle)
			if i < 0 {
				break
			}
			at := from + i
			from = at + 1
			if !wordBoundary(text, at, len(kw)) {
				continue
			}
			count++
			if firstAt < 0 || at < firstAt {
				firstAt = at
				firstEnd = at + len(kw)
			}
		}
	}
	if ternary {
		for i, b := range text {
			if b != '?' {
				continue
			}
			count++
			if firstAt < 0 || i < firstAt {
				firstAt = i
				firstEnd = i + 1
			}
		}
	}
	var first source.Span
	if firstAt >= 0 {
		first = source.Span{File: file, Start: base + uint32(firstAt), End: base + uint32(firstEnd)}
	}
	return count, first
}

// region — аргументная область вызова-хелпера: (open, close) по скобкам
type region struct {
	open  int
	close int
}

// argRegions finds the balanced argument regions of helper calls.
func argRegions(text []byte, patterns []string) []region {
	var regs []region
	for _, m := range findCalls(text, patterns) {
		if close := balanceFrom(text, m.paren); close > m.paren {
			regs = append(regs, region{open: m.paren, close: close})
		}
	}
	return regs
}

// balanceFrom returns the offset of the parenthesis matching text[open],
// or -1 when the group never closes. Text is already masked, so strings
// and comments cannot skew the balance.
func balanceFrom(text []byte, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func insideAny(regs []region, off int) bool {
	for _, r := range regs {
		if off > r.open && off < r.close {
			return true
		}
	}
	return false
}

func wordBoundary(text []byte, at, n int) bool {
	if at > 0 && isWordByte(text[at-1]) && isWordByte(text[at]) {
		return false
	}
	end := at + n
	if end < len(text) && isWordByte(text[end]) && isWordByte(text[end-1]) {
		return false
	}
	return true
}

func parenAfter(text []byte, i int) int {
	i = skipSpaces(text, i)
	if i < len(text) && text[i] == '(' {
		return i
	}
	// Constructor-style declarations carry one identifier before the
	// argument list: std::ifstream file("data.txt").
	if i < len(text) && isWordStart(text[i]) {
		j := i
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		j = skipSpaces(text, j)
		if j < len(text) && text[j] == '(' {
			return j
		}
	}
	return -1
}

func skipSpaces(text []byte, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

func isWordStart(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isWordStart(b) || (b >= '0' && b <= '9')
}
