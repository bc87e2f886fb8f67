package segment

import (
	"bytes"
	"strings"

	"testlint/internal/source"
)

// Malformed input kinds passed to the Reporter.
const (
	MalformedString       = "unterminated-string"
	MalformedBlockComment = "unterminated-block-comment"
	MalformedDeclaration  = "unterminated-declaration"
)

// Scan segments the whole file against the given declaration forms.
// The result covers the file: every byte belongs to exactly one segment.
func Scan(f *source.File, forms []Form, syn Syntax, opts *Options) []Segment {
	cur := NewCursor(f)
	region := source.Span{File: f.ID, Start: 0, End: cur.limit()}
	return ScanRegion(f, region, forms, syn, opts)
}

// ScanRegion segments one span of the file. Nested scans use this to walk
// fixture class bodies with method forms.
func ScanRegion(f *source.File, region source.Span, forms []Form, syn Syntax, opts *Options) []Segment {
	if region.Empty() {
		return nil
	}
	s := &scanner{
		cur:      NewRegionCursor(f, region),
		syn:      syn,
		forms:    groupForms(forms),
		opts:     opts,
		segStart: region.Start,
	}
	s.run()
	return s.segs
}

type scanner struct {
	cur      Cursor
	syn      Syntax
	forms    map[string][]Form
	opts     *Options
	segs     []Segment
	segStart uint32
	// stuck is set when malformed input forced the scan to the region end.
	stuck bool
}

func (s *scanner) run() {
	for !s.cur.EOF() && !s.stuck {
		b := s.cur.Peek()
		switch {
		case s.atLineComment():
			s.skipLineComment()
		case s.atBlockOpen():
			s.skipBlockComment()
		case b == '"':
			s.scanString()
		case b == '\'' && s.syn.CharLiterals:
			s.skipChar()
		case b == '`' && s.syn.RawStrings:
			s.scanRaw()
		case isIdentStart(b):
			s.word()
		case isDigit(b):
			// Consume the whole alphanumeric run so a keyword glued to a
			// number (1TEST) keeps its word boundary.
			s.cur.Bump()
			for !s.cur.EOF() && isIdentPart(s.cur.Peek()) {
				s.cur.Bump()
			}
		default:
			s.cur.Bump()
		}
	}
	s.flushOther(s.cur.limit())
}

// word reads an identifier and, if it opens a known form, tries to match a
// full declaration from it.
func (s *scanner) word() {
	start := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() && isIdentPart(s.cur.Peek()) {
		s.cur.Bump()
	}
	after := s.cur.Mark()
	w := string(s.cur.File.Content[uint32(start):uint32(after)])
	forms, ok := s.forms[w]
	if !ok {
		return
	}
	for _, form := range forms {
		decl, matched := s.match(form, start)
		if matched {
			s.flushOther(uint32(start))
			s.segs = append(s.segs, Segment{Kind: KindDeclaration, Span: decl.Span, Decl: decl})
			s.segStart = decl.Span.End
			return
		}
		if s.stuck {
			return
		}
		// Rewind to just past the keyword so the argument region gets
		// rescanned for other occurrences.
		s.cur.Reset(after)
	}
}

func (s *scanner) match(form Form, kwStart Mark) (*Decl, bool) {
	d := &Decl{Form: form}

	switch form.Shape {
	case ShapeCall:
		s.skipTrivia()
		if s.cur.Peek() != '(' {
			return nil, false
		}
		if !s.parseArgs(d, kwStart) {
			return nil, false
		}
		if !s.skipHeaderGap(kwStart) {
			return nil, false
		}
	case ShapeFunc:
		if !s.parseName(d, form) {
			return nil, false
		}
		s.skipTrivia()
		if s.cur.Peek() != '(' {
			return nil, false
		}
		argsMark := s.cur.Mark()
		if !s.parseArgs(d, kwStart) {
			return nil, false
		}
		if form.Marker != "" && !containsMarker(s.cur.File, s.cur.SpanFrom(argsMark), form.Marker) {
			return nil, false
		}
		if !s.skipHeaderGap(kwStart) {
			return nil, false
		}
	case ShapeClass:
		if !s.parseName(d, form) {
			return nil, false
		}
		if !s.classHeader(form, kwStart) {
			return nil, false
		}
	default:
		return nil, false
	}

	// Cursor is at the opening brace.
	d.Header = source.Span{File: s.cur.File.ID, Start: uint32(kwStart), End: s.cur.Off}
	body, ok := s.parseBody(kwStart)
	if !ok {
		return nil, false
	}
	d.Body = body
	d.Span = source.Span{File: s.cur.File.ID, Start: uint32(kwStart), End: s.cur.Off}
	return d, true
}

// parseName reads the declared name for ShapeFunc and ShapeClass forms.
func (s *scanner) parseName(d *Decl, form Form) bool {
	s.skipTrivia()
	if s.stuck || !isIdentStart(s.cur.Peek()) {
		return false
	}
	m := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() && isIdentPart(s.cur.Peek()) {
		s.cur.Bump()
	}
	sp := s.cur.SpanFrom(m)
	name := string(s.cur.File.Content[sp.Start:sp.End])
	if form.NamePrefix != "" {
		if !strings.HasPrefix(name, form.NamePrefix) || name == form.NamePrefix {
			return false
		}
	}
	d.Name = name
	d.NameSpan = sp
	return true
}

// parseArgs consumes a balanced parenthesis group starting at '(' and
// collects depth-one identifier and string arguments.
func (s *scanner) parseArgs(d *Decl, kwStart Mark) bool {
	s.cur.Bump()
	depth := 1
	for !s.cur.EOF() {
		b := s.cur.Peek()
		switch {
		case s.atLineComment():
			s.skipLineComment()
		case s.atBlockOpen():
			s.skipBlockComment()
			if s.stuck {
				return false
			}
		case b == '"':
			m := s.cur.Mark()
			_, closed := s.scanString()
			if s.stuck {
				return false
			}
			if closed && depth == 1 {
				sp := s.cur.SpanFrom(m)
				d.Args = append(d.Args, Arg{
					Text:     string(s.cur.File.Content[sp.Start+1 : sp.End-1]),
					Span:     sp,
					IsString: true,
				})
			}
		case b == '\'' && s.syn.CharLiterals:
			s.skipChar()
		case b == '`' && s.syn.RawStrings:
			m := s.cur.Mark()
			_, closed := s.scanRaw()
			if s.stuck {
				return false
			}
			if closed && depth == 1 {
				sp := s.cur.SpanFrom(m)
				d.Args = append(d.Args, Arg{
					Text:     string(s.cur.File.Content[sp.Start+1 : sp.End-1]),
					Span:     sp,
					IsString: true,
				})
			}
		case b == '(':
			s.cur.Bump()
			depth++
		case b == ')':
			s.cur.Bump()
			depth--
			if depth == 0 {
				return true
			}
		case b == '{' || b == '}':
			// Braces inside an argument list mean this is not a
			// declaration header.
			return false
		case isIdentStart(b):
			m := s.cur.Mark()
			s.cur.Bump()
			for !s.cur.EOF() && isIdentPart(s.cur.Peek()) {
				s.cur.Bump()
			}
			if depth == 1 {
				sp := s.cur.SpanFrom(m)
				d.Args = append(d.Args, Arg{
					Text: string(s.cur.File.Content[sp.Start:sp.End]),
					Span: sp,
				})
			}
		default:
			s.cur.Bump()
		}
	}
	s.reportStuck(MalformedDeclaration, kwStart, "declaration header is not closed before end of input")
	return false
}

// skipHeaderGap walks from the argument list to the opening brace.
// Whitespace, comments and bare identifiers (override and friends) are
// allowed; anything else means this is not a declaration.
func (s *scanner) skipHeaderGap(kwStart Mark) bool {
	for {
		s.skipTrivia()
		if s.stuck {
			return false
		}
		if s.cur.EOF() {
			s.reportStuck(MalformedDeclaration, kwStart, "declaration header is not closed before end of input")
			return false
		}
		b := s.cur.Peek()
		if b == '{' {
			return true
		}
		if !isIdentStart(b) {
			return false
		}
		s.cur.Bump()
		for !s.cur.EOF() && isIdentPart(s.cur.Peek()) {
			s.cur.Bump()
		}
	}
}

// classHeader walks a class or struct header up to its opening brace and
// checks the fixture marker. A semicolon first means a forward declaration.
func (s *scanner) classHeader(form Form, kwStart Mark) bool {
	m := s.cur.Mark()
	for {
		if s.stuck {
			return false
		}
		if s.cur.EOF() {
			if form.Marker != "" && containsMarker(s.cur.File, s.cur.SpanFrom(m), form.Marker) {
				s.reportStuck(MalformedDeclaration, kwStart, "declaration header is not closed before end of input")
			}
			return false
		}
		b := s.cur.Peek()
		switch {
		case s.atLineComment():
			s.skipLineComment()
		case s.atBlockOpen():
			s.skipBlockComment()
		case b == '"':
			s.scanString()
		case b == '\'' && s.syn.CharLiterals:
			s.skipChar()
		case b == '{':
			if form.Marker != "" && !containsMarker(s.cur.File, s.cur.SpanFrom(m), form.Marker) {
				return false
			}
			return true
		case b == ';' || b == '}' || b == ')':
			return false
		default:
			s.cur.Bump()
		}
	}
}

// parseBody consumes a brace-balanced body starting at '{'. The returned
// span excludes the braces themselves.
func (s *scanner) parseBody(kwStart Mark) (source.Span, bool) {
	open := s.cur.Off
	s.cur.Bump()
	depth := 1
	for !s.cur.EOF() && !s.stuck {
		b := s.cur.Peek()
		switch {
		case s.atLineComment():
			s.skipLineComment()
		case s.atBlockOpen():
			s.skipBlockComment()
		case b == '"':
			s.scanString()
		case b == '\'' && s.syn.CharLiterals:
			s.skipChar()
		case b == '`' && s.syn.RawStrings:
			s.scanRaw()
		case b == '{':
			s.cur.Bump()
			depth++
		case b == '}':
			s.cur.Bump()
			depth--
			if depth == 0 {
				return source.Span{File: s.cur.File.ID, Start: open + 1, End: s.cur.Off - 1}, true
			}
		default:
			s.cur.Bump()
		}
	}
	if !s.stuck {
		s.reportStuck(MalformedDeclaration, kwStart, "declaration body is not closed before end of input")
	}
	return source.Span{}, false
}

func (s *scanner) skipTrivia() {
	for !s.cur.EOF() && !s.stuck {
		b := s.cur.Peek()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			s.cur.Bump()
		case s.atLineComment():
			s.skipLineComment()
		case s.atBlockOpen():
			s.skipBlockComment()
		default:
			return
		}
	}
}

func (s *scanner) atLineComment() bool {
	for _, p := range s.syn.LineComments {
		if s.cur.HasPrefix(p) {
			return true
		}
	}
	return false
}

func (s *scanner) atBlockOpen() bool {
	return s.syn.BlockOpen != "" && s.cur.HasPrefix(s.syn.BlockOpen)
}

func (s *scanner) skipLineComment() {
	for !s.cur.EOF() && s.cur.Peek() != '\n' {
		s.cur.Bump()
	}
}

func (s *scanner) skipBlockComment() {
	m := s.cur.Mark()
	for i := 0; i < len(s.syn.BlockOpen); i++ {
		s.cur.Bump()
	}
	for !s.cur.EOF() {
		if s.cur.HasPrefix(s.syn.BlockClose) {
			for i := 0; i < len(s.syn.BlockClose); i++ {
				s.cur.Bump()
			}
			return
		}
		s.cur.Bump()
	}
	s.reportStuck(MalformedBlockComment, m, "block comment is not closed before end of input")
}

// scanString consumes a double-quoted string with backslash escapes.
// A missing quote recovers at end of line so one typo does not swallow
// the rest of the file; at end of input it is reported as malformed.
func (s *scanner) scanString() (source.Span, bool) {
	m := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() {
		b := s.cur.Peek()
		if b == '\\' {
			s.cur.Bump()
			s.cur.Bump()
			continue
		}
		if b == '"' {
			s.cur.Bump()
			return s.cur.SpanFrom(m), true
		}
		if b == '\n' {
			return s.cur.SpanFrom(m), false
		}
		s.cur.Bump()
	}
	s.reportStuck(MalformedString, m, "string literal is not closed before end of input")
	return s.cur.SpanFrom(m), false
}

// skipChar consumes a single-quoted literal. Apostrophes double as digit
// separators in C++, so imbalance here recovers silently.
func (s *scanner) skipChar() {
	s.cur.Bump()
	for !s.cur.EOF() {
		b := s.cur.Peek()
		if b == '\\' {
			s.cur.Bump()
			s.cur.Bump()
			continue
		}
		if b == '\'' {
			s.cur.Bump()
			return
		}
		if b == '\n' {
			return
		}
		s.cur.Bump()
	}
}

func (s *scanner) scanRaw() (source.Span, bool) {
	m := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() {
		if s.cur.Peek() == '`' {
			s.cur.Bump()
			return s.cur.SpanFrom(m), true
		}
		s.cur.Bump()
	}
	s.reportStuck(MalformedString, m, "raw string literal is not closed before end of input")
	return s.cur.SpanFrom(m), false
}

func (s *scanner) reportStuck(kind string, from Mark, msg string) {
	s.stuck = true
	s.opts.report(kind, s.cur.SpanFrom(from), msg)
}

func (s *scanner) flushOther(upTo uint32) {
	if upTo > s.segStart {
		s.segs = append(s.segs, Segment{
			Kind: KindOther,
			Span: source.Span{File: s.cur.File.ID, Start: s.segStart, End: upTo},
		})
	}
	s.segStart = upTo
}

func groupForms(forms []Form) map[string][]Form {
	m := make(map[string][]Form, len(forms))
	for _, f := range forms {
		m[f.Keyword] = append(m[f.Keyword], f)
	}
	return m
}

func containsMarker(f *source.File, sp source.Span, marker string) bool {
	return bytes.Contains(f.Content[sp.Start:sp.End], []byte(marker))
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
