package segment

import "testlint/internal/source"

// Kind различает сегменты с объявлениями и всё остальное
type Kind uint8

const (
	// KindOther is any stretch of input between recognized declarations.
	KindOther Kind = iota
	// KindDeclaration is a recognized declaration with a brace-balanced body.
	KindDeclaration
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindDeclaration:
		return "declaration"
	default:
		return "unknown"
	}
}

// Segment is one contiguous piece of the scanned region. Segments are
// emitted in order and cover the region with no gaps and no overlaps;
// zero-length segments are never emitted.
type Segment struct {
	Kind Kind
	Span source.Span
	// Decl is set only when Kind == KindDeclaration.
	Decl *Decl
}

// Arg is one identifier or string literal argument of a call-shaped
// declaration header, at parenthesis depth one.
type Arg struct {
	// Text is the identifier text, or the string contents without quotes.
	Text string
	Span source.Span
	// IsString marks string literal arguments.
	IsString bool
}

// Decl is the parsed header of a declaration segment.
type Decl struct {
	Form Form
	// Span covers the whole declaration, keyword through closing brace.
	Span source.Span
	// Header covers the keyword up to the opening brace.
	Header source.Span
	// Body covers the inside of the braces, braces excluded.
	Body source.Span
	// Name is the declared name for ShapeFunc and ShapeClass forms.
	Name     string
	NameSpan source.Span
	// Args are the depth-one arguments for ShapeCall and ShapeFunc forms.
	Args []Arg
}

// Idents returns the identifier arguments in order.
func (d *Decl) Idents() []Arg {
	out := make([]Arg, 0, len(d.Args))
	for _, a := range d.Args {
		if !a.IsString {
			out = append(out, a)
		}
	}
	return out
}

// FirstString returns the first string literal argument, if any.
func (d *Decl) FirstString() (Arg, bool) {
	for _, a := range d.Args {
		if a.IsString {
			return a, true
		}
	}
	return Arg{}, false
}

// Reporter это тонкий интерфейс, чтобы не тянуть diag сюда
type Reporter interface {
	Report(kind string, span source.Span, msg string)
}

// Options настраивают сканер
type Options struct {
	// Reporter receives malformed input reports. Nil disables reporting;
	// the scan itself always completes and covers the region either way.
	Reporter Reporter
}

func (o *Options) report(kind string, sp source.Span, msg string) {
	if o == nil || o.Reporter == nil {
		return
	}
	o.Reporter.Report(kind, sp, msg)
}
