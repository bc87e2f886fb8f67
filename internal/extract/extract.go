package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"testlint/internal/diag"
	"testlint/internal/segment"
	"testlint/internal/source"
)

type Options struct {
	// MethodForms are searched inside fixture class bodies to find setup
	// and teardown methods.
	MethodForms []segment.Form
	Syntax      segment.Syntax
	Interner    *source.Interner
	Reporter    diag.Reporter
}

// TestCase — один извлечённый тест-кейс
type TestCase struct {
	Suite source.StringID
	Name  source.StringID
	// Fixture is NoStringID when the case names no fixture.
	Fixture source.StringID
	// Linked is true when the named fixture exists in the same file.
	// An orphan reference keeps Fixture set and Linked false.
	Linked bool
	// Decl covers the whole declaration, Body the inside of its braces.
	Decl source.Span
	Body source.Span
	// Raw aliases the file content of Body, no copy is made.
	Raw []byte
}

// HasFixture reports whether the case names a fixture, resolved or not.
func (c *TestCase) HasFixture() bool {
	return c.Fixture != source.NoStringID
}

// Fixture — извлечённая фикстура: класс с маркером либо setup/teardown макросы
type Fixture struct {
	Name source.StringID
	Decl source.Span
	Body source.Span
	// Setup and Teardown are declaration spans; zero when absent.
	Setup    source.Span
	Teardown source.Span
}

func (f *Fixture) HasSetup() bool    { return !f.Setup.Empty() }
func (f *Fixture) HasTeardown() bool { return !f.Teardown.Empty() }

type Result struct {
	Cases    []TestCase
	Fixtures []Fixture
	Interner *source.Interner
}

// FixtureByName returns the fixture with the given name, if present.
func (r *Result) FixtureByName(name source.StringID) (*Fixture, bool) {
	for i := range r.Fixtures {
		if r.Fixtures[i].Name == name {
			return &r.Fixtures[i], true
		}
	}
	return nil, false
}

// Extract — входная точка: собирает тест-кейсы и фикстуры из сегментов
// одного файла. Дубликаты имён и ссылки на несуществующие фикстуры
// репортятся через opts.Reporter.
func Extract(f *source.File, segs []segment.Segment, opts Options) Result {
	if opts.Interner == nil {
		opts.Interner = source.NewInterner()
	}
	e := extractor{
		file:       f,
		opts:       opts,
		fixtureIdx: make(map[source.StringID]int),
		seen:       make(map[caseKey]source.Span),
	}

	for i := range segs {
		sg := &segs[i]
		if sg.Kind != segment.KindDeclaration {
			continue
		}
		d := sg.Decl
		switch d.Form.Kind {
		case segment.FormTest, segment.FormFixtureTest:
			e.addCase(d)
		case segment.FormFixtureClass:
			e.addClassFixture(d)
		case segment.FormSetup:
			e.addMethodFixture(d, true)
		case segment.FormTeardown:
			e.addMethodFixture(d, false)
		}
	}
	e.link()

	return Result{
		Cases:    e.cases,
		Fixtures: e.fixtures,
		Interner: opts.Interner,
	}
}

type caseKey struct {
	suite source.StringID
	name  source.StringID
}

type extractor struct {
	file       *source.File
	opts       Options
	cases      []TestCase
	fixtures   []Fixture
	fixtureIdx map[source.StringID]int
	seen       map[caseKey]source.Span
}

func (e *extractor) addCase(d *segment.Decl) {
	suiteText, caseText, fixtureText, ok := caseNames(d, e.file.Path)
	if !ok {
		// Not every match has usable names; such declarations are
		// skipped, not reported.
		return
	}

	in := e.opts.Interner
	tc := TestCase{
		Suite: in.Intern(suiteText),
		Name:  in.Intern(caseText),
		Decl:  d.Span,
		Body:  d.Body,
		Raw:   e.file.Content[d.Body.Start:d.Body.End],
	}
	if fixtureText != "" {
		tc.Fixture = in.Intern(fixtureText)
	}

	key := caseKey{suite: tc.Suite, name: tc.Name}
	if first, dup := e.seen[key]; dup {
		diag.Report(e.opts.Reporter, diag.ExtractDuplicateTestName, d.Span,
			fmt.Sprintf("duplicate test name %s.%s", suiteText, caseText)).
			WithNote(first, "first declared here").
			ForTest(suiteText, caseText).
			Emit()
	} else {
		e.seen[key] = d.Span
	}
	e.cases = append(e.cases, tc)
}

func (e *extractor) addClassFixture(d *segment.Decl) {
	if d.Name == "" {
		return
	}
	nameID := e.opts.Interner.Intern(d.Name)
	if _, exists := e.fixtureIdx[nameID]; exists {
		// Первое объявление выигрывает.
		return
	}

	fx := Fixture{Name: nameID, Decl: d.Span, Body: d.Body}
	if len(e.opts.MethodForms) > 0 && !d.Body.Empty() {
		// Некорректный ввод внутри тела уже отрепорчен верхним проходом.
		nested := segment.ScanRegion(e.file, d.Body, e.opts.MethodForms, e.opts.Syntax, nil)
		for _, sg := range nested {
			if sg.Kind != segment.KindDeclaration {
				continue
			}
			switch sg.Decl.Form.Kind {
			case segment.FormSetup:
				if fx.Setup.Empty() {
					fx.Setup = sg.Decl.Span
				}
			case segment.FormTeardown:
				if fx.Teardown.Empty() {
					fx.Teardown = sg.Decl.Span
				}
			}
		}
	}
	e.fixtureIdx[nameID] = len(e.fixtures)
	e.fixtures = append(e.fixtures, fx)
}

// addMethodFixture handles dialects that declare setup and teardown as
// standalone scoped macros rather than methods of a marked class.
func (e *extractor) addMethodFixture(d *segment.Decl, setup bool) {
	var nameID source.StringID
	switch {
	case d.Name != "":
		// Function-shaped declarations (TestMain) name the fixture
		// themselves; the argument idents are parameters.
		nameID = e.opts.Interner.Intern(d.Name)
	case len(d.Idents()) > 0:
		nameID = e.opts.Interner.Intern(d.Idents()[0].Text)
	default:
		return
	}

	idx, ok := e.fixtureIdx[nameID]
	if !ok {
		idx = len(e.fixtures)
		e.fixtureIdx[nameID] = idx
		e.fixtures = append(e.fixtures, Fixture{Name: nameID, Decl: d.Span, Body: d.Body})
	}
	fx := &e.fixtures[idx]
	if setup {
		if fx.Setup.Empty() {
			fx.Setup = d.Span
		}
	} else if fx.Teardown.Empty() {
		fx.Teardown = d.Span
	}
}

// link resolves fixture references; unresolved ones are reported as orphans.
func (e *extractor) link() {
	in := e.opts.Interner
	for i := range e.cases {
		c := &e.cases[i]
		if c.Fixture == source.NoStringID {
			continue
		}
		if _, ok := e.fixtureIdx[c.Fixture]; ok {
			c.Linked = true
			continue
		}
		diag.Report(e.opts.Reporter, diag.ExtractOrphanFixtureRef, c.Decl,
			fmt.Sprintf("test references fixture %s, which is not declared in this file", in.MustLookup(c.Fixture))).
			ForTest(in.MustLookup(c.Suite), in.MustLookup(c.Name)).
			Emit()
	}
}

// caseNames resolves the suite, case and fixture names of a declaration.
func caseNames(d *segment.Decl, path string) (suite, name, fixture string, ok bool) {
	idents := d.Idents()

	switch {
	case d.Form.NameFromString:
		arg, found := d.FirstString()
		if !found || arg.Text == "" {
			return "", "", "", false
		}
		name = arg.Text
	case d.Form.Shape == segment.ShapeFunc:
		name = d.Name
	default:
		if len(idents) < 2 {
			return "", "", "", false
		}
		name = idents[1].Text
	}
	if name == "" {
		return "", "", "", false
	}

	if d.Form.Kind == segment.FormFixtureTest {
		if len(idents) < 1 {
			return "", "", "", false
		}
		fixture = idents[0].Text
	}

	switch {
	case d.Form.SuiteFromFile:
		suite = FileStem(path)
	case fixture != "":
		suite = fixture
	case len(idents) > 0:
		suite = idents[0].Text
	default:
		return "", "", "", false
	}
	return suite, name, fixture, true
}

// FileStem derives the suite name for forms without a suite identifier:
// the base name without extension and without a trailing _test.
func FileStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if trimmed := strings.TrimSuffix(stem, "_test"); trimmed != "" {
		stem = trimmed
	}
	if stem == "" {
		stem = base
	}
	return stem
}
