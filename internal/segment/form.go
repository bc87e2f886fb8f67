package segment

// FormKind классифицирует распознанное объявление
type FormKind uint8

const (
	// FormTest is a standalone test case declaration.
	FormTest FormKind = iota
	// FormFixtureTest is a test case bound to a fixture scope.
	FormFixtureTest
	// FormSetup is a fixture setup declaration.
	FormSetup
	// FormTeardown is a fixture teardown declaration.
	FormTeardown
	// FormFixtureClass is a fixture declared as a marked class or struct body.
	FormFixtureClass
)

func (k FormKind) String() string {
	switch k {
	case FormTest:
		return "test"
	case FormFixtureTest:
		return "fixture-test"
	case FormSetup:
		return "setup"
	case FormTeardown:
		return "teardown"
	case FormFixtureClass:
		return "fixture-class"
	default:
		return "unknown"
	}
}

// Shape задает структуру заголовка объявления
type Shape uint8

const (
	// ShapeCall matches KEYWORD(args...) { body }.
	ShapeCall Shape = iota
	// ShapeFunc matches KEYWORD Name(args...) { body }.
	ShapeFunc
	// ShapeClass matches KEYWORD Name ...marker... { body }.
	ShapeClass
)

// Form is one recognizable declaration grammar. A dialect preset is a list
// of forms; the scanner tries every form registered for a keyword and takes
// the first one whose structure matches.
type Form struct {
	Kind  FormKind
	Shape Shape
	// Keyword is the exact identifier that opens the declaration.
	Keyword string
	// Marker is a required substring: in the class header for ShapeClass,
	// in the parameter list for ShapeFunc. Empty means no marker check.
	Marker string
	// NamePrefix restricts ShapeFunc declarations to names with this prefix.
	NamePrefix string
	// NameFromString takes the case name from the first string argument
	// instead of an identifier argument.
	NameFromString bool
	// SuiteFromFile derives the suite name from the file stem because the
	// form carries no suite identifier of its own.
	SuiteFromFile bool
}
