package dialect

import "fmt"

// Kind represents a test-framework dialect that a source file may be
// written against.
type Kind uint8

const (
	Unknown Kind = iota
	GoogleTest
	Catch2
	GoTest
	Generic

	kindCount
)

func (k Kind) String() string {
	switch k {
	case GoogleTest:
		return "googletest"
	case Catch2:
		return "catch2"
	case GoTest:
		return "gotest"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("Kind(%s)", k.String())
}

// ParseKind maps a configuration value to a dialect kind. The value "auto"
// yields Unknown, which callers treat as "classify per file".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "auto", "":
		return Unknown, nil
	case "googletest":
		return GoogleTest, nil
	case "catch2":
		return Catch2, nil
	case "gotest":
		return GoTest, nil
	case "generic":
		return Generic, nil
	default:
		return Unknown, fmt.Errorf("unknown dialect %q (want auto, googletest, catch2, gotest or generic)", s)
	}
}

// Kinds lists the concrete dialects in presentation order.
func Kinds() []Kind {
	return []Kind{GoogleTest, Catch2, GoTest, Generic}
}
