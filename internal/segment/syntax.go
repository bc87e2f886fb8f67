package segment

// Syntax описывает строковый и комментарный синтаксис сканируемого языка.
// Сегментатору не нужна полная грамматика: достаточно знать, какие байты
// нужно пропускать как текст, чтобы скобочный баланс считался честно.
type Syntax struct {
	// LineComments are comment prefixes that run to the end of the line.
	LineComments []string
	// BlockOpen and BlockClose delimit non-nesting block comments.
	// Empty BlockOpen disables block comments.
	BlockOpen  string
	BlockClose string
	// CharLiterals enables single-quoted literals with backslash escapes.
	CharLiterals bool
	// RawStrings enables backtick-delimited strings without escapes.
	RawStrings bool
}

// CSyntax covers C, C++ and the rest of the curly-brace family.
func CSyntax() Syntax {
	return Syntax{
		LineComments: []string{"//"},
		BlockOpen:    "/*",
		BlockClose:   "*/",
		CharLiterals: true,
	}
}

// GoSyntax is CSyntax plus raw strings.
func GoSyntax() Syntax {
	s := CSyntax()
	s.RawStrings = true
	return s
}
