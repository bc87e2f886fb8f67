package segment

// Mask returns a copy of text with comment and string literal interiors
// replaced by spaces. Newlines survive, so offsets and line numbers in the
// masked copy keep their meaning. Pattern counting runs over the masked
// text so that a keyword inside a comment or a string never matches.
func Mask(text []byte, syn Syntax) []byte {
	out := make([]byte, len(text))
	copy(out, text)
	i := 0
	for i < len(text) {
		switch {
		case hasPrefixAt(text, i, syn.LineComments):
			for i < len(text) && text[i] != '\n' {
				out[i] = ' '
				i++
			}
		case syn.BlockOpen != "" && hasPrefix(text, i, syn.BlockOpen):
			for j := 0; j < len(syn.BlockOpen); j++ {
				out[i] = ' '
				i++
			}
			for i < len(text) && !hasPrefix(text, i, syn.BlockClose) {
				blank(out, i)
				i++
			}
			for j := 0; j < len(syn.BlockClose) && i < len(text); j++ {
				out[i] = ' '
				i++
			}
		case text[i] == '"':
			out[i] = ' '
			i++
			for i < len(text) {
				if text[i] == '\\' && i+1 < len(text) {
					blank(out, i)
					blank(out, i+1)
					i += 2
					continue
				}
				if text[i] == '"' {
					out[i] = ' '
					i++
					break
				}
				if text[i] == '\n' {
					break
				}
				blank(out, i)
				i++
			}
		case text[i] == '\'' && syn.CharLiterals:
			out[i] = ' '
			i++
			for i < len(text) {
				if text[i] == '\\' && i+1 < len(text) {
					blank(out, i)
					blank(out, i+1)
					i += 2
					continue
				}
				if text[i] == '\'' {
					out[i] = ' '
					i++
					break
				}
				if text[i] == '\n' {
					break
				}
				blank(out, i)
				i++
			}
		case text[i] == '`' && syn.RawStrings:
			out[i] = ' '
			i++
			for i < len(text) && text[i] != '`' {
				blank(out, i)
				i++
			}
			if i < len(text) {
				out[i] = ' '
				i++
			}
		default:
			i++
		}
	}
	return out
}

// blank replaces one byte with a space, preserving newlines.
func blank(out []byte, i int) {
	if out[i] != '\n' {
		out[i] = ' '
	}
}

func hasPrefix(text []byte, i int, p string) bool {
	if i+len(p) > len(text) {
		return false
	}
	return string(text[i:i+len(p)]) == p
}

func hasPrefixAt(text []byte, i int, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(text, i, p) {
			return true
		}
	}
	return false
}
