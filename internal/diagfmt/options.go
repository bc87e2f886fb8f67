package diagfmt

import (
	"testlint/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста вокруг спана, отрицательное - без контекста
	PathMode  PathMode
	Width     uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не исходного списка
	IncludeNotes     bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

// formatPath применяет режим отображения к пути файла.
func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	default:
		return f.Path
	}
}

// spanFile возвращает файл спана или nil, если спан не разрешается в этом
// FileSet. Служебные диагностики уровня запуска (тайминги) не привязаны к
// файлу и несут source.NoFile.
func spanFile(fs *source.FileSet, span source.Span) *source.File {
	if fs == nil || span.File == source.NoFile || int(span.File) >= fs.Len() {
		return nil
	}
	return fs.Get(span.File)
}
