package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"testlint/internal/diag"
	"testlint/internal/source"
)

// Цвета в стиле компиляторных диагностик.
var (
	prettyErrorColor   = color.New(color.FgRed, color.Bold)
	prettyWarningColor = color.New(color.FgYellow, color.Bold)
	prettyInfoColor    = color.New(color.FgCyan, color.Bold)
	prettyCaretColor   = color.New(color.FgGreen, color.Bold)
	prettyPathColor    = color.New(color.Bold)
)

const tabStop = "    "

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по списку как есть (ожидается diag.Order заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> [<id>]: <Message> (in <Suite>.<Case>)
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	for i := range items {
		printDiagnostic(w, &items[i], fs, opts)
	}
}

func printDiagnostic(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := d.Severity.String()
	if opts.Color {
		sev = paint(severityColor(d.Severity), sev)
	}

	file := spanFile(fs, d.Primary)
	if file == nil {
		// Диагностика уровня запуска, позиции нет.
		fmt.Fprintf(w, "%s [%s]: %s\n", sev, d.Code.ID(), d.Message)
	} else {
		start, end := fs.Resolve(d.Primary)
		header := fmt.Sprintf("%s:%d:%d:", formatPath(file, fs, opts.PathMode), start.Line, start.Col)
		if opts.Color {
			header = paint(prettyPathColor, header)
		}
		fmt.Fprintf(w, "%s %s [%s]: %s", header, sev, d.Code.ID(), d.Message)
		if !d.Test.Empty() {
			fmt.Fprintf(w, " (in %s)", d.Test)
		}
		fmt.Fprintln(w)

		printContext(w, file, start, end, opts)
	}

	if opts.ShowNotes {
		for i := range d.Notes {
			printNote(w, &d.Notes[i], fs, opts)
		}
	}
}

// printContext печатает строки вокруг начала спана с подчёркиванием ^~~~
// под помеченным участком. Колонки в LineCol байтовые, поэтому участок
// вырезается по байтам, а ширина подчёркивания считается по рунам.
func printContext(w io.Writer, file *source.File, start, end source.LineCol, opts PrettyOpts) {
	if opts.Context < 0 {
		return
	}
	primary := file.GetLine(start.Line)
	if primary == "" {
		// Пустой или нечитаемый источник, подчёркивать нечего.
		return
	}

	ctx := uint32(opts.Context)
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	if total := lineTotal(file); last > total {
		last = total
	}

	for lineNum := first; lineNum <= last; lineNum++ {
		text := expandTabs(file.GetLine(lineNum))
		if lineNum != start.Line {
			if opts.Width > 0 {
				text = truncateLine(text, int(opts.Width))
			}
			fmt.Fprintf(w, "%6d | %s\n", lineNum, text)
			continue
		}

		fmt.Fprintf(w, "%6d | %s\n", lineNum, text)
		pad, underline := underlineFor(primary, start, end)
		if opts.Color {
			underline = paint(prettyCaretColor, underline)
		}
		fmt.Fprintf(w, "       | %s%s\n", pad, underline)
	}
}

func printNote(w io.Writer, note *diag.Note, fs *source.FileSet, opts PrettyOpts) {
	label := "note"
	if opts.Color {
		label = paint(prettyInfoColor, label)
	}
	if f := spanFile(fs, note.Span); f != nil && !note.Span.Empty() {
		start, _ := fs.Resolve(note.Span)
		fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", label, formatPath(f, fs, opts.PathMode), start.Line, start.Col, note.Msg)
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, note.Msg)
}

// underlineFor строит отступ и строку ^~~~ для помеченного участка.
// Отступ повторяет ширину текста слева от спана, чтобы каретка встала
// под первым помеченным символом и при развёрнутых табах.
func underlineFor(line string, start, end source.LineCol) (pad, underline string) {
	startByte := int(start.Col) - 1
	if startByte > len(line) {
		startByte = len(line)
	}
	endByte := len(line)
	if end.Line == start.Line && int(end.Col)-1 < endByte {
		endByte = int(end.Col) - 1
	}
	if endByte < startByte {
		endByte = startByte
	}

	pad = strings.Repeat(" ", runewidth.StringWidth(expandTabs(line[:startByte])))
	width := runewidth.StringWidth(expandTabs(line[startByte:endByte]))
	if width < 1 {
		width = 1
	}
	underline = "^" + strings.Repeat("~", width-1)
	return pad, underline
}

func lineTotal(file *source.File) uint32 {
	return uint32(len(file.LineIdx)) + 1
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", tabStop)
}

func truncateLine(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return prettyErrorColor
	case diag.SevWarning:
		return prettyWarningColor
	default:
		return prettyInfoColor
	}
}

// paint принудительно включает цвет: вывод может идти не в терминал
// (буфер в тестах), а выбор уже сделан опцией.
func paint(c *color.Color, s string) string {
	c.EnableColor()
	return c.Sprint(s)
}
