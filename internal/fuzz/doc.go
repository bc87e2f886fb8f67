
// Package fuzztests houses Go fuzz harnesses that exercise the early
// analysis pipeline (source -> segmenter -> extractor -> rules). Its goal
// is to smoke test robustness and guard against panics or allocator
// explosions on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet
// и прогоняют их через сегментер и полный конвейер анализа.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/segment, internal/dialect,
// internal/driver, internal/testkit.

package fuzztests
