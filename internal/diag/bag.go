package diag

import (
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// HasAtLeast reports whether any diagnostic reaches the given severity.
func (b *Bag) HasAtLeast(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

// CountBySeverity returns per-severity totals in a single pass.
func (b *Bag) CountBySeverity() (errors, warnings, infos int) {
	for i := range b.items {
		switch b.items[i].Severity {
		case SevError:
			errors++
		case SevWarning:
			warnings++
		case SevInfo:
			infos++
		}
	}
	return errors, warnings, infos
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort сортирует диагностики по: file, start, end, rule id (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	Order(b.items)
}

// Order sorts a diagnostic slice in place using the same key as Bag.Sort.
func Order(items []Diagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i], items[j]
		// сначала по файлу
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		// затем по старту
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		// затем по концу
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		// затем по rule id (по возрастанию)
		return di.Code.ID() < dj.Code.ID()
	})
}
