package source

import (
	"fmt"
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован для пустой строки
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID должен возвращать пустую строку, получили: %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("CalculatorTest")
	if id1 == NoStringID {
		t.Error("Intern не должен возвращать NoStringID для непустой строки")
	}

	// Повторный Intern той же строки должен вернуть тот же ID
	id2 := interner.Intern("CalculatorTest")
	if id1 != id2 {
		t.Errorf("Intern должен возвращать одинаковые ID для одинаковых строк: %d != %d", id1, id2)
	}

	if s, ok := interner.Lookup(id1); !ok || s != "CalculatorTest" {
		t.Errorf("Lookup вернул неверную строку: %q, ok=%v", s, ok)
	}

	id3 := interner.Intern("Addition")
	if id3 == id1 {
		t.Error("Разные строки должны иметь разные ID")
	}

	if interner.Len() != 3 { // "", "CalculatorTest", "Addition"
		t.Errorf("Len должен быть 3, получили: %d", interner.Len())
	}
}

func TestInternerBytes(t *testing.T) {
	interner := NewInterner()

	id1 := interner.InternBytes([]byte("WithSleep"))
	id2 := interner.Intern("WithSleep")

	if id1 != id2 {
		t.Errorf("InternBytes и Intern должны возвращать одинаковые ID для одной строки: %d != %d", id1, id2)
	}
}

func TestInternerHas(t *testing.T) {
	interner := NewInterner()

	if !interner.Has(NoStringID) {
		t.Error("Has должен возвращать true для NoStringID")
	}

	id := interner.Intern("test")
	if !interner.Has(id) {
		t.Error("Has должен возвращать true для валидного ID")
	}

	if interner.Has(StringID(9999)) {
		t.Error("Has должен возвращать false для несуществующего ID")
	}
}

func TestInternerMustLookup(t *testing.T) {
	interner := NewInterner()

	id := interner.Intern("test")
	s := interner.MustLookup(id)
	if s != "test" {
		t.Errorf("MustLookup вернул неверную строку: %q", s)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup должен паниковать для невалидного ID")
		}
	}()
	interner.MustLookup(StringID(9999))
}

func TestInternerSnapshot(t *testing.T) {
	interner := NewInterner()

	interner.Intern("hello")
	interner.Intern("world")

	snapshot := interner.Snapshot()
	if len(snapshot) != 3 { // "", "hello", "world"
		t.Errorf("Snapshot должен содержать 3 элемента, получили: %d", len(snapshot))
	}

	// Изменение snapshot не влияет на interner
	snapshot[0] = "modified"
	if s, _ := interner.Lookup(NoStringID); s != "" {
		t.Error("Изменение snapshot не должно влиять на interner")
	}
}

// Тест на корректность копирования строк
func TestInternerStringCopy(t *testing.T) {
	interner := NewInterner()

	buf := []byte("original")
	id := interner.InternBytes(buf)

	// Изменяем исходный буфер
	buf[0] = 'X'

	if s, ok := interner.Lookup(id); !ok || s != "original" {
		t.Errorf("Interner должен сохранять копию строки, получили: %q", s)
	}
}

func TestInternerConcurrentIntern(t *testing.T) {
	interner := NewInterner()
	const numGoroutines = 50
	const numStrings = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Каждая горутина интернирует один и тот же набор строк
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for i := range numStrings {
				interner.Intern(fmt.Sprintf("string_%d", i))
			}
		}()
	}

	wg.Wait()

	// Каждая строка интернирована ровно один раз
	expectedLen := numStrings + 1 // +1 для NoStringID
	if interner.Len() != expectedLen {
		t.Errorf("Ожидалось %d строк, получили: %d", expectedLen, interner.Len())
	}

	ids := make(map[StringID]bool)
	for i := range numStrings {
		s := fmt.Sprintf("string_%d", i)
		id := interner.Intern(s)
		if ids[id] {
			t.Errorf("Дубликат ID для строки %q: %d", s, id)
		}
		ids[id] = true

		if retrieved, ok := interner.Lookup(id); !ok || retrieved != s {
			t.Errorf("Lookup вернул неверную строку для %q: %q, ok=%v", s, retrieved, ok)
		}
	}
}

func BenchmarkInternerIntern(b *testing.B) {
	interner := NewInterner()
	strings := make([]string, 1000)
	for i := range strings {
		strings[i] = fmt.Sprintf("benchmark_string_%d", i)
	}

	b.ResetTimer()
	for i := range b.N {
		interner.Intern(strings[i%len(strings)])
	}
}

func BenchmarkInternerLookup(b *testing.B) {
	interner := NewInterner()
	ids := make([]StringID, 1000)
	for i := range ids {
		ids[i] = interner.Intern(fmt.Sprintf("string_%d", i))
	}

	b.ResetTimer()
	for i := range b.N {
		interner.Lookup(ids[i%len(ids)])
	}
}
