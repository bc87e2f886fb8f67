package driver

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"testlint/internal/config"
	"testlint/internal/dialect"
)

// TestExtensions возвращает суффиксы файлов, которые обход считает
// тестовыми источниками. При закреплённом диалекте берётся его пресет,
// при auto — объединение всех диалектов.
func TestExtensions(cfg *config.Config) []string {
	if cfg != nil && cfg.Dialect != dialect.Unknown {
		return dialect.ForKind(cfg.Dialect).Extensions
	}
	seen := make(map[string]bool)
	var exts []string
	for _, k := range dialect.Kinds() {
		for _, ext := range dialect.ForKind(k).Extensions {
			if seen[ext] {
				continue
			}
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// ListTestFiles возвращает отсортированный список тестовых файлов в директории
func ListTestFiles(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasTestSuffix(path, exts) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func hasTestSuffix(path string, exts []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
