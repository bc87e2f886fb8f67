package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"testlint/internal/config"
	"testlint/internal/diag"
	"testlint/internal/rules"
	"testlint/internal/source"
	"testlint/internal/trace"
)

// RunResult содержит результаты анализа набора файлов
type RunResult struct {
	// FileSet holds the loaded sources; span resolution needs it.
	FileSet *source.FileSet
	// Files follow the sorted input path order.
	Files  []FileResult
	Totals rules.Totals
}

// Failed reports whether the run crosses the fail ceiling.
func (r *RunResult) Failed(ceiling rules.FailOn) bool {
	return r.Totals.Failed(ceiling)
}

// AnalyzeDir анализирует все тестовые файлы в директории параллельно
func AnalyzeDir(ctx context.Context, dir string, opts *Options) (*RunResult, error) {
	cfg := opts.config()

	// Собираем список файлов
	files, err := ListTestFiles(dir, TestExtensions(cfg))
	if err != nil {
		return nil, err
	}
	return analyzeBatch(ctx, source.NewFileSetWithBase(dir), files, opts)
}

// AnalyzePaths анализирует явный набор путей. Директории разворачиваются
// через обход, файлы берутся как есть, без фильтра по расширению.
func AnalyzePaths(ctx context.Context, paths []string, opts *Options) (*RunResult, error) {
	files, err := ExpandPaths(paths, opts.config())
	if err != nil {
		return nil, err
	}
	return analyzeBatch(ctx, source.NewFileSet(), files, opts)
}

// ExpandPaths разворачивает директории в отсортированный список тестовых
// файлов. Явно названные файлы берутся как есть, без фильтра по расширению:
// отсутствующие станут file-unreadable диагностиками при загрузке.
// Пути чистятся, чтобы одна цель под двумя написаниями не анализировалась
// дважды.
func ExpandPaths(paths []string, cfg *config.Config) ([]string, error) {
	exts := TestExtensions(cfg)

	seen := make(map[string]bool, len(paths))
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			sub, err := ListTestFiles(path, exts)
			if err != nil {
				return nil, err
			}
			for _, p := range sub {
				add(p)
			}
			continue
		}
		add(path)
	}
	sort.Strings(files)
	return files, nil
}

func analyzeBatch(ctx context.Context, fileSet *source.FileSet, files []string, opts *Options) (*RunResult, error) {
	run := &RunResult{FileSet: fileSet}
	if len(files) == 0 {
		return run, nil
	}
	cfg := opts.config()
	maxDiagnostics := opts.maxDiagnostics()

	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopeDriver, "analyze", trace.CurrentSpan(ctx).SpanID)
	batch.WithExtra("files", strconv.Itoa(len(files)))
	defer func() {
		batch.End(fmt.Sprintf("errors=%d warnings=%d infos=%d",
			run.Totals.Errors, run.Totals.Warnings, run.Totals.Infos))
	}()

	var sink ProgressSink
	if opts != nil {
		sink = opts.Progress
	}
	emitQueued(sink, files)

	// Предзагружаем все файлы
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			// Сохраняем ошибку загрузки для последующей обработки.
			// Пустой виртуальный файл держит путь в FileSet, чтобы спан
			// file-unreadable диагностики оставался разрешимым.
			loadErrors[path] = err
			fileIDs[path] = fileSet.AddVirtual(path, nil)
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := cfg.EffectiveJobs()

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	// Параллельный анализ
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, batch.ID())

				if loadErr, hadError := loadErrors[path]; hadError {
					results[i] = loadFailure(path, fileIDs[path], loadErr, cfg, maxDiagnostics)
					emitStage(sink, path, StageScan, StatusError, loadErr, 0)
					span.End("load failed")
					return nil
				}

				// Прогресс и фазовые спаны требуют своего наблюдателя
				// на файл, поэтому опции клонируются.
				fileOpts := opts
				if sink != nil || tracer.Level().ShouldEmit(trace.ScopePhase) {
					var clone Options
					if opts != nil {
						clone = *opts
					}
					clone.Observer = chainObservers(BindObserver(sink, path), clone.Observer)
					if tracer.Level().ShouldEmit(trace.ScopePhase) {
						clone.Observer = tracePhases(tracer, span.ID(), clone.Observer)
					}
					fileOpts = &clone
				}

				result := AnalyzeFile(fileSet, fileIDs[path], fileOpts)
				if result == nil {
					results[i] = loadFailure(path, fileIDs[path], os.ErrInvalid, cfg, maxDiagnostics)
					emitStage(sink, path, StageScan, StatusError, os.ErrInvalid, 0)
					span.End("invalid file id")
					return nil
				}

				// Сохраняем результат (мьютекс не нужен — индекс i уникален)
				results[i] = *result
				// Попадание в кеш минует фазы, поэтому done шлёт сам воркер.
				emitStage(sink, path, StageReport, StatusDone, nil, 0)
				span.End(fmt.Sprintf("cases=%d diags=%d",
					result.Cases, len(result.Summary.Diagnostics)))
				return nil
			}
		}(i, path))
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return run, err
	}

	run.Files = results
	for i := range results {
		run.Totals.Add(results[i].Summary)
	}
	return run, nil
}

// loadFailure превращает ошибку ввода-вывода в деградированный результат:
// батч продолжается, файл получает одну file-unreadable диагностику.
func loadFailure(path string, id source.FileID, loadErr error, cfg *config.Config, maxDiagnostics int) FileResult {
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOLoadFileError,
		Message:  "failed to load file: " + loadErr.Error(),
		Primary:  source.Span{File: id},
	})
	diags := cfg.Policy().Apply(bag.Items())
	return FileResult{
		Path:    path,
		FileID:  id,
		Summary: rules.Summarize(path, diags),
	}
}
