package driver

import (
	"fmt"
	"time"

	"testlint/internal/config"
	"testlint/internal/diag"
	"testlint/internal/dialect"
	"testlint/internal/extract"
	"testlint/internal/feature"
	"testlint/internal/observ"
	"testlint/internal/rules"
	"testlint/internal/segment"
	"testlint/internal/source"
)

// DefaultMaxDiagnostics ограничивает число диагностик на файл,
// когда вызывающая сторона не задала лимит.
const DefaultMaxDiagnostics = 256

// Options содержит опции анализа
type Options struct {
	// Config supplies dialect, rule selection, pattern lists and policy.
	// Nil falls back to the defaults.
	Config         *config.Config
	MaxDiagnostics int
	EnableTimings  bool
	// Observer receives phase boundaries for progress display.
	Observer PhaseObserver
	// Progress receives per-file stage events for the terminal UI.
	Progress ProgressSink
	// Cache short-circuits analysis of unchanged files. Nil disables it.
	Cache *DiskCache
}

func (o *Options) config() *config.Config {
	if o != nil && o.Config != nil {
		return o.Config
	}
	return config.Default()
}

func (o *Options) maxDiagnostics() int {
	if o != nil && o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return DefaultMaxDiagnostics
}

// FileResult — итог анализа одного файла
type FileResult struct {
	Path   string
	FileID source.FileID
	// Dialect is the dialect the file was analyzed under.
	Dialect dialect.Kind
	// Detection is set when the dialect was classified rather than
	// configured. Cache hits and pinned dialects leave it nil.
	Detection *dialect.Classification
	Cases     int
	Fixtures  int
	Summary   rules.Summary
	Timing    *observ.Report
	FromCache bool
}

// AnalyzeFile прогоняет один файл через весь конвейер: определение
// диалекта, сегментация, извлечение кейсов, подсчёт признаков, правила,
// политика серьёзности и свёртка. Все проблемы входа становятся
// диагностиками; nil возвращается только на отсутствующий файл.
func AnalyzeFile(fs *source.FileSet, id source.FileID, opts *Options) *FileResult {
	if fs == nil || int(id) >= fs.Len() {
		return nil
	}
	file := fs.Get(id)
	cfg := opts.config()
	maxDiagnostics := opts.maxDiagnostics()

	var observer PhaseObserver
	var cache *DiskCache
	var enableTimings bool
	if opts != nil {
		observer = opts.Observer
		cache = opts.Cache
		enableTimings = opts.EnableTimings
	}

	var timer *observ.Timer
	if enableTimings {
		timer = observ.NewTimer()
	}
	begin := func(name string) (int, time.Time) {
		idx := -1
		if timer != nil {
			idx = timer.Begin(name)
		}
		if observer != nil {
			observer(PhaseEvent{Name: name, Status: PhaseStart})
		}
		return idx, time.Now()
	}
	end := func(name string, idx int, started time.Time, note string) {
		if timer != nil && idx >= 0 {
			timer.End(idx, note)
		}
		if observer != nil {
			observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
		}
	}

	var key config.Digest
	if cache != nil {
		key = cacheKey(file, cfg)
		var payload DiskPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			if result := resultFromPayload(&payload, file); result != nil {
				return result
			}
		}
	}

	// Определяем диалект: настройка побеждает, auto классифицирует по файлу.
	detectIdx, detectStart := begin("detect")
	kind := cfg.Dialect
	var detection *dialect.Classification
	if kind == dialect.Unknown {
		c := dialect.Detect(file)
		detection = &c
		kind = c.Kind
	}
	preset := cfg.Preset(kind)
	detectNote := ""
	if timer != nil {
		detectNote = fmt.Sprintf("dialect=%s", kind)
	}
	end("detect", detectIdx, detectStart, detectNote)

	// Создаём диагностический пакет
	bag := diag.NewBag(maxDiagnostics)

	scanIdx, scanStart := begin("scan")
	reporter := (&segment.ReporterAdapter{Bag: bag}).Reporter()
	segs := segment.Scan(file, preset.Forms, preset.Syntax, &segment.Options{Reporter: reporter})
	scanNote := ""
	if timer != nil {
		scanNote = fmt.Sprintf("segments=%d", len(segs))
	}
	end("scan", scanIdx, scanStart, scanNote)

	extractIdx, extractStart := begin("extract")
	extracted := extract.Extract(file, segs, extract.Options{
		MethodForms: preset.MethodForms,
		Syntax:      preset.Syntax,
		Interner:    source.NewInterner(),
		Reporter:    &diag.BagReporter{Bag: bag},
	})
	extractNote := ""
	if timer != nil {
		extractNote = fmt.Sprintf("cases=%d fixtures=%d", len(extracted.Cases), len(extracted.Fixtures))
	}
	end("extract", extractIdx, extractStart, extractNote)

	analyzeIdx, analyzeStart := begin("analyze")
	analyzer := feature.NewAnalyzer(fs, preset.Syntax, preset.Patterns)
	set := rules.NewSet(cfg.Rules(), cfg.Params())
	ruleReporter := &diag.BagReporter{Bag: bag}
	for i := range extracted.Cases {
		tc := &extracted.Cases[i]
		vector := analyzer.Analyze(tc)
		ref := diag.TestRef{
			Suite: extracted.Interner.MustLookup(tc.Suite),
			Case:  extracted.Interner.MustLookup(tc.Name),
		}
		set.Evaluate(vector, ref, tc.Decl, ruleReporter)
	}
	analyzeNote := ""
	if timer != nil {
		analyzeNote = fmt.Sprintf("diags=%d", bag.Len())
	}
	end("analyze", analyzeIdx, analyzeStart, analyzeNote)

	reportIdx, reportStart := begin("report")
	diags := cfg.Policy().Apply(bag.Items())
	diag.Order(diags)
	summary := rules.Summarize(file.Path, diags)
	end("report", reportIdx, reportStart, "")

	result := &FileResult{
		Path:      file.Path,
		FileID:    id,
		Dialect:   kind,
		Detection: detection,
		Cases:     len(extracted.Cases),
		Fixtures:  len(extracted.Fixtures),
		Summary:   summary,
	}
	if timer != nil {
		report := timer.Report()
		result.Timing = &report
	}
	if cache != nil {
		// Кеш необязателен: ошибку записи глотаем, результат уже есть.
		_ = cache.Put(key, payloadFromResult(result))
	}
	return result
}
