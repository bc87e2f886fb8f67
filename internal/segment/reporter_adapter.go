package segment

import (
	"testlint/internal/diag"
	"testlint/internal/source"
)

// ReporterAdapter адаптирует diag.Bag под тонкий Reporter сегментатора
type ReporterAdapter struct {
	Bag *diag.Bag
}

// Reporter returns a Reporter that turns malformed input reports into
// malformed-input diagnostics at their default severity. Severity overrides
// are applied later, in one place, by the driver.
func (r *ReporterAdapter) Reporter() Reporter {
	return bagReporter{bag: r.Bag}
}

type bagReporter struct {
	bag *diag.Bag
}

func (b bagReporter) Report(kind string, span source.Span, msg string) {
	if b.bag == nil {
		return
	}
	b.bag.Add(diag.NewDefault(diag.ScanMalformedInput, span, kind+": "+msg))
}
