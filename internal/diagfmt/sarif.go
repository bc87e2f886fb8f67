package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"testlint/internal/diag"
	"testlint/internal/source"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	ShortDescription sarifMessage    `json:"shortDescription"`
	DefaultConfig    sarifRuleConfig `json:"defaultConfiguration"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	RuleIndex  int               `json:"ruleIndex"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// В tool.driver.rules попадают все коды, которые линтер способен выдать
// по содержимому файлов; сервисные диагностики (тайминги) в отчёт не входят.
func Sarif(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) error {
	codes := sarifRuleCodes()
	ruleIndex := make(map[diag.Code]int, len(codes))
	rules := make([]sarifRule, 0, len(codes))
	for i, code := range codes {
		ruleIndex[code] = i
		rules = append(rules, sarifRule{
			ID:               code.ID(),
			ShortDescription: sarifMessage{Text: code.Title()},
			DefaultConfig:    sarifRuleConfig{Level: sarifLevel(code.DefaultSeverity())},
		})
	}

	results := make([]sarifResult, 0, len(items))
	for i := range items {
		d := &items[i]
		idx, known := ruleIndex[d.Code]
		if !known {
			continue
		}

		result := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: idx,
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
		}
		if loc, ok := sarifLocationFor(d.Primary, fs); ok {
			result.Locations = []sarifLocation{loc}
		}
		if !d.Test.Empty() {
			result.Properties = map[string]string{
				"suite": d.Test.Suite,
				"case":  d.Test.Case,
			}
		}
		results = append(results, result)
	}

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
			Rules:   rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}}
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

// sarifRuleCodes перечисляет коды для tool.driver.rules: настраиваемые
// правила плюс file-unreadable, отсортированные по строковому id.
func sarifRuleCodes() []diag.Code {
	codes := append([]diag.Code(nil), diag.ConfigurableCodes()...)
	codes = append(codes, diag.IOLoadFileError)
	sort.Slice(codes, func(i, j int) bool { return codes[i].ID() < codes[j].ID() })
	return codes
}

func sarifLocationFor(span source.Span, fs *source.FileSet) (sarifLocation, bool) {
	f := spanFile(fs, span)
	if f == nil {
		return sarifLocation{}, false
	}

	// SARIF предпочитает относительные URI, когда известен корень прогона.
	uri := f.FormatPath("auto", "")
	if fs.BaseDir() != "" {
		uri = f.FormatPath("relative", fs.BaseDir())
	}
	uri = filepath.ToSlash(uri)

	start, end := fs.Resolve(span)
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: uri},
		Region: &sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
		},
	}}, true
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}
