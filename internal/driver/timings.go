package driver

import (
	"encoding/json"
	"fmt"

	"testlint/internal/diag"
	"testlint/internal/observ"
	"testlint/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic заворачивает отчёт таймера в информационную
// диагностику с JSON-заметкой. Она добавляется только к выводу:
// тайминги не участвуют в свёртках и не влияют на код выхода.
func TimingDiagnostic(kind, path string, report *observ.Report) (diag.Diagnostic, bool) {
	if report == nil {
		return diag.Diagnostic{}, false
	}
	payload := timingPayload{
		Kind:    kind,
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return diag.Diagnostic{}, false
	}

	return diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{File: source.NoFile},
		Notes: []diag.Note{
			{Span: source.Span{File: source.NoFile}, Msg: string(data)},
		},
	}, true
}
