package command

import (
	"context"
	"errors"
	"testing"
	"time"

	gcmd "github.com/goliatone/go-command"
	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-riskreport/report"
)

type stubExporter struct {
	export func(ctx context.Context, req report.ExportRequest) (report.ExportResult, error)
	calls  []report.ExportRequest
}

func (s *stubExporter) Export(ctx context.Context, req report.ExportRequest) (report.ExportResult, error) {
	s.calls = append(s.calls, req)
	if s.export == nil {
		return report.ExportResult{}, nil
	}
	return s.export(ctx, req)
}

type stubPruner struct {
	cutoff time.Time
	count  int
}

func (s *stubPruner) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	_ = ctx
	s.cutoff = cutoff
	return s.count, nil
}

func TestGenerateReport_Validate(t *testing.T) {
	tests := []struct {
		name string
		msg  GenerateReport
		code string
	}{
		{name: "valid", msg: GenerateReport{RiskCount: 7, TotalQuestions: 10}},
		{name: "zero total", msg: GenerateReport{RiskCount: 0, TotalQuestions: 0}},
		{name: "negative risk", msg: GenerateReport{RiskCount: -1, TotalQuestions: 10}, code: "RISK_COUNT_INVALID"},
		{name: "negative total", msg: GenerateReport{RiskCount: 1, TotalQuestions: -3}, code: "TOTAL_QUESTIONS_INVALID"},
	}

	for _, tc := range tests {
		err := tc.msg.Validate()
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		var ge *errorslib.Error
		if !errors.As(err, &ge) {
			t.Fatalf("%s: expected go-errors error, got %v", tc.name, err)
		}
		if ge.TextCode != tc.code || ge.Category != errorslib.CategoryValidation {
			t.Fatalf("%s: expected %s validation error, got %s/%s", tc.name, tc.code, ge.Category, ge.TextCode)
		}
	}
}

func TestGenerateReportHandler_StoresResults(t *testing.T) {
	want := report.ExportResult{
		ID:       "rpt-1",
		Score:    report.Score{Percentage: 70, Band: report.BandHigh},
		Filename: report.DefaultFilename,
		Pages:    6,
	}
	exporter := &stubExporter{
		export: func(ctx context.Context, req report.ExportRequest) (report.ExportResult, error) {
			return want, nil
		},
	}

	handler := NewGenerateReportHandler(exporter)
	var got report.ExportResult
	result := gcmd.NewResult[report.ExportResult]()
	ctx := gcmd.ContextWithResult(context.Background(), result)

	err := handler.Execute(ctx, GenerateReport{
		RiskCount:      7,
		TotalQuestions: 10,
		Comments:       []string{"Bias audit pending", "No DPIA"},
		Result:         &got,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.ID != want.ID || got.Pages != 6 {
		t.Fatalf("expected result pointer %+v, got %+v", want, got)
	}

	stored, ok := result.Load()
	if !ok {
		t.Fatalf("expected context result")
	}
	if stored.Score.Band != report.BandHigh {
		t.Fatalf("expected context result band high, got %s", stored.Score.Band)
	}

	if len(exporter.calls) != 1 {
		t.Fatalf("expected one export call, got %d", len(exporter.calls))
	}
	assessment := exporter.calls[0].Assessment
	if assessment.RiskCount != 7 || assessment.TotalQuestions != 10 || len(assessment.Comments) != 2 {
		t.Fatalf("unexpected assessment: %+v", assessment)
	}
}

func TestGenerateReportHandler_MapsErrors(t *testing.T) {
	exporter := &stubExporter{
		export: func(ctx context.Context, req report.ExportRequest) (report.ExportResult, error) {
			return report.ExportResult{}, report.PageError(report.KindRasterization, 3, "chart could not be drawn", nil)
		},
	}

	err := NewGenerateReportHandler(exporter).Execute(context.Background(), GenerateReport{RiskCount: 1, TotalQuestions: 2})
	var ge *errorslib.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected go-errors error, got %v", err)
	}
	if ge.TextCode != "RASTERIZATION_FAILED" || ge.Category != errorslib.CategoryOperation {
		t.Fatalf("unexpected mapping %s/%s", ge.Category, ge.TextCode)
	}
}

func TestGenerateReportHandler_RequiresExporter(t *testing.T) {
	var handler *GenerateReportHandler
	err := handler.Execute(context.Background(), GenerateReport{})
	var ge *errorslib.Error
	if !errors.As(err, &ge) || ge.TextCode != "EXPORTER_REQUIRED" {
		t.Fatalf("expected exporter required error, got %v", err)
	}
}

func TestPruneReportsHandler_AppliesRetention(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pruner := &stubPruner{count: 3}
	handler := NewPruneReportsHandler(pruner)
	handler.Clock = func() time.Time { return now }

	var removed int
	if err := handler.Execute(context.Background(), PruneReports{Result: &removed}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if !pruner.cutoff.Equal(now.Add(-DefaultRetention)) {
		t.Fatalf("expected default retention cutoff, got %s", pruner.cutoff)
	}

	if err := handler.Execute(context.Background(), PruneReports{MaxAge: time.Hour}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !pruner.cutoff.Equal(now.Add(-time.Hour)) {
		t.Fatalf("expected one hour cutoff, got %s", pruner.cutoff)
	}
	if handler.CronOptions().Expression == "" {
		t.Fatalf("expected cron expression")
	}
}
