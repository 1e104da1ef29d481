package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-riskreport/report"
)

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	exporter := &stubExporter{}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{
			{RiskCount: 7, TotalQuestions: 10},
			{RiskCount: 0, TotalQuestions: 5},
		}, nil
	}

	cmd := NewBatchReportsCommand(exporter, loader, WithBatchLimits(BatchLimits{MaxRequests: 1, MinInterval: time.Millisecond}))
	var slept int
	cmd.sleep = func(time.Duration) { slept++ }

	count, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 request, got %d", count)
	}
	if len(exporter.calls) != 1 || slept != 1 {
		t.Fatalf("expected one export and one pause, got %d/%d", len(exporter.calls), slept)
	}
}

func TestBatchCommand_RunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	payload := `[{"risk_count":7,"total_questions":10,"comments":["a","b"]},{"risk_count":0,"total_questions":5}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	exporter := &stubExporter{}
	cmd := NewBatchReportsCommand(exporter, nil)
	count, err := cmd.run(context.Background(), path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 requests, got %d", count)
	}
	if got := exporter.calls[0].Assessment; got.RiskCount != 7 || len(got.Comments) != 2 {
		t.Fatalf("unexpected first assessment: %+v", got)
	}
	if exporter.calls[1].Output != nil {
		t.Fatalf("expected batch exports without output writer")
	}
}

func TestBatchCommand_StopsOnInvalidEntry(t *testing.T) {
	exporter := &stubExporter{}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{
			{RiskCount: 1, TotalQuestions: 2},
			{RiskCount: -1, TotalQuestions: 2},
			{RiskCount: 1, TotalQuestions: 2},
		}, nil
	}

	count, err := NewBatchReportsCommand(exporter, loader).run(context.Background(), "")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if count != 1 || len(exporter.calls) != 1 {
		t.Fatalf("expected batch to stop after first entry, got %d", count)
	}
}

func TestBatchCommand_RequiresLoader(t *testing.T) {
	if _, err := NewBatchReportsCommand(&stubExporter{}, nil).run(context.Background(), ""); err == nil {
		t.Fatalf("expected loader error")
	}
	if _, err := NewBatchReportsCommand(nil, nil).run(context.Background(), ""); err == nil {
		t.Fatalf("expected exporter error")
	}
}

func TestBatchCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewBatchReportsCommand(&stubExporter{}, nil).run(context.Background(), path); err == nil {
		t.Fatalf("expected invalid JSON error")
	}
}

func TestBatchCommand_StoresArtifacts(t *testing.T) {
	store := report.NewMemoryStore()
	exporter := report.NewExporter(
		report.RasterizerFunc(func(ctx context.Context, page report.ReportPage) (report.RasterSnapshot, error) {
			return report.RasterSnapshot{PixelWidth: 794, PixelHeight: 1123, ImageType: "PNG", ImageBytes: []byte{1}}, nil
		}),
		report.AssemblerFunc(func(ctx context.Context, snapshots []report.RasterSnapshot) (report.ExportedDocument, error) {
			return report.ExportedDocument{Pages: report.PlacePages(snapshots, 0), Bytes: []byte("%PDF")}, nil
		}),
	)
	exporter.Store = store

	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{{RiskCount: 1, TotalQuestions: 4}, {RiskCount: 3, TotalQuestions: 4}}, nil
	}
	count, err := NewBatchReportsCommand(exporter, loader).run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 2 || store.Len() != 2 {
		t.Fatalf("expected 2 stored artifacts, got %d/%d", count, store.Len())
	}
}
