package trackerbun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-riskreport/report"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestTracker_StartStatusList(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newTestDB(t))

	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	first, err := tracker.Start(ctx, report.ExportRecord{CreatedAt: older})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first == "" {
		t.Fatalf("expected record id")
	}
	second, err := tracker.Start(ctx, report.ExportRecord{ID: "rpt-custom", CreatedAt: older.Add(time.Hour)})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := tracker.Status(ctx, first)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.State != report.StateQueued {
		t.Fatalf("expected queued, got %s", got.State)
	}

	list, err := tracker.List(ctx, report.ExportFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second {
		t.Fatalf("expected newest first, got %+v", list)
	}
	limited, err := tracker.List(ctx, report.ExportFilter{Limit: 1, State: report.StateQueued})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 record, got %d", len(limited))
	}
}

func TestTracker_CompleteRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newTestDB(t))

	id, err := tracker.Start(ctx, report.ExportRecord{ID: "rpt-1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tracker.SetState(ctx, id, report.StateRasterizing); err != nil {
		t.Fatalf("set state: %v", err)
	}
	err = tracker.Complete(ctx, id, report.ExportResult{
		Score:    report.Score{Percentage: 70, Band: report.BandHigh},
		Filename: report.DefaultFilename,
		Pages:    6,
		Bytes:    1024,
		Artifact: &report.ArtifactRef{
			Key:  "rpt-1/EthiAI_Report.pdf",
			Meta: report.ArtifactMeta{ContentType: report.ContentTypePDF, Size: 1024},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.State != report.StateCompleted || got.Pages != 6 || got.Bytes != 1024 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Band != report.BandHigh || got.Percentage != 70 {
		t.Fatalf("expected score to be recorded, got %d/%s", got.Percentage, got.Band)
	}
	if got.Artifact.Key != "rpt-1/EthiAI_Report.pdf" || got.Artifact.Meta.ContentType != report.ContentTypePDF {
		t.Fatalf("unexpected artifact: %+v", got.Artifact)
	}
	if got.CompletedAt.IsZero() {
		t.Fatalf("expected completed_at")
	}
}

func TestTracker_FailAndDelete(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newTestDB(t))

	id, err := tracker.Start(ctx, report.ExportRecord{ID: "rpt-2"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cause := report.PageError(report.KindRasterization, 4, "page could not be rendered", errors.New("chart init"))
	if err := tracker.Fail(ctx, id, cause); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.State != report.StateFailed || !strings.HasPrefix(got.Error, "page 4:") {
		t.Fatalf("unexpected failed record: %+v", got)
	}

	if err := tracker.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tracker.Status(ctx, id); report.KindFromError(err) != report.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := tracker.SetState(ctx, id, report.StateCanceled); report.KindFromError(err) != report.KindNotFound {
		t.Fatalf("expected not found for missing record, got %v", err)
	}
}

func TestTracker_WithExporter(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newTestDB(t))

	exporter := report.NewExporter(
		report.RasterizerFunc(func(ctx context.Context, page report.ReportPage) (report.RasterSnapshot, error) {
			if page.Kind == report.PageMerits {
				return report.RasterSnapshot{}, errors.New("merits page broke")
			}
			return report.RasterSnapshot{PixelWidth: 794, PixelHeight: 1123, ImageType: "PNG", ImageBytes: []byte{1}}, nil
		}),
		report.AssemblerFunc(func(ctx context.Context, snapshots []report.RasterSnapshot) (report.ExportedDocument, error) {
			return report.ExportedDocument{Pages: report.PlacePages(snapshots, 0), Bytes: []byte("%PDF")}, nil
		}),
	)
	exporter.Tracker = tracker

	_, err := exporter.Export(ctx, report.ExportRequest{
		Assessment: report.AssessmentResult{RiskCount: 2, TotalQuestions: 5},
	})
	if err == nil {
		t.Fatalf("expected export failure")
	}

	failed, err := tracker.List(ctx, report.ExportFilter{State: report.StateFailed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failed) != 1 || !strings.HasPrefix(failed[0].Error, "page 4:") {
		t.Fatalf("expected one failed record naming page 4, got %+v", failed)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := NewTracker(db).Migrate(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
