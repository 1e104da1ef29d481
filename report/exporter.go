package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// Exporter orchestrates score, build, rasterize, assemble and delivery.
type Exporter struct {
	Scorer          Scorer
	Builder         *Builder
	Rasterizer      Rasterizer
	Assembler       Assembler
	Store           ArtifactStore
	Tracker         ExportTracker
	Emitter         ChangeEmitter
	Metrics         MetricsHook
	Logger          Logger
	Workers         int
	FilenamePattern string
	Now             func() time.Time
	IDGenerator     func() string
}

// NewExporter creates an exporter with the default scorer and builder.
func NewExporter(rasterizer Rasterizer, assembler Assembler) *Exporter {
	return &Exporter{
		Scorer:      DefaultScorer{},
		Builder:     NewBuilder(),
		Rasterizer:  rasterizer,
		Assembler:   assembler,
		Logger:      NopLogger{},
		Workers:     1,
		Now:         time.Now,
		IDGenerator: defaultIDGenerator,
	}
}

// Export runs one export. Nothing is written to req.Output or the store until
// the document has been fully assembled.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if e == nil {
		return ExportResult{}, NewError(KindInternal, "exporter is nil", nil)
	}
	if e.Rasterizer == nil || e.Assembler == nil {
		return ExportResult{}, NewError(KindInternal, "exporter requires rasterizer and assembler", nil)
	}
	e.applyDefaults()

	exportID := e.IDGenerator()
	if e.Tracker != nil {
		id, err := e.Tracker.Start(ctx, ExportRecord{
			ID:        exportID,
			State:     StateQueued,
			CreatedAt: e.Now(),
		})
		if err != nil {
			return ExportResult{}, err
		}
		if id != "" {
			exportID = id
		}
	}

	run := runInfo{exportID: exportID, startedAt: e.Now()}
	e.emit(ctx, run, "report.requested", map[string]any{
		"risk_count":      req.Assessment.RiskCount,
		"total_questions": req.Assessment.TotalQuestions,
		"comments":        len(req.Assessment.Comments),
	})

	score, err := e.Scorer.Score(req.Assessment)
	if err != nil {
		return ExportResult{}, e.fail(ctx, run, err)
	}
	e.Logger.Debugf("export %s scored %d%% (%s)", exportID, score.Percentage, score.Band)

	doc := e.Builder.Build(score, req.Assessment.Comments)
	if err := doc.Validate(); err != nil {
		return ExportResult{}, e.fail(ctx, run, err)
	}
	e.emit(ctx, run, "report.started", map[string]any{
		"pages":      len(doc.Pages),
		"percentage": score.Percentage,
		"band":       score.Band,
	})

	e.setState(ctx, exportID, StateRasterizing)
	snapshots, err := RasterizeAll(ctx, e.Rasterizer, doc, e.Workers)
	if err != nil {
		return ExportResult{}, e.fail(ctx, run, err)
	}
	e.emit(ctx, run, "report.rasterized", map[string]any{"pages": len(snapshots)})

	if err := ctx.Err(); err != nil {
		return ExportResult{}, e.fail(ctx, run, err)
	}

	e.setState(ctx, exportID, StateAssembling)
	exported, err := e.Assembler.Assemble(ctx, snapshots)
	if err != nil {
		if KindFromError(err) == KindInternal {
			err = NewError(KindAssembly, "document assembly failed", err)
		}
		return ExportResult{}, e.fail(ctx, run, err)
	}
	if len(exported.Pages) != len(doc.Pages) {
		return ExportResult{}, e.fail(ctx, run, NewError(KindAssembly,
			fmt.Sprintf("assembled %d pages, report has %d", len(exported.Pages), len(doc.Pages)), nil))
	}

	filename, err := RenderFilename(e.FilenamePattern, score, e.Now())
	if err != nil {
		return ExportResult{}, e.fail(ctx, run, NewError(KindInternal, "filename render failed", err))
	}
	exported.Filename = filename
	if exported.ContentType == "" {
		exported.ContentType = ContentTypePDF
	}
	e.emit(ctx, run, "report.assembled", map[string]any{
		"pages": len(exported.Pages),
		"bytes": len(exported.Bytes),
	})

	if err := ctx.Err(); err != nil {
		return ExportResult{}, e.fail(ctx, run, err)
	}

	e.setState(ctx, exportID, StateDelivering)
	result := ExportResult{
		ID:       exportID,
		Score:    score,
		Filename: filename,
		Pages:    len(exported.Pages),
		Bytes:    int64(len(exported.Bytes)),
		Document: exported,
	}

	if e.Store != nil {
		ref, err := e.Store.Put(ctx, path.Join(exportID, filename), bytes.NewReader(exported.Bytes), ArtifactMeta{
			ContentType: exported.ContentType,
			Filename:    filename,
			CreatedAt:   e.Now(),
		})
		if err != nil {
			return ExportResult{}, e.fail(ctx, run, NewError(KindDelivery, "artifact store failed", err))
		}
		result.Artifact = &ref
	}

	if req.Output != nil {
		if _, err := io.Copy(req.Output, bytes.NewReader(exported.Bytes)); err != nil {
			if result.Artifact != nil {
				_ = e.Store.Delete(context.WithoutCancel(ctx), result.Artifact.Key)
			}
			return ExportResult{}, e.fail(ctx, run, NewError(KindDelivery, "output write failed", err))
		}
	}

	if e.Tracker != nil {
		if err := e.Tracker.Complete(ctx, exportID, result); err != nil {
			e.Logger.Errorf("export %s: tracker complete failed: %v", exportID, err)
		}
	}

	e.emit(ctx, run, "report.completed", map[string]any{
		"pages":    result.Pages,
		"bytes":    result.Bytes,
		"filename": filename,
		"duration": e.Now().Sub(run.startedAt),
	})
	e.emitMetrics(ctx, run, "report.completed", result.Pages, result.Bytes, nil)
	e.Logger.Infof("export %s completed: %d pages, %d bytes", exportID, result.Pages, result.Bytes)

	return result, nil
}

func (e *Exporter) applyDefaults() {
	if e.Scorer == nil {
		e.Scorer = DefaultScorer{}
	}
	if e.Builder == nil {
		e.Builder = NewBuilder()
	}
	if e.Logger == nil {
		e.Logger = NopLogger{}
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.IDGenerator == nil {
		e.IDGenerator = defaultIDGenerator
	}
}

func (e *Exporter) setState(ctx context.Context, id string, state ExportState) {
	if e.Tracker == nil {
		return
	}
	if err := e.Tracker.SetState(ctx, id, state); err != nil {
		e.Logger.Errorf("export %s: tracker state %s failed: %v", id, state, err)
	}
}

// fail records the failure and returns err normalized to a report error.
func (e *Exporter) fail(ctx context.Context, run runInfo, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var reportErr *ReportError
		if !errors.As(err, &reportErr) {
			err = NewError(KindFromError(err), "export interrupted", err)
		}
	}

	// the caller's context may already be done; record the outcome regardless
	recordCtx := context.WithoutCancel(ctx)

	if KindFromError(err) == KindCanceled {
		if e.Tracker != nil {
			_ = e.Tracker.SetState(recordCtx, run.exportID, StateCanceled)
		}
		e.emit(recordCtx, run, "report.canceled", map[string]any{
			"duration": e.Now().Sub(run.startedAt),
		})
		e.emitMetrics(recordCtx, run, "report.canceled", 0, 0, err)
		e.Logger.Infof("export %s canceled", run.exportID)
		return err
	}

	if e.Tracker != nil {
		_ = e.Tracker.Fail(recordCtx, run.exportID, err)
	}
	meta := map[string]any{
		"error":      err.Error(),
		"error_kind": KindFromError(err),
		"duration":   e.Now().Sub(run.startedAt),
	}
	if idx, ok := PageIndexFromError(err); ok {
		meta["page_index"] = idx
	}
	e.emit(recordCtx, run, "report.failed", meta)
	e.emitMetrics(recordCtx, run, "report.failed", 0, 0, err)
	e.Logger.Errorf("export %s failed: %v", run.exportID, err)
	return err
}

func (e *Exporter) emit(ctx context.Context, run runInfo, name string, meta map[string]any) {
	if e.Emitter == nil {
		return
	}
	_ = e.Emitter.Emit(ctx, ChangeEvent{
		Name:      name,
		ExportID:  run.exportID,
		Timestamp: e.Now(),
		Metadata:  meta,
	})
}

func (e *Exporter) emitMetrics(ctx context.Context, run runInfo, name string, pages int, size int64, err error) {
	if e.Metrics == nil {
		return
	}
	now := e.Now()
	kind := ErrorKind("")
	if err != nil {
		kind = KindFromError(err)
	}
	_ = e.Metrics.Emit(ctx, MetricsEvent{
		Name:      name,
		ExportID:  run.exportID,
		Pages:     pages,
		Bytes:     size,
		Duration:  now.Sub(run.startedAt),
		ErrorKind: kind,
		Timestamp: now,
	})
}

type runInfo struct {
	exportID  string
	startedAt time.Time
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

func defaultIDGenerator() string {
	return uuid.NewString()
}
