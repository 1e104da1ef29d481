package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-riskreport/report"
)

// ReportScoreHandler scores assessments.
type ReportScoreHandler struct {
	Scorer report.Scorer
}

func NewReportScoreHandler(scorer report.Scorer) *ReportScoreHandler {
	return &ReportScoreHandler{Scorer: scorer}
}

func (h *ReportScoreHandler) Query(ctx context.Context, msg ReportScore) (report.Score, error) {
	_ = ctx
	scorer := report.Scorer(report.DefaultScorer{})
	if h != nil && h.Scorer != nil {
		scorer = h.Scorer
	}
	score, err := scorer.Score(report.AssessmentResult{
		RiskCount:      msg.RiskCount,
		TotalQuestions: msg.TotalQuestions,
	})
	if err != nil {
		return report.Score{}, report.AsGoError(err)
	}
	return score, nil
}

// ReportStatusHandler returns a single export record.
type ReportStatusHandler struct {
	Tracker report.ExportTracker
}

func NewReportStatusHandler(tracker report.ExportTracker) *ReportStatusHandler {
	return &ReportStatusHandler{Tracker: tracker}
}

func (h *ReportStatusHandler) Query(ctx context.Context, msg ReportStatus) (report.ExportRecord, error) {
	if h == nil || h.Tracker == nil {
		return report.ExportRecord{}, errors.New("export tracker is required", errors.CategoryInternal).
			WithTextCode("TRACKER_REQUIRED")
	}
	record, err := h.Tracker.Status(ctx, msg.ExportID)
	if err != nil {
		return report.ExportRecord{}, report.AsGoError(err)
	}
	return record, nil
}

// ReportHistoryHandler returns export history.
type ReportHistoryHandler struct {
	Tracker report.ExportTracker
}

func NewReportHistoryHandler(tracker report.ExportTracker) *ReportHistoryHandler {
	return &ReportHistoryHandler{Tracker: tracker}
}

func (h *ReportHistoryHandler) Query(ctx context.Context, msg ReportHistory) ([]report.ExportRecord, error) {
	if h == nil || h.Tracker == nil {
		return nil, errors.New("export tracker is required", errors.CategoryInternal).
			WithTextCode("TRACKER_REQUIRED")
	}
	records, err := h.Tracker.List(ctx, msg.Filter)
	if err != nil {
		return nil, report.AsGoError(err)
	}
	return records, nil
}

// ArtifactMetadataHandler returns stored artifact metadata.
type ArtifactMetadataHandler struct {
	Store report.ArtifactStore
}

func NewArtifactMetadataHandler(store report.ArtifactStore) *ArtifactMetadataHandler {
	return &ArtifactMetadataHandler{Store: store}
}

func (h *ArtifactMetadataHandler) Query(ctx context.Context, msg ArtifactMetadata) (report.ArtifactRef, error) {
	if h == nil || h.Store == nil {
		return report.ArtifactRef{}, errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	reader, meta, err := h.Store.Open(ctx, msg.Key)
	if err != nil {
		return report.ArtifactRef{}, report.AsGoError(err)
	}
	_ = reader.Close()
	return report.ArtifactRef{Key: msg.Key, Meta: meta}, nil
}
