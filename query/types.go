package query

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-riskreport/report"
)

// ReportScore requests the score for an assessment without rendering.
type ReportScore struct {
	RiskCount      int
	TotalQuestions int
}

func (ReportScore) Type() string { return "report:score" }

func (msg ReportScore) Validate() error {
	if msg.RiskCount < 0 {
		return errors.New("risk count must not be negative", errors.CategoryValidation).
			WithTextCode("RISK_COUNT_INVALID")
	}
	if msg.TotalQuestions < 0 {
		return errors.New("total questions must not be negative", errors.CategoryValidation).
			WithTextCode("TOTAL_QUESTIONS_INVALID")
	}
	return nil
}

// ReportStatus requests a tracked export record.
type ReportStatus struct {
	ExportID string
}

func (ReportStatus) Type() string { return "report:status" }

func (msg ReportStatus) Validate() error {
	if msg.ExportID == "" {
		return errors.New("export ID is required", errors.CategoryValidation).
			WithTextCode("EXPORT_ID_REQUIRED")
	}
	return nil
}

// ReportHistory requests tracked export history.
type ReportHistory struct {
	Filter report.ExportFilter
}

func (ReportHistory) Type() string { return "report:history" }

func (msg ReportHistory) Validate() error {
	if msg.Filter.Limit < 0 {
		return errors.New("limit must not be negative", errors.CategoryValidation).
			WithTextCode("LIMIT_INVALID")
	}
	if !msg.Filter.Since.IsZero() && !msg.Filter.Until.IsZero() && msg.Filter.Until.Before(msg.Filter.Since) {
		return errors.New("until must not be before since", errors.CategoryValidation).
			WithTextCode("RANGE_INVALID")
	}
	return nil
}

// ArtifactMetadata requests metadata for a stored report.
type ArtifactMetadata struct {
	Key string
}

func (ArtifactMetadata) Type() string { return "report:artifact" }

func (msg ArtifactMetadata) Validate() error {
	if msg.Key == "" {
		return errors.New("artifact key is required", errors.CategoryValidation).
			WithTextCode("ARTIFACT_KEY_REQUIRED")
	}
	return nil
}
