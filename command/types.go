package command

import (
	"io"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-riskreport/report"
)

// GenerateReport runs a report export for an assessment result.
type GenerateReport struct {
	RiskCount      int
	TotalQuestions int
	Comments       []string
	Output         io.Writer
	Result         *report.ExportResult
}

func (GenerateReport) Type() string { return "report:generate" }

func (msg GenerateReport) Validate() error {
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

// Request converts the message into an export request.
func (msg GenerateReport) Request() report.ExportRequest {
	return report.ExportRequest{
		Assessment: report.AssessmentResult{
			RiskCount:      msg.RiskCount,
			TotalQuestions: msg.TotalQuestions,
			Comments:       msg.Comments,
		},
		Output: msg.Output,
	}
}

// PruneReports removes stored artifacts older than a cutoff.
type PruneReports struct {
	Now    time.Time
	MaxAge time.Duration
	Result *int
}

func (PruneReports) Type() string { return "report:prune" }

func (msg PruneReports) Validate() error {
	if msg.MaxAge < 0 {
		return errors.New("max age must not be negative", errors.CategoryValidation).
			WithTextCode("MAX_AGE_INVALID")
	}
	return nil
}
