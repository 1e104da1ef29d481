package command

import (
	"context"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-riskreport/report"
)

// Exporter runs report exports.
type Exporter interface {
	Export(ctx context.Context, req report.ExportRequest) (report.ExportResult, error)
}

// Pruner removes artifacts created before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// DefaultRetention is how long artifacts are kept when no max age is given.
const DefaultRetention = 7 * 24 * time.Hour

// GenerateReportHandler executes report exports.
type GenerateReportHandler struct {
	Exporter Exporter
}

func NewGenerateReportHandler(exporter Exporter) *GenerateReportHandler {
	return &GenerateReportHandler{Exporter: exporter}
}

func (h *GenerateReportHandler) Execute(ctx context.Context, msg GenerateReport) error {
	if h == nil || h.Exporter == nil {
		return errors.New("report exporter is required", errors.CategoryInternal).
			WithTextCode("EXPORTER_REQUIRED")
	}
	result, err := h.Exporter.Export(ctx, msg.Request())
	if err != nil {
		return report.AsGoError(err)
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[report.ExportResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

// PruneReportsHandler removes expired artifacts.
type PruneReportsHandler struct {
	Store  Pruner
	MaxAge time.Duration
	Config gcmd.HandlerConfig
	Clock  func() time.Time
}

func NewPruneReportsHandler(store Pruner) *PruneReportsHandler {
	return &PruneReportsHandler{
		Store:  store,
		MaxAge: DefaultRetention,
		Config: gcmd.HandlerConfig{Expression: "0 3 * * *"},
	}
}

func (h *PruneReportsHandler) Execute(ctx context.Context, msg PruneReports) error {
	if h == nil || h.Store == nil {
		return errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	now := msg.Now
	if now.IsZero() && h.Clock != nil {
		now = h.Clock()
	}
	if now.IsZero() {
		now = time.Now()
	}
	maxAge := msg.MaxAge
	if maxAge == 0 {
		maxAge = h.MaxAge
	}
	if maxAge <= 0 {
		maxAge = DefaultRetention
	}

	count, err := h.Store.Prune(ctx, now.Add(-maxAge))
	if err != nil {
		return report.AsGoError(err)
	}
	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

func (h *PruneReportsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), PruneReports{})
	}
}

func (h *PruneReportsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}
