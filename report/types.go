package report

import (
	"context"
	"io"
	"time"
)

// AssessmentResult is the computed questionnaire outcome handed to the pipeline.
type AssessmentResult struct {
	RiskCount      int
	TotalQuestions int
	Comments       []string
}

// RiskBand is the discrete classification derived from the risk percentage.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandModerate RiskBand = "moderate"
	BandHigh     RiskBand = "high"
)

// Label returns the human readable band label printed on the report.
func (b RiskBand) Label() string {
	switch b {
	case BandHigh:
		return "High Risk Score"
	case BandModerate:
		return "Moderate Risk Score"
	case BandLow:
		return "Low Risk Score"
	default:
		return string(b)
	}
}

// Score is the normalized scoring output.
type Score struct {
	Percentage int
	Band       RiskBand
}

// PageKind identifies a logical report page.
type PageKind string

const (
	PageCover                   PageKind = "cover"
	PageTableOfContents         PageKind = "table_of_contents"
	PageExecutiveSummary        PageKind = "executive_summary"
	PageScoreAndRecommendations PageKind = "score_and_recommendations"
	PageMerits                  PageKind = "merits"
	PageConclusion              PageKind = "conclusion"
)

// PageOrder is the canonical page sequence of every report.
var PageOrder = []PageKind{
	PageCover,
	PageTableOfContents,
	PageExecutiveSummary,
	PageScoreAndRecommendations,
	PageMerits,
	PageConclusion,
}

// BlockKind identifies a content block on a page.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockBullets   BlockKind = "bullets"
	BlockChart     BlockKind = "chart"
	BlockDate      BlockKind = "date"
)

// Emphasis hints how a text block is styled.
type Emphasis string

const (
	EmphasisNone     Emphasis = ""
	EmphasisTitle    Emphasis = "title"
	EmphasisStrong   Emphasis = "strong"
	EmphasisCentered Emphasis = "centered"
)

// GaugeChart describes the semicircular risk gauge.
type GaugeChart struct {
	Percent float64
	Levels  int
	Colors  []string
}

// Block is a unit of page content.
type Block struct {
	Kind     BlockKind
	Text     string
	Items    []string
	Chart    *GaugeChart
	Emphasis Emphasis
}

// PageLayout is the logical page size in device-independent pixels.
type PageLayout struct {
	Width  int
	Height int
}

// AspectRatio returns height over width.
func (l PageLayout) AspectRatio() float64 {
	if l.Width <= 0 {
		return 0
	}
	return float64(l.Height) / float64(l.Width)
}

// ReportPage is a logical page prior to rasterization.
type ReportPage struct {
	Index  int
	Kind   PageKind
	Title  string
	Blocks []Block
	Layout PageLayout
}

// ReportDocument is the ordered sequence of logical pages.
type ReportDocument struct {
	Pages       []ReportPage
	Score       Score
	GeneratedAt time.Time
}

// RasterSnapshot is a rendered capture of one logical page.
type RasterSnapshot struct {
	SourcePageIndex int
	PixelWidth      int
	PixelHeight     int
	ImageType       string
	ImageBytes      []byte
}

// PagePlacement is the destination page geometry of one snapshot, in points.
type PagePlacement struct {
	SourcePageIndex int
	Width           float64
	Height          float64
}

// ExportedDocument is the assembled multi-page artifact.
type ExportedDocument struct {
	Filename    string
	ContentType string
	Pages       []PagePlacement
	Bytes       []byte
}

// Rasterizer renders one logical page into a raster snapshot.
type Rasterizer interface {
	Rasterize(ctx context.Context, page ReportPage) (RasterSnapshot, error)
}

// RasterizerFunc adapts a function to a Rasterizer.
type RasterizerFunc func(ctx context.Context, page ReportPage) (RasterSnapshot, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, page ReportPage) (RasterSnapshot, error) {
	if f == nil {
		return RasterSnapshot{}, NewError(KindInternal, "rasterizer func is nil", nil)
	}
	return f(ctx, page)
}

// Assembler turns ordered snapshots into a single document.
type Assembler interface {
	Assemble(ctx context.Context, snapshots []RasterSnapshot) (ExportedDocument, error)
}

// AssemblerFunc adapts a function to an Assembler.
type AssemblerFunc func(ctx context.Context, snapshots []RasterSnapshot) (ExportedDocument, error)

func (f AssemblerFunc) Assemble(ctx context.Context, snapshots []RasterSnapshot) (ExportedDocument, error) {
	if f == nil {
		return ExportedDocument{}, NewError(KindInternal, "assembler func is nil", nil)
	}
	return f(ctx, snapshots)
}

// ExportState captures progress states of an export run.
type ExportState string

const (
	StateQueued      ExportState = "queued"
	StateRasterizing ExportState = "rasterizing"
	StateAssembling  ExportState = "assembling"
	StateDelivering  ExportState = "delivering"
	StateCompleted   ExportState = "completed"
	StateFailed      ExportState = "failed"
	StateCanceled    ExportState = "canceled"
)

// ExportRecord captures tracker state for an export run.
type ExportRecord struct {
	ID          string
	State       ExportState
	Percentage  int
	Band        RiskBand
	Pages       int
	Bytes       int64
	Filename    string
	Artifact    ArtifactRef
	Error       string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// ExportResult captures a completed export.
type ExportResult struct {
	ID       string
	Score    Score
	Filename string
	Pages    int
	Bytes    int64
	Artifact *ArtifactRef
	Document ExportedDocument
}

// ExportRequest captures one export invocation.
type ExportRequest struct {
	Assessment AssessmentResult
	Output     io.Writer
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string       `json:"key"`
	Meta ArtifactMeta `json:"meta"`
}

// ArtifactStore stores finished documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// ExportTracker records export run history.
type ExportTracker interface {
	Start(ctx context.Context, record ExportRecord) (string, error)
	SetState(ctx context.Context, id string, state ExportState) error
	Fail(ctx context.Context, id string, err error) error
	Complete(ctx context.Context, id string, result ExportResult) error
	Status(ctx context.Context, id string) (ExportRecord, error)
	List(ctx context.Context, filter ExportFilter) ([]ExportRecord, error)
}

// ExportFilter filters tracker lists.
type ExportFilter struct {
	State ExportState
	Since time.Time
	Until time.Time
	Limit int
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// ChangeEvent describes lifecycle events.
type ChangeEvent struct {
	Name      string
	ExportID  string
	Timestamp time.Time
	Metadata  map[string]any
}

// ChangeEmitter emits lifecycle events.
type ChangeEmitter interface {
	Emit(ctx context.Context, evt ChangeEvent) error
}

// MetricsEvent describes lifecycle metrics.
type MetricsEvent struct {
	Name      string
	ExportID  string
	Pages     int
	Bytes     int64
	Duration  time.Duration
	ErrorKind ErrorKind
	Timestamp time.Time
}

// MetricsHook emits metrics-friendly lifecycle observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}
