package reporttemplate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/goliatone/go-riskreport/report"
)

// DefaultTemplateName is the name DefaultPageTemplate is registered under.
const DefaultTemplateName = "page"

const (
	gaugeWidth     = 340
	gaugeThickness = 0.38
	gaugePadding   = 0.012
)

// Theme holds the page colours exposed to templates.
type Theme struct {
	Background string
	Text       string
	Heading    string
	CoverBar   string
	Needle     string
}

// DefaultTheme returns the report theme.
func DefaultTheme() Theme {
	return Theme{
		Background: "#080029",
		Text:       "#FFFFFF",
		Heading:    "#00BFFF",
		CoverBar:   "#33cae5",
		Needle:     "#FFFFFF",
	}
}

// PageView is the template context for one page.
type PageView struct {
	Index       int
	Kind        string
	Title       string
	Width       int
	Height      int
	Cover       bool
	CoverOffset int
	Blocks      []BlockView
}

// BlockView is a template-friendly block.
type BlockView struct {
	Kind     string
	Text     string
	Emphasis string
	Items    []string
	Gauge    *GaugeView
}

// GaugeView carries precomputed SVG geometry for the gauge chart.
type GaugeView struct {
	Width    int
	Height   int
	Segments []GaugeSegment
	Needle   string
	HubX     float64
	HubY     float64
	HubR     float64
}

// GaugeSegment is one coloured arc of the gauge.
type GaugeSegment struct {
	Path  string
	Color string
}

// Renderer renders report pages to HTML.
type Renderer struct {
	Templates    TemplateExecutor
	TemplateName string
	Theme        Theme
}

// NewRenderer returns a renderer backed by pongo2 with DefaultPageTemplate.
func NewRenderer() (*Renderer, error) {
	executor := NewPongo2Executor()
	if err := executor.Register(DefaultTemplateName, DefaultPageTemplate); err != nil {
		return nil, err
	}
	return &Renderer{
		Templates:    executor,
		TemplateName: DefaultTemplateName,
		Theme:        DefaultTheme(),
	}, nil
}

// RenderPage writes the HTML document of page to w.
func (r *Renderer) RenderPage(ctx context.Context, page report.ReportPage, w io.Writer) error {
	if r == nil || r.Templates == nil {
		return report.NewError(report.KindInternal, "template renderer requires templates", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	view, err := NewPageView(page)
	if err != nil {
		return report.PageError(report.KindRasterization, page.Index, "page view could not be built", err)
	}

	name := r.TemplateName
	if name == "" {
		name = DefaultTemplateName
	}
	theme := r.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme()
	}

	data := map[string]any{
		"page":  view,
		"theme": theme,
	}
	if err := r.Templates.ExecuteTemplate(w, name, data); err != nil {
		return report.PageError(report.KindRasterization, page.Index, "page template failed", err)
	}
	return nil
}

// RenderPageHTML renders page into memory.
func (r *Renderer) RenderPageHTML(ctx context.Context, page report.ReportPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderPage(ctx, page, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewPageView converts a page into its template context.
func NewPageView(page report.ReportPage) (PageView, error) {
	if page.Layout.Width <= 0 || page.Layout.Height <= 0 {
		return PageView{}, errors.New("page layout must be positive")
	}
	view := PageView{
		Index:  page.Index,
		Kind:   string(page.Kind),
		Title:  page.Title,
		Width:  page.Layout.Width,
		Height: page.Layout.Height,
		Cover:  page.Kind == report.PageCover,
		Blocks: make([]BlockView, 0, len(page.Blocks)),
	}
	if view.Cover {
		view.CoverOffset = page.Layout.Height * 2 / 5
	}

	for i, block := range page.Blocks {
		bv := BlockView{
			Kind:     string(block.Kind),
			Text:     block.Text,
			Emphasis: string(block.Emphasis),
			Items:    block.Items,
		}
		if block.Kind == report.BlockChart {
			gauge, err := newGaugeView(block.Chart)
			if err != nil {
				return PageView{}, fmt.Errorf("block %d: %w", i, err)
			}
			bv.Gauge = gauge
		}
		view.Blocks = append(view.Blocks, bv)
	}
	return view, nil
}

func newGaugeView(chart *report.GaugeChart) (*GaugeView, error) {
	if chart == nil {
		return nil, errors.New("chart block has no chart")
	}
	if chart.Levels <= 0 {
		return nil, fmt.Errorf("chart levels must be positive, got %d", chart.Levels)
	}
	if math.IsNaN(chart.Percent) || math.IsInf(chart.Percent, 0) {
		return nil, errors.New("chart percent is not finite")
	}
	colors := chart.Colors
	if len(colors) == 0 {
		colors = []string{DefaultTheme().Heading}
	}

	radius := float64(gaugeWidth) / 2
	hub := radius * 0.08
	cx, cy := radius, radius
	inner := radius * (1 - gaugeThickness)

	view := &GaugeView{
		Width:    gaugeWidth,
		Height:   int(math.Ceil(radius + hub)),
		Segments: make([]GaugeSegment, 0, chart.Levels),
		HubX:     cx,
		HubY:     cy,
		HubR:     hub,
	}
	for i := 0; i < chart.Levels; i++ {
		start := math.Pi*(1-float64(i)/float64(chart.Levels)) - gaugePadding
		end := math.Pi*(1-float64(i+1)/float64(chart.Levels)) + gaugePadding
		frac := (float64(i) + 0.5) / float64(chart.Levels)
		idx := min(int(frac*float64(len(colors))), len(colors)-1)
		view.Segments = append(view.Segments, GaugeSegment{
			Path:  arcPath(cx, cy, inner, radius, start, end),
			Color: colors[idx],
		})
	}

	percent := math.Max(0, math.Min(1, chart.Percent))
	view.Needle = needlePath(cx, cy, radius*0.9, hub*0.6, math.Pi*(1-percent))
	return view, nil
}

func point(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy - r*math.Sin(angle)
}

// arcPath traces an annular sector clockwise from start to end (radians, 0 = right).
func arcPath(cx, cy, inner, outer, start, end float64) string {
	x0, y0 := point(cx, cy, outer, start)
	x1, y1 := point(cx, cy, outer, end)
	x2, y2 := point(cx, cy, inner, end)
	x3, y3 := point(cx, cy, inner, start)
	return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 0 1 %.2f %.2f L %.2f %.2f A %.2f %.2f 0 0 0 %.2f %.2f Z",
		x0, y0, outer, outer, x1, y1, x2, y2, inner, inner, x3, y3)
}

func needlePath(cx, cy, length, halfWidth, angle float64) string {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f L %.2f %.2f Z",
		cx+length*cos, cy-length*sin,
		cx-halfWidth*sin, cy-halfWidth*cos,
		cx+halfWidth*sin, cy+halfWidth*cos)
}
