package reportcanvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/goliatone/go-riskreport/report"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	bulletIndent   = 24
	blockSpacing   = 14
	coverBarHeight = 18
	gaugeRadius    = 170
	gaugeThickness = 0.38
	gaugePadding   = 0.012
)

// painter tracks the cursor of one page; all coordinates are device pixels.
type painter struct {
	canvas  *image.RGBA
	faces   *faceSet
	palette resolvedPalette
	scale   int
	left    int
	right   int
	y       int
}

func newPainter(canvas *image.RGBA, faces *faceSet, palette resolvedPalette, scale, margin int) *painter {
	bounds := canvas.Bounds()
	return &painter{
		canvas:  canvas,
		faces:   faces,
		palette: palette,
		scale:   scale,
		left:    margin * scale,
		right:   bounds.Dx() - margin*scale,
		y:       margin * scale,
	}
}

func (p *painter) px(v int) int {
	return v * p.scale
}

func (p *painter) width() int {
	return p.right - p.left
}

// coverBar paints the accent strip and moves the cursor to the title area.
func (p *painter) coverBar() {
	bounds := p.canvas.Bounds()
	bar := image.Rect(0, 0, bounds.Dx(), p.px(coverBarHeight))
	draw.Draw(p.canvas, bar, image.NewUniform(p.palette.coverBar), image.Point{}, draw.Src)
	side := image.Rect(0, 0, p.px(coverBarHeight/2), bounds.Dy())
	draw.Draw(p.canvas, side, image.NewUniform(p.palette.coverBar), image.Point{}, draw.Src)
	p.y = bounds.Dy() * 2 / 5
}

func (p *painter) block(block report.Block) error {
	switch block.Kind {
	case report.BlockHeading:
		p.heading(block.Text, block.Emphasis == report.EmphasisTitle)
	case report.BlockParagraph:
		face := p.faces.body
		if block.Emphasis == report.EmphasisStrong {
			face = p.faces.strong
		}
		p.paragraph(face, p.palette.text, block.Text, 0, block.Emphasis == report.EmphasisCentered)
	case report.BlockDate:
		p.paragraph(p.faces.body, p.palette.text, block.Text, 0, true)
	case report.BlockBullets:
		p.bullets(block.Items)
	case report.BlockChart:
		return p.gauge(block.Chart)
	default:
		return fmt.Errorf("unsupported block kind %q", block.Kind)
	}
	return nil
}

func (p *painter) heading(text string, title bool) {
	face := p.faces.heading
	if title {
		face = p.faces.title
	}
	p.paragraph(face, p.palette.heading, text, 0, title)
	p.y += p.px(blockSpacing)
}

func (p *painter) paragraph(face font.Face, col color.Color, text string, indent int, centered bool) {
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	for _, line := range wrapText(face, text, p.width()-indent) {
		x := p.left + indent
		if centered {
			x = p.left + (p.width()-font.MeasureString(face, line).Ceil())/2
		}
		p.drawString(face, col, x, p.y+ascent, line)
		p.y += lineHeight
	}
	p.y += p.px(blockSpacing)
}

func (p *painter) bullets(items []string) {
	face := p.faces.body
	ascent := face.Metrics().Ascent.Ceil()
	for _, item := range items {
		p.drawString(face, p.palette.heading, p.left, p.y+ascent, "•")
		p.paragraph(face, p.palette.text, item, p.px(bulletIndent), false)
	}
}

func (p *painter) drawString(face font.Face, col color.Color, x, baseline int, text string) {
	drawer := &font.Drawer{
		Dst:  p.canvas,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	drawer.DrawString(text)
}

// wrapText breaks text on whitespace so each line fits maxWidth; a single
// word wider than maxWidth keeps its own line.
func wrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := make([]string, 0, 4)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// gauge draws a semicircular gauge split into chart.Levels segments with a
// needle at chart.Percent.
func (p *painter) gauge(chart *report.GaugeChart) error {
	if chart == nil {
		return errors.New("chart block has no chart")
	}
	if chart.Levels <= 0 {
		return fmt.Errorf("chart levels must be positive, got %d", chart.Levels)
	}
	if math.IsNaN(chart.Percent) || math.IsInf(chart.Percent, 0) {
		return fmt.Errorf("chart percent is not finite")
	}
	colors := make([]color.RGBA, 0, len(chart.Colors))
	for _, hex := range chart.Colors {
		c, err := parseHexColor(hex)
		if err != nil {
			return err
		}
		colors = append(colors, c)
	}
	if len(colors) == 0 {
		colors = append(colors, p.palette.heading)
	}

	radius := float32(min(p.px(gaugeRadius), p.width()/2))
	hub := radius * 0.08
	w, h := int(2*radius), int(radius+hub)+1
	cx, cy := radius, radius
	origin := image.Point{X: p.left + (p.width()-w)/2, Y: p.y}
	target := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}

	z := vector.NewRasterizer(w, h)
	inner := radius * (1 - gaugeThickness)
	for i := 0; i < chart.Levels; i++ {
		start := math.Pi * (1 - float64(i)/float64(chart.Levels))
		end := math.Pi * (1 - float64(i+1)/float64(chart.Levels))
		z.Reset(w, h)
		annularSector(z, cx, cy, inner, radius, start-gaugePadding, end+gaugePadding)
		frac := (float64(i) + 0.5) / float64(chart.Levels)
		idx := min(int(frac*float64(len(colors))), len(colors)-1)
		z.Draw(p.canvas, target, image.NewUniform(colors[idx]), image.Point{})
	}

	percent := math.Max(0, math.Min(1, chart.Percent))
	angle := math.Pi * (1 - percent)
	z.Reset(w, h)
	needle(z, cx, cy, radius*0.9, hub*0.6, angle)
	z.Draw(p.canvas, target, image.NewUniform(p.palette.needle), image.Point{})
	z.Reset(w, h)
	annularSector(z, cx, cy, 0, hub, 0, 2*math.Pi)
	z.Draw(p.canvas, target, image.NewUniform(p.palette.needle), image.Point{})

	p.y += h + p.px(blockSpacing)
	return nil
}

func annularSector(z *vector.Rasterizer, cx, cy, inner, outer float32, start, end float64) {
	const steps = 24
	point := func(r float32, a float64) (float32, float32) {
		return cx + r*float32(math.Cos(a)), cy - r*float32(math.Sin(a))
	}
	x, y := point(outer, start)
	z.MoveTo(x, y)
	for s := 1; s <= steps; s++ {
		a := start + (end-start)*float64(s)/steps
		x, y = point(outer, a)
		z.LineTo(x, y)
	}
	if inner <= 0 {
		z.LineTo(cx, cy)
		z.ClosePath()
		return
	}
	for s := steps; s >= 0; s-- {
		a := start + (end-start)*float64(s)/steps
		x, y = point(inner, a)
		z.LineTo(x, y)
	}
	z.ClosePath()
}

func needle(z *vector.Rasterizer, cx, cy, length, halfWidth float32, angle float64) {
	cos, sin := float32(math.Cos(angle)), float32(math.Sin(angle))
	z.MoveTo(cx+length*cos, cy-length*sin)
	z.LineTo(cx-halfWidth*sin, cy-halfWidth*cos)
	z.LineTo(cx+halfWidth*sin, cy+halfWidth*cos)
	z.ClosePath()
}
