package reportcanvas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"github.com/goliatone/go-riskreport/report"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	defaultMargin = 64

	titleSize   = 34
	headingSize = 24
	bodySize    = 14
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

// Rasterizer draws report pages onto a canvas at Scale times the page layout.
type Rasterizer struct {
	Scale   int
	Margin  int
	Palette Palette
}

// New returns a rasterizer at the default scale and palette.
func New() *Rasterizer {
	return &Rasterizer{
		Scale:   report.DefaultScale,
		Margin:  defaultMargin,
		Palette: DefaultPalette(),
	}
}

// Rasterize renders one page into a PNG snapshot.
func (r *Rasterizer) Rasterize(ctx context.Context, page report.ReportPage) (report.RasterSnapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return report.RasterSnapshot{}, err
	}

	layout := page.Layout
	if layout.Width <= 0 || layout.Height <= 0 {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, page.Index, "page layout must be positive", nil)
	}

	palette, err := r.palette().resolve()
	if err != nil {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, page.Index, "invalid palette", err)
	}
	scale := r.scale()

	faces, err := newFaceSet(scale)
	if err != nil {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, page.Index, "font setup failed", err)
	}
	defer faces.Close()

	canvas := image.NewRGBA(image.Rect(0, 0, layout.Width*scale, layout.Height*scale))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(palette.background), image.Point{}, draw.Src)

	p := newPainter(canvas, faces, palette, scale, r.margin())
	// the cover carries its title as a block
	if page.Kind == report.PageCover {
		p.coverBar()
	} else if page.Title != "" {
		p.heading(page.Title, false)
	}
	for i, block := range page.Blocks {
		if err := ctx.Err(); err != nil {
			return report.RasterSnapshot{}, err
		}
		if err := p.block(block); err != nil {
			return report.RasterSnapshot{}, report.PageError(report.KindRasterization, page.Index, fmt.Sprintf("block %d could not be drawn", i), err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, page.Index, "png encode failed", err)
	}

	return report.RasterSnapshot{
		SourcePageIndex: page.Index,
		PixelWidth:      canvas.Bounds().Dx(),
		PixelHeight:     canvas.Bounds().Dy(),
		ImageType:       "PNG",
		ImageBytes:      buf.Bytes(),
	}, nil
}

func (r *Rasterizer) scale() int {
	if r == nil || r.Scale <= 0 {
		return report.DefaultScale
	}
	return r.Scale
}

func (r *Rasterizer) margin() int {
	if r == nil || r.Margin <= 0 {
		return defaultMargin
	}
	return r.Margin
}

func (r *Rasterizer) palette() Palette {
	if r == nil {
		return DefaultPalette()
	}
	return r.Palette
}

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// faceSet holds the faces of one rasterization; faces are not safe for concurrent use.
type faceSet struct {
	title   font.Face
	heading font.Face
	body    font.Face
	strong  font.Face
}

func newFaceSet(scale int) (*faceSet, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	set := &faceSet{}
	var err error
	if set.title, err = newFace(boldFont, titleSize, scale); err != nil {
		return nil, err
	}
	if set.heading, err = newFace(boldFont, headingSize, scale); err != nil {
		set.Close()
		return nil, err
	}
	if set.body, err = newFace(regularFont, bodySize, scale); err != nil {
		set.Close()
		return nil, err
	}
	if set.strong, err = newFace(boldFont, bodySize, scale); err != nil {
		set.Close()
		return nil, err
	}
	return set, nil
}

func newFace(f *opentype.Font, size float64, scale int) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size * float64(scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (s *faceSet) Close() {
	for _, face := range []font.Face{s.title, s.heading, s.body, s.strong} {
		if face != nil {
			_ = face.Close()
		}
	}
}
