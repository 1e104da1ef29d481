package reportchromium

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-riskreport/report"
)

// PageRenderer renders one report page to a standalone HTML document.
type PageRenderer interface {
	RenderPageHTML(ctx context.Context, page report.ReportPage) ([]byte, error)
}

// Rasterizer captures report pages through a shared headless Chromium instance.
type Rasterizer struct {
	BrowserPath   string
	Headless      bool
	Timeout       time.Duration
	Args          []string
	Scale         int
	BlockExternal bool
	Pages         PageRenderer

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New returns a headless rasterizer at the default scale.
func New(pages PageRenderer) *Rasterizer {
	return &Rasterizer{
		Headless:      true,
		Scale:         report.DefaultScale,
		BlockExternal: true,
		Pages:         pages,
	}
}

// Rasterize renders page to HTML, loads it at the page viewport and captures it.
func (r *Rasterizer) Rasterize(ctx context.Context, pg report.ReportPage) (report.RasterSnapshot, error) {
	if r == nil {
		return report.RasterSnapshot{}, report.NewError(report.KindInternal, "chromium rasterizer is nil", nil)
	}
	if r.Pages == nil {
		return report.RasterSnapshot{}, report.NewError(report.KindInternal, "chromium rasterizer requires a page renderer", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	layout := pg.Layout
	if layout.Width <= 0 || layout.Height <= 0 {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, pg.Index, "page layout must be positive", nil)
	}

	htmlInput, err := r.Pages.RenderPageHTML(ctx, pg)
	if err != nil {
		return report.RasterSnapshot{}, err
	}

	if err := r.ensureBrowser(); err != nil {
		return report.RasterSnapshot{}, report.NewError(report.KindInternal, "chromium init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if r.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, r.Timeout)
		defer cancelTimeout()
	}

	scale := r.scale()
	var shot []byte
	actions := []chromedp.Action{}
	if r.BlockExternal {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs([]string{"http://*", "https://*"}),
		)
	}
	actions = append(actions,
		emulation.SetDeviceMetricsOverride(int64(layout.Width), int64(layout.Height), float64(scale), false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(htmlInput)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{
					X:      0,
					Y:      0,
					Width:  float64(layout.Width),
					Height: float64(layout.Height),
					Scale:  1,
				}).
				Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report.RasterSnapshot{}, ctxErr
		}
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, pg.Index, "chromium capture failed", err)
	}

	width, height, err := pngSize(shot)
	if err != nil {
		return report.RasterSnapshot{}, report.PageError(report.KindRasterization, pg.Index, "chromium returned an unreadable image", err)
	}

	return report.RasterSnapshot{
		SourcePageIndex: pg.Index,
		PixelWidth:      width,
		PixelHeight:     height,
		ImageType:       "PNG",
		ImageBytes:      shot,
	}, nil
}

// Close releases Chromium resources if they have been initialized.
func (r *Rasterizer) Close() error {
	if r == nil {
		return nil
	}
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func (r *Rasterizer) scale() int {
	if r.Scale <= 0 {
		return report.DefaultScale
	}
	return r.Scale
}

func (r *Rasterizer) ensureBrowser() error {
	r.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if r.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(r.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", r.Headless))
		options = append(options, allocatorOptionsFromArgs(r.Args)...)

		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		r.browserCtx, r.browserCancel = chromedp.NewContext(r.allocCtx)
	})
	if r.allocCtx == nil || r.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

// pngSize reads the pixel dimensions from the image header.
func pngSize(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.New("empty image")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	if format != "png" {
		return 0, 0, fmt.Errorf("unexpected image format %q", format)
	}
	return cfg.Width, cfg.Height, nil
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
