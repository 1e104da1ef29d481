package reportchromium

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"os/exec"
	"testing"
	"time"

	reporttemplate "github.com/goliatone/go-riskreport/adapters/template"
	"github.com/goliatone/go-riskreport/report"
)

func chromeBinaryPath(t *testing.T) string {
	t.Helper()

	chromePath := os.Getenv("CHROME_BIN")
	if chromePath == "" {
		paths := []string{"google-chrome", "chromium", "chromium-browser"}
		for _, candidate := range paths {
			if path, err := exec.LookPath(candidate); err == nil {
				chromePath = path
				break
			}
		}
	}
	if chromePath == "" {
		t.Skip("chromium binary not found; set CHROME_BIN to run this test")
	}

	return chromePath
}

func TestAllocatorOptionsFromArgs(t *testing.T) {
	options := allocatorOptionsFromArgs([]string{"--no-sandbox", "", "  ", "--", "window-size=800,600"})
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
}

func TestPNGSize(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 17))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	w, h, err := pngSize(buf.Bytes())
	if err != nil {
		t.Fatalf("pngSize: %v", err)
	}
	if w != 12 || h != 17 {
		t.Fatalf("expected 12x17, got %dx%d", w, h)
	}
	if _, _, err := pngSize(nil); err == nil {
		t.Fatalf("expected error for empty image")
	}
	if _, _, err := pngSize([]byte("not an image")); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestRasterize_RequiresPageRenderer(t *testing.T) {
	_, err := (&Rasterizer{}).Rasterize(context.Background(), report.ReportPage{Layout: report.DefaultLayout})
	if err == nil {
		t.Fatalf("expected error without page renderer")
	}
}

func TestRasterize_PageRendererFailureNamesPage(t *testing.T) {
	renderer, err := reporttemplate.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	page := report.ReportPage{
		Index:  4,
		Layout: report.DefaultLayout,
		Blocks: []report.Block{{Kind: report.BlockChart}},
	}
	_, err = New(renderer).Rasterize(context.Background(), page)
	if idx, ok := report.PageIndexFromError(err); !ok || idx != 4 {
		t.Fatalf("expected page 4 failure, got %v", err)
	}
}

func TestRasterize_Smoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium smoke test in short mode")
	}
	chromePath := chromeBinaryPath(t)

	renderer, err := reporttemplate.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	rasterizer := New(renderer)
	rasterizer.BrowserPath = chromePath
	rasterizer.Timeout = 20 * time.Second
	rasterizer.Args = []string{"--no-sandbox", "--disable-dev-shm-usage"}
	t.Cleanup(func() {
		_ = rasterizer.Close()
	})

	doc := report.NewBuilder().Build(report.ComputeScore(7, 10), []string{"Missing DPIA"})
	snapshots, err := report.RasterizeAll(context.Background(), rasterizer, doc, 2)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	for i, snapshot := range snapshots {
		if snapshot.PixelWidth != 794*2 || snapshot.PixelHeight != 1123*2 {
			t.Fatalf("page %d: unexpected size %dx%d", i, snapshot.PixelWidth, snapshot.PixelHeight)
		}
	}
}
