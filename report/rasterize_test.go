package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubRasterizer struct {
	mu      sync.Mutex
	calls   []int
	failOn  int
	delay   func(index int) time.Duration
	active  int32
	maxSeen int32
	resize  func(page ReportPage) (int, int)
}

func newStubRasterizer() *stubRasterizer {
	return &stubRasterizer{failOn: -1}
}

func (r *stubRasterizer) Rasterize(ctx context.Context, page ReportPage) (RasterSnapshot, error) {
	current := atomic.AddInt32(&r.active, 1)
	defer atomic.AddInt32(&r.active, -1)
	for {
		seen := atomic.LoadInt32(&r.maxSeen)
		if current <= seen || atomic.CompareAndSwapInt32(&r.maxSeen, seen, current) {
			break
		}
	}

	r.mu.Lock()
	r.calls = append(r.calls, page.Index)
	r.mu.Unlock()

	if r.delay != nil {
		select {
		case <-time.After(r.delay(page.Index)):
		case <-ctx.Done():
			return RasterSnapshot{}, ctx.Err()
		}
	}
	if page.Index == r.failOn {
		return RasterSnapshot{}, errors.New("chart failed to initialize")
	}

	width, height := page.Layout.Width*DefaultScale, page.Layout.Height*DefaultScale
	if r.resize != nil {
		width, height = r.resize(page)
	}
	return RasterSnapshot{
		PixelWidth:  width,
		PixelHeight: height,
		ImageType:   "PNG",
		ImageBytes:  []byte(fmt.Sprintf("page-%d", page.Index)),
	}, nil
}

func TestRasterizeAll_PreservesOrderWhenParallel(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), []string{"a"})
	rasterizer := newStubRasterizer()
	// later pages finish first
	rasterizer.delay = func(index int) time.Duration {
		return time.Duration(len(doc.Pages)-index) * 5 * time.Millisecond
	}

	snapshots, err := RasterizeAll(context.Background(), rasterizer, doc, 3)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if len(snapshots) != len(doc.Pages) {
		t.Fatalf("expected %d snapshots, got %d", len(doc.Pages), len(snapshots))
	}
	for i, snapshot := range snapshots {
		if snapshot.SourcePageIndex != i {
			t.Fatalf("position %d holds page %d", i, snapshot.SourcePageIndex)
		}
		if string(snapshot.ImageBytes) != fmt.Sprintf("page-%d", i) {
			t.Fatalf("position %d holds wrong image %q", i, snapshot.ImageBytes)
		}
	}
	if peak := atomic.LoadInt32(&rasterizer.maxSeen); peak > 3 {
		t.Fatalf("expected at most 3 concurrent rasterizations, saw %d", peak)
	}
}

func TestRasterizeAll_SequentialByDefault(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), nil)
	rasterizer := newStubRasterizer()

	if _, err := RasterizeAll(context.Background(), rasterizer, doc, 0); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if peak := atomic.LoadInt32(&rasterizer.maxSeen); peak != 1 {
		t.Fatalf("expected sequential rendering, saw %d concurrent", peak)
	}
	for i, idx := range rasterizer.calls {
		if idx != i {
			t.Fatalf("expected call %d for page %d, got page %d", i, i, idx)
		}
	}
}

func TestRasterizeAll_FailureNamesPage(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), nil)
	rasterizer := newStubRasterizer()
	rasterizer.failOn = 3

	snapshots, err := RasterizeAll(context.Background(), rasterizer, doc, 2)
	if err == nil {
		t.Fatalf("expected error")
	}
	if snapshots != nil {
		t.Fatalf("expected no snapshots on failure, got %d", len(snapshots))
	}
	if KindFromError(err) != KindRasterization {
		t.Fatalf("expected rasterization error, got %v", KindFromError(err))
	}
	idx, ok := PageIndexFromError(err)
	if !ok || idx != 3 {
		t.Fatalf("expected failing page 3, got %d (%v)", idx, ok)
	}
}

func TestRasterizeAll_RejectsWrongAspect(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), nil)
	rasterizer := newStubRasterizer()
	rasterizer.resize = func(page ReportPage) (int, int) {
		if page.Index == 2 {
			return page.Layout.Width * 2, page.Layout.Height*2 + 1
		}
		return page.Layout.Width * 2, page.Layout.Height * 2
	}

	_, err := RasterizeAll(context.Background(), rasterizer, doc, 1)
	if KindFromError(err) != KindRasterization {
		t.Fatalf("expected rasterization error, got %v", err)
	}
	if idx, ok := PageIndexFromError(err); !ok || idx != 2 {
		t.Fatalf("expected failing page 2, got %d", idx)
	}
}

func TestRasterizeAll_Canceled(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), nil)
	rasterizer := newStubRasterizer()
	rasterizer.delay = func(int) time.Duration { return time.Second }

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	snapshots, err := RasterizeAll(ctx, rasterizer, doc, 1)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if snapshots != nil {
		t.Fatalf("expected no partial snapshots")
	}
	if KindFromError(err) != KindCanceled {
		t.Fatalf("expected canceled, got %v", KindFromError(err))
	}
}

func TestRasterizeAll_RequiresRasterizer(t *testing.T) {
	doc := NewBuilder().Build(ComputeScore(5, 10), nil)
	if _, err := RasterizeAll(context.Background(), nil, doc, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := RasterizeAll(context.Background(), newStubRasterizer(), ReportDocument{}, 1); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
