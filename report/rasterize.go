package report

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultScale is the sampling density applied on top of the logical layout.
const DefaultScale = 2

// RasterizeAll renders every page of doc and returns the snapshots in document
// order. Pages are rendered by up to workers goroutines; the first failure
// cancels the remaining pages and no snapshots are returned.
func RasterizeAll(ctx context.Context, r Rasterizer, doc ReportDocument, workers int) ([]RasterSnapshot, error) {
	if r == nil {
		return nil, NewError(KindInternal, "rasterizer is required", nil)
	}
	if len(doc.Pages) == 0 {
		return nil, NewError(KindInternal, "report document has no pages", nil)
	}
	if workers <= 0 {
		workers = 1
	}

	snapshots := make([]RasterSnapshot, len(doc.Pages))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, page := range doc.Pages {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			snapshot, err := r.Rasterize(groupCtx, page)
			if err != nil {
				return wrapPageFailure(i, err)
			}
			snapshot.SourcePageIndex = i
			if err := checkSnapshot(page, snapshot); err != nil {
				return err
			}
			snapshots[i] = snapshot
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NewError(KindCanceled, "rasterization interrupted", ctxErr)
		}
		return nil, err
	}
	return snapshots, nil
}

func wrapPageFailure(index int, err error) error {
	var reportErr *ReportError
	if errors.As(err, &reportErr) && reportErr.PageIndex >= 0 {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return PageError(KindRasterization, index, "page could not be rendered", err)
}

// checkSnapshot enforces a non-empty capture whose aspect ratio matches the page layout.
func checkSnapshot(page ReportPage, snapshot RasterSnapshot) error {
	if len(snapshot.ImageBytes) == 0 {
		return PageError(KindRasterization, page.Index, "rasterizer returned an empty image", nil)
	}
	if snapshot.PixelWidth <= 0 || snapshot.PixelHeight <= 0 {
		return PageError(KindRasterization, page.Index, fmt.Sprintf("invalid snapshot size %dx%d", snapshot.PixelWidth, snapshot.PixelHeight), nil)
	}
	// cross-multiplied to keep the comparison exact
	if snapshot.PixelWidth*page.Layout.Height != snapshot.PixelHeight*page.Layout.Width {
		return PageError(KindRasterization, page.Index, fmt.Sprintf("snapshot %dx%d does not match layout aspect %dx%d",
			snapshot.PixelWidth, snapshot.PixelHeight, page.Layout.Width, page.Layout.Height), nil)
	}
	return nil
}
