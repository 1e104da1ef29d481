package report

import (
	"fmt"
	"math"
)

// OutputWidth is the destination page width in points (A4 width).
const OutputWidth = 595.28

// aspectTolerance bounds the accepted drift between snapshot aspect ratios.
const aspectTolerance = 1e-6

// ValidateSnapshots checks that snapshots form a complete, consistent page set:
// every page index in [0, len) appears exactly once, every snapshot carries
// image data, and all snapshots share one aspect ratio. Order is not checked.
func ValidateSnapshots(snapshots []RasterSnapshot) error {
	if len(snapshots) == 0 {
		return NewError(KindAssembly, "no snapshots to assemble", nil)
	}

	seen := make(map[int]bool, len(snapshots))
	var ratio float64
	for pos, snapshot := range snapshots {
		idx := snapshot.SourcePageIndex
		if idx < 0 || idx >= len(snapshots) {
			return NewError(KindAssembly, fmt.Sprintf("snapshot at position %d has page index %d outside [0, %d)", pos, idx, len(snapshots)), nil)
		}
		if seen[idx] {
			return NewError(KindAssembly, fmt.Sprintf("duplicate snapshot for page %d", idx), nil)
		}
		seen[idx] = true

		if snapshot.PixelWidth <= 0 || snapshot.PixelHeight <= 0 {
			return PageError(KindAssembly, idx, fmt.Sprintf("invalid snapshot size %dx%d", snapshot.PixelWidth, snapshot.PixelHeight), nil)
		}
		if len(snapshot.ImageBytes) == 0 {
			return PageError(KindAssembly, idx, "snapshot has no image data", nil)
		}

		current := float64(snapshot.PixelHeight) / float64(snapshot.PixelWidth)
		if pos == 0 {
			ratio = current
			continue
		}
		if math.Abs(current-ratio) > aspectTolerance {
			return PageError(KindAssembly, idx, fmt.Sprintf("snapshot aspect ratio %.6f differs from %.6f", current, ratio), nil)
		}
	}
	return nil
}

// PlacePage scales a snapshot uniformly to the output width.
func PlacePage(snapshot RasterSnapshot, outputWidth float64) PagePlacement {
	if outputWidth <= 0 {
		outputWidth = OutputWidth
	}
	height := 0.0
	if snapshot.PixelWidth > 0 {
		height = float64(snapshot.PixelHeight) * (outputWidth / float64(snapshot.PixelWidth))
	}
	return PagePlacement{
		SourcePageIndex: snapshot.SourcePageIndex,
		Width:           outputWidth,
		Height:          height,
	}
}

// PlacePages computes placements for snapshots in the given order.
func PlacePages(snapshots []RasterSnapshot, outputWidth float64) []PagePlacement {
	placements := make([]PagePlacement, 0, len(snapshots))
	for _, snapshot := range snapshots {
		placements = append(placements, PlacePage(snapshot, outputWidth))
	}
	return placements
}
