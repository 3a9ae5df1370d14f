// Package analysis classifies page orientation from the bounding box of a
// page's content.
package analysis

import (
	"context"
	"image"
	"math"

	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

// inkThreshold is the luminance (0-255) below which a pixel counts as
// content rather than background.
const inkThreshold = 240

// Detector implements domain.PageAnalyzer. It finds the bounding box of
// non-background pixels; a box wider than tall is horizontal, otherwise
// vertical.
type Detector struct {
	logger *observability.Logger
}

// NewDetector creates a new orientation detector.
func NewDetector(logger *observability.Logger) *Detector {
	return &Detector{logger: logger}
}

// Analyze computes the orientation result for one page. A page with no
// detectable content yields the zero result (horizontal, aspect 0).
func (d *Detector) Analyze(ctx context.Context, page domain.PageImage) (domain.PageResult, error) {
	select {
	case <-ctx.Done():
		return domain.PageResult{}, ctx.Err()
	default:
	}

	if page.Image == nil {
		return domain.PageResult{}, domain.AnalysisError("page has no image data", nil)
	}

	box, found := contentBounds(page.Image)
	if !found {
		d.logger.Warn().Int("page", page.PageNumber).Msg("no content found on page")
		return domain.PageResult{
			Page:        page.PageNumber,
			Orientation: domain.OrientationHorizontal,
		}, nil
	}

	w, h := box.Dx(), box.Dy()
	var aspect float64
	if h > 0 {
		aspect = roundAspect(float64(w) / float64(h))
	}
	isVertical := aspect < 1

	d.logger.Debug().
		Int("page", page.PageNumber).
		Int("width", w).
		Int("height", h).
		Float64("aspect_ratio", aspect).
		Bool("is_vertical", isVertical).
		Msg("analyzed page")

	return domain.PageResult{
		Page:        page.PageNumber,
		IsVertical:  isVertical,
		AspectRatio: aspect,
		Width:       w,
		Height:      h,
		Orientation: domain.OrientationFor(isVertical),
	}, nil
}

// contentBounds returns the bounding box of all pixels darker than the ink
// threshold.
func contentBounds(img image.Image) (image.Rectangle, bool) {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// Rec. 601 luma, on 16-bit channel values.
			luma := (299*r + 587*g + 114*b) / 1000 >> 8
			if luma < inkThreshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// roundAspect rounds an aspect ratio to two decimal places, the precision
// carried in results and on the wire.
func roundAspect(a float64) float64 {
	return math.Round(a*100) / 100
}
