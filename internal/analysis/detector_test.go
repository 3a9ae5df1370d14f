package analysis

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

// testPage draws a black rectangle of the given size on a white canvas.
func testPage(pageNum, canvasW, canvasH, contentW, contentH int) domain.PageImage {
	img := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	for y := 0; y < canvasH; y++ {
		for x := 0; x < canvasW; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := 10; y < 10+contentH; y++ {
		for x := 10; x < 10+contentW; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return domain.PageImage{
		PageNumber: pageNum,
		Image:      img,
		Width:      canvasW,
		Height:     canvasH,
	}
}

func TestDetector_VerticalContent(t *testing.T) {
	detector := NewDetector(observability.NopLogger())

	result, err := detector.Analyze(context.Background(), testPage(1, 200, 200, 50, 100))
	require.NoError(t, err)

	assert.True(t, result.IsVertical)
	assert.Equal(t, domain.OrientationVertical, result.Orientation)
	assert.Equal(t, 0.5, result.AspectRatio)
	assert.Equal(t, 50, result.Width)
	assert.Equal(t, 100, result.Height)
	assert.Equal(t, 1, result.Page)
}

func TestDetector_HorizontalContent(t *testing.T) {
	detector := NewDetector(observability.NopLogger())

	result, err := detector.Analyze(context.Background(), testPage(2, 200, 200, 120, 60))
	require.NoError(t, err)

	assert.False(t, result.IsVertical)
	assert.Equal(t, domain.OrientationHorizontal, result.Orientation)
	assert.Equal(t, 2.0, result.AspectRatio)
}

func TestDetector_BlankPage(t *testing.T) {
	detector := NewDetector(observability.NopLogger())

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}

	result, err := detector.Analyze(context.Background(), domain.PageImage{
		PageNumber: 1,
		Image:      img,
		Width:      100,
		Height:     100,
	})
	require.NoError(t, err)

	assert.False(t, result.IsVertical)
	assert.Equal(t, domain.OrientationHorizontal, result.Orientation)
	assert.Equal(t, 0.0, result.AspectRatio)
	assert.Equal(t, 0, result.Width)
	assert.Equal(t, 0, result.Height)
}

func TestDetector_NilImage(t *testing.T) {
	detector := NewDetector(observability.NopLogger())

	_, err := detector.Analyze(context.Background(), domain.PageImage{PageNumber: 1})
	assert.Error(t, err)
}

func TestDetector_AspectRatioRounding(t *testing.T) {
	detector := NewDetector(observability.NopLogger())

	// 100/300 = 0.333... rounds to 0.33.
	result, err := detector.Analyze(context.Background(), testPage(1, 400, 400, 100, 300))
	require.NoError(t, err)
	assert.Equal(t, 0.33, result.AspectRatio)
}
