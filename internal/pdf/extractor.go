// Package pdf provides document decoding: PDF page rasterization via
// go-fitz (MuPDF) and single-image decoding for the other supported upload
// types.
package pdf

import (
	"context"
	"fmt"
	"image"
	"os"

	// Register decoders for the supported single-image upload types.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gen2brain/go-fitz"

	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

// Extractor implements domain.PageExtractor over go-fitz and the stdlib
// image decoders.
type Extractor struct {
	logger *observability.Logger
}

// NewExtractor creates a new document extractor.
func NewExtractor(logger *observability.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// PageCount returns the number of pages in a PDF document.
func (e *Extractor) PageCount(ctx context.Context, path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, domain.DecodeError("failed to open PDF", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return 0, domain.DecodeError("PDF has no pages", nil)
	}

	e.logger.Debug().Str("path", path).Int("pages", n).Msg("counted PDF pages")
	return n, nil
}

// ExtractPages rasterizes every page of a PDF document in order.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]domain.PageImage, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.DecodeError("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.DecodeError("PDF has no pages", nil)
	}

	pages := make([]domain.PageImage, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, domain.DecodeError(fmt.Sprintf("failed to rasterize page %d", pageNum+1), err)
		}

		bounds := img.Bounds()
		pages = append(pages, domain.PageImage{
			PageNumber: pageNum + 1,
			Image:      img,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}

	e.logger.Debug().Str("path", path).Int("pages", len(pages)).Msg("extracted PDF pages")
	return pages, nil
}

// DecodeImage loads a single-image document as page 1.
func (e *Extractor) DecodeImage(ctx context.Context, path string) (domain.PageImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PageImage{}, domain.IOError("failed to open image", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return domain.PageImage{}, domain.DecodeError("failed to decode image", err)
	}

	bounds := img.Bounds()
	e.logger.Debug().Str("path", path).Str("format", format).
		Int("width", bounds.Dx()).Int("height", bounds.Dy()).
		Msg("decoded image")

	return domain.PageImage{
		PageNumber: 1,
		Image:      img,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}
