package domain

import "context"

// PageExtractor turns an uploaded document into analyzable page images.
type PageExtractor interface {
	// PageCount returns the number of pages in a PDF document.
	PageCount(ctx context.Context, path string) (int, error)

	// ExtractPages rasterizes every page of a PDF document in order.
	ExtractPages(ctx context.Context, path string) ([]PageImage, error)

	// DecodeImage loads a single-image document as page 1.
	DecodeImage(ctx context.Context, path string) (PageImage, error)
}

// PageAnalyzer classifies the orientation of one page.
type PageAnalyzer interface {
	Analyze(ctx context.Context, page PageImage) (PageResult, error)
}

// EventPublisher publishes progress events to the bus. The returned count
// is the number of subscribers that received the message.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) (int64, error)
}
