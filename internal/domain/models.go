package domain

import (
	"fmt"
	"image"
	"strconv"
)

// SessionStatus tracks the lifecycle of one client's upload.
type SessionStatus string

const (
	SessionUploaded   SessionStatus = "uploaded"
	SessionAnalyzing  SessionStatus = "analyzing"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionError      SessionStatus = "error"
)

// ClientSession represents the stored state of one client's document run.
type ClientSession struct {
	ClientID   string        `json:"client_id"`
	SourcePath string        `json:"file_path"`
	Filename   string        `json:"filename"`
	Status     SessionStatus `json:"status"`
}

// DetectionStatus is the status carried by a DetectionUpdate event.
type DetectionStatus string

const (
	DetectionAnalyzing  DetectionStatus = "analyzing"
	DetectionProcessing DetectionStatus = "processing"
	DetectionCompleted  DetectionStatus = "completed"
	DetectionError      DetectionStatus = "error"
)

// Page orientation labels as rendered on the wire.
const (
	OrientationVertical   = "Vertical"
	OrientationHorizontal = "Horizontal"
)

// OrientationFor returns the wire label for an orientation flag.
func OrientationFor(isVertical bool) string {
	if isVertical {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// PageImage is a single rasterized document page ready for analysis.
type PageImage struct {
	PageNumber int
	Image      image.Image
	Width      int
	Height     int
}

// PageResult is the per-page outcome of orientation analysis.
type PageResult struct {
	Page        int     `json:"page"`
	IsVertical  bool    `json:"is_vertical"`
	AspectRatio float64 `json:"aspect_ratio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Orientation string  `json:"orientation"`
}

// Bus topics, one per event kind. Subscribers joining late miss earlier
// messages; the bus retains no history.
const (
	TopicDetectionUpdates = "detection_updates"
	TopicPageUpdates      = "page_updates"
	TopicPageResults      = "page_results"
)

// Topics returns all bus topics the relay subscribes to.
func Topics() []string {
	return []string{TopicDetectionUpdates, TopicPageUpdates, TopicPageResults}
}

// Event kind discriminators used in bus envelopes and wire payloads.
const (
	KindDetection  = "DETECTION"
	KindPageCount  = "PAGE_COUNT"
	KindPageResult = "PAGE_RESULT"
)

// wireAspectPrecision is the number of decimal places for aspect ratios on
// the wire.
const wireAspectPrecision = 2

// Event is a progress event produced by the job runner and consumed once by
// the relay. Events are immutable values; ordering within one client's run
// is significant.
type Event interface {
	// Topic names the bus channel the event is published on.
	Topic() string
	// Kind returns the envelope type discriminator.
	Kind() string
	// WirePayload renders the colon-delimited broadcast payload. Fields
	// containing ':' are not escaped; this mirrors the wire contract.
	WirePayload() string
}

// DetectionUpdate reports overall run progress for one client.
type DetectionUpdate struct {
	ClientID string
	Status   DetectionStatus
	Progress float64
	Message  string
}

func (e DetectionUpdate) Topic() string { return TopicDetectionUpdates }
func (e DetectionUpdate) Kind() string  { return KindDetection }

func (e DetectionUpdate) WirePayload() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", KindDetection, e.ClientID, e.Status,
		strconv.FormatFloat(e.Progress, 'g', -1, 64), e.Message)
}

// PageCountUpdate announces the total page count of a document.
type PageCountUpdate struct {
	ClientID   string
	TotalPages int
}

func (e PageCountUpdate) Topic() string { return TopicPageUpdates }
func (e PageCountUpdate) Kind() string  { return KindPageCount }

func (e PageCountUpdate) WirePayload() string {
	return fmt.Sprintf("%s:%s:%d", KindPageCount, e.ClientID, e.TotalPages)
}

// PageResultUpdate carries the analysis outcome for one page.
type PageResultUpdate struct {
	ClientID   string
	PageNumber int
	Result     PageResult
}

func (e PageResultUpdate) Topic() string { return TopicPageResults }
func (e PageResultUpdate) Kind() string  { return KindPageResult }

func (e PageResultUpdate) WirePayload() string {
	return fmt.Sprintf("%s:%s:%d:%s:%s:%d:%d", KindPageResult, e.ClientID,
		e.PageNumber, e.Result.Orientation,
		strconv.FormatFloat(e.Result.AspectRatio, 'f', wireAspectPrecision, 64),
		e.Result.Width, e.Result.Height)
}
