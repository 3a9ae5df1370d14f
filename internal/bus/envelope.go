package bus

import (
	"encoding/json"
	"fmt"

	"github.com/docpulse/docpulse/internal/domain"
)

// Envelope field layouts mirror the JSON published on each topic. Every
// envelope carries a type discriminator so a subscriber can decode without
// knowing which topic the message arrived on.

type detectionEnvelope struct {
	Type       string  `json:"type"`
	ClientID   string  `json:"client_id"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

type pageCountEnvelope struct {
	Type       string `json:"type"`
	ClientID   string `json:"client_id"`
	TotalPages int    `json:"total_pages"`
}

type pageResultEnvelope struct {
	Type     string            `json:"type"`
	ClientID string            `json:"client_id"`
	PageNum  int               `json:"page_num"`
	Result   domain.PageResult `json:"result"`
}

// Encode serializes an event into its bus envelope.
func Encode(ev domain.Event) ([]byte, error) {
	switch e := ev.(type) {
	case domain.DetectionUpdate:
		return json.Marshal(detectionEnvelope{
			Type:       domain.KindDetection,
			ClientID:   e.ClientID,
			Status:     string(e.Status),
			Confidence: e.Progress,
			Message:    e.Message,
		})
	case domain.PageCountUpdate:
		return json.Marshal(pageCountEnvelope{
			Type:       domain.KindPageCount,
			ClientID:   e.ClientID,
			TotalPages: e.TotalPages,
		})
	case domain.PageResultUpdate:
		return json.Marshal(pageResultEnvelope{
			Type:     domain.KindPageResult,
			ClientID: e.ClientID,
			PageNum:  e.PageNumber,
			Result:   e.Result,
		})
	default:
		return nil, domain.BusError(fmt.Sprintf("unknown event type %T", ev), nil)
	}
}

// Decode parses a bus envelope back into its event.
func Decode(data []byte) (domain.Event, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, domain.BusError("malformed envelope", err)
	}

	switch probe.Type {
	case domain.KindDetection:
		var env detectionEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, domain.BusError("malformed detection envelope", err)
		}
		return domain.DetectionUpdate{
			ClientID: env.ClientID,
			Status:   domain.DetectionStatus(env.Status),
			Progress: env.Confidence,
			Message:  env.Message,
		}, nil
	case domain.KindPageCount:
		var env pageCountEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, domain.BusError("malformed page count envelope", err)
		}
		return domain.PageCountUpdate{
			ClientID:   env.ClientID,
			TotalPages: env.TotalPages,
		}, nil
	case domain.KindPageResult:
		var env pageResultEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, domain.BusError("malformed page result envelope", err)
		}
		return domain.PageResultUpdate{
			ClientID:   env.ClientID,
			PageNumber: env.PageNum,
			Result:     env.Result,
		}, nil
	default:
		return nil, domain.BusError(fmt.Sprintf("unknown envelope type %q", probe.Type), nil)
	}
}
