package bus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpulse/docpulse/internal/domain"
)

func TestEncodeDetectionUpdate(t *testing.T) {
	data, err := Encode(domain.DetectionUpdate{
		ClientID: "c1",
		Status:   domain.DetectionProcessing,
		Progress: 0.4,
		Message:  "Page 1/2: Vertical",
	})
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "DETECTION", env["type"])
	assert.Equal(t, "c1", env["client_id"])
	assert.Equal(t, "processing", env["status"])
	assert.Equal(t, 0.4, env["confidence"])
	assert.Equal(t, "Page 1/2: Vertical", env["message"])
}

func TestDecodeDetectionUpdate(t *testing.T) {
	raw := `{"type":"DETECTION","client_id":"c1","status":"analyzing","confidence":0.1,"message":"3 pages detected"}`

	ev, err := Decode([]byte(raw))
	require.NoError(t, err)

	update, ok := ev.(domain.DetectionUpdate)
	require.True(t, ok)
	assert.Equal(t, "c1", update.ClientID)
	assert.Equal(t, domain.DetectionAnalyzing, update.Status)
	assert.Equal(t, 0.1, update.Progress)
	assert.Equal(t, "3 pages detected", update.Message)
}

func TestDecodePageCountUpdate(t *testing.T) {
	raw := `{"type":"PAGE_COUNT","client_id":"c1","total_pages":5}`

	ev, err := Decode([]byte(raw))
	require.NoError(t, err)

	update, ok := ev.(domain.PageCountUpdate)
	require.True(t, ok)
	assert.Equal(t, "c1", update.ClientID)
	assert.Equal(t, 5, update.TotalPages)
}

func TestPageResultRoundTrip(t *testing.T) {
	original := domain.PageResultUpdate{
		ClientID:   "c1",
		PageNumber: 3,
		Result: domain.PageResult{
			Page:        3,
			IsVertical:  true,
			AspectRatio: 0.71,
			Width:       595,
			Height:      842,
			Orientation: domain.OrientationVertical,
		},
	}

	data, err := Encode(original)
	require.NoError(t, err)

	ev, err := Decode(data)
	require.NoError(t, err)

	decoded, ok := ev.(domain.PageResultUpdate)
	require.True(t, ok)
	assert.Equal(t, original, decoded)
	assert.Equal(t, "PAGE_RESULT:c1:3:Vertical:0.71:595:842", decoded.WirePayload())
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"SOMETHING_ELSE"}`))
	assert.Error(t, err)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)
}
