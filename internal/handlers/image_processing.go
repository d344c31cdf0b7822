package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"

	"github.com/garage-labs/carscope/internal/models"
)

func decodeJSONBody(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// imageItemFromPayload builds the session metadata record for an
// admitted image, decoding pixel dimensions where possible.
func imageItemFromPayload(payload models.ImagePayload) models.ImageItem {
	item := models.ImageItem{
		Source:   payload.Source,
		MIMEType: payload.MIMEType,
	}

	config, _, err := image.DecodeConfig(bytes.NewReader(payload.Data))
	if err != nil {
		slog.Warn("Failed to decode image dimensions", "source", payload.Source, "error", err)
		return item
	}

	item.Width = config.Width
	item.Height = config.Height
	return item
}

// attachDetectorReport enriches an analysis with the external damage
// detector's findings when the detector is configured and reachable.
// Its absence is tolerated: the vision-model result stands on its own.
func (h *Handler) attachDetectorReport(ctx context.Context, payload models.ImagePayload, result *models.VehicleAnalysis) {
	if h.detector == nil {
		return
	}

	report, err := h.detector.Detect(ctx, payload.Source, payload.Data, 0.5)
	if err != nil {
		slog.Warn("External damage detector unavailable", "error", err)
		return
	}

	report.MergeInto(result)
}
