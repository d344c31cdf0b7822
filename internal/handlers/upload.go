package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/garage-labs/carscope/internal/images"
	"github.com/garage-labs/carscope/internal/models"
)

// UploadResponse reports the gate decision and, when the image was
// admitted, its analysis result.
type UploadResponse struct {
	SessionID string                  `json:"session_id"`
	Admitted  bool                    `json:"admitted"`
	Reason    string                  `json:"reason,omitempty"`
	Result    *models.VehicleAnalysis `json:"result,omitempty"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// JSON requests carry an image URL instead of file data
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL  string `json:"image_url"`
		SessionID string `json:"session_id"`
	}

	if err := decodeJSONBody(r, &request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	payload, err := h.fetcher.Fetch(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to fetch image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.admitAndAnalyze(w, r, payload, request.SessionID)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	// Read one byte past the cap so an exactly-at-limit file passes,
	// matching the URL fetch path.
	fileData, err := io.ReadAll(io.LimitReader(file, images.MaxImageSize+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) > images.MaxImageSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	payload := models.ImagePayload{
		Data:     fileData,
		MIMEType: images.SniffMIMEType(fileData, header.Filename),
		Source:   header.Filename,
	}

	h.admitAndAnalyze(w, r, payload, r.FormValue("session_id"))
}

// admitAndAnalyze runs the admission gate and, when the image passes,
// the full analysis. Gate rejections are reported in the response, not
// as HTTP errors; other images in the same session are unaffected.
func (h *Handler) admitAndAnalyze(w http.ResponseWriter, r *http.Request, payload models.ImagePayload, sessionID string) {
	var session *models.InspectionSession
	if sessionID != "" {
		var ok bool
		session, ok = h.getSessionOrError(w, sessionID)
		if !ok {
			return
		}
	} else {
		session = h.sessionStore.Create(h.providerName, h.service.Model())
	}

	decision := h.gate.Admit(r.Context(), payload, session)
	if !decision.Admitted {
		h.writeJSON(w, UploadResponse{
			SessionID: session.ID,
			Admitted:  false,
			Reason:    decision.Reason,
		})
		return
	}

	result := h.service.Analyze(r.Context(), payload)
	h.attachDetectorReport(r.Context(), payload, result)

	item := imageItemFromPayload(payload)
	h.sessionStore.Append(session.ID, item, result)

	h.writeJSON(w, UploadResponse{
		SessionID: session.ID,
		Admitted:  true,
		Result:    result,
	})
}
