package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/garage-labs/carscope/internal/analysis"
	"github.com/garage-labs/carscope/internal/damage"
	"github.com/garage-labs/carscope/internal/gate"
	"github.com/garage-labs/carscope/internal/images"
	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/session"
)

// Handler wires the HTTP surface to the analysis service, the
// admission gate, and the in-memory session store.
type Handler struct {
	sessionStore *session.Store
	service      *analysis.Service
	gate         *gate.Gate
	fetcher      *images.Fetcher
	detector     *damage.Client // nil when no external detector is configured
	providerName string
}

// New creates a Handler for the given provider. detectorURL may be
// empty; the external damage detector is optional.
func New(providerName, model, detectorURL string) (*Handler, error) {
	service, err := analysis.NewService(providerName, model)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		sessionStore: session.New(),
		service:      service,
		gate:         gate.New(service),
		fetcher:      images.NewFetcher(),
		providerName: providerName,
	}
	if detectorURL != "" {
		h.detector = damage.NewClient(detectorURL)
	}
	return h, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.InspectionSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
