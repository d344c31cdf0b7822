package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.sessionStore.GetAll())
	case "POST":
		session := h.sessionStore.Create(h.providerName, h.service.Model())
		h.writeJSON(w, session)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	// /api/sessions/{id}/images/{index}
	if id, rest, found := strings.Cut(sessionID, "/images/"); found {
		h.handleImageDetail(w, r, id, rest)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "DELETE":
		h.sessionStore.Delete(sessionID)
		h.writeJSON(w, map[string]string{"message": "Session deleted"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleImageDetail(w http.ResponseWriter, r *http.Request, sessionID, indexStr string) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.getSessionOrError(w, sessionID); !ok {
		return
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		h.writeError(w, "Invalid image index: "+indexStr, http.StatusBadRequest)
		return
	}

	if !h.sessionStore.RemoveImage(sessionID, index) {
		h.writeError(w, "Image index out of range", http.StatusNotFound)
		return
	}

	session, _ := h.sessionStore.Get(sessionID)
	h.writeJSON(w, session)
}
