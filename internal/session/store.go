package session

import (
	"sync"
	"time"

	"github.com/garage-labs/carscope/internal/models"
	"github.com/google/uuid"
)

// Store holds inspection sessions in memory. Sessions live for the
// duration of the process and are discarded on reset or delete.
type Store struct {
	sessions map[string]*models.InspectionSession
	mu       sync.RWMutex
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*models.InspectionSession),
	}
}

// Create starts a new inspection session.
func (s *Store) Create(provider, model string) *models.InspectionSession {
	session := &models.InspectionSession{
		ID:        uuid.NewString(),
		Images:    []models.ImageItem{},
		Results:   []*models.VehicleAnalysis{},
		Provider:  provider,
		Model:     model,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session
}

func (s *Store) Get(sessionID string) (*models.InspectionSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *Store) Set(sessionID string, session *models.InspectionSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// Append records an admitted image and its analysis result at the
// next position, keeping Images and Results index-aligned.
func (s *Store) Append(sessionID string, item models.ImageItem, result *models.VehicleAnalysis) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return false
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	session.Images = append(session.Images, item)
	session.Results = append(session.Results, result)
	return true
}

// RemoveImage drops the image at the given index along with its
// result, preserving the order of the remaining entries.
func (s *Store) RemoveImage(sessionID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists || index < 0 || index >= len(session.Images) {
		return false
	}
	session.Images = append(session.Images[:index], session.Images[index+1:]...)
	session.Results = append(session.Results[:index], session.Results[index+1:]...)
	return true
}

func (s *Store) GetAll() []*models.InspectionSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.InspectionSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	return result
}

func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
