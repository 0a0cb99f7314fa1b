package memory

import (
	"sync"

	"narraive/internal/domain"
)

// Storage is an ordered in-memory document list.
type Storage struct {
	mu   sync.RWMutex
	docs []domain.Document
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Append(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

// Delete removes the first document with the given id and reports whether one was found.
func (s *Storage) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.docs = append(s.docs[:i:i], s.docs[i+1:]...)
	return true
}

func (s *Storage) Get(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Document{}, false
	}
	return s.docs[i], true
}

// List returns a copy so callers can range over it while uploads keep appending.
func (s *Storage) List() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
}

func (s *Storage) indexOf(id string) int {
	for i := range s.docs {
		if s.docs[i].ID == id {
			return i
		}
	}
	return -1
}
