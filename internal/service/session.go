package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"narraive/internal/domain"
	"narraive/internal/logging"
	"narraive/internal/store"
)

var (
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrNoDocuments      = errors.New("no documents uploaded")
	ErrDocumentNotFound = errors.New("document not found")
)

// Session holds the documents, answers and question of one client run.
type Session struct {
	backend domain.Backend
	docs    store.Storage
	newID   func() string

	mu       sync.RWMutex
	answers  []domain.Answer
	question string
}

// Option customises a Session.
type Option func(*Session)

// WithIDGenerator replaces the random UUID document ids.
func WithIDGenerator(f func() string) Option {
	return func(s *Session) { s.newID = f }
}

func NewSession(backend domain.Backend, docs store.Storage, opts ...Option) *Session {
	s := &Session{backend: backend, docs: docs, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload submits each file to the backend one at a time and appends a
// document per successful reply. A failing file is logged and skipped.
// Paths are taken literally.
func (s *Session) Upload(ctx context.Context, paths []string) []domain.Document {
	var added []domain.Document
	for _, p := range paths {
		doc, err := s.uploadOne(ctx, p)
		if err != nil {
			logging.LogEvent("upload %s skipped: %v", p, err)
			continue
		}
		s.docs.Append(doc)
		added = append(added, doc)
		logging.LogEvent("uploaded %s as %s (%d bytes of text)", doc.Name, doc.ID, len(doc.Text))
	}
	return added
}

func (s *Session) uploadOne(ctx context.Context, path string) (domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, err
	}
	defer f.Close()
	name := filepath.Base(path)
	text, err := s.backend.Upload(ctx, name, f)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{ID: s.newID(), Name: name, Text: text}, nil
}

// Delete removes the document with id. Answers are left alone.
func (s *Session) Delete(id string) bool {
	return s.docs.Delete(id)
}

// Reset clears documents, answers and the question.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs.Clear()
	s.answers = nil
	s.question = ""
}

// CanAsk reports why Ask would be a no-op, or nil.
func (s *Session) CanAsk(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	if s.docs.Len() == 0 {
		return ErrNoDocuments
	}
	return nil
}

// Ask sends the question with every loaded document in one request and
// replaces the answers with the reply. When the question is blank or no
// documents are loaded nothing is sent and the answers are unchanged.
func (s *Session) Ask(ctx context.Context, question string) ([]domain.Answer, error) {
	req, err := s.PrepareQuery(question)
	if err != nil {
		return nil, err
	}
	return s.SendQuery(ctx, req)
}

// PrepareQuery records the question and snapshots the loaded documents
// into a request. It returns ErrEmptyQuestion or ErrNoDocuments when
// there is nothing to ask.
func (s *Session) PrepareQuery(question string) (domain.QueryRequest, error) {
	s.SetQuestion(question)
	if err := s.CanAsk(question); err != nil {
		return domain.QueryRequest{}, err
	}
	return domain.QueryRequest{Question: question, Documents: domain.Refs(s.docs.List())}, nil
}

// SendQuery posts req and replaces the answers with the reply, even if
// the session was reset while the request was in flight.
func (s *Session) SendQuery(ctx context.Context, req domain.QueryRequest) ([]domain.Answer, error) {
	answers, err := s.backend.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if answers == nil {
		answers = []domain.Answer{}
	}

	s.mu.Lock()
	s.answers = answers
	s.mu.Unlock()
	logging.LogEvent("query over %d documents returned %d answers", len(req.Documents), len(answers))
	return s.Answers(), nil
}

// Theme asks the backend for the main theme of one document.
func (s *Session) Theme(ctx context.Context, id string) (string, error) {
	doc, ok := s.docs.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return s.backend.Theme(ctx, doc.Text)
}

// Narrate asks the backend for a story-style summary of one document.
func (s *Session) Narrate(ctx context.Context, id string) (string, error) {
	doc, ok := s.docs.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return s.backend.Narrate(ctx, doc.Text)
}

// DocumentName returns the name of the document or "Unknown".
func (s *Session) DocumentName(id string) string {
	if doc, ok := s.docs.Get(id); ok {
		return doc.Name
	}
	return domain.UnknownDocument
}

func (s *Session) Documents() []domain.Document { return s.docs.List() }

func (s *Session) Answers() []domain.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *Session) Question() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question
}

func (s *Session) SetQuestion(q string) {
	s.mu.Lock()
	s.question = q
	s.mu.Unlock()
}
