package statestore

import (
	"context"
	"encoding/json"
	"sync"
)

type memoryRecord struct {
	transcript    string
	hasTranscript bool
	questions     []string
	feedback      json.RawMessage
}

// MemoryStore keeps records in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *MemoryStore) record(ref string) *memoryRecord {
	r, ok := s.records[ref]
	if !ok {
		r = &memoryRecord{}
		s.records[ref] = r
	}
	return r
}

// SaveTranscript replaces the stored transcript.
func (s *MemoryStore) SaveTranscript(_ context.Context, sessionRef, transcript string) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(sessionRef)
	r.transcript = transcript
	r.hasTranscript = true
	return nil
}

// AppendQuestion records an interviewer question.
func (s *MemoryStore) AppendQuestion(_ context.Context, sessionRef, question string) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(sessionRef)
	r.questions = append(r.questions, question)
	return nil
}

// SaveFeedback replaces the stored feedback document.
func (s *MemoryStore) SaveFeedback(_ context.Context, sessionRef string, feedback json.RawMessage) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(sessionRef).feedback = append(json.RawMessage(nil), feedback...)
	return nil
}

// GetTranscript returns the stored transcript.
func (s *MemoryStore) GetTranscript(_ context.Context, sessionRef string) (string, error) {
	if err := validRef(sessionRef); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[sessionRef]
	if !ok || !r.hasTranscript {
		return "", ErrNotFound
	}
	return r.transcript, nil
}

// GetQuestions returns the recorded questions.
func (s *MemoryStore) GetQuestions(_ context.Context, sessionRef string) ([]string, error) {
	if err := validRef(sessionRef); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[sessionRef]
	if !ok || len(r.questions) == 0 {
		return nil, ErrNotFound
	}
	return append([]string(nil), r.questions...), nil
}

// GetFeedback returns the stored feedback document.
func (s *MemoryStore) GetFeedback(_ context.Context, sessionRef string) (json.RawMessage, error) {
	if err := validRef(sessionRef); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[sessionRef]
	if !ok || r.feedback == nil {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), r.feedback...), nil
}

var _ Store = (*MemoryStore)(nil)
