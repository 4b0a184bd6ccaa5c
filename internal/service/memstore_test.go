package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory DocumentStore for exercising the lifecycle
// engine without a database. failOps injects persistence failures per
// operation name ("upsert", "insert", "batch", "query", "get", "delete").
type memStore struct {
	mu      sync.Mutex
	docs    map[string]map[string]repository.Document // userID -> key -> doc
	failOps map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		docs:    make(map[string]map[string]repository.Document),
		failOps: make(map[string]bool),
	}
}

func (s *memStore) fail(op string) bool {
	return s.failOps[op]
}

func (s *memStore) user(userID string) map[string]repository.Document {
	m, ok := s.docs[userID]
	if !ok {
		m = make(map[string]repository.Document)
		s.docs[userID] = m
	}
	return m
}

func (s *memStore) Get(ctx context.Context, userID, key string) (*repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("get") {
		return nil, errStoreDown
	}
	doc, ok := s.user(userID)[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := doc
	return &out, nil
}

func (s *memStore) Upsert(ctx context.Context, userID string, doc repository.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("upsert") {
		return errStoreDown
	}
	doc.UpdatedAt = time.Now()
	s.user(userID)[doc.Key] = doc
	return nil
}

func (s *memStore) InsertIfAbsent(ctx context.Context, userID string, doc repository.Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("insert") {
		return false, errStoreDown
	}
	m := s.user(userID)
	if _, ok := m[doc.Key]; ok {
		return false, nil
	}
	doc.UpdatedAt = time.Now()
	m[doc.Key] = doc
	return true, nil
}

func (s *memStore) Batch(ctx context.Context, userID string, deleteKeys []string, upserts []repository.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("batch") {
		return errStoreDown
	}
	m := s.user(userID)
	for _, key := range deleteKeys {
		delete(m, key)
	}
	for _, doc := range upserts {
		doc.UpdatedAt = time.Now()
		m[doc.Key] = doc
	}
	return nil
}

func (s *memStore) Query(ctx context.Context, userID, docType string) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("query") {
		return nil, errStoreDown
	}
	var out []repository.Document
	for _, doc := range s.user(userID) {
		if doc.Type == docType {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memStore) Users(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("users") {
		return nil, errStoreDown
	}
	out := make([]string, 0, len(s.docs))
	for userID := range s.docs {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail("delete") {
		return errStoreDown
	}
	m := s.user(userID)
	if _, ok := m[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m, key)
	return nil
}
