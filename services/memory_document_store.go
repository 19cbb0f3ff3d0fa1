package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"prediction-league/models"
)

type storedDocument struct {
	data    []byte
	version int64
}

// MemoryDocumentStore implements DocumentStore in memory. Documents are kept
// as JSON so callers never share state with the store.
type MemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]storedDocument
}

// NewMemoryDocumentStore creates an empty in-memory store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		documents: make(map[string]storedDocument),
	}
}

// Get returns a copy of the stored document and its version
func (s *MemoryDocumentStore) Get(ctx context.Context, leagueID string) (*models.LeagueDocument, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	stored, ok := s.documents[leagueID]
	s.mu.RUnlock()
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", models.ErrLeagueNotFound, leagueID)
	}

	var doc models.LeagueDocument
	if err := json.Unmarshal(stored.data, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to decode league %s: %w", leagueID, err)
	}
	doc.EnsureMaps()
	return &doc, stored.version, nil
}

// Set stores the document if expectedVersion allows it
func (s *MemoryDocumentStore) Set(ctx context.Context, leagueID string, doc *models.LeagueDocument, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode league %s: %w", leagueID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.documents[leagueID]
	switch {
	case expectedVersion < AnyVersion:
		return 0, &models.ValidationError{Field: "version", Reason: fmt.Sprintf("invalid version %d", expectedVersion)}
	case expectedVersion == AnyVersion:
	case expectedVersion == 0 && exists:
		return 0, fmt.Errorf("%w: league %s already exists", models.ErrVersionConflict, leagueID)
	case expectedVersion > 0 && (!exists || current.version != expectedVersion):
		return 0, fmt.Errorf("%w: league %s expected version %d", models.ErrVersionConflict, leagueID, expectedVersion)
	}

	next := current.version + 1
	s.documents[leagueID] = storedDocument{data: data, version: next}
	return next, nil
}

// Ping always succeeds
func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count returns the number of stored leagues
func (s *MemoryDocumentStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.documents)), ctx.Err()
}
