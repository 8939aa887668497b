package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"safari_reviews/internal/domain"
)

// Store is the in-memory, insertion-ordered collection of accepted reviews.
// Records are never updated or removed.
type Store struct {
	mu      sync.RWMutex
	items   []domain.Review
	byIndex map[int]int // sourceIndex -> position in items
	seen    map[string]int
	next    int
}

func NewStore() *Store {
	return &Store{
		byIndex: map[int]int{},
		seen:    map[string]int{},
	}
}

// Ingest validates rv, stamps it with the next source index and appends it.
// Duplicates are kept; a repeated fingerprint is only logged.
func (s *Store) Ingest(rv domain.Review) (domain.Review, error) {
	if err := checkRequired(rv); err != nil {
		return domain.Review{}, err
	}
	if rv.Fingerprint == "" {
		rv.Fingerprint = fingerprint(rv.Name, rv.Timestamp, rv.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rv.SourceIndex = s.next
	s.next++
	if first, dup := s.seen[rv.Fingerprint]; dup {
		log.Debug().
			Int("index", rv.SourceIndex).
			Int("first_index", first).
			Str("source", string(rv.Source)).
			Msg("duplicate review content ingested")
	} else {
		s.seen[rv.Fingerprint] = rv.SourceIndex
	}
	s.byIndex[rv.SourceIndex] = len(s.items)
	s.items = append(s.items, rv)
	return rv, nil
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Get(sourceIndex int) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byIndex[sourceIndex]
	if !ok {
		return domain.Review{}, fmt.Errorf("review %d: %w", sourceIndex, domain.ErrNotFound)
	}
	return s.items[pos], nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
