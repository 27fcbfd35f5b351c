package inmemorystore

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepproxy/internal/buildstore"
)

// Store is an in-memory implementation of buildstore.Store.
type Store struct {
	mu      sync.Mutex
	numbers map[string]int
	records map[uuid.UUID]buildstore.Record
}

// New creates a new, empty in-memory build history.
func New() *Store {
	return &Store{
		numbers: make(map[string]int),
		records: make(map[uuid.UUID]buildstore.Record),
	}
}

// NextNumber allocates the next build number for project.
func (s *Store) NextNumber(ctx context.Context, project string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numbers[project]++
	return s.numbers[project], nil
}

// Save records a finished build.
func (s *Store) Save(ctx context.Context, rec buildstore.Record) error {
	rec.Parameters = maps.Clone(rec.Parameters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

// List returns the records of project, newest first.
func (s *Store) List(ctx context.Context, project string) ([]buildstore.Record, error) {
	s.mu.Lock()
	out := make([]buildstore.Record, 0, len(s.records))
	for _, rec := range s.records {
		if project == "" || rec.Project == project {
			rec.Parameters = maps.Clone(rec.Parameters)
			out = append(out, rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		if out[i].Project != out[j].Project {
			return out[i].Project < out[j].Project
		}
		return out[i].Number > out[j].Number
	})
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ buildstore.Store = (*Store)(nil)
