package results

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements Store over in-memory rows, for testing and dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Row
}

// NewMemoryStore creates a store holding rows. Names pass through EngineName
// on insert to mirror the engine.
func NewMemoryStore(rows ...Row) *MemoryStore {
	s := &MemoryStore{}
	for _, r := range rows {
		s.Add(r)
	}
	return s
}

// Add appends a row.
func (s *MemoryStore) Add(r Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Name = EngineName(r.Name)
	s.rows = append(s.rows, r)
}

// Rows returns a copy of all rows in insertion order.
func (s *MemoryStore) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// ComponentClasses returns the distinct classes.
func (s *MemoryStore) ComponentClasses(ctx context.Context) ([]string, error) {
	return s.distinct(func(r Row) (string, bool) { return r.Class, true }), nil
}

// ComponentNames returns the distinct names for class.
func (s *MemoryStore) ComponentNames(ctx context.Context, class string) ([]string, error) {
	return s.distinct(func(r Row) (string, bool) { return r.Name, r.Class == class }), nil
}

// FieldDescriptions returns the distinct descriptions for one instance.
func (s *MemoryStore) FieldDescriptions(ctx context.Context, class, name string) ([]string, error) {
	return s.distinct(func(r Row) (string, bool) {
		return r.Description, r.Class == class && r.Name == name
	}), nil
}

// Value returns the value of the first matching row.
func (s *MemoryStore) Value(ctx context.Context, class, name, description string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rows {
		if r.Class == class && r.Name == name && r.Description == description {
			return r.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q %q", ErrValueNotFound, class, name, description)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) distinct(pick func(Row) (string, bool)) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, r := range s.rows {
		v, ok := pick(r)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
