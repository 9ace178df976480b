package certmanager

import (
	"context"
	"fmt"
	"sync"
)

// Store persists certificate records keyed by certificate ID.
// Implementations must be safe for concurrent use. Get returns ErrNotFound
// (possibly wrapped) when no record exists.
type Store interface {
	Get(ctx context.Context, id string) (*Certificate, error)
	Put(ctx context.Context, cert *Certificate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Certificate, error)
}

// MemoryStore is an in-memory Store for tests and single-process
// deployments. Records are copied on the way in and out so callers cannot
// mutate stored state through shared pointers.
type MemoryStore struct {
	mu    sync.RWMutex
	certs map[string]Certificate
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{certs: make(map[string]Certificate)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.certs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := cert
	out.AltNames = append([]string(nil), cert.AltNames...)
	return &out, nil
}

func (s *MemoryStore) Put(_ context.Context, cert *Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cert
	stored.AltNames = append([]string(nil), cert.AltNames...)
	s.certs[cert.ID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.certs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.certs, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		c := cert
		c.AltNames = append([]string(nil), cert.AltNames...)
		out = append(out, &c)
	}
	return out, nil
}
