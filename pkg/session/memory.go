package session

import (
	"context"
	"sync"

	"github.com/matzehuels/flowchart/pkg/observability"
)

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[id]
	s.mu.RUnlock()

	if ok && d.IsExpired() {
		s.Delete(ctx, id)
		ok = false
	}
	observability.Draft().OnDraftLoaded(ctx, s.Backend(), id, ok)
	if !ok {
		return nil, nil
	}
	d.Diagram = d.Diagram.Clone()
	return &d, nil
}

func (s *MemoryStore) Set(ctx context.Context, d *Draft) error {
	cp := *d
	cp.Diagram = d.Diagram.Clone()

	s.mu.Lock()
	s.drafts[d.ID] = cp
	s.mu.Unlock()

	observability.Draft().OnDraftSaved(ctx, s.Backend(), d.ID, nil)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		if d.IsExpired() {
			continue
		}
		d.Diagram = d.Diagram.Clone()
		out = append(out, &d)
	}
	sortDrafts(out)
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.drafts {
		if d.IsExpired() {
			delete(s.drafts, id)
		}
	}
	return nil
}

func (s *MemoryStore) Backend() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
