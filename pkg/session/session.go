// Package session persists editor drafts: unfinished diagrams the editor
// autosaves so a session can be resumed with `flowchart edit --draft ID`.
//
// Backends:
//   - file: one JSON file per draft, for the CLI (default)
//   - redis: keys with native expiry, for shared or long-running servers
//   - mongo: one document per draft with a TTL index
//   - memory: in-process, for tests and the server's "none" backend
//
// # Usage
//
//	store, err := session.NewFileStore("")
//	d := session.NewDraft(store.Snapshot(), session.DefaultTTL)
//	err = store.Set(ctx, d)
//
//	d, err := session.Load(ctx, store, id) // DRAFT_NOT_FOUND if missing
//
// Drafts with a zero ExpiresAt never expire.
package session

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
)

// DefaultTTL is how long an untouched draft is kept.
const DefaultTTL = 30 * 24 * time.Hour

// Draft is a saved editor state.
type Draft struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Diagram   diagram.Diagram `json:"diagram" bson:"diagram"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero" bson:"expires_at,omitempty"`
}

// NewDraft creates a draft of d with a random id. A non-positive ttl never
// expires.
func NewDraft(d diagram.Diagram, ttl time.Duration) *Draft {
	now := time.Now().UTC()
	dr := &Draft{
		ID:        uuid.NewString(),
		Diagram:   d.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		dr.ExpiresAt = now.Add(ttl)
	}
	return dr
}

// Touch replaces the diagram and extends the expiry by ttl from now.
func (d *Draft) Touch(diag diagram.Diagram, ttl time.Duration) {
	d.Diagram = diag.Clone()
	d.UpdatedAt = time.Now().UTC()
	if ttl > 0 {
		d.ExpiresAt = d.UpdatedAt.Add(ttl)
	}
}

// IsExpired reports whether the draft is past its expiry.
func (d *Draft) IsExpired() bool {
	return !d.ExpiresAt.IsZero() && time.Now().After(d.ExpiresAt)
}

// remaining returns the time left before expiry, or 0 for drafts that never
// expire.
func (d *Draft) remaining() time.Duration {
	if d.ExpiresAt.IsZero() {
		return 0
	}
	return max(time.Until(d.ExpiresAt), time.Second)
}

// Store is the interface for draft storage backends.
type Store interface {
	// Get retrieves a draft by id.
	// Returns nil, nil if the draft doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Draft, error)

	// Set stores a draft, replacing any draft with the same id.
	Set(ctx context.Context, d *Draft) error

	// Delete removes a draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every live draft, most recently updated first.
	List(ctx context.Context) ([]*Draft, error)

	// Cleanup removes expired drafts (may be a no-op where the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Backend names the backend in logs ("file", "redis", "mongo", "memory").
	Backend() string

	Close() error
}

// Load returns draft id, or a DRAFT_NOT_FOUND error.
func Load(ctx context.Context, s Store, id string) (*Draft, error) {
	if err := errors.ValidateDraftID(id); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load draft %s", id)
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeDraftNotFound, "draft %s not found", id)
	}
	return d, nil
}

// Clear deletes every draft and returns how many were removed.
func Clear(ctx context.Context, s Store) (int, error) {
	drafts, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, d := range drafts {
		if err := s.Delete(ctx, d.ID); err != nil {
			return i, err
		}
	}
	return len(drafts), nil
}

func sortDrafts(ds []*Draft) {
	slices.SortFunc(ds, func(a, b *Draft) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
