package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// FileStore keeps drafts as JSON files in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based draft store.
// If baseDir is empty, defaults to ~/.config/flowchart/drafts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "flowchart", "drafts")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) draftPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Draft, error) {
	if err := errors.ValidateDraftID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	d, err := s.read(s.draftPath(id))
	s.mu.RUnlock()

	if d != nil && d.IsExpired() {
		s.mu.Lock()
		os.Remove(s.draftPath(id))
		s.mu.Unlock()
		d = nil
	}
	observability.Draft().OnDraftLoaded(ctx, s.Backend(), id, d != nil)
	return d, err
}

func (s *FileStore) read(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read draft file: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	d.Diagram = d.Diagram.Clone()
	return &d, nil
}

func (s *FileStore) Set(ctx context.Context, d *Draft) (err error) {
	defer func() { observability.Draft().OnDraftSaved(ctx, s.Backend(), d.ID, err) }()

	if err := errors.ValidateDraftID(d.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a crash never leaves a half-written draft.
	path := s.draftPath(d.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write draft file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write draft file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDraftID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.draftPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove draft file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read draft dir: %w", err)
	}
	var out []*Draft
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		d, err := s.read(filepath.Join(s.baseDir, entry.Name()))
		if err != nil || d == nil || d.IsExpired() {
			continue
		}
		out = append(out, d)
	}
	sortDrafts(out)
	return out, nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read draft dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		d, err := s.read(path)
		if err != nil || d == nil {
			continue
		}
		if d.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Backend() string { return "file" }

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the draft files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
