package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
)

func sampleDiagram() diagram.Diagram {
	s := diagram.NewStore()
	s.AppendShape(diagram.KindCircle)
	s.AppendShape(diagram.KindSquare)
	s.Connect(diagram.Connection{Source: "1", Target: "2"})
	return s.Snapshot()
}

func TestNewDraft(t *testing.T) {
	d := NewDraft(sampleDiagram(), time.Hour)
	if err := errors.ValidateDraftID(d.ID); err != nil {
		t.Errorf("generated id %q rejected: %v", d.ID, err)
	}
	if d.IsExpired() {
		t.Error("fresh draft expired")
	}
	if d.ExpiresAt.Sub(d.CreatedAt) != time.Hour {
		t.Errorf("expiry = %v after creation", d.ExpiresAt.Sub(d.CreatedAt))
	}

	forever := NewDraft(diagram.Diagram{}, 0)
	if !forever.ExpiresAt.IsZero() || forever.IsExpired() || forever.remaining() != 0 {
		t.Errorf("draft without ttl: %+v", forever)
	}
	if forever.Diagram.Shapes == nil {
		t.Error("draft diagram lists should not be nil")
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "drafts"))
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
		"redis":  newTestRedisStore(t),
	}
	if ms := newTestMongoStore(t); ms != nil {
		out["mongo"] = ms
	}
	return out
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			d := NewDraft(sampleDiagram(), time.Hour)
			d.Name = "login flow"
			if err := s.Set(ctx, d); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := s.Get(ctx, d.ID)
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if got.Name != "login flow" || len(got.Diagram.Shapes) != 2 || len(got.Diagram.Edges) != 1 {
				t.Errorf("draft = %+v", got)
			}
			if got.Diagram.Shapes[0].Label() != "circle" {
				t.Errorf("label = %q", got.Diagram.Shapes[0].Label())
			}

			if err := s.Delete(ctx, d.ID); err != nil {
				t.Fatal(err)
			}
			if got, err := s.Get(ctx, d.ID); got != nil || err != nil {
				t.Errorf("after Delete: %v, %v", got, err)
			}
			if err := s.Delete(ctx, d.ID); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			old := NewDraft(diagram.Diagram{}, time.Hour)
			old.ExpiresAt = time.Now().Add(-time.Minute)
			live := NewDraft(diagram.Diagram{}, time.Hour)
			s.Set(ctx, old)
			s.Set(ctx, live)

			if got, _ := s.Get(ctx, old.ID); got != nil {
				t.Error("expired draft returned")
			}
			list, err := s.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 || list[0].ID != live.ID {
				t.Errorf("List = %d drafts, want only the live one", len(list))
			}
			if err := s.Cleanup(ctx); err != nil {
				t.Errorf("Cleanup: %v", err)
			}
		})
	}
}

func TestStoreListOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a := NewDraft(diagram.Diagram{}, 0)
			b := NewDraft(diagram.Diagram{}, 0)
			b.UpdatedAt = a.UpdatedAt.Add(time.Minute)
			s.Set(ctx, a)
			s.Set(ctx, b)

			list, _ := s.List(ctx)
			if len(list) != 2 || list[0].ID != b.ID {
				t.Errorf("List order wrong: %v", list)
			}

			n, err := Clear(ctx, s)
			if err != nil || n != 2 {
				t.Errorf("Clear = %d, %v", n, err)
			}
			if list, _ := s.List(ctx); len(list) != 0 {
				t.Errorf("%d drafts left after Clear", len(list))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := NewDraft(sampleDiagram(), 0)
	s.Set(ctx, d)

	if got, err := Load(ctx, s, d.ID); err != nil || got.ID != d.ID {
		t.Errorf("Load = %v, %v", got, err)
	}
	if _, err := Load(ctx, s, "missing"); !errors.Is(err, errors.ErrCodeDraftNotFound) {
		t.Errorf("err = %v, want DRAFT_NOT_FOUND", err)
	}
	if _, err := Load(ctx, s, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	d := NewDraft(diagram.Diagram{}, 0)
	d.ID = "../escape"
	if err := s.Set(context.Background(), d); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Set err = %v, want INVALID_INPUT", err)
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	os.WriteFile(filepath.Join(s.Path(), "junk.json"), []byte("{"), 0o600)
	os.WriteFile(filepath.Join(s.Path(), "notes.txt"), []byte("hi"), 0o600)
	s.Set(context.Background(), NewDraft(diagram.Diagram{}, 0))

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("List = %d drafts, want 1", len(list))
	}
}

func TestAutosaver(t *testing.T) {
	clock := debounce.NewManualClock()
	s := NewMemoryStore()
	d := NewDraft(diagram.Diagram{}, time.Hour)
	a := NewAutosaver(s, d, time.Hour, WithAutosaveClock(clock))

	st := diagram.NewStore()
	for i := 0; i < 3; i++ {
		st.AppendShape(diagram.KindSquare)
		a.Changed(st.Snapshot())
		clock.Advance(time.Second)
	}
	if got, _ := s.Get(context.Background(), d.ID); got != nil {
		t.Fatal("saved before the quiet period")
	}

	clock.Advance(DefaultAutosaveWait)
	got, _ := s.Get(context.Background(), d.ID)
	if got == nil || len(got.Diagram.Shapes) != 3 {
		t.Fatalf("saved draft = %+v, want 3 shapes", got)
	}
	if a.Err() != nil {
		t.Errorf("Err() = %v", a.Err())
	}

	st.AppendShape(diagram.KindCircle)
	a.Changed(st.Snapshot())
	if !a.Flush() {
		t.Fatal("Flush() = false")
	}
	if got := a.Draft(); len(got.Diagram.Shapes) != 4 {
		t.Errorf("Draft() shapes = %d, want 4", len(got.Diagram.Shapes))
	}
}
