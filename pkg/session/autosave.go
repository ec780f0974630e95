package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
)

// DefaultAutosaveWait is the quiet period before an edited diagram is saved.
const DefaultAutosaveWait = 2 * time.Second

// Autosaver saves a draft a short while after the diagram stops changing.
type Autosaver struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
	save   *debounce.Debouncer[diagram.Diagram]

	mu    sync.Mutex
	draft *Draft
	err   error
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*autosaveConfig)

type autosaveConfig struct {
	wait   time.Duration
	clock  debounce.Clock
	logger *log.Logger
}

// WithAutosaveWait sets the quiet period.
func WithAutosaveWait(d time.Duration) AutosaveOption {
	return func(c *autosaveConfig) { c.wait = d }
}

// WithAutosaveClock replaces the wall clock.
func WithAutosaveClock(clock debounce.Clock) AutosaveOption {
	return func(c *autosaveConfig) { c.clock = clock }
}

// WithAutosaveLogger sets the logger for save failures.
func WithAutosaveLogger(l *log.Logger) AutosaveOption {
	return func(c *autosaveConfig) { c.logger = l }
}

// NewAutosaver saves into draft d of store s. ttl is applied on every save.
func NewAutosaver(s Store, d *Draft, ttl time.Duration, opts ...AutosaveOption) *Autosaver {
	cfg := autosaveConfig{wait: DefaultAutosaveWait, clock: debounce.RealClock, logger: log.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	a := &Autosaver{store: s, ttl: ttl, logger: cfg.logger, draft: d}
	a.save = debounce.New(cfg.wait, a.write, debounce.WithClock(cfg.clock))
	return a
}

// Changed schedules a save of diag.
func (a *Autosaver) Changed(diag diagram.Diagram) { a.save.Call(diag) }

// Flush saves a pending change now.
func (a *Autosaver) Flush() bool { return a.save.Flush() }

// Draft returns a copy of the draft as last saved.
func (a *Autosaver) Draft() Draft {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := *a.draft
	d.Diagram = d.Diagram.Clone()
	return d
}

// Err returns the error of the last save, if it failed.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Autosaver) write(diag diagram.Diagram) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.draft.Touch(diag, a.ttl)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.err = a.store.Set(ctx, a.draft)
	if a.err != nil {
		a.logger.Warn("autosave failed", "draft", a.draft.ID, "backend", a.store.Backend(), "err", a.err)
		return
	}
	a.logger.Debug("draft saved", "draft", a.draft.ID, "shapes", len(diag.Shapes), "edges", len(diag.Edges))
}
