package view

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
)

// ShapeCommitter receives debounced shape label commits.
// [*diagram.Store] implements it.
type ShapeCommitter interface {
	UpdateShapeData(id string, patch diagram.Data) error
}

// EdgeCommitter receives debounced edge label commits.
// [*diagram.Store] implements it.
type EdgeCommitter interface {
	UpdateEdgeData(id string, patch diagram.Data) error
}

// Committer is the full update surface a [Manager] needs.
type Committer interface {
	ShapeCommitter
	EdgeCommitter
}

var _ Committer = (*diagram.Store)(nil)

// Option configures a view.
type Option func(*options)

type options struct {
	wait   time.Duration
	clock  debounce.Clock
	logger *log.Logger
}

func newOptions(opts []Option) options {
	o := options{wait: debounce.DefaultWait, clock: debounce.RealClock, logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithWait sets the quiet period before a label is committed.
func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithClock replaces the wall clock used by the debounce timers.
func WithClock(c debounce.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger used for commit failures.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
