package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/diagram"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// Runner renders diagrams with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Execute renders d in every requested format. Artifacts already in the
// cache for the same diagram and options are reused unless opts.Refresh is
// set.
func (r *Runner) Execute(ctx context.Context, d diagram.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	body, err := fio.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("serialize diagram for cache key: %w", err)
	}

	result := &Result{
		Artifacts:   make(map[string][]byte, len(opts.Formats)),
		DiagramHash: cache.Hash(body),
		Stats: Stats{
			ShapeCount: len(d.Shapes),
			EdgeCount:  len(d.Edges),
		},
	}

	start := time.Now()
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := cache.ArtifactKey(body, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				result.Artifacts[format] = data
				result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
				continue
			}
		}
		missing = append(missing, format)
	}
	result.CacheInfo.Misses = missing

	if len(missing) > 0 {
		sub := opts
		sub.Formats = missing
		rendered, err := Render(ctx, d, sub)
		if err != nil {
			observability.Export().OnExport(ctx, opts.Layout, 0, time.Since(start), err)
			return nil, err
		}
		for format, data := range rendered {
			result.Artifacts[format] = data
			key := cache.ArtifactKey(body, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
				r.Logger.Debug("cache write failed", "format", format, "err", err)
			}
		}
	}
	result.Stats.RenderTime = time.Since(start)

	size := 0
	for _, data := range result.Artifacts {
		size += len(data)
	}
	observability.Export().OnExport(ctx, opts.Layout, size, result.Stats.RenderTime, nil)

	r.Logger.Debug("rendered diagram",
		"layout", opts.Layout,
		"formats", opts.Formats,
		"hits", len(result.CacheInfo.Hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
