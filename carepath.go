package carepath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/pathways"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
	"github.com/aretw0/carepath/pkg/ports"
	"github.com/aretw0/carepath/pkg/registry"
)

// Engine is the high-level entry point for the carepath library.
// It resolves pathways through a registry and drives consultations over them.
// Engine keeps no session state: every call takes and returns a *domain.Cursor.
type Engine struct {
	registry  *registry.Registry
	source    ports.Source
	hooks     domain.LifecycleHooks
	onScore   func(news2.Result)
	cacheSize int
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a pathway source, replacing the embedded catalog.
func WithSource(src ports.Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScoreObserver registers a callback that receives every NEWS2 result.
func WithScoreObserver(fn func(news2.Result)) Option {
	return func(e *Engine) {
		e.onScore = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCacheSize bounds the number of compiled pathways kept in memory.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// New initializes an Engine and registers the source's catalog.
// Without WithSource it serves the embedded default catalog.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.source == nil {
		eng.source = pathways.Source()
	}

	reg, err := registry.New(eng.source,
		registry.WithLogger(eng.logger),
		registry.WithCacheSize(eng.cacheSize),
	)
	if err != nil {
		return nil, err
	}
	if err := reg.Sync(ctx); err != nil {
		return nil, fmt.Errorf("failed to load pathway catalog: %w", err)
	}
	eng.registry = reg
	return eng, nil
}

// Registry exposes the pathway registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Pathways lists the registered pathways in catalog order.
func (e *Engine) Pathways() []registry.Entry {
	return e.registry.Entries()
}

// Pathway returns the compiled pathway for id.
func (e *Engine) Pathway(ctx context.Context, id string) (*domain.Pathway, error) {
	return e.registry.Lookup(ctx, id)
}

// Refresh drops cached copies of the given pathways, or of every pathway when ids is
// empty, then re-reads the catalog so new documents become visible.
func (e *Engine) Refresh(ctx context.Context, ids ...string) error {
	if inv, ok := e.source.(ports.Invalidator); ok {
		targets := ids
		if len(targets) == 0 {
			for _, entry := range e.registry.Entries() {
				targets = append(targets, entry.ID)
			}
		}
		if err := inv.Invalidate(ctx, targets...); err != nil {
			e.logger.Warn("source cache invalidation failed", "error", err)
		}
	}
	if len(ids) == 0 {
		e.registry.Purge()
	}
	for _, id := range ids {
		e.registry.Invalidate(id)
	}
	return e.registry.Sync(ctx)
}

func (e *Engine) engineFor(ctx context.Context, pathwayID string) (*runtime.Engine, error) {
	p, err := e.registry.Lookup(ctx, pathwayID)
	if err != nil {
		return nil, err
	}
	return runtime.NewEngine(p,
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger.With("pathway", pathwayID)),
	), nil
}

// Start opens a consultation on the pathway's root node.
// An empty sessionID is replaced by a random UUID.
func (e *Engine) Start(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory) (*domain.Cursor, error) {
	rt, err := e.engineFor(ctx, pathwayID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return rt.Start(ctx, sessionID, history)
}

// Render builds the view for the cursor's current node.
func (e *Engine) Render(ctx context.Context, c *domain.Cursor) (*domain.View, error) {
	if c == nil {
		return nil, fmt.Errorf("render: nil cursor")
	}
	rt, err := e.engineFor(ctx, c.PathwayID)
	if err != nil {
		return nil, err
	}
	return rt.Render(ctx, c)
}

// Advance applies one clinician answer and returns a new cursor, leaving c untouched.
func (e *Engine) Advance(ctx context.Context, c *domain.Cursor, answer any) (*domain.Cursor, error) {
	if c == nil {
		return nil, fmt.Errorf("advance: nil cursor")
	}
	rt, err := e.engineFor(ctx, c.PathwayID)
	if err != nil {
		return nil, err
	}
	return rt.Advance(ctx, c, answer)
}

// Walk replays answers from the root of a pathway.
func (e *Engine) Walk(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory, answers []any) (*domain.Cursor, error) {
	rt, err := e.engineFor(ctx, pathwayID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return rt.Walk(ctx, sessionID, history, answers)
}

// Score calculates NEWS2 and reports the result to the score observer.
func (e *Engine) Score(p news2.Parameters) news2.Result {
	r := news2.Calculate(p)
	if e.onScore != nil {
		e.onScore(r)
	}
	return r
}
