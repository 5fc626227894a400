package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
)

// Engine walks one compiled pathway.
//
// The pathway is immutable, so an Engine is safe for concurrent use. All per-session
// state lives in the *domain.Cursor values it hands out, and it never mutates a cursor
// it was given.
type Engine struct {
	pathway *domain.Pathway
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine for p.
func NewEngine(p *domain.Pathway, opts ...EngineOption) *Engine {
	e := &Engine{
		pathway: p,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pathway returns the pathway this engine walks.
func (e *Engine) Pathway() *domain.Pathway {
	return e.pathway
}

// Inspect returns every node in depth-first order, for visualisation tools.
func (e *Engine) Inspect() []domain.Node {
	return e.pathway.Nodes()
}

// Start creates a cursor on the root node and fires the entry hooks.
// A pathway whose root is terminal yields an already terminated cursor.
func (e *Engine) Start(ctx context.Context, sessionID string, history domain.PatientHistory) (*domain.Cursor, error) {
	root := e.pathway.Root()
	cursor := domain.NewCursor(e.pathway.ID, sessionID, root.NodeID(), history)
	e.enter(ctx, cursor, root)
	return cursor, nil
}

// Advance applies one clinician answer and returns a new cursor.
// On error the returned cursor is nil and c is left exactly as it was.
func (e *Engine) Advance(ctx context.Context, c *domain.Cursor, answer any) (*domain.Cursor, error) {
	if c == nil {
		return nil, fmt.Errorf("advance: nil cursor")
	}
	if c.PathwayID != e.pathway.ID {
		return nil, fmt.Errorf("advance: cursor for %q on pathway %q: %w", c.PathwayID, e.pathway.ID,
			&domain.TraversalError{NodeID: c.CurrentNodeID, Answer: answer, Err: domain.ErrForeignCursor})
	}

	node, ok := e.pathway.Node(c.CurrentNodeID)
	if !ok {
		return nil, &domain.TraversalError{NodeID: c.CurrentNodeID, Answer: answer, Err: domain.ErrUnknownNode}
	}
	if c.Terminated {
		return nil, &domain.TraversalError{NodeID: node.NodeID(), Answer: answer, Err: domain.ErrTerminated}
	}

	nextID, err := Step(node, answer)
	if err != nil {
		e.logger.Debug("answer rejected", "node_id", node.NodeID(), "err", err)
		return nil, err
	}
	next, ok := e.pathway.Node(nextID)
	if !ok {
		// NewPathway guarantees targets exist; reaching this means a hand-built arena.
		return nil, &domain.MalformedError{PathwayID: e.pathway.ID, NodeID: node.NodeID(), Reason: fmt.Sprintf("branch targets unknown node %q", nextID)}
	}

	nextCursor := c.Snapshot()
	nextCursor.CurrentNodeID = nextID
	nextCursor.Path = append(nextCursor.Path, nextID)
	e.enter(ctx, nextCursor, next)
	return nextCursor, nil
}

// Walk replays a full answer sequence from the root.
// When an answer is rejected it returns the last valid cursor together with the error.
func (e *Engine) Walk(ctx context.Context, sessionID string, history domain.PatientHistory, answers []any) (*domain.Cursor, error) {
	cursor, err := e.Start(ctx, sessionID, history)
	if err != nil {
		return nil, err
	}
	for i, answer := range answers {
		if err := ctx.Err(); err != nil {
			return cursor, err
		}
		next, err := e.Advance(ctx, cursor, answer)
		if err != nil {
			return cursor, fmt.Errorf("answer %d: %w", i, err)
		}
		cursor = next
	}
	return cursor, nil
}

// enter marks c as terminated when node is terminal and fires the hooks.
func (e *Engine) enter(ctx context.Context, c *domain.Cursor, node domain.Node) {
	e.logger.Debug("node entered", "pathway", c.PathwayID, "session", c.SessionID, "node_id", node.NodeID(), "kind", node.Kind())

	if node.Terminal() {
		c.Terminated = true
	}
	if e.hooks.OnNodeEnter == nil && e.hooks.OnTerminal == nil {
		return
	}

	event := &domain.NodeEvent{
		Timestamp: e.now(),
		PathwayID: c.PathwayID,
		SessionID: c.SessionID,
		NodeID:    node.NodeID(),
		Kind:      node.Kind(),
	}
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, event)
	}
	if node.Terminal() && e.hooks.OnTerminal != nil {
		e.hooks.OnTerminal(ctx, event)
	}
}
