package domain

import (
	"context"
	"time"
)

// NodeEvent describes a cursor entering a node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	PathwayID string    `json:"pathway_id"`
	SessionID string    `json:"session_id,omitempty"`
	NodeID    string    `json:"node_id"`
	Kind      NodeKind  `json:"kind"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	// OnTerminal fires once, when a cursor reaches an action or treatment node.
	OnTerminal func(context.Context, *NodeEvent)
}
