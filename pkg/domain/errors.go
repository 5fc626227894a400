package domain

import (
	"errors"
	"fmt"
)

// ErrPathwayNotFound is returned when no pathway is registered or stored under an id.
var ErrPathwayNotFound = errors.New("pathway not found")

// ErrMalformedPathway marks a document that violates the pathway invariants.
// It is fatal for that document: no traversal may run against it.
var ErrMalformedPathway = errors.New("malformed pathway")

// Traversal errors. They are recoverable: the caller re-prompts and the cursor is untouched.
var (
	ErrTerminated       = errors.New("pathway already terminated")
	ErrNoMatchingBranch = errors.New("answer does not match any branch")
	ErrInvalidAnswer    = errors.New("invalid answer")
	ErrUnknownNode      = errors.New("unknown node")
	ErrForeignCursor    = errors.New("cursor belongs to another pathway")
)

// MalformedError reports a load-time invariant violation with the offending node.
type MalformedError struct {
	PathwayID string
	NodeID    string
	Reason    string
}

func (e *MalformedError) Error() string {
	switch {
	case e.NodeID == "" && e.PathwayID == "":
		return fmt.Sprintf("malformed pathway: %s", e.Reason)
	case e.NodeID == "":
		return fmt.Sprintf("malformed pathway %q: %s", e.PathwayID, e.Reason)
	case e.PathwayID == "":
		return fmt.Sprintf("malformed pathway: node %q: %s", e.NodeID, e.Reason)
	}
	return fmt.Sprintf("malformed pathway %q: node %q: %s", e.PathwayID, e.NodeID, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedPathway }

// TraversalError wraps a traversal sentinel with the node and answer involved.
type TraversalError struct {
	NodeID string
	Answer any
	Err    error
}

func (e *TraversalError) Error() string {
	if e.Answer == nil {
		return fmt.Sprintf("node %q: %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("node %q: answer %v: %v", e.NodeID, e.Answer, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }
