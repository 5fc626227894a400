package domain

// Cursor is the private, per-consultation traversal position.
// Compiled pathways are shared; cursors are not.
type Cursor struct {
	PathwayID     string `json:"pathwayId"`
	SessionID     string `json:"sessionId,omitempty"`
	CurrentNodeID string `json:"currentNodeId"`
	// Path holds every visited node id, root first. It is kept for audit only.
	Path       []string       `json:"path"`
	Terminated bool           `json:"terminated"`
	History    PatientHistory `json:"history"`
}

// NewCursor creates a cursor positioned on the root node.
func NewCursor(pathwayID, sessionID, rootID string, history PatientHistory) *Cursor {
	return &Cursor{
		PathwayID:     pathwayID,
		SessionID:     sessionID,
		CurrentNodeID: rootID,
		Path:          []string{rootID},
		History:       history.clone(),
	}
}

// Snapshot returns a deep copy that can be mutated without affecting c.
func (c *Cursor) Snapshot() *Cursor {
	if c == nil {
		return nil
	}
	next := *c
	next.Path = append([]string(nil), c.Path...)
	next.History = c.History.clone()
	return &next
}
