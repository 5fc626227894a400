package domain

// Prompt describes the answer a decision node expects.
type Prompt struct {
	Style    BranchStyle `json:"style"`
	Question string      `json:"question,omitempty"`
	// Options are the branch labels in order. Empty for StyleChild.
	Options []string `json:"options,omitempty"`
}

// View is everything a host needs to present the current position.
type View struct {
	PathwayID string   `json:"pathwayId"`
	Node      Node     `json:"node"`
	Prompt    *Prompt  `json:"prompt,omitempty"`
	Terminal  bool     `json:"terminal"`
	Path      []string `json:"path"`
	History   []Fact   `json:"history,omitempty"`
}
