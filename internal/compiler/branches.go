package compiler

import (
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

type pendingBranch struct {
	label string
	next  map[string]any
}

// canonicalBranches picks the authoritative encoding of a decision by precedence
// binary > choices > options > child. Empty encodings count as absent. Subtrees of
// lower-precedence encodings are returned as shadowed: they are validated but never
// become branches.
func (a *arena) canonicalBranches(id string, m map[string]any) (domain.BranchStyle, []pendingBranch, []pendingBranch, error) {
	yes, hasYes := m[domain.KeyYes].(map[string]any)
	no, hasNo := m[domain.KeyNo].(map[string]any)
	choices, _ := m[domain.KeyChoices].([]any)
	options, _ := m[domain.KeyOptions].([]any)
	child, hasChild := m[domain.KeyChild].(map[string]any)

	var present []domain.BranchStyle
	if hasYes || hasNo {
		present = append(present, domain.StyleBinary)
	}
	if len(choices) > 0 {
		present = append(present, domain.StyleChoices)
	}
	if len(options) > 0 {
		present = append(present, domain.StyleOptions)
	}
	if hasChild {
		present = append(present, domain.StyleChild)
	}

	if len(present) == 0 {
		return "", nil, nil, a.malformed(id, "decision has no branch encoding")
	}
	if len(present) > 1 {
		a.logger.Warn("decision declares several branch encodings, ignoring lower precedence",
			"node_id", id, "using", present[0], "ignored", present[1:])
	}

	encodings := make([][]pendingBranch, len(present))
	for i, style := range present {
		switch style {
		case domain.StyleBinary:
			if !hasYes || !hasNo {
				return "", nil, nil, a.malformed(id, "binary decision needs both yes and no")
			}
			encodings[i] = []pendingBranch{
				{label: domain.LabelYes, next: yes},
				{label: domain.LabelNo, next: no},
			}
		case domain.StyleChoices, domain.StyleOptions:
			entries := choices
			if style == domain.StyleOptions {
				entries = options
			}
			pending, err := a.labelled(id, entries)
			if err != nil {
				return "", nil, nil, err
			}
			encodings[i] = pending
		default:
			encodings[i] = []pendingBranch{{next: child}}
		}
	}

	var shadowed []pendingBranch
	for _, e := range encodings[1:] {
		shadowed = append(shadowed, e...)
	}
	return present[0], encodings[0], shadowed, nil
}

func (a *arena) labelled(id string, entries []any) ([]pendingBranch, error) {
	pending := make([]pendingBranch, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		entry := e.(map[string]any)
		label := entry[domain.KeyLabel].(string)
		if strings.TrimSpace(label) == "" {
			return nil, a.malformed(id, "branch %d has an empty label", i)
		}
		if seen[label] {
			return nil, a.malformed(id, "duplicate branch label %q", label)
		}
		seen[label] = true
		pending = append(pending, pendingBranch{label: label, next: entry[domain.KeyNext].(map[string]any)})
	}
	return pending, nil
}
