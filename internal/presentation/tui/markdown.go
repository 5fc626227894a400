package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

// ViewMarkdown renders the current node of a consultation as markdown.
func ViewMarkdown(v *domain.View) string {
	var sb strings.Builder

	switch n := v.Node.(type) {
	case *domain.DecisionNode:
		heading(&sb, n.Title, n.ID)
		if n.Question != "" && n.Question != n.Title {
			fmt.Fprintf(&sb, "**%s**\n\n", n.Question)
		}
		opaqueBlock(&sb, n.Details)
		opaqueBlock(&sb, n.Additional)
		if v.Prompt != nil && len(v.Prompt.Options) > 0 {
			for i, o := range v.Prompt.Options {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, o)
			}
			sb.WriteString("\n")
		}

	case *domain.ActionNode:
		heading(&sb, n.Title, n.ID)
		for _, a := range n.Actions {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
		if len(n.Actions) > 0 {
			sb.WriteString("\n")
		}
		if n.SafetyNet {
			sb.WriteString("> Give safety-netting advice before the patient leaves.\n\n")
		}

	case *domain.TreatmentNode:
		heading(&sb, n.Title, n.ID)
		sb.WriteString("| | |\n|---|---|\n")
		row(&sb, "Drug", n.Drug)
		if n.DurationDays != nil {
			row(&sb, "Duration", fmt.Sprintf("%d days", *n.DurationDays))
		}
		row(&sb, "Route", n.Route)
		row(&sb, "Legal category", n.LegalCategory)
		row(&sb, "Formulations", strings.Join(n.Formulations, ", "))
		sb.WriteString("\n")
		if len(n.Dose) > 0 {
			sb.WriteString("**Dose**\n\n")
			opaqueBlock(&sb, n.Dose)
		}
		for _, p := range n.Plus {
			fmt.Fprintf(&sb, "- Plus: %s\n", p)
		}
		if len(n.Plus) > 0 {
			sb.WriteString("\n")
		}
		if n.FollowUp != "" {
			fmt.Fprintf(&sb, "**Follow-up:** %s\n\n", n.FollowUp)
		}
		if n.ReferralIfWorsen {
			sb.WriteString("> Refer if symptoms worsen.\n\n")
		}
		if n.SafetyNet {
			sb.WriteString("> Give safety-netting advice before the patient leaves.\n\n")
		}
	}

	if len(v.History) > 0 {
		sb.WriteString("*History:* ")
		parts := make([]string, len(v.History))
		for i, f := range v.History {
			parts[i] = f.Name + " " + f.Value
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func heading(sb *strings.Builder, title, id string) {
	if title == "" {
		title = id
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
}

func row(sb *strings.Builder, name, value string) {
	if value != "" {
		fmt.Fprintf(sb, "| %s | %s |\n", name, value)
	}
}

// opaqueBlock renders pass-through JSON: strings as paragraphs, string lists as bullets,
// string maps as a bullet per key, anything else as a code block.
func opaqueBlock(sb *strings.Builder, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		fmt.Fprintf(sb, "%s\n\n", s)
		return
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			fmt.Fprintf(sb, "- %s\n", item)
		}
		sb.WriteString("\n")
		return
	}
	var m map[string]string
	if json.Unmarshal(raw, &m) == nil {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, "- **%s:** %s\n", k, m[k])
		}
		sb.WriteString("\n")
		return
	}
	fmt.Fprintf(sb, "```json\n%s\n```\n\n", raw)
}
