package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/carepath/pkg/domain"
)

type decisionFields struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Question string `mapstructure:"question"`
}

type actionFields struct {
	ID        string   `mapstructure:"id"`
	Title     string   `mapstructure:"title"`
	Actions   []string `mapstructure:"actions"`
	SafetyNet bool     `mapstructure:"safetyNet"`
}

type treatmentFields struct {
	ID               string   `mapstructure:"id"`
	Title            string   `mapstructure:"title"`
	Drug             string   `mapstructure:"drug"`
	DurationDays     *int     `mapstructure:"durationDays"`
	Formulations     []string `mapstructure:"formulations"`
	Route            string   `mapstructure:"route"`
	LegalCategory    string   `mapstructure:"legalCategory"`
	Plus             []string `mapstructure:"plus"`
	FollowUp         string   `mapstructure:"followUp"`
	SafetyNet        bool     `mapstructure:"safetyNet"`
	ReferralIfWorsen bool     `mapstructure:"referralIfWorsen"`
	Inherits         string   `mapstructure:"inherits"`
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// opaque re-encodes a pass-through payload. Missing and null both yield nil.
func opaque(fields map[string]any, key string) (json.RawMessage, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return data, nil
}

func buildNode(n *rawNode, fields map[string]any) (domain.Node, error) {
	switch n.kind {
	case domain.KindDecision:
		var f decisionFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		details, err := opaque(fields, "details")
		if err != nil {
			return nil, err
		}
		additional, err := opaque(fields, "additional")
		if err != nil {
			return nil, err
		}
		return &domain.DecisionNode{
			ID:         f.ID,
			Title:      f.Title,
			Question:   f.Question,
			Details:    details,
			Additional: additional,
			Style:      n.style,
			Branches:   n.branches,
		}, nil

	case domain.KindAction:
		var f actionFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		return &domain.ActionNode{
			ID:        f.ID,
			Title:     f.Title,
			Actions:   f.Actions,
			SafetyNet: f.SafetyNet,
		}, nil

	case domain.KindTreatment:
		var f treatmentFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		dose, err := opaque(fields, "dose")
		if err != nil {
			return nil, err
		}
		return &domain.TreatmentNode{
			ID:               f.ID,
			Title:            f.Title,
			Drug:             f.Drug,
			DurationDays:     f.DurationDays,
			Dose:             dose,
			Formulations:     f.Formulations,
			Route:            f.Route,
			LegalCategory:    f.LegalCategory,
			Plus:             f.Plus,
			FollowUp:         f.FollowUp,
			SafetyNet:        f.SafetyNet,
			ReferralIfWorsen: f.ReferralIfWorsen,
			Inherits:         f.Inherits,
		}, nil
	}
	return nil, fmt.Errorf("unknown node type %q", n.kind)
}

// decodeDocument fills the document-level fields of p from the validated tree.
func decodeDocument(p *domain.Pathway, tree map[string]any) error {
	if err := decode(tree["metadata"], &p.Metadata); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if notes, ok := tree["notes"]; ok && notes != nil {
		if err := decode(notes, &p.Notes); err != nil {
			return fmt.Errorf("notes: %w", err)
		}
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}

	if raw, ok := tree["selfCareAndSafetyNetting"].(map[string]any); ok {
		var sc domain.SelfCareAndSafetyNetting
		if err := decode(raw, &sc); err != nil {
			return fmt.Errorf("selfCareAndSafetyNetting: %w", err)
		}
		p.SelfCare = &sc
	}

	if pgds, ok := tree["pgds"].(map[string]any); ok {
		p.PGDs = make(map[string]json.RawMessage, len(pgds))
		for name := range pgds {
			data, err := opaque(pgds, name)
			if err != nil {
				return fmt.Errorf("pgds: %w", err)
			}
			if data != nil {
				p.PGDs[name] = data
			}
		}
	}
	return nil
}
