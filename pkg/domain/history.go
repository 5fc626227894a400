package domain

import "strconv"

// Severity is the clinician's overall impression.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// PatientHistory is supplied wholesale by the caller and only ever read.
// Every field is optional; nil means unknown.
type PatientHistory struct {
	Age               *int     `json:"age,omitempty" validate:"omitempty,gte=0,lte=130"`
	DurationDays      *int     `json:"durationDays,omitempty" validate:"omitempty,gte=0"`
	Bilateral         *bool    `json:"bilateral,omitempty"`
	Otorrhoea         *bool    `json:"otorrhoea,omitempty"`
	PenicillinAllergy *bool    `json:"penicillinAllergy,omitempty"`
	Severity          Severity `json:"severity,omitempty" validate:"omitempty,oneof=mild moderate severe"`
	Fever             *bool    `json:"fever,omitempty"`
}

// Fact is one known history field, formatted for display.
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Known lists the fields that are set, in declaration order.
func (h PatientHistory) Known() []Fact {
	var facts []Fact
	addInt := func(name string, v *int) {
		if v != nil {
			facts = append(facts, Fact{Name: name, Value: strconv.Itoa(*v)})
		}
	}
	addBool := func(name string, v *bool) {
		if v != nil {
			facts = append(facts, Fact{Name: name, Value: strconv.FormatBool(*v)})
		}
	}

	addInt("age", h.Age)
	addInt("durationDays", h.DurationDays)
	addBool("bilateral", h.Bilateral)
	addBool("otorrhoea", h.Otorrhoea)
	addBool("penicillinAllergy", h.PenicillinAllergy)
	if h.Severity != "" {
		facts = append(facts, Fact{Name: "severity", Value: string(h.Severity)})
	}
	addBool("fever", h.Fever)
	return facts
}

// clone copies the pointed-to values so a snapshot never aliases the caller's history.
func (h PatientHistory) clone() PatientHistory {
	out := h
	out.Age = clonePtr(h.Age)
	out.DurationDays = clonePtr(h.DurationDays)
	out.Bilateral = clonePtr(h.Bilateral)
	out.Otorrhoea = clonePtr(h.Otorrhoea)
	out.PenicillinAllergy = clonePtr(h.PenicillinAllergy)
	out.Fever = clonePtr(h.Fever)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
