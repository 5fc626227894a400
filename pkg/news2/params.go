package news2

import "strings"

// OxygenScale selects the SpO2 banding table.
type OxygenScale string

const (
	// ScaleStandard is SpO2 Scale 1, used for most patients.
	ScaleStandard OxygenScale = "scale1"
	// ScaleHypercapnic is SpO2 Scale 2, for patients with hypercapnic respiratory failure.
	ScaleHypercapnic OxygenScale = "scale2"
)

// Consciousness is the ACVPU level collapsed to the two NEWS2 bands.
type Consciousness string

const (
	// Alert scores 0.
	Alert Consciousness = "alert"
	// CVPU covers new Confusion, response to Voice, response to Pain and Unresponsive. Scores 3.
	CVPU Consciousness = "cvpu"
)

// ParseConsciousness maps free-text ACVPU answers onto the two bands.
// Anything that is not recognisably "alert" is treated as CVPU.
func ParseConsciousness(s string) Consciousness {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alert", "a":
		return Alert
	default:
		return CVPU
	}
}

// Risk is the clinical risk band derived from the aggregate score.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Parameters holds one set of observations.
type Parameters struct {
	RespiratoryRate    int           `json:"respiratoryRate" validate:"gte=0"`
	OxygenSaturation   int           `json:"oxygenSaturation" validate:"gte=0,lte=100"`
	OxygenScale        OxygenScale   `json:"oxygenScale" validate:"required,oneof=scale1 scale2"`
	SupplementalOxygen bool          `json:"supplementalOxygen"`
	Temperature        float64       `json:"temperature" validate:"gte=0"`
	SystolicBP         int           `json:"systolicBP" validate:"gte=0"`
	HeartRate          int           `json:"heartRate" validate:"gte=0"`
	Consciousness      Consciousness `json:"consciousness" validate:"required,oneof=alert cvpu"`
}

// Breakdown is the per-parameter score.
type Breakdown struct {
	RespiratoryRate    int `json:"respiratoryRate"`
	OxygenSaturation   int `json:"oxygenSaturation"`
	SupplementalOxygen int `json:"supplementalOxygen"`
	Temperature        int `json:"temperature"`
	SystolicBP         int `json:"systolicBP"`
	HeartRate          int `json:"heartRate"`
	Consciousness      int `json:"consciousness"`
}

// Scores returns the seven scores in a fixed order.
func (b Breakdown) Scores() [7]int {
	return [7]int{
		b.RespiratoryRate,
		b.OxygenSaturation,
		b.SupplementalOxygen,
		b.Temperature,
		b.SystolicBP,
		b.HeartRate,
		b.Consciousness,
	}
}

// Total sums the breakdown.
func (b Breakdown) Total() int {
	total := 0
	for _, s := range b.Scores() {
		total += s
	}
	return total
}

// HasRedFlag reports whether any single parameter scored the maximum.
func (b Breakdown) HasRedFlag() bool {
	for _, s := range b.Scores() {
		if s == MaxParameterScore {
			return true
		}
	}
	return false
}

// Result is the outcome of Calculate.
type Result struct {
	TotalScore       int       `json:"totalScore"`
	Breakdown        Breakdown `json:"breakdown"`
	ClinicalRisk     Risk      `json:"clinicalRisk"`
	ClinicalResponse string    `json:"clinicalResponse"`
	// RedFlag is set when at least one parameter scored 3.
	RedFlag bool `json:"redFlag"`
}
