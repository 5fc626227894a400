package news2

// MaxParameterScore is the highest score a single parameter can contribute.
const MaxParameterScore = 3

// HighRiskThreshold is the aggregate score at which risk becomes high.
const HighRiskThreshold = 7

// Clinical responses paired with each risk band.
const (
	ResponseRoutine = "Continue routine monitoring"
	ResponseLow     = "Monitor frequency should be at least 12 hourly"
	ResponseMedium  = "Urgent review by clinician with competencies in acute illness assessment. Consider escalation to critical care team"
	ResponseHigh    = "Emergency assessment by clinical team with critical care competencies. Usually transfer to higher level of care"
	ResponseRedFlag = "Urgent review by clinician (any parameter scoring 3 triggers urgent response even with low total score)"
)

// mediumRiskFloor is the lowest aggregate score classified as medium.
const mediumRiskFloor = 5

// ScoreRespiratoryRate scores breaths per minute.
func ScoreRespiratoryRate(rate int) int {
	switch {
	case rate <= 8:
		return 3
	case rate <= 11:
		return 1
	case rate <= 20:
		return 0
	case rate <= 24:
		return 2
	default:
		return 3
	}
}

// ScoreOxygenSaturation scores SpO2 (%) on the given scale.
// On Scale 2 the supplemental-oxygen flag only matters at 93% and above.
func ScoreOxygenSaturation(saturation int, scale OxygenScale, supplementalO2 bool) int {
	if scale != ScaleHypercapnic {
		switch {
		case saturation <= 91:
			return 3
		case saturation <= 93:
			return 2
		case saturation <= 95:
			return 1
		default:
			return 0
		}
	}

	switch {
	case saturation <= 83:
		return 3
	case saturation <= 85:
		return 2
	case saturation <= 87:
		return 1
	case saturation <= 92:
		return 0
	case !supplementalO2:
		return 0
	case saturation <= 94:
		return 1
	case saturation <= 96:
		return 2
	default:
		return 3
	}
}

// ScoreSupplementalOxygen scores the use of supplemental oxygen.
func ScoreSupplementalOxygen(supplementalO2 bool) int {
	if supplementalO2 {
		return 2
	}
	return 0
}

// ScoreTemperature scores body temperature in degrees Celsius.
func ScoreTemperature(temp float64) int {
	switch {
	case temp <= 35.0:
		return 3
	case temp <= 36.0:
		return 1
	case temp <= 38.0:
		return 0
	case temp <= 39.0:
		return 1
	default:
		return 2
	}
}

// ScoreSystolicBP scores systolic blood pressure in mmHg.
func ScoreSystolicBP(bp int) int {
	switch {
	case bp <= 90:
		return 3
	case bp <= 100:
		return 2
	case bp <= 110:
		return 1
	case bp <= 219:
		return 0
	default:
		return 3
	}
}

// ScoreHeartRate scores beats per minute.
func ScoreHeartRate(rate int) int {
	switch {
	case rate <= 40:
		return 3
	case rate <= 50:
		return 1
	case rate <= 90:
		return 0
	case rate <= 110:
		return 1
	case rate <= 130:
		return 2
	default:
		return 3
	}
}

// ScoreConsciousness scores the level of consciousness.
func ScoreConsciousness(level Consciousness) int {
	if level == Alert {
		return 0
	}
	return 3
}

// Score computes the per-parameter breakdown.
func Score(p Parameters) Breakdown {
	return Breakdown{
		RespiratoryRate:    ScoreRespiratoryRate(p.RespiratoryRate),
		OxygenSaturation:   ScoreOxygenSaturation(p.OxygenSaturation, p.OxygenScale, p.SupplementalOxygen),
		SupplementalOxygen: ScoreSupplementalOxygen(p.SupplementalOxygen),
		Temperature:        ScoreTemperature(p.Temperature),
		SystolicBP:         ScoreSystolicBP(p.SystolicBP),
		HeartRate:          ScoreHeartRate(p.HeartRate),
		Consciousness:      ScoreConsciousness(p.Consciousness),
	}
}

// Classify maps an aggregate score to its risk band and response,
// ignoring red flags.
func Classify(total int) (Risk, string) {
	switch {
	case total <= 0:
		return RiskLow, ResponseRoutine
	case total < mediumRiskFloor:
		return RiskLow, ResponseLow
	case total < HighRiskThreshold:
		return RiskMedium, ResponseMedium
	default:
		return RiskHigh, ResponseHigh
	}
}

// Calculate scores all parameters and classifies the result.
//
// A red flag lifts a low band to medium with ResponseRedFlag. It never lowers a band
// and leaves medium and high results untouched.
func Calculate(p Parameters) Result {
	breakdown := Score(p)
	total := breakdown.Total()
	risk, response := Classify(total)

	redFlag := breakdown.HasRedFlag()
	if redFlag && total < HighRiskThreshold && risk == RiskLow {
		risk = RiskMedium
		response = ResponseRedFlag
	}

	return Result{
		TotalScore:       total,
		Breakdown:        breakdown,
		ClinicalRisk:     risk,
		ClinicalResponse: response,
		RedFlag:          redFlag,
	}
}

// AtLeast reports whether r is the same as or more severe than other.
func (r Risk) AtLeast(other Risk) bool {
	return r.rank() >= other.rank()
}

func (r Risk) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
