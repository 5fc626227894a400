/*
Package news2 implements the National Early Warning Score 2 (NEWS2) used to detect
physiological deterioration in adults.

Each vital sign is scored independently against the Royal College of Physicians banding
tables, the scores are summed and the total is mapped to a clinical risk band. Any single
parameter scoring the maximum of 3 (a "red flag") raises a low total to at least medium
risk.

All functions are pure and total: every numeric input is classified, values beyond the
clinical range fall into the nearest boundary band, and nothing returns an error.

	result := news2.Calculate(news2.Parameters{
		RespiratoryRate:  23,
		OxygenSaturation: 94,
		OxygenScale:      news2.ScaleStandard,
		Temperature:      38.5,
		SystolicBP:       108,
		HeartRate:        95,
		Consciousness:    news2.Alert,
	})
	// result.TotalScore == 6, result.ClinicalRisk == news2.RiskMedium
*/
package news2
