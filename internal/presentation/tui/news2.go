package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/carepath/pkg/news2"
)

var riskColors = map[news2.Risk]string{
	news2.RiskLow:    "#22c55e",
	news2.RiskMedium: "#f59e0b",
	news2.RiskHigh:   "#ef4444",
}

// FormatNEWS2 renders a score summary, colouring the risk band for profile.
// Use termenv.Ascii for uncoloured output.
func FormatNEWS2(r news2.Result, profile termenv.Profile) string {
	var sb strings.Builder
	b := r.Breakdown
	fmt.Fprintf(&sb, "Respiratory rate     %d\n", b.RespiratoryRate)
	fmt.Fprintf(&sb, "SpO2                 %d\n", b.OxygenSaturation)
	fmt.Fprintf(&sb, "Supplemental oxygen  %d\n", b.SupplementalOxygen)
	fmt.Fprintf(&sb, "Temperature          %d\n", b.Temperature)
	fmt.Fprintf(&sb, "Systolic BP          %d\n", b.SystolicBP)
	fmt.Fprintf(&sb, "Heart rate           %d\n", b.HeartRate)
	fmt.Fprintf(&sb, "Consciousness        %d\n", b.Consciousness)
	fmt.Fprintf(&sb, "Total                %d\n\n", r.TotalScore)

	risk := strings.ToUpper(string(r.ClinicalRisk))
	if c, ok := riskColors[r.ClinicalRisk]; ok && profile != termenv.Ascii {
		risk = termenv.String(risk).Bold().Foreground(profile.Color(c)).String()
	}
	fmt.Fprintf(&sb, "Clinical risk: %s", risk)
	if r.RedFlag {
		sb.WriteString(" (red flag: a single parameter scored 3)")
	}
	fmt.Fprintf(&sb, "\n%s\n", r.ClinicalResponse)
	return sb.String()
}
