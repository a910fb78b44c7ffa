package confidence

import (
	"fmt"
	"strings"

	"github.com/finsight-ai/finsight/pkg/models"
)

const reportRule = "================================================================================"

// FormatReport renders a confidence result as a human-readable block
// appended to research reports.
func FormatReport(r models.ConfidenceResult) string {
	var b strings.Builder

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString("CONFIDENCE ASSESSMENT\n")
	b.WriteString(reportRule + "\n\n")

	fmt.Fprintf(&b, "Overall Confidence: %s (%.0f%%)\n", r.Level, r.OverallScore*100)
	fmt.Fprintf(&b, "Interpretation: %s\n\n", r.Interpretation)

	b.WriteString("Contributing Factors:\n")
	writeFactor(&b, "Data Completeness", r.Factors.DataCompleteness)
	writeFactor(&b, "Data Freshness", r.Factors.DataFreshness)
	writeFactor(&b, "Agent Agreement", r.Factors.AgentAgreement)
	writeFactor(&b, "Signal Strength", r.Factors.SignalStrength)
	writeFactor(&b, "Historical Accuracy", r.Factors.HistoricalAccuracy)

	if len(r.Caveats) > 0 {
		b.WriteString("\nCaveats:\n")
		for _, c := range r.Caveats {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}

	b.WriteString("\n" + reportRule + "\n")
	return b.String()
}

func writeFactor(b *strings.Builder, name string, score float64) {
	const barWidth = 20
	filled := int(score * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	fmt.Fprintf(b, "  %-22s %s %.0f%%\n", name, bar, score*100)
}
