package dashboard

import (
	"fmt"
	"math"
	"time"

	"djdash/internal/domain"
)

// FormatPrice formats a price as X.XX, or "-" for zero/NaN.
func FormatPrice(p float64) string {
	if p == 0 || math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatChange formats a percent change as "+X.XX%" / "-X.XX%", or "" when
// the change is unknown.
func FormatChange(pct float64) string {
	if math.IsNaN(pct) {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

// FormatCorrelation formats a coefficient with three decimals, or "n/a".
func FormatCorrelation(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", r)
}

// OptionLabel is the dropdown label for a constituent: "<TICKER> <Name>".
func OptionLabel(r domain.Constituent) string {
	return fmt.Sprintf("%s %s", r.Ticker, r.Name)
}

func formatDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}
