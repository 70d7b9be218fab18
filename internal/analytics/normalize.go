package analytics

import (
	"errors"

	"djdash/internal/domain"
)

// Normalize divides every close by the first observation's close, producing
// the base return of the series. The first point is exactly 1.0.
func Normalize(series domain.PriceSeries) ([]domain.Point, error) {
	if series.Len() == 0 {
		return nil, errors.New("empty series")
	}
	base := series.Observations[0].Close
	if base == 0 {
		return nil, errors.New("first close is zero")
	}

	out := make([]domain.Point, series.Len())
	for i, o := range series.Observations {
		out[i] = domain.Point{Date: o.Date, Value: o.Close / base}
	}
	out[0].Value = 1.0
	return out, nil
}

// CountByExchange counts constituents per exchange. Every known exchange is
// present in the result, with zero when nothing is listed there.
func CountByExchange(c *domain.Constituents) map[domain.Exchange]int {
	counts := make(map[domain.Exchange]int, len(domain.Exchanges))
	for _, ex := range domain.Exchanges {
		counts[ex] = 0
	}
	for _, r := range c.All() {
		counts[r.Exchange]++
	}
	return counts
}
