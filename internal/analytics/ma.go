// Package analytics implements the pure computations behind the dashboard:
// moving averages, base-normalized returns, exchange counts and the
// percent-change correlation matrix.
package analytics

import (
	"errors"

	"djdash/internal/domain"
)

// Default moving-average windows, in trading days.
const (
	MonthWindow     = 23
	SixMonthsWindow = 138
)

// RollingMean computes the simple moving average of close prices over window
// observations. Partial windows are not averaged, so the result has
// len(series)-window+1 points (none if the series is shorter than the
// window). Each point is dated at the last observation of its window.
func RollingMean(series domain.PriceSeries, window int) ([]domain.Point, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	obs := series.Observations
	if len(obs) < window {
		return []domain.Point{}, nil
	}

	out := make([]domain.Point, 0, len(obs)-window+1)
	sum := 0.0
	for i, o := range obs {
		sum += o.Close
		if i >= window {
			sum -= obs[i-window].Close
		}
		if i >= window-1 {
			out = append(out, domain.Point{
				Date:  o.Date,
				Value: sum / float64(window),
			})
		}
	}
	return out, nil
}
