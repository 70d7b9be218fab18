// Package report renders the dashboard's data as terminal tables and as a
// PDF summary.
package report

import (
	"math"
	"sort"
	"time"

	"djdash/internal/analytics"
	"djdash/internal/dashboard"
	"djdash/internal/domain"
)

// Options controls report content.
type Options struct {
	ShortWindow int
	LongWindow  int
	Color       bool
	Rows        int // trailing observations in the stock table
	Top         int // pairs shown at each end of the correlation ranking
}

func (o Options) withDefaults() Options {
	if o.ShortWindow <= 0 {
		o.ShortWindow = analytics.MonthWindow
	}
	if o.LongWindow <= 0 {
		o.LongWindow = analytics.SixMonthsWindow
	}
	if o.Rows <= 0 {
		o.Rows = 20
	}
	if o.Top <= 0 {
		o.Top = 10
	}
	return o
}

// SummaryRow describes one loaded price series.
type SummaryRow struct {
	Ticker     string
	Name       string
	Exchange   domain.Exchange
	YearAdded  int
	First      time.Time
	Last       time.Time
	LastClose  float64
	LastChange float64
	BaseReturn float64 // last close / first close; NaN if undefined
	ShortMA    float64 // NaN when the series is shorter than the window
	LongMA     float64
}

// Summarize builds a SummaryRow per loaded series, in series order.
func Summarize(ds *dashboard.Dataset, opts Options) []SummaryRow {
	opts = opts.withDefaults()
	rows := make([]SummaryRow, 0, len(ds.Series))
	for _, s := range ds.Series {
		if s.Len() == 0 {
			continue
		}
		r, _ := ds.Constituents.Get(s.Ticker)
		first, last := s.Observations[0], s.Observations[s.Len()-1]
		row := SummaryRow{
			Ticker:     s.Ticker,
			Name:       r.Name,
			Exchange:   r.Exchange,
			YearAdded:  r.YearAdded,
			First:      first.Date,
			Last:       last.Date,
			LastClose:  last.Close,
			LastChange: last.PercentChange,
			BaseReturn: math.NaN(),
			ShortMA:    lastMean(s, opts.ShortWindow),
			LongMA:     lastMean(s, opts.LongWindow),
		}
		if pts, err := analytics.Normalize(s); err == nil {
			row.BaseReturn = pts[len(pts)-1].Value
		}
		rows = append(rows, row)
	}
	return rows
}

func lastMean(s domain.PriceSeries, window int) float64 {
	pts, err := analytics.RollingMean(s, window)
	if err != nil || len(pts) == 0 {
		return math.NaN()
	}
	return pts[len(pts)-1].Value
}

// Pair is one off-diagonal correlation entry.
type Pair struct {
	A, B string
	R    float64
}

// RankPairs lists every defined upper-triangle correlation, strongest first.
func RankPairs(m domain.CorrelationMatrix) []Pair {
	var pairs []Pair
	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < m.Size(); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, Pair{A: m.Labels[i], B: m.Labels[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].R > pairs[j].R })
	return pairs
}
