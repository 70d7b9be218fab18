package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"djdash/internal/domain"
)

// Alignment selects how percent-change series with different date ranges are
// lined up before correlating them.
type Alignment string

const (
	// AlignPairwise correlates each pair over the dates both series have.
	AlignPairwise Alignment = "pairwise"
	// AlignIntersect uses only the dates every series has.
	AlignIntersect Alignment = "intersect"
	// AlignForwardFill takes the union of dates, carries each series' last
	// value forward over gaps and drops dates before any series starts.
	AlignForwardFill Alignment = "ffill"
)

// ParseAlignment validates an alignment name. The empty string selects
// AlignPairwise.
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlignPairwise, nil
	case AlignPairwise, AlignIntersect, AlignForwardFill:
		return a, nil
	default:
		return "", fmt.Errorf("unknown alignment %q", s)
	}
}

// CorrelationMatrix computes the Pearson correlation of day-over-day percent
// change between every pair of series. labels must have one entry per series
// and names the rows and columns. The result is symmetric with an exact 1.0
// diagonal; pairs with fewer than two aligned observations, or with a constant
// series, are NaN.
func CorrelationMatrix(series []domain.PriceSeries, labels []string, align Alignment) (domain.CorrelationMatrix, error) {
	if len(labels) != len(series) {
		return domain.CorrelationMatrix{}, fmt.Errorf("got %d labels for %d series", len(labels), len(series))
	}

	n := len(series)
	m := domain.CorrelationMatrix{
		Tickers: make([]string, n),
		Labels:  append([]string(nil), labels...),
		Values:  make([][]float64, n),
	}
	for i := range series {
		m.Tickers[i] = series[i].Ticker
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1.0
	}

	switch align {
	case AlignPairwise, "":
		maps := make([]map[int64]float64, n)
		for i := range series {
			maps[i] = changeByDay(series[i])
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				x, y := pairwiseColumns(series[i], maps[j])
				m.Values[i][j] = Pearson(x, y)
				m.Values[j][i] = m.Values[i][j]
			}
		}
	case AlignIntersect, AlignForwardFill:
		var cols [][]float64
		if align == AlignIntersect {
			cols = intersectColumns(series)
		} else {
			cols = forwardFillColumns(series)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				m.Values[i][j] = Pearson(cols[i], cols[j])
				m.Values[j][i] = m.Values[i][j]
			}
		}
	default:
		return domain.CorrelationMatrix{}, fmt.Errorf("unknown alignment %q", align)
	}

	return m, nil
}

// Pearson returns the sample correlation coefficient of x and y, which must
// have equal length. It is NaN for fewer than two points or zero variance.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(len(x))
	my /= float64(len(y))

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r))
}

// dayKey maps a timestamp to its calendar day so series parsed with and
// without a time component still line up.
func dayKey(t time.Time) int64 {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Unix()
}

func changeByDay(s domain.PriceSeries) map[int64]float64 {
	m := make(map[int64]float64, s.Len())
	for _, o := range s.Observations {
		if o.HasPercentChange() {
			m[dayKey(o.Date)] = o.PercentChange
		}
	}
	return m
}

func pairwiseColumns(a domain.PriceSeries, b map[int64]float64) (x, y []float64) {
	for _, o := range a.Observations {
		if !o.HasPercentChange() {
			continue
		}
		if v, ok := b[dayKey(o.Date)]; ok {
			x = append(x, o.PercentChange)
			y = append(y, v)
		}
	}
	return x, y
}

func intersectColumns(series []domain.PriceSeries) [][]float64 {
	cols := make([][]float64, len(series))
	if len(series) == 0 {
		return cols
	}
	maps := make([]map[int64]float64, len(series))
	for i := range series {
		maps[i] = changeByDay(series[i])
	}

	var days []int64
	for d := range maps[0] {
		common := true
		for _, m := range maps[1:] {
			if _, ok := m[d]; !ok {
				common = false
				break
			}
		}
		if common {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	for i, m := range maps {
		cols[i] = make([]float64, len(days))
		for k, d := range days {
			cols[i][k] = m[d]
		}
	}
	return cols
}

func forwardFillColumns(series []domain.PriceSeries) [][]float64 {
	cols := make([][]float64, len(series))
	maps := make([]map[int64]float64, len(series))
	union := make(map[int64]struct{})
	for i := range series {
		maps[i] = changeByDay(series[i])
		for d := range maps[i] {
			union[d] = struct{}{}
		}
	}
	days := make([]int64, 0, len(union))
	for d := range union {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	filled := make([][]float64, len(series))
	for i, m := range maps {
		filled[i] = make([]float64, len(days))
		last := math.NaN()
		for k, d := range days {
			if v, ok := m[d]; ok {
				last = v
			}
			filled[i][k] = last
		}
	}

	for k := range days {
		complete := true
		for i := range filled {
			if math.IsNaN(filled[i][k]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for i := range filled {
			cols[i] = append(cols[i], filled[i][k])
		}
	}
	return cols
}
