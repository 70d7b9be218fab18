package dashboard

import (
	"fmt"
	"math"
	"sort"

	"djdash/internal/analytics"
	"djdash/internal/domain"
)

var exchangeColors = map[domain.Exchange]string{
	domain.ExchangeNYSE:   "blue",
	domain.ExchangeNASDAQ: "red",
}

// OverviewFigures builds the year-joined scatter and the per-exchange count
// bar chart.
func OverviewFigures(c *domain.Constituents) []Figure {
	var scatter []Trace
	for _, ex := range domain.Exchanges {
		var years []int
		var names []string
		for _, r := range c.All() {
			if r.Exchange == ex {
				years = append(years, r.YearAdded)
				names = append(names, r.Name)
			}
		}
		color := exchangeColors[ex]
		scatter = append(scatter, Trace{
			Type:      "scatter",
			Mode:      "text",
			Name:      string(ex),
			X:         years,
			Text:      names,
			HoverInfo: "x",
			Marker:    &Marker{Color: color},
			TextFont:  &Font{Color: color, Size: 15},
		})
	}

	counts := analytics.CountByExchange(c)
	order := append([]domain.Exchange(nil), domain.Exchanges...)
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	barX := make([]int, len(order))
	barY := make([]string, len(order))
	for i, ex := range order {
		barX[i] = counts[ex]
		barY[i] = string(ex)
	}

	return []Figure{
		{
			Data: scatter,
			Layout: Layout{
				Title:     title("Year stock joined Dow Jones Index"),
				HoverMode: "closest",
				XAxis:     &Axis{Title: title("Year")},
				YAxis:     &Axis{Visible: hidden()},
				Legend:    &Legend{X: 0.95, Y: 1.2, Font: &Font{Size: 15}},
				Height:    500,
			},
		},
		{
			Data: []Trace{{
				Type:        "bar",
				X:           barX,
				Y:           barY,
				Orientation: "h",
				Marker:      &Marker{Color: "rgba(250,70,120,0.7)"},
			}},
			Layout: Layout{
				Title:        title("Number of Dow Jones stocks in each market"),
				HoverMode:    "closest",
				Height:       330,
				PlotBGColor:  "#111",
				PaperBGColor: "#111",
				Font:         &Font{Color: "#7FDBFF"},
			},
		},
	}
}

// StockFigure plots a ticker's close with short and long moving averages.
func StockFigure(r domain.Constituent, s domain.PriceSeries, shortWindow, longWindow int) (Figure, error) {
	short, err := analytics.RollingMean(s, shortWindow)
	if err != nil {
		return Figure{}, fmt.Errorf("short moving average: %w", err)
	}
	long, err := analytics.RollingMean(s, longWindow)
	if err != nil {
		return Figure{}, fmt.Errorf("long moving average: %w", err)
	}

	dates := formatDates(s.Dates())
	return Figure{
		Data: []Trace{
			{Type: "scatter", Mode: "lines", Name: "closing price", X: dates, Y: s.Closes()},
			lineTrace(movingAverageLabel(shortWindow), short),
			lineTrace(movingAverageLabel(longWindow), long),
		},
		Layout: Layout{
			Title:     title(r.Name),
			HoverMode: "closest",
			XAxis:     &Axis{Title: title("Date"), RangeSlider: &RangeSlider{Visible: true}},
			YAxis:     &Axis{Title: title("share price (USD)")},
			Legend:    &Legend{X: 0.9, Y: 1.1},
			Height:    800,
		},
	}, nil
}

// PerformanceFigure plots every series normalized to its first close. Series
// that cannot be normalized are reported in the returned warnings.
func PerformanceFigure(series []domain.PriceSeries, names []string) (Figure, []string) {
	var traces []Trace
	var warnings []string
	for i, s := range series {
		points, err := analytics.Normalize(s)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", s.Ticker, err))
			continue
		}
		traces = append(traces, lineTrace(names[i], points))
	}
	return Figure{
		Data: traces,
		Layout: Layout{
			Title:  title("Dow Jones Stocks Performance"),
			XAxis:  &Axis{Title: title("date")},
			YAxis:  &Axis{Title: title("Base returns")},
			Height: 800,
		},
	}, warnings
}

// CorrelationFigure renders a correlation matrix as a heatmap labelled by
// company name. Undefined correlations become null cells.
func CorrelationFigure(m domain.CorrelationMatrix) Figure {
	z := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		z[i] = make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				z[i][j] = &v
			}
		}
	}
	return Figure{
		Data: []Trace{{
			Type: "heatmap",
			Z:    z,
			X:    m.Labels,
			Y:    m.Labels,
		}},
		Layout: Layout{
			Title: title("Correlation amongst Dow Jones stocks"),
			XAxis: &Axis{TickAngle: -20},
			YAxis: &Axis{Visible: hidden()},
		},
	}
}

func lineTrace(name string, points []domain.Point) Trace {
	x := make([]string, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Date.Format(domain.DateLayout)
		y[i] = p.Value
	}
	return Trace{Type: "scatter", Mode: "lines", Name: name, X: x, Y: y}
}

// movingAverageLabel names the standard windows the way the dashboard always
// has and falls back to the raw window size otherwise.
func movingAverageLabel(window int) string {
	switch window {
	case analytics.MonthWindow:
		return "1 month MA"
	case analytics.SixMonthsWindow:
		return "6 months MA"
	default:
		return fmt.Sprintf("%d day MA", window)
	}
}
