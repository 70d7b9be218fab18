package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"djdash/internal/analytics"
	"djdash/internal/dashboard"
	"djdash/internal/domain"
)

func newTable(w io.Writer, color bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateRows = false
		tw.Style().Options.SeparateColumns = false
	} else {
		tw.SetStyle(table.StyleLight)
	}
	return tw
}

func rightAlign(cols ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, n := range cols {
		cfgs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight}
	}
	return cfgs
}

func colorChange(s string, v float64, color bool) string {
	if !color || math.IsNaN(v) {
		return s
	}
	switch {
	case v > 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	case v < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	default:
		return s
	}
}

func formatReturn(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// WriteOverview writes the exchange counts followed by one row per
// constituent with its latest price figures.
func WriteOverview(w io.Writer, ds *dashboard.Dataset, opts Options) error {
	opts = opts.withDefaults()

	counts := analytics.CountByExchange(ds.Constituents)
	ct := newTable(w, opts.Color)
	ct.SetTitle("Dow Jones stocks per market")
	ct.AppendHeader(table.Row{"MARKET", "STOCKS"})
	for _, ex := range domain.Exchanges {
		ct.AppendRow(table.Row{string(ex), counts[ex]})
	}
	ct.SetColumnConfigs(rightAlign(2))
	ct.Render()
	fmt.Fprintln(w)

	summary := make(map[string]SummaryRow)
	for _, r := range Summarize(ds, opts) {
		summary[r.Ticker] = r
	}

	tw := newTable(w, opts.Color)
	tw.AppendHeader(table.Row{"TICKER", "NAME", "MARKET", "ADDED", "LAST", "CLOSE", "CHG%", "BASE RETURN"})
	for _, c := range ds.Constituents.All() {
		s, ok := summary[c.Ticker]
		if !ok {
			tw.AppendRow(table.Row{c.Ticker, c.Name, string(c.Exchange), c.YearAdded, "-", "-", "", "-"})
			continue
		}
		tw.AppendRow(table.Row{
			c.Ticker,
			c.Name,
			string(c.Exchange),
			c.YearAdded,
			s.Last.Format(domain.DateLayout),
			dashboard.FormatPrice(s.LastClose),
			colorChange(dashboard.FormatChange(s.LastChange), s.LastChange, opts.Color),
			formatReturn(s.BaseReturn),
		})
	}
	tw.SetColumnConfigs(rightAlign(4, 6, 7, 8))
	tw.Render()

	for _, warn := range ds.Warnings() {
		fmt.Fprintf(w, "skipped %s\n", warn)
	}
	return nil
}

// WriteStock writes the trailing observations of a series with its short
// and long moving averages.
func WriteStock(w io.Writer, c domain.Constituent, s domain.PriceSeries, opts Options) error {
	opts = opts.withDefaults()
	short, err := analytics.RollingMean(s, opts.ShortWindow)
	if err != nil {
		return err
	}
	long, err := analytics.RollingMean(s, opts.LongWindow)
	if err != nil {
		return err
	}

	tw := newTable(w, opts.Color)
	tw.SetTitle(fmt.Sprintf("%s (%s, %s)", c.Name, c.Ticker, c.Exchange))
	tw.AppendHeader(table.Row{
		"DATE", "CLOSE", "CHG%",
		fmt.Sprintf("MA%d", opts.ShortWindow),
		fmt.Sprintf("MA%d", opts.LongWindow),
	})

	n := s.Len()
	start := max(0, n-opts.Rows)
	for i := start; i < n; i++ {
		o := s.Observations[i]
		tw.AppendRow(table.Row{
			o.Date.Format(domain.DateLayout),
			dashboard.FormatPrice(o.Close),
			colorChange(dashboard.FormatChange(o.PercentChange), o.PercentChange, opts.Color),
			meanAt(short, i, opts.ShortWindow),
			meanAt(long, i, opts.LongWindow),
		})
	}
	tw.SetColumnConfigs(rightAlign(2, 3, 4, 5))
	tw.Render()
	return nil
}

// meanAt returns the moving average ending at observation i, or "-" when the
// window is not yet full.
func meanAt(points []domain.Point, i, window int) string {
	k := i - window + 1
	if k < 0 || k >= len(points) {
		return "-"
	}
	return dashboard.FormatPrice(points[k].Value)
}

// WriteCorrelations writes the most and least correlated pairs.
func WriteCorrelations(w io.Writer, m domain.CorrelationMatrix, opts Options) error {
	opts = opts.withDefaults()
	pairs := RankPairs(m)

	top := pairs[:min(opts.Top, len(pairs))]
	writePairs(w, "Most correlated", top, opts.Color)

	if len(pairs) > opts.Top {
		fmt.Fprintln(w)
		bottom := make([]Pair, 0, opts.Top)
		for i := len(pairs) - 1; i >= max(opts.Top, len(pairs)-opts.Top); i-- {
			bottom = append(bottom, pairs[i])
		}
		writePairs(w, "Least correlated", bottom, opts.Color)
	}
	return nil
}

func writePairs(w io.Writer, title string, pairs []Pair, color bool) {
	tw := newTable(w, color)
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"#", "STOCK", "STOCK", "R"})
	for i, p := range pairs {
		tw.AppendRow(table.Row{i + 1, p.A, p.B, dashboard.FormatCorrelation(p.R)})
	}
	tw.SetColumnConfigs(rightAlign(1, 4))
	tw.Render()
}
