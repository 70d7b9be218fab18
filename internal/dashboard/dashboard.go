package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"djdash/internal/analytics"
	"djdash/internal/domain"
	"djdash/internal/store"
)

// Tab identifiers, as used in requests and URLs.
const (
	TabOverview     = "history"
	TabStock        = "dow_jones"
	TabPerformance  = "perform"
	TabCorrelations = "correlations"
)

// Tab is one entry in the tab bar.
type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var tabs = []Tab{
	{ID: TabOverview, Label: "Overview"},
	{ID: TabStock, Label: "Dow Jones Stocks"},
	{ID: TabPerformance, Label: "Stocks Performance"},
	{ID: TabCorrelations, Label: "Correlations"},
}

// Tabs returns the tab bar in display order.
func Tabs() []Tab {
	return append([]Tab(nil), tabs...)
}

// ErrUnknownTab is returned by Render for a tab it does not serve.
var ErrUnknownTab = errors.New("unknown tab")

// Option is one ticker selector entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options holds the analytics and selector settings of a Dashboard.
type Options struct {
	ShortWindow   int
	LongWindow    int
	Alignment     analytics.Alignment
	DefaultTicker string
	Logger        *slog.Logger
}

// Request selects what to render.
type Request struct {
	Tab    string
	Ticker string
}

// Payload is the rendered content of a tab. Error is set when the view
// itself could not be built; the rest of the dashboard is unaffected.
type Payload struct {
	Tab      string   `json:"tab"`
	Title    string   `json:"title"`
	Figures  []Figure `json:"figures"`
	Options  []Option `json:"options,omitempty"`
	Ticker   string   `json:"ticker,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Dashboard renders tabs over a loaded Dataset. The global views are
// computed once in NewDashboard; the per-ticker view re-reads the ticker's
// price file on each request. A Dashboard is safe for concurrent use.
type Dashboard struct {
	ds     *Dataset
	prices store.PriceStore
	opts   Options
	log    *slog.Logger

	options     []Option
	overview    []Figure
	performance Figure
	perfWarn    []string
	corr        domain.CorrelationMatrix
	correlation Figure
	corrErr     error
}

// NewDashboard precomputes the overview, performance and correlation views.
// A correlation failure is kept and reported by that view only.
func NewDashboard(ds *Dataset, prices store.PriceStore, opts Options) *Dashboard {
	if opts.ShortWindow <= 0 {
		opts.ShortWindow = analytics.MonthWindow
	}
	if opts.LongWindow <= 0 {
		opts.LongWindow = analytics.SixMonthsWindow
	}
	if opts.Alignment == "" {
		opts.Alignment = analytics.AlignPairwise
	}
	opts.DefaultTicker = strings.ToUpper(strings.TrimSpace(opts.DefaultTicker))
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	d := &Dashboard{
		ds:     ds,
		prices: prices,
		opts:   opts,
		log:    log.With("component", "dashboard"),
	}

	for _, r := range ds.Constituents.All() {
		d.options = append(d.options, Option{Label: OptionLabel(r), Value: r.Ticker})
	}
	d.overview = OverviewFigures(ds.Constituents)

	names := ds.Names()
	d.performance, d.perfWarn = PerformanceFigure(ds.Series, names)

	m, err := analytics.CorrelationMatrix(ds.Series, names, opts.Alignment)
	if err != nil {
		d.corrErr = err
		d.log.Error("correlation matrix", "error", err)
	} else {
		d.corr = m
		d.correlation = CorrelationFigure(m)
	}

	d.log.Info("dashboard ready",
		"series", len(ds.Series),
		"alignment", opts.Alignment,
		"short_window", opts.ShortWindow,
		"long_window", opts.LongWindow,
	)
	return d
}

// Options returns the ticker selector entries in metadata order.
func (d *Dashboard) Options() []Option {
	return append([]Option(nil), d.options...)
}

// Dataset returns the snapshot the dashboard renders.
func (d *Dashboard) Dataset() *Dataset {
	return d.ds
}

// DefaultTicker returns the upper-cased ticker the stock tab shows when a
// request names none.
func (d *Dashboard) DefaultTicker() string {
	return d.opts.DefaultTicker
}

// Prices returns the store the per-ticker view reads from.
func (d *Dashboard) Prices() store.PriceStore {
	return d.prices
}

// Correlation returns the precomputed correlation matrix.
func (d *Dashboard) Correlation() (domain.CorrelationMatrix, error) {
	return d.corr, d.corrErr
}

// Windows returns the short and long moving-average windows in use.
func (d *Dashboard) Windows() (short, long int) {
	return d.opts.ShortWindow, d.opts.LongWindow
}

// Render builds the payload for req. An empty tab means the overview. It
// returns ErrUnknownTab for unrecognised tabs. For the stock tab a lookup or
// load failure is returned alongside a payload carrying the message, so
// callers can show it in place of the chart.
func (d *Dashboard) Render(ctx context.Context, req Request) (Payload, error) {
	switch req.Tab {
	case "", TabOverview:
		return Payload{Tab: TabOverview, Title: "Overview", Figures: d.overview}, nil
	case TabStock:
		return d.renderStock(ctx, req.Ticker)
	case TabPerformance:
		warnings := append(d.ds.Warnings(), d.perfWarn...)
		return Payload{
			Tab:      TabPerformance,
			Title:    "Stocks Performance",
			Figures:  []Figure{d.performance},
			Warnings: warnings,
		}, nil
	case TabCorrelations:
		p := Payload{Tab: TabCorrelations, Title: "Correlations", Warnings: d.ds.Warnings()}
		if d.corrErr != nil {
			p.Error = d.corrErr.Error()
			return p, d.corrErr
		}
		p.Figures = []Figure{d.correlation}
		return p, nil
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownTab, req.Tab)
	}
}

func (d *Dashboard) renderStock(ctx context.Context, ticker string) (Payload, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		ticker = d.opts.DefaultTicker
	}
	p := Payload{
		Tab:     TabStock,
		Title:   "Dow Jones Stocks",
		Options: d.Options(),
		Ticker:  ticker,
	}

	fig, err := d.stockFigure(ctx, ticker)
	if err != nil {
		d.log.Warn("stock view", "ticker", ticker, "error", err)
		p.Error = err.Error()
		return p, err
	}
	p.Figures = []Figure{fig}
	return p, nil
}

func (d *Dashboard) stockFigure(ctx context.Context, ticker string) (Figure, error) {
	r, err := d.ds.Constituents.Get(ticker)
	if err != nil {
		return Figure{}, err
	}
	s, err := d.prices.LoadSeries(ctx, ticker)
	if err != nil {
		return Figure{}, err
	}
	return StockFigure(r, s, d.opts.ShortWindow, d.opts.LongWindow)
}
