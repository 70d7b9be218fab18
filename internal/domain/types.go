// Package domain defines the core data types shared across djdash: index
// constituents, daily price observations, and the derived series and matrices
// computed from them.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Exchange
// ---------------------------------------------------------------------------

// Exchange identifies the stock market a constituent is listed on.
type Exchange string

const (
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeNASDAQ Exchange = "NASDAQ"
)

// Exchanges lists the known exchanges in display order.
var Exchanges = []Exchange{ExchangeNYSE, ExchangeNASDAQ}

// ParseExchange converts a free-form market name into an Exchange. Matching
// is case-insensitive and ignores surrounding whitespace.
func ParseExchange(s string) (Exchange, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NYSE":
		return ExchangeNYSE, nil
	case "NASDAQ":
		return ExchangeNASDAQ, nil
	default:
		return "", fmt.Errorf("unknown exchange %q", s)
	}
}

// ---------------------------------------------------------------------------
// Constituents
// ---------------------------------------------------------------------------

// Constituent is a company whose stock is part of the tracked index.
type Constituent struct {
	Ticker    string
	Name      string
	Exchange  Exchange
	YearAdded int
}

// Constituents is an immutable ticker-indexed table of index members. It
// remembers the order rows appeared in the source so listings are stable.
type Constituents struct {
	byTicker map[string]Constituent
	order    []string
}

// NewConstituents builds a table from records in source order. Tickers are
// upper-cased; a duplicate ticker is an error.
func NewConstituents(records []Constituent) (*Constituents, error) {
	c := &Constituents{
		byTicker: make(map[string]Constituent, len(records)),
		order:    make([]string, 0, len(records)),
	}
	for _, r := range records {
		r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
		if r.Ticker == "" {
			return nil, fmt.Errorf("empty ticker for %q", r.Name)
		}
		if _, dup := c.byTicker[r.Ticker]; dup {
			return nil, fmt.Errorf("duplicate ticker %s", r.Ticker)
		}
		c.byTicker[r.Ticker] = r
		c.order = append(c.order, r.Ticker)
	}
	return c, nil
}

// Get returns the constituent for ticker, or a *LookupError.
func (c *Constituents) Get(ticker string) (Constituent, error) {
	r, ok := c.byTicker[strings.ToUpper(ticker)]
	if !ok {
		return Constituent{}, &LookupError{Ticker: ticker}
	}
	return r, nil
}

// Has reports whether ticker is a known constituent.
func (c *Constituents) Has(ticker string) bool {
	_, ok := c.byTicker[strings.ToUpper(ticker)]
	return ok
}

// All returns the constituents in source order.
func (c *Constituents) All() []Constituent {
	out := make([]Constituent, len(c.order))
	for i, t := range c.order {
		out[i] = c.byTicker[t]
	}
	return out
}

// Tickers returns the tickers in source order.
func (c *Constituents) Tickers() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of constituents.
func (c *Constituents) Len() int { return len(c.order) }

// ---------------------------------------------------------------------------
// Price series
// ---------------------------------------------------------------------------

// PriceObservation is one daily close for a ticker. PercentChange is the
// day-over-day change in percent units and is NaN when the source omits it.
type PriceObservation struct {
	Date          time.Time
	Close         float64
	PercentChange float64
}

// HasPercentChange reports whether the observation carries a percent change.
func (o PriceObservation) HasPercentChange() bool {
	return !math.IsNaN(o.PercentChange)
}

// PriceSeries is the date-ascending history of a single ticker.
type PriceSeries struct {
	Ticker       string
	Observations []PriceObservation
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Observations) }

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Close
	}
	return out
}

// Dates returns the observation dates in order.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Date
	}
	return out
}

// ---------------------------------------------------------------------------
// Derived values
// ---------------------------------------------------------------------------

// Point is a single dated value of a derived series such as a moving average
// or a base-normalized return.
type Point struct {
	Date  time.Time
	Value float64
}

// CorrelationMatrix holds pairwise correlations between tickers. Labels are
// company names in the same order as Tickers; Values[i][j] is NaN when the
// pair has too little overlapping data.
type CorrelationMatrix struct {
	Tickers []string
	Labels  []string
	Values  [][]float64
}

// Size returns the matrix dimension.
func (m CorrelationMatrix) Size() int { return len(m.Tickers) }

// DateLayout is the on-disk date format for price files.
const DateLayout = "2006-01-02"
