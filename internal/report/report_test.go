package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"djdash/internal/dashboard"
	"djdash/internal/domain"
)

func testDataset(t *testing.T) *dashboard.Dataset {
	t.Helper()
	c, err := domain.NewConstituents([]domain.Constituent{
		{Ticker: "AAPL", Name: "Apple", Exchange: domain.ExchangeNASDAQ, YearAdded: 2015},
		{Ticker: "JPM", Name: "JPMorgan", Exchange: domain.ExchangeNYSE, YearAdded: 1991},
		{Ticker: "KO", Name: "Coca-Cola", Exchange: domain.ExchangeNYSE, YearAdded: 1987},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &dashboard.Dataset{
		Constituents: c,
		Series: []domain.PriceSeries{
			series("AAPL", 10, 11, 12, 13),
			series("JPM", 20, 19, 21, 24),
		},
		Skipped: map[string]error{"KO": &domain.DataLoadError{Path: "KO.csv", Err: errors.New("bad row")}},
	}
}

func series(ticker string, closes ...float64) domain.PriceSeries {
	s := domain.PriceSeries{Ticker: ticker}
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		pct := math.NaN()
		if i > 0 {
			pct = (c/closes[i-1] - 1) * 100
		}
		s.Observations = append(s.Observations, domain.PriceObservation{
			Date:          day.AddDate(0, 0, i),
			Close:         c,
			PercentChange: pct,
		})
	}
	return s
}

func TestSummarize(t *testing.T) {
	rows := Summarize(testDataset(t), Options{ShortWindow: 2, LongWindow: 10})
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	aapl := rows[0]
	if aapl.Name != "Apple" || aapl.LastClose != 13 {
		t.Errorf("row = %+v", aapl)
	}
	if aapl.BaseReturn != 1.3 {
		t.Errorf("BaseReturn = %v, want 1.3", aapl.BaseReturn)
	}
	if aapl.ShortMA != 12.5 {
		t.Errorf("ShortMA = %v, want 12.5", aapl.ShortMA)
	}
	if !math.IsNaN(aapl.LongMA) {
		t.Errorf("LongMA = %v, want NaN for a short series", aapl.LongMA)
	}
}

func TestRankPairs(t *testing.T) {
	m := domain.CorrelationMatrix{
		Tickers: []string{"A", "B", "C"},
		Labels:  []string{"A", "B", "C"},
		Values: [][]float64{
			{1, 0.2, 0.9},
			{0.2, 1, math.NaN()},
			{0.9, math.NaN(), 1},
		},
	}
	pairs := RankPairs(m)
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].A != "A" || pairs[0].B != "C" || pairs[0].R != 0.9 {
		t.Errorf("pairs[0] = %+v", pairs[0])
	}
}

func TestWriteOverview(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOverview(&buf, testDataset(t), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"NASDAQ", "NYSE", "Apple", "JPMorgan", "Coca-Cola", "skipped KO"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteStock(t *testing.T) {
	var buf bytes.Buffer
	c := domain.Constituent{Ticker: "AAPL", Name: "Apple", Exchange: domain.ExchangeNASDAQ}
	err := WriteStock(&buf, c, series("AAPL", 10, 11, 12, 13), Options{ShortWindow: 2, LongWindow: 3, Rows: 2})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "2020-01-02") {
		t.Errorf("output should only hold the last 2 rows:\n%s", out)
	}
	for _, want := range []string{"2020-01-04", "12.50", "12.00", "MA2", "MA3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCorrelations(t *testing.T) {
	m := domain.CorrelationMatrix{
		Tickers: []string{"A", "B", "C"},
		Labels:  []string{"Alpha", "Beta", "Gamma"},
		Values: [][]float64{
			{1, 0.2, 0.9},
			{0.2, 1, -0.4},
			{0.9, -0.4, 1},
		},
	}
	var buf bytes.Buffer
	if err := WriteCorrelations(&buf, m, Options{Top: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Most correlated", "0.900", "Least correlated", "-0.400"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePDF(t *testing.T) {
	m := domain.CorrelationMatrix{
		Tickers: []string{"AAPL", "JPM"},
		Labels:  []string{"Apple", "JPMorgan"},
		Values:  [][]float64{{1, 0.5}, {0.5, 1}},
	}
	var buf bytes.Buffer
	err := WritePDF(&buf, testDataset(t), &m, Options{}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
}
