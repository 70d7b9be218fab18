package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"djdash/internal/domain"
)

// Compile-time interface check.
var _ PriceStore = (*CSVStore)(nil)

// CSVStore reads price series from <Dir>/<TICKER>.csv files with a header row
// naming at least "date" and "close". An optional "changePercent" column
// carries the day-over-day change in percent.
type CSVStore struct {
	Dir string
}

// NewCSVStore creates a CSVStore rooted at dir.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir}
}

// LoadSeries reads and parses the CSV file for ticker.
func (s *CSVStore) LoadSeries(_ context.Context, ticker string) (domain.PriceSeries, error) {
	path := seriesPath(s.Dir, ticker, ".csv")
	f, err := os.Open(path)
	if err != nil {
		return domain.PriceSeries{}, &domain.DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	obs, hasPct, err := readPriceCSV(f)
	if err != nil {
		return domain.PriceSeries{}, &domain.DataLoadError{Path: path, Err: err}
	}
	return finishSeries(path, ticker, obs, !hasPct)
}

// WriteSeries writes a series to <Dir>/<TICKER>.csv, replacing any existing
// file.
func (s *CSVStore) WriteSeries(_ context.Context, series domain.PriceSeries) error {
	path := seriesPath(s.Dir, series.Ticker, ".csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePriceCSV(f, series); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ListTickers lists the tickers with a .csv file in Dir.
func (s *CSVStore) ListTickers(_ context.Context) ([]string, error) {
	return listTickers(s.Dir, ".csv")
}

// readPriceCSV parses price rows. hasPct reports whether the file had a
// percent-change column; empty cells in that column become NaN.
func readPriceCSV(r io.Reader) (obs []domain.PriceObservation, hasPct bool, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, errors.New("empty file")
		}
		return nil, false, err
	}
	cols := headerIndex(header)
	dateCol, ok := cols["date"]
	if !ok {
		return nil, false, errors.New(`missing "date" column`)
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, false, errors.New(`missing "close" column`)
	}
	pctCol, hasPct := cols["changepercent"]
	if !hasPct {
		pctCol, hasPct = cols["change_percent"]
	}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, false, err
		}
		if isBlankRow(row) {
			continue
		}

		date, err := parseDate(cell(row, dateCol))
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		closePx, err := strconv.ParseFloat(cell(row, closeCol), 64)
		if err != nil {
			return nil, false, fmt.Errorf("line %d: close: %w", line, err)
		}
		pct := math.NaN()
		if hasPct {
			if v := cell(row, pctCol); v != "" {
				pct, err = strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, false, fmt.Errorf("line %d: changePercent: %w", line, err)
				}
			}
		}
		obs = append(obs, domain.PriceObservation{Date: date, Close: closePx, PercentChange: pct})
	}
	return obs, hasPct, nil
}

// WritePriceCSV writes a series in the layout readPriceCSV accepts. NaN
// percent changes are written as empty cells.
func WritePriceCSV(w io.Writer, s domain.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "close", "changePercent"}); err != nil {
		return err
	}
	for _, o := range s.Observations {
		pct := ""
		if o.HasPercentChange() {
			pct = strconv.FormatFloat(o.PercentChange, 'f', -1, 64)
		}
		row := []string{
			o.Date.Format(domain.DateLayout),
			strconv.FormatFloat(o.Close, 'f', -1, 64),
			pct,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DerivePercentChange fills PercentChange from consecutive closes. The first
// observation has no predecessor and stays NaN.
func DerivePercentChange(obs []domain.PriceObservation) {
	for i := range obs {
		if i == 0 || obs[i-1].Close == 0 {
			obs[i].PercentChange = math.NaN()
			continue
		}
		obs[i].PercentChange = (obs[i].Close/obs[i-1].Close - 1) * 100
	}
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// headerIndex maps lower-cased, trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := m[key]; !dup {
			m[key] = i
		}
	}
	return m
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
