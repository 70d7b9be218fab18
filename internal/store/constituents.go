package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"djdash/internal/domain"
)

// Constituent table column names, as they appear in the source spreadsheet.
const (
	colTicker    = "ticker"
	colName      = "name"
	colMarket    = "stock_market"
	colYearAdded = "year_added"
)

// LoadConstituents reads the constituent table at path. The format follows
// the file extension: .xlsx (first sheet), .csv, or .db/.sqlite (table
// "constituents"). Any failure is returned as a *domain.DataLoadError.
func LoadConstituents(ctx context.Context, path string) (*domain.Constituents, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSXRows(path)
	case ".csv":
		rows, err = readCSVRows(path)
	case ".db", ".sqlite", ".sqlite3":
		rows, err = readSQLiteRows(ctx, path)
	default:
		err = fmt.Errorf("unsupported metadata format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &domain.DataLoadError{Path: path, Err: err}
	}

	c, err := parseConstituentRows(rows)
	if err != nil {
		return nil, &domain.DataLoadError{Path: path, Err: err}
	}
	return c, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// parseConstituentRows converts a header row plus data rows into the
// constituent table. Columns are matched by name, in any order.
func parseConstituentRows(rows [][]string) (*domain.Constituents, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}
	cols := headerIndex(rows[0])
	idx := make(map[string]int, 4)
	for _, name := range []string{colTicker, colName, colMarket, colYearAdded} {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
		idx[name] = i
	}

	records := make([]domain.Constituent, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		line := n + 2

		exchange, err := domain.ParseExchange(cell(row, idx[colMarket]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		year, err := parseYear(cell(row, idx[colYearAdded]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, domain.Constituent{
			Ticker:    cell(row, idx[colTicker]),
			Name:      cell(row, idx[colName]),
			Exchange:  exchange,
			YearAdded: year,
		})
	}

	if len(records) == 0 {
		return nil, errors.New("no constituent rows")
	}
	return domain.NewConstituents(records)
}

// parseYear accepts "1999" and the "1999.0" some spreadsheet exports produce.
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid year_added %q", s)
	}
	return int(f), nil
}
