package domain

import "fmt"

// DataLoadError reports an input file that is missing or malformed.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// LookupError reports a ticker that has no constituent record.
type LookupError struct {
	Ticker string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("ticker %s not found in constituents", e.Ticker)
}
