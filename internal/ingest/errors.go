package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrMissingValue      = errors.New("missing value")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrNegativeValue     = errors.New("negative value")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyInput        = errors.New("no header row")
)

// ParseError locates a bad cell in an uploaded file. It aborts the whole batch.
type ParseError struct {
	Source string `json:"source,omitempty"`
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Err    error  `json:"-"`
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("row %d", e.Row)
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Column != "" {
		msg += fmt.Sprintf(", column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(", value %q", e.Value)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(row int, col, val string, err error) *ParseError {
	return &ParseError{Row: row, Column: col, Value: val, Err: err}
}

// withSource stamps the source name on a ParseError if err is one.
func withSource(err error, source string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		pe.Source = source
	}
	return err
}
