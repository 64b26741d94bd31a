package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/AngelCh415/stayreport/internal/models"
)

type Encoding string

const (
	EncodingAuto     Encoding = "auto"
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift_jis"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

// Read picks a reader from the file extension. Names without one are read as CSV.
func Read(name string, r io.Reader, enc Encoding) ([]models.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".csv", ".txt", ".tsv":
		return ReadCSV(r, enc)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	}
	return nil, &ParseError{Source: name, Err: ErrUnsupportedFormat}
}

// ReadCSV reads a delimited file whose first row is the header.
func ReadCSV(r io.Reader, enc Encoding) ([]models.RawRecord, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, err := decode(b, enc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", enc, err)
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if bytes.Count(firstLine(text), []byte("\t")) > bytes.Count(firstLine(text), []byte(",")) {
		cr.Comma = '\t'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, parseErr(1, "", "", ErrEmptyInput)
	}
	if err != nil {
		return nil, csvErr(err)
	}
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []models.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvErr(err)
		}
		if blankRow(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		out = append(out, idx.record(row, line))
	}
	return out, nil
}

// ReadXLSX reads the first sheet of a workbook. Date cells stored as serial
// numbers are converted to timestamps.
func ReadXLSX(r io.Reader) ([]models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErr(1, "", "", ErrEmptyInput)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, parseErr(1, "", "", ErrEmptyInput)
	}
	idx, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]models.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := idx.record(row, i+2)
		rec.CheckIn = serialDate(rec.CheckIn)
		rec.BookingDate = serialDate(rec.BookingDate)
		out = append(out, rec)
	}
	return out, nil
}

func serialDate(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02 15:04:05")
}

func decode(b []byte, enc Encoding) ([]byte, error) {
	if enc == EncodingShiftJIS || (enc == EncodingAuto && !utf8.Valid(b)) {
		return japanese.ShiftJIS.NewDecoder().Bytes(b)
	}
	return unicode.UTF8BOM.NewDecoder().Bytes(b)
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}

func csvErr(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return parseErr(ce.Line, "", "", err)
	}
	return fmt.Errorf("read csv: %w", err)
}
