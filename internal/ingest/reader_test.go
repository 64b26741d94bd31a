package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
)

const englishCSV = `check_in_date,booking_date,property_name,sales_amount,total_nights,channel
2024-06-10,2024-05-01,Sakura Villa,10000,2,airbnb

2024-06-20,2024-06-01,"Sakura Villa","20,000",3,direct
`

func TestReadCSV_EnglishHeaders(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(englishCSV), EncodingAuto)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, 2, recs[0].Row)
	assert.Equal(t, 4, recs[1].Row)
	assert.Equal(t, "Sakura Villa", recs[1].PropertyName)
	assert.Equal(t, "20,000", recs[1].SalesAmount)
	assert.Equal(t, "3", recs[1].TotalNights)
}

const japaneseCSV = "物件名,チェックイン,予約日,販売,合計日数\n桜ヴィラ,2024-06-10,2024-05-01,10000,2\n"

func TestReadCSV_JapaneseHeadersWithBOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, japaneseCSV...)
	recs, err := ReadCSV(bytes.NewReader(in), EncodingAuto)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "桜ヴィラ", recs[0].PropertyName)
	assert.Equal(t, "2024-06-10", recs[0].CheckIn)
}

func TestReadCSV_ShiftJIS(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().String(japaneseCSV)
	require.NoError(t, err)

	for _, enc := range []Encoding{EncodingAuto, EncodingShiftJIS} {
		recs, err := ReadCSV(strings.NewReader(sjis), enc)
		require.NoError(t, err, enc)
		require.Len(t, recs, 1)
		assert.Equal(t, "桜ヴィラ", recs[0].PropertyName)
	}
}

func TestReadCSV_TabSeparated(t *testing.T) {
	in := "check_in\tbooking_date\tproperty\tsales\tnights\n2024-06-10\t2024-06-01\tA\t100\t1\n"
	recs, err := ReadCSV(strings.NewReader(in), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A", recs[0].PropertyName)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	in := "check_in_date,booking_date,property_name,sales_amount\n2024-06-10,2024-06-01,A,1\n"
	_, err := ReadCSV(strings.NewReader(in), EncodingAuto)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Row)
	assert.Equal(t, ColTotalNights, pe.Column)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), EncodingAuto)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("bookings.json", strings.NewReader("{}"), EncodingAuto)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"物件名", "チェックイン", "予約日", "販売", "合計日数"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"A", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), "2024-05-01", 20000, 4}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"B", "2024-06-11", "2024-06-01", 100, 1}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	recs, err := Read("bookings.xlsx", buf, EncodingAuto)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Row)
	assert.Equal(t, 4, recs[1].Row)
	assert.Equal(t, "20000", recs[0].SalesAmount)

	norm, err := Normalize(recs)
	require.NoError(t, err)
	assert.Equal(t, "2024-06", norm[0].Period)
	assert.Equal(t, 40, norm[0].LeadTimeDays)
	assert.Equal(t, 5000.0, norm[0].NightlyRate.Float64)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("SJIS")
	require.NoError(t, err)
	assert.Equal(t, EncodingShiftJIS, enc)

	_, err = ParseEncoding("latin1")
	assert.Error(t, err)
}
