// Package ingest reads an uploaded spreadsheet or pasted tab-separated text
// into a datanorm.RawTable. It only reshapes cells; it does not interpret them.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/cubo-visits/internal/datanorm"
)

var (
	ErrEmptyInput        = errors.New("no data found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// maxXLSRows bounds the legacy reader, which loads whole sheets at once.
const maxXLSRows = 200000

// ReadFile reads an uploaded file, picking the reader by Classify.
func ReadFile(r io.Reader, filename string) (datanorm.RawTable, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return datanorm.RawTable{}, FormatUnknown, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return datanorm.RawTable{}, FormatUnknown, ErrEmptyInput
	}

	format := Classify(filename, data)
	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	case FormatTSV:
		rows, err = readTSV(data)
	case FormatXLSB:
		return datanorm.RawTable{}, format, fmt.Errorf("%w: .xlsb binary workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	default:
		return datanorm.RawTable{}, format, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return datanorm.RawTable{}, format, err
	}

	table, err := toTable(rows)
	return table, format, err
}

// ReadPasted reads text copied from a spreadsheet (tab-separated, first line is the header).
func ReadPasted(text string) (datanorm.RawTable, error) {
	if strings.TrimSpace(text) == "" {
		return datanorm.RawTable{}, ErrEmptyInput
	}
	rows, err := readTSV([]byte(text))
	if err != nil {
		return datanorm.RawTable{}, err
	}
	return toTable(rows)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{ShortDatePattern: "dd/mm/yyyy"})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no worksheet", ErrEmptyInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no worksheet", ErrEmptyInput)
	}
	return wb.ReadAllCells(maxXLSRows), nil
}

func readTSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tab-separated text: %w", err)
	}
	return rows, nil
}

// toTable splits the header off and trims trailing empty header cells that
// spreadsheets leave behind after the last used column.
func toTable(rows [][]string) (datanorm.RawTable, error) {
	for len(rows) > 0 && isEmpty(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return datanorm.RawTable{}, ErrEmptyInput
	}

	header := rows[0]
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	return datanorm.RawTable{Header: header, Rows: rows[1:]}, nil
}

func isEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
