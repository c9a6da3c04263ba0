// Package importer turns supplier price lists (xlsx or csv) into supplier
// items: it parses the sheet, maps columns through the supplier's template,
// converts prices to EUR and stores new rows, skipping duplicates.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnparsableFile is returned when the upload cannot be read as a sheet.
var ErrUnparsableFile = errors.New("unparsable file")

var zipMagic = []byte("PK\x03\x04")

// Sheet is a parsed price list. Row numbers are 1-based spreadsheet rows,
// with the header on HeaderRow.
type Sheet struct {
	Headers   []string
	Rows      []Row
	HeaderRow int
}

// Row is one data line of a sheet.
type Row struct {
	Number int
	Values []string
}

// Value returns the cell under column i, or "" for a short row.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

func isSpreadsheet(filename string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	case ".csv", ".txt":
		return false
	}
	return bytes.HasPrefix(data, zipMagic)
}

// Parse reads data as xlsx or csv, choosing by extension and falling back
// to the zip signature.
func Parse(filename string, data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnparsableFile)
	}

	var (
		records []Row
		err     error
	)
	if isSpreadsheet(filename, data) {
		records, err = readWorkbook(data)
	} else {
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	return buildSheet(records)
}

func readWorkbook(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnparsableFile)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableFile, err)
	}
	records := make([]Row, len(rows))
	for i, values := range rows {
		records[i] = Row{Number: i + 1, Values: values}
	}
	return records, nil
}

// readCSV numbers records by the file line they start on; encoding/csv skips
// empty lines.
func readCSV(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records []Row
	for {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsableFile, err)
		}
		line, _ := r.FieldPos(0)
		records = append(records, Row{Number: line, Values: values})
	}
	return records, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// buildSheet takes the first non-blank record as the header and keeps the
// non-blank records after it.
func buildSheet(records []Row) (*Sheet, error) {
	sheet := &Sheet{}
	for _, record := range records {
		if blank(record.Values) {
			continue
		}
		if sheet.Headers == nil {
			sheet.HeaderRow = record.Number
			sheet.Headers = make([]string, len(record.Values))
			for j, h := range record.Values {
				sheet.Headers[j] = strings.TrimSpace(h)
			}
			continue
		}
		sheet.Rows = append(sheet.Rows, record)
	}
	if sheet.Headers == nil {
		return nil, fmt.Errorf("%w: no header row", ErrUnparsableFile)
	}
	return sheet, nil
}
