// Package tabular reads uploaded workbooks (CSV or XLSX) into uniform
// string-valued rows and locates the real header row in files that prepend
// title or metadata rows before the actual column labels.
//
// Every cell is surfaced as a string at this layer. Type coercion happens in
// the row transformer, so the header heuristics always operate on uniform
// input.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile is returned when the uploaded bytes cannot be parsed as
// the indicated format. It is the only fatal error in the pipeline.
var ErrUnreadableFile = errors.New("unreadable file")

// MaxSampleRows is the number of data rows captured in a ParsedFile for
// mapping proposals.
var MaxSampleRows = 10

// Format identifies the workbook encoding of an upload.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

// DetectFormat guesses the format from a file name. Unknown extensions are
// treated as CSV, which fails loudly on parse if the guess is wrong.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Sheet holds the raw rows of a single worksheet. CSV files are a
// single-sheet table; spreadsheet files contribute their first sheet only.
type Sheet struct {
	rows [][]string
}

// Read parses uploaded bytes into a Sheet. The source is never mutated.
func Read(data []byte, format Format) (*Sheet, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(data)
	default:
		return readCSV(data)
	}
}

func readCSV(data []byte) (*Sheet, error) {
	data = stripBOM(sanitizeUTF8(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrUnreadableFile, err)
	}
	return &Sheet{rows: rows}, nil
}

func readXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnreadableFile, sheets[0], err)
	}
	return &Sheet{rows: rows}, nil
}

// RowCount returns the total number of raw rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.rows)
}

// RawRows returns up to max raw rows as ordered string slices, unconverted.
// Used by the header locator.
func (s *Sheet) RawRows(max int) [][]string {
	if max > len(s.rows) {
		max = len(s.rows)
	}
	return s.rows[:max]
}

// RowsFrom treats the row at start as the header and returns every following
// non-blank row as a string-keyed record. Columns with empty header cells are
// dropped, repeated header labels are disambiguated, cells beyond the header
// width are ignored, and fully blank rows are excluded so they never count as
// data rows.
func (s *Sheet) RowsFrom(start int) []map[string]string {
	if start < 0 || start >= len(s.rows) {
		return nil
	}

	header := headerNames(s.rows[start])
	out := make([]map[string]string, 0, len(s.rows)-start-1)

	for _, row := range s.rows[start+1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, name := range header {
			if name == "" {
				continue
			}
			var val string
			if i < len(row) {
				val = CleanCell(row[i])
			}
			rec[name] = val
			if val != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Columns returns the cleaned, non-empty header names of the row at start, in
// source order and disambiguated the same way RowsFrom keys its records.
func (s *Sheet) Columns(start int) []string {
	if start < 0 || start >= len(s.rows) {
		return nil
	}
	var cols []string
	for _, name := range headerNames(s.rows[start]) {
		if name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

// headerNames cleans a header row and disambiguates repeated labels so every
// column keeps a distinct name: the second "Notes" becomes "Notes (2)".
// Without this, one record key would swallow all duplicated columns and a
// proposal set would carry the same source column twice.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	seen := make(map[string]bool, len(row))

	for i, cell := range row {
		name := CleanCell(cell)
		if name == "" {
			continue
		}
		if seen[name] {
			for n := 2; ; n++ {
				unique := fmt.Sprintf("%s (%d)", name, n)
				if !seen[unique] {
					name = unique
					break
				}
			}
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// ParsedFile is the immutable summary of one uploaded file: its columns, a
// small sample of data rows for mapping proposals, and the total data row
// count.
type ParsedFile struct {
	Columns    []string            `json:"columns"`
	SampleRows []map[string]string `json:"sampleRows"`
	TotalRows  int                 `json:"totalRows"`
	HeaderRow  int                 `json:"headerRow"`
}

// Parse reads an upload and summarizes it. Parsing the same bytes twice
// yields identical results.
func Parse(data []byte, format Format) (*ParsedFile, error) {
	sheet, err := Read(data, format)
	if err != nil {
		return nil, err
	}

	headerRow := DetectHeaderRow(sheet)
	rows := sheet.RowsFrom(headerRow)

	sample := rows
	if len(sample) > MaxSampleRows {
		sample = sample[:MaxSampleRows]
	}

	return &ParsedFile{
		Columns:    sheet.Columns(headerRow),
		SampleRows: sample,
		TotalRows:  len(rows),
		HeaderRow:  headerRow,
	}, nil
}

// CleanCell removes common spreadsheet artifacts from a cell value: leading
// Excel formula prefixes (="..."), stray surrounding quotes, and whitespace.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// downstream string handling never sees broken UTF-8.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
