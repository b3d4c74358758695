package tabular

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// HeaderScanRows is how many leading rows are inspected when locating the
// header. Real-world exports frequently prepend a title, filter description,
// or export timestamp before the actual column labels.
var HeaderScanRows = 10

// minHeaderCells is the minimum number of non-empty cells for a row to be
// considered a header candidate.
const minHeaderCells = 3

// headerUniqueRatio is the minimum share of unique values among a candidate
// row's non-empty cells. Headers should not repeat labels.
const headerUniqueRatio = 0.8

// dateLikeRe matches D/D, D-D and D.D values with an optional 2-4 digit
// year. Rows containing such values are data, not labels.
var dateLikeRe = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}([/.-]\d{2,4})?$`)

// DetectHeaderRow scans the first HeaderScanRows raw rows and returns the
// index of the first row that looks like real column headers. A candidate is
// rejected when it is too sparse, repeats values, or contains numeric or
// date-like cells.
//
// When no row qualifies the locator degrades to row 0 and logs a warning:
// treating a data row as headers produces poor mapping proposals the reviewer
// can still correct, whereas a hard failure would block the import entirely.
func DetectHeaderRow(s *Sheet) int {
	for i, row := range s.RawRows(HeaderScanRows) {
		if isHeaderRow(row) {
			return i
		}
	}

	if s.RowCount() > 0 {
		slog.Warn("no header row detected, defaulting to first row",
			"rows_scanned", min(HeaderScanRows, s.RowCount()))
	}
	return 0
}

func isHeaderRow(row []string) bool {
	var values []string
	for _, cell := range row {
		if v := CleanCell(cell); v != "" {
			values = append(values, v)
		}
	}

	if len(values) < minHeaderCells {
		return false
	}

	unique := make(map[string]bool, len(values))
	for _, v := range values {
		unique[strings.ToLower(v)] = true
	}
	if float64(len(unique)) < headerUniqueRatio*float64(len(values)) {
		return false
	}

	for _, v := range values {
		if isPlainNumber(v) || dateLikeRe.MatchString(v) {
			return false
		}
	}

	return true
}

func isPlainNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}
