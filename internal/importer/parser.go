package importer

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Document is the result of parsing a CSV upload: one header row plus the
// data rows that follow it.
type Document struct {
	Headers []string
	Rows    [][]string
}

// bankHeaderMarkers identify the real header line inside bank exports that
// prepend metadata/title lines before the column names. A row counts as the
// header when its lower-cased, comma-joined text contains all of them.
var bankHeaderMarkers = []string{
	"transaction type",
	"date posted",
	"transaction amount",
}

// Parse reads raw CSV text and returns the first row as headers and the rest
// as data rows. A leading UTF-8 BOM is stripped, blank lines are skipped and
// short rows are padded with empty cells to the header width. Malformed CSV
// (e.g. unbalanced quotes) fails the whole call.
func Parse(text string) (Document, error) {
	rows, err := readRows(text)
	if err != nil {
		return Document{}, err
	}
	if len(rows) == 0 {
		return Document{}, nil
	}
	doc := Document{Headers: rows[0]}
	for _, row := range rows[1:] {
		doc.Rows = append(doc.Rows, padRow(row, len(doc.Headers)))
	}
	return doc, nil
}

// ParseBank parses CSV text from a bank export without assuming the first row
// is the header. It scans for the earliest row containing all known header
// markers; that row becomes the header and everything before it is discarded.
// If no such row exists the document is empty, not an error.
func ParseBank(text string) (Document, error) {
	rows, err := readRows(text)
	if err != nil {
		return Document{}, err
	}
	for i, row := range rows {
		joined := strings.ToLower(strings.Join(row, ","))
		if containsAll(joined, bankHeaderMarkers) {
			doc := Document{Headers: row}
			for _, r := range rows[i+1:] {
				doc.Rows = append(doc.Rows, padRow(r, len(row)))
			}
			return doc, nil
		}
	}
	return Document{}, nil
}

func readRows(text string) ([][]string, error) {
	text = strings.TrimPrefix(text, "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // tolerate ragged rows, padding happens later
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var rows [][]string
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		// An upstream parser may hand over a whole line as one cell. If the
		// single cell still contains commas, re-split it as a fallback.
		if len(rec) == 1 && strings.Contains(rec[0], ",") {
			rec = strings.Split(rec[0], ",")
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func containsAll(s string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(s, m) {
			return false
		}
	}
	return true
}
