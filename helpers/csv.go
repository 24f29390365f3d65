package helpers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spektr-org/salespulse/sales"
)

// ============================================================================
// DATASET HELPERS — Parses export bytes into sales.Dataset
// ============================================================================
// The caller reads the export from wherever it lives (file, HTTP, Sheets).
// These helpers only turn bytes into header-keyed rows; cleaning belongs to
// sales.Normalize.
// ============================================================================

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("no header row")

// ParseCSV parses CSV bytes into a Dataset. Header names are trimmed and a
// UTF-8 byte order mark is dropped. Short rows are padded with blanks and
// extra cells are ignored.
func ParseCSV(data []byte) (sales.Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return sales.Dataset{}, ErrNoHeader
	}
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	ds := sales.Dataset{Columns: headers}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sales.Dataset{}, fmt.Errorf("failed to read CSV row %d: %w", len(ds.Rows)+2, err)
		}

		rec := make(sales.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// ParseJSON parses a JSON array of objects into a Dataset. Numbers are kept
// as json.Number so order ids and amounts keep their exact text. Columns are
// the union of object keys: each object contributes its new keys in sorted order.
func ParseJSON(data []byte) (sales.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return sales.Dataset{}, fmt.Errorf("failed to decode JSON rows: %w", err)
	}

	ds := sales.Dataset{Rows: make([]sales.Row, 0, len(rows))}
	seen := make(map[string]bool)
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, strings.TrimSpace(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				ds.Columns = append(ds.Columns, k)
			}
		}
		ds.Rows = append(ds.Rows, sales.Row(r))
	}
	return ds, nil
}

// Parse picks ParseJSON or ParseCSV from a content type or, when that is
// empty, from the first non-space byte.
func Parse(data []byte, contentType string) (sales.Dataset, error) {
	switch {
	case strings.Contains(contentType, "json"):
		return ParseJSON(data)
	case strings.Contains(contentType, "csv"):
		return ParseCSV(data)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return ParseJSON(data)
	}
	return ParseCSV(data)
}
