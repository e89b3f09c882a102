// Package convert turns spreadsheet CSV exports into the quiz data files.
package convert

import (
	"fmt"
	"io"
	"strings"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
)

// Row is one non-blank data line of an export.
type Row struct {
	// Line is the index of the line in the export; the header is line 0.
	Line   int
	Fields []string
}

// SplitLine splits a CSV line into trimmed fields. A double quote toggles
// quoted mode and is dropped; commas inside quotes are kept as text.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// ReadRows reads an export and returns its data rows. The first line is
// the header and is skipped, as are blank lines.
func ReadRows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, scerrors.New(scerrors.ErrCodeConvertNoHeader, "export is empty").
			WithSuggestion("Export the sheet including its header row")
	}

	lines := strings.Split(string(data), "\n")
	rows := make([]Row, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		rows = append(rows, Row{Line: i, Fields: SplitLine(line)})
	}

	return rows, nil
}

// Field returns the i-th field or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}
