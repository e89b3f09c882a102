package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
)

// SkippedRow records why a row was left out of the output.
type SkippedRow struct {
	Line   int
	Reason string
}

// Report summarizes a conversion.
type Report struct {
	Converted int
	// Replaced counts rows that overwrote an earlier record with the same id.
	Replaced int
	Skipped  []SkippedRow
}

func (r *Report) skip(line int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Line: line, Reason: reason})
}

// String returns a one-line summary.
func (r Report) String() string {
	s := fmt.Sprintf("%d converted, %d skipped", r.Converted, len(r.Skipped))
	if r.Replaced > 0 {
		s += fmt.Sprintf(", %d replaced", r.Replaced)
	}
	return s
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return scerrors.NewConvertOutputError(path, err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return scerrors.NewConvertOutputError(path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return scerrors.NewConvertOutputError(path, err)
	}
	return nil
}
