package export

import (
	"encoding/csv"
	"fmt"
	"io"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// utf8BOM makes spreadsheet applications detect UTF-8, so Thai labels render.
const utf8BOM = "\ufeff"

// CSV writes tables as comma separated values with a header row.
type CSV struct {
	// OmitBOM disables the leading byte order mark.
	OmitBOM bool
}

func (CSV) Format() string      { return "csv" }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

// Write encodes table to w.
func (e CSV) Write(w io.Writer, table dashboard.Table) error {
	if !e.OmitBOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("export: write bom: %w", err)
		}
	}
	writer := csv.NewWriter(w)
	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Title
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("export: write rows: %w", err)
	}
	return nil
}
