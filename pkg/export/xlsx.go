package export

import (
	"fmt"
	"io"
	"strings"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	sheetReserved = `:\/?*[]`
)

// XLSX writes tables as a single-sheet Excel workbook.
type XLSX struct{}

func (XLSX) Format() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write encodes table to w. The header row is bold.
func (XLSX) Write(w io.Writer, table dashboard.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Name)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("export: name sheet: %w", err)
		}
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Title
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for idx, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", idx, err)
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("export: write row %d: %w", idx, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(sheetReserved, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return defaultSheet
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}
