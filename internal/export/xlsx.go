package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	DefaultFilename  = "export.xlsx"
	DefaultSheetName = "Sheet1"
	ContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteSpreadsheet writes a header row followed by rows into a single sheet.
// An empty rows slice is ErrNothingToExport and nothing is written.
func WriteSpreadsheet(w io.Writer, rows []Row, sheetName string) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	sheetName = SheetName(sheetName)

	f := excelize.NewFile()
	defer f.Close()

	if sheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := writeRow(f, sheetName, 1, Columns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheetName, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// WriteResumes is Rows followed by WriteSpreadsheet.
func WriteResumes(w io.Writer, resumes []models.Resume, sheetName string) error {
	return WriteSpreadsheet(w, Rows(resumes), sheetName)
}

func writeRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", n, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(":", "", `\`, "", "/", "", "?", "", "*", "", "[", "", "]", "")

// SheetName returns a valid sheet name, DefaultSheetName when name is empty.
func SheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	if name == "" {
		return DefaultSheetName
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// Filename returns a safe attachment name ending in .xlsx.
func Filename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return DefaultFilename
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}
