package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads the first sheet of an XLSX workbook into the 2-D cell
// grid Parse consumes. Cell values come back as the strings excelize renders
// for them; the normalizers downstream handle the formatting variance.
func LoadWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}
