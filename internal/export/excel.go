package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/dmelats/loanbook/internal/model"
)

const (
	sheetLoan    = "Loan Details"
	sheetClients = "Clients"
)

// RenderExcel writes an xlsx snapshot of the loan into dir and returns the
// file path. The workbook has two sheets: the loan's scalar fields and the
// client table with per-entry payment state.
func RenderExcel(d model.LoanDetail, dir string) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := buildWorkbook(f, d); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	path := filepath.Join(dir, fileName(d.Loan.ID, "xlsx"))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return path, nil
}

func buildWorkbook(f *excelize.File, d model.LoanDetail) error {
	if err := f.SetSheetName("Sheet1", sheetLoan); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
	})
	if err != nil {
		return err
	}
	subHeader, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return err
	}

	// Loan sheet: field/value pairs under a merged title row.
	if err := f.SetColWidth(sheetLoan, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetLoan, "B", "B", 50); err != nil {
		return err
	}
	if err := f.MergeCell(sheetLoan, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetLoan, "A1", "Loan Information"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetLoan, "A1", "B1", header); err != nil {
		return err
	}
	row := 3
	for _, kv := range loanFields(d) {
		if err := f.SetCellValue(sheetLoan, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetLoan, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
		row++
	}

	// Clients sheet: one row per loan-client entry.
	if _, err := f.NewSheet(sheetClients); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetClients, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetClients, "B", "B", 15); err != nil {
		return err
	}
	if err := f.MergeCell(sheetClients, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetClients, "A1", "Clients Information"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetClients, "A1", "B1", header); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetClients, "A2", "Client Name"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetClients, "B2", "Has Paid"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetClients, "A2", "B2", subHeader); err != nil {
		return err
	}
	for i, entry := range d.Clients {
		r := i + 3
		if err := f.SetCellValue(sheetClients, fmt.Sprintf("A%d", r), clientName(entry)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetClients, fmt.Sprintf("B%d", r), yesNo(entry.HasPaid)); err != nil {
			return err
		}
	}
	return nil
}
