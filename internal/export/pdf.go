package export

import (
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/dmelats/loanbook/internal/model"
)

// RenderPDF writes a one-page PDF snapshot of the loan into dir and returns
// the file path.
func RenderPDF(d model.LoanDetail, dir string) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Loan Details", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, kv := range loanFields(d) {
		pdf.CellFormat(60, 7, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Clients", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for i, entry := range d.Clients {
		line := fmt.Sprintf("%d. %s - has paid: %s", i+1, clientName(entry), yesNo(entry.HasPaid))
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}

	path := filepath.Join(dir, fileName(d.Loan.ID, "pdf"))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return path, nil
}
