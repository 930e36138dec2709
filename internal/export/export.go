// Package export renders a fully joined loan snapshot to a PDF or xlsx file
// on disk. Exporters consume a model.LoanDetail and return the written file
// path; they never touch the database.
package export

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmelats/loanbook/internal/model"
)

// ErrRender wraps any failure inside the document libraries or the file
// system so handlers can map every export failure to one outcome.
var ErrRender = errors.New("report generation failed")

// fileName builds a collision-free name for an export of the given loan.
func fileName(loanID uint64, ext string) string {
	return fmt.Sprintf("loan_%d_%s.%s", loanID, uuid.NewString()[:8], ext)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// clientName renders an entry's client as a display name, falling back to
// the raw reference when the client record no longer exists.
func clientName(e model.LoanClientDetail) string {
	if e.Client == nil {
		return "deleted client #" + strconv.FormatUint(e.ClientID, 10)
	}
	if e.Client.LastName == "" {
		return e.Client.FirstName
	}
	return e.Client.FirstName + " " + e.Client.LastName
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// loanFields lists the loan's scalar fields in report order, shared by both
// exporters. Interest rates are shown as percentages.
func loanFields(d model.LoanDetail) [][2]string {
	l := d.Loan
	owner := "unknown"
	if d.Owner != nil {
		owner = d.Owner.FirstName + " " + d.Owner.LastName
	}
	return [][2]string{
		{"Loan ID", strconv.FormatUint(l.ID, 10)},
		{"Loan Name", l.LoanName},
		{"Managed By", owner},
		{"Capital", fmt.Sprintf("%.2f %s", l.Capital, l.Currency)},
		{"Monthly Interest (%)", fmt.Sprintf("%.2f", l.MonthlyInterest*100)},
		{"Annual Interest (%)", fmt.Sprintf("%.2f", l.AnnualInterest*100)},
		{"Timeline (Months)", strconv.Itoa(l.Timeline)},
		{"Currency", l.Currency},
		{"Legal Expenses", fmt.Sprintf("%.2f", l.LegalExpenses)},
		{"Total Profit", fmt.Sprintf("%.2f", l.TotalProfit)},
		{"Status", l.Status},
		{"Created At", l.CreatedAt.Format("2006-01-02")},
		{"Updated At", l.UpdatedAt.Format("2006-01-02")},
	}
}
