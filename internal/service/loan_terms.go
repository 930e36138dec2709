// Package service holds the core lifecycles: loan validation and derived
// terms, the OTP issue/verify flow, and best-effort event publishing. The
// formulas live here, not in the persistence layer, so they test in
// isolation from storage.
package service

import (
	"strings"

	"github.com/dmelats/loanbook/internal/model"
)

// LoanInput carries the raw fields of a loan creation request. Pointer fields
// distinguish "absent" from a literal zero, which matters for required-field
// checks and for derived-term computation.
type LoanInput struct {
	LoanName        string
	Clients         []model.LoanClient
	UserID          uint64
	Capital         *float64
	MonthlyInterest *float64
	AnnualInterest  *float64
	Timeline        *int
	Currency        string
	LegalExpenses   *float64
	TotalProfit     *float64
	Status          string
}

// ValidationError reports the missing and malformed fields of a request in
// one pass so the caller can correct everything at once.
type ValidationError struct {
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// ValidateLoan checks the presence and shape of every required field. It
// returns a *ValidationError listing all problems, or nil when the input is
// acceptable.
func ValidateLoan(in LoanInput) error {
	var v ValidationError
	if strings.TrimSpace(in.LoanName) == "" {
		v.Missing = append(v.Missing, "loanName")
	}
	if len(in.Clients) == 0 {
		v.Missing = append(v.Missing, "clients")
	}
	if in.UserID == 0 {
		v.Missing = append(v.Missing, "userId")
	}
	switch {
	case in.Capital == nil:
		v.Missing = append(v.Missing, "capital")
	case *in.Capital <= 0:
		v.Invalid = append(v.Invalid, "capital")
	}
	switch {
	case in.MonthlyInterest == nil:
		v.Missing = append(v.Missing, "monthlyInterest")
	case *in.MonthlyInterest < 0:
		v.Invalid = append(v.Invalid, "monthlyInterest")
	}
	switch {
	case in.Timeline == nil:
		v.Missing = append(v.Missing, "timeline")
	case *in.Timeline <= 0:
		v.Invalid = append(v.Invalid, "timeline")
	}
	if strings.TrimSpace(in.Currency) == "" {
		v.Missing = append(v.Missing, "currency")
	}
	switch {
	case in.LegalExpenses == nil:
		v.Missing = append(v.Missing, "legalExpenses")
	case *in.LegalExpenses < 0:
		v.Invalid = append(v.Invalid, "legalExpenses")
	}
	if in.Status != "" && !model.ValidLoanStatus(in.Status) {
		v.Invalid = append(v.Invalid, "status")
	}
	for _, lc := range in.Clients {
		if lc.ClientID == 0 {
			v.Invalid = append(v.Invalid, "clients")
			break
		}
	}
	if v.empty() {
		return nil
	}
	return &v
}

// BuildLoan turns validated input into a loan ready to persist. Derived
// fields are filled only when the caller did not supply them:
//
//	annualInterest = monthlyInterest * 12
//	totalProfit    = capital * monthlyInterest * timeline
//
// The client list is normalized to unpaid entries regardless of input, and
// the status defaults to Active.
func BuildLoan(in LoanInput) model.Loan {
	l := model.Loan{
		LoanName:        strings.TrimSpace(in.LoanName),
		UserID:          in.UserID,
		Capital:         *in.Capital,
		MonthlyInterest: *in.MonthlyInterest,
		Timeline:        *in.Timeline,
		Currency:        strings.TrimSpace(in.Currency),
		LegalExpenses:   *in.LegalExpenses,
		Status:          in.Status,
	}
	if l.Status == "" {
		l.Status = model.LoanStatusActive
	}
	if in.AnnualInterest != nil {
		l.AnnualInterest = *in.AnnualInterest
	} else {
		l.AnnualInterest = l.MonthlyInterest * 12
	}
	if in.TotalProfit != nil {
		l.TotalProfit = *in.TotalProfit
	} else {
		l.TotalProfit = l.Capital * l.MonthlyInterest * float64(l.Timeline)
	}
	l.Clients = make([]model.LoanClient, len(in.Clients))
	for i, lc := range in.Clients {
		l.Clients[i] = model.LoanClient{ClientID: lc.ClientID, HasPaid: false}
	}
	return l
}
