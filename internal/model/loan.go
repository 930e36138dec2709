package model

import "time"

// Loan status values. A loan starts Active and is moved by staff through
// Foreclosure or to Finished; there is no enforced transition order.
const (
	LoanStatusActive      = "Active"
	LoanStatusForeclosure = "Foreclosure"
	LoanStatusFinished    = "Finished"
)

// ValidLoanStatus reports whether s is one of the accepted loan statuses.
func ValidLoanStatus(s string) bool {
	return s == LoanStatusActive || s == LoanStatusForeclosure || s == LoanStatusFinished
}

// LoanClient is one entry of a loan's ordered client list. HasPaid tracks
// this client's obligation on this loan only; there is no global per-client
// payment flag. The same client may appear more than once on a loan.
type LoanClient struct {
	ClientID uint64 `json:"client"`
	HasPaid  bool   `json:"hasPaid"`
}

// Loan is a loan record as stored in the `loans` table, with its client
// entries from `loan_clients`. MonthlyInterest is a fraction (0.02 = 2%),
// not a percentage. AnnualInterest and TotalProfit are derived at creation
// when the caller does not supply them.
type Loan struct {
	ID              uint64       `json:"id"`
	LoanName        string       `json:"loanName"`
	Clients         []LoanClient `json:"clients"`
	UserID          uint64       `json:"userId"`
	Capital         float64      `json:"capital"`
	MonthlyInterest float64      `json:"monthlyInterest"`
	AnnualInterest  float64      `json:"annualInterest"`
	Timeline        int          `json:"timeline"` // months
	Currency        string       `json:"currency"`
	LegalExpenses   float64      `json:"legalExpenses"`
	TotalProfit     float64      `json:"totalProfit"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// LoanClientDetail is a client entry with the referenced Client resolved.
// Client is nil when the reference dangles (the client was deleted after the
// loan was created); the entry itself is kept.
type LoanClientDetail struct {
	ClientID uint64  `json:"clientId"`
	Client   *Client `json:"client"`
	HasPaid  bool    `json:"hasPaid"`
}

// LoanDetail is a fully joined loan view: the loan, its resolved client
// entries and the owning staff profile. It is what getById returns and what
// the report exporters consume.
type LoanDetail struct {
	Loan    Loan               `json:"loan"`
	Clients []LoanClientDetail `json:"clients"`
	Owner   *Profile           `json:"owner"`
}

// Dashboard holds the on-demand rollups over all loans. ClientsPaid and
// ClientsNotPaid count loan-client entries, not distinct clients.
type Dashboard struct {
	TotalCapital     float64 `json:"totalCapital"`
	NetMonthlyProfit float64 `json:"netMonthlyProfit"`
	ClientsPaid      int64   `json:"clientsPaid"`
	ClientsNotPaid   int64   `json:"clientsNotPaid"`
}
