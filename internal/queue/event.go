// Package queue defines the loan event payload exchanged over the message
// broker and the background consumer that records events to a log file.
package queue

// LoanEventsQueue is the durable queue all loan lifecycle events go to.
const LoanEventsQueue = "loan.events"

// Loan event actions.
const (
	ActionLoanCreated = "created"
	ActionLoanUpdated = "updated"
	ActionLoanDeleted = "deleted"
)

// LoanEvent is published after a loan is created, updated or deleted. It
// carries enough for downstream consumers to log or notify without querying
// the primary database.
type LoanEvent struct {
	Action     string  `json:"action"`
	LoanID     uint64  `json:"loan_id"`
	LoanName   string  `json:"loan_name"`
	UserID     uint64  `json:"user_id"`
	Capital    float64 `json:"capital"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	OccurredAt string  `json:"occurred_at"`
}
