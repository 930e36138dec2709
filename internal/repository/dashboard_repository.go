package repository

import (
	"context"
	"database/sql"

	"github.com/dmelats/loanbook/internal/model"
)

// DashboardRepo computes the read-only rollups shown on the back-office
// dashboard. The two queries are independent; a read under concurrent writes
// may see a mixed snapshot, which is accepted for a dashboard view.
type DashboardRepo struct{ DB *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{DB: db} }

// Totals returns the current rollups. With no loans every figure is zero.
// NetMonthlyProfit sums capital*monthly_interest per loan, an approximation
// of monthly yield distinct from total_profit.
func (r *DashboardRepo) Totals(ctx context.Context) (model.Dashboard, error) {
	var d model.Dashboard
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(capital),0), COALESCE(SUM(capital*monthly_interest),0) FROM loans").
		Scan(&d.TotalCapital, &d.NetMonthlyProfit)
	if err != nil {
		return d, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(has_paid=1),0), COALESCE(SUM(has_paid=0),0) FROM loan_clients").
		Scan(&d.ClientsPaid, &d.ClientsNotPaid)
	return d, err
}
