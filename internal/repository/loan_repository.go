package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmelats/loanbook/internal/model"
)

// LoanRepo persists loans and their client entries. A loan row lives in
// `loans`; its ordered client list lives in `loan_clients` and is written
// together with the loan inside one transaction.
type LoanRepo struct{ DB *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{DB: db} }

const loanColumns = "id,loan_name,user_id,capital,monthly_interest,annual_interest,timeline,currency,legal_expenses,total_profit,status,created_at,updated_at"

// LoanPatch carries a partial loan update. Nil fields are left untouched.
// When Clients is non-nil the whole client list is replaced. References are
// not re-validated on update; only create resolves them.
type LoanPatch struct {
	LoanName        *string
	Capital         *float64
	MonthlyInterest *float64
	AnnualInterest  *float64
	Timeline        *int
	Currency        *string
	LegalExpenses   *float64
	TotalProfit     *float64
	Status          *string
	Clients         *[]model.LoanClient
}

// Create inserts the loan row and its client entries atomically and fills in
// the loan id.
func (r *LoanRepo) Create(ctx context.Context, l *model.Loan) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO loans (loan_name,user_id,capital,monthly_interest,annual_interest,timeline,currency,legal_expenses,total_profit,status) VALUES (?,?,?,?,?,?,?,?,?,?)",
		l.LoanName, l.UserID, l.Capital, l.MonthlyInterest, l.AnnualInterest,
		l.Timeline, l.Currency, l.LegalExpenses, l.TotalProfit, l.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)

	for i, lc := range l.Clients {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO loan_clients (loan_id,client_id,has_paid,position) VALUES (?,?,?,?)",
			l.ID, lc.ClientID, lc.HasPaid, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Update applies the patch and returns the updated loan. ErrLoanNotFound is
// returned when the id does not resolve.
func (r *LoanRepo) Update(ctx context.Context, id uint64, p LoanPatch) (model.Loan, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Loan{}, err
	}

	set := make([]string, 0, 9)
	args := make([]any, 0, 10)
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if p.LoanName != nil {
		add("loan_name", *p.LoanName)
	}
	if p.Capital != nil {
		add("capital", *p.Capital)
	}
	if p.MonthlyInterest != nil {
		add("monthly_interest", *p.MonthlyInterest)
	}
	if p.AnnualInterest != nil {
		add("annual_interest", *p.AnnualInterest)
	}
	if p.Timeline != nil {
		add("timeline", *p.Timeline)
	}
	if p.Currency != nil {
		add("currency", *p.Currency)
	}
	if p.LegalExpenses != nil {
		add("legal_expenses", *p.LegalExpenses)
	}
	if p.TotalProfit != nil {
		add("total_profit", *p.TotalProfit)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if len(set) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE loans SET "+strings.Join(set, ",")+" WHERE id=?", args...); err != nil {
			return model.Loan{}, err
		}
	}
	if p.Clients != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM loan_clients WHERE loan_id=?", id); err != nil {
			return model.Loan{}, err
		}
		for i, lc := range *p.Clients {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO loan_clients (loan_id,client_id,has_paid,position) VALUES (?,?,?,?)",
				id, lc.ClientID, lc.HasPaid, i); err != nil {
				return model.Loan{}, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a loan with its client entries, references unresolved.
func (r *LoanRepo) GetByID(ctx context.Context, id uint64) (model.Loan, error) {
	var l model.Loan
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+loanColumns+" FROM loans WHERE id=? LIMIT 1", id).
		Scan(&l.ID, &l.LoanName, &l.UserID, &l.Capital, &l.MonthlyInterest, &l.AnnualInterest,
			&l.Timeline, &l.Currency, &l.LegalExpenses, &l.TotalProfit, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return l, ErrLoanNotFound
	}
	if err != nil {
		return l, err
	}
	l.Clients, err = r.loanClients(ctx, id)
	return l, err
}

func (r *LoanRepo) loanClients(ctx context.Context, loanID uint64) ([]model.LoanClient, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT client_id,has_paid FROM loan_clients WHERE loan_id=? ORDER BY position", loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LoanClient, 0)
	for rows.Next() {
		var lc model.LoanClient
		if err := rows.Scan(&lc.ClientID, &lc.HasPaid); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// List returns all loans with their client entries.
func (r *LoanRepo) List(ctx context.Context) ([]model.Loan, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+loanColumns+" FROM loans ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := make([]model.Loan, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.LoanName, &l.UserID, &l.Capital, &l.MonthlyInterest, &l.AnnualInterest,
			&l.Timeline, &l.Currency, &l.LegalExpenses, &l.TotalProfit, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Clients = make([]model.LoanClient, 0)
		index[l.ID] = len(loans)
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := r.DB.QueryContext(ctx,
		"SELECT loan_id,client_id,has_paid FROM loan_clients ORDER BY loan_id,position")
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var loanID uint64
		var lc model.LoanClient
		if err := crows.Scan(&loanID, &lc.ClientID, &lc.HasPaid); err != nil {
			return nil, err
		}
		if i, ok := index[loanID]; ok {
			loans[i].Clients = append(loans[i].Clients, lc)
		}
	}
	return loans, crows.Err()
}

// GetDetail fetches a loan with every client reference and the owning user
// resolved. Dangling client references yield entries with a nil Client; a
// deleted owner yields a nil Owner. The entries themselves are always kept.
func (r *LoanRepo) GetDetail(ctx context.Context, id uint64) (model.LoanDetail, error) {
	var d model.LoanDetail
	loan, err := r.GetByID(ctx, id)
	if err != nil {
		return d, err
	}
	d.Loan = loan
	d.Clients = make([]model.LoanClientDetail, 0, len(loan.Clients))

	rows, err := r.DB.QueryContext(ctx,
		`SELECT lc.client_id, lc.has_paid,
		        c.id, c.first_name, c.last_name, c.gender, c.country, c.state,
		        c.address, c.zip_code, c.id_number, c.user_id, c.created_at, c.updated_at
		 FROM loan_clients lc
		 LEFT JOIN clients c ON c.id = lc.client_id
		 WHERE lc.loan_id=? ORDER BY lc.position`, id)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry model.LoanClientDetail
		var cid sql.NullInt64
		var first, last, gender, country, state, address, zip, idNum sql.NullString
		var userID sql.NullInt64
		var created, updated sql.NullTime
		if err := rows.Scan(&entry.ClientID, &entry.HasPaid,
			&cid, &first, &last, &gender, &country, &state,
			&address, &zip, &idNum, &userID, &created, &updated); err != nil {
			return d, err
		}
		if cid.Valid {
			entry.Client = &model.Client{
				ID:        uint64(cid.Int64),
				FirstName: first.String,
				LastName:  last.String,
				Gender:    gender.String,
				Country:   country.String,
				State:     state.String,
				Address:   address.String,
				ZipCode:   zip.String,
				IDNumber:  idNum.String,
				UserID:    uint64(userID.Int64),
				CreatedAt: created.Time,
				UpdatedAt: updated.Time,
			}
		}
		d.Clients = append(d.Clients, entry)
	}
	if err := rows.Err(); err != nil {
		return d, err
	}

	users := NewUserRepo(r.DB)
	if owner, err := users.GetByID(ctx, loan.UserID); err == nil {
		p := owner.Profile()
		d.Owner = &p
	} else if err != ErrUserNotFound {
		return d, err
	}
	return d, nil
}

// Delete removes a loan; its loan_clients rows go with it via the FK cascade.
// Referenced clients are untouched.
func (r *LoanRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM loans WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLoanNotFound
	}
	return nil
}
