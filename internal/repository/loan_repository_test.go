package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelats/loanbook/internal/model"
)

var loanCols = []string{
	"id", "loan_name", "user_id", "capital", "monthly_interest", "annual_interest",
	"timeline", "currency", "legal_expenses", "total_profit", "status",
	"created_at", "updated_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestLoanRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)

	loan := model.Loan{
		LoanName:        "Bridge loan",
		UserID:          1,
		Capital:         10000,
		MonthlyInterest: 0.02,
		AnnualInterest:  0.24,
		Timeline:        12,
		Currency:        "EUR",
		LegalExpenses:   150,
		TotalProfit:     2400,
		Status:          model.LoanStatusActive,
		Clients: []model.LoanClient{
			{ClientID: 3},
			{ClientID: 9},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO loans").
		WithArgs("Bridge loan", uint64(1), 10000.0, 0.02, 0.24, 12, "EUR", 150.0, 2400.0, model.LoanStatusActive).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO loan_clients").
		WithArgs(uint64(7), uint64(3), false, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO loan_clients").
		WithArgs(uint64(7), uint64(9), false, 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &loan))
	assert.Equal(t, uint64(7), loan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoCreateRollsBackOnEntryFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)

	loan := model.Loan{LoanName: "x", UserID: 1, Currency: "EUR",
		Status: model.LoanStatusActive, Clients: []model.LoanClient{{ClientID: 3}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO loans").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO loan_clients").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	assert.Error(t, repo.Create(context.Background(), &loan))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM loans WHERE id=\\? LIMIT 1").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoDeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)

	mock.ExpectExec("DELETE FROM loans WHERE id=\\?").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoGetDetailDanglingClient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM loans WHERE id=\\? LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(loanCols).
			AddRow(7, "Bridge loan", 1, 10000.0, 0.02, 0.24, 12, "EUR", 150.0, 2400.0,
				model.LoanStatusActive, now, now))
	mock.ExpectQuery("SELECT client_id,has_paid FROM loan_clients").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "has_paid"}).
			AddRow(3, true).
			AddRow(9, false))
	mock.ExpectQuery("LEFT JOIN clients").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"client_id", "has_paid", "id", "first_name", "last_name", "gender",
			"country", "state", "address", "zip_code", "id_number", "user_id",
			"created_at", "updated_at",
		}).
			AddRow(3, true, 3, "Maria", "Kostas", model.GenderFemale, "GR", "Attica",
				"1 Main St", "11111", "AB123456", 1, now, now).
			// client 9 was deleted after the loan was created
			AddRow(9, false, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=\\? LIMIT 1").
		WithArgs(uint64(1)).
		WillReturnError(sql.ErrNoRows)

	d, err := repo.GetDetail(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, d.Clients, 2)
	require.NotNil(t, d.Clients[0].Client)
	assert.Equal(t, "Maria", d.Clients[0].Client.FirstName)
	assert.True(t, d.Clients[0].HasPaid)

	// the dangling entry survives with its reference but no resolved client
	assert.Equal(t, uint64(9), d.Clients[1].ClientID)
	assert.Nil(t, d.Clients[1].Client)
	assert.False(t, d.Clients[1].HasPaid)

	assert.Nil(t, d.Owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoUpdateReplacesClients(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)
	now := time.Now()

	loanRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(loanCols).
			AddRow(7, "Bridge loan", 1, 10000.0, 0.02, 0.24, 12, "EUR", 150.0, 2400.0,
				model.LoanStatusActive, now, now)
	}
	clientRows := func(vals ...any) *sqlmock.Rows {
		r := sqlmock.NewRows([]string{"client_id", "has_paid"})
		for i := 0; i < len(vals); i += 2 {
			r.AddRow(vals[i], vals[i+1])
		}
		return r
	}

	// existence precheck
	mock.ExpectQuery("SELECT (.+) FROM loans WHERE id=\\? LIMIT 1").
		WithArgs(uint64(7)).WillReturnRows(loanRows())
	mock.ExpectQuery("SELECT client_id,has_paid FROM loan_clients").
		WithArgs(uint64(7)).WillReturnRows(clientRows(3, true))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans SET status=\\? WHERE id=\\?").
		WithArgs(model.LoanStatusFinished, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM loan_clients WHERE loan_id=\\?").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loan_clients").
		WithArgs(uint64(7), uint64(9), true, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// reread after commit
	mock.ExpectQuery("SELECT (.+) FROM loans WHERE id=\\? LIMIT 1").
		WithArgs(uint64(7)).WillReturnRows(loanRows())
	mock.ExpectQuery("SELECT client_id,has_paid FROM loan_clients").
		WithArgs(uint64(7)).WillReturnRows(clientRows(9, true))

	status := model.LoanStatusFinished
	clients := []model.LoanClient{{ClientID: 9, HasPaid: true}}
	got, err := repo.Update(context.Background(), 7, LoanPatch{Status: &status, Clients: &clients})
	require.NoError(t, err)
	require.Len(t, got.Clients, 1)
	assert.Equal(t, uint64(9), got.Clients[0].ClientID)
	assert.True(t, got.Clients[0].HasPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepoUpdateNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM loans WHERE id=\\? LIMIT 1").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	name := "renamed"
	_, err := repo.Update(context.Background(), 99, LoanPatch{LoanName: &name})
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
