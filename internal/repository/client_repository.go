package repository

import (
	"context"
	"database/sql"

	"github.com/dmelats/loanbook/internal/model"
)

// ClientRepo persists borrower profiles in the `clients` table.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientColumns = "id,first_name,last_name,gender,country,state,address,zip_code,id_number,user_id,created_at,updated_at"

// Create inserts the client and fills in its id. A duplicate id number maps
// to ErrIDNumberExists.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (first_name,last_name,gender,country,state,address,zip_code,id_number,user_id) VALUES (?,?,?,?,?,?,?,?,?)",
		c.FirstName, c.LastName, c.Gender, c.Country, c.State, c.Address, c.ZipCode, c.IDNumber, c.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrIDNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites the editable profile fields of a client.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET first_name=?,last_name=?,gender=?,country=?,state=?,address=?,zip_code=?,id_number=? WHERE id=?",
		c.FirstName, c.LastName, c.Gender, c.Country, c.State, c.Address, c.ZipCode, c.IDNumber, c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrIDNumberExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the id does not exist or nothing changed; disambiguate.
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a client by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	var c model.Client
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Gender, &c.Country, &c.State,
			&c.Address, &c.ZipCode, &c.IDNumber, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrClientNotFound
	}
	return c, err
}

// List returns all clients ordered by creation.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Client, 0)
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Gender, &c.Country, &c.State,
			&c.Address, &c.ZipCode, &c.IDNumber, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a client. Loan entries referencing it are left untouched;
// their joins simply come back empty afterwards.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM clients WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Exists reports whether a client id resolves.
func (r *ClientRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM clients WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
