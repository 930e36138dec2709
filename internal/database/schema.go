package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the idempotent table definitions, applied in order at startup.
//
// loan_clients deliberately has no foreign key on client_id and no unique key
// over (loan_id, client_id): deleting a client must leave dangling loan
// entries in place (no cascade), and the same client may legally appear more
// than once on a loan. Rows are removed with their loan via the loan_id FK.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		gender ENUM('male','female','other') NOT NULL,
		profile_image VARCHAR(512) NOT NULL DEFAULT '',
		is_activated TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS clients (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		gender ENUM('male','female','other') NOT NULL,
		country VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL,
		address VARCHAR(255) NOT NULL,
		zip_code VARCHAR(32) NOT NULL,
		id_number VARCHAR(64) NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_clients_id_number (id_number),
		KEY idx_clients_user (user_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS loans (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		loan_name VARCHAR(255) NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		capital DOUBLE NOT NULL,
		monthly_interest DOUBLE NOT NULL,
		annual_interest DOUBLE NOT NULL,
		timeline INT NOT NULL,
		currency VARCHAR(8) NOT NULL,
		legal_expenses DOUBLE NOT NULL,
		total_profit DOUBLE NOT NULL,
		status ENUM('Active','Foreclosure','Finished') NOT NULL DEFAULT 'Active',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_loans_user (user_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS loan_clients (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		loan_id BIGINT UNSIGNED NOT NULL,
		client_id BIGINT UNSIGNED NOT NULL,
		has_paid TINYINT(1) NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0,
		KEY idx_loan_clients_loan (loan_id),
		KEY idx_loan_clients_client (client_id),
		CONSTRAINT fk_loan_clients_loan FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// EnsureSchema creates the application tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
