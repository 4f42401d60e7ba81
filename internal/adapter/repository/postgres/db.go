package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=ledger sslmode=disable"
func NewDB(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Columns are text and positional, mirroring the flat record layout, so rows are
// validated by the same codec as the file store.
const schema = `
CREATE TABLE IF NOT EXISTS ledger_users (
	position       INTEGER PRIMARY KEY,
	username       TEXT,
	credential     TEXT,
	first_name     TEXT,
	last_name      TEXT,
	cash           TEXT,
	savings        TEXT,
	investment     TEXT,
	last_login     TEXT,
	fraud_warning  TEXT,
	frozen         TEXT,
	identifier     TEXT,
	fund_holdings  TEXT
);

CREATE TABLE IF NOT EXISTS ledger_transactions (
	position          INTEGER PRIMARY KEY,
	id                TEXT,
	ts                TEXT,
	amount            TEXT,
	description       TEXT,
	sender            TEXT,
	receiver          TEXT,
	sender_balance    TEXT,
	receiver_balance  TEXT,
	sender_type       TEXT,
	receiver_type     TEXT
);
`

// EnsureSchema creates the ledger tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
