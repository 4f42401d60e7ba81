package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/simaogato/greenday-ledger/internal/adapter/repository/record"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"go.uber.org/zap"
)

const (
	usersTable        = "ledger_users"
	transactionsTable = "ledger_transactions"
)

var (
	userColumns = []string{
		"username", "credential", "first_name", "last_name", "cash", "savings", "investment",
		"last_login", "fraud_warning", "frozen", "identifier", "fund_holdings",
	}
	transactionColumns = []string{
		"id", "ts", "amount", "description", "sender", "receiver",
		"sender_balance", "receiver_balance", "sender_type", "receiver_type",
	}
)

// ledgerStore implements domain.LedgerStore on two positional tables.
type ledgerStore struct {
	db     *DB
	codec  *record.Codec
	logger *zap.Logger
}

// NewLedgerStore creates a new ledger store
func NewLedgerStore(db *DB, codec *record.Codec, logger *zap.Logger) domain.LedgerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ledgerStore{db: db, codec: codec, logger: logger}
}

// Load reads every row in position order. Rows are decoded one by one, so a
// corrupt row is skipped like a corrupt file line.
func (s *ledgerStore) Load(ctx context.Context) (*domain.LoadResult, error) {
	assembler := s.codec.NewAssembler()

	err := s.scanRows(ctx, usersTable, userColumns, func(position int, fields []string) {
		assembler.AddUser(usersTable, position, fields)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	err = s.scanRows(ctx, transactionsTable, transactionColumns, func(position int, fields []string) {
		assembler.AddTransaction(transactionsTable, position, fields)
	})
	if err != nil {
		s.logger.Error("failed to read transactions, continuing with partial history", zap.Error(err))
	}

	return assembler.Result(), nil
}

func (s *ledgerStore) scanRows(ctx context.Context, table string, columns []string, handle func(int, []string)) error {
	query := fmt.Sprintf("SELECT position, %s FROM %s ORDER BY position", strings.Join(columns, ", "), table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var position int
		values := make([]sql.NullString, len(columns))
		dest := make([]any, 0, len(columns)+1)
		dest = append(dest, &position)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = v.String
		}
		handle(position, fields)
	}
	return rows.Err()
}

// Save replaces both tables with a full snapshot in one database transaction.
func (s *ledgerStore) Save(ctx context.Context, users []*domain.User) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{usersTable, transactionsTable} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	userRows := make([][]string, 0, len(users))
	for _, u := range users {
		userRows = append(userRows, s.codec.UserFields(u))
	}
	if err := insertRows(ctx, dbTx, usersTable, userColumns, userRows); err != nil {
		return err
	}
	if err := insertRows(ctx, dbTx, transactionsTable, transactionColumns, s.codec.TransactionFields(users)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, dbTx *sql.Tx, table string, columns []string, rows [][]string) error {
	placeholders := make([]string, len(columns)+1)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (position, %s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, 0, len(row)+1)
		args = append(args, i+1)
		for _, v := range row {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert %s row %d: %w", table, i+1, err)
		}
	}
	return nil
}
