// Package csvfile stores the ledger as two comma-delimited files in one directory.
package csvfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/simaogato/greenday-ledger/internal/adapter/repository/record"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"go.uber.org/zap"
)

const (
	UsersFile        = "users.csv"
	TransactionsFile = "transactions.csv"

	maxLineBytes = 1 << 20
)

// Store implements domain.LedgerStore on users.csv and transactions.csv.
// Saves overwrite both files in place and are not atomic.
type Store struct {
	Dir string

	codec  *record.Codec
	logger *zap.Logger
}

var _ domain.LedgerStore = (*Store)(nil)

// NewStore creates a new Store instance rooted at dir
func NewStore(dir string, codec *record.Codec, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, codec: codec, logger: logger}
}

// Load reads both files. Missing files yield an empty ledger. Every line is its own
// fault boundary: oversized or corrupt lines are skipped, and a read error stops at the
// failing line, keeping what was read so far. Only cancellation fails the load.
func (s *Store) Load(ctx context.Context) (*domain.LoadResult, error) {
	assembler := s.codec.NewAssembler()

	usersPath := filepath.Join(s.Dir, UsersFile)
	err := s.readLines(ctx, usersPath,
		func(line int, fields []string) { assembler.AddUser(UsersFile, line, fields) },
		func(line int, reason string) { assembler.RejectUser(UsersFile, line, reason) },
	)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("no users file, starting with an empty ledger", zap.String("path", usersPath))
		return assembler.Result(), nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		s.logger.Error("failed to read users, continuing with partial ledger",
			zap.String("path", usersPath), zap.Error(err))
	}

	txPath := filepath.Join(s.Dir, TransactionsFile)
	err = s.readLines(ctx, txPath,
		func(line int, fields []string) { assembler.AddTransaction(TransactionsFile, line, fields) },
		func(line int, reason string) { assembler.RejectTransaction(TransactionsFile, line, reason) },
	)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		s.logger.Error("failed to read transactions, continuing with partial history",
			zap.String("path", txPath), zap.Error(err))
	}

	return assembler.Result(), nil
}

// readLines hands every non-blank line to handle. Lines longer than maxLineBytes are
// drained and passed to reject instead.
func (s *Store) readLines(ctx context.Context, path string, handle func(line int, fields []string), reject func(line int, reason string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64*1024)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, oversized, err := readLine(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if oversized {
			reject(line, fmt.Sprintf("line exceeds %d bytes", maxLineBytes))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		handle(line, strings.Split(text, ","))
	}
}

// readLine returns the next line without its terminator, or reports it as oversized
// once it grows past maxLineBytes. The rest of an oversized line is discarded.
func readLine(r *bufio.Reader) (string, bool, error) {
	var buf []byte
	oversized := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !oversized {
			if len(buf)+len(chunk) > maxLineBytes {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), oversized, nil
		}
	}
}

// Save overwrites both files with a full snapshot, creating the directory first.
func (s *Store) Save(ctx context.Context, users []*domain.User) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	userRows := make([][]string, 0, len(users))
	for _, u := range users {
		userRows = append(userRows, s.codec.UserFields(u))
	}
	if err := writeRows(filepath.Join(s.Dir, UsersFile), userRows); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}
	if err := writeRows(filepath.Join(s.Dir, TransactionsFile), s.codec.TransactionFields(users)); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	return nil
}

func writeRows(path string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := io.WriteString(w, strings.Join(row, ",")+"\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
