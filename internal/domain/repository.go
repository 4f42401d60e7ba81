package domain

import (
	"context"
)

// UserRepository owns the live set of users keyed by lower-cased username
type UserRepository interface {
	// Get retrieves a user by username (case-insensitive)
	Get(ctx context.Context, username string) (*User, error)

	// Put inserts or replaces a user
	Put(ctx context.Context, user *User) error

	// Exists reports whether a username is taken
	Exists(ctx context.Context, username string) bool

	// FindByIdentifier retrieves a user by account identifier (case-insensitive)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)

	// Snapshot returns every user ordered by key
	// The slice is fresh; the users are the live instances
	Snapshot(ctx context.Context) []*User

	// Replace swaps the whole user set, used after loading persisted state
	Replace(ctx context.Context, users []*User)
}

// LedgerStore persists and reconstructs the full ledger
type LedgerStore interface {
	// Load rebuilds users and their histories, skipping corrupt records
	// Read failures are logged and leave a partial ledger; an error is only returned
	// when the load is cancelled or the backend cannot be reached at all
	Load(ctx context.Context) (*LoadResult, error)

	// Save writes a full snapshot of the given users
	Save(ctx context.Context, users []*User) error
}

// LoadResult is the outcome of a Load: the users plus a per-record report
type LoadResult struct {
	Users  []*User
	Report LoadReport
}

// LoadReport counts what happened to each record during a load
type LoadReport struct {
	UsersLoaded         int
	UsersSkipped        int
	TransactionsLoaded  int
	TransactionsSkipped int
	OrphanedSides       int
	Warnings            int
}

// CredentialCodec is the reversible, non-cryptographic credential transform
type CredentialCodec interface {
	Encode(plaintext string) string
	Decode(ciphertext string) (string, error)
}

// IdentifierService generates and validates account identifiers
type IdentifierService interface {
	Generate() string
	Validate(id string) bool
}
