package domain

import "errors"

// Domain errors. Callers compare with errors.Is; services wrap them with context.
var (
	// ErrInvalidAmount is returned when a non-positive amount reaches a money-moving operation.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a withdrawal or transfer exceeds the source balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCorruptRecord marks a persisted row that failed schema, type or sign validation.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrOrphanedTransactionSide marks a persisted transfer side whose user no longer exists.
	ErrOrphanedTransactionSide = errors.New("orphaned transaction side")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountFrozen      = errors.New("account frozen pending review")
	ErrSameUser           = errors.New("sender and recipient are the same user")
	ErrRecipientMismatch  = errors.New("recipient name does not match identifier")
	ErrUnknownFund        = errors.New("unknown fund")
)
