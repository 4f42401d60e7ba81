package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement a transaction records
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeTransfer    TransactionType = "TRANSFER"
	TransactionTypeInvest      TransactionType = "INVEST"
	TransactionTypeGainApplied TransactionType = "GAIN_APPLIED"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer,
		TransactionTypeInvest, TransactionTypeGainApplied:
		return true
	}
	return false
}

// IsDebit reports whether the type takes money out of the account it belongs to.
// Debit rows are the "sender" side of a persisted record.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeTransfer || t == TransactionTypeWithdraw || t == TransactionTypeInvest
}

// Transaction is an immutable entry in a user's history.
// Both sides of a person-to-person transfer share the same ID.
type Transaction struct {
	ID           uuid.UUID
	Timestamp    time.Time // simulated time, not wall clock
	Type         TransactionType
	Amount       decimal.Decimal
	Description  string
	BalanceAfter decimal.Decimal // balance of the owning account right after insertion
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return errors.New("transaction id cannot be empty")
	}
	if !t.Type.Valid() {
		return errors.New("transaction type is invalid")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if t.BalanceAfter.IsNegative() {
		return errors.New("balance after cannot be negative")
	}
	return nil
}

const (
	sentPrefix     = "Sent to "
	receivedPrefix = "Received from "
	messageSep     = " - "
)

// SentDescription is the sender-side description of a person-to-person transfer.
func SentDescription(recipientName, message string) string {
	return withMessage(sentPrefix+recipientName, message)
}

// ReceivedDescription is the recipient-side description of a person-to-person transfer.
func ReceivedDescription(senderName, message string) string {
	return withMessage(receivedPrefix+senderName, message)
}

// ParseSentDescription splits a sender-side description into recipient name and message.
func ParseSentDescription(description string) (recipientName, message string, ok bool) {
	return parseDescription(description, sentPrefix)
}

// ParseReceivedDescription splits a recipient-side description into sender name and message.
func ParseReceivedDescription(description string) (senderName, message string, ok bool) {
	return parseDescription(description, receivedPrefix)
}

func parseDescription(description, prefix string) (name, message string, ok bool) {
	if !strings.HasPrefix(description, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(description, prefix)
	if i := strings.Index(rest, messageSep); i >= 0 {
		return rest[:i], rest[i+len(messageSep):], true
	}
	return rest, "", true
}

func withMessage(description, message string) string {
	if message == "" {
		return description
	}
	return description + messageSep + message
}
