package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StartingCash is the cash balance every newly registered user receives
var StartingCash = decimal.RequireFromString("10000.00")

// User owns its cash, its two accounts and its transaction history.
// Identity fields are fixed at registration; money moves only through methods.
type User struct {
	FirstName  string
	LastName   string
	Username   string
	Credential string // plaintext in memory; encoded only when persisted
	Identifier string // opaque account identifier (IBAN-style)

	LastLogin    *time.Time
	FraudWarning bool
	Frozen       bool

	cash       decimal.Decimal
	savings    *SavingsAccount
	investment *InvestmentAccount
	history    []Transaction
}

// NewUser creates a user with StartingCash and empty accounts.
func NewUser(firstName, lastName, username, credential, identifier string) *User {
	return &User{
		FirstName:  firstName,
		LastName:   lastName,
		Username:   username,
		Credential: credential,
		Identifier: identifier,
		cash:       StartingCash,
		savings:    NewSavingsAccount(),
		investment: NewInvestmentAccount(),
	}
}

// Validate ensures the identity fields adhere to domain rules
func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return errors.New("first name cannot be empty")
	}
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username cannot be empty")
	}
	if strings.ContainsAny(u.Username, " \t") {
		return errors.New("username cannot contain spaces")
	}
	if strings.TrimSpace(u.Credential) == "" {
		return errors.New("credential cannot be empty")
	}
	return nil
}

// Key is the case-insensitive lookup key of the user.
func (u *User) Key() string {
	return UserKey(u.Username)
}

// UserKey normalises a username into a repository key.
func UserKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Name is the display name: first name plus last name when present.
func (u *User) Name() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) Cash() decimal.Decimal { return u.cash }

func (u *User) Savings() *SavingsAccount { return u.savings }

func (u *User) Investment() *InvestmentAccount { return u.investment }

// Account returns the account of the given kind.
func (u *User) Account(kind AccountKind) (Account, error) {
	switch kind {
	case AccountKindSavings:
		return u.savings, nil
	case AccountKindInvestment:
		return u.investment, nil
	default:
		return nil, ErrInvalidInput
	}
}

// AddCash credits cash. The caller guarantees amount > 0.
func (u *User) AddCash(amount decimal.Decimal) {
	u.cash = u.cash.Add(amount)
}

// SubtractCash debits cash, never letting it go negative.
func (u *User) SubtractCash(amount decimal.Decimal) error {
	if amount.GreaterThan(u.cash) {
		return ErrInsufficientFunds
	}
	u.cash = u.cash.Sub(amount)
	return nil
}

// RestoreCash sets cash directly. Only used when rebuilding persisted state.
func (u *User) RestoreCash(value decimal.Decimal) {
	u.cash = value
}

// AddTransaction appends to the history. Entries are never modified afterwards.
func (u *User) AddTransaction(t Transaction) {
	u.history = append(u.history, t)
}

// History returns a copy of the transaction history in insertion order.
func (u *User) History() []Transaction {
	out := make([]Transaction, len(u.history))
	copy(out, u.history)
	return out
}

// ApplyDailyGains runs one day of growth on both accounts.
func (u *User) ApplyDailyGains() {
	u.savings.ApplyGains()
	u.investment.ApplyGains()
}
