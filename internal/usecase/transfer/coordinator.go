// Package transfer moves money between users and between a user's own accounts.
package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/metrics"
	"github.com/simaogato/greenday-ledger/internal/usecase/fraud"
	"go.uber.org/zap"
)

// Clock supplies the simulated time stamped on every row.
type Clock interface {
	Now() time.Time
}

// SendInput represents the input for a person-to-person transfer.
// The recipient is named either by username or by identifier plus full name.
type SendInput struct {
	RecipientUsername   string
	RecipientIdentifier string
	RecipientName       string
	Amount              decimal.Decimal
	Message             string // Optional, appended to both descriptions
}

// SendResult describes a committed person-to-person transfer.
type SendResult struct {
	TransactionID uuid.UUID
	Recipient     *domain.User
	Amount        decimal.Decimal
	// FraudWarning is set when the transfer itself was flagged as suspicious.
	FraudWarning bool
}

// Coordinator validates, fraud-checks and commits transfers.
// It is not safe for concurrent use; the ledger service serialises access.
type Coordinator struct {
	UserRepo domain.UserRepository
	Monitor  *fraud.Monitor
	Clock    Clock
	NewID    func() uuid.UUID

	logger  *zap.Logger
	metrics metrics.Collector
}

// NewCoordinator creates a new Coordinator instance
func NewCoordinator(userRepo domain.UserRepository, monitor *fraud.Monitor, clock Clock, logger *zap.Logger, collector metrics.Collector) *Coordinator {
	if monitor == nil {
		monitor = fraud.DefaultMonitor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		UserRepo: userRepo,
		Monitor:  monitor,
		Clock:    clock,
		NewID:    uuid.New,
		logger:   logger,
		metrics:  metrics.OrNoOp(collector),
	}
}

// SendMoney moves cash from sender to a recipient.
// Flow:
//  1. Validate amount and resolve the recipient
//  2. Check sender cash
//  3. Evaluate a candidate debit row with the fraud monitor (not appended)
//  4. Suspicious sets the fraud warning; the freeze condition also freezes and aborts
//  5. Commit both sides under one transaction id
//
// When ErrAccountFrozen is returned the sender flags have changed and must be persisted.
func (c *Coordinator) SendMoney(ctx context.Context, sender *domain.User, input SendInput) (*SendResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeRejected)
		return nil, domain.ErrInvalidAmount
	}
	message := strings.TrimSpace(input.Message)
	if strings.ContainsAny(message, ",\r\n") {
		c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: message cannot contain commas or line breaks", domain.ErrInvalidInput)
	}

	recipient, err := c.resolveRecipient(ctx, input)
	if err != nil {
		c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeRejected)
		return nil, err
	}
	if recipient.Key() == sender.Key() {
		c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeRejected)
		return nil, domain.ErrSameUser
	}

	if input.Amount.GreaterThan(sender.Cash()) {
		c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: cash %s, requested %s", domain.ErrInsufficientFunds,
			sender.Cash().StringFixed(2), input.Amount.StringFixed(2))
	}

	now := c.Clock.Now()
	candidate := domain.Transaction{
		Timestamp:    now,
		Type:         domain.TransactionTypeTransfer,
		Amount:       input.Amount,
		BalanceAfter: sender.Cash().Sub(input.Amount),
	}

	suspicious := c.Monitor.IsSuspicious(candidate)
	if suspicious {
		sender.FraudWarning = true
		c.metrics.RecordFraudWarning()
		c.logger.Warn("large transfer flagged",
			zap.String("username", sender.Username),
			zap.String("amount", input.Amount.StringFixed(2)))

		if c.Monitor.ShouldFreezeAccount(sender, now) {
			sender.Frozen = true
			c.metrics.RecordFreeze()
			c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeFrozen)
			c.logger.Warn("account frozen after repeated large transfers",
				zap.String("username", sender.Username))
			return nil, domain.ErrAccountFrozen
		}
	}

	if err := sender.SubtractCash(input.Amount); err != nil {
		return nil, err
	}
	recipient.AddCash(input.Amount)

	id := c.NewID()
	sender.AddTransaction(domain.Transaction{
		ID:           id,
		Timestamp:    now,
		Type:         domain.TransactionTypeTransfer,
		Amount:       input.Amount,
		Description:  domain.SentDescription(recipient.Name(), message),
		BalanceAfter: sender.Cash(),
	})
	recipient.AddTransaction(domain.Transaction{
		ID:           id,
		Timestamp:    now,
		Type:         domain.TransactionTypeDeposit,
		Amount:       input.Amount,
		Description:  domain.ReceivedDescription(sender.Name(), message),
		BalanceAfter: recipient.Cash(),
	})

	c.metrics.RecordTransfer(metrics.TransferPersonToPerson, metrics.OutcomeCommitted)
	c.logger.Info("transfer committed",
		zap.String("transaction_id", id.String()),
		zap.String("from", sender.Username),
		zap.String("to", recipient.Username),
		zap.String("amount", input.Amount.StringFixed(2)))

	return &SendResult{
		TransactionID: id,
		Recipient:     recipient,
		Amount:        input.Amount,
		FraudWarning:  suspicious,
	}, nil
}

func (c *Coordinator) resolveRecipient(ctx context.Context, input SendInput) (*domain.User, error) {
	if username := strings.TrimSpace(input.RecipientUsername); username != "" {
		return c.UserRepo.Get(ctx, username)
	}

	identifier := strings.TrimSpace(input.RecipientIdentifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: recipient username or identifier is required", domain.ErrInvalidInput)
	}
	recipient, err := c.UserRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(recipient.Name(), strings.TrimSpace(input.RecipientName)) {
		return nil, domain.ErrRecipientMismatch
	}
	return recipient, nil
}

// TransferBetweenAccounts moves amount from one of the user's accounts to the other and
// records a single TRANSFER row carrying the source account's new balance.
func (c *Coordinator) TransferBetweenAccounts(ctx context.Context, user *domain.User, from domain.AccountKind, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		c.metrics.RecordTransfer(metrics.TransferInterAccount, metrics.OutcomeRejected)
		return nil, domain.ErrInvalidAmount
	}

	var description string
	var to domain.AccountKind
	switch from {
	case domain.AccountKindSavings:
		to, description = domain.AccountKindInvestment, "To Investment Account"
	case domain.AccountKindInvestment:
		to, description = domain.AccountKindSavings, "From Investment Account"
	default:
		c.metrics.RecordTransfer(metrics.TransferInterAccount, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: unknown account kind %q", domain.ErrInvalidInput, from)
	}

	source, _ := user.Account(from)
	destination, _ := user.Account(to)

	if err := source.Withdraw(amount); err != nil {
		c.metrics.RecordTransfer(metrics.TransferInterAccount, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %s balance %s, requested %s", err, strings.ToLower(string(from)),
			source.Balance().StringFixed(2), amount.StringFixed(2))
	}
	destination.Deposit(amount)

	tx := domain.Transaction{
		ID:           c.NewID(),
		Timestamp:    c.Clock.Now(),
		Type:         domain.TransactionTypeTransfer,
		Amount:       amount,
		Description:  description,
		BalanceAfter: source.Balance(),
	}
	user.AddTransaction(tx)

	c.metrics.RecordTransfer(metrics.TransferInterAccount, metrics.OutcomeCommitted)
	return &tx, nil
}

// PreviousRecipients lists the other users this user has sent money to, matched by
// the display name recorded in the user's "Sent to" rows and ordered by username.
func (c *Coordinator) PreviousRecipients(ctx context.Context, user *domain.User) []*domain.User {
	names := make(map[string]struct{})
	for _, tx := range user.History() {
		if tx.Type != domain.TransactionTypeTransfer {
			continue
		}
		if name, _, ok := domain.ParseSentDescription(tx.Description); ok {
			names[strings.ToLower(name)] = struct{}{}
		}
	}
	if len(names) == 0 {
		return nil
	}

	var out []*domain.User
	for _, candidate := range c.UserRepo.Snapshot(ctx) {
		if candidate.Key() == user.Key() {
			continue
		}
		if _, ok := names[strings.ToLower(candidate.Name())]; ok {
			out = append(out, candidate)
		}
	}
	return out
}
