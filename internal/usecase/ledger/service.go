// Package ledger is the serialised entry point to every ledger operation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/metrics"
	"github.com/simaogato/greenday-ledger/internal/usecase/accrual"
	"github.com/simaogato/greenday-ledger/internal/usecase/fraud"
	"github.com/simaogato/greenday-ledger/internal/usecase/transfer"
	"go.uber.org/zap"
)

const maxIdentifierAttempts = 10

// Dependencies wires a Service. Store may be nil for a purely in-memory ledger.
type Dependencies struct {
	UserRepo    domain.UserRepository
	Store       domain.LedgerStore
	Identifiers domain.IdentifierService
	Monitor     *fraud.Monitor
	// WallClock seeds the simulated clock and stamps logins. Defaults to time.Now.
	WallClock func() time.Time
	Logger    *zap.Logger
	Metrics   metrics.Collector
}

// Service owns the user set, the simulated clock and the transfer coordinator,
// and runs every operation under one mutex.
type Service struct {
	mu sync.Mutex

	UserRepo    domain.UserRepository
	Store       domain.LedgerStore
	Identifiers domain.IdentifierService
	Engine      *accrual.Engine
	Transfers   *transfer.Coordinator

	wallClock func() time.Time
	logger    *zap.Logger
	metrics   metrics.Collector
}

// NewService creates a new Service instance
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	wallClock := deps.WallClock
	if wallClock == nil {
		wallClock = time.Now
	}
	collector := metrics.OrNoOp(deps.Metrics)

	engine := accrual.NewEngine(deps.UserRepo, wallClock(), logger.Named("accrual"), collector)
	return &Service{
		UserRepo:    deps.UserRepo,
		Store:       deps.Store,
		Identifiers: deps.Identifiers,
		Engine:      engine,
		Transfers:   transfer.NewCoordinator(deps.UserRepo, deps.Monitor, engine, logger.Named("transfer"), collector),
		wallClock:   wallClock,
		logger:      logger,
		metrics:     collector,
	}
}

// Load replaces the live user set with the persisted ledger.
func (s *Service) Load(ctx context.Context) (*domain.LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Store == nil {
		return &domain.LoadReport{}, nil
	}
	result, err := s.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	s.UserRepo.Replace(ctx, result.Users)

	report := result.Report
	s.logger.Info("ledger loaded",
		zap.Int("users_loaded", report.UsersLoaded),
		zap.Int("users_skipped", report.UsersSkipped),
		zap.Int("transactions_loaded", report.TransactionsLoaded),
		zap.Int("transactions_skipped", report.TransactionsSkipped),
		zap.Int("orphaned_sides", report.OrphanedSides))
	return &report, nil
}

// Save writes a full snapshot of the ledger.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Service) save(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	started := time.Now()
	err := s.Store.Save(ctx, s.UserRepo.Snapshot(ctx))
	s.metrics.RecordSave(err == nil, time.Since(started))
	if err != nil {
		s.logger.Error("failed to save ledger", zap.Error(err))
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// persist saves after a committed mutation. The mutation stands even if the save fails.
func (s *Service) persist(ctx context.Context) {
	_ = s.save(ctx)
}

// RegisterInput represents the input for registering a user
type RegisterInput struct {
	FirstName  string
	LastName   string // Optional
	Username   string
	Credential string
}

// Register creates a user with the starting cash balance and a fresh identifier.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	user := domain.NewUser(
		strings.TrimSpace(input.FirstName),
		strings.TrimSpace(input.LastName),
		strings.TrimSpace(input.Username),
		strings.TrimSpace(input.Credential),
		"",
	)
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	// "null" marks an absent party in stored transactions
	if strings.EqualFold(user.Username, "null") {
		return nil, fmt.Errorf("%w: username %q is reserved", domain.ErrInvalidInput, user.Username)
	}
	for _, field := range []string{user.FirstName, user.LastName, user.Username, user.Credential} {
		if strings.ContainsRune(field, ',') || strings.IndexFunc(field, unicode.IsControl) >= 0 {
			return nil, fmt.Errorf("%w: fields cannot contain commas or control characters", domain.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UserRepo.Exists(ctx, user.Username) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserExists, user.Username)
	}
	identifier, err := s.uniqueIdentifier(ctx)
	if err != nil {
		return nil, err
	}
	user.Identifier = identifier

	if err := s.UserRepo.Put(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", user.Username))
	s.persist(ctx)

	return newProfile(user), nil
}

func (s *Service) uniqueIdentifier(ctx context.Context) (string, error) {
	for i := 0; i < maxIdentifierAttempts; i++ {
		id := s.Identifiers.Generate()
		if _, err := s.UserRepo.FindByIdentifier(ctx, id); errors.Is(err, domain.ErrUserNotFound) {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique account identifier")
}

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	Profile *Profile
	// DaysCaughtUp is the number of missed days of gains applied at login.
	DaysCaughtUp int
}

// Authenticate checks credentials, applies gains missed since the last login
// (measured on the wall clock) and stamps the new login time.
func (s *Service) Authenticate(ctx context.Context, username, credential string) (*AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.UserRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Credential != strings.TrimSpace(credential) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	now := s.wallClock()
	days := s.Engine.CatchUp(user, now)
	user.LastLogin = &now
	s.persist(ctx)

	return &AuthResult{Profile: newProfile(user), DaysCaughtUp: days}, nil
}

// active fetches a user who is allowed to operate. Callers hold the lock.
func (s *Service) active(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.UserRepo.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Frozen {
		return nil, domain.ErrAccountFrozen
	}
	return user, nil
}

// Deposit moves cash into the savings account.
func (s *Service) Deposit(ctx context.Context, username string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := user.SubtractCash(amount); err != nil {
		return nil, fmt.Errorf("%w: cash on hand %s", err, user.Cash().StringFixed(2))
	}
	user.Savings().Deposit(amount)

	tx := s.record(user, domain.TransactionTypeDeposit, amount, "Cash Deposit", user.Savings().Balance())
	s.persist(ctx)
	return tx, nil
}

// Withdraw moves money from the savings account back to cash.
func (s *Service) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := user.Savings().Withdraw(amount); err != nil {
		return nil, fmt.Errorf("%w: savings balance %s", err, user.Savings().Balance().StringFixed(2))
	}
	user.AddCash(amount)

	tx := s.record(user, domain.TransactionTypeWithdraw, amount, "Cash Withdrawal", user.Savings().Balance())
	s.persist(ctx)
	return tx, nil
}

// Invest moves money from the un-invested investment balance into a fund.
func (s *Service) Invest(ctx context.Context, username string, fund domain.Fund, amount decimal.Decimal) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	investment := user.Investment()
	if err := investment.InvestInFund(fund, amount); err != nil {
		return nil, err
	}

	tx := s.record(user, domain.TransactionTypeInvest, amount, "Invested in "+string(fund), investment.Balance())
	s.persist(ctx)
	return tx, nil
}

// WithdrawAllInvestments liquidates every fund into the un-invested balance.
// No transaction row is recorded.
func (s *Service) WithdrawAllInvestments(ctx context.Context, username string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return decimal.Zero, err
	}
	total := user.Investment().WithdrawAllFunds()
	s.persist(ctx)
	return total, nil
}

// SendMoney transfers cash to another user. A transfer that freezes the sender is
// persisted before ErrAccountFrozen is returned.
func (s *Service) SendMoney(ctx context.Context, username string, input transfer.SendInput) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}

	result, err := s.Transfers.SendMoney(ctx, sender, input)
	if errors.Is(err, domain.ErrAccountFrozen) {
		s.persist(ctx)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &Receipt{
		TransactionID:     result.TransactionID,
		RecipientUsername: result.Recipient.Username,
		RecipientName:     result.Recipient.Name(),
		Amount:            result.Amount,
		FraudWarning:      result.FraudWarning,
		CashAfter:         sender.Cash(),
	}, nil
}

// TransferBetweenAccounts moves money between the user's savings and investment accounts.
func (s *Service) TransferBetweenAccounts(ctx context.Context, username string, from domain.AccountKind, amount decimal.Decimal) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	tx, err := s.Transfers.TransferBetweenAccounts(ctx, user, from, amount)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return tx, nil
}

// Balance reports every balance of the user. It does not accrue gains.
func (s *Service) Balance(ctx context.Context, username string) (*BalanceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	return newBalanceView(user), nil
}

// History returns the user's transactions in insertion order.
func (s *Service) History(ctx context.Context, username string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.History(), nil
}

// PreviousRecipients lists users the caller has sent money to before.
func (s *Service) PreviousRecipients(ctx context.Context, username string) ([]Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}
	users := s.Transfers.PreviousRecipients(ctx, user)
	out := make([]Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, Recipient{Username: u.Username, Name: u.Name(), Identifier: u.Identifier})
	}
	return out, nil
}

// AdvanceTime moves the simulated clock and applies gains to every user.
func (s *Service) AdvanceTime(ctx context.Context, days int) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Engine.AdvanceTime(ctx, days); err != nil {
		return time.Time{}, err
	}
	s.persist(ctx)
	return s.Engine.Now(), nil
}

// DismissFraudWarning clears the user's fraud warning.
func (s *Service) DismissFraudWarning(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.active(ctx, username)
	if err != nil {
		return err
	}
	if !user.FraudWarning {
		return nil
	}
	user.FraudWarning = false
	s.persist(ctx)
	return nil
}

// Unfreeze is the administrative recovery path for a frozen account.
// It clears both the frozen flag and the fraud warning.
func (s *Service) Unfreeze(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.UserRepo.Get(ctx, username)
	if err != nil {
		return err
	}
	user.Frozen = false
	user.FraudWarning = false
	s.logger.Info("account unfrozen", zap.String("username", user.Username))
	s.persist(ctx)
	return nil
}

// Now returns the simulated current time.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.Now()
}

// Accounts summarises every user, frozen or not, ordered by username.
func (s *Service) Accounts(ctx context.Context) []AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.UserRepo.Snapshot(ctx)
	out := make([]AccountSummary, 0, len(users))
	for _, u := range users {
		out = append(out, AccountSummary{
			Profile:      *newProfile(u),
			Balance:      *newBalanceView(u),
			Frozen:       u.Frozen,
			Transactions: len(u.History()),
		})
	}
	return out
}

func (s *Service) record(user *domain.User, txType domain.TransactionType, amount decimal.Decimal, description string, balanceAfter decimal.Decimal) *domain.Transaction {
	tx := domain.Transaction{
		ID:           s.Transfers.NewID(),
		Timestamp:    s.Engine.Now(),
		Type:         txType,
		Amount:       amount,
		Description:  description,
		BalanceAfter: balanceAfter,
	}
	user.AddTransaction(tx)
	return &tx
}
