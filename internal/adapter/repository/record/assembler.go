package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"go.uber.org/zap"
)

// Record kinds, as reported to metrics.
const (
	KindUser        = "user"
	KindTransaction = "transaction"
)

// Assembler rebuilds a ledger record by record. Every record is its own fault
// boundary: a bad record is reported and skipped, never fatal.
// All users must be added before any transaction.
type Assembler struct {
	codec  *Codec
	users  map[string]*domain.User
	report domain.LoadReport
}

// NewAssembler starts an empty load.
func (c *Codec) NewAssembler() *Assembler {
	return &Assembler{
		codec: c,
		users: make(map[string]*domain.User),
	}
}

// AddUser decodes one user record. Required fields must be present and valid;
// optional trailing fields fall back to defaults with a warning.
func (a *Assembler) AddUser(source string, line int, fields []string) {
	log := a.codec.logger.With(zap.String("source", source), zap.Int("line", line))

	user, warnings, err := a.decodeUser(fields)
	if err != nil {
		a.report.UsersSkipped++
		log.Warn("skipping user record", zap.String("reason", err.Error()))
		return
	}
	for _, w := range warnings {
		a.report.Warnings++
		log.Warn("user record fallback", zap.String("username", user.Username), zap.String("reason", w))
	}
	if _, dup := a.users[user.Key()]; dup {
		a.report.Warnings++
		a.report.UsersLoaded--
		log.Warn("duplicate user record replaces earlier one", zap.String("username", user.Username))
	}
	a.users[user.Key()] = user
	a.report.UsersLoaded++
}

// RejectUser counts a user record that could not even be split into fields.
func (a *Assembler) RejectUser(source string, line int, reason string) {
	a.report.UsersSkipped++
	a.codec.logger.Warn("skipping user record",
		zap.String("source", source), zap.Int("line", line), zap.String("reason", reason))
}

// RejectTransaction counts a transaction record that could not even be split into fields.
func (a *Assembler) RejectTransaction(source string, line int, reason string) {
	a.report.TransactionsSkipped++
	a.codec.logger.Warn("skipping transaction record",
		zap.String("source", source), zap.Int("line", line), zap.String("reason", reason))
}

func (a *Assembler) decodeUser(fields []string) (*domain.User, []string, error) {
	if len(fields) < MinUserFields {
		return nil, nil, corrupt("expected at least %d fields, got %d", MinUserFields, len(fields))
	}
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	username, encoded, firstName, lastName := field(0), field(1), field(2), field(3)
	switch {
	case username == "":
		return nil, nil, corrupt("username is empty")
	case encoded == "":
		return nil, nil, corrupt("credential is empty for user %q", username)
	case firstName == "":
		return nil, nil, corrupt("first name is empty for user %q", username)
	}

	var balances [3]decimal.Decimal
	for i, name := range []string{"cash", "savings", "investment"} {
		value, err := parseMoney(field(4 + i))
		if err != nil {
			return nil, nil, corrupt("%s for user %q: %v", name, username, err)
		}
		balances[i] = value
	}

	credential, err := a.codec.Credentials.Decode(encoded)
	if err != nil {
		return nil, nil, corrupt("credential for user %q cannot be decoded: %v", username, err)
	}
	if credential == "" {
		return nil, nil, corrupt("credential for user %q decodes empty", username)
	}

	var warnings []string

	identifier := field(10)
	if isNull(identifier) {
		identifier = ""
		if a.codec.Identifiers != nil {
			identifier = a.codec.Identifiers.Generate()
		}
		warnings = append(warnings, "missing identifier, assigned a new one")
	}

	user := domain.NewUser(firstName, lastName, username, credential, identifier)
	user.RestoreCash(balances[0])
	user.Savings().Restore(balances[1])
	user.Investment().Restore(balances[2])

	if raw := field(7); !isNull(raw) {
		if ts, err := ParseTime(raw); err == nil {
			user.LastLogin = &ts
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid last login %q, using none", raw))
		}
	}

	for i, target := range []*bool{&user.FraudWarning, &user.Frozen} {
		raw := field(8 + i)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid flag %q, using false", raw))
			continue
		}
		*target = value
	}

	holdings, err := parseHoldings(field(11))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid fund holdings, using none: %v", err))
		holdings = nil
	}
	for _, fund := range domain.Funds() {
		if amount, ok := holdings[fund]; ok {
			user.Investment().RestoreFund(fund, amount)
		}
	}

	return user, warnings, nil
}

// AddTransaction decodes one transaction record and appends each side to its user.
// A side whose user does not exist is dropped with a warning; the other side survives.
func (a *Assembler) AddTransaction(source string, line int, fields []string) {
	log := a.codec.logger.With(zap.String("source", source), zap.Int("line", line))

	r, warnings, err := decodeRow(fields)
	if err != nil {
		a.report.TransactionsSkipped++
		log.Warn("skipping transaction record", zap.String("reason", err.Error()))
		return
	}
	for _, w := range warnings {
		a.report.Warnings++
		log.Warn("transaction record fallback", zap.String("transaction_id", r.id.String()), zap.String("reason", w))
	}

	sender := a.side(log, r, r.sender, "sender")
	receiver := a.side(log, r, r.receiver, "receiver")

	senderDesc, receiverDesc := r.description, r.description
	if r.sender != "" && r.receiver != "" {
		senderDesc, receiverDesc = splitDescriptions(r, displayName(sender, r.sender), displayName(receiver, r.receiver))
	}

	added := false
	if sender != nil {
		sender.AddTransaction(domain.Transaction{
			ID:           r.id,
			Timestamp:    r.timestamp,
			Type:         r.senderType,
			Amount:       r.amount,
			Description:  senderDesc,
			BalanceAfter: r.senderBalance,
		})
		added = true
	}
	if receiver != nil {
		receiver.AddTransaction(domain.Transaction{
			ID:           r.id,
			Timestamp:    r.timestamp,
			Type:         r.receiverType,
			Amount:       r.amount,
			Description:  receiverDesc,
			BalanceAfter: r.receiverBalance,
		})
		added = true
	}

	if added {
		a.report.TransactionsLoaded++
		return
	}
	a.report.TransactionsSkipped++
	log.Warn("skipping transaction record", zap.String("transaction_id", r.id.String()),
		zap.String("reason", "no side belongs to a known user"))
}

func (a *Assembler) side(log *zap.Logger, r *row, username, role string) *domain.User {
	if username == "" {
		return nil
	}
	user, ok := a.users[domain.UserKey(username)]
	if !ok {
		a.report.OrphanedSides++
		a.report.Warnings++
		log.Warn("dropping transaction side",
			zap.String("transaction_id", r.id.String()),
			zap.String("username", username),
			zap.String("role", role),
			zap.Error(domain.ErrOrphanedTransactionSide))
		return nil
	}
	return user
}

// Result finishes the load, returning the users ordered by key.
func (a *Assembler) Result() *domain.LoadResult {
	users := make([]*domain.User, 0, len(a.users))
	for _, u := range a.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Key() < users[j].Key() })

	m := a.codec.metrics
	m.RecordRecords(KindUser, "loaded", a.report.UsersLoaded)
	m.RecordRecords(KindUser, "skipped", a.report.UsersSkipped)
	m.RecordRecords(KindTransaction, "loaded", a.report.TransactionsLoaded)
	m.RecordRecords(KindTransaction, "skipped", a.report.TransactionsSkipped)
	m.RecordRecords(KindTransaction, "orphaned_side", a.report.OrphanedSides)

	return &domain.LoadResult{Users: users, Report: a.report}
}

func decodeRow(fields []string) (*row, []string, error) {
	if len(fields) < MinTransactionFields {
		return nil, nil, corrupt("expected at least %d fields, got %d", MinTransactionFields, len(fields))
	}
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	id, err := uuid.Parse(field(0))
	if err != nil {
		return nil, nil, corrupt("invalid id %q", field(0))
	}
	ts, err := ParseTime(field(1))
	if err != nil {
		return nil, nil, corrupt("invalid timestamp %q", field(1))
	}
	amount, err := decimal.NewFromString(field(2))
	if err != nil || !amount.IsPositive() {
		return nil, nil, corrupt("invalid amount %q", field(2))
	}
	senderBalance, err := parseMoney(field(6))
	if err != nil {
		return nil, nil, corrupt("sender balance: %v", err)
	}
	receiverBalance, err := parseMoney(field(7))
	if err != nil {
		return nil, nil, corrupt("receiver balance: %v", err)
	}

	r := &row{
		id:              id,
		timestamp:       ts,
		amount:          amount,
		description:     strings.TrimSpace(fields[3]),
		senderBalance:   senderBalance,
		receiverBalance: receiverBalance,
		senderType:      domain.TransactionTypeTransfer,
		receiverType:    domain.TransactionTypeDeposit,
	}
	if !isNull(field(4)) {
		r.sender = field(4)
	}
	if !isNull(field(5)) {
		r.receiver = field(5)
	}

	var warnings []string
	if raw := field(8); !isNull(raw) {
		if t := domain.TransactionType(raw); t.Valid() && t.IsDebit() {
			r.senderType = t
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid sender type %q, using %s", raw, r.senderType))
		}
	}
	if raw := field(9); !isNull(raw) {
		if t := domain.TransactionType(raw); t.Valid() && !t.IsDebit() {
			r.receiverType = t
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid receiver type %q, using %s", raw, r.receiverType))
		}
	}
	return r, warnings, nil
}

// splitDescriptions derives both sides of a person-to-person row from the one stored
// description, keeping the message.
func splitDescriptions(r *row, senderName, receiverName string) (string, string) {
	if _, message, ok := domain.ParseSentDescription(r.description); ok {
		return r.description, domain.ReceivedDescription(senderName, message)
	}
	if _, message, ok := domain.ParseReceivedDescription(r.description); ok {
		return domain.SentDescription(receiverName, message), r.description
	}
	return domain.SentDescription(receiverName, ""), domain.ReceivedDescription(senderName, "")
}

func displayName(u *domain.User, username string) string {
	if u != nil {
		return u.Name()
	}
	return username
}

func parseMoney(s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	return value, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCorruptRecord, fmt.Sprintf(format, args...))
}
