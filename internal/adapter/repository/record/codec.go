// Package record converts the ledger to and from its flat positional record format.
//
// User record:
//
//	username, encoded credential, first name, last name, cash, savings, investment,
//	last login | null, fraud warning, frozen, identifier, fund holdings
//
// Transaction record (one per id, both sides of a transfer share a row):
//
//	id, timestamp, amount, description, sender | null, receiver | null,
//	sender balance, receiver balance, sender type | null, receiver type | null
//
// Only the first 7 user fields and 8 transaction fields are required.
package record

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/metrics"
	"go.uber.org/zap"
)

const (
	// TimeLayout is the timestamp layout of every persisted time, always UTC.
	TimeLayout = "2006-01-02 15:04:05"
	// Null marks an absent value.
	Null = "null"

	UserFieldCount           = 12
	MinUserFields            = 7
	TransactionFieldCount    = 10
	MinTransactionFields     = 8
	holdingSeparator         = ";"
	holdingKeyValueSeparator = ":"
)

var fieldCleaner = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

// Codec encodes users and their histories into record fields and assembles them back.
type Codec struct {
	Credentials domain.CredentialCodec
	Identifiers domain.IdentifierService

	logger  *zap.Logger
	metrics metrics.Collector
}

// NewCodec creates a new Codec instance. Identifiers may be nil, in which case users
// persisted without an identifier are loaded without one.
func NewCodec(credentials domain.CredentialCodec, identifiers domain.IdentifierService, logger *zap.Logger, collector metrics.Collector) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{
		Credentials: credentials,
		Identifiers: identifiers,
		logger:      logger,
		metrics:     metrics.OrNoOp(collector),
	}
}

// UserFields encodes one user record.
func (c *Codec) UserFields(u *domain.User) []string {
	lastLogin := Null
	if u.LastLogin != nil {
		lastLogin = FormatTime(*u.LastLogin)
	}
	return []string{
		clean(u.Username),
		clean(c.Credentials.Encode(u.Credential)),
		clean(u.FirstName),
		clean(u.LastName),
		u.Cash().String(),
		u.Savings().Balance().String(),
		u.Investment().Balance().String(),
		lastLogin,
		fmt.Sprint(u.FraudWarning),
		fmt.Sprint(u.Frozen),
		clean(u.Identifier),
		formatHoldings(u.Investment()),
	}
}

// row is the merged view of every side sharing one transaction id.
type row struct {
	id              uuid.UUID
	timestamp       time.Time
	amount          decimal.Decimal
	description     string
	sender          string
	receiver        string
	senderBalance   decimal.Decimal
	receiverBalance decimal.Decimal
	senderType      domain.TransactionType
	receiverType    domain.TransactionType
}

// TransactionFields groups every user's history by transaction id and encodes one
// record per id. Records are ordered so that every user's history reads back in its
// original order; ties go to first appearance. Debit types fill the sender side, the
// rest the receiver side. The sender description is kept when both sides exist.
func (c *Codec) TransactionFields(users []*domain.User) [][]string {
	ordered := make([]*domain.User, len(users))
	copy(ordered, users)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Key() < ordered[j].Key() })

	rows := make(map[uuid.UUID]*row)
	var ids []uuid.UUID
	next := make(map[uuid.UUID][]uuid.UUID)
	waiting := make(map[uuid.UUID]int)
	for _, u := range ordered {
		var prev uuid.UUID
		for i, tx := range u.History() {
			if i > 0 && prev != tx.ID {
				next[prev] = append(next[prev], tx.ID)
				waiting[tx.ID]++
			}
			prev = tx.ID

			r, ok := rows[tx.ID]
			if !ok {
				r = &row{id: tx.ID}
				rows[tx.ID] = r
				ids = append(ids, tx.ID)
			}
			r.timestamp = tx.Timestamp
			r.amount = tx.Amount
			if tx.Type.IsDebit() {
				r.sender = u.Username
				r.senderBalance = tx.BalanceAfter
				r.senderType = tx.Type
				r.description = tx.Description
			} else {
				r.receiver = u.Username
				r.receiverBalance = tx.BalanceAfter
				r.receiverType = tx.Type
				if r.sender == "" {
					r.description = tx.Description
				}
			}
		}
	}

	out := make([][]string, 0, len(ids))
	for _, id := range historyOrder(ids, next, waiting) {
		r := rows[id]
		out = append(out, []string{
			r.id.String(),
			FormatTime(r.timestamp),
			r.amount.String(),
			clean(r.description),
			orNull(r.sender),
			orNull(r.receiver),
			r.senderBalance.String(),
			r.receiverBalance.String(),
			orNull(string(r.senderType)),
			orNull(string(r.receiverType)),
		})
	}
	return out
}

// historyOrder sorts ids topologically over the per-user successor edges, picking the
// earliest first appearance among the ready ids. Ids caught in a cycle, which only
// inconsistent histories produce, follow in first-appearance order.
func historyOrder(ids []uuid.UUID, next map[uuid.UUID][]uuid.UUID, waiting map[uuid.UUID]int) []uuid.UUID {
	position := make(map[uuid.UUID]int, len(ids))
	ready := &positions{}
	for i, id := range ids {
		position[id] = i
		if waiting[id] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]uuid.UUID, 0, len(ids))
	emitted := make([]bool, len(ids))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		emitted[i] = true
		out = append(out, ids[i])
		for _, succ := range next[ids[i]] {
			waiting[succ]--
			if waiting[succ] == 0 {
				heap.Push(ready, position[succ])
			}
		}
	}
	for i, id := range ids {
		if !emitted[i] {
			out = append(out, id)
		}
	}
	return out
}

// positions is a min-heap of first-appearance indexes.
type positions []int

func (p positions) Len() int           { return len(p) }
func (p positions) Less(i, j int) bool { return p[i] < p[j] }
func (p positions) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p *positions) Push(x any)        { *p = append(*p, x.(int)) }
func (p *positions) Pop() any {
	old := *p
	x := old[len(old)-1]
	*p = old[:len(old)-1]
	return x
}

// FormatTime renders t in TimeLayout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout timestamp as UTC.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, strings.TrimSpace(s))
}

func formatHoldings(inv *domain.InvestmentAccount) string {
	parts := make([]string, 0, 3)
	for _, fund := range inv.FundsEverInvested() {
		parts = append(parts, string(fund)+holdingKeyValueSeparator+inv.FundBalance(fund).String())
	}
	return strings.Join(parts, holdingSeparator)
}

func parseHoldings(s string) (map[domain.Fund]decimal.Decimal, error) {
	out := make(map[domain.Fund]decimal.Decimal)
	s = strings.TrimSpace(s)
	if s == "" || s == Null {
		return out, nil
	}
	for _, part := range strings.Split(s, holdingSeparator) {
		name, value, found := strings.Cut(part, holdingKeyValueSeparator)
		if !found {
			return nil, fmt.Errorf("holding %q has no value", part)
		}
		fund, err := domain.ParseFund(name)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("holding %q: %w", part, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("holding %q is negative", part)
		}
		out[fund] = amount
	}
	return out, nil
}

func clean(s string) string {
	return fieldCleaner.Replace(s)
}

func orNull(s string) string {
	if s == "" {
		return Null
	}
	return s
}

func isNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == Null
}
