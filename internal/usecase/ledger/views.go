package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
)

// Profile is a detached copy of a user's identity and flags.
type Profile struct {
	Username     string
	FirstName    string
	LastName     string
	Name         string
	Identifier   string
	LastLogin    *time.Time
	FraudWarning bool
}

func newProfile(u *domain.User) *Profile {
	p := &Profile{
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Name:         u.Name(),
		Identifier:   u.Identifier,
		FraudWarning: u.FraudWarning,
	}
	if u.LastLogin != nil {
		last := *u.LastLogin
		p.LastLogin = &last
	}
	return p
}

// FundHolding is the balance held in one ever-invested fund.
type FundHolding struct {
	Fund    domain.Fund
	Balance decimal.Decimal
}

// BalanceView is a detached copy of every balance a user holds.
type BalanceView struct {
	Identifier   string
	Cash         decimal.Decimal
	Savings      decimal.Decimal
	Uninvested   decimal.Decimal
	Funds        []FundHolding // Ever-invested funds in risk order, zero balances included
	FraudWarning bool
}

// InvestmentTotal is the un-invested balance plus every fund.
func (b *BalanceView) InvestmentTotal() decimal.Decimal {
	total := b.Uninvested
	for _, h := range b.Funds {
		total = total.Add(h.Balance)
	}
	return total
}

func newBalanceView(u *domain.User) *BalanceView {
	investment := u.Investment()
	view := &BalanceView{
		Identifier:   u.Identifier,
		Cash:         u.Cash(),
		Savings:      u.Savings().Balance(),
		Uninvested:   investment.Balance(),
		FraudWarning: u.FraudWarning,
	}
	for _, fund := range investment.FundsEverInvested() {
		view.Funds = append(view.Funds, FundHolding{Fund: fund, Balance: investment.FundBalance(fund)})
	}
	return view
}

// Receipt describes a committed person-to-person transfer.
type Receipt struct {
	TransactionID     uuid.UUID
	RecipientUsername string
	RecipientName     string
	Amount            decimal.Decimal
	CashAfter         decimal.Decimal
	FraudWarning      bool
}

// Recipient is a user the caller has previously sent money to.
type Recipient struct {
	Username   string
	Name       string
	Identifier string
}

// AccountSummary is one row of the administrative account listing.
type AccountSummary struct {
	Profile      Profile
	Balance      BalanceView
	Frozen       bool
	Transactions int
}
