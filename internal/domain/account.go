package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind discriminates the two account variants a user owns.
type AccountKind string

const (
	AccountKindSavings    AccountKind = "SAVINGS"
	AccountKindInvestment AccountKind = "INVESTMENT"
)

// SavingsDailyRate is the fixed daily interest applied to savings balances.
var SavingsDailyRate = decimal.RequireFromString("0.01")

// Account is a balance-holding entity. The balance never goes negative.
type Account interface {
	Kind() AccountKind
	Balance() decimal.Decimal
	// Deposit adds amount to the balance. The caller guarantees amount > 0.
	Deposit(amount decimal.Decimal)
	// Withdraw removes amount, failing with ErrInsufficientFunds when amount exceeds the balance.
	Withdraw(amount decimal.Decimal) error
	// ApplyGains runs one day of growth.
	ApplyGains()
}

// RoundMoney rounds to cents, half-up for non-negative values.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// balance is the shared non-negative balance of both account variants.
type balance struct {
	value decimal.Decimal
}

func (b *balance) Balance() decimal.Decimal { return b.value }

func (b *balance) Deposit(amount decimal.Decimal) {
	b.value = b.value.Add(amount)
}

func (b *balance) Withdraw(amount decimal.Decimal) error {
	if amount.GreaterThan(b.value) {
		return ErrInsufficientFunds
	}
	b.value = b.value.Sub(amount)
	return nil
}

// SavingsAccount accrues SavingsDailyRate once per simulated day.
type SavingsAccount struct {
	balance
}

// NewSavingsAccount creates an empty savings account.
func NewSavingsAccount() *SavingsAccount {
	return &SavingsAccount{}
}

func (a *SavingsAccount) Kind() AccountKind { return AccountKindSavings }

// ApplyGains compounds on the previously rounded balance, so drift accumulates day by day.
func (a *SavingsAccount) ApplyGains() {
	a.value = RoundMoney(a.value.Mul(decimal.NewFromInt(1).Add(SavingsDailyRate)))
}

// Restore sets the balance directly. Only used when rebuilding persisted state.
func (a *SavingsAccount) Restore(value decimal.Decimal) {
	a.value = value
}

// InvestmentAccount holds an un-invested balance plus per-fund sub-balances.
type InvestmentAccount struct {
	balance
	funds        map[Fund]decimal.Decimal
	everInvested map[Fund]struct{}
}

// NewInvestmentAccount creates an empty investment account.
func NewInvestmentAccount() *InvestmentAccount {
	return &InvestmentAccount{
		funds:        make(map[Fund]decimal.Decimal),
		everInvested: make(map[Fund]struct{}),
	}
}

func (a *InvestmentAccount) Kind() AccountKind { return AccountKindInvestment }

// FundBalance returns the sub-balance held in fund.
func (a *InvestmentAccount) FundBalance(fund Fund) decimal.Decimal {
	return a.funds[fund]
}

// TotalFundInvestments sums every fund sub-balance.
func (a *InvestmentAccount) TotalFundInvestments() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range a.funds {
		total = total.Add(amount)
	}
	return total
}

// TotalValue is the un-invested balance plus all fund holdings.
func (a *InvestmentAccount) TotalValue() decimal.Decimal {
	return a.value.Add(a.TotalFundInvestments())
}

// FundsEverInvested returns every fund that has ever received money, in risk order.
// Entries are never removed, even when the fund is emptied.
func (a *InvestmentAccount) FundsEverInvested() []Fund {
	out := make([]Fund, 0, len(a.everInvested))
	for _, f := range Funds() {
		if _, ok := a.everInvested[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// InvestInFund moves amount from the un-invested balance into fund.
func (a *InvestmentAccount) InvestInFund(fund Fund, amount decimal.Decimal) error {
	if !fund.Valid() {
		return ErrUnknownFund
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if err := a.Withdraw(amount); err != nil {
		return err
	}
	a.funds[fund] = a.funds[fund].Add(amount)
	a.everInvested[fund] = struct{}{}
	return nil
}

// WithdrawAllFunds liquidates every fund into the un-invested balance.
// The ever-invested set is left untouched.
func (a *InvestmentAccount) WithdrawAllFunds() decimal.Decimal {
	total := a.TotalFundInvestments()
	a.value = a.value.Add(total)
	for fund := range a.funds {
		a.funds[fund] = decimal.Zero
	}
	return total
}

// ApplyGains grows each non-empty fund independently; rounding is per fund, not pooled.
func (a *InvestmentAccount) ApplyGains() {
	one := decimal.NewFromInt(1)
	for fund, current := range a.funds {
		if current.IsZero() {
			continue
		}
		a.funds[fund] = RoundMoney(current.Mul(one.Add(fund.Rate())))
	}
}

// Restore sets the un-invested balance directly. Only used when rebuilding persisted state.
func (a *InvestmentAccount) Restore(value decimal.Decimal) {
	a.value = value
}

// RestoreFund sets a fund sub-balance directly and marks the fund as ever invested.
func (a *InvestmentAccount) RestoreFund(fund Fund, value decimal.Decimal) {
	a.funds[fund] = value
	a.everInvested[fund] = struct{}{}
}

// FundHoldings returns a copy of the fund sub-balances for every ever-invested fund.
func (a *InvestmentAccount) FundHoldings() map[Fund]decimal.Decimal {
	out := make(map[Fund]decimal.Decimal, len(a.everInvested))
	for fund := range a.everInvested {
		out[fund] = a.funds[fund]
	}
	return out
}
