package main

import (
	"bytes"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
)

func TestDisplay(t *testing.T) {
	assert.Equal(t, money.New(123450, displayCurrency).Display(), display(decimal.RequireFromString("1234.5")))
	assert.Equal(t, money.New(1, displayCurrency).Display(), display(decimal.RequireFromString("0.005")))
	assert.Equal(t, money.New(0, displayCurrency).Display(), display(decimal.Zero))
}

func TestWriteAccounts(t *testing.T) {
	accounts := []ledger.AccountSummary{
		{
			Profile: ledger.Profile{Username: "alice", Name: "Alice Smith", Identifier: "EE1177000001"},
			Balance: ledger.BalanceView{
				Cash:       decimal.RequireFromString("9000"),
				Savings:    decimal.RequireFromString("500"),
				Uninvested: decimal.RequireFromString("100"),
				Funds: []ledger.FundHolding{
					{Fund: domain.FundLowRisk, Balance: decimal.RequireFromString("400")},
				},
			},
			Transactions: 3,
		},
		{
			Profile: ledger.Profile{Username: "bob", Name: "Bob", FraudWarning: true},
			Frozen:  true,
		},
	}

	var all bytes.Buffer
	writeAccounts(&all, accounts, false)
	assert.Contains(t, all.String(), "alice")
	assert.Contains(t, all.String(), display(decimal.RequireFromString("500")))
	assert.Contains(t, all.String(), "frozen")

	var frozen bytes.Buffer
	writeAccounts(&frozen, accounts, true)
	assert.NotContains(t, frozen.String(), "alice")
	assert.Contains(t, frozen.String(), "bob")
}
