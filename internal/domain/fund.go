package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fund is a named investment bucket with a fixed daily growth rate.
type Fund string

const (
	FundLowRisk    Fund = "LOW_RISK"
	FundMediumRisk Fund = "MEDIUM_RISK"
	FundHighRisk   Fund = "HIGH_RISK"
)

// fundRates is immutable after init.
var fundRates = map[Fund]decimal.Decimal{
	FundLowRisk:    decimal.RequireFromString("0.02"),
	FundMediumRisk: decimal.RequireFromString("0.05"),
	FundHighRisk:   decimal.RequireFromString("0.10"),
}

// Funds lists every fund in ascending risk order.
func Funds() []Fund {
	return []Fund{FundLowRisk, FundMediumRisk, FundHighRisk}
}

// Rate returns the daily growth rate of the fund, zero for an unknown fund.
func (f Fund) Rate() decimal.Decimal {
	return fundRates[f]
}

// Valid reports whether f is one of the known funds.
func (f Fund) Valid() bool {
	_, ok := fundRates[f]
	return ok
}

// ParseFund resolves a fund name case-insensitively.
func ParseFund(name string) (Fund, error) {
	f := Fund(strings.ToUpper(strings.TrimSpace(name)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFund, name)
	}
	return f, nil
}
