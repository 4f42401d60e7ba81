// Package fraud detects suspicious transfer patterns.
package fraud

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/greenday-ledger/internal/domain"
)

// Default detection parameters.
var (
	DefaultThreshold = decimal.RequireFromString("10000.00")
	DefaultWindow    = 24 * time.Hour
	DefaultCount     = 3
)

// Monitor classifies single transactions and decides when repeated large debits freeze an account.
// It never mutates users; the transfer coordinator applies the resulting flags.
type Monitor struct {
	// Threshold is exclusive: an amount equal to it is not suspicious.
	Threshold decimal.Decimal
	Window    time.Duration
	Count     int
}

// DefaultMonitor returns a monitor carrying the default parameters.
func DefaultMonitor() *Monitor {
	return &Monitor{
		Threshold: DefaultThreshold,
		Window:    DefaultWindow,
		Count:     DefaultCount,
	}
}

// IsSuspicious reports whether a single transaction amount exceeds the threshold.
func (m *Monitor) IsSuspicious(tx domain.Transaction) bool {
	return tx.Amount.GreaterThan(m.Threshold)
}

// ShouldFreezeAccount counts suspicious TRANSFER and WITHDRAW entries younger than the
// window at now. Only recorded history is inspected.
func (m *Monitor) ShouldFreezeAccount(user *domain.User, now time.Time) bool {
	count := 0
	for _, tx := range user.History() {
		if tx.Type != domain.TransactionTypeTransfer && tx.Type != domain.TransactionTypeWithdraw {
			continue
		}
		if !m.IsSuspicious(tx) {
			continue
		}
		if now.Sub(tx.Timestamp) >= m.Window {
			continue
		}
		count++
	}
	return count >= m.Count
}
