// Package accrual owns the simulated clock and applies daily gains.
package accrual

import (
	"context"
	"fmt"
	"time"

	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/metrics"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

// Engine holds the simulated current time and drives daily gain passes.
// It is not safe for concurrent use; the ledger service serialises access.
type Engine struct {
	UserRepo domain.UserRepository

	now     time.Time
	logger  *zap.Logger
	metrics metrics.Collector
}

// NewEngine creates an engine whose simulated clock starts at start.
func NewEngine(userRepo domain.UserRepository, start time.Time, logger *zap.Logger, collector metrics.Collector) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		UserRepo: userRepo,
		now:      start,
		logger:   logger,
		metrics:  metrics.OrNoOp(collector),
	}
}

// Now returns the simulated current time.
func (e *Engine) Now() time.Time {
	return e.now
}

// AdvanceTime moves the clock forward by days and runs one gain pass per day over
// every user. Passes are sequential so each day compounds on the previous rounding.
func (e *Engine) AdvanceTime(ctx context.Context, days int) error {
	if days < 1 {
		return fmt.Errorf("%w: days must be at least 1, got %d", domain.ErrInvalidAmount, days)
	}

	users := e.UserRepo.Snapshot(ctx)
	e.now = e.now.AddDate(0, 0, days)
	for i := 0; i < days; i++ {
		for _, user := range users {
			user.ApplyDailyGains()
		}
	}

	e.metrics.RecordAccrualDays(days)
	e.logger.Info("simulated time advanced",
		zap.Int("days", days),
		zap.Int("users", len(users)),
		zap.Time("now", e.now))
	return nil
}

// CatchUp applies the gains a user missed since their last login and returns the
// number of whole days processed. A user who never logged in gets none.
func (e *Engine) CatchUp(user *domain.User, now time.Time) int {
	if user.LastLogin == nil {
		return 0
	}

	days := DaysBetween(*user.LastLogin, now)
	for i := 0; i < days; i++ {
		user.ApplyDailyGains()
	}
	if days > 0 {
		e.metrics.RecordAccrualDays(days)
		e.logger.Info("applied missed gains",
			zap.String("username", user.Username),
			zap.Int("days", days))
	}
	return days
}

// DaysBetween counts whole elapsed days, truncating partial days.
// It returns 0 when either time is zero or to is not after from.
func DaysBetween(from, to time.Time) int {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / day)
}
