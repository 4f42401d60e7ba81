package main

import (
	"context"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/simaogato/greenday-ledger/internal/adapter/credential"
	"github.com/simaogato/greenday-ledger/internal/adapter/iban"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/memory"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/record"
	"github.com/simaogato/greenday-ledger/internal/config"
	"github.com/simaogato/greenday-ledger/internal/logging"
	"github.com/simaogato/greenday-ledger/internal/usecase/fraud"
	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
)

// displayCurrency is used only for formatting; the ledger itself is single-currency.
const displayCurrency = money.EUR

// openLedger loads the configured store into a fresh service. The close func is only
// set when err is nil.
func openLedger(ctx context.Context) (*ledger.Service, func(), error) {
	logger, err := logging.NewLoggerFromEnv()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	identifiers := iban.NewRandomGenerator()
	codec := record.NewCodec(credential.AffineCodec{}, identifiers, logger.Named("record"), nil)
	store, closeStore, err := repository.OpenStore(ctx, cfg, codec, logger)
	if err != nil {
		return nil, nil, err
	}

	service := ledger.NewService(ledger.Dependencies{
		UserRepo:    memory.NewUserRepository(),
		Store:       store,
		Identifiers: identifiers,
		Monitor:     fraud.DefaultMonitor(),
		Logger:      logger.Named("ledger"),
	})
	if _, err := service.Load(ctx); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return service, func() {
		closeStore()
		_ = logger.Sync()
	}, nil
}

// display formats a two-decimal amount in the display currency.
func display(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2).IntPart()
	return money.New(cents, displayCurrency).Display()
}
