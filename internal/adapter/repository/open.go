// Package repository selects the persistence backend configured for the ledger binaries.
package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/simaogato/greenday-ledger/internal/adapter/repository/csvfile"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/postgres"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/record"
	"github.com/simaogato/greenday-ledger/internal/config"
	"github.com/simaogato/greenday-ledger/internal/domain"
)

// OpenStore opens the store named by cfg.Store. The returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, codec *record.Codec, logger *zap.Logger) (domain.LedgerStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.NewDB(ctx, cfg.DBConnStr)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewLedgerStore(db, codec, logger.Named("postgres")), func() { db.Close() }, nil
	default:
		return csvfile.NewStore(cfg.DataDir, codec, logger.Named("csvfile")), func() {}, nil
	}
}
