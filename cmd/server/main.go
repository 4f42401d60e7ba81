package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/greenday-ledger/internal/adapter/credential"
	grpcadapter "github.com/simaogato/greenday-ledger/internal/adapter/grpc"
	"github.com/simaogato/greenday-ledger/internal/adapter/iban"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/memory"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/record"
	"github.com/simaogato/greenday-ledger/internal/config"
	"github.com/simaogato/greenday-ledger/internal/logging"
	"github.com/simaogato/greenday-ledger/internal/metrics/prometheus"
	"github.com/simaogato/greenday-ledger/internal/usecase/fraud"
	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
)

const metricsNamespace = "ledger"

func main() {
	logger, err := logging.NewLoggerFromEnv()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// 1. Metrics
	collector := prometheus.NewPrometheusCollector(metricsNamespace)
	if err := collector.Register(prom.DefaultRegisterer); err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	// 2. Persistence
	identifiers := iban.NewRandomGenerator()
	codec := record.NewCodec(credential.AffineCodec{}, identifiers, logger.Named("record"), collector)

	ctx := context.Background()
	store, closeStore, err := repository.OpenStore(ctx, cfg, codec, logger)
	if err != nil {
		logger.Fatal("failed to open ledger store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	// 3. Ledger service
	service := ledger.NewService(ledger.Dependencies{
		UserRepo:    memory.NewUserRepository(),
		Store:       store,
		Identifiers: identifiers,
		Monitor:     fraud.DefaultMonitor(),
		Logger:      logger.Named("ledger"),
		Metrics:     collector,
	})
	if _, err := service.Load(ctx); err != nil {
		logger.Fatal("failed to load ledger", zap.Error(err))
	}

	// 4. Metrics endpoint
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	// 5. gRPC server
	sessions := grpcadapter.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.AuthInterceptor(cfg.AdminToken, sessions)),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(service, sessions))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(logger, grpcServer, metricsServer, service)
}

// waitForShutdown waits for SIGTERM or SIGINT, stops the servers and writes a final snapshot
func waitForShutdown(logger *zap.Logger, grpcServer *grpclib.Server, metricsServer *http.Server, service *ledger.Service) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(ctx)
	}
	if err := service.Save(ctx); err != nil {
		logger.Error("final save failed", zap.Error(err))
	}
}
