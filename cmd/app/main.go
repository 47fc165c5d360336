package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/config"
	"github.com/chris/referral-investments/pkg/handlers"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/investment"
	"github.com/chris/referral-investments/pkg/logging"
	"github.com/chris/referral-investments/pkg/metrics"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/notify"
	"github.com/chris/referral-investments/pkg/platform"
	"github.com/chris/referral-investments/pkg/storage"
	dydbstore "github.com/chris/referral-investments/pkg/storage/dynamodb"
	memstore "github.com/chris/referral-investments/pkg/storage/memory"
	"github.com/chris/referral-investments/pkg/wallet"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, schedule, err := cfg.Domain()
	if err != nil {
		return err
	}
	rates, err := cfg.Exchange()
	if err != nil {
		return err
	}

	// Backends
	var (
		store      storage.Storage
		wallets    platform.Wallets
		dispatcher notify.Dispatcher = notify.NoOp{}
	)
	switch cfg.Backend {
	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("unable to load SDK config: %w", err)
		}
		dynamo := dydbstore.New(awsdynamodb.NewFromConfig(awsCfg), dydbstore.Tables{
			Wallets:     cfg.Tables.Wallets,
			Ledger:      cfg.Tables.Ledger,
			Investments: cfg.Tables.Investments,
			Commissions: cfg.Tables.Commissions,
			Accounts:    cfg.Tables.Accounts,
			Approvals:   cfg.Tables.Approvals,
		})
		store, wallets = dynamo, dynamo

		if cfg.SQSQueueURL != "" {
			dispatcher = notify.NewSQSDispatcher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
		}
	default:
		store, wallets = memstore.New(), wallet.NewMemory()
	}
	async := notify.NewAsync(dispatcher, cfg.NotifyTimeout, logger.Named("notify"))

	svc := platform.New(hierarchy.NewStore(), wallets, store, platform.Options{
		Catalog:  catalog,
		Policy:   investment.NewBandPolicy(cfg.ReturnSeed),
		Schedule: schedule,
		Notifier:   async,
		Logger:     logger,
		StaleAfter: cfg.ReconcileStaleAfter,
	})

	// A first start on empty storage bootstraps the root account.
	found, err := svc.Restore(ctx)
	if err != nil {
		return err
	}
	if !found {
		root, err := svc.CreateRoot(ctx)
		if err != nil {
			return fmt.Errorf("failed to create root account: %w", err)
		}
		logger.Info("bootstrap root ready", zap.String("account_id", root.Id), zap.String("referral_code", root.ReferralCode))
	}

	// Router
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger.Named("ratelimit"))

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger.Named("http")))
	router.Use(metrics.InstrumentHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	api.HandlerWithOptions(handlers.NewApiHandler(svc, rates), api.ChiServerOptions{
		BaseRouter:    router,
		Public:        []api.MiddlewareFunc{limiter.Handler},
		Authenticated: []api.MiddlewareFunc{middleware.RequireAccount, limiter.Handler},
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Jobs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.MaturitySweepCron, func() {
		matured, err := svc.SweepMatured(ctx)
		metrics.RecordJob("maturity_sweep", err == nil)
		if err != nil {
			logger.Error("maturity sweep failed", zap.Error(err))
			return
		}
		logger.Info("maturity sweep finished", zap.Int("matured", matured))
	}); err != nil {
		return fmt.Errorf("invalid maturity sweep schedule: %w", err)
	}
	if _, err := scheduler.AddFunc(cfg.ReconcileCron, func() {
		result, err := svc.Reconcile(ctx, cfg.ReconcileBatchSize)
		metrics.RecordJob("commission_reconcile", err == nil)
		if err != nil {
			logger.Error("commission reconciliation failed", zap.Error(err))
			return
		}
		logger.Info("commission reconciliation finished",
			zap.Int("attempted", result.Attempted),
			zap.Int("paid", result.Paid),
			zap.Int("failed", result.Failed),
			zap.Int("voided", result.Voided))
	}); err != nil {
		return fmt.Errorf("invalid reconcile schedule: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("backend", cfg.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	async.Wait()
	return err
}
