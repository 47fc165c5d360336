package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/referral-investments/pkg/commission"
	"github.com/chris/referral-investments/pkg/config"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/logging"
	"github.com/chris/referral-investments/pkg/metrics"
	dydbstore "github.com/chris/referral-investments/pkg/storage/dynamodb"
	"go.uber.org/zap"
)

var (
	engine    *commission.Engine
	batchSize int32
	logger    *zap.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err = logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	_, schedule, err := cfg.Domain()
	if err != nil {
		logger.Fatal("invalid commission schedule", zap.Error(err))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("unable to load SDK config", zap.Error(err))
	}

	store := dydbstore.New(awsdynamodb.NewFromConfig(awsCfg), dydbstore.Tables{
		Wallets:     cfg.Tables.Wallets,
		Ledger:      cfg.Tables.Ledger,
		Investments: cfg.Tables.Investments,
		Commissions: cfg.Tables.Commissions,
		Accounts:    cfg.Tables.Accounts,
		Approvals:   cfg.Tables.Approvals,
	})

	// Retrying a recorded credit only needs its recipient, never the hierarchy.
	engine = commission.NewEngine(store, store, hierarchy.NewStore(), store, schedule, logger.Named("commission"))
	engine.StaleAfter = cfg.ReconcileStaleAfter
	batchSize = cfg.ReconcileBatchSize
}

// HandleRequest is triggered by an EventBridge Schedule. It retries a batch of
// FAILED and stale PENDING commission credits.
func HandleRequest(ctx context.Context) (commission.ReconcileResult, error) {
	logger.Info("starting commission reconciliation", zap.Int32("batch_size", batchSize))

	result, err := engine.Reconcile(ctx, batchSize)
	metrics.RecordJob("commission_reconcile", err == nil)
	if err != nil {
		logger.Error("commission reconciliation failed", zap.Error(err))
		return result, err
	}

	logger.Info("commission reconciliation finished",
		zap.Int("attempted", result.Attempted),
		zap.Int("paid", result.Paid),
		zap.Int("failed", result.Failed),
		zap.Int("voided", result.Voided))
	return result, nil
}

func main() {
	defer logger.Sync() //nolint:errcheck
	lambda.Start(HandleRequest)
}
