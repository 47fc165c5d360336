package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/referral-investments/pkg/commission"
	"github.com/chris/referral-investments/pkg/config"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/investment"
	"github.com/chris/referral-investments/pkg/logging"
	"github.com/chris/referral-investments/pkg/metrics"
	"github.com/chris/referral-investments/pkg/notify"
	dydbstore "github.com/chris/referral-investments/pkg/storage/dynamodb"
	"go.uber.org/zap"
)

var (
	ledger *investment.Ledger
	logger *zap.Logger
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

	catalog, schedule, err := cfg.Domain()
	if err != nil {
		logger.Fatal("invalid domain configuration", zap.Error(err))
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

	// Maturing never distributes commissions or touches hierarchy aggregates.
	tree := hierarchy.NewStore()
	engine := commission.NewEngine(store, store, tree, store, schedule, logger.Named("commission"))
	ledger = investment.NewLedger(store, store, catalog, investment.NewBandPolicy(cfg.ReturnSeed), engine, tree, logger.Named("investment"))

	if cfg.SQSQueueURL != "" {
		ledger.Notifier = notify.NewSQSDispatcher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
	}
}

// HandleRequest is triggered by an EventBridge Schedule. It matures every
// investment whose lock-in has elapsed.
func HandleRequest(ctx context.Context) (int, error) {
	logger.Info("starting maturity sweep")

	matured, err := ledger.SweepMatured(ctx)
	metrics.RecordJob("maturity_sweep", err == nil)
	if err != nil {
		logger.Error("maturity sweep failed", zap.Error(err))
		return 0, err
	}

	logger.Info("maturity sweep finished", zap.Int("matured", matured))
	return matured, nil
}

func main() {
	defer logger.Sync() //nolint:errcheck
	lambda.Start(HandleRequest)
}
