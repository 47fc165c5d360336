// Package dynamodb implements the storage interfaces and the wallet ledger on
// AWS DynamoDB.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/chris/referral-investments/pkg/wallet"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables names the DynamoDB tables used by the Store.
type Tables struct {
	Wallets     string
	Ledger      string
	Investments string
	Commissions string
	Accounts    string
	Approvals   string
}

// Store implements the Storage interface and the wallet ledger using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables

	// MaxAttempts bounds optimistic-lock retries on wallet writes.
	MaxAttempts int
	Now         func() time.Time
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client:      client,
		Tables:      tables,
		MaxAttempts: 5,
		Now:         time.Now,
	}
}

// Make sure we conform to the interfaces
var (
	_ storage.Storage    = (*Store)(nil)
	_ wallet.Ledger      = (*Store)(nil)
	_ wallet.EntryReader = (*Store)(nil)
	_ wallet.Freezer     = (*Store)(nil)
)

const conditionalCheckFailed = "ConditionalCheckFailed"

func isConditionFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

// cancelledAt reports whether the transact item at index i failed its condition.
func cancelledAt(err error, i int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || len(tce.CancellationReasons) <= i {
		return false
	}
	code := tce.CancellationReasons[i].Code
	return code != nil && *code == conditionalCheckFailed
}
