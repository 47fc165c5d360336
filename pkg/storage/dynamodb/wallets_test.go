package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Wallets:     "wallets",
	Ledger:      "ledger",
	Investments: "investments",
	Commissions: "commissions",
	Accounts:    "accounts",
	Approvals:   "approvals",
}

func newTestStore(client DynamoDBAPI) *Store {
	s := New(client, testTables)
	s.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func onTable(table string) interface{} {
	return mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return aws.ToString(in.TableName) == table
	})
}

func walletItem(t *testing.T, available, locked int64, frozen bool) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(walletRecord{
		AccountID: "user-a",
		Available: Amount{decimal.NewFromInt(available)},
		Locked:    Amount{decimal.NewFromInt(locked)},
		Frozen:    frozen,
		Version:   7,
	})
	require.NoError(t, err)
	return av
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, code := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func TestOpen(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		err := newTestStore(mockClient).Open(context.Background(), "user-a")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		err := newTestStore(mockClient).Open(context.Background(), "user-a")

		assert.ErrorIs(t, err, models.ErrAlreadyExists)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		err := newTestStore(mockClient).Open(context.Background(), "user-a")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create wallet in DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, false)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			update := in.TransactItems[0].Update
			available := update.ExpressionAttributeValues[":available"].(*types.AttributeValueMemberN)
			earnings := update.ExpressionAttributeValues[":earnings"].(*types.AttributeValueMemberN)
			version := update.ExpressionAttributeValues[":version"].(*types.AttributeValueMemberN)
			return available.Value == "600" && earnings.Value == "500" && version.Value == "7" &&
				aws.ToString(in.TransactItems[1].Put.TableName) == "ledger"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Applied", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{"entry_id": &types.AttributeValueMemberS{Value: "x"}},
		}, nil).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Version Conflict Retried", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, false)}, nil).Twice()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled("ConditionalCheckFailed", "None")).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Concurrent Duplicate Is A No-op", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, false)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled("None", "ConditionalCheckFailed")).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Retries Exhausted", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)
		store.MaxAttempts = 2
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, false)}, nil).Twice()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled("ConditionalCheckFailed", "None")).Twice()

		err := store.Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.ErrorIs(t, err, models.ErrVersionConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Frozen", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, true)}, nil).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.ErrorIs(t, err, models.ErrAccountFrozen)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unknown Wallet", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{}, nil).Once()

		err := newTestStore(mockClient).Credit(ctx, "user-a", amount, models.ReasonCommission, "credit-1")

		assert.ErrorIs(t, err, models.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)

		err := newTestStore(mockClient).Credit(ctx, "user-a", decimal.Zero, models.ReasonCommission, "credit-1")

		assert.ErrorIs(t, err, models.ErrInvalidAmount)
		mockClient.AssertExpectations(t)
	})
}

func TestDebitAndLock(t *testing.T) {
	ctx := context.Background()

	t.Run("Insufficient Balance", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 100, 0, false)}, nil).Once()

		err := newTestStore(mockClient).Debit(ctx, "user-a", decimal.NewFromInt(200), models.ReasonTransfer, "")

		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
		mockClient.AssertExpectations(t)
	})

	t.Run("Lock Moves Funds", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 1000, 0, false)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			values := in.TransactItems[0].Update.ExpressionAttributeValues
			return values[":available"].(*types.AttributeValueMemberN).Value == "600" &&
				values[":locked"].(*types.AttributeValueMemberN).Value == "400"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := newTestStore(mockClient).Lock(ctx, "user-a", decimal.NewFromInt(400), "inv-1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unlock More Than Locked", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, onTable("ledger")).Return(&dynamodb.GetItemOutput{}, nil).Once()
		mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 0, 100, false)}, nil).Once()

		err := newTestStore(mockClient).Unlock(ctx, "user-a", decimal.NewFromInt(101), "inv-1")

		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
		mockClient.AssertExpectations(t)
	})
}

func TestBalanceOf(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	mockClient.On("GetItem", mock.Anything, onTable("wallets")).Return(&dynamodb.GetItemOutput{Item: walletItem(t, 250, 750, false)}, nil)

	bal, err := newTestStore(mockClient).BalanceOf(context.Background(), "user-a")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(bal.Available))
	assert.True(t, decimal.NewFromInt(750).Equal(bal.Locked))
	mockClient.AssertExpectations(t)
}

func TestListEntries(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		entryAV, err := attributevalue.MarshalMap(newEntryRecord(models.LedgerEntry{
			EntryID:   "entry-1",
			AccountID: "user-a",
			Reason:    models.ReasonCommission,
			Credit:    decimal.RequireFromString("12.50"),
		}))
		require.NoError(t, err)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToString(in.IndexName) == ledgerByAccountGSI && aws.ToInt32(in.Limit) == 10
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{entryAV}}, nil)

		entries, err := newTestStore(mockClient).ListEntries(context.Background(), "user-a", 10)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "12.5", entries[0].Credit.String())
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		_, err := newTestStore(mockClient).ListEntries(context.Background(), "user-a", 0)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query for ledger entries")
		mockClient.AssertExpectations(t)
	})
}

func TestFreeze(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return in.ExpressionAttributeValues[":frozen"].(*types.AttributeValueMemberBOOL).Value
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		err := newTestStore(mockClient).Freeze(context.Background(), "user-a")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		err := newTestStore(mockClient).Unfreeze(context.Background(), "user-a")

		assert.ErrorIs(t, err, models.ErrNotFound)
		mockClient.AssertExpectations(t)
	})
}
