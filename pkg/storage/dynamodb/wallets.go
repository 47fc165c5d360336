package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/wallet"
	"github.com/shopspring/decimal"
)

const ledgerByAccountGSI = "account_id-timestamp-index"

func numberAV(d decimal.Decimal) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: d.String()}
}

func walletKey(accountID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"account_id": &types.AttributeValueMemberS{Value: accountID}}
}

// Open creates an empty wallet record for the account.
func (s *Store) Open(ctx context.Context, accountID string) error {
	now := s.Now().UTC()
	walletAV, err := attributevalue.MarshalMap(walletRecord{
		AccountID: accountID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Wallets),
		Item:                walletAV,
		ConditionExpression: aws.String("attribute_not_exists(account_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("wallet for account %s: %w", accountID, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create wallet in DynamoDB: %w", err)
	}
	return nil
}

func (s *Store) getWallet(ctx context.Context, accountID string) (*walletRecord, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Wallets),
		Key:            walletKey(accountID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("wallet for account %s: %w", accountID, models.ErrNotFound)
	}

	var record walletRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}
	return &record, nil
}

func (s *Store) entryExists(ctx context.Context, entryID string) (bool, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.Tables.Ledger),
		Key:                  map[string]types.AttributeValue{"entry_id": &types.AttributeValueMemberS{Value: entryID}},
		ProjectionExpression: aws.String("entry_id"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get ledger entry from DynamoDB: %w", err)
	}
	return result.Item != nil, nil
}

// mutate applies fn to a fresh copy of the wallet and writes the new balances
// together with the ledger entry in one transaction. The wallet update is
// guarded by its version; a lost race re-reads and retries.
func (s *Store) mutate(ctx context.Context, accountID string, amount decimal.Decimal, reason models.Reason, op, ref string, fn func(w *walletRecord) error) error {
	if err := wallet.ValidateAmount(amount); err != nil {
		return err
	}
	entryID := wallet.EntryID(accountID, reason, op, ref)

	// 1. Skip mutations that were already recorded.
	if ref != "" {
		applied, err := s.entryExists(ctx, entryID)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}

	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		// 2. Get the current state of the wallet for optimistic locking.
		current, err := s.getWallet(ctx, accountID)
		if err != nil {
			return err
		}
		if current.Frozen {
			return fmt.Errorf("wallet for account %s: %w", accountID, models.ErrAccountFrozen)
		}
		updated := *current
		if err := fn(&updated); err != nil {
			return err
		}

		// 3. Prepare the ledger entry.
		now := s.Now().UTC()
		entry := models.LedgerEntry{
			EntryID:     entryID,
			Reference:   ref,
			AccountID:   accountID,
			Reason:      reason,
			Description: fmt.Sprintf("%s %s", op, reason),
			Timestamp:   now,
		}
		if op == wallet.OpDebit || op == wallet.OpLock {
			entry.Debit = amount
		} else {
			entry.Credit = amount
		}
		entryAV, err := attributevalue.MarshalMap(newEntryRecord(entry))
		if err != nil {
			return fmt.Errorf("failed to marshal ledger entry: %w", err)
		}
		nowAV, err := attributevalue.Marshal(now)
		if err != nil {
			return fmt.Errorf("failed to marshal timestamp: %w", err)
		}

		// 4. Construct the TransactWriteItems input.
		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{
					// Operation 1: Update the wallet balances.
					Update: &types.Update{
						TableName:           aws.String(s.Tables.Wallets),
						Key:                 walletKey(accountID),
						UpdateExpression:    aws.String("SET available = :available, locked = :locked, earnings = :earnings, version = version + :inc, updated_at = :now"),
						ConditionExpression: aws.String("version = :version"),
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":available": numberAV(updated.Available.Decimal),
							":locked":    numberAV(updated.Locked.Decimal),
							":earnings":  numberAV(updated.Earnings.Decimal),
							":version":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current.Version)},
							":inc":       &types.AttributeValueMemberN{Value: "1"},
							":now":       nowAV,
						},
					},
				},
				{
					// Operation 2: Create the ledger entry.
					Put: &types.Put{
						TableName:           aws.String(s.Tables.Ledger),
						Item:                entryAV,
						ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
					},
				},
			},
		}

		// 5. Execute the transaction.
		_, err = s.Client.TransactWriteItems(ctx, input)
		switch {
		case err == nil:
			return nil
		case cancelledAt(err, 1):
			// A concurrent call with the same reference won.
			return nil
		case cancelledAt(err, 0):
			continue
		default:
			return fmt.Errorf("failed to execute wallet transaction: %w", err)
		}
	}
	return fmt.Errorf("wallet for account %s after %d attempts: %w", accountID, s.MaxAttempts, models.ErrVersionConflict)
}

// Credit adds amount to the available balance.
func (s *Store) Credit(ctx context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error {
	return s.mutate(ctx, accountID, amount, reason, wallet.OpCredit, ref, func(w *walletRecord) error {
		w.Available = Amount{w.Available.Add(amount)}
		if reason.Earning() {
			w.Earnings = Amount{w.Earnings.Add(amount)}
		}
		return nil
	})
}

// Debit removes amount from the available balance.
func (s *Store) Debit(ctx context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error {
	return s.mutate(ctx, accountID, amount, reason, wallet.OpDebit, ref, func(w *walletRecord) error {
		if w.Available.LessThan(amount) {
			return fmt.Errorf("debit %s from %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Available = Amount{w.Available.Sub(amount)}
		return nil
	})
}

// Lock moves amount from available to locked.
func (s *Store) Lock(ctx context.Context, accountID string, amount decimal.Decimal, ref string) error {
	return s.mutate(ctx, accountID, amount, models.ReasonLock, wallet.OpLock, ref, func(w *walletRecord) error {
		if w.Available.LessThan(amount) {
			return fmt.Errorf("lock %s on %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Available = Amount{w.Available.Sub(amount)}
		w.Locked = Amount{w.Locked.Add(amount)}
		return nil
	})
}

// Unlock moves amount from locked back to available.
func (s *Store) Unlock(ctx context.Context, accountID string, amount decimal.Decimal, ref string) error {
	return s.mutate(ctx, accountID, amount, models.ReasonUnlock, wallet.OpUnlock, ref, func(w *walletRecord) error {
		if w.Locked.LessThan(amount) {
			return fmt.Errorf("unlock %s on %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Locked = Amount{w.Locked.Sub(amount)}
		w.Available = Amount{w.Available.Add(amount)}
		return nil
	})
}

// BalanceOf returns the account's balances.
func (s *Store) BalanceOf(ctx context.Context, accountID string) (models.Balance, error) {
	record, err := s.getWallet(ctx, accountID)
	if err != nil {
		return models.Balance{}, err
	}
	w := record.toModel()
	return models.Balance{Available: w.Available, Locked: w.Locked, Earnings: w.Earnings}, nil
}

// ListEntries returns the most recent entries for an account, newest first.
func (s *Store) ListEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerByAccountGSI),
		KeyConditionExpression: aws.String("account_id = :account_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account_id": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by timestamp in descending order
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for ledger entries: %w", err)
	}

	var records []entryRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}
	entries := make([]models.LedgerEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

// Freeze blocks every mutation on the account's wallet.
func (s *Store) Freeze(ctx context.Context, accountID string) error {
	return s.setFrozen(ctx, accountID, true)
}

// Unfreeze lifts a freeze.
func (s *Store) Unfreeze(ctx context.Context, accountID string) error {
	return s.setFrozen(ctx, accountID, false)
}

func (s *Store) setFrozen(ctx context.Context, accountID string, frozen bool) error {
	nowAV, err := attributevalue.Marshal(s.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Wallets),
		Key:                 walletKey(accountID),
		UpdateExpression:    aws.String("SET frozen = :frozen, version = version + :inc, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(account_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":frozen": &types.AttributeValueMemberBOOL{Value: frozen},
			":inc":    &types.AttributeValueMemberN{Value: "1"},
			":now":    nowAV,
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("wallet for account %s: %w", accountID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to update wallet freeze flag: %w", err)
	}
	return nil
}
