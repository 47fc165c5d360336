package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
)

// The accounts table is keyed by id. Listing goes through the status index,
// one query per account status.
const accountsByStatusGSI = "status-created_at-index"

var accountStatuses = []models.AccountStatus{models.AccountPending, models.AccountActive, models.AccountSuspended}

// CreateAccount stores a new account record.
func (s *Store) CreateAccount(ctx context.Context, rec storage.AccountRecord) error {
	accountAV, err := attributevalue.MarshalMap(newAccountRecord(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Accounts),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("account %s: %w", rec.Account.Id, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}
	return nil
}

// UpdateAccount replaces the record only if its stored version is rec.Version-1.
func (s *Store) UpdateAccount(ctx context.Context, rec storage.AccountRecord) error {
	accountAV, err := attributevalue.MarshalMap(newAccountRecord(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Accounts),
		Item:                accountAV,
		ConditionExpression: aws.String("version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Version-1, 10)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if condCheckFailed.Item == nil {
				return fmt.Errorf("account %s: %w", rec.Account.Id, models.ErrNotFound)
			}
			return fmt.Errorf("account %s changed since version %d: %w", rec.Account.Id, rec.Version-1, models.ErrVersionConflict)
		}
		return fmt.Errorf("failed to update account in DynamoDB: %w", err)
	}
	return nil
}

// ListAccounts retrieves every account, reading each status partition of the
// status index in turn.
func (s *Store) ListAccounts(ctx context.Context) ([]storage.AccountRecord, error) {
	var accounts []storage.AccountRecord
	for _, status := range accountStatuses {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Accounts),
			IndexName:              aws.String(accountsByStatusGSI),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(status)},
			},
		}
		for {
			result, err := s.Client.Query(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("failed to query for %s accounts: %w", status, err)
			}
			var records []accountRecord
			if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
				return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
			}
			for _, r := range records {
				accounts = append(accounts, r.toModel())
			}

			if len(result.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
	}
	return accounts, nil
}
