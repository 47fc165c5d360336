package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
)

const (
	investmentsByOwnerGSI  = "owner_id-index"
	investmentsByStatusGSI = "status-maturity_date-index"
)

// CreateInvestment stores a new investment record.
func (s *Store) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	invAV, err := attributevalue.MarshalMap(newInvestmentRecord(inv))
	if err != nil {
		return fmt.Errorf("failed to marshal investment: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Investments),
		Item:                invAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("investment %s: %w", inv.Id, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create investment in DynamoDB: %w", err)
	}
	return nil
}

// UpdateInvestment replaces the record only if its stored status still equals expected.
func (s *Store) UpdateInvestment(ctx context.Context, inv *models.Investment, expected models.InvestmentStatus) error {
	invAV, err := attributevalue.MarshalMap(newInvestmentRecord(inv))
	if err != nil {
		return fmt.Errorf("failed to marshal investment: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Investments),
		Item:                invAV,
		ConditionExpression: aws.String("#status = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if condCheckFailed.Item == nil {
				return fmt.Errorf("investment %s: %w", inv.Id, models.ErrNotFound)
			}
			return fmt.Errorf("investment %s is no longer %s: %w", inv.Id, expected, models.ErrInvalidTransition)
		}
		return fmt.Errorf("failed to update investment in DynamoDB: %w", err)
	}
	return nil
}

// GetInvestment retrieves an investment by its ID.
func (s *Store) GetInvestment(ctx context.Context, investmentID string) (*models.Investment, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Investments),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: investmentID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get investment from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("investment %s: %w", investmentID, models.ErrNotFound)
	}

	var record investmentRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal investment: %w", err)
	}
	inv := record.toModel()
	return &inv, nil
}

// ListInvestmentsByOwner retrieves all investments for an account.
func (s *Store) ListInvestmentsByOwner(ctx context.Context, ownerID string) ([]models.Investment, error) {
	return s.queryInvestments(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Investments),
		IndexName:              aws.String(investmentsByOwnerGSI),
		KeyConditionExpression: aws.String("owner_id = :owner_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner_id": &types.AttributeValueMemberS{Value: ownerID},
		},
	})
}

// ListDueInvestments retrieves ACTIVE investments whose maturity date is not after now.
func (s *Store) ListDueInvestments(ctx context.Context, now time.Time) ([]models.Investment, error) {
	nowAV, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	return s.queryInvestments(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Investments),
		IndexName:              aws.String(investmentsByStatusGSI),
		KeyConditionExpression: aws.String("#status = :status AND maturity_date <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
			":now":    nowAV,
		},
	})
}

// queryInvestments follows LastEvaluatedKey until the query is exhausted.
func (s *Store) queryInvestments(ctx context.Context, input *dynamodb.QueryInput) ([]models.Investment, error) {
	var investments []models.Investment
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for investments: %w", err)
		}

		var records []investmentRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal investments: %w", err)
		}
		for _, r := range records {
			investments = append(investments, r.toModel())
		}

		if len(result.LastEvaluatedKey) == 0 {
			return investments, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
