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

// The commissions table is keyed by source_investment_id (partition) and
// recipient_id (sort), which makes a second credit for the same pair impossible.
const (
	creditsByRecipientGSI = "recipient_id-index"
	creditsByStatusGSI    = "status-created_at-index"
)

// CreateCredit records a new commission credit.
func (s *Store) CreateCredit(ctx context.Context, credit *models.CommissionCredit) error {
	creditAV, err := attributevalue.MarshalMap(newCreditRecord(credit))
	if err != nil {
		return fmt.Errorf("failed to marshal commission credit: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Commissions),
		Item:                creditAV,
		ConditionExpression: aws.String("attribute_not_exists(recipient_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("credit for investment %s and recipient %s: %w", credit.SourceInvestmentId, credit.RecipientId, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create commission credit in DynamoDB: %w", err)
	}
	return nil
}

// UpdateCredit replaces the record only if its stored status still equals expected.
func (s *Store) UpdateCredit(ctx context.Context, credit *models.CommissionCredit, expected models.CreditStatus) error {
	creditAV, err := attributevalue.MarshalMap(newCreditRecord(credit))
	if err != nil {
		return fmt.Errorf("failed to marshal commission credit: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Commissions),
		Item:                creditAV,
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
				return fmt.Errorf("credit %s: %w", credit.Id, models.ErrNotFound)
			}
			return fmt.Errorf("credit %s is no longer %s: %w", credit.Id, expected, models.ErrInvalidTransition)
		}
		return fmt.Errorf("failed to update commission credit in DynamoDB: %w", err)
	}
	return nil
}

// ListCreditsByInvestment retrieves every credit issued for an investment.
func (s *Store) ListCreditsByInvestment(ctx context.Context, investmentID string) ([]models.CommissionCredit, error) {
	return s.queryCredits(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Commissions),
		KeyConditionExpression: aws.String("source_investment_id = :investment_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":investment_id": &types.AttributeValueMemberS{Value: investmentID},
		},
		ConsistentRead: aws.Bool(true),
	})
}

// ListCreditsByRecipient retrieves every credit issued to an account.
func (s *Store) ListCreditsByRecipient(ctx context.Context, recipientID string) ([]models.CommissionCredit, error) {
	return s.queryCredits(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Commissions),
		IndexName:              aws.String(creditsByRecipientGSI),
		KeyConditionExpression: aws.String("recipient_id = :recipient_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":recipient_id": &types.AttributeValueMemberS{Value: recipientID},
		},
	})
}

// ListFailedCredits retrieves up to limit FAILED credits, oldest first.
func (s *Store) ListFailedCredits(ctx context.Context, limit int32) ([]models.CommissionCredit, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Commissions),
		IndexName:              aws.String(creditsByStatusGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.CreditFailed)},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for failed credits: %w", err)
	}
	return unmarshalCredits(result.Items)
}

// ListStaleCredits retrieves up to limit PENDING credits created before cutoff, oldest first.
func (s *Store) ListStaleCredits(ctx context.Context, cutoff time.Time, limit int32) ([]models.CommissionCredit, error) {
	cutoffAV, err := attributevalue.Marshal(cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Commissions),
		IndexName:              aws.String(creditsByStatusGSI),
		KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.CreditPending)},
			":cutoff": cutoffAV,
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale credits: %w", err)
	}
	return unmarshalCredits(result.Items)
}

func (s *Store) queryCredits(ctx context.Context, input *dynamodb.QueryInput) ([]models.CommissionCredit, error) {
	var credits []models.CommissionCredit
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for commission credits: %w", err)
		}
		page, err := unmarshalCredits(result.Items)
		if err != nil {
			return nil, err
		}
		credits = append(credits, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return credits, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func unmarshalCredits(items []map[string]types.AttributeValue) ([]models.CommissionCredit, error) {
	var records []creditRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal commission credits: %w", err)
	}
	credits := make([]models.CommissionCredit, 0, len(records))
	for _, r := range records {
		credits = append(credits, r.toModel())
	}
	return credits, nil
}
