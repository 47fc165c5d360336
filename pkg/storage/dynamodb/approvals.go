package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
)

const approvalsByStatusGSI = "status-created_at-index"

// CreateRequest stores a new approval request.
func (s *Store) CreateRequest(ctx context.Context, req *models.ApprovalRequest) error {
	record, err := newApprovalRecord(req)
	if err != nil {
		return err
	}
	requestAV, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval request: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Approvals),
		Item:                requestAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("request %s: %w", req.Id, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create approval request in DynamoDB: %w", err)
	}
	return nil
}

// UpdateRequest replaces the record only if its stored status still equals expected.
func (s *Store) UpdateRequest(ctx context.Context, req *models.ApprovalRequest, expected models.ApprovalStatus) error {
	record, err := newApprovalRecord(req)
	if err != nil {
		return err
	}
	requestAV, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval request: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Approvals),
		Item:                requestAV,
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
				return fmt.Errorf("request %s: %w", req.Id, models.ErrNotFound)
			}
			return fmt.Errorf("request %s is no longer %s: %w", req.Id, expected, models.ErrAlreadyDecided)
		}
		return fmt.Errorf("failed to update approval request in DynamoDB: %w", err)
	}
	return nil
}

// GetRequest retrieves an approval request by its ID.
func (s *Store) GetRequest(ctx context.Context, requestID string) (*models.ApprovalRequest, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Approvals),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: requestID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get approval request from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, models.ErrNotFound)
	}

	var record approvalRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval request: %w", err)
	}
	req, err := record.toModel()
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingRequests retrieves every PENDING request, oldest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]models.ApprovalRequest, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Approvals),
		IndexName:              aws.String(approvalsByStatusGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
		},
	}

	var requests []models.ApprovalRequest
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for pending requests: %w", err)
		}
		var records []approvalRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal approval requests: %w", err)
		}
		for _, r := range records {
			req, err := r.toModel()
			if err != nil {
				return nil, err
			}
			requests = append(requests, req)
		}

		if len(result.LastEvaluatedKey) == 0 {
			return requests, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
