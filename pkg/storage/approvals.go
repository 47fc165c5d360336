package storage

import (
	"context"

	"github.com/chris/referral-investments/pkg/models"
)

// ApprovalStore persists approval requests.
type ApprovalStore interface {
	// CreateRequest stores a new PENDING request.
	CreateRequest(ctx context.Context, req *models.ApprovalRequest) error

	// UpdateRequest replaces the stored request only if its stored status
	// still equals expected. Otherwise it fails with models.ErrAlreadyDecided.
	UpdateRequest(ctx context.Context, req *models.ApprovalRequest, expected models.ApprovalStatus) error

	// GetRequest retrieves a request by its ID.
	GetRequest(ctx context.Context, requestID string) (*models.ApprovalRequest, error)

	// ListPendingRequests retrieves every PENDING request, oldest first.
	ListPendingRequests(ctx context.Context) ([]models.ApprovalRequest, error)
}
