package approvals

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/mapping"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/platform"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ApprovalsHandler holds the dependencies for approval queue handlers.
type ApprovalsHandler struct {
	Svc platform.Approvals
}

// NewApprovalsHandler creates a new ApprovalsHandler.
func NewApprovalsHandler(svc platform.Approvals) *ApprovalsHandler {
	return &ApprovalsHandler{Svc: svc}
}

// ListApprovals returns the requests awaiting the caller's decision.
func (h *ApprovalsHandler) ListApprovals(w http.ResponseWriter, r *http.Request, params api.ListApprovalsParams) {
	pending, err := h.Svc.ListPending(r.Context(), middleware.AccountID(r.Context()), mapping.ToDomainApprovalType(params.Type))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	apiRequests := make([]*api.ApprovalRequest, len(pending))
	for i, req := range pending {
		apiRequests[i] = mapping.ToApiApprovalRequest(&req)
	}
	api.WriteJSON(w, http.StatusOK, apiRequests)
}

// CountApprovals returns how many requests of a type await the caller.
func (h *ApprovalsHandler) CountApprovals(w http.ResponseWriter, r *http.Request, params api.CountApprovalsParams) {
	count, err := h.Svc.CountPending(r.Context(), middleware.AccountID(r.Context()), models.ApprovalType(params.Type))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.PendingCount{Type: params.Type, Count: count})
}

// GetApprovalById returns a request the caller submitted or must decide.
func (h *ApprovalsHandler) GetApprovalById(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID) {
	req, err := h.Svc.GetRequest(r.Context(), middleware.AccountID(r.Context()), requestId.String())
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiApprovalRequest(req))
}

// DecideApproval approves or rejects a pending request.
func (h *ApprovalsHandler) DecideApproval(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID) {
	var body api.Decision
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req, err := h.Svc.Decide(r.Context(), requestId.String(), middleware.AccountID(r.Context()), mapping.ToDomainOutcome(&body))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiApprovalRequest(req))
}

// CancelApproval withdraws the caller's own pending request.
func (h *ApprovalsHandler) CancelApproval(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID) {
	req, err := h.Svc.CancelRequest(r.Context(), requestId.String(), middleware.AccountID(r.Context()))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiApprovalRequest(req))
}
