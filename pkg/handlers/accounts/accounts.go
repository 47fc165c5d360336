package accounts

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/mapping"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/platform"
)

// AccountsHandler holds the dependencies for account and hierarchy handlers.
type AccountsHandler struct {
	Svc platform.Accounts
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(svc platform.Accounts) *AccountsHandler {
	return &AccountsHandler{Svc: svc}
}

// RegisterAccount creates a PENDING account under the owner of the referral
// code and submits it for approval.
func (h *AccountsHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var body api.NewRegistration
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	acct, req, err := h.Svc.RegisterAccount(r.Context(), body.ReferralCode)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.Registration{
		Account: *mapping.ToApiAccount(acct),
		Request: *mapping.ToApiApprovalRequest(req),
	})
}

// GetMe returns the caller's account.
func (h *AccountsHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Svc.Account(r.Context(), middleware.AccountID(r.Context()))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiAccount(acct))
}

// RequestKYC submits a verification request for the caller.
func (h *AccountsHandler) RequestKYC(w http.ResponseWriter, r *http.Request) {
	var body api.NewKYC
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req, err := h.Svc.RequestKYC(r.Context(), middleware.AccountID(r.Context()), body.DocumentRef)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiApprovalRequest(req))
}

// GetSubtree returns the caller's downline.
func (h *AccountsHandler) GetSubtree(w http.ResponseWriter, r *http.Request, params api.GetSubtreeParams) {
	depth := hierarchy.Unbounded
	if params.Depth != nil {
		if *params.Depth < 0 {
			api.WriteError(w, api.KindBadRequest, "depth must not be negative")
			return
		}
		depth = *params.Depth
	}

	node, err := h.Svc.Subtree(r.Context(), middleware.AccountID(r.Context()), depth)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiNode(node))
}

// SearchHierarchy finds a member of the caller's downline by referral code.
func (h *AccountsHandler) SearchHierarchy(w http.ResponseWriter, r *http.Request, params api.SearchHierarchyParams) {
	node, path, err := h.Svc.SearchByReferralCode(r.Context(), middleware.AccountID(r.Context()), params.Code)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SearchResult{Node: *mapping.ToApiNode(node), Path: path})
}
