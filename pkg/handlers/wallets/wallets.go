package wallets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/mapping"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/platform"
)

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Svc platform.Funds
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(svc platform.Funds) *WalletsHandler {
	return &WalletsHandler{Svc: svc}
}

// GetWallet returns the caller's balances.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	balance, err := h.Svc.Balance(r.Context(), accountID)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiWallet(accountID, balance))
}

// ListCommissions returns the commission credits earned by the caller, newest
// first.
func (h *WalletsHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	credits, err := h.Svc.Commissions(r.Context(), middleware.AccountID(r.Context()))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	sort.Slice(credits, func(i, j int) bool {
		return credits[i].CreatedAt.After(credits[j].CreatedAt)
	})

	apiCredits := make([]*api.CommissionCredit, len(credits))
	for i, credit := range credits {
		apiCredits[i] = mapping.ToApiCommissionCredit(&credit)
	}
	api.WriteJSON(w, http.StatusOK, apiCredits)
}

// RequestBorrow asks the caller's referrer for a loan.
func (h *WalletsHandler) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	var body api.NewBorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req, err := h.Svc.RequestBorrow(r.Context(), middleware.AccountID(r.Context()), body.Amount, body.Note)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiApprovalRequest(req))
}

// RequestTransfer asks the caller's referrer to approve a transfer.
func (h *WalletsHandler) RequestTransfer(w http.ResponseWriter, r *http.Request) {
	var body api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req, err := h.Svc.RequestTransfer(r.Context(), middleware.AccountID(r.Context()), body.ToAccountId, body.Amount)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiApprovalRequest(req))
}
