package investments

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/mapping"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/platform"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// InvestmentsHandler holds the dependencies for investment handlers.
type InvestmentsHandler struct {
	Svc platform.Investments
}

// NewInvestmentsHandler creates a new InvestmentsHandler.
func NewInvestmentsHandler(svc platform.Investments) *InvestmentsHandler {
	return &InvestmentsHandler{Svc: svc}
}

// CreateInvestment records a PENDING_APPROVAL investment for the caller and
// submits it to the caller's referrer.
func (h *InvestmentsHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var body api.NewInvestment
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, api.KindBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	inv, req, err := h.Svc.RequestInvestment(r.Context(), middleware.AccountID(r.Context()),
		mapping.ToDomainProfile(body.Profile), body.Amount, body.LockInMonths)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.InvestmentRequest{
		Investment: *mapping.ToApiInvestment(inv),
		Request:    *mapping.ToApiApprovalRequest(req),
	})
}

// ListInvestments returns the caller's investments.
func (h *InvestmentsHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	domainInvestments, err := h.Svc.ListInvestments(r.Context(), middleware.AccountID(r.Context()))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	apiInvestments := make([]*api.Investment, len(domainInvestments))
	for i, inv := range domainInvestments {
		apiInvestments[i] = mapping.ToApiInvestment(&inv)
	}
	api.WriteJSON(w, http.StatusOK, apiInvestments)
}

// GetInvestmentById returns an investment owned by the caller or by a member
// of the caller's downline.
func (h *InvestmentsHandler) GetInvestmentById(w http.ResponseWriter, r *http.Request, investmentId openapi_types.UUID) {
	inv, err := h.Svc.GetInvestment(r.Context(), middleware.AccountID(r.Context()), investmentId.String())
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiInvestment(inv))
}

// RequestWithdrawal submits a matured investment for payout.
func (h *InvestmentsHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request, investmentId openapi_types.UUID) {
	req, err := h.Svc.RequestWithdrawal(r.Context(), middleware.AccountID(r.Context()), investmentId.String())
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiApprovalRequest(req))
}
