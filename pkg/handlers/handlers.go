package handlers

import (
	"net/http"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/exchange"
	"github.com/chris/referral-investments/pkg/handlers/accounts"
	"github.com/chris/referral-investments/pkg/handlers/approvals"
	"github.com/chris/referral-investments/pkg/handlers/investments"
	"github.com/chris/referral-investments/pkg/handlers/ledger"
	"github.com/chris/referral-investments/pkg/handlers/wallets"
	"github.com/chris/referral-investments/pkg/platform"
)

// ApiHandler implements the server interface by composing the per-area
// handlers.
type ApiHandler struct {
	*accounts.AccountsHandler
	*investments.InvestmentsHandler
	*approvals.ApprovalsHandler
	*wallets.WalletsHandler
	*ledger.LedgerHandler

	Rates exchange.Provider
}

// NewApiHandler creates a new ApiHandler over the platform service.
func NewApiHandler(svc platform.API, rates exchange.Provider) *ApiHandler {
	return &ApiHandler{
		AccountsHandler:    accounts.NewAccountsHandler(svc),
		InvestmentsHandler: investments.NewInvestmentsHandler(svc),
		ApprovalsHandler:   approvals.NewApprovalsHandler(svc),
		WalletsHandler:     wallets.NewWalletsHandler(svc),
		LedgerHandler:      ledger.NewLedgerHandler(svc),
		Rates:              rates,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// GetExchangeRate returns a display-only conversion rate.
func (h *ApiHandler) GetExchangeRate(w http.ResponseWriter, r *http.Request, code string) {
	rate, err := h.Rates.RateOf(r.Context(), code)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.ExchangeRate{Code: code, Rate: rate})
}
