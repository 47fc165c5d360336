package ledger

import (
	"net/http"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/mapping"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/platform"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Svc platform.Funds
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc platform.Funds) *LedgerHandler {
	return &LedgerHandler{Svc: svc}
}

// ListLedgerEntries returns the caller's most recent wallet entries.
func (h *LedgerHandler) ListLedgerEntries(w http.ResponseWriter, r *http.Request, params api.ListLedgerEntriesParams) {
	limit := int32(defaultLimit)
	if params.Limit != nil {
		if *params.Limit <= 0 || *params.Limit > maxLimit {
			api.WriteError(w, api.KindBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = int32(*params.Limit)
	}

	domainEntries, err := h.Svc.LedgerEntries(r.Context(), middleware.AccountID(r.Context()), limit)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	apiEntries := make([]*api.LedgerEntry, len(domainEntries))
	for i, entry := range domainEntries {
		apiEntries[i] = mapping.ToApiLedgerEntry(&entry)
	}
	api.WriteJSON(w, http.StatusOK, apiEntries)
}
