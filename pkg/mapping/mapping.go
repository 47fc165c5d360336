package mapping

import (
	"strings"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/models"
)

// ToApiAccount converts a domain Account model to an API Account model.
func ToApiAccount(acct *models.Account) *api.Account {
	out := &api.Account{
		Id:           acct.Id,
		ReferralCode: acct.ReferralCode,
		Status:       string(acct.Status),
		KycVerified:  acct.KYCVerified,
		CreatedAt:    acct.CreatedAt,
	}
	if acct.ParentId != "" {
		parent := acct.ParentId
		out.ParentId = &parent
	}
	return out
}

// ToApiNode converts a hierarchy snapshot to its API form, children included.
func ToApiNode(n *hierarchy.Node) *api.HierarchyNode {
	out := &api.HierarchyNode{
		Account:                 *ToApiAccount(&n.Account),
		DirectReferralCount:     n.DirectReferralCount,
		TotalDownlineCount:      n.TotalDownlineCount,
		TotalDownlineInvestment: n.TotalDownlineInvestment,
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, *ToApiNode(child))
	}
	return out
}

// ToApiInvestment converts a domain Investment model to an API Investment model.
func ToApiInvestment(inv *models.Investment) *api.Investment {
	return &api.Investment{
		Id:            inv.Id,
		OwnerId:       inv.OwnerId,
		Profile:       string(inv.Profile),
		Amount:        inv.Amount,
		LockInMonths:  inv.LockInMonths,
		MinReturnRate: inv.MinReturnRate,
		MaxReturnRate: inv.MaxReturnRate,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt,
		ActivatedAt:   inv.ActivatedAt,
		MaturityDate:  inv.MaturityDate,
		RealizedRate:  inv.RealizedRate,
		PayableReturn: inv.PayableReturn,
	}
}

// ToDomainProfile converts the wire profile name, ignoring case. Unknown names
// pass through and are rejected by the catalog.
func ToDomainProfile(profile string) models.InvestmentProfile {
	return models.InvestmentProfile(strings.ToUpper(strings.TrimSpace(profile)))
}

// ToApiApprovalRequest converts a domain ApprovalRequest to its API form.
func ToApiApprovalRequest(req *models.ApprovalRequest) *api.ApprovalRequest {
	return &api.ApprovalRequest{
		Id:          req.Id,
		Type:        api.ApprovalType(req.Type),
		Status:      string(req.Status),
		RequesterId: req.RequesterId,
		AuthorityId: req.AuthorityId,
		Payload:     req.Payload,
		CreatedAt:   req.CreatedAt,
		DecidedAt:   req.DecidedAt,
	}
}

// ToDomainApprovalType converts the wire approval type; nil means any type.
func ToDomainApprovalType(t *api.ApprovalType) models.ApprovalType {
	if t == nil {
		return ""
	}
	return models.ApprovalType(*t)
}

// ToDomainOutcome converts a wire decision. "APPROVE" and "REJECT" are
// accepted alongside the status names.
func ToDomainOutcome(d *api.Decision) models.Outcome {
	switch d.Outcome {
	case "APPROVE":
		return models.OutcomeApprove
	case "REJECT":
		return models.OutcomeReject
	default:
		return models.Outcome(d.Outcome)
	}
}

// ToApiWallet converts a balance to the API Wallet model.
func ToApiWallet(accountID string, balance models.Balance) *api.Wallet {
	return &api.Wallet{
		AccountId: accountID,
		Available: balance.Available,
		Locked:    balance.Locked,
		Earnings:  balance.Earnings,
	}
}

// ToApiLedgerEntry converts a domain LedgerEntry to the API model.
func ToApiLedgerEntry(entry *models.LedgerEntry) *api.LedgerEntry {
	return &api.LedgerEntry{
		EntryId:     entry.EntryID,
		Reference:   entry.Reference,
		AccountId:   entry.AccountID,
		Reason:      string(entry.Reason),
		Debit:       entry.Debit,
		Credit:      entry.Credit,
		Description: entry.Description,
		Timestamp:   entry.Timestamp,
	}
}

// ToApiCommissionCredit converts a domain CommissionCredit to the API model.
func ToApiCommissionCredit(credit *models.CommissionCredit) *api.CommissionCredit {
	return &api.CommissionCredit{
		Id:                 credit.Id,
		SourceInvestmentId: credit.SourceInvestmentId,
		Level:              credit.Level,
		Rate:               credit.Rate,
		Amount:             credit.Amount,
		Status:             string(credit.Status),
		Attempts:           credit.Attempts,
		CreatedAt:          credit.CreatedAt,
	}
}
