package hierarchy

import (
	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// Node is a read-only snapshot of a hierarchy node. Children keep approval
// order.
type Node struct {
	Account                 models.Account  `json:"account"`
	DirectReferralCount     int             `json:"direct_referral_count"`
	TotalDownlineCount      int             `json:"total_downline_count"`
	TotalDownlineInvestment decimal.Decimal `json:"total_downline_investment"`
	Children                []*Node         `json:"children,omitempty"`
}

// Walk visits n and its descendants depth first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
