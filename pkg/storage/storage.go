// Package storage defines the persistence boundaries of the platform core.
package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on the
// more granular interfaces (InvestmentStore, ReconciliationStore, etc.) instead of this one.
type Storage interface {
	InvestmentStore
	CommissionStore
	AccountStore
	ApprovalStore
}
