// Package notify delivers account notifications. Delivery is fire and forget:
// callers never wait on it and it never fails an operation.
package notify

import (
	"context"
	"time"
)

// EventType names a notification. Append only.
type EventType string

const (
	RegistrationDecided EventType = "REGISTRATION_DECIDED"
	InvestmentActivated EventType = "INVESTMENT_ACTIVATED"
	CommissionCredited  EventType = "COMMISSION_CREDITED"
	RequestDecided      EventType = "REQUEST_DECIDED"
	InvestmentMatured   EventType = "INVESTMENT_MATURED"
)

// Event is a single notification for an account.
type Event struct {
	Type       EventType         `json:"type"`
	AccountId  string            `json:"account_id"`
	Reference  string            `json:"reference,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Dispatcher defines the interface for delivering notifications.
type Dispatcher interface {
	// Notify delivers event to accountID.
	Notify(ctx context.Context, event Event) error
}

// NoOp is a dispatcher that drops every event.
type NoOp struct{}

// Notify does nothing.
func (NoOp) Notify(context.Context, Event) error {
	return nil
}
