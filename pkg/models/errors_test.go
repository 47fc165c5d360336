package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", ErrAmountOutOfRange, KindValidation},
		{"wrapped validation", fmt.Errorf("profile GOLD: %w", ErrInvalidLockIn), KindValidation},
		{"not authorized", ErrNotAuthorized, KindNotAuthorized},
		{"not found", fmt.Errorf("account x: %w", ErrNotFound), KindNotFound},
		{"cycle", ErrCycle, KindConflict},
		{"frozen", ErrAccountFrozen, KindConflict},
		{"insufficient", ErrInsufficientBalance, KindInsufficient},
		{"out of band rate", ErrRateOutOfBand, KindInternal},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestApprovalStatusTerminal(t *testing.T) {
	assert.False(t, PENDING.Terminal())
	assert.True(t, APPROVED.Terminal())
	assert.True(t, REJECTED.Terminal())
	assert.True(t, REQUEST_CANCELLED.Terminal())
}

func TestApprovalTypeValid(t *testing.T) {
	for _, at := range ApprovalTypes {
		assert.True(t, at.Valid(), at)
	}
	assert.False(t, ApprovalType("LOTTERY").Valid())
}
