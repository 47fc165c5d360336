package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/referral-investments/pkg/api"
)

// AccountHeader carries the caller's account id, set by the upstream auth
// provider.
const AccountHeader = "X-Account-ID"

type contextKey struct{}

// WithAccountID returns a context carrying the caller's account id.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, contextKey{}, accountID)
}

// AccountID returns the caller's account id, or "" if none was set.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// RequireAccount rejects requests without an account header.
func RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(AccountHeader))
		if id == "" {
			api.WriteError(w, api.KindUnauthenticated, "missing "+AccountHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), id)))
	})
}
