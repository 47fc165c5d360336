package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func echoAccount(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(AccountID(r.Context())))
}

func TestRequireAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
		req.Header.Set(AccountHeader, " acct-1 ")
		rr := httptest.NewRecorder()

		RequireAccount(http.HandlerFunc(echoAccount)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "acct-1", rr.Body.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
		rr := httptest.NewRecorder()

		RequireAccount(http.HandlerFunc(echoAccount)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"error":"UNAUTHENTICATED"`)
	})
}

func TestRateLimiter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rl := NewRateLimiter(0.001, 2, zap.New(core))
	handler := RequireAccount(rl.Handler(http.HandlerFunc(echoAccount)))

	send := func(account string) int {
		req := httptest.NewRequest(http.MethodPost, "/transfers", nil)
		req.Header.Set(AccountHeader, account)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("acct-1"))
	assert.Equal(t, http.StatusOK, send("acct-1"))
	assert.Equal(t, http.StatusTooManyRequests, send("acct-1"))
	assert.Equal(t, http.StatusOK, send("acct-2"), "buckets are per account")
	assert.Equal(t, 1, logs.FilterMessage("rate limit exceeded").Len())
}

func TestStructuredLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewStructuredLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tea", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "request completed", entries[0].Message)
		assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}

func TestRateLimiterIgnoresReads(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, zap.NewNop())
	handler := rl.Handler(http.HandlerFunc(echoAccount))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wallet", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
