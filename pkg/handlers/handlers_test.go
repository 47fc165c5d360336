package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/referral-investments/pkg/api"
	"github.com/chris/referral-investments/pkg/exchange"
	"github.com/chris/referral-investments/pkg/handlers"
	"github.com/chris/referral-investments/pkg/middleware"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/platform/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, svc *mocks.API) http.Handler {
	t.Helper()
	rates, err := exchange.NewStatic(map[string]decimal.Decimal{"USD": decimal.NewFromInt(1), "EUR": decimal.RequireFromString("0.92")})
	require.NoError(t, err)

	return api.HandlerWithOptions(handlers.NewApiHandler(svc, rates), api.ChiServerOptions{
		Authenticated: []api.MiddlewareFunc{middleware.RequireAccount},
	})
}

func TestRegistrationsAreThrottled(t *testing.T) {
	// Arrange
	svc := new(mocks.API)
	svc.On("RegisterAccount", mock.Anything, "ROOT0001").Return(nil, nil, models.ErrNotFound).Once()
	rates, err := exchange.NewStatic(map[string]decimal.Decimal{"USD": decimal.NewFromInt(1)})
	require.NoError(t, err)
	limiter := middleware.NewRateLimiter(0.001, 1, zap.NewNop())
	router := api.HandlerWithOptions(handlers.NewApiHandler(svc, rates), api.ChiServerOptions{
		Public:        []api.MiddlewareFunc{limiter.Handler},
		Authenticated: []api.MiddlewareFunc{middleware.RequireAccount, limiter.Handler},
	})
	register := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"referral_code":"ROOT0001"}`))
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	// Act
	first := register("203.0.113.7:4100")
	second := register("203.0.113.7:4100")
	rate := httptest.NewRecorder()
	router.ServeHTTP(rate, httptest.NewRequest(http.MethodGet, "/exchange-rates/usd", nil))

	// Assert
	assert.Equal(t, http.StatusNotFound, first)
	assert.Equal(t, http.StatusTooManyRequests, second)
	assert.Equal(t, http.StatusOK, rate.Code)
	svc.AssertExpectations(t)
}

func TestGetExchangeRate(t *testing.T) {
	t.Run("Known Code", func(t *testing.T) {
		router := newRouter(t, new(mocks.API))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/exchange-rates/eur", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"rate":"0.92"`)
	})

	t.Run("Unknown Code", func(t *testing.T) {
		router := newRouter(t, new(mocks.API))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/exchange-rates/XYZ", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRouting(t *testing.T) {
	t.Run("Authenticated Route Without Header", func(t *testing.T) {
		svc := new(mocks.API)
		router := newRouter(t, svc)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wallet", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		svc.AssertNotCalled(t, "Balance", mock.Anything, mock.Anything)
	})

	t.Run("Caller Flows From Header", func(t *testing.T) {
		svc := new(mocks.API)
		svc.On("Balance", mock.Anything, "acct-a").Return(models.Balance{}, nil)
		router := newRouter(t, svc)
		rr := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
		req.Header.Set(middleware.AccountHeader, "acct-a")
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Path Id Is Bound", func(t *testing.T) {
		id := uuid.New()
		svc := new(mocks.API)
		svc.On("GetRequest", mock.Anything, "acct-r", id.String()).Return(&models.ApprovalRequest{
			Id: id.String(), Type: models.KYC_VERIFICATION, Status: models.PENDING, Payload: models.KYCPayload{},
		}, nil)
		router := newRouter(t, svc)
		rr := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodGet, "/approvals/"+id.String(), nil)
		req.Header.Set(middleware.AccountHeader, "acct-r")
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Malformed Path Id", func(t *testing.T) {
		router := newRouter(t, new(mocks.API))
		rr := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodGet, "/approvals/not-a-uuid", nil)
		req.Header.Set(middleware.AccountHeader, "acct-r")
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Registration Is Public", func(t *testing.T) {
		svc := new(mocks.API)
		svc.On("RegisterAccount", mock.Anything, "ROOT0001").Return(nil, nil, models.ErrNotFound)
		router := newRouter(t, svc)
		rr := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"referral_code":"ROOT0001"}`))
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		svc.AssertExpectations(t)
	})
}
