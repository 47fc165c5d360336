package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /registrations)
	RegisterAccount(w http.ResponseWriter, r *http.Request)
	// (GET /exchange-rates/{code})
	GetExchangeRate(w http.ResponseWriter, r *http.Request, code string)
	// (GET /accounts/me)
	GetMe(w http.ResponseWriter, r *http.Request)
	// (POST /kyc)
	RequestKYC(w http.ResponseWriter, r *http.Request)
	// (GET /hierarchy/subtree)
	GetSubtree(w http.ResponseWriter, r *http.Request, params GetSubtreeParams)
	// (GET /hierarchy/search)
	SearchHierarchy(w http.ResponseWriter, r *http.Request, params SearchHierarchyParams)
	// (POST /investments)
	CreateInvestment(w http.ResponseWriter, r *http.Request)
	// (GET /investments)
	ListInvestments(w http.ResponseWriter, r *http.Request)
	// (GET /investments/{investmentId})
	GetInvestmentById(w http.ResponseWriter, r *http.Request, investmentId openapi_types.UUID)
	// (POST /investments/{investmentId}/withdrawals)
	RequestWithdrawal(w http.ResponseWriter, r *http.Request, investmentId openapi_types.UUID)
	// (GET /approvals)
	ListApprovals(w http.ResponseWriter, r *http.Request, params ListApprovalsParams)
	// (GET /approvals/count)
	CountApprovals(w http.ResponseWriter, r *http.Request, params CountApprovalsParams)
	// (GET /approvals/{requestId})
	GetApprovalById(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID)
	// (POST /approvals/{requestId}/decision)
	DecideApproval(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID)
	// (POST /approvals/{requestId}/cancel)
	CancelApproval(w http.ResponseWriter, r *http.Request, requestId openapi_types.UUID)
	// (GET /wallet)
	GetWallet(w http.ResponseWriter, r *http.Request)
	// (GET /ledger)
	ListLedgerEntries(w http.ResponseWriter, r *http.Request, params ListLedgerEntriesParams)
	// (GET /commissions)
	ListCommissions(w http.ResponseWriter, r *http.Request)
	// (POST /borrow-requests)
	RequestBorrow(w http.ResponseWriter, r *http.Request)
	// (POST /transfers)
	RequestTransfer(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindPathUUID(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return id, false
	}
	return id, true
}

// RegisterAccount operation middleware
func (siw *ServerInterfaceWrapper) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.RegisterAccount)
}

// GetExchangeRate operation middleware
func (siw *ServerInterfaceWrapper) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	var code string
	err := runtime.BindStyledParameterWithOptions("simple", "code", chi.URLParam(r, "code"), &code, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "code", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetExchangeRate(w, r, code)
	})
}

// GetMe operation middleware
func (siw *ServerInterfaceWrapper) GetMe(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetMe)
}

// RequestKYC operation middleware
func (siw *ServerInterfaceWrapper) RequestKYC(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.RequestKYC)
}

// GetSubtree operation middleware
func (siw *ServerInterfaceWrapper) GetSubtree(w http.ResponseWriter, r *http.Request) {
	var params GetSubtreeParams
	if err := runtime.BindQueryParameter("form", true, false, "depth", r.URL.Query(), &params.Depth); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "depth", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSubtree(w, r, params)
	})
}

// SearchHierarchy operation middleware
func (siw *ServerInterfaceWrapper) SearchHierarchy(w http.ResponseWriter, r *http.Request) {
	var params SearchHierarchyParams
	if err := runtime.BindQueryParameter("form", true, true, "code", r.URL.Query(), &params.Code); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "code", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SearchHierarchy(w, r, params)
	})
}

// CreateInvestment operation middleware
func (siw *ServerInterfaceWrapper) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateInvestment)
}

// ListInvestments operation middleware
func (siw *ServerInterfaceWrapper) ListInvestments(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListInvestments)
}

// GetInvestmentById operation middleware
func (siw *ServerInterfaceWrapper) GetInvestmentById(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPathUUID(w, r, "investmentId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetInvestmentById(w, r, id)
	})
}

// RequestWithdrawal operation middleware
func (siw *ServerInterfaceWrapper) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPathUUID(w, r, "investmentId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RequestWithdrawal(w, r, id)
	})
}

// ListApprovals operation middleware
func (siw *ServerInterfaceWrapper) ListApprovals(w http.ResponseWriter, r *http.Request) {
	var params ListApprovalsParams
	if err := runtime.BindQueryParameter("form", true, false, "type", r.URL.Query(), &params.Type); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListApprovals(w, r, params)
	})
}

// CountApprovals operation middleware
func (siw *ServerInterfaceWrapper) CountApprovals(w http.ResponseWriter, r *http.Request) {
	var params CountApprovalsParams
	if err := runtime.BindQueryParameter("form", true, true, "type", r.URL.Query(), &params.Type); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CountApprovals(w, r, params)
	})
}

// GetApprovalById operation middleware
func (siw *ServerInterfaceWrapper) GetApprovalById(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPathUUID(w, r, "requestId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetApprovalById(w, r, id)
	})
}

// DecideApproval operation middleware
func (siw *ServerInterfaceWrapper) DecideApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPathUUID(w, r, "requestId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DecideApproval(w, r, id)
	})
}

// CancelApproval operation middleware
func (siw *ServerInterfaceWrapper) CancelApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPathUUID(w, r, "requestId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CancelApproval(w, r, id)
	})
}

// GetWallet operation middleware
func (siw *ServerInterfaceWrapper) GetWallet(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetWallet)
}

// ListLedgerEntries operation middleware
func (siw *ServerInterfaceWrapper) ListLedgerEntries(w http.ResponseWriter, r *http.Request) {
	var params ListLedgerEntriesParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListLedgerEntries(w, r, params)
	})
}

// ListCommissions operation middleware
func (siw *ServerInterfaceWrapper) ListCommissions(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListCommissions)
}

// RequestBorrow operation middleware
func (siw *ServerInterfaceWrapper) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.RequestBorrow)
}

// RequestTransfer operation middleware
func (siw *ServerInterfaceWrapper) RequestTransfer(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.RequestTransfer)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL     string
	BaseRouter  chi.Router
	Middlewares []MiddlewareFunc
	// Public wraps registration and exchange rates.
	Public []MiddlewareFunc
	// Authenticated wraps every route except registration and exchange rates.
	Authenticated    []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerFromMux creates http.Handler with routing matching the API on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			WriteError(w, KindBadRequest, err.Error())
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		for _, m := range options.Public {
			r.Use(m)
		}
		r.Post(base+"/registrations", wrapper.RegisterAccount)
		r.Get(base+"/exchange-rates/{code}", wrapper.GetExchangeRate)
	})
	r.Group(func(r chi.Router) {
		for _, m := range options.Authenticated {
			r.Use(m)
		}
		r.Get(base+"/accounts/me", wrapper.GetMe)
		r.Post(base+"/kyc", wrapper.RequestKYC)
		r.Get(base+"/hierarchy/subtree", wrapper.GetSubtree)
		r.Get(base+"/hierarchy/search", wrapper.SearchHierarchy)
		r.Post(base+"/investments", wrapper.CreateInvestment)
		r.Get(base+"/investments", wrapper.ListInvestments)
		r.Get(base+"/investments/{investmentId}", wrapper.GetInvestmentById)
		r.Post(base+"/investments/{investmentId}/withdrawals", wrapper.RequestWithdrawal)
		r.Get(base+"/approvals", wrapper.ListApprovals)
		r.Get(base+"/approvals/count", wrapper.CountApprovals)
		r.Get(base+"/approvals/{requestId}", wrapper.GetApprovalById)
		r.Post(base+"/approvals/{requestId}/decision", wrapper.DecideApproval)
		r.Post(base+"/approvals/{requestId}/cancel", wrapper.CancelApproval)
		r.Get(base+"/wallet", wrapper.GetWallet)
		r.Get(base+"/ledger", wrapper.ListLedgerEntries)
		r.Get(base+"/commissions", wrapper.ListCommissions)
		r.Post(base+"/borrow-requests", wrapper.RequestBorrow)
		r.Post(base+"/transfers", wrapper.RequestTransfer)
	})
	return r
}
