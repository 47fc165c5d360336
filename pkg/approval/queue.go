// Package approval implements the request queue that gates registrations,
// investments, withdrawals, transfers, borrow requests and KYC checks.
//
// A request is PENDING until its authority approves or rejects it, or its
// requester cancels it. Terminal states are final. The side effect of a
// decision runs as a per-type hook while the request is claimed; if the hook
// fails the claim is released and the request stays PENDING.
package approval

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/referral-investments/pkg/metrics"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/notify"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hook performs the side effect of a decision.
type Hook func(ctx context.Context, req models.ApprovalRequest) error

// Hooks are the side effects registered for one approval type. Nil hooks are
// skipped.
type Hooks struct {
	OnApprove Hook
	OnReject  Hook
	OnCancel  Hook
}

type entry struct {
	req models.ApprovalRequest
	// claimed is set while a decision's hook runs.
	claimed bool
}

type counterKey struct {
	approvalType models.ApprovalType
	authorityID  string
}

// Queue is an in-memory approval queue safe for concurrent use. The mutex only
// guards bookkeeping; hooks run outside it.
//
// With a Store, submissions and decisions are written through and Restore
// reloads the pending requests on start. Decided requests that are no longer
// in memory are read from the Store.
type Queue struct {
	mu        sync.Mutex
	requests  map[string]*entry
	pending   map[string]string // duplicate key -> request id
	byAuth    map[string]map[string]struct{}
	counts    map[counterKey]int
	hooks     map[models.ApprovalType]Hooks
	notifier  notify.Dispatcher
	idFactory func() string

	Store  storage.ApprovalStore
	Logger *zap.Logger
	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewQueue creates an empty Queue.
func NewQueue(notifier notify.Dispatcher) *Queue {
	if notifier == nil {
		notifier = notify.NoOp{}
	}
	return &Queue{
		requests:  make(map[string]*entry),
		pending:   make(map[string]string),
		byAuth:    make(map[string]map[string]struct{}),
		counts:    make(map[counterKey]int),
		hooks:     make(map[models.ApprovalType]Hooks),
		notifier:  notifier,
		idFactory: func() string { return uuid.New().String() },
		Logger:    zap.NewNop(),
		Now:       time.Now,
	}
}

// Register sets the hooks for an approval type, replacing any earlier ones.
func (q *Queue) Register(t models.ApprovalType, hooks Hooks) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hooks[t] = hooks
}

func duplicateKey(t models.ApprovalType, requesterID, target string) string {
	return string(t) + "|" + requesterID + "|" + target
}

// Submit records a PENDING request. The authority is fixed here and never
// changes. A second pending request with the same type, requester and target
// fails with models.ErrDuplicatePendingRequest.
func (q *Queue) Submit(ctx context.Context, t models.ApprovalType, requesterID, authorityID string, payload models.Payload) (*models.ApprovalRequest, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("approval type %q: %w", t, models.ErrInvalidRequest)
	}
	if payload == nil || payload.Kind() != t {
		return nil, fmt.Errorf("payload does not match approval type %s: %w", t, models.ErrInvalidRequest)
	}
	if requesterID == "" || authorityID == "" {
		return nil, fmt.Errorf("requester and authority are required: %w", models.ErrInvalidRequest)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := duplicateKey(t, requesterID, payload.Target())
	if _, exists := q.pending[key]; exists {
		return nil, models.ErrDuplicatePendingRequest
	}

	req := models.ApprovalRequest{
		Id:          q.idFactory(),
		Type:        t,
		Status:      models.PENDING,
		RequesterId: requesterID,
		AuthorityId: authorityID,
		Payload:     payload,
		CreatedAt:   q.Now().UTC(),
	}
	if q.Store != nil {
		if err := q.Store.CreateRequest(ctx, &req); err != nil {
			return nil, fmt.Errorf("failed to persist request: %w", err)
		}
	}
	q.indexLocked(req)

	metrics.RecordSubmission(string(t))
	return &req, nil
}

func (q *Queue) indexLocked(req models.ApprovalRequest) {
	q.requests[req.Id] = &entry{req: req}
	q.pending[duplicateKey(req.Type, req.RequesterId, req.Payload.Target())] = req.Id
	if q.byAuth[req.AuthorityId] == nil {
		q.byAuth[req.AuthorityId] = make(map[string]struct{})
	}
	q.byAuth[req.AuthorityId][req.Id] = struct{}{}
	q.counts[counterKey{req.Type, req.AuthorityId}]++
}

// Restore loads the Store's pending requests into the queue and returns how
// many were added. Requests already in memory are left alone.
func (q *Queue) Restore(ctx context.Context) (int, error) {
	if q.Store == nil {
		return 0, nil
	}
	pending, err := q.Store.ListPendingRequests(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending requests: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	restored := 0
	for _, req := range pending {
		if _, ok := q.requests[req.Id]; ok {
			continue
		}
		q.indexLocked(req)
		restored++
	}
	return restored, nil
}

// Decide approves or rejects a PENDING request. Only the request's authority
// may decide; anyone else, including a caller naming an unknown request, gets
// models.ErrNotAuthorized. Of two concurrent decisions exactly one wins; the
// other gets models.ErrAlreadyDecided.
func (q *Queue) Decide(ctx context.Context, requestID, deciderID string, outcome models.Outcome) (*models.ApprovalRequest, error) {
	var status models.ApprovalStatus
	switch outcome {
	case models.OutcomeApprove:
		status = models.APPROVED
	case models.OutcomeReject:
		status = models.REJECTED
	default:
		return nil, fmt.Errorf("outcome %q: %w", outcome, models.ErrInvalidRequest)
	}

	// 1. Claim the request.
	req, hooks, err := q.claim(requestID, func(r models.ApprovalRequest) bool { return r.AuthorityId == deciderID })
	if err != nil {
		return nil, err
	}

	// 2. Run the side effect outside the lock.
	hook := hooks.OnApprove
	if status == models.REJECTED {
		hook = hooks.OnReject
	}
	if hook != nil {
		if err := hook(ctx, req); err != nil {
			q.release(requestID)
			return nil, err
		}
	}

	// 3. Commit the terminal state.
	decided := q.finish(ctx, requestID, status)
	q.announce(ctx, decided)
	return &decided, nil
}

// Cancel withdraws a PENDING request on behalf of its requester.
func (q *Queue) Cancel(ctx context.Context, requestID, requesterID string) (*models.ApprovalRequest, error) {
	req, hooks, err := q.claim(requestID, func(r models.ApprovalRequest) bool { return r.RequesterId == requesterID })
	if err != nil {
		return nil, err
	}

	if hooks.OnCancel != nil {
		if err := hooks.OnCancel(ctx, req); err != nil {
			q.release(requestID)
			return nil, err
		}
	}

	cancelled := q.finish(ctx, requestID, models.REQUEST_CANCELLED)
	q.announce(ctx, cancelled)
	return &cancelled, nil
}

// claim marks a PENDING request as being decided by an allowed caller.
func (q *Queue) claim(requestID string, allowed func(models.ApprovalRequest) bool) (models.ApprovalRequest, Hooks, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.requests[requestID]
	if !ok || !allowed(e.req) {
		return models.ApprovalRequest{}, Hooks{}, models.ErrNotAuthorized
	}
	if e.claimed || e.req.Status.Terminal() {
		return models.ApprovalRequest{}, Hooks{}, models.ErrAlreadyDecided
	}
	e.claimed = true
	return e.req, q.hooks[e.req.Type], nil
}

func (q *Queue) release(requestID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.requests[requestID].claimed = false
}

// finish commits a claimed request's terminal state. The hook has already
// run, so a failed write-through is logged and the decision stands.
func (q *Queue) finish(ctx context.Context, requestID string, status models.ApprovalStatus) models.ApprovalRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.requests[requestID]
	now := q.Now().UTC()
	e.req.Status = status
	e.req.DecidedAt = &now
	e.claimed = false

	if q.Store != nil {
		if err := q.Store.UpdateRequest(ctx, &e.req, models.PENDING); err != nil {
			q.Logger.Error("failed to persist decision",
				zap.String("request_id", requestID),
				zap.String("status", string(status)),
				zap.Error(err))
		}
	}

	delete(q.pending, duplicateKey(e.req.Type, e.req.RequesterId, e.req.Payload.Target()))
	delete(q.byAuth[e.req.AuthorityId], requestID)
	key := counterKey{e.req.Type, e.req.AuthorityId}
	if q.counts[key]--; q.counts[key] <= 0 {
		delete(q.counts, key)
	}
	return e.req
}

func (q *Queue) announce(ctx context.Context, req models.ApprovalRequest) {
	metrics.RecordDecision(string(req.Type), string(req.Status))

	eventType := notify.RequestDecided
	if req.Type == models.USER_REGISTRATION {
		eventType = notify.RegistrationDecided
	}
	_ = q.notifier.Notify(ctx, notify.Event{
		Type:       eventType,
		AccountId:  req.RequesterId,
		Reference:  req.Id,
		Data:       map[string]string{"type": string(req.Type), "status": string(req.Status)},
		OccurredAt: *req.DecidedAt,
	})
}

// Get returns a request by id.
func (q *Queue) Get(ctx context.Context, requestID string) (*models.ApprovalRequest, error) {
	q.mu.Lock()
	e, ok := q.requests[requestID]
	var req models.ApprovalRequest
	if ok {
		req = e.req
	}
	q.mu.Unlock()

	if ok {
		return &req, nil
	}
	if q.Store == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, models.ErrNotFound)
	}
	return q.Store.GetRequest(ctx, requestID)
}

// ListPending returns the authority's pending requests, oldest first. An empty
// type lists every type.
func (q *Queue) ListPending(_ context.Context, authorityID string, t models.ApprovalType) []models.ApprovalRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var result []models.ApprovalRequest
	for id := range q.byAuth[authorityID] {
		req := q.requests[id].req
		if t == "" || req.Type == t {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Id < result[j].Id
	})
	return result
}

// CountPending returns the number of pending requests of type t awaiting the
// authority. It reads a running counter.
func (q *Queue) CountPending(_ context.Context, t models.ApprovalType, authorityID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[counterKey{t, authorityID}]
}
