package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Async hands events to the wrapped dispatcher on a separate goroutine with a
// bounded timeout. Failures are logged and dropped.
type Async struct {
	next    Dispatcher
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewAsync wraps next.
func NewAsync(next Dispatcher, timeout time.Duration, logger *zap.Logger) *Async {
	return &Async{next: next, timeout: timeout, logger: logger}
}

// Make sure we conform to the interface
var _ Dispatcher = (*Async)(nil)

// Notify returns immediately. The caller's cancellation does not reach the
// delivery, only the dispatcher timeout does.
func (a *Async) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.Notify(sendCtx, event); err != nil {
			a.logger.Warn("notification dropped",
				zap.String("event_type", string(event.Type)),
				zap.String("account_id", event.AccountId),
				zap.String("reference", event.Reference),
				zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every in-flight notification has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
