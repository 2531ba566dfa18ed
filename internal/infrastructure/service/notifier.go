package service

import (
	"context"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/pkg/circuitbreaker"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
	"github.com/stvt-hub/stvt-training-hub/pkg/retry"
)

// LogDispatcher implements notification.Dispatcher by writing notices to the
// structured log. The portal has no external messaging transport yet; trainees
// read their notices on the dashboard, so delivery is a log line plus the
// dashboard state the notice describes.
type LogDispatcher struct {
	logger *logger.Logger
}

// NewLogDispatcher creates a dispatcher that logs notices.
func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{
		logger: log.With(logger.Component("notifier")),
	}
}

// Notify records the notice.
func (d *LogDispatcher) Notify(ctx context.Context, notice notification.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !notice.Kind.IsValid() {
		return fmt.Errorf("%w: unknown template %q", notification.ErrDispatchFailed, notice.Kind)
	}

	d.logger.Info("notice dispatched",
		logger.TraineeID(notice.TraineeID),
		logger.String("template", notice.Kind.String()),
		logger.Any("payload", notice.Payload),
	)
	return nil
}

var _ notification.Dispatcher = (*LogDispatcher)(nil)

// ResilientDispatcher wraps a notification.Dispatcher with bounded retries and
// a circuit breaker. Delivery failures stay on the side-effect path: the
// caller logs them and moves on.
type ResilientDispatcher struct {
	inner   notification.Dispatcher
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewResilientDispatcher wraps inner with the notifier retry and breaker
// profiles.
func NewResilientDispatcher(inner notification.Dispatcher, log *logger.Logger) *ResilientDispatcher {
	breakerLog := log.With(logger.Component("notifier-breaker"))
	return &ResilientDispatcher{
		inner:   inner,
		retrier: retry.NotifierRetrier(),
		breaker: circuitbreaker.NotifierBreaker(func(name string, from, to circuitbreaker.State) {
			breakerLog.Warn("circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		logger: log.With(logger.Component("notifier")),
	}
}

// Notify delivers the notice through the breaker, retrying transient failures.
func (d *ResilientDispatcher) Notify(ctx context.Context, notice notification.Notice) error {
	err := d.breaker.Execute(ctx, func(ctx context.Context) error {
		return d.retrier.Do(ctx, func(ctx context.Context) error {
			if err := d.inner.Notify(ctx, notice); err != nil {
				return retry.Retryable(err)
			}
			return nil
		})
	})
	if err != nil {
		d.logger.Error("notice delivery failed",
			logger.TraineeID(notice.TraineeID),
			logger.String("template", notice.Kind.String()),
			logger.Err(err),
		)
		return fmt.Errorf("%w: %v", notification.ErrDispatchFailed, err)
	}
	return nil
}

var _ notification.Dispatcher = (*ResilientDispatcher)(nil)
