// Package notify delivers user notifications without making callers wait.
//
// Services hold a Sink and call Notify; a Dispatcher queues the message and a
// background worker hands it to every configured Deliverer (the notifications
// table, and optionally a Redis channel for real-time push).
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"go.uber.org/zap"
)

// Sink accepts notifications fire-and-forget
type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, notificationType domain.NotificationType, link string)
}

// Deliverer sends one notification to a destination
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, n *domain.Notification) error
}

// Discard is a Sink that drops everything
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(context.Context, uuid.UUID, string, string, domain.NotificationType, string) {}

// Dispatcher is a buffered, single-worker Sink
type Dispatcher struct {
	queue           chan *domain.Notification
	deliverers      []Deliverer
	logger          *zap.Logger
	deliveryTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with the given queue size
func NewDispatcher(logger *zap.Logger, bufferSize int, deliverers ...Deliverer) *Dispatcher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	d := &Dispatcher{
		queue:           make(chan *domain.Notification, bufferSize),
		deliverers:      deliverers,
		logger:          logger,
		deliveryTimeout: 5 * time.Second,
		done:            make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues a notification. It never blocks: when the queue is full or the
// dispatcher is closed the notification is dropped and logged.
func (d *Dispatcher) Notify(_ context.Context, userID uuid.UUID, title, message string, notificationType domain.NotificationType, link string) {
	n := &domain.Notification{
		UserID:  userID,
		Type:    string(notificationType),
		Title:   title,
		Message: message,
		Link:    link,
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dispatcher closed, dropping notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(notificationType)),
		)
		return
	}

	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(notificationType)),
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n *domain.Notification) {
	for _, deliverer := range d.deliverers {
		ctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
		if err := deliverer.Deliver(ctx, n); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("deliverer", deliverer.Name()),
				zap.String("user_id", n.UserID.String()),
				zap.String("type", n.Type),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close stops accepting notifications and waits until queued ones are delivered
// or ctx is done
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
