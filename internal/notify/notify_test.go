package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu    sync.Mutex
	saved []*domain.Notification
	err   error
}

func (m *memoryStore) Create(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, n)
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type fakePublisher struct {
	mu       sync.Mutex
	channel  string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channel = channel
	if b, ok := message.([]byte); ok {
		f.payloads = append(f.payloads, b)
	}
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	return redis.NewIntResult(1, nil)
}

func TestDispatcher_DeliversToEveryDeliverer(t *testing.T) {
	store := &memoryStore{}
	publisher := &fakePublisher{}
	d := notify.NewDispatcher(zap.NewNop(), 16,
		notify.NewStoreDeliverer(store),
		notify.NewRedisDeliverer(publisher, "notifications"),
	)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		d.Notify(context.Background(), userID, "Task overdue", "Ship it", domain.NotificationTypeTaskOverdue, "/tasks/1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	require.Equal(t, 3, store.count())
	saved := store.saved[0]
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, string(domain.NotificationTypeTaskOverdue), saved.Type)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.IsRead)

	require.Len(t, publisher.payloads, 3)
	assert.Equal(t, "notifications", publisher.channel)
	var pushed map[string]string
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &pushed))
	assert.Equal(t, userID.String(), pushed["userId"])
	assert.Equal(t, "Task overdue", pushed["title"])
	assert.Equal(t, "/tasks/1", pushed["link"])
}

func TestDispatcher_FailingDelivererDoesNotStopOthers(t *testing.T) {
	store := &memoryStore{}
	publisher := &fakePublisher{err: errors.New("redis: connection refused")}
	d := notify.NewDispatcher(zap.NewNop(), 4,
		notify.NewRedisDeliverer(publisher, "notifications"),
		notify.NewStoreDeliverer(store),
	)

	d.Notify(context.Background(), uuid.New(), "Added to project", "Welcome", domain.NotificationTypeProjectUpdate, "")
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, store.count())
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := notify.NewDispatcher(zap.NewNop(), 0)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	store := &memoryStore{}
	d := notify.NewDispatcher(zap.NewNop(), 4, notify.NewStoreDeliverer(store))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), uuid.New(), "Late", "After shutdown", domain.NotificationTypeTaskAssigned, "")
	})
	assert.Equal(t, 0, store.count())
}

func TestRedisDeliverer_Error(t *testing.T) {
	r := notify.NewRedisDeliverer(&fakePublisher{err: errors.New("boom")}, "notifications")
	assert.Equal(t, "redis", r.Name())
	err := r.Deliver(context.Background(), &domain.Notification{UserID: uuid.New()})
	assert.ErrorContains(t, err, "failed to publish notification")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		notify.Discard.Notify(context.Background(), uuid.New(), "t", "m", domain.NotificationTypeTaskAssigned, "")
	})
}
