package notify

import (
	"context"

	"github.com/straye-as/project-ledger-api/internal/domain"
)

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, notification *domain.Notification) error
}

// StoreDeliverer writes notifications to the notifications table
type StoreDeliverer struct {
	store NotificationStore
}

func NewStoreDeliverer(store NotificationStore) *StoreDeliverer {
	return &StoreDeliverer{store: store}
}

func (s *StoreDeliverer) Name() string { return "store" }

func (s *StoreDeliverer) Deliver(ctx context.Context, n *domain.Notification) error {
	return s.store.Create(ctx, n)
}
