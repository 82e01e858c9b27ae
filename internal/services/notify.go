package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
)

// EventPublisher is the outbound side of the ledger export. *amqp.Client
// satisfies it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// ChangeListener is told whenever an owner's categories, transactions or
// budgets change.
type ChangeListener interface {
	OwnerChanged(ownerID int64)
}

// Option configures the side effects shared by the write services.
type Option func(*notifier)

func WithPublisher(p EventPublisher) Option {
	return func(n *notifier) { n.publisher = p }
}

func WithChangeListener(l ChangeListener) Option {
	return func(n *notifier) {
		if l != nil {
			n.listeners = append(n.listeners, l)
		}
	}
}

type notifier struct {
	publisher EventPublisher
	listeners []ChangeListener
}

func newNotifier(opts []Option) notifier {
	var n notifier
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

func (n notifier) changed(ownerID int64) {
	for _, l := range n.listeners {
		l.OwnerChanged(ownerID)
	}
}

// publish never fails the caller: the write is already committed.
func (n notifier) publish(ctx context.Context, typ amqp.EventType, ownerID, transactionID, categoryID int64) {
	if n.publisher == nil {
		return
	}
	ev := amqp.NewTransactionEvent(typ, ownerID, transactionID, categoryID)
	if err := n.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"type", typ, "user_id", ownerID, "transaction_id", transactionID, "error", err)
	}
}
