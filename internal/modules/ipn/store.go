// Package ipn implements the mPAY24 Instant Payment Notification engine:
// confirmation URL construction, notification authentication and the
// order state reconciliation applied when a notification checks out.
//
// There are three different transaction identifiers in play:
//  1. the order id (integer), issued by the order store,
//  2. the TID (string), issued by this service when the payment page is
//     requested,
//  3. the MPAYTID (string), issued by mPAY24 and relayed back in
//     notifications.
package ipn

import (
	"context"
	"time"
)

// Order status values the reconciler reads and writes. They mirror the
// order store's own state machine.
const (
	OrderStatusPending   = "pending"
	OrderStatusOnHold    = "on-hold"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
	OrderStatusRefunded  = "refunded"
	OrderStatusCancelled = "cancelled"
)

// Order is the view of a single order the IPN engine needs. The engine never
// owns orders; it mutates them through this interface and relies on the
// implementation to serialize concurrent writes to the same order.
type Order interface {
	ID() int64
	Key() string
	// Total returns the order total as an exact decimal string, e.g. "49.90".
	Total() string
	Currency() string
	CreatedAt() time.Time
	Status() string
	BillingFirstName() string
	BillingLastName() string

	Meta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// MarkPaid transitions the order to completed, recording the processor
	// transaction id. Fails if the order is not in a payable state.
	MarkPaid(ctx context.Context, processorTxnID string) error
	UpdateStatus(ctx context.Context, status, note string) error
	AddNote(ctx context.Context, note string) error
}

// OrderStore resolves order keys and loads orders.
type OrderStore interface {
	// FindOrderIDByKey resolves a public order key to an order id.
	FindOrderIDByKey(ctx context.Context, key string) (int64, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
}
