package ipn

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Transaction status values pushed by mPAY24.
const (
	StatusBilled   = "billed"
	StatusError    = "error"
	StatusCredited = "credited"
	StatusReserved = "reserved"
	StatusReversed = "reversed"
)

// Reconciler maps a validated notification status onto an order state
// transition and applies it. The mapping is the safety-critical heart of the
// integration: a wrong entry moves money or (un)fulfills orders, so unknown
// statuses must never mutate anything.
type Reconciler struct {
	logger *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Apply performs the transition for the given status. Duplicate billed
// notifications for an already completed order are expected (mPAY24 retries
// until it gets an OK) and are a no-op success. Mutation failures reported by
// the order store propagate as errors.
func (r *Reconciler) Apply(ctx context.Context, order Order, status, tid, mpayTID string) error {
	switch strings.ToLower(status) {
	case StatusBilled:
		// The amount was settled. The transaction was successful.
		if order.Status() == OrderStatusCompleted {
			return nil
		}
		if err := order.MarkPaid(ctx, mpayTID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		return order.AddNote(ctx, fmt.Sprintf("mPAY24 transaction %s has been completed.", tid))

	case StatusError:
		// The transaction failed upon the last request.
		return order.UpdateStatus(ctx, OrderStatusFailed,
			fmt.Sprintf("mPAY24 transaction %s has failed.", tid))

	case StatusCredited:
		// The amount will be refunded.
		return order.UpdateStatus(ctx, OrderStatusRefunded,
			fmt.Sprintf("mPAY24 transaction %s has been refunded.", tid))

	case StatusReserved:
		// The amount was reserved but not settled yet.
		return order.UpdateStatus(ctx, OrderStatusOnHold,
			fmt.Sprintf("mPAY24 transaction %s has been reserved.", tid))

	case StatusReversed:
		// The reserved amount was released. The transaction was canceled.
		return order.UpdateStatus(ctx, OrderStatusCancelled,
			fmt.Sprintf("mPAY24 transaction %s has been canceled.", tid))

	default:
		r.logger.Error("unexpected mPAY24 transaction status relayed by gateway",
			"status", status,
			"tid", tid,
		)
		return ErrUnknownStatus
	}
}
