package ipn

import (
	"context"
	"crypto/subtle"
	"log/slog"
)

// Validator authenticates inbound notifications against locally stored
// transaction state. It is stateless and safe for concurrent use.
type Validator struct {
	store   OrderStore
	subnets []string
	logger  *slog.Logger
}

// NewValidator builds a validator. subnets is the CIDR allow-list for
// notification source addresses; an empty list disables the source check
// entirely, which is a security-relevant opt-out and should only be used when
// the remote address cannot be determined reliably.
func NewValidator(store OrderStore, subnets []string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{store: store, subnets: subnets, logger: logger}
}

// Validate authenticates n, short-circuiting at the first failure, and
// returns the order it refers to.
//
// Only the subnet rejection is logged (at warning level, with the offending
// address); all other rejections stay silent so that probing the endpoint
// yields no signal. Callers must collapse any returned error into a generic
// response.
func (v *Validator) Validate(ctx context.Context, n Notification, remoteAddr string) (Order, error) {
	id, err := v.store.FindOrderIDByKey(ctx, n.OrderKey)
	if err != nil {
		return nil, ErrUnknownOrderKey
	}

	// Defends against key/id mismatch spoofing: the supplied id must equal
	// the id the key resolves to.
	if id != n.OrderID {
		return nil, ErrOrderIDMismatch
	}

	order, err := v.store.GetOrder(ctx, id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	stored, err := order.Meta(ctx, TransactionSecretMeta)
	if err != nil || stored == "" {
		return nil, ErrSecretMismatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(n.OrderSecret)) != 1 {
		return nil, ErrSecretMismatch
	}

	if len(v.subnets) > 0 && !IsInAnySubnet(remoteAddr, v.subnets) {
		v.logger.Warn("confirmation request blocked due to an unrecognized remote address",
			"remote_addr", remoteAddr,
			"tid", n.TID,
		)
		return nil, ErrAddressNotAllowed
	}

	return order, nil
}
