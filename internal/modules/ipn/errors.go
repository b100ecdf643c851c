package ipn

import "errors"

// Validation and reconciliation failures. The HTTP boundary collapses all of
// them into a generic ERROR response; the distinct values exist so that
// internal callers and tests can tell the causes apart.
var (
	ErrMissingField      = errors.New("ipn: required field missing")
	ErrUnknownOrderKey   = errors.New("ipn: order key does not resolve to an order")
	ErrOrderIDMismatch   = errors.New("ipn: order id does not match order key")
	ErrOrderNotFound     = errors.New("ipn: order not found")
	ErrSecretMismatch    = errors.New("ipn: transaction secret mismatch")
	ErrAddressNotAllowed = errors.New("ipn: remote address not allow-listed")
	ErrUnknownStatus     = errors.New("ipn: unknown transaction status")
)
