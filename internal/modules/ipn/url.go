package ipn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ConfirmationPath is the route mPAY24 pushes payment notifications to.
const ConfirmationPath = "/payments/mpay24/ipn"

// URLBuilder constructs per-order confirmation URLs. The URL alone, together
// with the stored transaction secret, must be sufficient to re-identify and
// re-authenticate the order later: notification calls are stateless.
type URLBuilder struct {
	base string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{base: strings.TrimRight(baseURL, "/")}
}

// Build returns the confirmation URL for order and persists the freshly
// generated transaction secret to the order metadata.
//
// A new secret is generated on every call, replacing any previous value. A
// second pass through checkout therefore invalidates notifications carrying
// the earlier secret; only the latest checkout attempt stays confirmable.
func (b *URLBuilder) Build(ctx context.Context, order Order) (string, error) {
	secret, err := GenerateTransactionSecret(order)
	if err != nil {
		return "", err
	}
	if err := order.SetMeta(ctx, TransactionSecretMeta, secret); err != nil {
		return "", fmt.Errorf("persist transaction secret: %w", err)
	}

	u, err := url.Parse(b.base + ConfirmationPath)
	if err != nil {
		return "", fmt.Errorf("parse confirmation url: %w", err)
	}

	q := u.Query()
	q.Set("wc_order_id", strconv.FormatInt(order.ID(), 10))
	q.Set("wc_order_key", order.Key())
	q.Set("wc_order_secret", secret)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
