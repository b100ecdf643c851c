package ipn

import (
	"net/url"
	"strconv"
)

// Notification is one inbound IPN call, parsed from the raw query string.
// It is transient: consumed once, producing either an order mutation or a
// rejection, and never persisted as-is (see EventLog for the audit trail).
type Notification struct {
	Status  string
	TID     string
	MpayTID string

	OrderID     int64
	OrderKey    string
	OrderSecret string
}

// ParseNotification builds a Notification from IPN query parameters.
// Requests missing any required parameter are rejected before they reach
// validation. A non-numeric wc_order_id parses to 0, which can never equal a
// resolved order id, so it fails the id match later on.
func ParseNotification(q url.Values) (Notification, error) {
	n := Notification{
		Status:      q.Get("STATUS"),
		TID:         q.Get("TID"),
		MpayTID:     q.Get("MPAYTID"),
		OrderKey:    q.Get("wc_order_key"),
		OrderSecret: q.Get("wc_order_secret"),
	}

	if n.Status == "" || n.TID == "" || n.MpayTID == "" {
		return Notification{}, ErrMissingField
	}
	if !q.Has("wc_order_id") || n.OrderKey == "" || n.OrderSecret == "" {
		return Notification{}, ErrMissingField
	}

	n.OrderID, _ = strconv.ParseInt(q.Get("wc_order_id"), 10, 64)

	return n, nil
}
