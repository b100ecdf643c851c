package ipn

import (
	"fmt"
	"regexp"
	"strings"
)

// TIDs must be 1-32 characters.
const maxTIDLength = 32

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func sanitizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateTID returns the transaction id for an order in the format
// "<order id>-<billing last name>-<billing first name>".
//
// Although it is tempting to hash something into an opaque 32-char string, a
// human readable TID is the main link between transaction records on the
// mPAY24 side and orders on ours. The TID is stable for a given order and is
// never used for security decisions.
func GenerateTID(order Order) string {
	tid := fmt.Sprintf("%d-%s-%s",
		order.ID(),
		sanitizeName(order.BillingLastName()),
		sanitizeName(order.BillingFirstName()),
	)
	if len(tid) > maxTIDLength {
		tid = tid[:maxTIDLength]
	}
	return tid
}
