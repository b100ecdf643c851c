package ipn

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// TransactionSecretMeta is the order metadata key the transaction secret is
// stored under.
const TransactionSecretMeta = "mpay24_transaction_secret"

// GenerateTransactionSecret derives the per-order secret that authenticates
// confirmation requests in lieu of a session.
//
// The digest input combines order id, total, currency and creation timestamp
// with a random 64-bit integer. The random component is the sole source of
// unguessability and comes from crypto/rand; everything else an attacker may
// know. Each call returns a fresh value, even for the same order.
func GenerateTransactionSecret(order Order) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	nonce := int64(binary.BigEndian.Uint64(buf[:]))

	digest := sha1.Sum([]byte(fmt.Sprintf("%d-%s-%s-%d-%d",
		order.ID(),
		order.Total(),
		order.Currency(),
		order.CreatedAt().Unix(),
		nonce,
	)))

	return hex.EncodeToString(digest[:]), nil
}
