package sales

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewOrderNumber generates a human-readable, roughly time-sortable order
// number: ORD-YYYYMMDD-HHMMSS-NNNN. The random suffix disambiguates orders
// settled within the same second; the database unique constraint is the
// final arbiter and callers retry on collision.
func NewOrderNumber(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102-150405"), suffix)
}
