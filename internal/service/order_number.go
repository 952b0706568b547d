package service

import (
	"crypto/rand"
	"fmt"
)

const (
	orderNumberPrefix  = "ORD-"
	orderNumberLength  = 8
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxOrderNumberAttempts bounds the collision-retry loop. With 36^8
	// possible numbers, hitting it means something is badly wrong.
	maxOrderNumberAttempts = 10
)

// newOrderNumber returns a candidate order number of the form
// ORD- followed by eight random uppercase alphanumerics. Uniqueness is
// checked against existing records by the caller.
func newOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}

	out := make([]byte, orderNumberLength)
	for i, b := range buf {
		out[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}

	return orderNumberPrefix + string(out), nil
}
