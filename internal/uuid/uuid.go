// Package uuid wraps google/uuid with the two identifier flavours the API uses:
// time-ordered v7 keys for rows and random v4 ids for payment correlation.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string, falling back to v4 if the random source fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// NewTransactionID returns a random v4 id used as the external correlation key
// with the payment gateway.
func NewTransactionID() string {
	return googleuuid.NewString()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
