package utils

import (
	"crypto/rand"
	"math/big"
)

// TripCodeLength is the length of generated trip join codes
const TripCodeLength = 8

const tripCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTripCode returns a random 8-character alphanumeric join code.
// Uniqueness is enforced by the trips.trip_code constraint; callers retry
// on collision.
func GenerateTripCode() (string, error) {
	code := make([]byte, TripCodeLength)
	max := big.NewInt(int64(len(tripCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = tripCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
