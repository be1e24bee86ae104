package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// generateCode returns a random numeric code of the given length with no
// leading zero, used for both OTPs and trip verification codes.
func generateCode(length int) (string, error) {
	lower := pow10(length - 1)
	span := pow10(length) - lower

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(lower+n.Int64(), 10), nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
