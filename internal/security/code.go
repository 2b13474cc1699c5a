package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a uniform random 6-digit verification code in
// [100000, 999999].
func GenerateCode() (string, error) {
	n, errRand := rand.Int(rand.Reader, big.NewInt(900000))
	if errRand != nil {
		return "", fmt.Errorf("security: generate code: %w", errRand)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
