package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// FormatProductCode turns a sequence number into the external product code.
func FormatProductCode(n int64) string {
	return fmt.Sprintf("P%06d", n)
}

// RandomCode returns a short human-typable code, used for one-time
// passwords and generated initial passwords.
func RandomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
