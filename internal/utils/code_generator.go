package utils

import (
	"crypto/rand"
	"math/big"
)

const otpDigits = "0123456789"

// GenerateOTPCode generates a numeric one-time code of the given length
// (ex: 493027). Codes are drawn from crypto/rand.
func GenerateOTPCode(length int) string {
	result := make([]byte, length)

	charsetLen := big.NewInt(int64(len(otpDigits)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			// Fallback to a fixed digit if crypto/rand fails
			// This should never happen in practice
			randomIndex = big.NewInt(int64(i % len(otpDigits)))
		}
		result[i] = otpDigits[randomIndex.Int64()]
	}

	return string(result)
}
