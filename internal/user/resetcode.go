package user

import (
	"crypto/rand"
	"math/big"
)

const (
	ResetCodeLength   = 6
	resetCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateResetCode draws ResetCodeLength characters uniformly from
// [A-Za-z0-9] using the system CSPRNG.
func GenerateResetCode() (string, error) {
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	code := make([]byte, ResetCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
