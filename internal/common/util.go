package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since every byte
// encodes as two hex characters.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRandDigits generates a string of n random decimal digits using
// crypto/rand. It is used for one-time verification codes.
func MakeRandDigits(n int) (string, error) {
	max := big.NewInt(10)
	buf := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf = append(buf, byte('0'+d.Int64()))
	}
	return string(buf), nil
}

// FormatAmount renders an amount given in the currency's minor unit (paise)
// as a human-readable major-unit string, e.g. 200 -> "2.00".
func FormatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
