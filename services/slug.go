package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	SlugLength   = 6
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewSlug returns n random characters from [A-Za-z0-9].
func NewSlug(n int) (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		buf[i] = slugAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
