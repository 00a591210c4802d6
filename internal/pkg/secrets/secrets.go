// Package secrets generates the opaque tokens that authorize anonymous
// match responses. Tokens carry no structure; possession is the only proof.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func NewOpaqueToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("invalid token size")
	}

	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// NewMatchSecret returns the per-match token. Recipients combine it with
// their own offer secret to respond, so neither half alone is enough.
func NewMatchSecret() (string, error) {
	return NewOpaqueToken(16)
}
