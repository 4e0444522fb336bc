package vapid

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Decode converts a base64url-encoded application server key (unpadded,
// '-'/'_' alphabet) into the raw bytes the push subscription call expects.
func Decode(key string) ([]byte, error) {
	if len(key)%4 == 1 {
		return nil, fmt.Errorf("vapid: invalid key length %d", len(key))
	}
	if rem := len(key) % 4; rem != 0 {
		key += strings.Repeat("=", 4-rem)
	}
	key = strings.NewReplacer("-", "+", "_", "/").Replace(key)

	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("vapid: decode key: %w", err)
	}
	return raw, nil
}

// Encode is the inverse of Decode: unpadded base64url.
func Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
