package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign computes the webhook signature: hex HMAC-SHA256 over
// "orderRef|amountMinor" with the shared webhook secret.
func Sign(orderRef string, amountMinor int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%d", orderRef, amountMinor)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time. A false
// result means the callback must not be trusted with any ledger effect.
func VerifySignature(orderRef string, amountMinor int64, signature, secret string) bool {
	want := Sign(orderRef, amountMinor, secret)
	return hmac.Equal([]byte(want), []byte(signature))
}
