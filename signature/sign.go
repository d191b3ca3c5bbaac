package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the lowercase hex digest of HMAC-SHA256 over the raw payload
// bytes, keyed by the UTF-8 encoding of secret. The result is deterministic: the
// same payload and secret always produce the same digest.
func Compute(payload []byte, secret string) string {
	hash := hmac.New(sha256.New, []byte(secret))
	hash.Write(payload)
	return hex.EncodeToString(hash.Sum(nil))
}

// Header returns the value to send in the signature header for the given payload
// and secret, in the form "sha256=<hex digest>". This exact string is what the
// receiving side recomputes and compares against during verification.
func Header(payload []byte, secret string) string {
	return prefix + Compute(payload, secret)
}
