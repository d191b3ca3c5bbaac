package signature

import (
	"crypto/hmac"
	"log/slog"
)

// Verifier checks the signature header presented by an inbound webhook request
// against the channel's shared secret
type Verifier interface {
	// Verify reports whether signatureHeader is the correct signature for the raw
	// payload bytes. It fails closed: a missing or empty header, or any mismatch,
	// yields false. Verification failures are logged, never raised; the caller
	// decides how to reject the request.
	Verify(signatureHeader string, payload []byte) bool
}

// NewVerifier initializes a Verifier for a channel configured with the given shared
// secret, writing diagnostics for rejected signatures to logger. A nil logger falls
// back to slog.Default().
func NewVerifier(secret string, logger *slog.Logger) Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &verifier{
		secret: secret,
		logger: logger,
	}
}

type verifier struct {
	secret string
	logger *slog.Logger
}

func (v *verifier) Verify(signatureHeader string, payload []byte) bool {
	if signatureHeader == "" {
		v.logger.Warn("Rejecting webhook payload with no signature header")
		return false
	}

	// Recompute the expected header value over the exact payload bytes, then
	// compare in constant time so that verification latency reveals nothing about
	// how much of the signature matched
	calculated := Header(payload, v.secret)
	if !hmac.Equal([]byte(signatureHeader), []byte(calculated)) {
		v.logger.Warn("Rejecting webhook payload with mismatched signature",
			"received", signatureHeader,
			"calculated", calculated,
		)
		return false
	}
	return true
}

var _ Verifier = (*verifier)(nil)
