package signature

import (
	"net/http"

	"github.com/parleybot/webhook-channel/rawbody"
)

// Middleware injects HTTP handler logic that rejects inbound requests whose
// signature header fails verification, responding with 403 before the wrapped
// handler runs. It reads the transmitted bytes via rawbody.FromRequest, so
// rawbody.Middleware (or an equivalent capture hook) must be mounted upstream;
// a request with no captured body is rejected as unverifiable.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _, ok := rawbody.FromRequest(r)
			if !ok {
				http.Error(w, "raw request body was not captured", http.StatusForbidden)
				return
			}
			if !v.Verify(r.Header.Get(HeaderSignature), body) {
				http.Error(w, "invalid signature", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
