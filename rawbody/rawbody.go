// Package rawbody captures the exact transmitted bytes of an inbound HTTP request
// before any JSON-parsing transformation runs, and makes them available for the rest
// of the request lifecycle. Signature verification is computed over these exact
// bytes: parsing and re-serializing the body would, in general, produce a different
// byte sequence and break verification, so hosts must mount the capture hook
// upstream of any body-parsing handler.
package rawbody

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	// ContextKeyBody is the request context key under which the raw body bytes are
	// stored
	ContextKeyBody = "rawBody"

	// ContextKeyEncoding is the request context key under which the body's declared
	// text encoding is stored
	ContextKeyEncoding = "rawBodyEncoding"
)

// DefaultEncoding is assumed when a request declares no charset
const DefaultEncoding = "utf-8"

// Capture attaches the raw body bytes and their declared text encoding to the
// request, storing them as request-scoped context values under ContextKeyBody and
// ContextKeyEncoding. It returns the request that carries them; the stored values
// are discarded along with the request when handling completes.
func Capture(r *http.Request, body []byte, encoding string) *http.Request {
	ctx := context.WithValue(r.Context(), ContextKeyBody, body)
	ctx = context.WithValue(ctx, ContextKeyEncoding, encoding)
	return r.WithContext(ctx)
}

// FromRequest retrieves the raw body bytes and encoding previously attached via
// Capture. ok is false if no capture hook ran for this request.
func FromRequest(r *http.Request) (body []byte, encoding string, ok bool) {
	body, ok = r.Context().Value(ContextKeyBody).([]byte)
	if !ok {
		return nil, "", false
	}
	encoding, ok = r.Context().Value(ContextKeyEncoding).(string)
	if !ok {
		return nil, "", false
	}
	return body, encoding, true
}

// Middleware injects the capture hook into a net/http handler chain: it reads the
// full request body, records the exact bytes along with the encoding declared by
// the Content-Type charset parameter, and then restores r.Body so that downstream
// handlers can still parse the body as usual
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body.Close()

		r = Capture(r, body, encodingFromContentType(r.Header.Get("content-type")))
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// encodingFromContentType resolves the text encoding declared by a Content-Type
// header value, e.g. "application/json; charset=utf-8". Charset names are
// case-insensitive, so the result is canonicalized to lowercase.
func encodingFromContentType(contentType string) string {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if charset, ok := params["charset"]; ok && charset != "" {
				return strings.ToLower(charset)
			}
		}
	}
	return DefaultEncoding
}
