// Package channeltest provides shared test infrastructure for code that delivers
// webhook messages: it stands up a real HTTP endpoint that runs the full
// capture-and-verify path and records every delivery it receives, so that tests
// can assert on exactly what was transmitted.
package channeltest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/parleybot/webhook-channel/rawbody"
	"github.com/parleybot/webhook-channel/signature"
)

// Delivery records a single webhook request received by a test Receiver
type Delivery struct {
	// Body holds the exact bytes that were transmitted
	Body []byte

	// Encoding is the text encoding declared by the request
	Encoding string

	// DeliveryID is the value of the delivery-ID header, if any
	DeliveryID string

	// Verified indicates whether the request's signature header verified against
	// Body and the receiver's secret
	Verified bool

	// Fields is the body decoded as a JSON object, nil if the body was not one
	Fields map[string]any
}

// Receiver is a live HTTP endpoint that verifies and records webhook deliveries
type Receiver struct {
	srv      *httptest.Server
	verifier signature.Verifier

	mu         sync.Mutex
	deliveries []Delivery
}

// NewReceiver starts a webhook endpoint for the channel configured with the given
// shared secret. The endpoint responds 200 to deliveries whose signature verifies
// and 403 otherwise, recording both. It is closed automatically when the test is
// done.
func NewReceiver(t *testing.T, secret string) *Receiver {
	t.Helper()
	r := &Receiver{
		verifier: signature.NewVerifier(secret, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	r.srv = httptest.NewServer(rawbody.Middleware(http.HandlerFunc(r.handle)))
	t.Cleanup(r.srv.Close)
	return r
}

// URL returns the endpoint URL to deliver messages to
func (r *Receiver) URL() string {
	return r.srv.URL
}

func (r *Receiver) handle(w http.ResponseWriter, req *http.Request) {
	body, encoding, ok := rawbody.FromRequest(req)
	if !ok {
		http.Error(w, "raw request body was not captured", http.StatusInternalServerError)
		return
	}

	d := Delivery{
		Body:       body,
		Encoding:   encoding,
		DeliveryID: req.Header.Get(signature.HeaderDelivery),
		Verified:   r.verifier.Verify(req.Header.Get(signature.HeaderSignature), body),
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		d.Fields = fields
	}

	r.mu.Lock()
	r.deliveries = append(r.deliveries, d)
	r.mu.Unlock()

	if !d.Verified {
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Deliveries returns a copy of every delivery recorded so far, in arrival order
func (r *Receiver) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// AssertDeliveryCount fails the test with a descriptive error message if the number
// of recorded deliveries is not equal to wantCount, and otherwise returns the
// recorded deliveries
func (r *Receiver) AssertDeliveryCount(t *testing.T, wantCount int) []Delivery {
	t.Helper()
	deliveries := r.Deliveries()
	if len(deliveries) != wantCount {
		t.Fatalf("expected %d deliveries; got %d", wantCount, len(deliveries))
	}
	return deliveries
}
