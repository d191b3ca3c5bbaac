package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/parleybot/webhook-channel/signature"
)

// ErrDeliveryFailed is returned by Send when a message could not be delivered,
// whether due to a transport-level failure or a non-2xx response from the endpoint
var ErrDeliveryFailed = errors.New("delivery failed")

const (
	// sendTimeout bounds each outbound request; expiry surfaces as a transport
	// error from Send
	sendTimeout = 60 * time.Second

	// maxRedirects caps how many times a delivery will follow a redirect response
	maxRedirects = 10
)

// Sender delivers signed messages to a channel's webhook endpoint
type Sender interface {
	// Send serializes msg, signs the serialized bytes with the channel secret, and
	// POSTs them to channelURL. It makes exactly one delivery attempt (following
	// redirects) and returns exactly one result: nil on a 2xx response, or an
	// ErrDeliveryFailed-wrapped error otherwise. Retry policy belongs to the
	// caller.
	Send(ctx context.Context, channelURL string, msg Message) error
}

// NewSender initializes a Sender for a channel configured with the given shared
// secret, writing delivery diagnostics to logger. A nil logger falls back to
// slog.Default().
func NewSender(secret string, logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &sender{
		secret: secret,
		logger: logger,
		client: &http.Client{
			Timeout: sendTimeout,

			// Redirects are handled in Send so that the POST method and signed
			// body are re-sent verbatim: the default client rewrites POST to GET
			// on 301/302/303
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type sender struct {
	secret string
	logger *slog.Logger
	client *http.Client
}

func (s *sender) Send(ctx context.Context, channelURL string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	// Sign the exact bytes that will be transmitted, and tag the delivery with a
	// unique ID that stays stable across redirects
	signatureHeader := signature.Header(payload, s.secret)
	deliveryId := uuid.NewString()

	url := channelURL
	var res *http.Response
	for redirects := 0; ; redirects++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to prepare request: %w", err)
		}
		req.Header.Set("content-type", "application/json; charset=utf-8")
		req.Header.Set(signature.HeaderSignature, signatureHeader)
		req.Header.Set(signature.HeaderDelivery, deliveryId)

		res, err = s.client.Do(req)
		if err != nil {
			s.logger.Error("Failed to deliver webhook message",
				"url", url,
				"deliveryId", deliveryId,
				"error", err,
			)
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}

		location := res.Header.Get("location")
		if !isRedirect(res.StatusCode) || location == "" {
			break
		}
		io.Copy(io.Discard, res.Body)
		res.Body.Close()

		if redirects == maxRedirects {
			s.logger.Error("Abandoning webhook delivery",
				"url", url,
				"deliveryId", deliveryId,
				"redirects", redirects,
			)
			return fmt.Errorf("%w: stopped after %d redirects", ErrDeliveryFailed, maxRedirects)
		}
		next, err := res.Request.URL.Parse(location)
		if err != nil {
			return fmt.Errorf("%w: invalid redirect location %q", ErrDeliveryFailed, location)
		}
		url = next.String()
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		s.logger.Error("Webhook endpoint rejected message",
			"url", url,
			"deliveryId", deliveryId,
			"status", res.StatusCode,
			"body", string(body),
		)
		return fmt.Errorf("%w: got status %d", ErrDeliveryFailed, res.StatusCode)
	}
	return nil
}

func isRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

var _ Sender = (*sender)(nil)
