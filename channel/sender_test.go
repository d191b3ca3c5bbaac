package channel

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parleybot/webhook-channel/signature"
)

func newTestSender(secret string) Sender {
	return NewSender(secret, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_Send(t *testing.T) {
	t.Run("message is delivered with valid signature and headers", func(t *testing.T) {
		requests := 0
		var receivedBody []byte
		var receivedSignature, receivedDelivery, receivedContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, http.MethodPost, r.Method)
			var err error
			receivedBody, err = io.ReadAll(r.Body)
			assert.NoError(t, err)
			receivedSignature = r.Header.Get(signature.HeaderSignature)
			receivedDelivery = r.Header.Get(signature.HeaderDelivery)
			receivedContentType = r.Header.Get("content-type")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), srv.URL, Message{
			UserID:  "u-42",
			Payload: map[string]any{"type": "text", "text": "hello"},
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, requests)

		// The signature header must verify against the exact transmitted bytes
		assert.Equal(t, signature.Header(receivedBody, "channel-secret"), receivedSignature)
		assert.Equal(t, "application/json; charset=utf-8", receivedContentType)
		_, err = uuid.Parse(receivedDelivery)
		assert.NoError(t, err)

		// The body must carry the addressed user and payload
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(receivedBody, &decoded))
		assert.Equal(t, "u-42", decoded["userId"])
	})

	t.Run("extra properties are merged into the serialized object", func(t *testing.T) {
		var receivedBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), srv.URL, Message{
			UserID:  "u-42",
			Payload: "hello",
			Extra:   map[string]any{"conversationId": "c-7"},
		})
		assert.NoError(t, err)

		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(receivedBody, &decoded))
		assert.Equal(t, "u-42", decoded["userId"])
		assert.Equal(t, "hello", decoded["messagePayload"])
		assert.Equal(t, "c-7", decoded["conversationId"])
	})

	t.Run("non-2xx response yields a delivery error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such channel", http.StatusNotFound)
		}))
		defer srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), srv.URL, Message{UserID: "u-42", Payload: "hello"})
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})

	t.Run("transport failure yields a delivery error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), url, Message{UserID: "u-42", Payload: "hello"})
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})

	t.Run("redirects are followed with method and body preserved", func(t *testing.T) {
		finalRequests := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/hook-moved", http.StatusFound)
		})
		mux.HandleFunc("/hook-moved", func(w http.ResponseWriter, r *http.Request) {
			finalRequests++
			assert.Equal(t, http.MethodPost, r.Method)
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, signature.Header(body, "channel-secret"), r.Header.Get(signature.HeaderSignature))
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), srv.URL+"/hook", Message{UserID: "u-42", Payload: "hello"})
		assert.NoError(t, err)
		assert.Equal(t, 1, finalRequests)
	})

	t.Run("a redirect loop is abandoned with a delivery error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/hook", http.StatusTemporaryRedirect)
		}))
		defer srv.Close()

		s := newTestSender("channel-secret")
		err := s.Send(context.Background(), srv.URL+"/hook", Message{UserID: "u-42", Payload: "hello"})
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})
}

func Test_MessageMarshal(t *testing.T) {
	t.Run("extra keys take precedence over base fields", func(t *testing.T) {
		data, err := json.Marshal(Message{
			UserID:  "u-1",
			Payload: "hello",
			Extra:   map[string]any{"userId": "u-override"},
		})
		assert.NoError(t, err)

		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "u-override", decoded["userId"])
		assert.Equal(t, "hello", decoded["messagePayload"])
	})
}
