package signature

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parleybot/webhook-channel/rawbody"
)

func Test_Middleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := NewVerifier("channel-secret", logger)

	handled := false
	h := rawbody.Middleware(Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("request with valid signature reaches the handler", func(t *testing.T) {
		handled = false
		payload := []byte(`{"text":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
		req.Header.Set(HeaderSignature, Header(payload, "channel-secret"))
		res := httptest.NewRecorder()
		h.ServeHTTP(res, req)
		assert.True(t, handled)
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("request without a signature is rejected", func(t *testing.T) {
		handled = false
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"text":"hello"}`)))
		res := httptest.NewRecorder()
		h.ServeHTTP(res, req)
		assert.False(t, handled)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("request with a tampered body is rejected", func(t *testing.T) {
		handled = false
		payload := []byte(`{"text":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"text":"jello"}`)))
		req.Header.Set(HeaderSignature, Header(payload, "channel-secret"))
		res := httptest.NewRecorder()
		h.ServeHTTP(res, req)
		assert.False(t, handled)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("request is rejected when the capture hook did not run", func(t *testing.T) {
		handled = false
		bare := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handled = true
		}))
		payload := []byte(`{"text":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
		req.Header.Set(HeaderSignature, Header(payload, "channel-secret"))
		res := httptest.NewRecorder()
		bare.ServeHTTP(res, req)
		assert.False(t, handled)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}
