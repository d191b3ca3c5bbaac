// Command receiver is a reference webhook receiver: it accepts signed messages from
// the platform at POST /webhook, verifying each delivery's signature against the
// exact transmitted bytes before parsing, and optionally replies to each verified
// message with a signed acknowledgement.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/parleybot/webhook-channel/channel"
	"github.com/parleybot/webhook-channel/entry"
	"github.com/parleybot/webhook-channel/rawbody"
	"github.com/parleybot/webhook-channel/signature"
)

func main() {
	configPath := flag.String("config", "receiver.yaml", "path to the receiver config file")
	flag.Parse()

	app := entry.NewApplication("webhook-receiver")
	defer app.Stop()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		app.Fail("Failed to load config", err)
	}
	secret := os.Getenv(cfg.SecretEnv)
	if secret == "" {
		app.Fail("Channel secret is not set", fmt.Errorf("environment variable %s is empty", cfg.SecretEnv))
	}

	verifier := signature.NewVerifier(secret, app.Log())
	var sender channel.Sender
	if cfg.ReplyURL != "" {
		sender = channel.NewSender(secret, app.Log())
	}

	// The raw-body capture hook must run upstream of anything that parses the
	// body, so it's mounted ahead of the signature gate and the handler
	r := chi.NewRouter()
	r.Use(rawbody.Middleware)
	r.With(signature.Middleware(verifier)).Post("/webhook", handleMessage(cfg.ReplyURL, sender))

	entry.RunServer(app, r, cfg.BindAddr, cfg.ListenPort)
}

// inboundMessage mirrors the platform's outbound message shape; fields beyond
// these are channel-specific and left to the raw payload
type inboundMessage struct {
	UserID         string          `json:"userId"`
	MessagePayload json.RawMessage `json:"messagePayload"`
}

func handleMessage(replyURL string, sender channel.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		// The signature gate already verified these bytes; now it's safe to parse
		body, _, _ := rawbody.FromRequest(req)
		var msg inboundMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
		entry.Log(req).Info("Received webhook message", "userId", msg.UserID)

		if sender != nil {
			ack := channel.Message{
				UserID:  msg.UserID,
				Payload: map[string]any{"type": "ack"},
			}
			if err := sender.Send(req.Context(), replyURL, ack); err != nil {
				entry.Log(req).Error("Failed to send acknowledgement", "error", err)
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
