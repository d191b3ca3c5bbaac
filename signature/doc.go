// Package signature implements HMAC signing and verification for webhook messages
// exchanged between the platform and a channel's HTTP endpoint: the sender is
// configured with the channel's shared secret and attaches an HMAC-SHA256 signature
// header to each outbound message, computed over the exact bytes of the request body.
// The receiving side uses the same secret value to verify the signature, thereby
// proving that the request originated from a party with access to the shared secret
// (while refraining from sending the secret itself over the wire).
//
// Verification must run over the exact byte sequence that was transmitted: parsing
// the body as JSON and re-serializing it will, in general, produce different bytes
// and a different signature. See the rawbody package for capturing the transmitted
// bytes before any parsing middleware runs.
package signature
