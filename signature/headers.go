package signature

const (
	// HeaderSignature is the name of the header that carries the HMAC signature
	// computed over the raw request body, formatted as "sha256=" followed by the
	// lowercase hex digest
	HeaderSignature = "x-webhook-signature"

	// HeaderDelivery is the name of the header that carries a unique ID generated
	// for each outbound delivery
	HeaderDelivery = "x-webhook-delivery"
)

// prefix identifies the digest algorithm in a signature header value
const prefix = "sha256="
