// Package signature implements the signed-webhook request
// authentication protocol: an HMAC-SHA256 signature over the request
// body plus a millisecond timestamp, with a bounded replay window.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderSignature carries the hex digest, prefixed with "sha256=".
	HeaderSignature = "X-Signature"
	// HeaderTimestamp carries the signing time as epoch milliseconds.
	HeaderTimestamp = "X-Timestamp"

	headerPrefix = "sha256="
)

var (
	ErrMissingSignatureOrTimestamp = errors.New("missing signature or timestamp")
	ErrInvalidTimestamp            = errors.New("timestamp too old or invalid")
	ErrInvalidSignature            = errors.New("invalid signature")
)

// Verifier checks inbound request signatures against a shared secret.
// Configuration is injected at construction; the verifier holds no
// mutable state and is safe for concurrent use.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify validates presence, freshness and cryptographic correctness
// of the signature headers for the given raw body.
func (v *Verifier) Verify(rawBody []byte, signatureHeader, timestampHeader string, now time.Time) error {
	if signatureHeader == "" || timestampHeader == "" {
		return ErrMissingSignatureOrTimestamp
	}

	// Malformed timestamps are rejected outright rather than silently
	// passing the freshness check.
	ts, err := parseTimestamp(timestampHeader)
	if err != nil {
		return ErrInvalidTimestamp
	}

	skew := now.UnixMilli() - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > v.tolerance.Milliseconds() {
		return ErrInvalidTimestamp
	}

	digest, ok := ParseHeader(signatureHeader)
	if !ok {
		return ErrInvalidSignature
	}

	expected := Compute(v.secret, rawBody, timestampHeader)
	if !hmac.Equal([]byte(digest), []byte(expected)) {
		return ErrInvalidSignature
	}

	return nil
}

// ParseHeader strips the mandatory "sha256=" prefix and returns the
// digest if the remainder is a well-formed SHA-256 hex string.
func ParseHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, headerPrefix) {
		return "", false
	}

	digest := header[len(headerPrefix):]
	if len(digest) != sha256.Size*2 {
		return "", false
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", false
	}

	return digest, true
}

// Compute returns the hex HMAC-SHA256 digest of the canonical payload
// for the given body and timestamp string.
func Compute(secret string, rawBody []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(Payload(rawBody, timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// Payload builds the canonical signed payload: the body as compact
// JSON text, concatenated directly with the decimal timestamp string.
// Key order is preserved, so the result matches what a client computes
// over its own compact serialization. A non-JSON body is signed as-is.
func Payload(rawBody []byte, timestamp string) []byte {
	var compacted bytes.Buffer
	body := rawBody
	if err := json.Compact(&compacted, rawBody); err == nil {
		body = compacted.Bytes()
	}

	payload := make([]byte, 0, len(body)+len(timestamp))
	payload = append(payload, body...)
	payload = append(payload, timestamp...)
	return payload
}

func parseTimestamp(value string) (int64, error) {
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if ts < 0 {
		return 0, errors.New("negative timestamp")
	}
	return ts, nil
}
