package tigerweb

import "fmt"

// ErrorKind classifies a boundary fetch failure.
type ErrorKind string

const (
	// ErrTransport covers network-level failures (DNS, dial, timeout).
	ErrTransport ErrorKind = "transport"
	// ErrStatus covers non-2xx HTTP responses.
	ErrStatus ErrorKind = "status"
	// ErrDecode covers malformed bodies and missing expected JSON keys.
	ErrDecode ErrorKind = "decode"
)

// snippetLen bounds how much of a raw response body a FetchError carries.
const snippetLen = 200

// FetchError is a structured boundary fetch failure. It carries the
// failure kind, a message, and up to 200 bytes of the raw response body so
// the caller can log a useful diagnostic without retrying.
type FetchError struct {
	Kind    ErrorKind
	Message string
	Snippet string
}

func (e *FetchError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("tigerweb: %s: %s (body: %s...)", e.Kind, e.Message, e.Snippet)
	}
	return fmt.Sprintf("tigerweb: %s: %s", e.Kind, e.Message)
}

func snippet(body []byte) string {
	if len(body) > snippetLen {
		body = body[:snippetLen]
	}
	return string(body)
}
