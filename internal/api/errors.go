package api

import "fmt"

// TransportError wraps a network-level failure (connect, timeout, TLS) from
// the HTTP client.
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidURIError means request parameters did not serialize into a valid
// request URI.
type InvalidURIError struct {
	URI string
	Err error
}

func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid request URI %q: %v", e.URI, e.Err)
}

func (e *InvalidURIError) Unwrap() error { return e.Err }

// APIError is an upstream rejection: the response body decoded as the
// error envelope. The upstream message is preserved verbatim.
type APIError struct {
	URI     string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error from %s (status %d): %s", e.URI, e.Status, e.Message)
}

// InvalidTextError means the response body was not valid UTF-8.
type InvalidTextError struct {
	URI string
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("response from %s is not valid UTF-8", e.URI)
}

// DeserializeError means the body matched neither the error envelope nor
// the expected success schema. Raw carries the offending text for
// diagnosis.
type DeserializeError struct {
	URI string
	Raw string
	Err error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("cannot deserialize response from %s: %v", e.URI, e.Err)
}

func (e *DeserializeError) Unwrap() error { return e.Err }
