package api

import (
	"bytes"
	"encoding/json"
	"net/url"
	"unicode/utf8"
)

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Endpoint describes one API endpoint: its root host, path template and
// query-parameter set. Stateless; safe for concurrent use.
type Endpoint struct {
	Root   string
	Path   string
	Params []Param
}

// BuildURI serializes the endpoint into a request URI.
func (e Endpoint) BuildURI() (string, error) {
	q := url.Values{}
	for _, p := range e.Params {
		q.Add(p.Key, p.Value)
	}
	uri := e.Root + e.Path
	if len(e.Params) > 0 {
		uri += "?" + q.Encode()
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", &InvalidURIError{URI: uri, Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", &InvalidURIError{URI: uri, Err: errMissingHost}
	}
	return uri, nil
}

var errMissingHost = &missingHostError{}

type missingHostError struct{}

func (*missingHostError) Error() string { return "missing scheme or host" }

// errorEnvelope is the shape upstream uses to report failures inside a 200
// body: {error, status, message}.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
}

// Parse turns a raw response body into a typed success value. The error
// envelope is decoded first, strictly: upstream error bodies are lax
// enough to mis-decode as partial success values, so envelope detection
// must take precedence. Only when the body is not an envelope is the
// success schema attempted.
func Parse[T any](uri string, body []byte) (*T, error) {
	if !utf8.Valid(body) {
		return nil, &InvalidTextError{URI: uri}
	}

	var env errorEnvelope
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err == nil && len(env.Error) > 0 {
		return nil, &APIError{URI: uri, Status: env.Status, Message: env.Message}
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, &DeserializeError{URI: uri, Raw: string(body), Err: err}
	}
	return &value, nil
}
