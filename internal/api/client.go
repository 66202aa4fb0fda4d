package api

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// Client is the outbound HTTP transport: a fully-formed GET in, body bytes
// or a transport error out. Connection reuse and timeouts are fixed at
// construction; retry policy belongs to callers.
type Client struct {
	client *fasthttp.Client
}

func NewClient() *Client {
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Get fetches the URI and returns a copy of the response body. A non-2xx
// status is not an error here: upstream reports failures inside the body
// via the error envelope, which the endpoint parser inspects.
func (c *Client) Get(ctx context.Context, uri string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, &TransportError{URI: uri, Err: err}
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, &TransportError{URI: uri, Err: err}
		}
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
