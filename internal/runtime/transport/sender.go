package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxResponseBody caps how much of a catalog response is read.
const MaxResponseBody = 1 << 20

// Request is a single call to the catalog service.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the status and body returned by the catalog service.
type Response struct {
	StatusCode int
	Body       []byte
}

// Sender performs catalog round trips. An error means no response was
// received; any HTTP status, including 5xx, is returned as a Response.
type Sender interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// HTTPSender sends requests with a net/http client.
type HTTPSender struct {
	client *http.Client
}

// NewHTTPSender returns a sender bounded by timeout. Zero disables the
// client-side timeout.
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	return &HTTPSender{client: &http.Client{Timeout: timeout}}
}

// NewHTTPSenderWithClient wraps an existing client, for example one with a
// custom RoundTripper.
func NewHTTPSenderWithClient(client *http.Client) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{client: client}
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, req Request) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}

	return Response{StatusCode: resp.StatusCode, Body: payload}, nil
}
