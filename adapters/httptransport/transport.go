package httptransport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"

	"golang.org/x/net/http2"
)

// maxBodyBytes bounds a response body read into memory.
const maxBodyBytes = 1 << 20

var _ interfaces.HTTPTransport = (*transport)(nil)

// StatusError is returned for a non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

// transport implements interfaces.HTTPTransport on an http.Client.
type transport struct {
	client *http.Client
}

// New creates an interfaces.HTTPTransport. Panics on nil client.
//
// Called from cmd/id5page; the uid fetcher and the extensions collector share it.
func New(client *http.Client) interfaces.HTTPTransport {
	return &transport{
		client: helpers.NilPanic(client, "httptransport.transport.go: http client is required"),
	}
}

// NewClient builds the client used against the identity service. With forceHTTP2 the client speaks
// HTTP/2 over TLS only; otherwise it negotiates the protocol per connection.
func NewClient(timeout time.Duration, forceHTTP2 bool) *http.Client {
	if forceHTTP2 {
		return &http.Client{
			Timeout: timeout,
			Transport: &http2.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		}
	}
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	// ConfigureTransport only fails when the transport was already configured for h2.
	_ = http2.ConfigureTransport(base)
	return &http.Client{Timeout: timeout, Transport: base}
}

func (t *transport) Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return t.do(req)
}

func (t *transport) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return t.do(req)
}

func (t *transport) do(req *http.Request) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
