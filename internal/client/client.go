// Package client implements the HTTP collaborator clients the checkout saga
// depends on: cart, product catalog, shipping, and payment. Each client talks
// the collaborator's documented JSON contract and maps its failures onto the
// checkout error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the collaborator endpoints as host:port pairs and the per-call
// timeout. A timeout is treated by callers exactly like a hard failure of the
// corresponding saga step.
type Config struct {
	CartAddr     string
	CatalogAddr  string
	ShippingAddr string
	PaymentAddr  string
	Timeout      time.Duration
}

// NewHTTPClient returns the shared HTTP client for collaborator calls, with
// trace/metric propagation on the transport.
func NewHTTPClient(timeout time.Duration, opts ...otelhttp.Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
	}
}

// getJSON issues a GET and decodes a 200 response into out. It returns the
// status code so callers can map 404s onto domain errors.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response")
	}
	return resp.StatusCode, nil
}

// postJSON issues a POST with a JSON body and decodes the response into out.
// Non-2xx responses are returned as (status, body snippet, nil) so callers
// decide how to classify them.
func postJSON(ctx context.Context, hc *http.Client, url string, in, out any) (int, string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, "", errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, string(snippet), nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", errors.Wrap(err, "decode response")
		}
	}
	return resp.StatusCode, "", nil
}
