// Package externalapi holds the request plumbing shared by the provider clients.
package externalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

const maxErrorBody = 512

// Fetcher performs rate-limited GET requests for one provider and classifies failures.
// Every client of the same provider must share one Fetcher so the limiter sees all calls.
type Fetcher struct {
	provider string
	client   *http.Client
	limiter  ratelimiter.RateLimiterInterface
	header   http.Header
}

// NewFetcher creates a Fetcher. header is sent with every request and may be nil.
func NewFetcher(provider string, client *http.Client, limiter ratelimiter.RateLimiterInterface, header http.Header) *Fetcher {
	return &Fetcher{provider: provider, client: client, limiter: limiter, header: header}
}

// Provider returns the provider name used in errors and logs.
func (f *Fetcher) Provider() string {
	return f.provider
}

// Get waits for the limiter, performs the request and returns the body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, op, rawURL string) ([]byte, error) {
	f.limiter.WaitIfNeeded(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, sourceerr.Contract(f.provider, op, err)
	}
	for k, vs := range f.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, sourceerr.Transient(f.provider, op, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "provider", f.provider, "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, sourceerr.FromStatus(f.provider, op, res.StatusCode, string(b))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, sourceerr.Transient(f.provider, op, err)
	}
	return body, nil
}

// GetJSON performs Get and decodes the body into out.
func (f *Fetcher) GetJSON(ctx context.Context, op, rawURL string, out any) error {
	body, err := f.Get(ctx, op, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return sourceerr.Contract(f.provider, op, fmt.Errorf("decode: %w", err))
	}
	return nil
}
