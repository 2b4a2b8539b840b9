package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"errnotice/internal/domain/entity"
)

// Hard ceilings for one delivery. They are deliberately not configurable so a
// slow tracker can never hold a worker longer than this.
const (
	connectTimeout = 10 * time.Second
	readTimeout    = 10 * time.Second
)

// Header names sent with every notice.
const (
	HeaderAPIKey      = "X-API-Key"
	HeaderContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// APIConfig contains configuration for the tracker HTTP client.
type APIConfig struct {
	// Endpoint is the notices URL of the tracker
	Endpoint string

	// APIKey is the project key sent in the X-API-Key header
	APIKey string

	// RequestsPerSecond throttles outgoing notices; 0 disables throttling
	RequestsPerSecond float64

	// Burst is the number of notices allowed back to back
	Burst int
}

// APIClient posts notices to the tracker. It is safe for concurrent use.
type APIClient struct {
	config      APIConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewAPIClient creates an APIClient with a 10 s connect timeout and a 10 s
// read timeout.
func NewAPIClient(config APIConfig) *APIClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &APIClient{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
		rateLimiter: NewRateLimiter(config.RequestsPerSecond, config.Burst),
	}
}

// Deliver sends one notice. It makes exactly one attempt.
//
// Returns:
//   - nil: tracker answered 2xx
//   - *RateLimitError: 429
//   - *ClientError: other 4xx
//   - *ServerError: 5xx
//   - *StatusError: any other non-2xx status
//   - wrapped error: serialization, throttling or transport failure
func (c *APIClient) Deliver(ctx context.Context, notice *entity.Notice) (Outcome, error) {
	start := time.Now()

	if err := c.rateLimiter.Allow(ctx); err != nil {
		return Outcome{Duration: time.Since(start)}, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(notice)
	if err != nil {
		return Outcome{Duration: time.Since(start)}, fmt.Errorf("marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Duration: time.Since(start)}, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set(HeaderAPIKey, c.config.APIKey)
	req.Header.Set(HeaderContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Duration: time.Since(start)}, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes+1))
	outcome := Outcome{StatusCode: resp.StatusCode, Duration: time.Since(start)}

	if outcome.Success() {
		return outcome, nil
	}
	return outcome, classifyStatus(resp, respBody)
}
