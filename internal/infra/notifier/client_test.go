package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"errnotice/internal/domain/entity"
)

func testNotice() *entity.Notice {
	return &entity.Notice{
		Notifier: entity.NewNotifierIdentity("key-123", "shop", ""),
		Error: entity.ErrorDescriptor{
			Class:     "*errors.errorString",
			Message:   "boom",
			Backtrace: []entity.Frame{{File: "main.go", Number: 3, Method: "main.main"}},
		},
		Request: entity.RequestContext{
			URL:     "/orders",
			Params:  map[string]string{"q": "value"},
			CGIData: map[string]string{"REQUEST_METHOD": "GET"},
		},
	}
}

func TestAPIClient_Deliver_Success(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key-123", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 4)
		for _, key := range []string{"notifier", "error", "server", "request"} {
			assert.Contains(t, body, key)
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewAPIClient(APIConfig{Endpoint: server.URL, APIKey: "key-123"})

	outcome, err := client.Deliver(context.Background(), testNotice())

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, outcome.StatusCode)
	assert.True(t, outcome.Success())
	assert.Equal(t, int32(1), received.Load())
}

func TestAPIClient_Deliver_StatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		check      func(t *testing.T, err error)
	}{
		{
			name:   "204 is success",
			status: http.StatusNoContent,
			check:  func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:   "401 is a client error",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var clientErr *ClientError
				require.True(t, errors.As(err, &clientErr))
				assert.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
			},
		},
		{
			name:       "429 is a rate limit error",
			status:     http.StatusTooManyRequests,
			retryAfter: "30",
			check: func(t *testing.T, err error) {
				var rateLimitErr *RateLimitError
				require.True(t, errors.As(err, &rateLimitErr))
				assert.Equal(t, 30*time.Second, rateLimitErr.RetryAfter)
			},
		},
		{
			name:   "500 is a server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				require.True(t, errors.As(err, &serverErr))
				assert.Equal(t, 500, serverErr.StatusCode)
				assert.Contains(t, err.Error(), "500")
			},
		},
		{
			name:   "304 is unexpected",
			status: http.StatusNotModified,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusNotModified, StatusCode(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			client := NewAPIClient(APIConfig{Endpoint: server.URL, APIKey: "k"})
			outcome, err := client.Deliver(context.Background(), testNotice())

			assert.Equal(t, tt.status, outcome.StatusCode)
			tt.check(t, err)
		})
	}
}

func TestAPIClient_Deliver_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewAPIClient(APIConfig{Endpoint: url, APIKey: "k"})
	outcome, err := client.Deliver(context.Background(), testNotice())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute http request")
	assert.Equal(t, 0, outcome.StatusCode)
	assert.Equal(t, 0, StatusCode(err))
}

func TestAPIClient_Deliver_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewAPIClient(APIConfig{Endpoint: server.URL, APIKey: "k"})
	_, err := client.Deliver(ctx, testNotice())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAPIClient_Deliver_InvalidEndpoint(t *testing.T) {
	client := NewAPIClient(APIConfig{Endpoint: "://bad", APIKey: "k"})

	_, err := client.Deliver(context.Background(), testNotice())

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "create http request"))
}

func TestAPIClient_Timeouts(t *testing.T) {
	client := NewAPIClient(APIConfig{Endpoint: "http://example.invalid"})

	transport, ok := client.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, 10*time.Second, transport.TLSHandshakeTimeout)
	assert.Equal(t, 20*time.Second, client.httpClient.Timeout)
	assert.Equal(t, rate.Inf, client.rateLimiter.limiter.Limit())
}
