package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"errnotice/internal/domain/entity"
	"errnotice/internal/handler/http/requestid"
	"errnotice/internal/infra/notifier"
	"errnotice/internal/infra/worker"
	"errnotice/internal/observability/logging"
	"errnotice/internal/resilience/circuitbreaker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"
)

func newTrackerServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newHTTPService(t *testing.T, endpoint string, opts ...Option) (*Service, *logStore) {
	t.Helper()
	logger, logs := newCaptureLogger()
	cfg := newTestConfig()
	cfg.endpoint = endpoint
	client := notifier.NewAPIClient(notifier.APIConfig{Endpoint: cfg.Endpoint(), APIKey: cfg.APIKey()})
	opts = append([]Option{WithLogger(logger), WithInspector(fakeInspector{})}, opts...)
	return New(cfg, InlineExecutor, client, opts...), logs
}

func TestService_Notify_2xxLogsNoError(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, hits := newTrackerServer(t, status)
			svc, logs := newHTTPService(t, server.URL)
			before := testutil.ToFloat64(noticeSentTotal.WithLabelValues("success"))

			svc.Notify(context.Background(), "/orders", errors.New("boom"))

			assert.Equal(t, int32(1), hits.Load())
			assert.Empty(t, logs.atLevel(slog.LevelError))
			assert.Equal(t, before+1, testutil.ToFloat64(noticeSentTotal.WithLabelValues("success")))
		})
	}
}

func TestService_Notify_500LogsOneError(t *testing.T) {
	server, _ := newTrackerServer(t, http.StatusInternalServerError)
	svc, logs := newHTTPService(t, server.URL)
	before := testutil.ToFloat64(noticeFailuresTotal.WithLabelValues(reasonServerError))

	svc.Notify(context.Background(), "/orders", errors.New("boom"))

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 1)
	assert.Contains(t, errorsLogged[0].Message, "500")
	assert.Equal(t, int64(500), errorsLogged[0].Attrs["status_code"].Int64())
	assert.Equal(t, "*errors.errorString", errorsLogged[0].Attrs[logging.KeyErrorClass].String())
	assert.Equal(t, "/orders", errorsLogged[0].Attrs[logging.KeyURL].String())
	assert.NotEmpty(t, errorsLogged[0].Attrs[logging.KeyNoticeID].String())
	assert.Equal(t, before+1, testutil.ToFloat64(noticeFailuresTotal.WithLabelValues(reasonServerError)))
}

func TestService_Notify_4xxLogsOneError(t *testing.T) {
	server, _ := newTrackerServer(t, http.StatusUnauthorized)
	svc, logs := newHTTPService(t, server.URL)

	svc.Notify(context.Background(), "/orders", errors.New("boom"))

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, reasonClientError, errorsLogged[0].Attrs["reason"].String())
	assert.Equal(t, int64(401), errorsLogged[0].Attrs["status_code"].Int64())
}

func TestService_Notify_TransportErrorLogsOneError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	svc, logs := newHTTPService(t, endpoint)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), "/orders", errors.New("boom"))
	})

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, reasonTransport, errorsLogged[0].Attrs["reason"].String())
	assert.NotContains(t, errorsLogged[0].Attrs, "status_code")
}

func TestService_Notify_ExcludedIsSilent(t *testing.T) {
	server, hits := newTrackerServer(t, http.StatusOK)
	logger, logs := newCaptureLogger()
	cfg := newTestConfig()
	cfg.excluded = []string{"*errors.errorString"}
	exec := &countingExecutor{}
	svc := New(cfg, exec,
		notifier.NewAPIClient(notifier.APIConfig{Endpoint: server.URL, APIKey: "k"}),
		WithLogger(logger), WithInspector(fakeInspector{}))
	before := testutil.ToFloat64(noticeDispatchedTotal)

	svc.Notify(context.Background(), "/orders", errors.New("ignored"))

	assert.Equal(t, int32(0), exec.submits.Load())
	assert.Equal(t, int32(0), hits.Load())
	assert.Empty(t, logs.all())
	assert.Equal(t, before, testutil.ToFloat64(noticeDispatchedTotal))

	svc.Notify(context.Background(), "/orders", fmt.Errorf("wrapped: %w", errors.New("reported")))
	assert.Equal(t, int32(1), exec.submits.Load())
}

func TestService_Notify_NilErrorWarns(t *testing.T) {
	logger, logs := newCaptureLogger()
	exec := &countingExecutor{}
	svc := New(newTestConfig(), exec, &recordingDeliverer{}, WithLogger(logger), WithInspector(fakeInspector{}))

	assert.NotPanics(t, func() { svc.Notify(context.Background(), "/x", nil) })

	assert.Equal(t, int32(0), exec.submits.Load())
	assert.Len(t, logs.atLevel(slog.LevelWarn), 1)
}

func TestService_NotifyRequest_PayloadOnTheWire(t *testing.T) {
	var body map[string]json.RawMessage
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get(notifier.HeaderAPIKey)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()
	svc, _ := newHTTPService(t, server.URL)

	svc.NotifyRequest(context.Background(), RequestInfo{
		URL:    "https://shop.example.com/search",
		Params: map[string][]string{"q": {"value"}},
		Method: "GET",
	}, errors.New("boom"))

	assert.Equal(t, "secret-key", apiKey)
	require.Len(t, body, 4)

	var request entity.RequestContext
	require.NoError(t, json.Unmarshal(body["request"], &request))
	assert.Equal(t, map[string]string{"q": "value"}, request.Params)
	assert.Equal(t, "GET", request.CGIData["REQUEST_METHOD"])

	var serverSection map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["server"], &serverSection))
	assert.JSONEq(t, `{"mem":{"total":512,"free":128,"free_total":null}}`, string(serverSection["stats"]))
}

func TestService_Notify_ConcurrentCallsDoNotMix(t *testing.T) {
	deliverer := &recordingDeliverer{outcome: notifier.Outcome{StatusCode: 201}}
	logger, _ := newCaptureLogger()
	pool := worker.NewPool(worker.PoolConfig{MaxConcurrent: 8, AcquireTimeout: 10 * time.Second}, logger,
		worker.WithMetrics(worker.NewPoolMetricsWith(prometheus.NewRegistry())))
	svc := New(newTestConfig(), pool, deliverer, WithLogger(logger), WithInspector(fakeInspector{}))

	const n = 64
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			svc.NotifyRequest(context.Background(), RequestInfo{
				URL:    fmt.Sprintf("/item/%d", i),
				Params: map[string][]string{"id": {fmt.Sprint(i)}},
			}, fmt.Errorf("failure %d", i))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	notices := deliverer.received()
	require.Len(t, notices, n)
	seen := map[string]bool{}
	for _, notice := range notices {
		var i int
		_, err := fmt.Sscanf(notice.Error.Message, "failure %d", &i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("/item/%d", i), notice.Request.URL)
		assert.Equal(t, fmt.Sprint(i), notice.Request.Params["id"])
		seen[notice.Request.URL] = true
	}
	assert.Len(t, seen, n)
}

func TestService_Notify_DelivererPanicIsContained(t *testing.T) {
	logger, logs := newCaptureLogger()
	svc := New(newTestConfig(), InlineExecutor, &recordingDeliverer{panicV: "kaboom"},
		WithLogger(logger), WithInspector(fakeInspector{}))

	assert.NotPanics(t, func() { svc.Notify(context.Background(), "/x", errors.New("boom")) })

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, "Panic while delivering notice", errorsLogged[0].Message)
}

func TestService_Notify_CircuitBreakerOpens(t *testing.T) {
	logger, logs := newCaptureLogger()
	deliverer := &recordingDeliverer{
		outcome: notifier.Outcome{StatusCode: 503},
		err:     &notifier.ServerError{StatusCode: 503, Message: "unavailable"},
	}
	svc := New(newTestConfig(), InlineExecutor, deliverer,
		WithLogger(logger),
		WithInspector(fakeInspector{}),
		WithCircuitBreaker(circuitbreaker.Config{
			Name:             "test-tracker",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}))

	for i := 0; i < 3; i++ {
		svc.Notify(context.Background(), "/x", errors.New("boom"))
	}

	assert.Len(t, deliverer.received(), 2, "third delivery is rejected by the breaker")
	health := svc.Health()
	assert.True(t, health.CircuitBreakerOpen)
	assert.Equal(t, "open", health.State)
	assert.Equal(t, "test-tracker", health.Breaker)

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 3)
	assert.Equal(t, reasonCircuitOpen, errorsLogged[2].Attrs["reason"].String())
}

func TestService_Notify_RecordsDeliverySpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	server, _ := newTrackerServer(t, http.StatusBadGateway)
	svc, _ := newHTTPService(t, server.URL, WithTracer(tp.Tracer("test")))

	parentCtx, parent := tp.Tracer("test").Start(context.Background(), "handler")
	svc.Notify(parentCtx, "/x", errors.New("boom"))
	parent.End()

	var delivery sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "errnotice.deliver" {
			delivery = s
		}
	}
	require.NotNil(t, delivery)
	assert.Equal(t, codes.Error, delivery.Status().Code)
	require.Len(t, delivery.Links(), 1)
	assert.Equal(t, parent.SpanContext().TraceID(), delivery.Links()[0].SpanContext.TraceID())
	assert.False(t, delivery.Parent().IsValid(), "delivery outlives the caller and is not its child")
}

func TestService_Notify_CarriesRequestID(t *testing.T) {
	logger, logs := newCaptureLogger()
	svc := New(newTestConfig(), InlineExecutor, &recordingDeliverer{err: errors.New("down")},
		WithLogger(logger), WithInspector(fakeInspector{}))
	ctx := requestid.WithRequestID(context.Background(), "req-77")

	svc.Notify(ctx, "/x", errors.New("boom"))

	errorsLogged := logs.atLevel(slog.LevelError)
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, "req-77", errorsLogged[0].Attrs[logging.KeyRequestID].String())
}

func TestService_FlattenModeOption(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := New(newTestConfig(), InlineExecutor, deliverer,
		WithFlattenMode(entity.OuterFramesReused), WithLanguage("go1.25"), WithInspector(fakeInspector{}))

	svc.Notify(context.Background(), "/x", fmt.Errorf("outer: %w", errors.New("inner")))

	require.Len(t, deliverer.received(), 1)
	assert.Equal(t, "go1.25", deliverer.received()[0].Notifier.Language)
	assert.Equal(t, "go1.25", svc.Identity().Language)
}

func TestService_DefaultsAndHealth(t *testing.T) {
	svc := New(newTestConfig(), nil, nil, WithInspector(fakeInspector{}))

	health := svc.Health()
	assert.Equal(t, "tracker-api", health.Breaker)
	assert.Equal(t, "closed", health.State)
	assert.False(t, health.CircuitBreakerOpen)

	require.NoError(t, svc.Shutdown(context.Background()))
}
