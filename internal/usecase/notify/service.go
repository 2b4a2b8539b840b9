package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"errnotice/internal/domain/entity"
	"errnotice/internal/infra/notifier"
	"errnotice/internal/infra/runtimeinfo"
	"errnotice/internal/observability/logging"
	"errnotice/internal/observability/tracing"
	"errnotice/internal/resilience/circuitbreaker"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// deliveryTimeout bounds one delivery task, including the rate limiter wait.
// The transport's own connect and read timeouts are shorter.
const deliveryTimeout = 30 * time.Second

// Deliverer sends one notice. notifier.APIClient and notifier.NoOpDeliverer
// implement it.
type Deliverer interface {
	Deliver(ctx context.Context, notice *entity.Notice) (notifier.Outcome, error)
}

// HealthStatus reports the state of the delivery path.
type HealthStatus struct {
	Breaker            string // Circuit breaker name
	State              string // closed, half-open or open
	CircuitBreakerOpen bool
	ExcludedTypes      int
}

// Service reports errors asynchronously. Notify and NotifyRequest return as
// soon as the notice is built and handed to the executor. It is safe for
// concurrent use.
type Service struct {
	builder   *Builder
	filter    *ExclusionFilter
	executor  Executor
	deliverer Deliverer
	breaker   *circuitbreaker.CircuitBreaker
	logger    *slog.Logger
	tracer    trace.Tracer

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

type options struct {
	logger    *slog.Logger
	language  string
	mode      entity.FlattenMode
	inspector ServerInspector
	tracer    trace.Tracer
	breaker   *circuitbreaker.Config
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLanguage sets notifier.language. Default: "go".
func WithLanguage(language string) Option {
	return func(o *options) { o.language = language }
}

// WithFlattenMode selects how cause frames are laid out in the backtrace.
// Default: entity.CauseOwnFrames.
func WithFlattenMode(mode entity.FlattenMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithInspector replaces the runtime inspector used for the server section.
func WithInspector(inspector ServerInspector) Option {
	return func(o *options) { o.inspector = inspector }
}

// WithTracer sets the tracer for delivery spans. Default: tracing.Tracer().
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithCircuitBreaker overrides circuitbreaker.TrackerAPIConfig().
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(o *options) { o.breaker = &cfg }
}

// New creates a Service. A nil executor falls back to GoExecutor.
func New(cfg Configuration, executor Executor, deliverer Deliverer, opts ...Option) *Service {
	o := options{
		logger:   slog.Default(),
		language: entity.DefaultLanguage,
		mode:     entity.CauseOwnFrames,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.inspector == nil {
		o.inspector = runtimeinfo.NewInspector(o.logger)
	}
	if o.tracer == nil {
		o.tracer = tracing.Tracer()
	}
	breakerCfg := circuitbreaker.TrackerAPIConfig()
	if o.breaker != nil {
		breakerCfg = *o.breaker
	}
	if executor == nil {
		executor = GoExecutor
	}
	if deliverer == nil {
		deliverer = notifier.NewNoOpDeliverer()
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &Service{
		builder:        NewBuilder(cfg, o.inspector, o.language, o.mode),
		filter:         NewExclusionFilter(cfg.ExcludedErrors()),
		executor:       executor,
		deliverer:      deliverer,
		breaker:        circuitbreaker.NewWithLogger(breakerCfg, o.logger),
		logger:         o.logger,
		tracer:         o.tracer,
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// Notify reports err with identifier as the request URL.
func (s *Service) Notify(ctx context.Context, identifier string, err error) {
	s.NotifyRequest(ctx, RequestInfo{URL: identifier}, err)
}

// NotifyRequest reports err with full request context.
//
// The call never blocks on the network and never panics. Excluded error types
// are dropped silently. ctx only contributes the request ID and trace link; it
// does not cancel the delivery.
func (s *Service) NotifyRequest(ctx context.Context, req RequestInfo, err error) {
	if err == nil {
		s.logger.Warn("Notify called with nil error", slog.String(logging.KeyURL, req.URL))
		return
	}
	if s.filter.Excluded(err) {
		return
	}

	notice, buildErr := s.builder.Build(err, req)
	if buildErr != nil {
		s.logger.Warn("Failed to build notice", slog.Any("error", buildErr))
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	noticeID := uuid.New().String()
	logger := logging.WithNoticeID(logging.WithRequestID(ctx, s.logger), noticeID).With(
		slog.String(logging.KeyErrorClass, notice.Error.Class),
		slog.String(logging.KeyURL, notice.Request.URL))
	link := trace.LinkFromContext(ctx)

	RecordDispatch()
	logger.Debug("Dispatching notice")

	s.executor.Submit(func() {
		s.deliver(noticeID, logger, link, notice)
	})
}

// deliver runs on the executor. Every failure is logged exactly once.
func (s *Service) deliver(noticeID string, logger *slog.Logger, link trace.Link, notice *entity.Notice) {
	incrementActiveDeliveries()
	defer decrementActiveDeliveries()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			RecordFailure(reasonPanic, time.Since(start))
			logger.Error("Panic while delivering notice",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	ctx, cancel := context.WithTimeout(s.shutdownCtx, deliveryTimeout)
	defer cancel()

	spanOpts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("errnotice.notice_id", noticeID),
			attribute.String("errnotice.error_class", notice.Error.Class),
		),
	}
	if link.SpanContext.IsValid() {
		spanOpts = append(spanOpts, trace.WithLinks(link))
	}
	ctx, span := s.tracer.Start(ctx, tracing.DeliverySpanName, spanOpts...)
	defer span.End()

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.deliverer.Deliver(ctx, notice)
	})
	outcome, _ := result.(notifier.Outcome)
	if outcome.Duration == 0 {
		outcome.Duration = time.Since(start)
	}

	if outcome.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", outcome.StatusCode))
	}

	if err == nil {
		RecordSuccess(outcome.Duration)
		logger.Debug("Notice delivered",
			slog.Int("status_code", outcome.StatusCode),
			slog.Duration("send_duration", outcome.Duration))
		return
	}

	reason := failureReason(err)
	RecordFailure(reason, outcome.Duration)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	attrs := []any{
		slog.String("reason", reason),
		slog.Duration("send_duration", outcome.Duration),
		slog.Any("error", err),
	}
	if code := statusCode(outcome, err); code != 0 {
		attrs = append(attrs, slog.Int("status_code", code))
	}
	logger.Error(failureMessage(reason, statusCode(outcome, err)), attrs...)
}

func failureReason(err error) string {
	if circuitbreaker.IsRejection(err) {
		return reasonCircuitOpen
	}
	var rateLimitErr *notifier.RateLimitError
	var clientErr *notifier.ClientError
	var serverErr *notifier.ServerError
	var statusErr *notifier.StatusError
	switch {
	case errors.As(err, &rateLimitErr):
		return reasonRateLimited
	case errors.As(err, &clientErr):
		return reasonClientError
	case errors.As(err, &serverErr):
		return reasonServerError
	case errors.As(err, &statusErr):
		return reasonUnexpectedStatus
	default:
		return reasonTransport
	}
}

func statusCode(outcome notifier.Outcome, err error) int {
	if outcome.StatusCode != 0 {
		return outcome.StatusCode
	}
	return notifier.StatusCode(err)
}

func failureMessage(reason string, status int) string {
	switch {
	case reason == reasonCircuitOpen:
		return "Notice dropped: tracker circuit breaker open"
	case status != 0:
		return fmt.Sprintf("Failed to deliver notice: tracker responded %d", status)
	default:
		return "Failed to deliver notice"
	}
}

// Health reports the circuit breaker state.
func (s *Service) Health() HealthStatus {
	return HealthStatus{
		Breaker:            s.breaker.Name(),
		State:              s.breaker.State().String(),
		CircuitBreakerOpen: s.breaker.IsOpen(),
		ExcludedTypes:      s.filter.Len(),
	}
}

// Identity returns the notifier identity sent with every notice.
func (s *Service) Identity() entity.NotifierIdentity {
	return s.builder.Identity()
}

// Shutdown cancels in-flight deliveries once ctx expires and waits for the
// executor to drain when it supports shutdown.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down notice service")

	var err error
	if sd, ok := s.executor.(interface{ Shutdown(context.Context) error }); ok {
		err = sd.Shutdown(ctx)
	}
	s.shutdownCancel()

	if err != nil {
		s.logger.Warn("Notice service shutdown timeout", slog.Any("error", err))
		return err
	}
	s.logger.Info("Notice service shutdown complete")
	return nil
}
