package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"errnotice/internal/domain/entity"
	"errnotice/internal/infra/notifier"
)

type testConfig struct {
	apiKey, endpoint, name, version, environment string
	excluded                                     []string
}

func (c testConfig) APIKey() string           { return c.apiKey }
func (c testConfig) Endpoint() string         { return c.endpoint }
func (c testConfig) Name() string             { return c.name }
func (c testConfig) Version() string          { return c.version }
func (c testConfig) Environment() string      { return c.environment }
func (c testConfig) ExcludedErrors() []string { return c.excluded }

func newTestConfig() testConfig {
	return testConfig{
		apiKey:      "secret-key",
		endpoint:    "http://127.0.0.1:0/v1/notices",
		name:        "shop",
		version:     "2.4.1",
		environment: "test",
	}
}

type fakeInspector struct{}

func (fakeInspector) Inspect(environment string) entity.ServerContext {
	return entity.ServerContext{
		EnvironmentName: environment,
		Hostname:        "test-host",
		ProjectRoot:     entity.ProjectRoot{Path: "/srv/shop"},
		Stats:           entity.Stats{Mem: entity.Mem{Total: 512, Free: 128}},
	}
}

// captureHandler records every log entry, including attributes added with
// Logger.With, for assertions.
type captureHandler struct {
	store *logStore
	attrs []slog.Attr
}

type logStore struct {
	mu      sync.Mutex
	records []capturedRecord
}

type capturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]slog.Value
}

func newCaptureLogger() (*slog.Logger, *logStore) {
	store := &logStore{}
	return slog.New(&captureHandler{store: store}), store
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	rec := capturedRecord{Level: r.Level, Message: r.Message, Attrs: map[string]slog.Value{}}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value
		return true
	})
	h.store.mu.Lock()
	h.store.records = append(h.store.records, rec)
	h.store.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &captureHandler{store: h.store, attrs: merged}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (s *logStore) all() []capturedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRecord(nil), s.records...)
}

func (s *logStore) atLevel(level slog.Level) []capturedRecord {
	var out []capturedRecord
	for _, r := range s.all() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// countingExecutor runs tasks inline and counts submissions.
type countingExecutor struct {
	submits atomic.Int32
}

func (e *countingExecutor) Submit(task func()) {
	e.submits.Add(1)
	task()
}

// recordingDeliverer stores every notice it receives.
type recordingDeliverer struct {
	mu      sync.Mutex
	notices []*entity.Notice
	outcome notifier.Outcome
	err     error
	panicV  any
}

func (d *recordingDeliverer) Deliver(_ context.Context, n *entity.Notice) (notifier.Outcome, error) {
	if d.panicV != nil {
		panic(d.panicV)
	}
	d.mu.Lock()
	d.notices = append(d.notices, n)
	d.mu.Unlock()
	return d.outcome, d.err
}

func (d *recordingDeliverer) received() []*entity.Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*entity.Notice(nil), d.notices...)
}
