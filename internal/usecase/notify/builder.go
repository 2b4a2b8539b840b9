package notify

import (
	"sort"
	"strings"

	"errnotice/internal/domain/entity"
	"errnotice/internal/infra/errview"
)

// RequestInfo is the caller-supplied request context for one notice. Only URL
// is expected; every other field may be left empty.
type RequestInfo struct {
	// URL identifies where the error happened: a request URL or any identifier
	URL string

	// Params holds request parameters; multiple values are joined with ","
	Params map[string][]string

	Method        string
	UserAgent     string
	RemoteAddress string

	Component string
	Action    string

	Session map[string]string
	Cookies map[string]string
	Context map[string]string
}

// ServerInspector reports facts about the running process.
// runtimeinfo.Inspector is the production implementation.
type ServerInspector interface {
	Inspect(environment string) entity.ServerContext
}

// Builder assembles notices. It holds no per-call state and is safe for
// concurrent use.
type Builder struct {
	identity    entity.NotifierIdentity
	appName     string
	version     string
	environment string
	inspector   ServerInspector
	mode        entity.FlattenMode
}

// NewBuilder creates a builder for one configured client.
func NewBuilder(cfg Configuration, inspector ServerInspector, language string, mode entity.FlattenMode) *Builder {
	return &Builder{
		identity:    entity.NewNotifierIdentity(cfg.APIKey(), cfg.Name(), language),
		appName:     cfg.Name(),
		version:     cfg.Version(),
		environment: cfg.Environment(),
		inspector:   inspector,
		mode:        mode,
	}
}

// Identity returns the notifier section shared by every notice.
func (b *Builder) Identity() entity.NotifierIdentity {
	return b.identity
}

// Build assembles the notice for err. The only failure is a nil err.
func (b *Builder) Build(err error, req RequestInfo) (*entity.Notice, error) {
	if err == nil {
		return nil, ErrNilError
	}

	request := entity.RequestContext{
		URL:       req.URL,
		Params:    joinParams(req.Params),
		CGIData:   b.cgiData(req),
		Component: req.Component,
		Action:    req.Action,
		Session:   copyMap(req.Session),
		Context:   copyMap(req.Context),
	}

	var server entity.ServerContext
	if b.inspector != nil {
		server = b.inspector.Inspect(b.environment)
	} else {
		server = entity.ServerContext{EnvironmentName: b.environment}
	}

	return &entity.Notice{
		Notifier: b.identity,
		Error:    entity.NewErrorDescriptor(errview.FromError(err), b.mode),
		Server:   server,
		Request:  request,
	}, nil
}

func (b *Builder) cgiData(req RequestInfo) map[string]string {
	cgi := make(map[string]string, 5)
	if req.Method != "" {
		cgi[entity.CGIRequestMethod] = req.Method
	}
	if req.UserAgent != "" {
		cgi[entity.CGIUserAgent] = req.UserAgent
	}
	if req.RemoteAddress != "" {
		cgi[entity.CGIRemoteAddr] = req.RemoteAddress
	}
	if b.version != "" {
		cgi[entity.CGIServerSoftware] = b.appName + "/" + b.version
	}
	if len(req.Cookies) > 0 {
		cgi[entity.CGICookie] = formatCookies(req.Cookies)
	}
	return cgi
}

// formatCookies renders "k1=v1; k2=v2" with keys in sorted order.
func formatCookies(cookies map[string]string) string {
	keys := make([]string, 0, len(cookies))
	for k := range cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(cookies[k])
	}
	return sb.String()
}

func joinParams(params map[string][]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, values := range params {
		out[k] = strings.Join(values, ",")
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
