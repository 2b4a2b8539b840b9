package entity

// CGI-style header keys placed in RequestContext.CGIData.
const (
	CGIRequestMethod  = "REQUEST_METHOD"
	CGIUserAgent      = "HTTP_USER_AGENT"
	CGIRemoteAddr     = "REMOTE_ADDR"
	CGIServerSoftware = "SERVER_SOFTWARE"
	CGICookie         = "HTTP_COOKIE"
)

// RequestContext is the "request" section of a notice. URL is required;
// Params and CGIData are always non-nil so they encode as objects.
type RequestContext struct {
	URL       string            `json:"url"`
	Params    map[string]string `json:"params"`
	CGIData   map[string]string `json:"cgi_data"`
	Component string            `json:"component,omitempty"`
	Action    string            `json:"action,omitempty"`
	Session   map[string]string `json:"session,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}
