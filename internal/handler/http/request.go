package http

import (
	"net/http"

	"errnotice/internal/handler/http/requestid"
	"errnotice/internal/usecase/notify"
)

// maxFormMemory bounds multipart parsing when capturing request parameters.
const maxFormMemory = 1 << 20

// RequestInfoFromHTTP captures the parts of r a notice reports: URL, method,
// user agent, client address, query and form parameters, cookies and the
// request ID.
func RequestInfoFromHTTP(r *http.Request) notify.RequestInfo {
	info := notify.RequestInfo{
		URL:           requestURL(r),
		Method:        r.Method,
		UserAgent:     r.UserAgent(),
		RemoteAddress: r.RemoteAddr,
	}

	if params := requestParams(r); len(params) > 0 {
		info.Params = params
	}

	if cookies := r.Cookies(); len(cookies) > 0 {
		info.Cookies = make(map[string]string, len(cookies))
		for _, c := range cookies {
			info.Cookies[c.Name] = c.Value
		}
	}

	if id := requestid.FromContext(r.Context()); id != "" {
		info.Context = map[string]string{"request_id": id}
	}
	return info
}

func requestURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := *r.URL
	u.Scheme = scheme
	u.Host = r.Host
	return u.String()
}

// requestParams merges query and body parameters. A body that fails to parse
// contributes nothing.
func requestParams(r *http.Request) map[string][]string {
	if r.Form == nil {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && r.Form == nil {
			if r.URL == nil {
				return nil
			}
			return r.URL.Query()
		}
	}
	return r.Form
}
