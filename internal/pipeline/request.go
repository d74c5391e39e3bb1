package pipeline

import "net/http"

// Request is the inbound request as seen by the pipeline. The engine only
// inspects Path; everything else is carried for handlers.
type Request struct {
	// Path is the request path used for stage selection.
	Path string

	// Method and Header mirror the hosting request when one exists.
	Method string
	Header http.Header

	// HTTP is the underlying request when the pipeline is hosted behind
	// an HTTP server, nil otherwise.
	HTTP *http.Request
}

// NewRequest builds a bare Request for the given path.
func NewRequest(path string) *Request {
	return &Request{Path: path, Method: http.MethodGet, Header: make(http.Header)}
}

// FromHTTP builds a Request from a hosting *http.Request.
func FromHTTP(r *http.Request) *Request {
	return &Request{
		Path:   r.URL.Path,
		Method: r.Method,
		Header: r.Header,
		HTTP:   r,
	}
}
