package pipeline

import "net/http"

// Response is the pipeline's view of an outbound response. Stages replace
// the current response by returning a new one; the engine never mutates a
// Response in place.
type Response struct {
	Status int
	Header http.Header
	Body   string

	// pass marks the default pass-through response, meaning no stage has
	// produced a terminal response and the host should continue with its
	// own handling.
	pass bool
}

// Next returns the pass-through response: processing continues and the
// host's downstream handler serves the request.
func Next() *Response {
	return &Response{Status: http.StatusOK, Header: make(http.Header), pass: true}
}

// NewResponse builds a terminal response from a status code and body.
func NewResponse(status int, body string) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// Redirect builds a redirect response to the given location.
func Redirect(status int, location string) *Response {
	resp := NewResponse(status, "")
	resp.Header.Set("Location", location)
	return resp
}

// PassThrough reports whether the response is the pass-through default.
func (r *Response) PassThrough() bool {
	return r.pass
}

// WithHeader returns a copy of the response with the header set. The
// receiver is left unchanged.
func (r *Response) WithHeader(key, value string) *Response {
	out := &Response{Status: r.Status, Header: r.Header.Clone(), Body: r.Body, pass: r.pass}
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	out.Header.Set(key, value)
	return out
}
