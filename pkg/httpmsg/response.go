package httpmsg

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Response is a single HTTP response under construction. Headers keep their
// insertion order so serialization is deterministic; setting an existing
// header replaces its value in place.
type Response struct {
	StatusCode int
	Reason     string
	headers    []headerField
	Body       []byte
}

type headerField struct {
	name  string
	value string
}

// NewResponse builds an empty response for the given status code with its
// canonical reason phrase.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		Reason:     ReasonPhrase(status),
	}
}

// SetHeader sets a header, replacing any previous value while preserving the
// position it was first set at.
func (r *Response) SetHeader(name, value string) *Response {
	for i := range r.headers {
		if r.headers[i].name == name {
			r.headers[i].value = value
			return r
		}
	}
	r.headers = append(r.headers, headerField{name: name, value: value})
	return r
}

// Header returns the current value of a header, or "" when unset.
func (r *Response) Header(name string) string {
	for _, h := range r.headers {
		if h.name == name {
			return h.value
		}
	}
	return ""
}

// SetBody attaches the payload and records its Content-Length.
func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	return r.SetHeader("Content-Length", strconv.Itoa(len(body)))
}

// Write serializes the response: status line, headers in insertion order, a
// blank line, then the body bytes verbatim. Content-Length is emitted even
// for empty bodies so clients never have to wait for EOF.
func (r *Response) Write(w io.Writer) error {
	if r.Header("Content-Length") == "" {
		r.SetHeader("Content-Length", strconv.Itoa(len(r.Body)))
	}

	var buf []byte
	buf = fmt.Appendf(buf, "HTTP/1.1 %d %s\r\n", r.StatusCode, r.Reason)
	for _, h := range r.headers {
		buf = fmt.Appendf(buf, "%s: %s\r\n", h.name, h.value)
	}
	buf = append(buf, "\r\n"...)
	buf = append(buf, r.Body...)

	_, err := w.Write(buf)
	return err
}

// HTTPDate formats a time in the RFC 7231 fixed-date layout required by the
// Date response header.
func HTTPDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}
