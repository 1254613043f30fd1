// Package httpmsg implements the HTTP/1.x message codec used by the
// connection engine: parsing raw request bytes into a structured Request and
// serializing a structured Response back onto the wire.
//
// The codec is deliberately strict. Only HTTP/1.0 and HTTP/1.1 request lines
// are accepted, header and body sizes are bounded, and every protocol
// violation maps to a 400-class Error so the session can answer without
// tearing the connection down. Transport failures (EOF, timeouts, short
// bodies) are returned as plain I/O errors and terminate the session.
package httpmsg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Method is the request method as seen by the router. Anything beyond the
// two supported verbs is carried as MethodOther and rejected downstream.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodOther
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "OTHER"
	}
}

// Limits bounds how much of a single request the codec is willing to buffer.
type Limits struct {
	// MaxHeaderBytes caps the request line plus all header lines.
	MaxHeaderBytes int

	// MaxBodyBytes caps the declared Content-Length.
	MaxBodyBytes int
}

// Request is a single parsed HTTP request. It is immutable once returned by
// ReadRequest; the session and router only ever read from it.
type Request struct {
	Method    Method
	RawMethod string

	// Path is the request target exactly as sent, before any normalization
	// or percent-decoding. Security checks run on the decoded form.
	Path string

	// Proto is "HTTP/1.1" or "HTTP/1.0".
	Proto string

	// Headers maps lower-cased header names to values. When a header is
	// repeated the last occurrence wins.
	Headers map[string]string

	// Body holds the request payload, sized by Content-Length. Absent body
	// means an empty (non-nil-safe) slice.
	Body []byte

	// Host is the verbatim Host header value, empty when the header is
	// missing.
	Host string
}

// Header returns the value for a header name, case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// WantsKeepAlive reports whether the client asked for the connection to be
// reused: the HTTP/1.1 default unless "Connection: close", and opt-in via
// "Connection: keep-alive" for HTTP/1.0.
func (r *Request) WantsKeepAlive() bool {
	conn := strings.ToLower(strings.TrimSpace(r.Header("Connection")))
	if r.Proto == "HTTP/1.0" {
		return conn == "keep-alive"
	}
	return conn != "close"
}

// ReadRequest parses one request from the reader.
//
// Protocol violations (malformed request line, unsupported version, bad
// header syntax, oversized headers, invalid Content-Length) return an *Error
// with status 400. Transport failures are returned as-is: io.EOF when the
// client closed the connection cleanly before sending a request, timeout and
// short-read errors otherwise.
func ReadRequest(r *bufio.Reader, limits Limits) (*Request, error) {
	budget := limits.MaxHeaderBytes

	line, err := readLine(r, &budget)
	if err != nil {
		return nil, err
	}

	method, path, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	req := &Request{
		RawMethod: method,
		Path:      path,
		Proto:     proto,
		Headers:   make(map[string]string),
	}

	switch method {
	case "GET":
		req.Method = MethodGet
	case "POST":
		req.Method = MethodPost
	default:
		req.Method = MethodOther
	}

	for {
		line, err := readLine(r, &budget)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, NewError(StatusBadRequest, "malformed header line %q", line)
		}
		req.Headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	req.Host = req.Headers["host"]

	// The body is read for any method that declares one so the connection
	// stays correctly framed for the next request; the router decides
	// whether the payload is actually meaningful.
	if cl := req.Headers["content-length"]; cl != "" {
		length, err := strconv.Atoi(cl)
		if err != nil || length < 0 {
			return nil, NewError(StatusBadRequest, "invalid Content-Length %q", cl)
		}
		if length > limits.MaxBodyBytes {
			return nil, NewError(StatusBadRequest,
				"declared body of %d bytes exceeds limit of %d", length, limits.MaxBodyBytes)
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		req.Body = body
	}

	return req, nil
}

// parseRequestLine splits "METHOD target HTTP/x.y" and enforces the
// supported protocol versions.
func parseRequestLine(line string) (method, path, proto string, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", "", "", NewError(StatusBadRequest, "malformed request line %q", line)
	}

	method, path, proto = fields[0], fields[1], fields[2]
	if proto != "HTTP/1.1" && proto != "HTTP/1.0" {
		return "", "", "", NewError(StatusBadRequest, "unsupported protocol version %q", proto)
	}

	return method, path, proto, nil
}

// readLine reads one CRLF-terminated line, charging its length against the
// remaining header budget. A bare LF terminator is tolerated.
func readLine(r *bufio.Reader, budget *int) (string, error) {
	var line []byte

	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)

		if *budget -= len(chunk); *budget < 0 {
			return "", NewError(StatusBadRequest, "request header section too large")
		}

		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(line) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}

	return strings.TrimRight(string(line), "\r\n"), nil
}
