package httpmsg

import (
	"errors"
	"fmt"
)

// Status codes produced by the server.
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusUnsupportedMedia    = 415
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

var reasonPhrases = map[int]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusUnsupportedMedia:    "Unsupported Media Type",
	StatusInternalServerError: "Internal Server Error",
	StatusServiceUnavailable:  "Service Unavailable",
}

// ReasonPhrase returns the canonical reason phrase for a status code.
func ReasonPhrase(status int) string {
	if reason, ok := reasonPhrases[status]; ok {
		return reason
	}
	return "Unknown"
}

// Error is a request-level protocol error carrying the HTTP status that
// should be sent back to the client. Every Error is recoverable at the
// single-request granularity: the session answers with the status and, if
// keep-alive conditions allow, keeps serving the connection.
type Error struct {
	Status int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, ReasonPhrase(e.Status), e.Reason)
}

// NewError builds a protocol error for the given status.
func NewError(status int, format string, v ...any) *Error {
	return &Error{Status: status, Reason: fmt.Sprintf(format, v...)}
}

// StatusOf extracts the HTTP status from an error. Errors that do not carry
// a status map to 500.
func StatusOf(err error) int {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Status
	}
	return StatusInternalServerError
}
