// Package router maps a parsed request to the action the session should
// take. Decide is a pure function over the request so the dispatch rules can
// be tested without any I/O.
package router

import (
	"encoding/json"

	"github.com/rpellegrini/webserve/pkg/httpmsg"
)

// Kind discriminates the Decision variants.
type Kind int

const (
	// KindServeFile asks the session to fetch Path from the Resource
	// Provider and serve it.
	KindServeFile Kind = iota

	// KindAcceptUpload asks the session to persist Body through the Upload
	// Store.
	KindAcceptUpload

	// KindReject short-circuits to an error response with Status.
	KindReject
)

// Decision is the routing outcome for one request. Exactly the fields for
// its Kind are meaningful; a Decision is consumed once and discarded.
type Decision struct {
	Kind   Kind
	Path   string
	Body   []byte
	Status int
	Reason string
}

// defaultDocument is what "/" resolves to before validation and lookup.
const defaultDocument = "/index.html"

func reject(status int, reason string) Decision {
	return Decision{Kind: KindReject, Status: status, Reason: reason}
}

// Decide routes a request.
//
// GET always resolves to a file serve, leaving existence and content-type
// resolution to the Resource Provider. POST is accepted only on uploadPath
// and only with an application/json payload that is syntactically valid
// JSON. Everything else is rejected with 405.
func Decide(req *httpmsg.Request, uploadPath string) Decision {
	switch req.Method {
	case httpmsg.MethodGet:
		path := req.Path
		if path == "/" {
			path = defaultDocument
		}
		return Decision{Kind: KindServeFile, Path: path}

	case httpmsg.MethodPost:
		if req.Path != uploadPath {
			return reject(httpmsg.StatusMethodNotAllowed,
				"POST is only accepted on "+uploadPath)
		}
		if req.Header("Content-Type") != "application/json" {
			return reject(httpmsg.StatusUnsupportedMedia,
				"uploads must be application/json")
		}
		if !json.Valid(req.Body) {
			return reject(httpmsg.StatusBadRequest, "upload body is not valid JSON")
		}
		return Decision{Kind: KindAcceptUpload, Body: req.Body}

	default:
		return reject(httpmsg.StatusMethodNotAllowed,
			"method "+req.RawMethod+" is not supported")
	}
}
