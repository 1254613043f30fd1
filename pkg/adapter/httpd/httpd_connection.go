package httpd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rpellegrini/webserve/internal/logger"
	"github.com/rpellegrini/webserve/pkg/httpmsg"
	"github.com/rpellegrini/webserve/pkg/resource"
	"github.com/rpellegrini/webserve/pkg/router"
	"github.com/rpellegrini/webserve/pkg/security"
)

// HTTPConnection is the session state for one accepted connection: a
// buffered reader over the socket and the count of requests served so far.
// Each instance is owned by exactly one worker goroutine for its whole life.
type HTTPConnection struct {
	server         *HTTPAdapter
	conn           net.Conn
	reader         *bufio.Reader
	requestsServed int
}

func newHTTPConnection(server *HTTPAdapter, conn net.Conn) *HTTPConnection {
	return &HTTPConnection{
		server: server,
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 4096),
	}
}

// uploadReceipt is the JSON body of a successful upload response.
type uploadReceipt struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filepath string `json:"filepath"`
}

// Serve runs the request/response loop until the client disconnects, the
// idle timeout fires, the keep-alive budget is spent, or shutdown begins.
// The connection is always closed on return; a panic in request handling is
// contained to this one connection.
func (c *HTTPConnection) Serve(ctx context.Context) {
	clientAddr := c.conn.RemoteAddr().String()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while serving %s: %v", clientAddr, r)
		}
		_ = c.conn.Close()
		logger.Debug("Connection from %s closed after %d request(s)", clientAddr, c.requestsServed)
	}()

	limits := httpmsg.Limits{
		MaxHeaderBytes: c.server.config.MaxHeaderBytes,
		MaxBodyBytes:   c.server.config.MaxBodyBytes,
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.server.shutdown:
			return
		default:
		}

		if idle := c.server.config.IdleTimeout; idle > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(idle))
		}

		req, err := httpmsg.ReadRequest(c.reader, limits)
		if err != nil {
			var perr *httpmsg.Error
			if errors.As(err, &perr) {
				// The framing can no longer be trusted after a protocol
				// violation, so answer and close.
				logger.Debug("Protocol error from %s: %v", clientAddr, err)
				c.writeResponse(c.errorResponse(perr.Status, false))
			} else {
				c.logTransportError(clientAddr, err)
			}
			return
		}

		// keepAlive is decided up front so error responses carry the same
		// Connection header the success path would.
		keepAlive := req.WantsKeepAlive() &&
			c.requestsServed+1 < c.server.config.MaxRequestsPerConn

		resp := c.handleRequest(ctx, req, keepAlive)
		if err := c.writeResponse(resp); err != nil {
			logger.Debug("Failed to write response to %s: %v", clientAddr, err)
			return
		}
		c.requestsServed++

		if !keepAlive {
			return
		}
	}
}

// handleRequest turns one parsed request into a response: Host validation,
// routing, then the file-serve or upload action.
func (c *HTTPConnection) handleRequest(ctx context.Context, req *httpmsg.Request, keepAlive bool) *httpmsg.Response {
	clientAddr := c.conn.RemoteAddr().String()
	logger.Debug("%s %s %s from %s", req.RawMethod, req.Path, req.Proto, clientAddr)

	if err := c.server.policy.CheckHost(req.Host); err != nil {
		status := httpmsg.StatusOf(err)
		if status == httpmsg.StatusForbidden {
			logger.Security("Rejected Host %q from %s", req.Host, clientAddr)
		} else {
			logger.Debug("Request without Host header from %s", clientAddr)
		}
		return c.errorResponse(status, keepAlive)
	}

	decision := router.Decide(req, c.server.config.UploadPath)
	switch decision.Kind {
	case router.KindServeFile:
		return c.serveFile(ctx, decision.Path, keepAlive)
	case router.KindAcceptUpload:
		return c.acceptUpload(ctx, decision.Body, keepAlive)
	default:
		logger.Debug("Rejected %s %s from %s: %s",
			req.RawMethod, req.Path, clientAddr, decision.Reason)
		return c.errorResponse(decision.Status, keepAlive)
	}
}

// serveFile validates the path against the deny-list and traversal policy,
// fetches the file and builds the inline or download response.
func (c *HTTPConnection) serveFile(ctx context.Context, path string, keepAlive bool) *httpmsg.Response {
	clientAddr := c.conn.RemoteAddr().String()

	if err := c.server.policy.CheckDenied(path); err != nil {
		logger.Security("Denied path %q requested from %s", path, clientAddr)
		return c.errorResponse(httpmsg.StatusForbidden, keepAlive)
	}

	rel, err := security.SafePath(path)
	if err != nil {
		status := httpmsg.StatusOf(err)
		if status == httpmsg.StatusForbidden {
			logger.Security("Unsafe path %q from %s: %v", path, clientAddr, err)
		} else {
			logger.Debug("Undecodable path %q from %s", path, clientAddr)
		}
		return c.errorResponse(status, keepAlive)
	}

	file, err := c.server.resources.Fetch(ctx, rel)
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrNotFound):
			logger.Debug("Not found: %q", rel)
			return c.errorResponse(httpmsg.StatusNotFound, keepAlive)
		case errors.Is(err, resource.ErrUnsupportedType):
			logger.Debug("Unsupported type: %q", rel)
			return c.errorResponse(httpmsg.StatusUnsupportedMedia, keepAlive)
		default:
			logger.Error("Failed to fetch %q: %v", rel, err)
			return c.errorResponse(httpmsg.StatusInternalServerError, keepAlive)
		}
	}

	resp := c.baseResponse(httpmsg.StatusOK)
	switch file.Category {
	case resource.CategoryHTML:
		resp.SetHeader("Content-Type", "text/html; charset=utf-8")
	default:
		resp.SetHeader("Content-Type", "application/octet-stream")
		resp.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	}
	return c.finish(resp, file.Data, keepAlive)
}

// acceptUpload persists the already-validated JSON payload and answers 201
// with the stored path.
func (c *HTTPConnection) acceptUpload(ctx context.Context, body []byte, keepAlive bool) *httpmsg.Response {
	logical, err := c.server.uploads.Save(ctx, body)
	if err != nil {
		logger.Error("Failed to persist upload from %s: %v", c.conn.RemoteAddr(), err)
		return c.errorResponse(httpmsg.StatusInternalServerError, keepAlive)
	}

	logger.Info("Stored upload from %s at %s (%d bytes)", c.conn.RemoteAddr(), logical, len(body))

	receipt, err := json.Marshal(uploadReceipt{
		Status:   "success",
		Message:  "File created successfully",
		Filepath: logical,
	})
	if err != nil {
		return c.errorResponse(httpmsg.StatusInternalServerError, keepAlive)
	}

	resp := c.baseResponse(httpmsg.StatusCreated)
	resp.SetHeader("Content-Type", "application/json")
	return c.finish(resp, receipt, keepAlive)
}

// baseResponse starts a response with the headers every reply carries.
func (c *HTTPConnection) baseResponse(status int) *httpmsg.Response {
	resp := httpmsg.NewResponse(status)
	resp.SetHeader("Date", httpmsg.HTTPDate(time.Now()))
	resp.SetHeader("Server", serverName)
	return resp
}

// finish attaches the body and the connection-management headers.
func (c *HTTPConnection) finish(resp *httpmsg.Response, body []byte, keepAlive bool) *httpmsg.Response {
	resp.SetBody(body)
	if keepAlive {
		resp.SetHeader("Connection", "keep-alive")
		resp.SetHeader("Keep-Alive", fmt.Sprintf("timeout=%d, max=%d",
			int(c.server.config.IdleTimeout.Seconds()), c.server.config.MaxRequestsPerConn))
	} else {
		resp.SetHeader("Connection", "close")
	}
	return resp
}

// errorResponse builds an empty-bodied response for an error status.
func (c *HTTPConnection) errorResponse(status int, keepAlive bool) *httpmsg.Response {
	return c.finish(c.baseResponse(status), nil, keepAlive)
}

// writeResponse serializes a response under the write deadline.
func (c *HTTPConnection) writeResponse(resp *httpmsg.Response) error {
	if wt := c.server.config.WriteTimeout; wt > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wt))
	}
	return resp.Write(c.conn)
}

// logTransportError classifies read failures that end the session: clean
// disconnects and idle timeouts are routine, anything else is worth a warn.
func (c *HTTPConnection) logTransportError(clientAddr string, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("Client %s disconnected", clientAddr)
	case errors.Is(err, io.ErrUnexpectedEOF):
		logger.Debug("Client %s disconnected mid-request", clientAddr)
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Debug("Idle timeout on connection from %s", clientAddr)
	default:
		logger.Warn("Read error on connection from %s: %v", clientAddr, err)
	}
}
