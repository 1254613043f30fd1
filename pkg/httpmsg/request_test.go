package httpmsg

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{MaxHeaderBytes: 8192, MaxBodyBytes: 1 << 20}
}

func parse(t *testing.T, raw string) (*Request, error) {
	t.Helper()
	return ReadRequest(bufio.NewReader(strings.NewReader(raw)), testLimits())
}

func TestReadRequest(t *testing.T) {
	t.Run("ParsesSimpleGet", func(t *testing.T) {
		req, err := parse(t, "GET /index.html HTTP/1.1\r\nHost: localhost:8080\r\n\r\n")
		require.NoError(t, err)

		assert.Equal(t, MethodGet, req.Method)
		assert.Equal(t, "GET", req.RawMethod)
		assert.Equal(t, "/index.html", req.Path)
		assert.Equal(t, "HTTP/1.1", req.Proto)
		assert.Equal(t, "localhost:8080", req.Host)
		assert.Empty(t, req.Body)
	})

	t.Run("LowercasesHeaderNames", func(t *testing.T) {
		req, err := parse(t, "GET / HTTP/1.1\r\nHOST: a:1\r\nX-Custom-Thing:  padded \r\n\r\n")
		require.NoError(t, err)

		assert.Equal(t, "a:1", req.Headers["host"])
		assert.Equal(t, "padded", req.Headers["x-custom-thing"])
		assert.Equal(t, "padded", req.Header("X-Custom-Thing"))
	})

	t.Run("DuplicateHeaderLastWins", func(t *testing.T) {
		req, err := parse(t, "GET / HTTP/1.1\r\nHost: first:1\r\nHost: second:2\r\n\r\n")
		require.NoError(t, err)

		assert.Equal(t, "second:2", req.Host)
	})

	t.Run("ReadsBodyByContentLength", func(t *testing.T) {
		req, err := parse(t, "POST /upload HTTP/1.1\r\nHost: a:1\r\nContent-Length: 5\r\n\r\nhello")
		require.NoError(t, err)

		assert.Equal(t, MethodPost, req.Method)
		assert.Equal(t, []byte("hello"), req.Body)
	})

	t.Run("MissingHostIsEmptyNotError", func(t *testing.T) {
		req, err := parse(t, "GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		assert.Empty(t, req.Host)
	})

	t.Run("ToleratesBareLF", func(t *testing.T) {
		req, err := parse(t, "GET / HTTP/1.1\nHost: a:1\n\n")
		require.NoError(t, err)
		assert.Equal(t, "a:1", req.Host)
	})

	t.Run("UnknownMethodIsOther", func(t *testing.T) {
		req, err := parse(t, "DELETE /thing HTTP/1.1\r\nHost: a:1\r\n\r\n")
		require.NoError(t, err)

		assert.Equal(t, MethodOther, req.Method)
		assert.Equal(t, "DELETE", req.RawMethod)
	})
}

func TestReadRequestRejects(t *testing.T) {
	badRequest := func(t *testing.T, raw string) {
		t.Helper()
		_, err := parse(t, raw)
		require.Error(t, err)
		assert.Equal(t, StatusBadRequest, StatusOf(err))
	}

	t.Run("MalformedRequestLine", func(t *testing.T) {
		badRequest(t, "GET /index.html\r\n\r\n")
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		badRequest(t, "GET / HTTP/2.0\r\nHost: a:1\r\n\r\n")
	})

	t.Run("HeaderWithoutColon", func(t *testing.T) {
		badRequest(t, "GET / HTTP/1.1\r\nHost localhost\r\n\r\n")
	})

	t.Run("InvalidContentLength", func(t *testing.T) {
		badRequest(t, "POST /upload HTTP/1.1\r\nHost: a:1\r\nContent-Length: nope\r\n\r\n")
	})

	t.Run("NegativeContentLength", func(t *testing.T) {
		badRequest(t, "POST /upload HTTP/1.1\r\nHost: a:1\r\nContent-Length: -4\r\n\r\n")
	})

	t.Run("OversizedHeaders", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 10000) + "\r\n\r\n"
		badRequest(t, raw)
	})

	t.Run("OversizedBody", func(t *testing.T) {
		raw := "POST /upload HTTP/1.1\r\nHost: a:1\r\nContent-Length: 9999999\r\n\r\n"
		badRequest(t, raw)
	})
}

func TestReadRequestTransportErrors(t *testing.T) {
	t.Run("CleanEOFBeforeRequest", func(t *testing.T) {
		_, err := parse(t, "")
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("TruncatedBodyIsIOError", func(t *testing.T) {
		_, err := parse(t, "POST /upload HTTP/1.1\r\nHost: a:1\r\nContent-Length: 10\r\n\r\nshort")
		require.Error(t, err)

		// Short bodies terminate the session instead of producing a status.
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("TruncatedHeadersIsIOError", func(t *testing.T) {
		_, err := parse(t, "GET / HTTP/1.1\r\nHost: a")
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestWantsKeepAlive(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"HTTP11Default", "GET / HTTP/1.1\r\nHost: a:1\r\n\r\n", true},
		{"HTTP11ExplicitClose", "GET / HTTP/1.1\r\nHost: a:1\r\nConnection: close\r\n\r\n", false},
		{"HTTP10Default", "GET / HTTP/1.0\r\nHost: a:1\r\n\r\n", false},
		{"HTTP10ExplicitKeepAlive", "GET / HTTP/1.0\r\nHost: a:1\r\nConnection: keep-alive\r\n\r\n", true},
		{"CaseInsensitiveValue", "GET / HTTP/1.1\r\nHost: a:1\r\nConnection: Close\r\n\r\n", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := parse(t, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, req.WantsKeepAlive())
		})
	}
}
