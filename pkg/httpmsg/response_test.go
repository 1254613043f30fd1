package httpmsg

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWrite(t *testing.T) {
	t.Run("SerializesInInsertionOrder", func(t *testing.T) {
		resp := NewResponse(StatusOK).
			SetHeader("Date", "Mon, 02 Jan 2006 15:04:05 GMT").
			SetHeader("Content-Type", "text/html; charset=utf-8").
			SetBody([]byte("<h1>hi</h1>")).
			SetHeader("Connection", "close")

		var buf bytes.Buffer
		require.NoError(t, resp.Write(&buf))

		want := "HTTP/1.1 200 OK\r\n" +
			"Date: Mon, 02 Jan 2006 15:04:05 GMT\r\n" +
			"Content-Type: text/html; charset=utf-8\r\n" +
			"Content-Length: 11\r\n" +
			"Connection: close\r\n" +
			"\r\n" +
			"<h1>hi</h1>"
		assert.Equal(t, want, buf.String())
	})

	t.Run("EmptyBodyStillCarriesContentLength", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewResponse(StatusNotFound).Write(&buf))

		assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 404 Not Found\r\n"))
		assert.Contains(t, buf.String(), "Content-Length: 0\r\n")
	})

	t.Run("SetHeaderReplacesInPlace", func(t *testing.T) {
		resp := NewResponse(StatusOK).
			SetHeader("Connection", "keep-alive").
			SetHeader("Content-Type", "text/html").
			SetHeader("Connection", "close")

		var buf bytes.Buffer
		require.NoError(t, resp.Write(&buf))

		// Replacing must not reorder: Connection stays before Content-Type.
		connIdx := strings.Index(buf.String(), "Connection:")
		typeIdx := strings.Index(buf.String(), "Content-Type:")
		assert.Less(t, connIdx, typeIdx)
		assert.Contains(t, buf.String(), "Connection: close\r\n")
		assert.NotContains(t, buf.String(), "keep-alive")
	})
}

func TestHTTPDate(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 17, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "Sat, 09 Mar 2024 16:04:05 GMT", HTTPDate(ts))
}
