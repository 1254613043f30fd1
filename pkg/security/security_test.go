package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpellegrini/webserve/pkg/httpmsg"
)

func TestSafePath(t *testing.T) {
	t.Run("AcceptsPlainPaths", func(t *testing.T) {
		cases := map[string]string{
			"/index.html":      "index.html",
			"/files/notes.txt": "files/notes.txt",
			"/logo.png":        "logo.png",
		}
		for raw, want := range cases {
			got, err := SafePath(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got)
		}
	})

	t.Run("DecodesPercentEncoding", func(t *testing.T) {
		got, err := SafePath("/hello%20world.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello world.txt", got)
	})

	t.Run("RejectsTraversalAndEscapes", func(t *testing.T) {
		forbidden := []string{
			"/../etc/passwd",
			"/files/../../secret",
			"/%2e%2e/etc/passwd", // encoded traversal is decoded before checking
			"/~root/file",
			"//etc/passwd",
			"/files\\..\\secret",
			"/c:/windows",
		}
		for _, raw := range forbidden {
			_, err := SafePath(raw)
			require.Error(t, err, raw)
			assert.Equal(t, httpmsg.StatusForbidden, httpmsg.StatusOf(err), raw)
		}
	})

	t.Run("RejectsUndecodablePathAsBadRequest", func(t *testing.T) {
		_, err := SafePath("/bad%zzpath")
		require.Error(t, err)
		assert.Equal(t, httpmsg.StatusBadRequest, httpmsg.StatusOf(err))
	})
}

func TestPolicyCheckHost(t *testing.T) {
	policy := NewPolicy("192.168.1.5:8080", "localhost:8080", "127.0.0.1:8080", nil)

	t.Run("AcceptsListedHosts", func(t *testing.T) {
		for _, host := range []string{"192.168.1.5:8080", "localhost:8080", "127.0.0.1:8080"} {
			assert.NoError(t, policy.CheckHost(host), host)
		}
	})

	t.Run("MissingHostIsBadRequest", func(t *testing.T) {
		err := policy.CheckHost("")
		require.Error(t, err)
		assert.Equal(t, httpmsg.StatusBadRequest, httpmsg.StatusOf(err))
	})

	t.Run("MismatchedHostIsForbidden", func(t *testing.T) {
		for _, host := range []string{"evil.com", "localhost:9999", "localhost"} {
			err := policy.CheckHost(host)
			require.Error(t, err, host)
			assert.Equal(t, httpmsg.StatusForbidden, httpmsg.StatusOf(err), host)
		}
	})
}

func TestPolicyCheckDenied(t *testing.T) {
	policy := Policy{DeniedPaths: []string{"/config", "/.env", "/secret.txt"}}

	for _, path := range policy.DeniedPaths {
		err := policy.CheckDenied(path)
		require.Error(t, err, path)
		assert.Equal(t, httpmsg.StatusForbidden, httpmsg.StatusOf(err), path)
	}

	assert.NoError(t, policy.CheckDenied("/index.html"))
	assert.NoError(t, policy.CheckDenied("/configs")) // exact match only
}
