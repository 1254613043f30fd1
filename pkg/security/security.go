// Package security implements the request validation policy: syntactic path
// safety and the Host header allow-list.
//
// All checks are pure decisions over the request text. Nothing here touches
// the filesystem or logs; callers are expected to log rejected requests as
// security events themselves. Path checks in particular run on the literal
// decoded path before any filesystem resolution, because resolving first
// would mean trusting a path that may already have escaped the resource
// root.
package security

import (
	"net/url"
	"strings"

	"github.com/rpellegrini/webserve/pkg/httpmsg"
)

// forbiddenPatterns are the byte sequences that make a decoded request path
// unsafe: parent-directory segments, home-directory expansion, separator
// doubling, backslashes and drive/stream separators.
var forbiddenPatterns = []string{"..", "~", "//", "\\", ":"}

// SafePath percent-decodes a request path and checks it against the
// traversal policy. It returns the cleaned root-relative path (no leading
// slash) on success.
//
// Undecodable paths map to 400; any forbidden pattern in the decoded form
// maps to 403.
func SafePath(rawPath string) (string, error) {
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", httpmsg.NewError(httpmsg.StatusBadRequest, "undecodable path %q", rawPath)
	}

	for _, pattern := range forbiddenPatterns {
		if strings.Contains(decoded, pattern) {
			return "", httpmsg.NewError(httpmsg.StatusForbidden,
				"path %q contains forbidden pattern %q", decoded, pattern)
		}
	}

	return strings.TrimPrefix(decoded, "/"), nil
}

// Policy is the per-server acceptance rule for Host headers and explicitly
// denied paths. It is built once at startup and read-only afterwards.
type Policy struct {
	// AllowedHosts is the exact-match allow-list for the Host header.
	AllowedHosts []string

	// DeniedPaths lists request paths that are always rejected, before the
	// Resource Provider is ever consulted.
	DeniedPaths []string
}

// NewPolicy builds the acceptance rule for a server bound to host:port. The
// allow-list is intentionally a closed enumeration: the configured address
// plus the two localhost spellings.
func NewPolicy(hostPort, localhostPort, loopbackPort string, deniedPaths []string) Policy {
	return Policy{
		AllowedHosts: []string{hostPort, localhostPort, loopbackPort},
		DeniedPaths:  deniedPaths,
	}
}

// CheckHost validates the Host header value. A missing header is a client
// error (400); a present but unlisted value is a policy violation (403).
func (p Policy) CheckHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return httpmsg.NewError(httpmsg.StatusBadRequest, "missing Host header")
	}

	for _, allowed := range p.AllowedHosts {
		if host == allowed {
			return nil
		}
	}

	return httpmsg.NewError(httpmsg.StatusForbidden, "host %q not in allow-list", host)
}

// CheckDenied rejects requests for paths on the deny-list with 403. The
// match is exact and runs on the raw request path.
func (p Policy) CheckDenied(path string) error {
	for _, denied := range p.DeniedPaths {
		if path == denied {
			return httpmsg.NewError(httpmsg.StatusForbidden, "access to %q is denied", path)
		}
	}
	return nil
}
