package forwarder

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-zoox/headers"
	"github.com/go-zoox/logger"
)

// Transport is an http.RoundTripper that redirects matching requests to the
// forwarder service. Activate installs it on the bound client, but it can
// also be placed on any client by hand:
//
//	client := &http.Client{
//		Transport: &Transport{Forwarder: f},
//	}
type Transport struct {
	// Forwarder supplies the interception configuration.
	Forwarder *Forwarder

	// Base is the transport that actually performs requests, both
	// pass-through and rewritten ones. A nil Base uses
	// http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
//
// Matching requests are cloned and rewritten to "{base}/forward" with the
// original URL injected as the "url" query parameter and the token attached
// as both auth headers. Everything else about the request, method, body,
// remaining headers and query parameters, is forwarded verbatim. The
// response comes back exactly as the forwarder sent it.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	cfg := t.Forwarder.snapshot()
	if !cfg.active || req.URL == nil {
		return base.RoundTrip(req)
	}

	hostname := strings.ToLower(req.URL.Hostname())
	if hostname == "" || !cfg.shouldIntercept(hostname) {
		return base.RoundTrip(req)
	}

	originalURL := req.URL.String()

	target, err := url.Parse(cfg.baseURL + ForwardEndpoint)
	if err != nil {
		// Unreachable: the base URL was parsed at activation. Pass through
		// rather than fail the request.
		return base.RoundTrip(req)
	}

	// Clone so caller-owned structures are never mutated.
	out := req.Clone(req.Context())

	// The original URL rides along as the "url" query parameter; the
	// forwarder extracts it and passes the remaining parameters on to the
	// real destination. URL.Query folds the raw query best-effort, so a
	// malformed caller query never fails the request.
	query := out.URL.Query()
	query.Set(QueryOriginalURL, originalURL)
	target.RawQuery = query.Encode()

	out.URL = target
	out.Host = ""

	// Both header styles, so the forwarder can verify either way.
	out.Header.Set(headers.Authorization, "Bearer "+cfg.token)
	out.Header.Set(HeaderAPIToken, cfg.token)

	logger.Debugf("forwarder: %s %s -> %s", req.Method, originalURL, target)

	return base.RoundTrip(out)
}
