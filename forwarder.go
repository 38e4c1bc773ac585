// Package forwarder routes outgoing HTTP traffic through a forwarder service.
//
// A Forwarder wraps an http.Client so that requests targeting specific
// hosts, or all hosts, are transparently redirected to a forwarder endpoint.
// The forwarder service relays the request to the real destination and
// returns the response unchanged.
//
// Two modes of operation:
//
//  1. Host-based (default): only requests whose hostname matches a
//     configured set are intercepted, everything else passes through
//     untouched.
//  2. Intercept-all: every outgoing request is intercepted, except requests
//     to the forwarder itself (loop guard).
//
// Interception is an explicit transport swap, not ambient global state:
// Activate installs a rewriting http.RoundTripper on the bound client and
// Deactivate restores the original transport exactly. Multiple independent
// Forwarder instances can coexist, each bound to its own client.
package forwarder

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-zoox/logger"
	"golang.org/x/net/http/httpguts"
)

// Options is the configuration for Activate.
type Options struct {
	// BaseURL is the root URL of the forwarder service. A "/forward" path is
	// appended automatically. Defaults to DefaultBaseURL.
	BaseURL string

	// Hosts is the list of hostnames to intercept. Only requests to these
	// hosts are forwarded. If empty and InterceptAll is false, defaults to
	// DefaultAPIHost.
	Hosts []string

	// ExtraHosts is deprecated, use Hosts instead. Kept for backward
	// compatibility: it merges into the host set instead of replacing it.
	ExtraHosts []string

	// HostPatterns is an optional list of regular expressions matched
	// against the hostname in host-based mode, checked after Hosts.
	HostPatterns []string

	// InterceptAll forwards every outgoing request, except requests to the
	// forwarder itself. Hosts is ignored in this mode.
	InterceptAll bool
}

// config is one consistent view of the forwarder configuration. RoundTrip
// takes a single snapshot per request, so an in-flight request observes
// either the whole old configuration or the whole new one, never a mix.
type config struct {
	active       bool
	baseURL      string
	token        string
	interceptAll bool
	hosts        map[string]struct{}
	hostPatterns []string
	relayHost    string
}

func (c config) shouldIntercept(hostname string) bool {
	if c.interceptAll {
		// Everything except the forwarder itself (loop guard).
		return hostname != c.relayHost
	}

	if _, ok := c.hosts[hostname]; ok {
		return true
	}

	return matchHostPatterns(c.hostPatterns, hostname)
}

// Forwarder holds the interception configuration for one http.Client.
type Forwarder struct {
	mu     sync.RWMutex
	cfg    config
	client *http.Client
	// original is the client's transport as found at activation time,
	// restored verbatim by Deactivate. May be nil (http.DefaultTransport).
	original http.RoundTripper
}

// New creates a Forwarder bound to client. A nil client binds to
// http.DefaultClient.
func New(client *http.Client) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}

	return &Forwarder{client: client}
}

// Activate configures the forwarder and installs the interception transport
// on the bound client.
//
// The token is sent as both "Authorization: Bearer <token>" and
// "X-Api-Token: <token>" headers, so it must be non-empty and a valid header
// value. Activation fails with ErrTokenRequired, ErrInvalidToken or
// ErrInvalidBaseURL, leaving any prior configuration untouched.
//
// Calling Activate while already active replaces the configuration in place
// without touching the installed transport.
//
// Activate and Deactivate are startup/shutdown operations, not designed to
// race with each other; requests in flight are safe either way.
func (f *Forwarder) Activate(token string, opts ...*Options) error {
	o := &Options{}
	if len(opts) != 0 && opts[0] != nil {
		o = opts[0]
	}

	if token == "" {
		return ErrTokenRequired
	}
	if !httpguts.ValidHeaderFieldValue(token) {
		return ErrInvalidToken
	}

	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	// Cache the forwarder's own hostname so we never intercept it.
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	relayHost := strings.ToLower(parsed.Hostname())
	if relayHost == "" {
		return fmt.Errorf("%w: %q has no hostname", ErrInvalidBaseURL, baseURL)
	}

	hosts := make(map[string]struct{})
	if !o.InterceptAll {
		hosts = resolveHosts(o.Hosts, o.ExtraHosts)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	wasActive := f.cfg.active
	f.cfg = config{
		active:       true,
		baseURL:      baseURL,
		token:        token,
		interceptAll: o.InterceptAll,
		hosts:        hosts,
		hostPatterns: o.HostPatterns,
		relayHost:    relayHost,
	}

	if wasActive {
		logger.Warnf("forwarder already active, updating configuration without reinstalling the transport")
		return nil
	}

	f.original = f.client.Transport
	f.client.Transport = &Transport{Forwarder: f, Base: f.original}

	if o.InterceptAll {
		logger.Infof("forwarder activated (intercept ALL), requests routed through %s", baseURL)
	} else {
		logger.Infof("forwarder activated for %s, requests routed through %s", strings.Join(sortedHosts(hosts), ", "), baseURL)
	}

	return nil
}

// Deactivate restores the client's pre-activation transport and marks the
// forwarder inactive. Safe to call when not active (logs a warning).
func (f *Forwarder) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.cfg.active {
		logger.Warnf("forwarder is not active, nothing to deactivate")
		return
	}

	f.client.Transport = f.original
	f.original = nil
	f.cfg.active = false

	logger.Infof("forwarder deactivated, requests are sent directly")
}

// IsActive reports whether the forwarder is currently active.
func (f *Forwarder) IsActive() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg.active
}

// BaseURL returns the current forwarder base URL, or an empty string if
// never configured.
func (f *Forwarder) BaseURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg.baseURL
}

// InterceptedHosts returns a sorted snapshot of the hostnames currently
// being intercepted. Empty in intercept-all mode (everything goes) and when
// the forwarder is not active.
func (f *Forwarder) InterceptedHosts() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.cfg.active || f.cfg.interceptAll {
		return nil
	}

	return sortedHosts(f.cfg.hosts)
}

// snapshot returns one consistent view of the configuration. The hosts map
// is shared but never mutated after Activate publishes it.
func (f *Forwarder) snapshot() config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg
}

// Default is the package-level Forwarder, bound to http.DefaultClient. It
// mirrors the instance API for applications that use the default client.
var Default = New(http.DefaultClient)

// Activate configures and installs the Default forwarder.
func Activate(token string, opts ...*Options) error {
	return Default.Activate(token, opts...)
}

// Deactivate restores direct HTTP access on the Default forwarder.
func Deactivate() {
	Default.Deactivate()
}

// IsActive reports whether the Default forwarder is active.
func IsActive() bool {
	return Default.IsActive()
}

// BaseURL returns the Default forwarder's base URL.
func BaseURL() string {
	return Default.BaseURL()
}

// InterceptedHosts returns the Default forwarder's intercepted host set.
func InterceptedHosts() []string {
	return Default.InterceptedHosts()
}
