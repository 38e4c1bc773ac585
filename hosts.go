package forwarder

import (
	"sort"
	"strings"

	"github.com/go-zoox/core-utils/regexp"
)

// normalizeHost lowercases a host and drops an optional port, so entries like
// "API.Telegram.org" or "localhost:8080" match the hostname of a parsed URL.
func normalizeHost(host string) string {
	h, _ := splitHostPort(host)
	return strings.ToLower(h)
}

// resolveHosts builds the effective host set for host-based mode.
// An empty Hosts list falls back to DefaultAPIHost; ExtraHosts is a legacy
// option that merges into the set instead of replacing it.
func resolveHosts(hosts, extraHosts []string) map[string]struct{} {
	resolved := make(map[string]struct{})

	if len(hosts) != 0 {
		for _, h := range hosts {
			resolved[normalizeHost(h)] = struct{}{}
		}
	} else {
		resolved[DefaultAPIHost] = struct{}{}
	}

	for _, h := range extraHosts {
		resolved[normalizeHost(h)] = struct{}{}
	}

	return resolved
}

func sortedHosts(hosts map[string]struct{}) []string {
	out := make([]string, 0, len(hosts))
	for h := range hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func matchHostPatterns(patterns []string, hostname string) bool {
	for _, pattern := range patterns {
		if regexp.Match(pattern, hostname) {
			return true
		}
	}
	return false
}

// splitHostPort separates host and port. If the port is not valid, it returns
// the entire input as host, and it doesn't check the validity of the host.
// Unlike net.SplitHostPort, but per RFC 3986, it requires ports to be numeric.
func splitHostPort(hostPort string) (host, port string) {
	host = hostPort

	colon := strings.LastIndexByte(host, ':')
	if colon != -1 && validOptionalPort(host[colon:]) {
		host, port = host[:colon], host[colon+1:]
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	return
}

// validOptionalPort reports whether port is either an empty string
// or matches /^:\d*$/
func validOptionalPort(port string) bool {
	if port == "" {
		return true
	}
	if port[0] != ':' {
		return false
	}
	for _, b := range port[1:] {
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}
