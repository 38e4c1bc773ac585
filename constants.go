package forwarder

// Version is the library version.
const Version = "1.0.0"

// DefaultAPIHost is the hostname intercepted when no hosts are configured
// (historically the Telegram Bot API).
const DefaultAPIHost = "api.telegram.org"

// DefaultBaseURL is the default forwarder base URL, no trailing slash.
const DefaultBaseURL = "https://requests-forwarder.ir"

// ForwardEndpoint is the path appended to the base URL when building the
// forwarder target.
const ForwardEndpoint = "/forward"

// HeaderAPIToken is the secondary token header. The token is sent both here
// and as a bearer Authorization header so the forwarder can verify either way.
const HeaderAPIToken = "X-Api-Token"

// QueryOriginalURL is the query parameter carrying the original destination.
const QueryOriginalURL = "url"
