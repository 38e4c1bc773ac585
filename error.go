package forwarder

import "errors"

// ErrTokenRequired is returned by Activate when the token is empty.
var ErrTokenRequired = errors.New("forwarder: token is required, pass the FORWARDER_TOKEN value configured on the forwarder server")

// ErrInvalidToken is returned by Activate when the token cannot be sent as
// an HTTP header value.
var ErrInvalidToken = errors.New("forwarder: token is not a valid header value")

// ErrInvalidBaseURL is returned by Activate when the base URL cannot be
// parsed or has no hostname. Without a hostname the loop guard cannot work.
var ErrInvalidBaseURL = errors.New("forwarder: invalid base url")
