package auth

import (
	"errors"
	"net/http"
)

// HeaderUsername names the acting user on to-do routes.
const HeaderUsername = "username"

// ErrMissingUsername is returned when the username header is absent or empty.
var ErrMissingUsername = errors.New("missing username header")

// Principal represents the caller named by the request.
type Principal struct {
	Username string
}

// ParseFromHeader extracts the principal from the request headers.
// The value is used verbatim; lookups compare it by exact equality.
func ParseFromHeader(h http.Header) (*Principal, error) {
	username := h.Get(HeaderUsername)
	if username == "" {
		return nil, ErrMissingUsername
	}
	return &Principal{Username: username}, nil
}
