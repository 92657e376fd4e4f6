package httpx

import (
	"errors"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

var ErrMissingBearer = errors.New("missing or malformed bearer authorization header")

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header. The token is returned as sent, without trimming.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", ErrMissingBearer
	}
	token := h[len(bearerPrefix):]
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
