package fetch

import "net/http"

// Authenticator produces the authentication headers for one API request.
// Implementations cover the three supported schemes: ES256-signed JWT bearer
// tokens, symmetric HMAC request signing and OAuth bearer tokens.
type Authenticator interface {
	Headers(method, path string) (http.Header, error)
}
