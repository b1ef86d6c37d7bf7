package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths answer without a token.
var publicPaths = []string{"/health", "/metrics"}

// BearerAuthMiddleware requires "Authorization: Bearer <key>" with one of
// apiKeys on every route except publicPaths. Blank keys are ignored; with
// no keys left the middleware is a no-op.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if msg, ok := authorize(r.Header.Get("Authorization"), keys); !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="nodesearch"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// authorize checks an Authorization header value. On failure it returns
// the message for the client.
func authorize(header string, keys [][]byte) (string, bool) {
	if header == "" {
		return "missing authorization header", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "authorization header must use Bearer scheme", false
	}
	given := []byte(strings.TrimSpace(token))
	for _, k := range keys {
		if subtle.ConstantTimeCompare(given, k) == 1 {
			return "", true
		}
	}
	return "invalid api key", false
}
