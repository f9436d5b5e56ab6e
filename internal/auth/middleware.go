package auth

import (
	"net/http"
	"strings"

	"github.com/userbase-hq/userbase/internal/platform/httpx"
	"github.com/userbase-hq/userbase/internal/shared"
)

// RequireAuth returns middleware that admits only requests carrying a valid
// bearer access token and stores the subject user id in the request context.
func RequireAuth(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.RespondError(w, shared.ErrAccessDenied)
				return
			}
			userID, err := issuer.Subject(token)
			if err != nil {
				httpx.RespondError(w, shared.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
