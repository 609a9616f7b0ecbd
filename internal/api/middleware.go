package api

import (
	"net/http"
	"strings"
	"time"

	"hotelops/pkg/config"
	"hotelops/pkg/session"
)

// SessionAuth verifies the admin console session token.
//
// Expected header:
// - Authorization: Bearer <JWT>
//
// The verified session (actor, property, session id) is attached to the request context.
func SessionAuth(cfg config.SessionConfig, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
				return
			}

			s, err := session.Verify(strings.TrimSpace(authz[7:]), cfg.Audience, cfg.Secret, now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
