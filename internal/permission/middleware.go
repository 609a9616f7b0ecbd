package permission

import (
	"log"
	"net/http"
	"strings"

	"hotelops/internal/api"
)

// Gate applies GuardAccess to a route. It is the only place a Decision turns
// into an HTTP side effect: browsers get a 303 to the destination, API
// callers a 403 carrying the same Location.
func Gate(reg *Registry, e Endpoint, opts Options) func(http.Handler) http.Handler {
	req := opts.Require
	if req == "" {
		req = CapRead
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := api.SessionFromContext(r.Context())
			if s == nil {
				api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
				return
			}

			c := reg.For(s.ID, Actor{ActorID: s.ActorID, PropertyID: s.PropertyID})
			if err := c.Load(r.Context()); err != nil {
				log.Printf("permission fetch failed actor=%s property=%s err=%v", s.ActorID, s.PropertyID, err)
			}

			d := GuardAccess(e, c.Status(), c.Resolve(e), opts)
			switch d.Kind {
			case DecisionAllow:
				next.ServeHTTP(w, r)
			case DecisionRedirect:
				if strings.Contains(r.Header.Get("Accept"), "text/html") {
					http.Redirect(w, r, d.Location(), http.StatusSeeOther)
					return
				}
				w.Header().Set("Location", d.Location())
				api.WriteError(w, http.StatusForbidden, "PERMISSION_DENIED", "no "+string(req)+" access to "+string(e))
			default:
				msg := "permissions are not available yet"
				if err := c.Err(); err != nil {
					msg = api.UpstreamMessage(err)
				}
				api.WriteError(w, http.StatusServiceUnavailable, "PERMISSIONS_UNAVAILABLE", msg)
			}
		})
	}
}
