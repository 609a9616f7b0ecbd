package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotelops/internal/api"
	"hotelops/internal/booking"
	"hotelops/internal/permission"
	"hotelops/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool

	// Optional overrides, used by tests.
	Bookings    booking.Store
	Permissions permission.Fetcher
	Now         func() time.Time
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var store booking.Store = deps.Bookings
	if store == nil {
		store = booking.NewRepository(deps.DB)
	}
	var fetcher permission.Fetcher = deps.Permissions
	if fetcher == nil {
		fetcher = permission.NewRepository(deps.DB)
	}

	bookings := booking.NewService(store, booking.ServiceOptions{
		Proposals: booking.NewProposals(0, deps.Cfg.Bookings.ProposalTTL),
		Views:     booking.NewViews(deps.Cfg.Bookings.ViewCacheSize, deps.Cfg.Bookings.ViewCacheTTL),
		Now:       deps.Now,
		Location:  deps.Cfg.PropertyTimezone,
	})
	bookingHandlers := booking.Handlers{Service: bookings}

	registry := permission.NewRegistry(fetcher, deps.Cfg.Permissions.MaxSessions, deps.Cfg.Session.TTL, deps.Cfg.Permissions.ReloadInterval)
	permissionHandlers := permission.Handlers{Registry: registry}

	gate := func(e permission.Endpoint, c permission.Capability) func(http.Handler) http.Handler {
		return permission.Gate(registry, e, permission.Options{Require: c, Destination: deps.Cfg.UnauthorizedPath})
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AdminAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAgeSeconds:  600,
		}))
		r.Use(api.SessionAuth(deps.Cfg.Session, deps.Now))

		r.Get("/me/permissions", permissionHandlers.List)
		r.Get("/me/permissions/{endpoint}", permissionHandlers.Get)
		r.Post("/me/permissions/refresh", permissionHandlers.Refresh)

		r.Route("/bookings", func(r chi.Router) {
			r.With(gate(permission.EndpointBookings, permission.CapRead)).Get("/", bookingHandlers.List)
			r.With(gate(permission.EndpointBookings, permission.CapRead)).Get("/{id}", bookingHandlers.Get)
			r.With(gate(permission.EndpointBookings, permission.CapRead)).Get("/{id}/events", bookingHandlers.Events)

			r.Group(func(r chi.Router) {
				r.Use(gate(permission.EndpointBookingStatus, permission.CapUpdate))
				r.Post("/{id}/status/proposals", bookingHandlers.ProposeStatus)
				r.Post("/{id}/actions/{action}", bookingHandlers.ProposeAction)
				r.Post("/{id}/status/proposals/{proposalID}/confirm", bookingHandlers.Confirm)
				r.Delete("/{id}/status/proposals/{proposalID}", bookingHandlers.Discard)
			})

			r.With(gate(permission.EndpointBookingCancellation, permission.CapUpdate)).Post("/{id}/cancel", bookingHandlers.Cancel)
		})
	})

	return r
}
