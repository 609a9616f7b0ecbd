package permission

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotelops/internal/api"
)

type Handlers struct {
	Registry *Registry
}

func (h Handlers) cache(r *http.Request) *Cache {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		return nil
	}
	return h.Registry.For(s.ID, Actor{ActorID: s.ActorID, PropertyID: s.PropertyID})
}

// List returns the resolved table so the console can branch its UI.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	c := h.cache(r)
	if c == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	_ = c.Load(r.Context())

	status, recs := c.Snapshot()
	api.WriteJSON(w, http.StatusOK, map[string]any{"status": status, "items": recs})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	c := h.cache(r)
	if c == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e, err := ParseEndpoint(chi.URLParam(r, "endpoint"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	_ = c.Load(r.Context())

	api.WriteJSON(w, http.StatusOK, map[string]any{"status": c.Status(), "permission": c.Select(e)})
}

func (h Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	c := h.cache(r)
	if c == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	if err := c.Refresh(r.Context()); err != nil {
		if errors.Is(err, ErrRefreshThrottled) {
			api.WriteError(w, http.StatusTooManyRequests, "REFRESH_THROTTLED", err.Error())
			return
		}
		api.WriteUpstreamError(w, err)
		return
	}

	status, recs := c.Snapshot()
	api.WriteJSON(w, http.StatusOK, map[string]any{"status": status, "items": recs})
}
