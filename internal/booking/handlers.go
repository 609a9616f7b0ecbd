package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hotelops/internal/api"
)

// MaxPage bounds the page query so the row offset cannot overflow.
const MaxPage = 100000

type Handlers struct {
	Service *Service
}

// bookingID reads the {id} param. Booking ids are uuids, so anything else
// cannot name a booking and is reported as not found.
func bookingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return "", false
	}
	return id.String(), true
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var rt RejectedTransition
	switch {
	case errors.As(err, &rt):
		api.WriteError(w, http.StatusConflict, rt.Code, rt.Message)
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, ErrProposalNotFound):
		api.WriteError(w, http.StatusNotFound, "PROPOSAL_NOT_FOUND", err.Error())
	default:
		log.Printf("[booking/handlers] %s %s failed: %v", r.Method, r.URL.Path, err)
		api.WriteUpstreamError(w, err)
	}
}

// parseFilters reads the list query. The "changed" parameter tells which
// filter the operator just touched; it defaults to status when one is given.
func parseFilters(r *http.Request) (Filters, Dimension, error) {
	qs := r.URL.Query()
	var f Filters

	if v := qs.Get("scope"); v != "" {
		s, err := ParseScope(v)
		if err != nil {
			return f, "", err
		}
		f.Scope = s
	}
	if v := qs.Get("status"); v != "" {
		s, err := ParseStatus(v)
		if err != nil {
			return f, "", err
		}
		f.Status = s
	}
	if v := qs.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n > MaxPage {
			return f, "", errors.New("page must be a number no greater than " + strconv.Itoa(MaxPage))
		}
		f.Page = n
	}
	if v := qs.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n > 100 {
			return f, "", errors.New("pageSize must be a number no greater than 100")
		}
		f.PageSize = n
	}

	changed := DimensionScope
	if f.Status != "" {
		changed = DimensionStatus
	}
	switch Dimension(qs.Get("changed")) {
	case DimensionStatus:
		changed = DimensionStatus
	case DimensionScope:
		changed = DimensionScope
	case "":
	default:
		return f, "", errors.New("changed must be status or scope")
	}
	return f, changed, nil
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	f, changed, err := parseFilters(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	res, err := h.Service.List(r.Context(), s.PropertyID, f, changed)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	d, err := h.Service.Get(r.Context(), s.PropertyID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	evs, err := h.Service.Events(r.Context(), s.PropertyID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

type ProposeStatusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) ProposeStatus(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	var req ProposeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}

	pr, err := h.Service.Propose(r.Context(), s.PropertyID, id, s.ActorID, next)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, pr)
}

func (h Handlers) ProposeAction(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	a, err := ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid action")
		return
	}

	pr, err := h.Service.ProposeAction(r.Context(), s.PropertyID, id, s.ActorID, a)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, pr)
}

func (h Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	b, err := h.Service.Confirm(r.Context(), s.PropertyID, id, chi.URLParam(r, "proposalID"), s.ActorID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

func (h Handlers) Discard(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Discard(s.PropertyID, id, chi.URLParam(r, "proposalID"), s.ActorID); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	var req Cancellation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	b, err := h.Service.Cancel(r.Context(), s.PropertyID, id, s.ActorID, req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}
