package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotelops/internal/booking"
	"hotelops/internal/events"
	"hotelops/internal/permission"
	"hotelops/pkg/config"
	"hotelops/pkg/session"
)

type stubStore struct{}

func (stubStore) List(ctx context.Context, propertyID string, f booking.Filters, today time.Time) ([]booking.Booking, int, error) {
	return []booking.Booking{{ID: "b1", PropertyID: propertyID, Status: booking.StatusConfirmed}}, 1, nil
}

func (stubStore) Get(ctx context.Context, propertyID, bookingID string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (stubStore) Update(ctx context.Context, propertyID, bookingID string, m booking.Mutation) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (stubStore) Events(ctx context.Context, propertyID, bookingID string) ([]events.Event, error) {
	return nil, nil
}

type stubFetcher struct {
	table permission.Table
}

func (f stubFetcher) Fetch(ctx context.Context, actor permission.Actor) (permission.Table, error) {
	return f.table, nil
}

func testConfig() config.Config {
	return config.Config{
		Session:          config.SessionConfig{Secret: "s3cret", Audience: "hotelops-admin", TTL: time.Hour},
		UnauthorizedPath: "/unauthorized",
		PropertyTimezone: time.UTC,
		Bookings:         config.BookingsConfig{ProposalTTL: time.Minute, ViewCacheTTL: time.Second, ViewCacheSize: 16},
		Permissions:      config.PermissionsConfig{ReloadInterval: time.Second, MaxSessions: 16},
	}
}

func request(t *testing.T, h http.Handler, cfg config.Config, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := session.Issue("actor-1", "prop-1", cfg.Session.Audience, cfg.Session.Secret, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Healthz(t *testing.T) {
	h := NewRouter(Dependencies{Cfg: testConfig(), Bookings: stubStore{}, Permissions: stubFetcher{}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RequiresSession(t *testing.T) {
	h := NewRouter(Dependencies{Cfg: testConfig(), Bookings: stubStore{}, Permissions: stubFetcher{}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_BookingsGatedByPermission(t *testing.T) {
	cfg := testConfig()
	allowed := NewRouter(Dependencies{Cfg: cfg, Bookings: stubStore{}, Permissions: stubFetcher{table: permission.Table{
		permission.EndpointBookings: {Endpoint: permission.EndpointBookings, CanRead: true},
	}}})
	if rec := request(t, allowed, cfg, http.MethodGet, "/v1/bookings"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := request(t, allowed, cfg, http.MethodPost, "/v1/bookings/b1/cancel"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cancel without update, got %d", rec.Code)
	}

	denied := NewRouter(Dependencies{Cfg: cfg, Bookings: stubStore{}, Permissions: stubFetcher{table: permission.Table{}}})
	rec := request(t, denied, cfg, http.MethodGet, "/v1/bookings")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/unauthorized?endpoint=bookings" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestRouter_MyPermissions(t *testing.T) {
	cfg := testConfig()
	h := NewRouter(Dependencies{Cfg: cfg, Bookings: stubStore{}, Permissions: stubFetcher{table: permission.Table{
		permission.EndpointRooms: {Endpoint: permission.EndpointRooms, CanRead: true, CanUpdate: true},
	}}})

	rec := request(t, h, cfg, http.MethodGet, "/v1/me/permissions/rooms")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status     permission.Status  `json:"status"`
		Permission *permission.Record `json:"permission"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != permission.StatusReady || body.Permission == nil || !body.Permission.CanUpdate {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	if rec := request(t, h, cfg, http.MethodGet, "/v1/me/permissions/nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown endpoint, got %d", rec.Code)
	}
}
