//go:build integration

package booking

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/pkg/config"
	"hotelops/pkg/db"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/booking/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := config.Config{DatabaseURL: url}
	require.NoError(t, db.MigrateConfig("file://../../migrations", cfg))

	pool, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedProperty(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	ctx := context.Background()
	var propertyID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO properties (name) VALUES ('Test Hotel') RETURNING id::text`,
	).Scan(&propertyID))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM properties WHERE id = $1`, propertyID)
	})
	return propertyID
}

func seedBooking(t *testing.T, pool *pgxpool.Pool, propertyID, ref string, status Status, arrival, departure *time.Time) string {
	t.Helper()
	var id string
	require.NoError(t, pool.QueryRow(context.Background(), `
INSERT INTO bookings (property_id, reference, guest_name, booking_status, estimated_arrival, estimated_departure, total_amount)
VALUES ($1, $2, 'Guest', $3, $4, $5, 120.50)
RETURNING id::text`,
		propertyID, ref, string(status), arrival, departure,
	).Scan(&id))
	return id
}

func TestRepository_ScopeFilterMatchesInScope(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	propertyID := seedProperty(t, pool)
	ctx := context.Background()
	today := date("2025-06-10")

	seeded := map[string]Booking{}
	for i, dep := range []*time.Time{datePtr("2025-06-01"), datePtr("2025-06-09"), datePtr("2025-06-10"), datePtr("2025-06-11"), nil} {
		ref := "R" + string(rune('A'+i))
		id := seedBooking(t, pool, propertyID, ref, StatusConfirmed, datePtr("2025-05-30"), dep)
		seeded[id] = Booking{ID: id, EstimatedDeparture: dep}
	}

	for _, scope := range []Scope{ScopeUpcoming, ScopePast, ScopeAll} {
		var want []string
		for id, b := range seeded {
			if InScope(b, scope, today) {
				want = append(want, id)
			}
		}
		sort.Strings(want)

		items, total, err := repo.List(ctx, propertyID, Filters{Scope: scope, Page: 1, PageSize: 50}, today)
		require.NoError(t, err)
		var got []string
		for _, b := range items {
			got = append(got, b.ID)
		}
		sort.Strings(got)

		assert.Equal(t, want, got, "scope %s", scope)
		assert.Equal(t, len(want), total, "scope %s", scope)
	}
}

func TestRepository_UpdateWritesAuditAndEventTogether(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	propertyID := seedProperty(t, pool)
	ctx := context.Background()
	today := date("2025-06-10")
	id := seedBooking(t, pool, propertyID, "R1", StatusConfirmed, datePtr("2025-06-12"), datePtr("2025-06-14"))

	countRows := func() (audits, evs int) {
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE booking_id = $1`, id).Scan(&audits))
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM booking_events WHERE booking_id = $1`, id).Scan(&evs))
		return audits, evs
	}

	_, err := repo.Update(ctx, propertyID, id, Mutation{
		ActorID: "actor-1",
		Action:  ActionCheckIn,
		Apply: func(cur Booking) (Booking, error) {
			return ApplyStatusChange(cur, StatusCheckedIn, today)
		},
	})
	var rt RejectedTransition
	require.ErrorAs(t, err, &rt)
	a, e := countRows()
	assert.Zero(t, a)
	assert.Zero(t, e)

	b, err := repo.Update(ctx, propertyID, id, Mutation{
		ActorID: "actor-1",
		Action:  ActionCancel,
		Apply: func(cur Booking) (Booking, error) {
			return ApplyCancellation(cur, Cancellation{Fee: decimal.RequireFromString("15.5"), Comment: "flu"}, today)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)

	stored, err := repo.Get(ctx, propertyID, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancellationFee)
	assert.True(t, stored.CancellationFee.Equal(decimal.RequireFromString("15.50")))
	assert.Equal(t, "flu", stored.CancellationNote)

	a, e = countRows()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, e)

	evs, err := repo.Events(ctx, propertyID, id)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "BOOKING_CANCELLED", evs[0].EventType)
}
