package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hotelops/internal/audit"
	"hotelops/internal/events"
	"hotelops/pkg/db"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
b.id, b.property_id, b.reference, b.guest_name, b.booking_status,
b.estimated_arrival, b.estimated_departure, b.adults, b.children,
b.total_amount::text, b.currency, b.cancellation_fee::text, COALESCE(b.cancellation_comment, ''),
b.created_at, b.updated_at`

// The scope predicate mirrors InScope.
const scopeFilter = `
b.property_id = $1
AND (
     $2 = 'all'
  OR ($2 = 'upcoming' AND (b.estimated_departure IS NULL OR b.estimated_departure >= $3::date))
  OR ($2 = 'past' AND b.estimated_departure < $3::date)
)
AND ($4 = '' OR b.booking_status = $4)`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var status, total string
	var fee *string
	if err := row.Scan(
		&b.ID, &b.PropertyID, &b.Reference, &b.GuestName, &status,
		&b.EstimatedArrival, &b.EstimatedDeparture, &b.Adults, &b.Children,
		&total, &b.Currency, &fee, &b.CancellationNote,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	st, err := ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.Status = st
	if b.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("booking %s total: %w", b.ID, err)
	}
	if fee != nil {
		d, err := decimal.NewFromString(*fee)
		if err != nil {
			return nil, fmt.Errorf("booking %s fee: %w", b.ID, err)
		}
		b.CancellationFee = &d
	}
	b.Rooms = []RoomAssignment{}
	return &b, nil
}

func (r *Repository) List(ctx context.Context, propertyID string, f Filters, today time.Time) ([]Booking, int, error) {
	date := today.Format(time.DateOnly)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings b WHERE `+scopeFilter,
		propertyID, string(f.Scope), date, string(f.Status),
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + bookingColumns + `
FROM bookings b
WHERE ` + scopeFilter + `
ORDER BY b.estimated_arrival ASC NULLS LAST, b.created_at DESC
LIMIT $5 OFFSET $6
`
	rows, err := r.db.Query(ctx, q, propertyID, string(f.Scope), date, string(f.Status), f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := loadRooms(ctx, r.db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) Get(ctx context.Context, propertyID, bookingID string) (*Booking, error) {
	return get(ctx, r.db, propertyID, bookingID, false)
}

func get(ctx context.Context, q querier, propertyID, bookingID string, forUpdate bool) (*Booking, error) {
	sql := `SELECT ` + bookingColumns + `
FROM bookings b
WHERE b.property_id = $1 AND b.id = $2
`
	if forUpdate {
		sql += "FOR UPDATE\n"
	}
	b, err := scanBooking(q.QueryRow(ctx, sql, propertyID, bookingID))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	list := []Booking{*b}
	if err := loadRooms(ctx, q, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func loadRooms(ctx context.Context, q querier, bookings []Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, len(bookings))
	idx := make(map[string]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		idx[b.ID] = i
	}

	const sql = `
SELECT br.booking_id, r.id, r.number, rt.name
FROM booking_rooms br
JOIN rooms r ON r.id = br.room_id
JOIN room_types rt ON rt.id = r.room_type_id
WHERE br.booking_id = ANY($1::uuid[])
ORDER BY br.booking_id, br.position ASC
`
	rows, err := q.Query(ctx, sql, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID string
		var ra RoomAssignment
		if err := rows.Scan(&bookingID, &ra.RoomID, &ra.RoomNumber, &ra.RoomType); err != nil {
			return err
		}
		if i, ok := idx[bookingID]; ok {
			bookings[i].Rooms = append(bookings[i].Rooms, ra)
		}
	}
	return rows.Err()
}

// Update locks the booking row, applies m and writes the new state together
// with its audit and timeline entries in one transaction.
func (r *Repository) Update(ctx context.Context, propertyID, bookingID string, m Mutation) (*Booking, error) {
	var out *Booking
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := get(ctx, tx, propertyID, bookingID, true)
		if err != nil {
			return err
		}

		next, err := m.Apply(*cur)
		if err != nil {
			return err
		}

		var fee *string
		if next.CancellationFee != nil {
			s := next.CancellationFee.StringFixed(2)
			fee = &s
		}
		const q = `
UPDATE bookings
SET booking_status = $1,
    cancellation_fee = CAST($2 AS numeric),
    cancellation_comment = NULLIF($3, ''),
    updated_at = NOW()
WHERE property_id = $4 AND id = $5
RETURNING updated_at
`
		if err := tx.QueryRow(ctx, q, string(next.Status), fee, next.CancellationNote, propertyID, bookingID).Scan(&next.UpdatedAt); err != nil {
			return err
		}

		now := time.Now()
		id := next.ID
		eventType, summary := events.TypeStatusChanged, "Status changed"
		data := map[string]any{"from": cur.Status, "to": next.Status, "action": m.Action}
		if next.Status == StatusCancelled {
			eventType, summary = events.TypeBookingCancelled, "Booking cancelled"
			data["fee"] = fee
			data["comment"] = next.CancellationNote
		}
		if err := audit.Insert(ctx, tx, propertyID, &id, eventType, m.ActorID, data); err != nil {
			return err
		}
		if err := events.Insert(ctx, tx, id, eventType, summary, m.ActorID, now, data); err != nil {
			return err
		}

		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Events(ctx context.Context, propertyID, bookingID string) ([]events.Event, error) {
	// Ensure the booking belongs to the property.
	if _, err := get(ctx, r.db, propertyID, bookingID, false); err != nil {
		return nil, err
	}
	return events.ListByBooking(ctx, r.db, bookingID)
}
