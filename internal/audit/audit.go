package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Insert records an operator action against a property inside the caller's
// transaction.
func Insert(ctx context.Context, tx pgx.Tx, propertyID string, bookingID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (property_id, booking_id, action, actor_id, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, propertyID, bookingID, action, actor, s)
	return err
}
