package permission

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Fetch merges every role the actor holds at the property: a capability is
// granted if any role grants it.
func (r *Repository) Fetch(ctx context.Context, actor Actor) (Table, error) {
	const q = `
SELECT rp.endpoint,
       bool_or(rp.can_read), bool_or(rp.can_create), bool_or(rp.can_update), bool_or(rp.can_delete)
FROM actor_roles ar
JOIN role_permissions rp ON rp.role_id = ar.role_id
WHERE ar.actor_id = $1 AND ar.property_id = $2
GROUP BY rp.endpoint
`
	rows, err := r.db.Query(ctx, q, actor.ActorID, actor.PropertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := Table{}
	for rows.Next() {
		var raw string
		var rec Record
		if err := rows.Scan(&raw, &rec.CanRead, &rec.CanCreate, &rec.CanUpdate, &rec.CanDelete); err != nil {
			return nil, err
		}
		e, err := ParseEndpoint(raw)
		if err != nil {
			log.Printf("permission row skipped actor=%s property=%s err=%v", actor.ActorID, actor.PropertyID, err)
			continue
		}
		rec.Endpoint = e
		table[e] = rec
	}
	return table, rows.Err()
}
