package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to the audit_events table.
//
// The table should carry an INSERT-only policy; this repository never
// issues UPDATE or DELETE.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, actor_user_id, actor_role, ip_address, call_sid, booking_id, phone, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, string(e.Type), e.ActorUserID, e.ActorRole, e.IPAddress,
		e.CallSID, e.BookingID, e.Phone, e.Message, e.CreatedAt,
	)
	return err
}
