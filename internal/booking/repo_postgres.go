package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"moving-voice-agent/pkg/utils"
)

// PostgresRepo is the production Store backed by database/sql over the pgx
// stdlib driver.
//
// NOTE: This repository assumes the following tables exist:
// - bookings (phone_normalized kept alongside phone for lookups)
// - customers (UNIQUE phone_normalized)
// - call_log
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

const bookingColumns = `
id, created_at, name, phone, email, move_type,
pickup_address, pickup_type, pickup_rooms, pickup_stairs,
dropoff_address, dropoff_type, dropoff_rooms, dropoff_stairs,
move_date, move_time, packing_service, special_items, special_instructions,
total_distance, mileage_cost, base_rate, total_estimate,
status, call_sid, booked, confirmation_sent`

func scanBooking(row interface{ Scan(...any) error }) (Booking, error) {
	var b Booking
	var moveDate sql.NullTime
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.Name, &b.Phone, &b.Email, &b.MoveType,
		&b.PickupAddress, &b.PickupType, &b.PickupRooms, &b.PickupStairs,
		&b.DropoffAddress, &b.DropoffType, &b.DropoffRooms, &b.DropoffStairs,
		&moveDate, &b.MoveTime, &b.PackingService, &b.SpecialItems, &b.SpecialInstructions,
		&b.TotalDistance, &b.MileageCost, &b.BaseRate, &b.TotalEstimate,
		&b.Status, &b.CallSID, &b.Booked, &b.ConfirmationSent,
	)
	if moveDate.Valid {
		b.MoveDate = moveDate.Time
	}
	return b, err
}

func (r *PostgresRepo) BookingsForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE move_date = $1
ORDER BY created_at
`
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	rows, err := r.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountWeeklyBookings(ctx context.Context, weekStart time.Time) (int, error) {
	const q = `
SELECT COUNT(*)
FROM bookings
WHERE move_date >= $1 AND move_date < $2
`
	var count int
	err := r.db.QueryRowContext(ctx, q, weekStart, weekStart.AddDate(0, 0, 7)).Scan(&count)
	return count, err
}

func (r *PostgresRepo) SaveBooking(ctx context.Context, b Booking) (string, error) {
	b.ID = "BOOK-" + uuid.NewString()
	b.CreatedAt = r.clock()
	if b.Status == "" {
		b.Status = StatusPending
	}

	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := upsertCustomer(ctx, tx, b, b.CreatedAt); err != nil {
			return err
		}
		return insertBooking(ctx, tx, b)
	})
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func upsertCustomer(ctx context.Context, tx *sql.Tx, b Booking, now time.Time) error {
	const q = `
INSERT INTO customers (id, name, phone, phone_normalized, email, first_contact, total_bookings, last_booking, notes)
VALUES ($1, $2, $3, $4, $5, $6, 1, $7, '')
ON CONFLICT (phone_normalized) DO UPDATE
SET total_bookings = customers.total_bookings + 1,
    last_booking = EXCLUDED.last_booking
`
	_, err := tx.ExecContext(ctx, q,
		"CUST-"+uuid.NewString(), b.Name, b.Phone, NormalizePhone(b.Phone), b.Email, now, now)
	return err
}

func insertBooking(ctx context.Context, tx *sql.Tx, b Booking) error {
	const q = `
INSERT INTO bookings (` + bookingColumns + `, phone_normalized)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
`
	var moveDate any
	if !b.MoveDate.IsZero() {
		moveDate = b.MoveDate
	}
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.CreatedAt, b.Name, b.Phone, b.Email, b.MoveType,
		b.PickupAddress, b.PickupType, b.PickupRooms, b.PickupStairs,
		b.DropoffAddress, b.DropoffType, b.DropoffRooms, b.DropoffStairs,
		moveDate, b.MoveTime, b.PackingService, b.SpecialItems, b.SpecialInstructions,
		b.TotalDistance, b.MileageCost, b.BaseRate, b.TotalEstimate,
		b.Status, b.CallSID, b.Booked, b.ConfirmationSent,
		NormalizePhone(b.Phone),
	)
	return err
}

func (r *PostgresRepo) SavePartialLead(ctx context.Context, b Booking) (string, error) {
	b.ID = "LEAD-" + uuid.NewString()
	b.CreatedAt = r.clock()
	if b.Status == "" {
		b.Status = StatusIncomplete
	}
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return insertBooking(ctx, tx, b)
	})
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func (r *PostgresRepo) CustomerByPhone(ctx context.Context, phone string) (Customer, bool, error) {
	const q = `
SELECT id, name, phone, email, first_contact, total_bookings, last_booking, notes
FROM customers
WHERE phone_normalized = $1
`
	var c Customer
	err := r.db.QueryRowContext(ctx, q, NormalizePhone(phone)).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.FirstContact, &c.TotalBookings, &c.LastBooking, &c.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, false, nil
	}
	if err != nil {
		return Customer{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepo) UpdateLatestBookingAddresses(ctx context.Context, phone, pickupAddress, dropoffAddress string) (Booking, bool, error) {
	const q = `
UPDATE bookings
SET pickup_address = CASE WHEN $2 <> '' THEN $2 ELSE pickup_address END,
    dropoff_address = CASE WHEN $3 <> '' THEN $3 ELSE dropoff_address END
WHERE id = (
	SELECT id FROM bookings
	WHERE phone_normalized = $1
	ORDER BY created_at DESC
	LIMIT 1
)
RETURNING ` + bookingColumns + `
`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, NormalizePhone(phone), pickupAddress, dropoffAddress))
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, false, nil
	}
	if err != nil {
		return Booking{}, false, err
	}
	return b, true, nil
}

func (r *PostgresRepo) LogCall(ctx context.Context, entry CallLog) error {
	const q = `
INSERT INTO call_log (id, call_sid, timestamp, phone, direction, duration, status, recording_url, converted, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	if entry.ID == "" {
		entry.ID = "CALL-" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.clock()
	}
	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.CallSID, entry.Timestamp, entry.Phone, entry.Direction,
		entry.Duration, entry.Status, entry.RecordingURL, entry.Converted, entry.Notes,
	)
	return err
}

func (r *PostgresRepo) CallsBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	const q = `
SELECT id, call_sid, timestamp, phone, direction, duration, status, recording_url, converted, notes
FROM call_log
WHERE timestamp >= $1 AND timestamp < $2
ORDER BY timestamp
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallLog
	for rows.Next() {
		var c CallLog
		err := rows.Scan(
			&c.ID, &c.CallSID, &c.Timestamp, &c.Phone, &c.Direction,
			&c.Duration, &c.Status, &c.RecordingURL, &c.Converted, &c.Notes,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
