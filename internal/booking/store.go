package booking

import (
	"context"
	"time"
)

// Store abstracts booking persistence.
// Implementations: MemoryRepo (tests), PostgresRepo, CachedStore (Redis
// read-through for the date queries).
type Store interface {
	// BookingsForDate returns every booking whose move date falls on the
	// given calendar day.
	BookingsForDate(ctx context.Context, date time.Time) ([]Booking, error)

	// CountWeeklyBookings counts bookings with a move date in
	// [weekStart, weekStart+7d).
	CountWeeklyBookings(ctx context.Context, weekStart time.Time) (int, error)

	// SaveBooking assigns an ID, upserts the customer record for the
	// booking's phone, and persists the row.
	SaveBooking(ctx context.Context, b Booking) (string, error)

	// SavePartialLead persists an incomplete engagement so disconnected
	// calls are not silently lost.
	SavePartialLead(ctx context.Context, b Booking) (string, error)

	// CustomerByPhone looks up a contact by normalized phone.
	CustomerByPhone(ctx context.Context, phone string) (Customer, bool, error)

	// UpdateLatestBookingAddresses patches the most recent booking for the
	// phone with corrected addresses and returns the updated row.
	UpdateLatestBookingAddresses(ctx context.Context, phone, pickupAddress, dropoffAddress string) (Booking, bool, error)

	// LogCall appends a call-log row.
	LogCall(ctx context.Context, entry CallLog) error

	// CallsBetween returns call-log rows with timestamps in [from, to).
	CallsBetween(ctx context.Context, from, to time.Time) ([]CallLog, error)
}
