package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Store for tests and early development.
//
// NOTE: This is not intended for production; replace with the Postgres
// implementation.
type MemoryRepo struct {
	mu        sync.Mutex
	bookings  []Booking
	customers []Customer
	calls     []CallLog

	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clock: time.Now}
}

// SetClock overrides the repo clock for tests.
func (r *MemoryRepo) SetClock(clock func() time.Time) { r.clock = clock }

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (r *MemoryRepo) BookingsForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if !b.MoveDate.IsZero() && sameDay(b.MoveDate, date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryRepo) CountWeeklyBookings(ctx context.Context, weekStart time.Time) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	weekEnd := weekStart.AddDate(0, 0, 7)
	count := 0
	for _, b := range r.bookings {
		if b.MoveDate.IsZero() {
			continue
		}
		if !b.MoveDate.Before(weekStart) && b.MoveDate.Before(weekEnd) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) SaveBooking(ctx context.Context, b Booking) (string, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	b.ID = "BOOK-" + uuid.NewString()
	b.CreatedAt = now
	if b.Status == "" {
		b.Status = StatusPending
	}
	r.upsertCustomerLocked(b, now)
	r.bookings = append(r.bookings, b)
	return b.ID, nil
}

func (r *MemoryRepo) upsertCustomerLocked(b Booking, now time.Time) {
	norm := NormalizePhone(b.Phone)
	for i := range r.customers {
		if NormalizePhone(r.customers[i].Phone) == norm {
			r.customers[i].TotalBookings++
			r.customers[i].LastBooking = now
			return
		}
	}
	r.customers = append(r.customers, Customer{
		ID:            "CUST-" + uuid.NewString(),
		Name:          b.Name,
		Phone:         b.Phone,
		Email:         b.Email,
		FirstContact:  now,
		TotalBookings: 1,
		LastBooking:   now,
	})
}

func (r *MemoryRepo) SavePartialLead(ctx context.Context, b Booking) (string, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = "LEAD-" + uuid.NewString()
	b.CreatedAt = r.clock()
	if b.Status == "" {
		b.Status = StatusIncomplete
	}
	r.bookings = append(r.bookings, b)
	return b.ID, nil
}

func (r *MemoryRepo) CustomerByPhone(ctx context.Context, phone string) (Customer, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := NormalizePhone(phone)
	for _, c := range r.customers {
		if NormalizePhone(c.Phone) == norm {
			return c, true, nil
		}
	}
	return Customer{}, false, nil
}

func (r *MemoryRepo) UpdateLatestBookingAddresses(ctx context.Context, phone, pickupAddress, dropoffAddress string) (Booking, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := NormalizePhone(phone)
	last := -1
	for i, b := range r.bookings {
		if NormalizePhone(b.Phone) == norm {
			last = i
		}
	}
	if last < 0 {
		return Booking{}, false, nil
	}
	if pickupAddress != "" {
		r.bookings[last].PickupAddress = pickupAddress
	}
	if dropoffAddress != "" {
		r.bookings[last].DropoffAddress = dropoffAddress
	}
	return r.bookings[last], true, nil
}

func (r *MemoryRepo) LogCall(ctx context.Context, entry CallLog) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = "CALL-" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.clock()
	}
	r.calls = append(r.calls, entry)
	return nil
}

func (r *MemoryRepo) CallsBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []CallLog
	for _, c := range r.calls {
		if !c.Timestamp.Before(from) && c.Timestamp.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Calls exposes logged calls for test assertions.
func (r *MemoryRepo) Calls() []CallLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallLog, len(r.calls))
	copy(out, r.calls)
	return out
}
