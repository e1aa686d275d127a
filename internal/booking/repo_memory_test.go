package booking

import (
	"context"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveBookingUpsertsCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.SetClock(fixedClock(time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)))

	id, err := repo.SaveBooking(ctx, Booking{
		Name:  "John Smith",
		Phone: "(281) 743-4503",
	})
	if err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}
	if !strings.HasPrefix(id, "BOOK-") {
		t.Fatalf("expected BOOK- id, got %q", id)
	}

	// Different formatting of the same number must hit the same customer.
	if _, err := repo.SaveBooking(ctx, Booking{Name: "John Smith", Phone: "+12817434503"}); err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}

	c, ok, err := repo.CustomerByPhone(ctx, "2817434503")
	if err != nil || !ok {
		t.Fatalf("expected customer, ok=%v err=%v", ok, err)
	}
	if c.TotalBookings != 2 {
		t.Fatalf("expected 2 bookings counted, got %d", c.TotalBookings)
	}
}

func TestBookingsForDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	day := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	if _, err := repo.SaveBooking(ctx, Booking{Phone: "1", MoveDate: day}); err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}
	if _, err := repo.SaveBooking(ctx, Booking{Phone: "2", MoveDate: day.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}

	got, err := repo.BookingsForDate(ctx, day)
	if err != nil {
		t.Fatalf("BookingsForDate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(got))
	}
}

func TestCountWeeklyBookings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	weekStart := time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC) // a Monday
	for _, offset := range []int{0, 3, 6, 7} {                 // last one lands next week
		if _, err := repo.SaveBooking(ctx, Booking{Phone: "x", MoveDate: weekStart.AddDate(0, 0, offset)}); err != nil {
			t.Fatalf("SaveBooking: %v", err)
		}
	}

	count, err := repo.CountWeeklyBookings(ctx, weekStart)
	if err != nil {
		t.Fatalf("CountWeeklyBookings: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 in week, got %d", count)
	}
}

func TestSavePartialLeadStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	day := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	id, err := repo.SavePartialLead(ctx, Booking{Phone: "2817434503", MoveDate: day})
	if err != nil {
		t.Fatalf("SavePartialLead: %v", err)
	}
	if !strings.HasPrefix(id, "LEAD-") {
		t.Fatalf("expected LEAD- id, got %q", id)
	}
	got, err := repo.BookingsForDate(ctx, day)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected lead row, got %d err=%v", len(got), err)
	}
	if got[0].Status != StatusIncomplete {
		t.Fatalf("expected status %q, got %q", StatusIncomplete, got[0].Status)
	}
}

func TestUpdateLatestBookingAddresses(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	if _, err := repo.SaveBooking(ctx, Booking{Phone: "2817434503", PickupAddress: "old pickup"}); err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}
	if _, err := repo.SaveBooking(ctx, Booking{Phone: "2817434503", PickupAddress: "newer pickup"}); err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}

	updated, ok, err := repo.UpdateLatestBookingAddresses(ctx, "(281) 743-4503", "123 Main St", "")
	if err != nil || !ok {
		t.Fatalf("expected update, ok=%v err=%v", ok, err)
	}
	if updated.PickupAddress != "123 Main St" {
		t.Fatalf("expected patched pickup, got %q", updated.PickupAddress)
	}
	if updated.DropoffAddress != "" {
		t.Fatalf("expected dropoff untouched, got %q", updated.DropoffAddress)
	}

	if _, ok, _ := repo.UpdateLatestBookingAddresses(ctx, "0000000000", "a", "b"); ok {
		t.Fatalf("expected no match for unknown phone")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+1 (281) 743-4503", "2817434503"},
		{"281.743.4503", "2817434503"},
		{"2817434503", "2817434503"},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Fatalf("NormalizePhone(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}
