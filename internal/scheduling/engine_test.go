package scheduling

import (
	"context"
	"strings"
	"testing"
	"time"

	"moving-voice-agent/internal/booking"
)

func newTestEngine(t *testing.T, repo *booking.MemoryRepo) *Engine {
	t.Helper()
	return NewEngine(Config{}, repo, nil)
}

func seedBooking(t *testing.T, repo *booking.MemoryRepo, date time.Time, moveTime string) {
	t.Helper()
	if _, err := repo.SaveBooking(context.Background(), booking.Booking{
		Phone:    "2817434503",
		MoveDate: date,
		MoveTime: moveTime,
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func TestParseTimeToHour(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Morning", 8},
		{"in the early part of the day", 8},
		{"Afternoon", 13},
		{"around noon", 13},
		{"Evening", 16},
		{"late", 16},
		{"Flexible", 10},
		{"3 PM", 15},
		{"3:00 pm", 15},
		{"11 AM", 11},
		{"12 PM", 12},
		{"12 AM", 0},
		{"15:00", 15},
		{"15", 15},
		{"no idea", 10},
		{"", 10},
	}
	for _, c := range cases {
		if got := ParseTimeToHour(c.in); got != c.want {
			t.Fatalf("ParseTimeToHour(%q): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestHourAndWindowLabels(t *testing.T) {
	if got := HourLabel(9); got != "9 AM" {
		t.Fatalf("expected 9 AM, got %q", got)
	}
	if got := HourLabel(13); got != "1 PM" {
		t.Fatalf("expected 1 PM, got %q", got)
	}
	if got := WindowLabel(9); got != "9-10 AM" {
		t.Fatalf("expected 9-10 AM, got %q", got)
	}
	if got := WindowLabel(11); got != "11-12 AM" {
		t.Fatalf("expected 11-12 AM, got %q", got)
	}
	if got := WindowLabel(13); got != "1-3 PM" {
		t.Fatalf("expected 1-3 PM, got %q", got)
	}
	if got := WindowLabel(12); got != "12-2 PM" {
		t.Fatalf("expected 12-2 PM, got %q", got)
	}
}

func TestCheckAvailabilityOutsideWorkingHours(t *testing.T) {
	repo := booking.NewMemoryRepo()
	e := newTestEngine(t, repo)
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)

	// Evening anchor is 16; a 3-hour job would end at 19, past closing.
	res := e.CheckAvailability(context.Background(), date, "Evening", 3)
	if res.Available {
		t.Fatalf("expected unavailable outside working hours")
	}
	// Morning anchor is 8, before opening.
	res = e.CheckAvailability(context.Background(), date, "Morning", 3)
	if res.Available {
		t.Fatalf("expected unavailable before opening")
	}
}

func TestCheckAvailabilityConflict(t *testing.T) {
	repo := booking.NewMemoryRepo()
	e := newTestEngine(t, repo)
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	seedBooking(t, repo, date, "10 AM") // occupies [10, 13)

	res := e.CheckAvailability(context.Background(), date, "11 AM", 3)
	if res.Available {
		t.Fatalf("expected overlap to be unavailable")
	}
	if !strings.Contains(res.Message, "booked at 11 AM") {
		t.Fatalf("unexpected message %q", res.Message)
	}

	// [13, 16) starts exactly at the booking's end.
	res = e.CheckAvailability(context.Background(), date, "1 PM", 3)
	if !res.Available {
		t.Fatalf("expected adjacent slot available: %s", res.Message)
	}
	if res.Window != "1-3 PM" {
		t.Fatalf("expected afternoon window, got %q", res.Window)
	}
}

func TestFindAlternativesSkipsToAfternoon(t *testing.T) {
	repo := booking.NewMemoryRepo()
	e := newTestEngine(t, repo)
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	seedBooking(t, repo, date, "9 AM") // a morning job fills the morning capacity

	existing, err := repo.BookingsForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("BookingsForDate: %v", err)
	}
	alts := e.FindAlternatives(context.Background(), date, 3, existing)
	if len(alts) == 0 {
		t.Fatalf("expected alternatives")
	}
	if alts[0].Hour != 13 {
		t.Fatalf("expected first alternative at 1 PM, got %d", alts[0].Hour)
	}
}

func TestFindAlternativesCapAndValidity(t *testing.T) {
	repo := booking.NewMemoryRepo()
	e := newTestEngine(t, repo)
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	seedBooking(t, repo, date, "10 AM")

	existing, err := repo.BookingsForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("BookingsForDate: %v", err)
	}
	alts := e.FindAlternatives(context.Background(), date, 3, existing)
	if len(alts) > 3 {
		t.Fatalf("expected at most 3 alternatives, got %d", len(alts))
	}
	for _, alt := range alts {
		if alt.Hour < 9 || alt.Hour+3 > 18 {
			t.Fatalf("slot %+v falls outside working hours", alt)
		}
		if alt.Date.Equal(date) && !(alt.Hour+3 <= 10 || alt.Hour >= 13) {
			t.Fatalf("slot %+v conflicts with the 10 AM booking", alt)
		}
	}
}

func TestFormatAlternatives(t *testing.T) {
	repo := booking.NewMemoryRepo()
	e := newTestEngine(t, repo)

	if msg := e.FormatAlternatives(nil); !strings.Contains(msg, "call our office") {
		t.Fatalf("expected office fallback, got %q", msg)
	}

	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	msg := e.FormatAlternatives([]TimeSlot{
		{Date: date, Hour: 13, Time: "1 PM", Window: "1-3 PM"},
		{Date: date.AddDate(0, 0, 1), Hour: 9, Time: "9 AM", Window: "9-10 AM", DayName: "Friday"},
	})
	if !strings.Contains(msg, "1 PM with a window of 1-3 PM") {
		t.Fatalf("expected first slot in message: %q", msg)
	}
	if !strings.Contains(msg, ", or Friday") {
		t.Fatalf("expected second slot joined with or: %q", msg)
	}
	if !strings.Contains(msg, "Which of these works best") {
		t.Fatalf("expected closing question: %q", msg)
	}
}
