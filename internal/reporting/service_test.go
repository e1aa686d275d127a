package reporting

import (
	"context"
	"testing"
	"time"

	"moving-voice-agent/internal/booking"
)

var reportNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func seededRepo(t *testing.T) *booking.MemoryRepo {
	t.Helper()
	repo := booking.NewMemoryRepo()
	repo.SetClock(func() time.Time { return reportNow })

	logs := []booking.CallLog{
		{CallSID: "CA1", Timestamp: reportNow, Direction: "inbound", Status: "completed", Duration: "120", Converted: true},
		{CallSID: "CA2", Timestamp: reportNow.Add(time.Hour), Direction: "inbound", Status: "no-answer", Duration: "0"},
		{CallSID: "CA3", Timestamp: reportNow.Add(2 * time.Hour), Direction: "outbound", Status: "completed", Duration: "60", RecordingURL: "https://api.twilio.com/rec/CA3"},
	}
	for _, l := range logs {
		if err := repo.LogCall(context.Background(), l); err != nil {
			t.Fatalf("LogCall: %v", err)
		}
	}
	return repo
}

func TestCallsSummary(t *testing.T) {
	svc := NewService(seededRepo(t))

	got, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range: TimeRange{From: reportNow.Add(-time.Hour), To: reportNow.Add(24 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}
	if got.TotalCalls != 3 {
		t.Fatalf("expected 3 calls, got %d", got.TotalCalls)
	}
	if got.InboundCalls != 2 || got.OutboundCalls != 1 {
		t.Fatalf("expected 2 inbound and 1 outbound, got %d and %d", got.InboundCalls, got.OutboundCalls)
	}
	if got.CompletedCalls != 2 || got.NoAnswerCalls != 1 {
		t.Fatalf("expected 2 completed and 1 no-answer, got %d and %d", got.CompletedCalls, got.NoAnswerCalls)
	}
	if got.TotalDurationSeconds != 180 || got.AverageDurationSeconds != 60 {
		t.Fatalf("expected 180s total and 60s average, got %d and %d", got.TotalDurationSeconds, got.AverageDurationSeconds)
	}
	if got.RecordedCalls != 1 || got.ConvertedCalls != 1 {
		t.Fatalf("expected 1 recorded and 1 converted, got %d and %d", got.RecordedCalls, got.ConvertedCalls)
	}
}

func TestCallsSummaryExcludesOutsideRange(t *testing.T) {
	svc := NewService(seededRepo(t))

	got, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range: TimeRange{From: reportNow.Add(30 * time.Minute), To: reportNow.Add(90 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}
	if got.TotalCalls != 1 {
		t.Fatalf("expected 1 call in the narrow window, got %d", got.TotalCalls)
	}
}

func TestBookingsSummary(t *testing.T) {
	repo := booking.NewMemoryRepo()
	repo.SetClock(func() time.Time { return reportNow })

	moveDay := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	rows := []booking.Booking{
		{Name: "John Smith", Phone: "(281) 555-1234", MoveDate: moveDay, Status: booking.StatusConfirmed, TotalEstimate: 250, Booked: true},
		{Name: "Jane Doe", Phone: "(713) 555-9999", MoveDate: moveDay, Status: booking.StatusCallbackLongDistance},
		{Name: "Sam Lee", Phone: "(832) 555-0000", MoveDate: moveDay.AddDate(0, 0, 1), Status: booking.StatusDeclined},
	}
	for _, b := range rows {
		if _, err := repo.SaveBooking(context.Background(), b); err != nil {
			t.Fatalf("SaveBooking: %v", err)
		}
	}

	svc := NewService(repo)
	got, err := svc.BookingsSummary(context.Background(), BookingsSummaryRequest{
		Range: TimeRange{From: moveDay, To: moveDay.AddDate(0, 0, 3)},
	})
	if err != nil {
		t.Fatalf("BookingsSummary: %v", err)
	}
	if got.TotalBookings != 3 {
		t.Fatalf("expected 3 bookings, got %d", got.TotalBookings)
	}
	if got.ConfirmedBookings != 1 || got.LongDistanceCallbacks != 1 || got.DeclinedBookings != 1 {
		t.Fatalf("unexpected status breakdown: %+v", got)
	}
	if got.TotalEstimatedRevenue != 250 {
		t.Fatalf("expected revenue 250, got %g", got.TotalEstimatedRevenue)
	}
}

func TestSummaryRejectsBadRanges(t *testing.T) {
	svc := NewService(booking.NewMemoryRepo())

	cases := []TimeRange{
		{},
		{From: reportNow},
		{From: reportNow, To: reportNow},
		{From: reportNow, To: reportNow.AddDate(0, 0, 100)},
	}
	for _, r := range cases {
		if _, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{Range: r}); err != ErrInvalidRequest {
			t.Fatalf("expected ErrInvalidRequest for %+v, got %v", r, err)
		}
	}
}
