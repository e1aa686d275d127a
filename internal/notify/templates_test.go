package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/pricing"
)

func testBooking() booking.Booking {
	return booking.Booking{
		Name:           "John Smith",
		Phone:          "(281) 743-4503",
		PickupAddress:  "77063",
		DropoffAddress: "77005",
		MoveDate:       time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC),
		MoveTime:       "Morning",
		TotalEstimate:  250,
		PickupRooms:    2,
		DropoffRooms:   2,
	}
}

func TestBookingConfirmation(t *testing.T) {
	sms := &MemorySMS{}
	n := NewNotifier(sms, Company{ManagerPhone: "+15550001111"}, nil)

	if _, err := n.BookingConfirmation(context.Background(), testBooking()); err != nil {
		t.Fatalf("BookingConfirmation: %v", err)
	}
	sent := sms.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(sent))
	}
	if sent[0].To != "(281) 743-4503" {
		t.Fatalf("expected caller recipient, got %q", sent[0].To)
	}
	for _, want := range []string{"Booking Confirmed", "October 30, 2025", "$250.00"} {
		if !strings.Contains(sent[0].Body, want) {
			t.Fatalf("expected body to contain %q: %s", want, sent[0].Body)
		}
	}
}

func TestEstimateSMS(t *testing.T) {
	sms := &MemorySMS{}
	n := NewNotifier(sms, Company{}, nil)

	est := pricing.NewEngine(pricing.Config{}).Quote(pricing.QuoteRequest{
		MoveType: "local", PickupRooms: 2, DropoffRooms: 2, WeeklyBookings: 1,
	})
	if _, err := n.EstimateSMS(context.Background(), "+12817434503", est); err != nil {
		t.Fatalf("EstimateSMS: %v", err)
	}
	body := sms.Sent()[0].Body
	for _, want := range []string{"Base Rate: $100/hr", "Movers: 2 + Truck", "Total Estimate: $250.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body: %s", want, body)
		}
	}
}

func TestLongDistanceQuoteRequestFanOut(t *testing.T) {
	sms := &MemorySMS{}
	n := NewNotifier(sms, Company{ManagerPhone: "+15550001111"}, nil)

	if _, err := n.LongDistanceQuoteRequest(context.Background(), testBooking(), 412.5); err != nil {
		t.Fatalf("LongDistanceQuoteRequest: %v", err)
	}
	sent := sms.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected manager + customer messages, got %d", len(sent))
	}
	if sent[0].To != "+15550001111" || !strings.Contains(sent[0].Body, "QUOTE REQUEST") {
		t.Fatalf("expected manager message first, got %+v", sent[0])
	}
	if !strings.Contains(sent[1].Body, "custom quote") {
		t.Fatalf("expected customer confirmation, got %q", sent[1].Body)
	}
}
