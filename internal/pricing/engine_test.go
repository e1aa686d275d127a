package pricing

import (
	"strings"
	"testing"
)

func TestDetermineTier(t *testing.T) {
	cases := []struct {
		rooms  int
		stairs bool
		tier   Tier
		movers int
	}{
		{2, false, Tier1, 2},
		{3, true, Tier2, 3},
		{4, true, Tier3, 4},
		{3, false, Tier3, 4},
		{0, false, Tier1, 2}, // malformed defaults to 2 rooms
	}
	for _, c := range cases {
		tier, movers := DetermineTier(c.rooms, c.stairs)
		if tier != c.tier || movers != c.movers {
			t.Fatalf("DetermineTier(%d, %v): expected %s/%d, got %s/%d",
				c.rooms, c.stairs, c.tier, c.movers, tier, movers)
		}
	}
}

func TestWeeklyBracketFor(t *testing.T) {
	if b := WeeklyBracketFor(2); b != BracketLow {
		t.Fatalf("expected low bracket, got %s", b)
	}
	if b := WeeklyBracketFor(4); b != BracketMid {
		t.Fatalf("expected mid bracket, got %s", b)
	}
	if b := WeeklyBracketFor(5); b != BracketHigh {
		t.Fatalf("expected high bracket, got %s", b)
	}
}

func TestMileageCost(t *testing.T) {
	e := NewEngine(Config{})
	if c := e.MileageCost(15); c != 0 {
		t.Fatalf("expected free inside radius, got %v", c)
	}
	if c := e.MileageCost(20); c != 0 {
		t.Fatalf("expected free at radius boundary, got %v", c)
	}
	if c := e.MileageCost(30); c != 10 {
		t.Fatalf("expected 10, got %v", c)
	}
}

func TestQuoteLocalTier1(t *testing.T) {
	e := NewEngine(Config{})
	est := e.Quote(QuoteRequest{
		MoveType:       "local",
		PickupRooms:    2,
		DropoffRooms:   2,
		DistanceMiles:  15,
		WeeklyBookings: 1,
	})
	if est.RequiresManualQuote {
		t.Fatalf("expected computed estimate")
	}
	if est.BaseRate != 100 {
		t.Fatalf("expected base rate 100, got %v", est.BaseRate)
	}
	if est.MileageCost != 0 {
		t.Fatalf("expected no mileage, got %v", est.MileageCost)
	}
	if est.EstimatedHours != 2 {
		t.Fatalf("expected 2 estimated hours, got %v", est.EstimatedHours)
	}
	if est.LaborHoursTotal != 2.5 {
		t.Fatalf("expected 2.5 labor hours, got %v", est.LaborHoursTotal)
	}
	if est.LaborCost != 250 {
		t.Fatalf("expected labor cost 250, got %v", est.LaborCost)
	}
	if est.TotalEstimate != 250 {
		t.Fatalf("expected total 250, got %v", est.TotalEstimate)
	}
}

func TestQuoteSurgeAndAddOns(t *testing.T) {
	e := NewEngine(Config{})
	est := e.Quote(QuoteRequest{
		MoveType:       "local",
		PickupRooms:    4,
		PickupStairs:   true,
		DropoffRooms:   2,
		PackingService: true,
		DistanceMiles:  30,
		WeeklyBookings: 6,
	})
	if est.BaseRate != 250 {
		t.Fatalf("expected surged tier 3 rate 250, got %v", est.BaseRate)
	}
	if est.MoversNeeded != 4 {
		t.Fatalf("expected 4 movers, got %d", est.MoversNeeded)
	}
	if est.MileageCost != 10 {
		t.Fatalf("expected mileage 10, got %v", est.MileageCost)
	}
	if est.PackingCost != 50 {
		t.Fatalf("expected packing 50, got %v", est.PackingCost)
	}
	// 3 estimated + 0.5 travel hours at 250/h = 875, plus mileage and packing.
	if est.TotalEstimate != 935 {
		t.Fatalf("expected total 935, got %v", est.TotalEstimate)
	}
}

func TestQuoteLongDistance(t *testing.T) {
	e := NewEngine(Config{})
	est := e.Quote(QuoteRequest{MoveType: "Long Distance Move"})
	if !est.RequiresManualQuote {
		t.Fatalf("expected manual quote")
	}
	if est.TotalEstimate != 0 {
		t.Fatalf("expected no computed cost, got %v", est.TotalEstimate)
	}
	if msg := e.ManualQuoteMessage(); !strings.Contains(msg, "custom quote") {
		t.Fatalf("unexpected referral message %q", msg)
	}
}

func TestEstimateMessageClauses(t *testing.T) {
	e := NewEngine(Config{})
	withAll := e.Quote(QuoteRequest{
		MoveType: "local", PickupRooms: 2, DropoffRooms: 2,
		DistanceMiles: 30, PackingService: true, WeeklyBookings: 0,
	}).Message()
	for _, want := range []string{"movers and a truck", "travel time", "mileage charge", "Packing service"} {
		if !strings.Contains(withAll, want) {
			t.Fatalf("expected message to mention %q: %s", want, withAll)
		}
	}
	bare := e.Quote(QuoteRequest{
		MoveType: "local", PickupRooms: 2, DropoffRooms: 2,
		DistanceMiles: 10, WeeklyBookings: 0,
	}).Message()
	if strings.Contains(bare, "mileage charge") || strings.Contains(bare, "Packing service") {
		t.Fatalf("expected conditional clauses omitted: %s", bare)
	}
}
