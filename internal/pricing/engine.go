package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	// MileageFreeRadius is the point-to-point distance, in miles, included
	// in the base rate.
	MileageFreeRadius float64
	// MileageRate is charged per mile beyond the free radius.
	MileageRate float64
	// TravelTimeHours is a flat drive-to-site charge independent of the
	// actual route, e.g. 0.5 for thirty minutes.
	TravelTimeHours float64
	// PackingFee is the flat add-on when packing service is requested.
	PackingFee float64
	// OfficePhone appears in the long-distance referral message.
	OfficePhone string
}

func (c Config) withDefaults() Config {
	if c.MileageFreeRadius <= 0 {
		c.MileageFreeRadius = 20
	}
	if c.MileageRate <= 0 {
		c.MileageRate = 1.0
	}
	if c.TravelTimeHours < 0 {
		c.TravelTimeHours = 0
	}
	if c.TravelTimeHours == 0 {
		c.TravelTimeHours = 0.5
	}
	if c.PackingFee <= 0 {
		c.PackingFee = 50
	}
	if c.OfficePhone == "" {
		c.OfficePhone = "(281) 743-4503"
	}
	return c
}

// rateTable maps (tier, weekly bracket) to the hourly base rate.
var rateTable = map[Tier]map[WeeklyBracket]float64{
	Tier1: {BracketLow: 100, BracketMid: 125, BracketHigh: 150},
	Tier2: {BracketLow: 125, BracketMid: 150, BracketHigh: 175},
	Tier3: {BracketLow: 180, BracketMid: 200, BracketHigh: 250},
}

// Engine is the pure pricing calculator. Quote never fails: malformed
// inputs are defaulted, so the same request always yields the same estimate.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// DetermineTier selects the crew bracket from the pickup side.
func DetermineTier(rooms int, hasStairs bool) (Tier, int) {
	if rooms < 1 {
		rooms = 2
	}
	switch {
	case rooms <= 2 && !hasStairs:
		return Tier1, 2
	case rooms <= 3 && hasStairs:
		return Tier2, 3
	default:
		return Tier3, 4
	}
}

// WeeklyBracketFor buckets a weekly booking count.
func WeeklyBracketFor(count int) WeeklyBracket {
	switch {
	case count <= 2:
		return BracketLow
	case count <= 4:
		return BracketMid
	default:
		return BracketHigh
	}
}

// MileageCost is zero inside the free radius, otherwise per-mile beyond it.
func (e *Engine) MileageCost(distanceMiles float64) float64 {
	if distanceMiles <= e.cfg.MileageFreeRadius {
		return 0
	}
	return (distanceMiles - e.cfg.MileageFreeRadius) * e.cfg.MileageRate
}

// Quote prices a move. Long-distance short-circuits to a manual-quote
// estimate; long-distance pricing is negotiated by a human.
func (e *Engine) Quote(req QuoteRequest) Estimate {
	if strings.Contains(strings.ToLower(req.MoveType), "long distance") {
		return Estimate{MoveType: "long_distance", RequiresManualQuote: true}
	}

	pickupRooms := req.PickupRooms
	if pickupRooms < 1 {
		pickupRooms = 2
	}
	dropoffRooms := req.DropoffRooms
	if dropoffRooms < 1 {
		dropoffRooms = 2
	}

	tier, movers := DetermineTier(pickupRooms, req.PickupStairs)
	baseRate := rateTable[tier][WeeklyBracketFor(req.WeeklyBookings)]

	mileageCost := e.MileageCost(req.DistanceMiles)

	var packingCost float64
	if req.PackingService {
		packingCost = e.cfg.PackingFee
	}

	// Rough on-site estimate: one hour per two rooms, floored at two hours.
	estimatedHours := math.Max(2, float64(pickupRooms+dropoffRooms)/2)
	laborHours := estimatedHours + e.cfg.TravelTimeHours
	laborCost := baseRate * laborHours

	laborCost = round2(laborCost)
	mileageCost = round2(mileageCost)
	total := round2(laborCost + mileageCost + packingCost)

	return Estimate{
		MoveType:        "local",
		BaseRate:        baseRate,
		MoversNeeded:    movers,
		EstimatedHours:  round1(estimatedHours),
		TravelTimeHours: round2(e.cfg.TravelTimeHours),
		LaborHoursTotal: round2(laborHours),
		LaborCost:       laborCost,
		MileageCost:     mileageCost,
		PackingCost:     packingCost,
		TotalEstimate:   total,
		TotalDistance:   round2(req.DistanceMiles),
	}
}

// ManualQuoteMessage is the spoken referral for long-distance moves.
func (e *Engine) ManualQuoteMessage() string {
	return fmt.Sprintf("For long distance moves, please contact our office at %s for a custom quote.", e.cfg.OfficePhone)
}

// Message builds the spoken estimate summary. Travel, mileage, and packing
// clauses appear only when those charges are non-zero.
func (est Estimate) Message() string {
	var b strings.Builder
	b.WriteString("Based on the information provided, here's your estimate: ")
	fmt.Fprintf(&b, "We'll need %d movers and a truck. ", est.MoversNeeded)
	fmt.Fprintf(&b, "The hourly rate is $%s per hour. ", trimMoney(est.BaseRate))
	fmt.Fprintf(&b, "We estimate approximately %s hours for your move. ", trimFloat(est.EstimatedHours))
	if est.TravelTimeHours > 0 {
		minutes := int(math.Round(est.TravelTimeHours * 60))
		travelCost := round2(est.BaseRate * est.TravelTimeHours)
		fmt.Fprintf(&b, "An additional %d minutes for travel time is included (about $%s). ", minutes, trimMoney(travelCost))
	}
	if est.MileageCost > 0 {
		fmt.Fprintf(&b, "The total distance is %s miles, with a mileage charge of $%s. ", trimFloat(est.TotalDistance), trimMoney(est.MileageCost))
	}
	if est.PackingCost > 0 {
		fmt.Fprintf(&b, "Packing service adds $%s. ", trimMoney(est.PackingCost))
	}
	fmt.Fprintf(&b, "Your total estimated cost is $%s. ", trimMoney(est.TotalEstimate))
	b.WriteString("Please note this is an estimate, and the final cost will depend on the actual time required.")
	return b.String()
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// trimFloat renders without a trailing ".0" so prompts read naturally.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func trimMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, "0")
	s = strings.TrimSuffix(s, ".0")
	return strings.TrimSuffix(s, ".")
}
