package pricing

// Tier is a crew-size bracket. The pickup side alone selects the tier
// because pickup complexity dominates crew sizing.
type Tier string

const (
	Tier1 Tier = "tier_1" // up to 2 rooms, no stairs; 2 movers
	Tier2 Tier = "tier_2" // up to 3 rooms with stairs; 3 movers
	Tier3 Tier = "tier_3" // everything larger; 4 movers
)

// WeeklyBracket is a demand bucket derived from bookings already on the
// calendar for the relevant week. Busier weeks surge the hourly rate.
type WeeklyBracket string

const (
	BracketLow  WeeklyBracket = "0-2"
	BracketMid  WeeklyBracket = "2-4"
	BracketHigh WeeklyBracket = "5-7"
)

// QuoteRequest carries the itinerary fields the engine prices on.
// Distance is point-to-point pickup to dropoff miles; WeeklyBookings is the
// count of jobs already scheduled in the move week.
type QuoteRequest struct {
	MoveType       string
	PickupRooms    int
	PickupStairs   bool
	DropoffRooms   int
	DropoffStairs  bool
	PackingService bool

	DistanceMiles  float64
	WeeklyBookings int
}

// Estimate is the full quote breakdown. When RequiresManualQuote is set the
// cost fields are zero and Message() returns the long-distance referral.
type Estimate struct {
	MoveType            string  `json:"move_type"`
	BaseRate            float64 `json:"base_rate"`
	MoversNeeded        int     `json:"movers_needed"`
	EstimatedHours      float64 `json:"estimated_hours"`
	TravelTimeHours     float64 `json:"travel_time_hours"`
	LaborHoursTotal     float64 `json:"labor_hours_total"`
	LaborCost           float64 `json:"labor_cost"`
	MileageCost         float64 `json:"mileage_cost"`
	PackingCost         float64 `json:"packing_cost"`
	TotalEstimate       float64 `json:"total_estimate"`
	TotalDistance       float64 `json:"total_distance"`
	RequiresManualQuote bool    `json:"requires_manual_quote"`
}
