// Package booking persists bookings, customers, and call logs, and serves
// the date-scoped queries the scheduling and pricing layers run on.
package booking

import (
	"strings"
	"time"
)

// Booking status values. Partial leads and escalation outcomes land here
// too, so a "booking" row is really any engagement worth following up on.
const (
	StatusPending              = "Pending"
	StatusConfirmed            = "Confirmed"
	StatusIncomplete           = "Incomplete - Call Disconnected"
	StatusCallbackLongDistance = "Callback Requested - Long Distance"
	StatusInHouseEstimate      = "In-House Estimate Requested - Long Distance"
	StatusTransferDiscount     = "Transfer to Manager - Discount"
	StatusDeclined             = "Declined - No Discount"
)

// Booking is one engagement row. MoveDate is date-only (midnight in the
// service location); MoveTime keeps the caller-facing label ("Morning",
// "1 PM") rather than a resolved hour.
type Booking struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	MoveType string `json:"move_type" db:"move_type"`

	PickupAddress string `json:"pickup_address" db:"pickup_address"`
	PickupType    string `json:"pickup_type" db:"pickup_type"`
	PickupRooms   int    `json:"pickup_rooms" db:"pickup_rooms"`
	PickupStairs  bool   `json:"pickup_stairs" db:"pickup_stairs"`

	DropoffAddress string `json:"dropoff_address" db:"dropoff_address"`
	DropoffType    string `json:"dropoff_type" db:"dropoff_type"`
	DropoffRooms   int    `json:"dropoff_rooms" db:"dropoff_rooms"`
	DropoffStairs  bool   `json:"dropoff_stairs" db:"dropoff_stairs"`

	MoveDate time.Time `json:"move_date" db:"move_date"`
	MoveTime string    `json:"move_time" db:"move_time"`

	PackingService      bool   `json:"packing_service" db:"packing_service"`
	SpecialItems        string `json:"special_items,omitempty" db:"special_items"`
	SpecialInstructions string `json:"special_instructions,omitempty" db:"special_instructions"`

	TotalDistance float64 `json:"total_distance" db:"total_distance"`
	MileageCost   float64 `json:"mileage_cost" db:"mileage_cost"`
	BaseRate      float64 `json:"base_rate" db:"base_rate"`
	TotalEstimate float64 `json:"total_estimate" db:"total_estimate"`

	Status           string `json:"status" db:"status"`
	CallSID          string `json:"call_sid,omitempty" db:"call_sid"`
	Booked           bool   `json:"booked" db:"booked"`
	ConfirmationSent bool   `json:"confirmation_sent" db:"confirmation_sent"`
}

// Customer is the per-phone contact record, updated on every saved booking.
type Customer struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Phone         string    `json:"phone" db:"phone"`
	Email         string    `json:"email,omitempty" db:"email"`
	FirstContact  time.Time `json:"first_contact" db:"first_contact"`
	TotalBookings int       `json:"total_bookings" db:"total_bookings"`
	LastBooking   time.Time `json:"last_booking" db:"last_booking"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
}

// CallLog is one telephony event row. Duration and RecordingURL arrive
// later via status callbacks and may be empty.
type CallLog struct {
	ID           string    `json:"id" db:"id"`
	CallSID      string    `json:"call_sid" db:"call_sid"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Phone        string    `json:"phone" db:"phone"`
	Direction    string    `json:"direction" db:"direction"`
	Duration     string    `json:"duration,omitempty" db:"duration"`
	Status       string    `json:"status" db:"status"`
	RecordingURL string    `json:"recording_url,omitempty" db:"recording_url"`
	Converted    bool      `json:"converted" db:"converted"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
}

var phoneStripper = strings.NewReplacer("+1", "", "-", "", "(", "", ")", "", " ", "", ".", "")

// NormalizePhone reduces any display or E.164 form to bare digits so phone
// equality checks survive formatting differences.
func NormalizePhone(phone string) string {
	return phoneStripper.Replace(strings.TrimSpace(phone))
}
