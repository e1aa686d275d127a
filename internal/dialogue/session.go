package dialogue

import (
	"time"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/pricing"
	"moving-voice-agent/internal/scheduling"
)

// Confirmable is the two-phase capture wrapper behind the
// confirm-after-collect pattern: a collect step proposes a candidate, the
// paired confirm step promotes it on "yes" or discards it on "no".
type Confirmable[T any] struct {
	Candidate *T `json:"candidate,omitempty"`
	Confirmed *T `json:"confirmed,omitempty"`
}

// Propose stores a tentative value awaiting confirmation.
func (c *Confirmable[T]) Propose(v T) { c.Candidate = &v }

// Accept promotes the candidate to the confirmed value. A stray Accept with
// no candidate keeps whatever was already confirmed.
func (c *Confirmable[T]) Accept() (T, bool) {
	if c.Candidate != nil {
		c.Confirmed = c.Candidate
		c.Candidate = nil
	}
	return c.Get()
}

// Reject discards the candidate, leaving any confirmed value intact.
func (c *Confirmable[T]) Reject() { c.Candidate = nil }

// Set confirms a value directly, bypassing the candidate phase.
func (c *Confirmable[T]) Set(v T) {
	c.Confirmed = &v
	c.Candidate = nil
}

// Get returns the confirmed value.
func (c *Confirmable[T]) Get() (T, bool) {
	var zero T
	if c.Confirmed == nil {
		return zero, false
	}
	return *c.Confirmed, true
}

// Pending returns the unconfirmed candidate.
func (c *Confirmable[T]) Pending() (T, bool) {
	var zero T
	if c.Candidate == nil {
		return zero, false
	}
	return *c.Candidate, true
}

// Session is the per-call conversation state. It is JSON-serializable so it
// can live in Redis; each call's turns are serialized by the transport, so
// no per-session locking is needed.
type Session struct {
	CallSID      string `json:"call_sid"`
	CallerNumber string `json:"caller_number"`
	Step         Step   `json:"step"`

	ReturningCustomer bool `json:"returning_customer,omitempty"`

	TransferPending  bool `json:"transfer_pending,omitempty"`
	TransferPrevStep Step `json:"transfer_prev_step,omitempty"`

	Name  Confirmable[string] `json:"name"`
	Phone Confirmable[string] `json:"phone"`
	// PhoneNeedsConfirmation marks that a freshly formatted number is
	// awaiting the caller's yes/no.
	PhoneNeedsConfirmation bool   `json:"phone_needs_confirmation,omitempty"`
	PhoneBuffer            string `json:"phone_buffer,omitempty"`
	Email                  string `json:"email,omitempty"`

	MoveType     string `json:"move_type,omitempty"`
	PropertyType string `json:"property_type,omitempty"`

	PickupType       string              `json:"pickup_type,omitempty"`
	PickupZip        Confirmable[string] `json:"pickup_zip"`
	PickupZipBuffer  string              `json:"pickup_zip_buffer,omitempty"`
	PickupRooms      Confirmable[int]    `json:"pickup_rooms"`
	PickupStairs     bool                `json:"pickup_stairs,omitempty"`
	DropoffType      string              `json:"dropoff_type,omitempty"`
	DropoffZip       Confirmable[string] `json:"dropoff_zip"`
	DropoffZipBuffer string              `json:"dropoff_zip_buffer,omitempty"`
	DropoffRooms     Confirmable[int]    `json:"dropoff_rooms"`
	DropoffStairs    bool                `json:"dropoff_stairs,omitempty"`

	MoveDate time.Time `json:"move_date,omitempty"`
	MoveTime string    `json:"move_time,omitempty"`

	PackingService      bool   `json:"packing_service,omitempty"`
	SpecialItems        string `json:"special_items,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`

	// Route figures cached at dropoff confirmation, reused at estimate
	// time. DistanceOK distinguishes "zero miles" from "lookup failed".
	RoundTripMiles float64 `json:"round_trip_miles,omitempty"`
	P2PMiles       float64 `json:"p2p_miles,omitempty"`
	P2PMinutes     float64 `json:"p2p_minutes,omitempty"`
	DistanceOK     bool    `json:"distance_ok,omitempty"`

	Estimate     *pricing.Estimate     `json:"estimate,omitempty"`
	Alternatives []scheduling.TimeSlot `json:"alternatives,omitempty"`

	BookingID    string              `json:"booking_id,omitempty"`
	FinalPickup  Confirmable[string] `json:"final_pickup"`
	FinalDropoff Confirmable[string] `json:"final_dropoff"`
}

// PickupAddress prefers the finalized street address, falling back to the
// ZIP captured earlier in the call.
func (s *Session) PickupAddress() string {
	if addr, ok := s.FinalPickup.Get(); ok {
		return addr
	}
	zip, _ := s.PickupZip.Get()
	return zip
}

func (s *Session) DropoffAddress() string {
	if addr, ok := s.FinalDropoff.Get(); ok {
		return addr
	}
	zip, _ := s.DropoffZip.Get()
	return zip
}

// hasTransferEssentials reports whether the fields required before handing
// the caller to a human are present.
func (s *Session) hasTransferEssentials() bool {
	_, okName := s.Name.Get()
	phone := s.confirmedOrCallerPhone()
	return okName && phone != ""
}

// confirmedOrCallerPhone falls back to the number the call came from when
// no phone was explicitly collected.
func (s *Session) confirmedOrCallerPhone() string {
	if phone, ok := s.Phone.Get(); ok && phone != "" {
		return phone
	}
	return s.CallerNumber
}

// asBooking flattens the session into a persistable row. Zero-valued
// fields stay zero; the store tolerates partial rows.
func (s *Session) asBooking() booking.Booking {
	name, _ := s.Name.Get()
	pickupRooms, _ := s.PickupRooms.Get()
	dropoffRooms, _ := s.DropoffRooms.Get()

	b := booking.Booking{
		Name:                name,
		Phone:               s.confirmedOrCallerPhone(),
		Email:               s.Email,
		MoveType:            s.MoveType,
		PickupAddress:       s.PickupAddress(),
		PickupType:          s.PickupType,
		PickupRooms:         pickupRooms,
		PickupStairs:        s.PickupStairs,
		DropoffAddress:      s.DropoffAddress(),
		DropoffType:         s.DropoffType,
		DropoffRooms:        dropoffRooms,
		DropoffStairs:       s.DropoffStairs,
		MoveDate:            s.MoveDate,
		MoveTime:            s.MoveTime,
		PackingService:      s.PackingService,
		SpecialItems:        s.SpecialItems,
		SpecialInstructions: s.SpecialInstructions,
		TotalDistance:       s.P2PMiles,
		CallSID:             s.CallSID,
	}
	if s.Estimate != nil {
		b.BaseRate = s.Estimate.BaseRate
		b.MileageCost = s.Estimate.MileageCost
		b.TotalEstimate = s.Estimate.TotalEstimate
	}
	return b
}
