package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/pricing"
)

// Company is the identity block stamped into every message.
type Company struct {
	Name         string
	Phone        string
	Website      string
	ManagerPhone string
}

func (c Company) withDefaults() Company {
	if c.Name == "" {
		c.Name = "USF Moving Company"
	}
	if c.Phone == "" {
		c.Phone = "(281) 743-4503"
	}
	if c.ManagerPhone == "" {
		c.ManagerPhone = c.Phone
	}
	return c
}

// Notifier builds and sends the domain's message templates over SMS.
type Notifier struct {
	sms     SMSSender
	company Company
	log     *slog.Logger
}

func NewNotifier(sms SMSSender, company Company, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{sms: sms, company: company.withDefaults(), log: log}
}

func fmtDate(b booking.Booking) string {
	if b.MoveDate.IsZero() {
		return "TBD"
	}
	return b.MoveDate.Format("January 2, 2006")
}

// BookingConfirmation texts the caller their confirmed booking summary.
func (n *Notifier) BookingConfirmation(ctx context.Context, b booking.Booking) (string, error) {
	msg := strings.TrimSpace(fmt.Sprintf(`%s - Booking Confirmed!

Date: %s
Time: %s
From: %s
To: %s
Estimate: $%.2f

We'll call you 1 day before to confirm.
Questions? Call %s

Thank you for choosing %s!`,
		n.company.Name, fmtDate(b), b.MoveTime, b.PickupAddress, b.DropoffAddress,
		b.TotalEstimate, n.company.Phone, n.company.Name))
	return n.sms.SendSMS(ctx, b.Phone, msg)
}

// EstimateSMS texts the caller the quote breakdown.
func (n *Notifier) EstimateSMS(ctx context.Context, phone string, est pricing.Estimate) (string, error) {
	msg := strings.TrimSpace(fmt.Sprintf(`%s - Your Estimate

Base Rate: $%.0f/hr
Movers: %d + Truck
Est. Hours: %.1f
Mileage: $%.2f
Total Estimate: $%.2f

Ready to book? Call %s`,
		n.company.Name, est.BaseRate, est.MoversNeeded, est.EstimatedHours,
		est.MileageCost, est.TotalEstimate, n.company.Phone))
	return n.sms.SendSMS(ctx, phone, msg)
}

// FollowUp texts a lead who did not finish booking.
func (n *Notifier) FollowUp(ctx context.Context, phone, name string) (string, error) {
	msg := strings.TrimSpace(fmt.Sprintf(`Hi %s,

Thank you for contacting %s. We'd love to help with your move!

Ready to schedule? Call us at %s or visit:
%s

Best,
%s Team`,
		name, n.company.Name, n.company.Phone, n.company.Website, n.company.Name))
	return n.sms.SendSMS(ctx, phone, msg)
}

// LongDistanceQuoteRequest asks the manager for a custom quote and tells
// the caller to expect a callback. The manager text goes first; the caller
// confirmation is best effort on top of it.
func (n *Notifier) LongDistanceQuoteRequest(ctx context.Context, b booking.Booking, totalDistance float64) (string, error) {
	managerMsg := strings.TrimSpace(fmt.Sprintf(`LONG DISTANCE MOVE QUOTE REQUEST

Customer: %s
Phone: %s

FROM: %s
TO: %s

Total Distance: %.2f miles
Rooms (Pickup): %d
Rooms (Dropoff): %d
Stairs: %v / %v
Move Date: %s
Packing Service: %v

Special Items: %s
Instructions: %s

Customer is waiting for callback with quote.`,
		b.Name, b.Phone, b.PickupAddress, b.DropoffAddress, totalDistance,
		b.PickupRooms, b.DropoffRooms, b.PickupStairs, b.DropoffStairs,
		fmtDate(b), b.PackingService, orNone(b.SpecialItems), orNone(b.SpecialInstructions)))

	id, err := n.sms.SendSMS(ctx, n.company.ManagerPhone, managerMsg)
	if err != nil {
		return "", err
	}

	customerMsg := strings.TrimSpace(fmt.Sprintf(`Hi %s,

Thank you for your long distance moving inquiry!

Our team is preparing a custom quote for your move from %s to %s.

We'll call you within 24 hours at %s with a detailed quote.

For urgent inquiries: %s

%s`,
		b.Name, b.PickupAddress, b.DropoffAddress, b.Phone, n.company.Phone, n.company.Name))
	if _, err := n.sms.SendSMS(ctx, b.Phone, customerMsg); err != nil {
		n.log.Warn("long distance customer confirmation failed", "error", err)
	}
	return id, nil
}

// InHouseEstimateRequest asks the manager to schedule an on-site estimate
// and confirms to the caller.
func (n *Notifier) InHouseEstimateRequest(ctx context.Context, b booking.Booking) (string, error) {
	managerMsg := strings.TrimSpace(fmt.Sprintf(`IN-HOUSE ESTIMATE REQUEST (LONG DISTANCE)

Customer: %s
Phone: %s

Pickup Address/ZIP: %s
Dropoff Address/ZIP: %s
Move Date: %s

Please contact the customer to schedule an on-site estimate and assess required boxes/packing materials.`,
		b.Name, b.Phone, b.PickupAddress, b.DropoffAddress, fmtDate(b)))

	id, err := n.sms.SendSMS(ctx, n.company.ManagerPhone, managerMsg)
	if err != nil {
		return "", err
	}
	if b.Phone != "" {
		customerMsg := strings.TrimSpace(fmt.Sprintf(`Hi %s,

Thanks for requesting an in-house estimate. Our team will contact you shortly to schedule a home visit at your pickup address.

%s
%s`,
			b.Name, n.company.Name, n.company.Phone))
		if _, err := n.sms.SendSMS(ctx, b.Phone, customerMsg); err != nil {
			n.log.Warn("in-house estimate customer confirmation failed", "error", err)
		}
	}
	return id, nil
}

// NewLeadNotification flags any lead to the manager for follow-up.
func (n *Notifier) NewLeadNotification(ctx context.Context, b booking.Booking) (string, error) {
	status := b.Status
	if status == "" {
		status = "Lead"
	}
	msg := strings.TrimSpace(fmt.Sprintf(`NEW LEAD - %s

Name: %s
Phone: %s
Move Type: %s
Move Date: %s
Status: %s

Action: Follow up within 24 hours`,
		n.company.Name, b.Name, b.Phone, b.MoveType, fmtDate(b), status))
	return n.sms.SendSMS(ctx, n.company.ManagerPhone, msg)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
