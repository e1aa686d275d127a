package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/pricing"
	"moving-voice-agent/internal/scheduling"
	"moving-voice-agent/internal/speech"
	"moving-voice-agent/internal/telephony"
)

// Estimate is the /voice/estimate entry point.
func (m *Machine) Estimate(ctx context.Context, callID string) telephony.Directive {
	s := m.load(ctx, callID)
	d := m.provideEstimate(ctx, &s, "")
	m.save(ctx, callID, s)
	return d
}

// ConfirmBooking is the /voice/confirm_booking entry point.
func (m *Machine) ConfirmBooking(ctx context.Context, callID, speechText string) telephony.Directive {
	s := m.load(ctx, callID)
	d := m.confirmBooking(ctx, &s, strings.ToLower(speechText))
	m.save(ctx, callID, s)
	return d
}

// ConfirmCallback is the /voice/confirm_callback entry point.
func (m *Machine) ConfirmCallback(ctx context.Context, callID, speechText string) telephony.Directive {
	s := m.load(ctx, callID)
	d := m.handleCallbackRequest(ctx, &s, strings.ToLower(speechText))
	m.save(ctx, callID, s)
	return d
}

func (m *Machine) provideEstimate(ctx context.Context, s *Session, _ string) telephony.Directive {
	// The route is normally cached at dropoff confirmation; fetch it here
	// if that attempt failed.
	pickup := s.PickupAddress()
	dropoff := s.DropoffAddress()
	if !s.DistanceOK && pickup != "" && dropoff != "" {
		route := m.distance.RouteDistance(ctx, pickup, dropoff)
		if route.OK {
			s.RoundTripMiles = route.RoundTripMiles
			s.P2PMiles = route.PointToPointMiles
			s.P2PMinutes = route.PointToPointMinutes
			s.DistanceOK = true
		}
	}

	weekly := 0
	if !s.MoveDate.IsZero() {
		weekStart := weekStartOf(s.MoveDate)
		n, err := m.store.CountWeeklyBookings(ctx, weekStart)
		if err != nil {
			m.log.Warn("weekly booking count failed", "call_sid", s.CallSID, "error", err)
		} else {
			weekly = n
		}
	}

	pickupRooms, _ := s.PickupRooms.Get()
	dropoffRooms, _ := s.DropoffRooms.Get()
	est := m.pricer.Quote(pricing.QuoteRequest{
		MoveType:       s.MoveType,
		PickupRooms:    pickupRooms,
		PickupStairs:   s.PickupStairs,
		DropoffRooms:   dropoffRooms,
		DropoffStairs:  s.DropoffStairs,
		PackingService: s.PackingService,
		DistanceMiles:  s.P2PMiles,
		WeeklyBookings: weekly,
	})
	s.Estimate = &est

	if est.RequiresManualQuote {
		if m.notifier != nil {
			if _, err := m.notifier.LongDistanceQuoteRequest(ctx, s.asBooking(), s.P2PMiles); err != nil {
				m.log.Error("long distance quote request failed", "call_sid", s.CallSID, "error", err)
			}
		}
		s.Step = StepInHouseEstimate
		msg := m.pricer.ManualQuoteMessage() +
			" Would you like us to send someone to your pickup address for a free in-house estimate " +
			"to finalize your quote and confirm the number of boxes and packing materials needed?"
		return telephony.Prompt{
			Message:          msg,
			AllowSpeech:      true,
			TimeoutSeconds:   6,
			FallbackMessage:  "I didn't catch that. Would you like an in-house estimate?",
			FallbackRedirect: "/voice/process",
		}
	}

	m.log.Info("estimate prepared", "call_sid", s.CallSID, "total", est.TotalEstimate)
	s.Step = StepConfirmBooking
	return telephony.Prompt{
		Message:          est.Message() + " Would you like to confirm this booking?",
		AllowSpeech:      true,
		TimeoutSeconds:   5,
		Action:           "/voice/confirm_booking",
		FallbackMessage:  "I didn't catch that. Let's confirm your booking.",
		FallbackRedirect: "/voice/confirm_booking",
	}
}

// weekStartOf is the Monday of the date's week, matching the weekly
// booking count window.
func weekStartOf(date time.Time) time.Time {
	cfg := now.Config{WeekStartDay: time.Monday}
	return cfg.With(date).BeginningOfWeek()
}

func (m *Machine) confirmBooking(ctx context.Context, s *Session, input string) telephony.Directive {
	if speech.ValidateYesNo(input) != "yes" {
		s.Step = StepDiscountOffer
		return telephony.Prompt{
			Message: "No problem. If you'd like, I can connect you with our manager to see if we can offer a discount. " +
				"Would you like me to transfer you now?",
			AllowSpeech:      true,
			TimeoutSeconds:   5,
			FallbackMessage:  "I didn't catch that. Should I transfer you to our manager?",
			FallbackRedirect: "/voice/process",
		}
	}

	b := s.asBooking()
	b.Booked = true
	b.Status = booking.StatusConfirmed

	id, err := m.store.SaveBooking(ctx, b)
	if err != nil {
		m.log.Error("booking save failed", "call_sid", s.CallSID, "error", err)
		return telephony.Terminate{Messages: []string{
			fmt.Sprintf("I'm sorry, there was an issue saving your booking. Please call us directly at %s to complete your booking.", m.cfg.OfficePhoneSpoken),
		}}
	}
	s.BookingID = id
	m.notifyManagerBooking(ctx, s)

	msg := fmt.Sprintf("Perfect! Your move is confirmed for %s at %s %s. Your booking ID is %s.",
		s.MoveDate.Format("January 2, 2006"), s.MoveTime, windowPhrase(s.MoveTime), id)
	s.Step = StepCollectFinalPickupAddress
	return telephony.Prompt{
		Message:        msg + " To finish up, what's the full pickup address, including city and ZIP?",
		AllowSpeech:    true,
		TimeoutSeconds: 6,
	}
}

// notifyManagerBooking emails the manager the confirmed booking. Email is
// best effort and optional.
func (m *Machine) notifyManagerBooking(ctx context.Context, s *Session) {
	if m.email == nil || m.cfg.ManagerEmail == "" {
		return
	}
	name, _ := s.Name.Get()
	var total float64
	if s.Estimate != nil {
		total = s.Estimate.TotalEstimate
	}
	body := fmt.Sprintf(
		"New booking %s\nName: %s\nPhone: %s\nDate: %s  Time: %s\nPickup: %s\nDrop-off: %s\nEstimate: $%.2f\n",
		s.BookingID, name, s.confirmedOrCallerPhone(),
		s.MoveDate.Format("January 2, 2006"), s.MoveTime,
		s.PickupAddress(), s.DropoffAddress(), total)
	subject := fmt.Sprintf("New Booking %s", s.BookingID)
	if err := m.email.SendEmail(ctx, m.cfg.ManagerEmail, subject, "", body); err != nil {
		m.log.Error("manager booking email failed", "call_sid", s.CallSID, "error", err)
	}
}

// windowPhrase is the spoken arrival-window qualifier for a confirmed
// time: one hour for morning starts, two hours at or after noon.
func windowPhrase(moveTime string) string {
	t := strings.ToLower(strings.TrimSpace(moveTime))
	if t == "" {
		return ""
	}
	switch {
	case strings.Contains(t, "morning"):
		return "with a one-hour window (9-10 AM)"
	case strings.Contains(t, "afternoon"):
		return "with a two-hour window (1-3 PM)"
	case strings.Contains(t, "flexible"):
		return ""
	}
	hour := scheduling.ParseTimeToHour(moveTime)
	if hour < 12 {
		return "with a one-hour window"
	}
	return fmt.Sprintf("with a two-hour window (%s)", scheduling.WindowLabel(hour))
}

func (m *Machine) handleDiscountOffer(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		b := s.asBooking()
		b.Status = booking.StatusTransferDiscount
		if _, err := m.store.SaveBooking(ctx, b); err != nil {
			m.log.Error("discount lead save failed", "call_sid", s.CallSID, "error", err)
		}
		return telephony.Transfer{
			Number:     m.cfg.ManagerPhone,
			PreMessage: "I'll transfer you to our manager now. Please hold.",
		}
	case "no":
		b := s.asBooking()
		b.Status = booking.StatusDeclined
		if _, err := m.store.SaveBooking(ctx, b); err != nil {
			m.log.Error("declined lead save failed", "call_sid", s.CallSID, "error", err)
		}
		return telephony.Terminate{Messages: []string{
			fmt.Sprintf("No problem. If you change your mind, please call us at %s. Thank you for calling %s!",
				m.cfg.OfficePhoneSpoken, m.cfg.CompanyName),
		}}
	default:
		return telephony.Prompt{
			Message:        "Would you like me to transfer you to our manager to check a discount?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}
}

func (m *Machine) handleInHouseEstimate(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		b := s.asBooking()
		b.Status = booking.StatusInHouseEstimate
		if _, err := m.store.SaveBooking(ctx, b); err != nil {
			m.log.Error("in-house estimate lead save failed", "call_sid", s.CallSID, "error", err)
		}
		if m.notifier != nil {
			if _, err := m.notifier.InHouseEstimateRequest(ctx, b); err != nil {
				m.log.Error("in-house estimate notification failed", "call_sid", s.CallSID, "error", err)
			}
		}
		return telephony.Terminate{Messages: []string{
			fmt.Sprintf("Great! We'll send someone to your pickup address to provide a final on-site estimate, including boxes and packing materials. "+
				"Our team will contact you to schedule the visit shortly. Thank you for choosing %s!", m.cfg.CompanyName),
		}}
	case "no":
		return telephony.Prompt{
			Message:          "No problem. Would you like me to have someone call you back within 24 hours with a custom long distance quote?",
			AllowSpeech:      true,
			TimeoutSeconds:   5,
			Action:           "/voice/confirm_callback",
			FallbackMessage:  "I didn't catch that. Let's confirm by phone.",
			FallbackRedirect: "/voice/confirm_callback",
		}
	default:
		return telephony.Prompt{
			Message:        "Would you like us to send someone to your pickup address for a free in-house estimate?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}
}

func (m *Machine) handleCallbackRequest(ctx context.Context, s *Session, input string) telephony.Directive {
	name, _ := s.Name.Get()
	phone := s.confirmedOrCallerPhone()

	if speech.ValidateYesNo(input) != "yes" {
		return telephony.Terminate{Messages: []string{
			fmt.Sprintf("No problem. If you change your mind, please call us at %s. Thank you for calling %s!",
				m.cfg.OfficePhoneSpoken, m.cfg.CompanyName),
		}}
	}

	s.SpecialInstructions = strings.TrimSpace(s.SpecialInstructions + " | LONG DISTANCE MOVE - REQUIRES CUSTOM QUOTE")
	b := s.asBooking()
	b.Status = booking.StatusCallbackLongDistance
	if _, err := m.store.SaveBooking(ctx, b); err != nil {
		m.log.Error("callback lead save failed", "call_sid", s.CallSID, "error", err)
	}

	smsBody := fmt.Sprintf(`Hi %s,

Thank you for your long distance moving inquiry. Our team will call you within 24 hours with a custom quote.

Reference: Long Distance Move
From: %s
To: %s

Questions? Call (281) 743-4503

%s`, name, s.PickupAddress(), s.DropoffAddress(), m.cfg.CompanyName)
	if _, err := m.sms.SendSMS(ctx, phone, smsBody); err != nil {
		m.log.Error("callback confirmation sms failed", "call_sid", s.CallSID, "error", err)
	}

	return telephony.Terminate{Messages: []string{
		fmt.Sprintf("Thank you, %s. I've recorded all your information. "+
			"Someone from our long distance moving team will call you back at %s within 24 hours with a custom quote. "+
			"Thank you for considering %s!", name, phone, m.cfg.CompanyName),
	}}
}

func (m *Machine) handleFinalPickupAddress(ctx context.Context, s *Session, input string) telephony.Directive {
	candidate := strings.TrimSpace(input)
	if len(candidate) < 5 {
		return telephony.Prompt{
			Message:        "I didn't catch that. Please say the full pickup address, including city and ZIP.",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	}
	s.FinalPickup.Propose(candidate)
	s.Step = StepConfirmFinalPickupAddress
	return telephony.Prompt{
		Message:        fmt.Sprintf("You said, %s. Is that correct?", candidate),
		AllowSpeech:    true,
		TimeoutSeconds: 5,
	}
}

func (m *Machine) handleConfirmFinalPickupAddress(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		candidate, ok := s.FinalPickup.Pending()
		if !ok {
			candidate = s.PickupAddress()
		}
		s.FinalPickup.Set(appendZipIfMissing(candidate, &s.PickupZip))
		s.Step = StepCollectFinalDropoffAddress
		return telephony.Prompt{
			Message:        "Thanks. What's the full drop-off address, including city and ZIP?",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	case "no":
		s.FinalPickup.Reject()
		s.Step = StepCollectFinalPickupAddress
		return telephony.Prompt{
			Message:        "Let's try again. What's the full pickup address?",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	default:
		return telephony.Prompt{
			Message:        "Is that pickup address correct?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}
}

// appendZipIfMissing keeps the canonical ZIP attached to a spoken street
// address: prefer a ZIP found in the text, else append the one captured
// earlier.
func appendZipIfMissing(address string, zip *Confirmable[string]) string {
	if found, ok := speech.ValidateZip(address); ok {
		zip.Set(found)
		return address
	}
	if hint, ok := zip.Get(); ok && hint != "" {
		return address + ", " + hint
	}
	return address
}

func (m *Machine) handleFinalDropoffAddress(ctx context.Context, s *Session, input string) telephony.Directive {
	candidate := strings.TrimSpace(input)
	if len(candidate) < 5 {
		return telephony.Prompt{
			Message:        "I didn't catch that. Please say the full drop-off address, including city and ZIP.",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	}
	s.FinalDropoff.Propose(candidate)
	s.Step = StepConfirmFinalDropoffAddress
	return telephony.Prompt{
		Message:        fmt.Sprintf("You said, %s. Is that correct?", candidate),
		AllowSpeech:    true,
		TimeoutSeconds: 5,
	}
}

func (m *Machine) handleConfirmFinalDropoffAddress(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		candidate, ok := s.FinalDropoff.Pending()
		if !ok {
			candidate = s.DropoffAddress()
		}
		s.FinalDropoff.Set(appendZipIfMissing(candidate, &s.DropoffZip))

		m.sendEstimateSMS(ctx, s)
		s.Step = StepConfirmSMSReceived
		return telephony.Prompt{
			Message:        "I've sent your estimate by text. Did you receive it?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	case "no":
		s.FinalDropoff.Reject()
		s.Step = StepCollectFinalDropoffAddress
		return telephony.Prompt{
			Message:        "Let's try again. What's the full drop-off address?",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	default:
		return telephony.Prompt{
			Message:        "Is that drop-off address correct?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}
}

// sendEstimateSMS texts the booking summary to the caller and a copy to
// the manager line for transfer reference. Both best effort.
func (m *Machine) sendEstimateSMS(ctx context.Context, s *Session) {
	body := m.composeEstimateSMS(s)
	phone := s.confirmedOrCallerPhone()
	if phone != "" {
		if _, err := m.sms.SendSMS(ctx, phone, body); err != nil {
			m.log.Error("estimate sms to customer failed", "call_sid", s.CallSID, "error", err)
		}
	}
	if _, err := m.sms.SendSMS(ctx, m.cfg.ManagerPhone, body); err != nil {
		m.log.Warn("estimate sms to manager failed", "call_sid", s.CallSID, "error", err)
	}
}

func (m *Machine) composeEstimateSMS(s *Session) string {
	var parts []string
	parts = append(parts, "USF Moving - Booking Confirmed")
	if s.BookingID != "" {
		parts = append(parts, "Booking ID: "+s.BookingID)
	}
	if name, ok := s.Name.Get(); ok {
		parts = append(parts, "Name: "+name)
	}
	if !s.MoveDate.IsZero() {
		parts = append(parts, "Date: "+s.MoveDate.Format("January 2, 2006"))
	}
	if s.MoveTime != "" {
		parts = append(parts, "Time: "+s.MoveTime)
	}
	if addr := s.PickupAddress(); addr != "" {
		parts = append(parts, "Pickup: "+addr)
	}
	if addr := s.DropoffAddress(); addr != "" {
		parts = append(parts, "Drop-off: "+addr)
	}
	if s.Estimate != nil {
		if s.Estimate.MoversNeeded > 0 {
			parts = append(parts, fmt.Sprintf("Crew: %d movers", s.Estimate.MoversNeeded))
		}
		if s.Estimate.EstimatedHours > 0 {
			parts = append(parts, fmt.Sprintf("Estimated Hours: %g", s.Estimate.EstimatedHours))
		}
		if s.Estimate.TotalEstimate > 0 {
			parts = append(parts, fmt.Sprintf("Estimate: $%.2f", s.Estimate.TotalEstimate))
		}
	}
	parts = append(parts, "Questions? Call (281) 743-4503")
	return strings.Join(parts, "\n")
}

func (m *Machine) handleConfirmSMSReceived(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		return telephony.Terminate{Messages: []string{
			fmt.Sprintf("Perfect. You're all set. Our crew will contact you before your move. Thank you for choosing %s!", m.cfg.CompanyName),
		}}
	case "no":
		s.Step = StepConfirmPhoneForSMS
		spoken := speech.DigitsToSpoken(speech.ExtractDigits(s.confirmedOrCallerPhone()))
		msg := "Let's confirm your number. Is the phone number I have on file correct?"
		if spoken != "" {
			msg = fmt.Sprintf("Let's confirm your number. Is your phone number %s?", spoken)
		}
		return telephony.Prompt{Message: msg, AllowSpeech: true, TimeoutSeconds: 5}
	default:
		return telephony.Prompt{Message: "Did you receive the text message?", AllowSpeech: true, TimeoutSeconds: 5}
	}
}

func (m *Machine) handleConfirmPhoneForSMS(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		m.sendEstimateSMS(ctx, s)
		s.Step = StepConfirmSMSReceived
		return telephony.Prompt{
			Message:        "I've resent the message. Did you receive it now?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	case "no":
		s.Step = StepCollectPhoneForSMS
		return telephony.Prompt{
			Message:        "Please say your phone number so I can resend your estimate.",
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 6,
			NumDigits:      14,
		}
	default:
		return telephony.Prompt{Message: "Is your phone number correct?", AllowSpeech: true, TimeoutSeconds: 5}
	}
}

func (m *Machine) handleCollectPhoneForSMS(ctx context.Context, s *Session, input string) telephony.Directive {
	digits := speech.ExtractDigits(input)
	if len(digits) < 10 {
		return telephony.Prompt{
			Message:        "I didn't catch enough digits. Please say your phone number again.",
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 6,
			NumDigits:      14,
		}
	}
	s.Phone.Set(speech.FormatPhone(digits))

	m.sendEstimateSMS(ctx, s)
	s.Step = StepConfirmSMSReceived
	return telephony.Prompt{
		Message:        "Thanks. I have sent the text. Did you receive it?",
		AllowSpeech:    true,
		TimeoutSeconds: 5,
	}
}
