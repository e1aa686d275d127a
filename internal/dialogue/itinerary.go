package dialogue

import (
	"context"
	"fmt"
	"strings"

	"moving-voice-agent/internal/speech"
	"moving-voice-agent/internal/telephony"
)

func (m *Machine) handleMoveType(ctx context.Context, s *Session, input string) telephony.Directive {
	classified, err := m.classifier.ClassifyMoveType(ctx, input)
	if err != nil {
		m.log.Warn("move type classification failed", "call_sid", s.CallSID, "error", err)
	}
	candidates := []string{input, strings.ToLower(classified)}

	contains := func(sub string) bool {
		for _, t := range candidates {
			if strings.Contains(t, sub) {
				return true
			}
		}
		return false
	}

	var normalized string
	switch {
	case contains("long distance"):
		normalized = "Long Distance"
	case contains("junk"):
		normalized = "Junk Removal"
	case contains("in-home"), contains("in home"):
		normalized = "In-Home Service"
	case contains("local"):
		normalized = "Local"
	}

	if normalized == "" {
		return telephony.Prompt{
			Message:     "I didn't catch that. Please say: local, long distance, junk removal, or in-home service.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	s.MoveType = normalized
	s.Step = StepCollectPropertyType

	msg := "Got it. Is this residential or commercial?"
	if normalized == "Long Distance" {
		msg = "Great! We provide free packing materials for long distance moves. Is this residential or commercial?"
	}
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
}

func (m *Machine) handlePropertyType(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	var propertyType string
	switch {
	case strings.Contains(input, "residen"), strings.Contains(input, "home"):
		propertyType = "residential"
	case strings.Contains(input, "commercial"), strings.Contains(input, "business"),
		strings.Contains(input, "office"), strings.Contains(input, "warehouse"):
		propertyType = "commercial"
	}

	if propertyType == "" {
		return telephony.Prompt{
			Message:     "I didn't catch that. Is this residential or commercial?",
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	s.PropertyType = propertyType
	s.Step = StepCollectPickupType

	msg := "Perfect. Is the pickup a house or apartment?"
	if propertyType == "commercial" {
		msg = "Perfect. Is the pickup an office or warehouse?"
	}
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
}

// parseLocationType maps an utterance to a location kind within the
// caller's property class.
func parseLocationType(propertyType, input string) string {
	if propertyType == "residential" {
		switch {
		case strings.Contains(input, "house"), strings.Contains(input, "home"):
			return "house"
		case strings.Contains(input, "apartment"), strings.Contains(input, "apt"), strings.Contains(input, "condo"):
			return "apartment"
		}
		return ""
	}
	switch {
	case strings.Contains(input, "office"):
		return "office"
	case strings.Contains(input, "warehouse"):
		return "warehouse"
	}
	return ""
}

func (m *Machine) handlePickupType(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	if s.PropertyType == "" {
		s.Step = StepCollectPropertyType
		return telephony.Prompt{Message: "Is this residential or commercial?", AllowSpeech: true, AllowDigits: true}
	}

	normalized := parseLocationType(s.PropertyType, strings.TrimSpace(input))
	if normalized == "" {
		msg := "Please say 'house' or 'apartment' for the pickup location."
		if s.PropertyType == "commercial" {
			msg = "Please say 'office' or 'warehouse' for the pickup location."
		}
		return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
	}

	s.PickupType = normalized
	s.Step = StepCollectPickupAddress
	return telephony.Prompt{
		Message:     "What's the pickup ZIP code?" + m.zipHint(),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

// collectZip accumulates ZIP digits across turns into buffer and proposes
// the first five as the candidate. Shared by the pickup and dropoff steps.
func (m *Machine) collectZip(s *Session, input, label string, buffer *string, zip *Confirmable[string], confirmStep Step) telephony.Directive {
	combined := *buffer + speech.ExtractDigits(input)
	if len(combined) > 10 {
		combined = combined[:10]
	}

	if len(combined) < 5 {
		*buffer = combined
		plural := "s"
		if len(combined) == 1 {
			plural = ""
		}
		return telephony.Prompt{
			Message:        fmt.Sprintf("I have %d digit%s. Please continue with your %s ZIP code.%s", len(combined), plural, label, m.zipHint()),
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 6,
			NumDigits:      5,
		}
	}

	code := combined[:5]
	*buffer = ""
	zip.Propose(code)
	s.Step = confirmStep
	return telephony.Prompt{
		Message:        fmt.Sprintf("The %s ZIP is %s. Correct?", label, speech.DigitsToSpoken(code)),
		AllowSpeech:    true,
		AllowDigits:    true,
		TimeoutSeconds: 6,
	}
}

func (m *Machine) handlePickupZip(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	return m.collectZip(s, input, "pickup", &s.PickupZipBuffer, &s.PickupZip, StepConfirmPickupAddress)
}

func (m *Machine) handleConfirmPickupZip(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	switch speech.ValidateYesNo(input) {
	case "yes":
		s.PickupZip.Accept()
		s.Step = StepCollectPickupRooms
		return telephony.Prompt{Message: "Great! How many rooms at pickup?", AllowSpeech: true, AllowDigits: true}
	case "no":
		s.PickupZip = Confirmable[string]{}
		s.Step = StepCollectPickupAddress
		return telephony.Prompt{
			Message:     "Let's try again. What's the pickup ZIP code?" + m.zipHint(),
			AllowSpeech: true,
			AllowDigits: true,
		}
	default:
		code, _ := s.PickupZip.Pending()
		return telephony.Prompt{
			Message:     fmt.Sprintf("The pickup ZIP is %s. Is that correct?", speech.DigitsToSpoken(code)),
			AllowSpeech: true,
			AllowDigits: true,
		}
	}
}

func (m *Machine) handlePickupRooms(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	rooms, ok := speech.ExtractRoomCount(input)
	if !ok {
		return telephony.Prompt{
			Message:     "I didn't catch that. How many rooms? Please say a number from one to ten.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	}
	s.PickupRooms.Propose(rooms)
	s.Step = StepConfirmPickupRooms
	return telephony.Prompt{
		Message:     fmt.Sprintf("You said %d rooms at pickup. Is that correct?", rooms),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleConfirmPickupRooms(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	switch speech.ValidateYesNo(input) {
	case "yes":
		rooms, ok := s.PickupRooms.Accept()
		if !ok || rooms < 1 {
			rooms = 2
			s.PickupRooms.Set(rooms)
		}
		s.Step = StepCollectPickupStairs
		return telephony.Prompt{
			Message:     fmt.Sprintf("Got it, %d rooms. Any stairs or elevator at pickup?", rooms),
			AllowSpeech: true,
			AllowDigits: true,
		}
	case "no":
		s.PickupRooms.Reject()
		s.Step = StepCollectPickupRooms
		return telephony.Prompt{
			Message:     "Okay, how many rooms at pickup? Please say a number from one to ten.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	default:
		return telephony.Prompt{Message: "Is that number correct?", AllowSpeech: true, AllowDigits: true}
	}
}

func (m *Machine) handlePickupStairs(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.PickupStairs = speech.ParseStairs(input)
	s.Step = StepCollectDropoffType

	msg := "Perfect. For drop-off, is it a house or apartment?"
	if s.PropertyType == "commercial" {
		msg = "Perfect. For drop-off, is it an office or warehouse?"
	}
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
}

func (m *Machine) handleDropoffType(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	if s.PropertyType == "" {
		s.Step = StepCollectPropertyType
		return telephony.Prompt{Message: "Is this residential or commercial?", AllowSpeech: true, AllowDigits: true}
	}

	normalized := parseLocationType(s.PropertyType, strings.TrimSpace(input))
	if normalized == "" {
		msg := "Please say 'house' or 'apartment' for the drop-off location."
		if s.PropertyType == "commercial" {
			msg = "Please say 'office' or 'warehouse' for the drop-off location."
		}
		return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
	}

	s.DropoffType = normalized
	s.Step = StepCollectDropoffAddress
	return telephony.Prompt{
		Message:     "What's the drop-off ZIP code?" + m.zipHint(),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleDropoffZip(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	return m.collectZip(s, input, "drop-off", &s.DropoffZipBuffer, &s.DropoffZip, StepConfirmDropoffAddress)
}

func (m *Machine) handleConfirmDropoffZip(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		s.DropoffZip.Accept()
		s.Step = StepCollectDropoffRooms

		// Both ends are known now; fetch the route once so the estimate
		// step does not have to wait on it.
		pickup := s.PickupAddress()
		dropoff := s.DropoffAddress()
		if pickup != "" && dropoff != "" {
			route := m.distance.RouteDistance(ctx, pickup, dropoff)
			if route.OK {
				s.RoundTripMiles = route.RoundTripMiles
				s.P2PMiles = route.PointToPointMiles
				s.P2PMinutes = route.PointToPointMinutes
				s.DistanceOK = true
			} else {
				m.log.Warn("distance calc failed at dropoff confirm", "call_sid", s.CallSID)
			}
		}
		return telephony.Prompt{Message: "How many rooms at drop-off?", AllowSpeech: true, AllowDigits: true}
	case "no":
		s.DropoffZip = Confirmable[string]{}
		s.Step = StepCollectDropoffAddress
		return telephony.Prompt{
			Message:     "Let's try again. What's the drop-off ZIP code?" + m.zipHint(),
			AllowSpeech: true,
			AllowDigits: true,
		}
	default:
		code, _ := s.DropoffZip.Pending()
		return telephony.Prompt{
			Message:     fmt.Sprintf("The drop-off ZIP is %s. Is that correct?", speech.DigitsToSpoken(code)),
			AllowSpeech: true,
			AllowDigits: true,
		}
	}
}

func (m *Machine) handleDropoffRooms(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	rooms, ok := speech.ExtractRoomCount(input)
	if !ok {
		return telephony.Prompt{
			Message:     "I didn't catch that. How many rooms at drop-off? Please say a number from one to ten.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	}
	s.DropoffRooms.Propose(rooms)
	s.Step = StepConfirmDropoffRooms
	return telephony.Prompt{
		Message:     fmt.Sprintf("You said %d rooms at drop-off. Is that correct?", rooms),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleConfirmDropoffRooms(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	switch speech.ValidateYesNo(input) {
	case "yes":
		rooms, ok := s.DropoffRooms.Accept()
		if !ok || rooms < 1 {
			rooms = 2
			s.DropoffRooms.Set(rooms)
		}
		s.Step = StepCollectDropoffStairs
		return telephony.Prompt{
			Message:     fmt.Sprintf("Got it, %d rooms. Any stairs or elevator at drop-off?", rooms),
			AllowSpeech: true,
			AllowDigits: true,
		}
	case "no":
		s.DropoffRooms.Reject()
		s.Step = StepCollectDropoffRooms
		return telephony.Prompt{
			Message:     "Okay, how many rooms at drop-off? Please say a number from one to ten.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	default:
		return telephony.Prompt{Message: "Is that number correct?", AllowSpeech: true, AllowDigits: true}
	}
}

func (m *Machine) handleDropoffStairs(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.DropoffStairs = speech.ParseStairs(input)
	s.Step = StepCollectDate
	return telephony.Prompt{
		Message:     "Perfect. What date would you like for your move?",
		AllowSpeech: true,
		AllowDigits: true,
	}
}
