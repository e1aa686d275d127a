package dialogue

import (
	"context"
	"fmt"
	"math"
	"strings"

	"moving-voice-agent/internal/speech"
	"moving-voice-agent/internal/telephony"
)

const packingPrompt = "Do you need packing service besides moving? With packing, we provide boxes of all sizes and all needed packing materials."

func (m *Machine) handleDate(ctx context.Context, s *Session, input string) telephony.Directive {
	moveDate, ok := speech.ValidateDate(input, m.clock())
	if !ok {
		return telephony.Prompt{
			Message:     "I didn't understand that date. Please say it again, for example 'January 25th' or 'next Monday'.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	s.MoveDate = moveDate

	// Warm the per-date booking cache in the background so the
	// availability stages stay inside the webhook budget.
	if m.prewarm != nil {
		prewarm := m.prewarm
		days := m.cfg.PrewarmDays
		go prewarm(context.WithoutCancel(ctx), moveDate, days)
	}

	s.Step = StepCollectTime
	return telephony.Prompt{
		Message: fmt.Sprintf("Great! To confirm, the move date is %s. What time would you prefer? You can say morning, afternoon, evening, or a specific time, or flexible.",
			moveDate.Format("January 2, 2006")),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

// handleTime records the preference and hands off to the staged
// availability check; the heavy work happens behind redirects so each
// webhook response stays fast.
func (m *Machine) handleTime(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.MoveTime = speech.ValidateTime(input)
	m.log.Info("time preference captured", "call_sid", s.CallSID, "time", s.MoveTime)
	return telephony.Redirect{
		Message:      "Thank you. Please hold a moment while I check availability for your preferred time. I'm checking the schedule now. This will just take a few seconds.",
		URL:          "/voice/check_time",
		PauseSeconds: 1,
	}
}

// CheckTime is stage 1 of the availability sequence: resolve the
// pickup-to-dropoff drive time, then hop onward.
func (m *Machine) CheckTime(ctx context.Context, callID string) telephony.Directive {
	s := m.load(ctx, callID)

	pickup := s.PickupAddress()
	dropoff := s.DropoffAddress()
	if !s.DistanceOK && pickup != "" && dropoff != "" {
		route := m.distance.RouteDistance(ctx, pickup, dropoff)
		if route.OK {
			s.RoundTripMiles = route.RoundTripMiles
			s.P2PMiles = route.PointToPointMiles
			s.P2PMinutes = route.PointToPointMinutes
			s.DistanceOK = true
		} else {
			m.log.Warn("travel time lookup failed", "call_sid", callID)
		}
	}
	m.save(ctx, callID, s)

	return telephony.Redirect{
		Message:      "Thanks for your patience. I'm checking our crew availability now.",
		URL:          "/voice/check_availability",
		PauseSeconds: 1,
	}
}

// AvailabilityKeepAlive is stage 2: a pure keep-alive hop before the
// scheduling engine runs.
func (m *Machine) AvailabilityKeepAlive() telephony.Directive {
	return telephony.Redirect{
		Message:      "Thanks for holding. I'm still checking the nearest available crew time.",
		URL:          "/voice/check_availability2",
		PauseSeconds: 1,
	}
}

// FinishAvailability is stage 3: the actual slot check. Long-distance
// itineraries skip hour-level scheduling; engine failure degrades to the
// packing step rather than ending the call.
func (m *Machine) FinishAvailability(ctx context.Context, callID string) telephony.Directive {
	s := m.load(ctx, callID)
	d := m.finishAvailability(ctx, &s)
	m.save(ctx, callID, s)
	return d
}

func (m *Machine) finishAvailability(ctx context.Context, s *Session) telephony.Directive {
	pickupRooms, _ := s.PickupRooms.Get()
	if pickupRooms < 1 {
		pickupRooms = 2
	}
	dropoffRooms, _ := s.DropoffRooms.Get()
	if dropoffRooms < 1 {
		dropoffRooms = 2
	}
	estimatedHours := math.Max(2, float64(pickupRooms+dropoffRooms)/2)
	p2pHours := s.P2PMinutes / 60
	neededHours := math.Max(estimatedHours, p2pHours)

	isLongDistance := strings.Contains(strings.ToLower(s.MoveType), "long distance") ||
		p2pHours > m.cfg.LongDistanceTravelHours

	if isLongDistance {
		s.Step = StepCollectPacking
		msg := "For long distance moves, we schedule by day and a coordinator will confirm the exact time. "
		if !s.MoveDate.IsZero() {
			msg += fmt.Sprintf("We can place you on the schedule for %s. ", s.MoveDate.Format("January 2, 2006"))
		}
		m.log.Info("long distance flow, skipping hourly availability", "call_sid", s.CallSID)
		return telephony.Prompt{Message: msg + packingPrompt, AllowSpeech: true, AllowDigits: true}
	}

	if s.MoveDate.IsZero() {
		s.Step = StepCollectPacking
		return telephony.Prompt{
			Message:     fmt.Sprintf("Great! I've noted your preference for %s. %s", s.MoveTime, packingPrompt),
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	avail := m.scheduler.CheckAvailability(ctx, s.MoveDate, s.MoveTime, neededHours)

	// A zero result date marks an engine failure; keep the call moving.
	if !avail.Available && avail.Date.IsZero() {
		s.Step = StepCollectPacking
		return telephony.Prompt{
			Message:     "Thanks for waiting. Let's continue. " + packingPrompt,
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	if avail.Available {
		s.MoveTime = avail.Time
		s.MoveDate = avail.Date
		s.Step = StepConfirmTime
		return telephony.Prompt{
			Message: fmt.Sprintf("Great! We have availability on %s at %s. Is that correct?",
				avail.Date.Format("January 2, 2006"), avail.Time),
			AllowSpeech: true,
			AllowDigits: true,
		}
	}

	s.Alternatives = avail.Alternatives
	s.Step = StepSelectAlternative
	msg := "I'm sorry, that time isn't available. "
	if p2pHours > 1 {
		msg = "It looks like the available one-hour window isn't enough for travel between addresses. "
	}
	msg += m.scheduler.FormatAlternatives(avail.Alternatives)
	m.log.Info("offering alternatives", "call_sid", s.CallSID, "count", len(avail.Alternatives))
	return telephony.Prompt{
		Message:          msg,
		AllowSpeech:      true,
		AllowDigits:      true,
		FallbackMessage:  "I didn't catch that. Let's try once more.",
		FallbackRedirect: "/voice/process",
	}
}

func (m *Machine) handleConfirmTime(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	switch speech.ValidateYesNo(input) {
	case "yes":
		s.Step = StepCollectPacking
		return telephony.Prompt{Message: "Great! " + packingPrompt, AllowSpeech: true, AllowDigits: true}
	case "no":
		s.Step = StepCollectTime
		return telephony.Prompt{
			Message:     "No problem. What time would you prefer? You can say morning, afternoon, evening, a specific time, or flexible.",
			AllowSpeech: true,
			AllowDigits: true,
		}
	default:
		dateStr := s.MoveDate.Format("January 2, 2006")
		return telephony.Prompt{
			Message:     fmt.Sprintf("To confirm, your move time is %s on %s. Is that correct?", s.MoveTime, dateStr),
			AllowSpeech: true,
			AllowDigits: true,
		}
	}
}

func (m *Machine) handleAlternativeSelection(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	if len(s.Alternatives) == 0 {
		s.Step = StepCollectDate
		return telephony.Prompt{
			Message:        "I'm having trouble finding available slots in the next week. Let's try a different date. What other date would you prefer?",
			AllowSpeech:    true,
			TimeoutSeconds: 6,
		}
	}

	idx, ok := speech.ParseAlternativeChoice(input)
	if !ok || idx >= len(s.Alternatives) {
		return telephony.Prompt{
			Message:        "I didn't catch which option you chose. You can say 'first', 'second', or 'third'. Which one would you like?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}

	selected := s.Alternatives[idx]
	s.MoveDate = selected.Date
	s.MoveTime = selected.Time
	s.Step = StepConfirmTime
	return telephony.Prompt{
		Message: fmt.Sprintf("Great! We can schedule your move for %s at %s. Is that correct?",
			selected.Date.Format("January 2, 2006"), selected.Time),
		AllowSpeech:      true,
		TimeoutSeconds:   5,
		FallbackMessage:  "I didn't catch that. Is the date and time I suggested okay?",
		FallbackRedirect: "/voice/process",
	}
}

func (m *Machine) handlePacking(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.PackingService = speech.ValidateYesNo(input) == "yes"
	s.Step = StepCollectSpecialItems
	return telephony.Prompt{
		Message:     "Understood. Do you have any special items like a piano, safe, or other large items that need extra care?",
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleSpecialItems(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.SpecialItems = strings.TrimSpace(input)
	s.Step = StepCollectSpecialInstructions
	return telephony.Prompt{
		Message:     "Got it. Do you have any other special instructions or requirements for the move?",
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleSpecialInstructions(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	s.SpecialInstructions = strings.TrimSpace(input)
	s.Step = StepAskProcessExplanation
	return telephony.Prompt{
		Message:     "Thank you. Would you like to know about our moving process before I provide your estimate?",
		AllowSpeech: true,
		AllowDigits: true,
	}
}

const processExplanation = "Let me explain our moving process. On moving day, our movers will arrive at your pickup address. " +
	"We bring blankets and plastic wrap free of charge to wrap your furniture and prevent any damage to your belongings. " +
	"We also bring dollies, free of charge, to ease the movement of furniture, boxes, and any heavy pieces. " +
	"We bring tools to disassemble and reassemble required furniture and other pieces such as beds, mirrors, and we can take TVs from walls. " +
	"Now, let me provide you with your estimate."

func (m *Machine) handleAskProcessExplanation(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	msg := "No problem. Let me provide you with your estimate now."
	if speech.ValidateYesNo(input) == "yes" {
		msg = processExplanation
	}
	s.Step = StepProvideEstimate
	return telephony.Prompt{
		Message:     msg,
		AllowSpeech: true,
		AllowDigits: true,
		Action:      "/voice/estimate",
	}
}
