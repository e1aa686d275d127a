package dialogue

import (
	"context"
	"fmt"
	"strings"

	"moving-voice-agent/internal/speech"
	"moving-voice-agent/internal/telephony"
)

const moveTypePrompt = "What type of move? Local, long distance, junk removal, or in-home service?"

func (m *Machine) handleGreeting(ctx context.Context, s *Session, input string) telephony.Directive {
	intent, err := m.classifier.DetectIntent(ctx, input)
	if err != nil {
		m.log.Warn("intent detection failed", "call_sid", s.CallSID, "error", err)
	}

	var msg string
	switch {
	case strings.Contains(intent, "estimate"), strings.Contains(intent, "quote"), strings.Contains(intent, "price"):
		msg = "Great! I can help with an estimate. Let's start with your full name."
	case strings.Contains(intent, "book"), strings.Contains(intent, "schedule"), strings.Contains(intent, "move"):
		msg = "Perfect! I'll get you an estimate. What's your full name?"
	default:
		reply, err := m.classifier.GenerateResponse(ctx, input, "greeting")
		if err != nil || reply == "" {
			reply = "I can help you with your moving needs."
		}
		msg = reply + " What's your full name?"
	}

	s.Step = StepCollectName
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true}
}

func (m *Machine) handleName(ctx context.Context, s *Session, input string) telephony.Directive {
	name, err := m.classifier.ExtractName(ctx, strings.TrimSpace(input))
	if err != nil {
		m.log.Warn("name extraction failed", "call_sid", s.CallSID, "error", err)
	}
	if name == "" {
		name = speech.ExtractName(input)
	}

	if len(name) < 2 {
		return telephony.Prompt{
			Message:        "Sorry, I didn't catch your name. Please say your first and last name.",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}

	s.Name.Propose(name)
	s.Step = StepConfirmName
	return telephony.Prompt{
		Message:        fmt.Sprintf("I heard your name as %s. Is that correct?", name),
		AllowSpeech:    true,
		TimeoutSeconds: 5,
	}
}

func (m *Machine) handleConfirmName(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		name, ok := s.Name.Accept()
		if !ok {
			s.Step = StepCollectName
			return telephony.Prompt{Message: "Please tell me your full name.", AllowSpeech: true, TimeoutSeconds: 5}
		}
		s.Step = StepConfirmCallingNumber
		m.savePartialLead(ctx, s)

		spoken := speech.DigitsToSpoken(speech.ExtractDigits(s.CallerNumber))
		msg := fmt.Sprintf("Thank you, %s. Would you like me to use the number you're calling from", name)
		if spoken != "" {
			msg += fmt.Sprintf(", %s,", spoken)
		} else {
			msg += ","
		}
		msg += " for your estimate?"
		return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true, TimeoutSeconds: 5}
	case "no":
		s.Name.Reject()
		s.Step = StepCollectName
		return telephony.Prompt{
			Message:        "No problem. Please say your first and last name.",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	default:
		return telephony.Prompt{Message: "Is the name I heard correct?", AllowSpeech: true, TimeoutSeconds: 5}
	}
}

func (m *Machine) handleConfirmCallingNumber(ctx context.Context, s *Session, input string) telephony.Directive {
	digits := speech.ExtractDigits(s.CallerNumber)
	formatted := ""
	if digits != "" {
		formatted = speech.FormatPhone(digits)
	}

	answer := speech.ValidateYesNo(input)

	if answer == "yes" && formatted != "" {
		s.Phone.Set(formatted)
		s.PhoneNeedsConfirmation = false
		s.Step = StepCollectMoveType
		m.savePartialLead(ctx, s)
		return telephony.Prompt{Message: "Great! " + moveTypePrompt, AllowSpeech: true, AllowDigits: true}
	}

	if answer == "no" || formatted == "" {
		s.Step = StepCollectPhone
		s.PhoneBuffer = ""
		return telephony.Prompt{
			Message:        "No problem. Please say your phone number.",
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 5,
			NumDigits:      14,
		}
	}

	msg := "I didn't catch that. Would you like me to use the number you're calling from?"
	if spoken := speech.DigitsToSpoken(digits); spoken != "" {
		msg = fmt.Sprintf("I didn't catch that. Would you like me to use the number you're calling from, %s?", spoken)
	}
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true, TimeoutSeconds: 5}
}

func (m *Machine) handlePhone(ctx context.Context, s *Session, input string) telephony.Directive {
	if s.PhoneNeedsConfirmation {
		// Loose affirmative match; callers answer this one many ways.
		if strings.Contains(input, "yes") || strings.Contains(input, "correct") ||
			strings.Contains(input, "right") || strings.Contains(input, "yeah") ||
			strings.Contains(input, "yep") {
			s.Phone.Accept()
			s.PhoneNeedsConfirmation = false
			s.Step = StepCollectMoveType
			m.savePartialLead(ctx, s)
			return telephony.Prompt{Message: "Great! " + moveTypePrompt, AllowSpeech: true, AllowDigits: true}
		}
		s.PhoneNeedsConfirmation = false
		s.Phone.Reject()
		s.PhoneBuffer = ""
		return telephony.Prompt{
			Message:        "Let's try again. Please say your phone number.",
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 5,
			NumDigits:      14,
		}
	}

	combined := s.PhoneBuffer + speech.ExtractDigits(input)
	if combined == "" {
		return telephony.Prompt{
			Message:        "I didn't catch that. Please say your phone number.",
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 5,
			NumDigits:      14,
		}
	}

	if len(combined) < 10 {
		s.PhoneBuffer = combined
		return telephony.Prompt{
			Message:        fmt.Sprintf("I have %d digits. Please continue.", len(combined)),
			AllowSpeech:    true,
			AllowDigits:    true,
			TimeoutSeconds: 5,
			NumDigits:      14,
		}
	}

	if len(combined) > 14 {
		combined = combined[len(combined)-14:]
	}

	formatted := speech.FormatPhone(combined)
	s.Phone.Propose(formatted)
	s.PhoneBuffer = ""
	s.PhoneNeedsConfirmation = true
	m.savePartialLead(ctx, s)
	return telephony.Prompt{
		Message:     fmt.Sprintf("Got it. Your number is %s. Correct?", formatted),
		AllowSpeech: true,
		AllowDigits: true,
	}
}

func (m *Machine) handleConfirmTransfer(ctx context.Context, s *Session, input string) telephony.Directive {
	switch speech.ValidateYesNo(input) {
	case "yes":
		s.TransferPending = true
		if s.hasTransferEssentials() {
			return telephony.Transfer{
				Number:     m.cfg.ManagerPhone,
				PreMessage: "I'll transfer you to our manager right away. Please hold.",
			}
		}
		// Collect the first missing essential before transferring.
		if _, ok := s.Name.Get(); !ok {
			s.Step = StepCollectName
		} else {
			s.Step = StepCollectPhone
		}
		m.log.Info("transfer confirmed, collecting essentials", "call_sid", s.CallSID, "step", s.Step)
		return m.promptForStep(s.Step)
	case "no":
		s.TransferPending = false
		if s.TransferPrevStep != "" {
			s.Step = s.TransferPrevStep
			s.TransferPrevStep = ""
		}
		return m.promptForStep(s.Step)
	default:
		return telephony.Prompt{
			Message:        "Sorry, would you like me to transfer you to our manager now?",
			AllowSpeech:    true,
			TimeoutSeconds: 5,
		}
	}
}

// handleEmailSkip routes the retired email steps straight to move type so
// stale sessions keep moving.
func (m *Machine) handleEmailSkip(ctx context.Context, s *Session, input string) telephony.Directive {
	_ = ctx
	_ = input
	s.Step = StepCollectMoveType
	return telephony.Prompt{Message: moveTypePrompt, AllowSpeech: true, AllowDigits: true}
}
