// Package dialogue is the conversation state machine: one handler per
// step, interrupts checked before dispatch, and a directive returned per
// turn for the telephony layer to render.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/distance"
	"moving-voice-agent/internal/nlu"
	"moving-voice-agent/internal/notify"
	"moving-voice-agent/internal/pricing"
	"moving-voice-agent/internal/scheduling"
	"moving-voice-agent/internal/session"
	"moving-voice-agent/internal/telephony"
)

// Config tunes the machine. Zero values fall back to the defaults below.
type Config struct {
	CompanyName  string
	ManagerPhone string
	// OfficePhoneSpoken is the office number read digit by digit in
	// terminal messages.
	OfficePhoneSpoken string
	// LongDistanceTravelHours is the pickup-to-dropoff drive time beyond
	// which hour-level availability is skipped.
	LongDistanceTravelHours float64
	// PrewarmDays is how many days past the requested date the booking
	// cache is warmed after date collection.
	PrewarmDays int
	// ZipGuidance appends the spoken five-digit example to ZIP prompts.
	ZipGuidance bool
	ManagerEmail string
}

func (c Config) withDefaults() Config {
	if c.CompanyName == "" {
		c.CompanyName = "USF Moving Company"
	}
	if c.ManagerPhone == "" {
		c.ManagerPhone = "+18327999276"
	}
	if c.OfficePhoneSpoken == "" {
		c.OfficePhoneSpoken = "2 8 1, 7 4 3, 4 5 0 3"
	}
	if c.LongDistanceTravelHours <= 0 {
		c.LongDistanceTravelHours = 3
	}
	if c.PrewarmDays <= 0 {
		c.PrewarmDays = 3
	}
	return c
}

// Deps are the machine's collaborators. Sessions, Store, Pricer,
// Scheduler, Distance, Classifier, and SMS are required; the rest are
// optional and degrade to no-ops.
type Deps struct {
	Sessions   session.Store[Session]
	Store      booking.Store
	Pricer     *pricing.Engine
	Scheduler  *scheduling.Engine
	Distance   distance.Service
	Classifier nlu.Classifier
	Notifier   *notify.Notifier
	SMS        notify.SMSSender
	Email      notify.EmailSender
	// Prewarm warms the per-date booking cache in the background.
	Prewarm func(ctx context.Context, date time.Time, days int)
	Log     *slog.Logger
}

// Input is one webhook turn's raw capture.
type Input struct {
	CallID string
	Digits string
	Speech string
}

type handlerFunc func(ctx context.Context, s *Session, input string) telephony.Directive

type Machine struct {
	cfg        Config
	sessions   session.Store[Session]
	store      booking.Store
	pricer     *pricing.Engine
	scheduler  *scheduling.Engine
	distance   distance.Service
	classifier nlu.Classifier
	notifier   *notify.Notifier
	sms        notify.SMSSender
	email      notify.EmailSender
	prewarm    func(ctx context.Context, date time.Time, days int)
	log        *slog.Logger
	clock      func() time.Time

	handlers map[Step]handlerFunc
}

func NewMachine(cfg Config, deps Deps) *Machine {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	m := &Machine{
		cfg:        cfg.withDefaults(),
		sessions:   deps.Sessions,
		store:      deps.Store,
		pricer:     deps.Pricer,
		scheduler:  deps.Scheduler,
		distance:   deps.Distance,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		sms:        deps.SMS,
		email:      deps.Email,
		prewarm:    deps.Prewarm,
		log:        log,
		clock:      time.Now,
	}
	m.handlers = map[Step]handlerFunc{
		StepGreeting:             m.handleGreeting,
		StepCollectName:          m.handleName,
		StepConfirmName:          m.handleConfirmName,
		StepCollectPhone:         m.handlePhone,
		StepConfirmCallingNumber: m.handleConfirmCallingNumber,
		StepConfirmTransfer:      m.handleConfirmTransfer,

		StepCollectEmail:     m.handleEmailSkip,
		StepCollectEmailCase: m.handleEmailSkip,

		StepCollectMoveType:       m.handleMoveType,
		StepCollectPropertyType:   m.handlePropertyType,
		StepCollectPickupType:     m.handlePickupType,
		StepCollectPickupAddress:  m.handlePickupZip,
		StepConfirmPickupAddress:  m.handleConfirmPickupZip,
		StepCollectPickupRooms:    m.handlePickupRooms,
		StepConfirmPickupRooms:    m.handleConfirmPickupRooms,
		StepCollectPickupStairs:   m.handlePickupStairs,
		StepCollectDropoffType:    m.handleDropoffType,
		StepCollectDropoffAddress: m.handleDropoffZip,
		StepConfirmDropoffAddress: m.handleConfirmDropoffZip,
		StepCollectDropoffRooms:   m.handleDropoffRooms,
		StepConfirmDropoffRooms:   m.handleConfirmDropoffRooms,
		StepCollectDropoffStairs:  m.handleDropoffStairs,

		StepCollectDate:       m.handleDate,
		StepCollectTime:       m.handleTime,
		StepConfirmTime:       m.handleConfirmTime,
		StepSelectAlternative: m.handleAlternativeSelection,

		StepCollectPacking:             m.handlePacking,
		StepCollectSpecialItems:        m.handleSpecialItems,
		StepCollectSpecialInstructions: m.handleSpecialInstructions,
		StepAskProcessExplanation:      m.handleAskProcessExplanation,
		StepExplainProcess:             m.handleAskProcessExplanation,
		StepProvideEstimate:            m.provideEstimate,
		StepConfirmBooking:             m.confirmBooking,

		StepDiscountOffer:   m.handleDiscountOffer,
		StepInHouseEstimate: m.handleInHouseEstimate,

		StepCollectFinalPickupAddress:  m.handleFinalPickupAddress,
		StepConfirmFinalPickupAddress:  m.handleConfirmFinalPickupAddress,
		StepCollectFinalDropoffAddress: m.handleFinalDropoffAddress,
		StepConfirmFinalDropoffAddress: m.handleConfirmFinalDropoffAddress,
		StepConfirmSMSReceived:         m.handleConfirmSMSReceived,
		StepConfirmPhoneForSMS:         m.handleConfirmPhoneForSMS,
		StepCollectPhoneForSMS:         m.handleCollectPhoneForSMS,
	}
	return m
}

// SetClock overrides the time source in tests.
func (m *Machine) SetClock(clock func() time.Time) { m.clock = clock }

// Begin starts an inbound call: look up the caller, speak the greeting,
// and park the session at the greeting step.
func (m *Machine) Begin(ctx context.Context, callID, from string) telephony.Directive {
	customer, found, err := m.store.CustomerByPhone(ctx, from)
	if err != nil {
		m.log.Warn("customer lookup failed", "call_sid", callID, "error", err)
	}

	var greeting string
	if found {
		name := customer.Name
		if name == "" {
			name = "there"
		}
		greeting = fmt.Sprintf(
			"Hi %s, thank you for calling %s again. "+
				"If you'd like to talk to our manager, you can say that at any time. "+
				"How can I help you today?", name, m.cfg.CompanyName)
	} else {
		greeting = fmt.Sprintf(
			"Hi, thank you for calling %s, your best choice for local and long distance moving, "+
				"junk removal and in-home service. If you'd like to talk to our manager, you can say that at any time. "+
				"How can I help you today?", m.cfg.CompanyName)
	}

	s := Session{CallSID: callID, CallerNumber: from, Step: StepGreeting, ReturningCustomer: found}
	m.save(ctx, callID, s)

	return telephony.Prompt{Message: greeting, AllowSpeech: true, AllowDigits: true}
}

// BeginOutbound starts an agent-initiated call to a lead, skipping intent
// discovery straight to name collection.
func (m *Machine) BeginOutbound(ctx context.Context, callID, to string) telephony.Directive {
	s := Session{CallSID: callID, CallerNumber: to, Step: StepCollectName}
	m.save(ctx, callID, s)

	msg := fmt.Sprintf(
		"Hello, this is %s calling about your moving inquiry. "+
			"If you'd like to talk to our manager, press zero at any time. "+
			"I can provide you with an estimate today. What is your full name?", m.cfg.CompanyName)
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true, TimeoutSeconds: 6}
}

// Process runs one conversation turn: interrupts first, then the current
// step's handler, then the session write-back.
func (m *Machine) Process(ctx context.Context, in Input) telephony.Directive {
	s := m.load(ctx, in.CallID)

	// DTMF "0" transfers unconditionally, whatever the step.
	if strings.TrimSpace(in.Digits) == "0" {
		s.TransferPending = true
		m.save(ctx, in.CallID, s)
		return telephony.Transfer{
			Number:     m.cfg.ManagerPhone,
			PreMessage: "Connecting you to our manager now. Please hold.",
		}
	}

	input := selectInput(s.Step, in.Digits, in.Speech)
	m.log.Info("processing turn",
		"call_sid", in.CallID, "step", s.Step,
		"speech", in.Speech, "digits", in.Digits)

	if s.Step != StepConfirmTransfer && containsTransferPhrase(input) {
		s.TransferPrevStep = s.Step
		s.Step = StepConfirmTransfer
		m.save(ctx, in.CallID, s)
		return telephony.Prompt{
			Message:          "Would you like me to transfer you to our manager now?",
			AllowSpeech:      true,
			TimeoutSeconds:   5,
			FallbackMessage:  "I didn't catch that. Should I transfer you to our manager?",
			FallbackRedirect: "/voice/process",
		}
	}

	if s.TransferPending && s.hasTransferEssentials() {
		m.save(ctx, in.CallID, s)
		return telephony.Transfer{
			Number:     m.cfg.ManagerPhone,
			PreMessage: "Thank you. I have your details. I'll transfer you now.",
		}
	}

	h, ok := m.handlers[s.Step]
	if !ok {
		m.log.Warn("no handler for step", "call_sid", in.CallID, "step", s.Step)
		return telephony.Terminate{}
	}
	d := h(ctx, &s, input)
	m.save(ctx, in.CallID, s)
	return d
}

// ManagerTransfer is the directive for the explicit transfer endpoint.
func (m *Machine) ManagerTransfer() telephony.Directive {
	return telephony.Transfer{Number: m.cfg.ManagerPhone, PreMessage: "Transferring you now. Please hold."}
}

// CallEnded handles a terminal status callback: persist whatever partial
// lead exists, send the follow-up text when the caller dropped out
// mid-flow, log the call, and drop the session.
func (m *Machine) CallEnded(ctx context.Context, callID, status, duration string) {
	s, ok, err := m.sessions.Get(ctx, callID)
	if err != nil {
		m.log.Warn("session load failed at call end", "call_sid", callID, "error", err)
	}
	if ok {
		m.savePartialLead(ctx, &s)

		name, hasName := s.Name.Get()
		if status == "completed" && hasName && s.Email == "" && s.BookingID == "" {
			phone := s.confirmedOrCallerPhone()
			if phone != "" {
				msg := fmt.Sprintf(
					"Hi %s, this is USF Moving. We got disconnected. Please reply with your email or call us back at (281) 743-4503 for your moving estimate.", name)
				if _, err := m.sms.SendSMS(ctx, phone, msg); err != nil {
					m.log.Error("follow-up sms failed", "call_sid", callID, "error", err)
				}
			}
		}
	}

	entry := booking.CallLog{
		CallSID:   callID,
		Timestamp: m.clock(),
		Phone:     s.confirmedOrCallerPhone(),
		Direction: "inbound",
		Duration:  duration,
		Status:    status,
		Converted: s.BookingID != "",
	}
	if err := m.store.LogCall(ctx, entry); err != nil {
		m.log.Error("call log failed", "call_sid", callID, "error", err)
	}

	if err := m.sessions.Delete(ctx, callID); err != nil {
		m.log.Warn("session delete failed", "call_sid", callID, "error", err)
	}
}

// selectInput applies the input-mode rule: digit-preferring steps take
// DTMF when present; everything else prefers speech, lowercased for the
// keyword matchers downstream.
func selectInput(step Step, digits, speechText string) string {
	if digitPreferringSteps[step] && digits != "" {
		return digits
	}
	if speechText != "" {
		return strings.ToLower(speechText)
	}
	return digits
}

func containsTransferPhrase(input string) bool {
	if input == "" {
		return false
	}
	for _, p := range nlu.TransferPhrases() {
		if strings.Contains(input, p) {
			return true
		}
	}
	return false
}

// load returns the stored session or a fresh one parked at greeting; a
// lost session must not crash the turn.
func (m *Machine) load(ctx context.Context, callID string) Session {
	s, ok, err := m.sessions.Get(ctx, callID)
	if err != nil {
		m.log.Warn("session load failed", "call_sid", callID, "error", err)
	}
	if !ok {
		return Session{CallSID: callID, Step: StepGreeting}
	}
	return s
}

func (m *Machine) save(ctx context.Context, callID string, s Session) {
	if err := m.sessions.Put(ctx, callID, s); err != nil {
		m.log.Error("session save failed", "call_sid", callID, "error", err)
	}
}

// savePartialLead persists a lead row when at least name and phone exist.
// Best effort; a failed write never surfaces to the caller.
func (m *Machine) savePartialLead(ctx context.Context, s *Session) {
	if !s.hasTransferEssentials() {
		return
	}
	if s.BookingID != "" {
		return // already a full booking row
	}
	if _, err := m.store.SavePartialLead(ctx, s.asBooking()); err != nil {
		m.log.Error("partial lead save failed", "call_sid", s.CallSID, "error", err)
	}
}

// promptForStep re-prompts the essentials-collection steps after a
// transfer confirmation detour.
func (m *Machine) promptForStep(step Step) telephony.Directive {
	prompts := map[Step]string{
		StepCollectName:           "Please tell me your full name.",
		StepCollectPhone:          "Please say or enter your phone number.",
		StepCollectPickupAddress:  "What's the pickup ZIP code? You can say it digit by digit.",
		StepCollectDropoffAddress: "What's the drop-off ZIP code? You can say it digit by digit.",
	}
	msg, ok := prompts[step]
	if !ok {
		msg = "Let's continue."
	}
	return telephony.Prompt{Message: msg, AllowSpeech: true, AllowDigits: true, TimeoutSeconds: 5}
}

func (m *Machine) zipHint() string {
	if !m.cfg.ZipGuidance {
		return ""
	}
	return " Please say five digits like seven-seven-zero-six-three. If zero is part of your ZIP, please say 'zero' instead of pressing 0."
}
