package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moving-voice-agent/internal/audit"
	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/dialogue"
	"moving-voice-agent/internal/notify"
	"moving-voice-agent/internal/reporting"
	"moving-voice-agent/internal/telephony"

	"moving-voice-agent/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return
// TwiML or JSON.
type Handlers struct {
	Machine *dialogue.Machine
	Store   booking.Store
	SMS     notify.SMSSender
	Caller  *telephony.Caller
	Gather  telephony.GatherConfig
	Reports *reporting.Service
	Audit   *audit.Service

	// VoiceURL and StatusURL are the public webhook endpoints handed to
	// Twilio when creating outbound calls.
	VoiceURL  string
	StatusURL string

	ManagerPhone string
}

const twimlContentType = "application/xml"

// fallbackTwiML is served when rendering fails; the call must always get
// valid TwiML back.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Say>We're sorry, something went wrong. Please call us back.</Say>
  <Hangup></Hangup>
</Response>`

func (h Handlers) respond(c *gin.Context, d telephony.Directive) {
	xml, err := telephony.RenderTwiML(d, h.Gather)
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "error", err)
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	c.Data(http.StatusOK, twimlContentType, []byte(xml))
}

// callSID accepts the identifier from form or query so the handler works
// for both POSTed webhooks and GET redirects.
func callSID(c *gin.Context) string {
	if v := c.PostForm("CallSid"); v != "" {
		return v
	}
	return c.Query("CallSid")
}

// --- Voice webhooks ---

func (h Handlers) VoiceInbound(c *gin.Context) {
	form, err := telephony.ParseInbound(c.Request)
	if err != nil || form.CallSID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	logger.FromGin(c).Info("inbound call", "call_sid", form.CallSID, "from", form.From)
	h.respond(c, h.Machine.Begin(c.Request.Context(), form.CallSID, form.From))
}

func (h Handlers) VoiceProcess(c *gin.Context) {
	form, err := telephony.ParseInbound(c.Request)
	if err != nil || form.CallSID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.Process(c.Request.Context(), dialogue.Input{
		CallID: form.CallSID,
		Digits: form.Digits,
		Speech: form.SpeechResult,
	}))
}

func (h Handlers) VoiceEstimate(c *gin.Context) {
	sid := callSID(c)
	if sid == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.Estimate(c.Request.Context(), sid))
}

func (h Handlers) VoiceConfirmBooking(c *gin.Context) {
	form, err := telephony.ParseInbound(c.Request)
	if err != nil || form.CallSID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.ConfirmBooking(c.Request.Context(), form.CallSID, form.SpeechResult))
}

func (h Handlers) VoiceConfirmCallback(c *gin.Context) {
	form, err := telephony.ParseInbound(c.Request)
	if err != nil || form.CallSID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.ConfirmCallback(c.Request.Context(), form.CallSID, form.SpeechResult))
}

// The availability check runs as three short redirect stages so the caller
// hears progress instead of dead air.

func (h Handlers) VoiceCheckTime(c *gin.Context) {
	sid := callSID(c)
	if sid == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.CheckTime(c.Request.Context(), sid))
}

func (h Handlers) VoiceCheckAvailability(c *gin.Context) {
	h.respond(c, h.Machine.AvailabilityKeepAlive())
}

func (h Handlers) VoiceCheckAvailability2(c *gin.Context) {
	sid := callSID(c)
	if sid == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.FinishAvailability(c.Request.Context(), sid))
}

func (h Handlers) VoiceTransfer(c *gin.Context) {
	h.respond(c, h.Machine.ManagerTransfer())
}

// --- Outbound calling ---

type outboundLeadRequest struct {
	Phone  string `json:"phone"`
	Record bool   `json:"record,omitempty"`
}

// OutboundLead starts an agent-initiated call to a lead. Admin only.
func (h Handlers) OutboundLead(c *gin.Context) {
	if h.Caller == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "outbound calling not configured"})
		return
	}
	var req outboundLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone required"})
		return
	}

	sid, err := h.Caller.CreateCall(c.Request.Context(), telephony.OutboundCallRequest{
		To:                req.Phone,
		VoiceURL:          h.VoiceURL,
		StatusCallbackURL: h.StatusURL,
		Record:            req.Record,
	})
	if err != nil {
		logger.FromGin(c).Error("outbound call failed", "to", req.Phone, "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "call creation failed"})
		return
	}
	if h.Audit != nil {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("role")
		err := h.Audit.LogOutboundDial(c.Request.Context(),
			asString(userID), asString(role), c.ClientIP(), req.Phone, sid)
		if err != nil {
			logger.FromGin(c).Warn("audit append failed", "error", err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"call_sid": sid})
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// VoiceOutbound is the first webhook of a call this service created.
func (h Handlers) VoiceOutbound(c *gin.Context) {
	form, err := telephony.ParseInbound(c.Request)
	if err != nil || form.CallSID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(fallbackTwiML))
		return
	}
	h.respond(c, h.Machine.BeginOutbound(c.Request.Context(), form.CallSID, form.To))
}

// --- Status callbacks ---

var terminalCallStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

func (h Handlers) VoiceStatus(c *gin.Context) {
	form, err := telephony.ParseStatus(c.Request)
	if err != nil || form.CallSID == "" {
		c.Status(http.StatusOK)
		return
	}
	if terminalCallStatuses[form.CallStatus] {
		h.Machine.CallEnded(c.Request.Context(), form.CallSID, form.CallStatus, form.CallDuration)
	}
	c.Status(http.StatusOK)
}

// --- Incoming SMS ---

const smsFormatReply = "To add your move addresses, reply with two lines:\n" +
	"From: <full pickup address>\n" +
	"To: <full drop-off address>"

// SMSIncoming patches the caller's latest booking with full addresses sent
// by text after the call.
func (h Handlers) SMSIncoming(c *gin.Context) {
	form, err := telephony.ParseSMS(c.Request)
	if err != nil || form.From == "" {
		c.Status(http.StatusOK)
		return
	}
	log := logger.FromGin(c)

	pickup, dropoff := parseAddressLines(form.Body)
	if pickup == "" || dropoff == "" {
		h.replySMS(c, smsFormatReply)
		return
	}

	b, found, err := h.Store.UpdateLatestBookingAddresses(c.Request.Context(), form.From, pickup, dropoff)
	if err != nil || !found {
		if err != nil {
			log.Error("address update failed", "from", form.From, "error", err)
		}
		h.replySMS(c, "We couldn't find a recent booking for this number. Please call us at (281) 743-4503.")
		return
	}

	if h.SMS != nil && h.ManagerPhone != "" {
		body := "Addresses updated for booking " + b.ID + "\nPickup: " + pickup + "\nDrop-off: " + dropoff
		if _, err := h.SMS.SendSMS(c.Request.Context(), h.ManagerPhone, body); err != nil {
			log.Warn("manager address notification failed", "error", err)
		}
	}
	h.replySMS(c, "Thank you! Your addresses have been added to your booking. Our crew will see the update.")
}

func (h Handlers) replySMS(c *gin.Context, body string) {
	xml, err := telephony.RenderSMSReply(body)
	if err != nil {
		logger.FromGin(c).Error("sms reply render failed", "error", err)
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, twimlContentType, []byte(xml))
}

// parseAddressLines pulls "From:" and "To:" lines out of a message body.
func parseAddressLines(body string) (pickup, dropoff string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "from:"):
			pickup = strings.TrimSpace(line[len("from:"):])
		case strings.HasPrefix(lower, "to:"):
			dropoff = strings.TrimSpace(line[len("to:"):])
		}
	}
	return pickup, dropoff
}

// --- Admin API ---

func (h Handlers) ListBookings(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date query parameter required (YYYY-MM-DD)"})
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	bookings, err := h.Store.BookingsForDate(c.Request.Context(), date)
	if err != nil {
		logger.FromGin(c).Error("bookings lookup failed", "date", raw, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": raw, "bookings": bookings})
}

func (h Handlers) WeeklyBookingCount(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("start"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "start query parameter required (YYYY-MM-DD)"})
		return
	}
	start, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}

	n, err := h.Store.CountWeeklyBookings(c.Request.Context(), start)
	if err != nil {
		logger.FromGin(c).Error("weekly count failed", "start", raw, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"week_start": raw, "count": n})
}

// reportRange parses from/to query parameters. A missing "to" defaults to
// the end of the "from" day so single-day reports only need one parameter.
func reportRange(c *gin.Context) (reporting.TimeRange, bool) {
	rawFrom := strings.TrimSpace(c.Query("from"))
	if rawFrom == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from query parameter required (YYYY-MM-DD)"})
		return reporting.TimeRange{}, false
	}
	from, err := time.Parse("2006-01-02", rawFrom)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return reporting.TimeRange{}, false
	}

	to := from.AddDate(0, 0, 1)
	if rawTo := strings.TrimSpace(c.Query("to")); rawTo != "" {
		to, err = time.Parse("2006-01-02", rawTo)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return reporting.TimeRange{}, false
		}
		// "to" is inclusive on the API; the service range end is exclusive.
		to = to.AddDate(0, 0, 1)
	}
	return reporting.TimeRange{From: from, To: to}, true
}

func (h Handlers) CallsReport(c *gin.Context) {
	r, ok := reportRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{Range: r})
	if err == reporting.ErrInvalidRequest {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("calls report failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h Handlers) BookingsReport(c *gin.Context) {
	r, ok := reportRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.BookingsSummary(c.Request.Context(), reporting.BookingsSummaryRequest{Range: r})
	if err == reporting.ErrInvalidRequest {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("bookings report failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
