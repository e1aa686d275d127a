package main

import (
	"github.com/gin-gonic/gin"

	"moving-voice-agent/internal/auth"
	"moving-voice-agent/internal/httpapi"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authManager *auth.Manager) {
	r.GET("/healthz", h.Healthz)

	// Twilio webhooks (public).
	// NOTE: protect with Twilio signature validation when exposed directly.
	voice := r.Group("/voice")
	{
		voice.POST("/inbound", h.VoiceInbound)
		voice.POST("/process", h.VoiceProcess)
		voice.POST("/estimate", h.VoiceEstimate)
		voice.POST("/confirm_booking", h.VoiceConfirmBooking)
		voice.POST("/confirm_callback", h.VoiceConfirmCallback)
		voice.GET("/check_time", h.VoiceCheckTime)
		voice.POST("/check_time", h.VoiceCheckTime)
		voice.GET("/check_availability", h.VoiceCheckAvailability)
		voice.POST("/check_availability", h.VoiceCheckAvailability)
		voice.GET("/check_availability2", h.VoiceCheckAvailability2)
		voice.POST("/check_availability2", h.VoiceCheckAvailability2)
		voice.POST("/transfer", h.VoiceTransfer)
		voice.GET("/outbound", h.VoiceOutbound)
		voice.POST("/outbound", h.VoiceOutbound)
		voice.GET("/status", h.VoiceStatus)
		voice.POST("/status", h.VoiceStatus)
	}

	r.POST("/sms/incoming", h.SMSIncoming)

	// Outbound lead dialing is operator-initiated, not a Twilio callback.
	r.POST("/outbound/lead",
		auth.RequireToken(authManager), auth.RequireRole(auth.RoleAdmin), h.OutboundLead)

	// Back-office API.
	v1 := r.Group("/v1")
	v1.Use(auth.RequireToken(authManager))
	{
		v1.GET("/bookings", h.ListBookings)
		v1.GET("/bookings/weekly", h.WeeklyBookingCount)
		v1.GET("/reports/calls", h.CallsReport)
		v1.GET("/reports/bookings", h.BookingsReport)
	}
}
