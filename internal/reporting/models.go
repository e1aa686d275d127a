package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics.

type CallsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type CallsSummary struct {
	TotalCalls    int `json:"total_calls"`
	InboundCalls  int `json:"inbound_calls"`
	OutboundCalls int `json:"outbound_calls"`

	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	BusyCalls      int `json:"busy_calls"`
	CanceledCalls  int `json:"canceled_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls  int `json:"recorded_calls"`
	ConvertedCalls int `json:"converted_calls"`

	ConversionRate float64 `json:"conversion_rate"`
}

// BookingsSummaryRequest requests aggregated booking outcomes.

type BookingsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type BookingsSummary struct {
	TotalBookings     int `json:"total_bookings"`
	ConfirmedBookings int `json:"confirmed_bookings"`

	LongDistanceCallbacks int `json:"long_distance_callbacks"`
	InHouseEstimates      int `json:"in_house_estimates"`
	DiscountTransfers     int `json:"discount_transfers"`
	DeclinedBookings      int `json:"declined_bookings"`
	IncompleteLeads       int `json:"incomplete_leads"`

	TotalEstimatedRevenue float64 `json:"total_estimated_revenue"`
}
