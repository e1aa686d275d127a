package reporting

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"moving-voice-agent/internal/booking"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// BookingsSummary walks the range day by day, so cap it to keep a single
// request from scanning a year of rows.
const maxRangeDays = 92

// Repository abstracts data access for reporting.
//
// Implementations should query immutable sources (call logs, saved bookings).
// booking.Store satisfies this interface.
type Repository interface {
	CallsBetween(ctx context.Context, from, to time.Time) ([]booking.CallLog, error)
	BookingsForDate(ctx context.Context, date time.Time) ([]booking.Booking, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if err := validateRange(req.Range); err != nil {
		return CallsSummary{}, err
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.CallsBetween(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	var out CallsSummary
	for _, c := range rows {
		out.TotalCalls++
		switch strings.ToLower(c.Direction) {
		case "outbound":
			out.OutboundCalls++
		default:
			out.InboundCalls++
		}
		// Twilio posts CallDuration as a string of seconds.
		if secs, err := strconv.Atoi(c.Duration); err == nil {
			out.TotalDurationSeconds += secs
		}
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		if c.Converted {
			out.ConvertedCalls++
		}
		switch c.Status {
		case "completed":
			out.CompletedCalls++
		case "failed":
			out.FailedCalls++
		case "no-answer":
			out.NoAnswerCalls++
		case "busy":
			out.BusyCalls++
		case "canceled":
			out.CanceledCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
		out.ConversionRate = float64(out.ConvertedCalls) / float64(out.TotalCalls)
	}
	return out, nil
}

// BookingsSummary aggregates bookings whose move date falls in the range.
func (s *Service) BookingsSummary(ctx context.Context, req BookingsSummaryRequest) (BookingsSummary, error) {
	if err := validateRange(req.Range); err != nil {
		return BookingsSummary{}, err
	}
	if s.repo == nil {
		return BookingsSummary{}, errors.New("reporting: repository not configured")
	}

	var out BookingsSummary
	for day := req.Range.From; day.Before(req.Range.To); day = day.AddDate(0, 0, 1) {
		rows, err := s.repo.BookingsForDate(ctx, day)
		if err != nil {
			return BookingsSummary{}, err
		}
		for _, b := range rows {
			out.TotalBookings++
			switch b.Status {
			case booking.StatusConfirmed:
				out.ConfirmedBookings++
				out.TotalEstimatedRevenue += b.TotalEstimate
			case booking.StatusCallbackLongDistance:
				out.LongDistanceCallbacks++
			case booking.StatusInHouseEstimate:
				out.InHouseEstimates++
			case booking.StatusTransferDiscount:
				out.DiscountTransfers++
			case booking.StatusDeclined:
				out.DeclinedBookings++
			case booking.StatusIncomplete:
				out.IncompleteLeads++
			}
		}
	}
	return out, nil
}

func validateRange(r TimeRange) error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	if r.To.Sub(r.From) > maxRangeDays*24*time.Hour {
		return ErrInvalidRequest
	}
	return nil
}
