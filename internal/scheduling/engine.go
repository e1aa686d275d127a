// Package scheduling decides whether a requested slot fits the crew
// calendar and searches forward for alternatives when it does not.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"moving-voice-agent/internal/booking"
)

// BookingSource is the slice of the booking store the engine reads.
type BookingSource interface {
	BookingsForDate(ctx context.Context, date time.Time) ([]booking.Booking, error)
}

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	// WorkStart/WorkEnd bound the working day on a 24h scale.
	WorkStart int
	WorkEnd   int
	// DefaultBookingHours is assumed for existing bookings without an
	// explicit duration.
	DefaultBookingHours int
	// MorningJobCapacity is how many morning jobs a day can absorb before
	// same-day alternatives skip to the afternoon.
	MorningJobCapacity int
	// MaxAlternatives caps the slots offered to a caller.
	MaxAlternatives int
	// OfficePhone appears in the no-availability fallback message.
	OfficePhone string
}

func (c Config) withDefaults() Config {
	if c.WorkStart <= 0 {
		c.WorkStart = 9
	}
	if c.WorkEnd <= 0 {
		c.WorkEnd = 18
	}
	if c.DefaultBookingHours <= 0 {
		c.DefaultBookingHours = 3
	}
	if c.MorningJobCapacity <= 0 {
		c.MorningJobCapacity = 1
	}
	if c.MaxAlternatives <= 0 {
		c.MaxAlternatives = 3
	}
	if c.OfficePhone == "" {
		c.OfficePhone = "(281) 743-4503"
	}
	return c
}

// TimeSlot is a candidate interval offered to the caller. DayName is set
// for days beyond the requested date.
type TimeSlot struct {
	Date    time.Time `json:"date"`
	Hour    int       `json:"hour"`
	Time    string    `json:"time"`
	Window  string    `json:"window"`
	DayName string    `json:"day_name,omitempty"`
}

// Availability is the result of a slot check. When Available is false,
// Alternatives carries up to MaxAlternatives candidate slots.
type Availability struct {
	Available    bool
	Date         time.Time
	Hour         int
	Time         string
	Window       string
	Message      string
	Alternatives []TimeSlot
}

type Engine struct {
	cfg   Config
	store BookingSource
	log   *slog.Logger
}

func NewEngine(cfg Config, store BookingSource, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg.withDefaults(), store: store, log: log}
}

var clockPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?`)

// ParseTimeToHour resolves a caller-facing time phrase to an anchor hour on
// the 24h scale. Vague terms map to fixed anchors so availability math is
// deterministic; the display label is formatted separately.
func ParseTimeToHour(input string) int {
	t := strings.ToLower(strings.TrimSpace(input))
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, "p m", "pm")
	t = strings.ReplaceAll(t, "a m", "am")

	switch {
	case strings.Contains(t, "morning"), strings.Contains(t, "early"):
		return 8
	case strings.Contains(t, "afternoon"), strings.Contains(t, "noon"):
		return 13
	case strings.Contains(t, "evening"), strings.Contains(t, "late"):
		return 16
	case strings.Contains(t, "flexible"):
		return 10
	}

	m := clockPattern.FindStringSubmatch(t)
	if m == nil {
		return 10
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return 10
	}
	switch {
	case strings.Contains(t, "pm"):
		if hour < 12 {
			hour += 12
		}
	case strings.Contains(t, "am"):
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// HourLabel renders an hour as a single time point, e.g. 13 -> "1 PM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

// WindowLabel renders the arrival window: one hour before noon, two hours
// at or after, e.g. "9-10 AM" or "1-3 PM".
func WindowLabel(hour int) string {
	if hour < 12 {
		end := hour + 1
		if end > 11 {
			return "11-12 AM"
		}
		return fmt.Sprintf("%d-%d AM", hour, end)
	}
	fmtPM := func(h int) string {
		if h == 12 {
			return "12"
		}
		return strconv.Itoa(h - 12)
	}
	return fmt.Sprintf("%s-%s PM", fmtPM(hour), fmtPM(hour+2))
}

// slotFits reports whether [startHour, startHour+duration) stays inside
// working hours and avoids every existing booking on the date. Bookings
// carry their time as a caller-facing label, so each is re-anchored through
// ParseTimeToHour with the default block length.
func (e *Engine) slotFits(startHour, durationHours int, existing []booking.Booking) bool {
	endHour := startHour + durationHours
	if startHour < e.cfg.WorkStart || endHour > e.cfg.WorkEnd {
		return false
	}
	for _, b := range existing {
		bStart := ParseTimeToHour(b.MoveTime)
		bEnd := bStart + e.cfg.DefaultBookingHours
		if !(endHour <= bStart || startHour >= bEnd) {
			return false
		}
	}
	return true
}

// CheckAvailability resolves the preferred label to an hour, tests the slot
// against that date's bookings, and searches for alternatives on conflict.
// Store failures degrade to unavailable with a generic apology; an
// availability check must never crash the call.
func (e *Engine) CheckAvailability(ctx context.Context, date time.Time, preferredTime string, estimatedDurationHours float64) Availability {
	hour := ParseTimeToHour(preferredTime)
	duration := int(math.Ceil(estimatedDurationHours))
	if duration <= 0 {
		duration = e.cfg.DefaultBookingHours
	}

	existing, err := e.store.BookingsForDate(ctx, date)
	if err != nil {
		e.log.Error("availability lookup failed", "date", date.Format("2006-01-02"), "error", err)
		return Availability{
			Available: false,
			Message:   "Unable to check availability at this time.",
		}
	}

	if e.slotFits(hour, duration, existing) {
		windowHours := 2
		if hour < 12 {
			windowHours = 1
		}
		return Availability{
			Available: true,
			Date:      date,
			Hour:      hour,
			Time:      HourLabel(hour),
			Window:    WindowLabel(hour),
			Message: fmt.Sprintf("Great! We have availability on %s at %s with a %d-hour window (%s).",
				date.Format("January 2, 2006"), HourLabel(hour), windowHours, WindowLabel(hour)),
		}
	}

	return Availability{
		Available:    false,
		Date:         date,
		Hour:         hour,
		Time:         HourLabel(hour),
		Alternatives: e.FindAlternatives(ctx, date, duration, existing),
		Message: fmt.Sprintf("I'm sorry, we're booked at %s on %s.",
			HourLabel(hour), date.Format("January 2, 2006")),
	}
}

// FindAlternatives greedily scans the requested date and then the next 7
// days for open slots. When the date has already reached its morning job
// capacity, the same-day scan starts at 1 PM to funnel callers into the
// afternoon window. Results keep scan order: earlier hour first, then
// earlier day.
func (e *Engine) FindAlternatives(ctx context.Context, date time.Time, durationHours int, existing []booking.Booking) []TimeSlot {
	if durationHours <= 0 {
		durationHours = e.cfg.DefaultBookingHours
	}

	morning := 0
	for _, b := range existing {
		if ParseTimeToHour(b.MoveTime) < 12 {
			morning++
		}
	}
	startHour := e.cfg.WorkStart
	if morning >= e.cfg.MorningJobCapacity {
		startHour = 13
	}

	var out []TimeSlot
	for hour := startHour; hour <= e.cfg.WorkEnd-durationHours; hour++ {
		if e.slotFits(hour, durationHours, existing) {
			out = append(out, TimeSlot{
				Date:   date,
				Hour:   hour,
				Time:   HourLabel(hour),
				Window: WindowLabel(hour),
			})
			if len(out) >= e.cfg.MaxAlternatives {
				return out
			}
		}
	}

	for offset := 1; offset <= 7; offset++ {
		day := date.AddDate(0, 0, offset)
		dayBookings, err := e.store.BookingsForDate(ctx, day)
		if err != nil {
			e.log.Warn("alternative scan skipped day", "date", day.Format("2006-01-02"), "error", err)
			continue
		}
		for hour := e.cfg.WorkStart; hour <= e.cfg.WorkEnd-durationHours; hour++ {
			if e.slotFits(hour, durationHours, dayBookings) {
				out = append(out, TimeSlot{
					Date:    day,
					Hour:    hour,
					Time:    HourLabel(hour),
					Window:  WindowLabel(hour),
					DayName: day.Weekday().String(),
				})
				if len(out) >= e.cfg.MaxAlternatives {
					return out
				}
			}
		}
	}
	return out
}

// FormatAlternatives builds the spoken listing of candidate slots.
func (e *Engine) FormatAlternatives(alternatives []TimeSlot) string {
	if len(alternatives) == 0 {
		return fmt.Sprintf("Unfortunately, we don't have availability in the next week. Please call our office at %s for scheduling.", e.cfg.OfficePhone)
	}

	var b strings.Builder
	b.WriteString("However, we do have availability at these times: ")
	limit := len(alternatives)
	if limit > e.cfg.MaxAlternatives {
		limit = e.cfg.MaxAlternatives
	}
	for i := 0; i < limit; i++ {
		alt := alternatives[i]
		if i > 0 {
			b.WriteString(", or ")
		}
		dayName := alt.DayName
		if dayName == "" {
			dayName = alt.Date.Weekday().String()
		}
		fmt.Fprintf(&b, "%s %s at %s with a window of %s",
			dayName, alt.Date.Format("January 2"), alt.Time, alt.Window)
	}
	b.WriteString(". Which of these works best for you?")
	return b.String()
}
