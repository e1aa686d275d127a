package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"moving-voice-agent/pkg/utils"
)

// DefaultCacheTTL bounds staleness of per-date booking reads. Callers must
// tolerate a just-booked slot showing available within this window; a human
// confirms every booking afterward.
const DefaultCacheTTL = 60 * time.Second

// CachedStore wraps any Store with a Redis read-through cache on the
// per-date query. Availability checks hit BookingsForDate repeatedly within
// a call and across near-simultaneous calls, so this is the hot path.
type CachedStore struct {
	inner Store
	cache *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedStore(inner Store, cache *redis.Client, ttl time.Duration, log *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedStore{inner: inner, cache: cache, ttl: ttl, log: log}
}

func dateKey(date time.Time) string {
	return "bookings:date:" + date.Format("2006-01-02")
}

func (s *CachedStore) BookingsForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	key := dateKey(date)

	var cached []Booking
	hit, err := utils.CacheGetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.log.Warn("booking cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	fresh, err := s.inner.BookingsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := utils.CacheSetJSON(ctx, s.cache, key, fresh, s.ttl); err != nil {
		s.log.Warn("booking cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}

// Prewarm loads the cache for date and the following days. Best effort;
// called from a background goroutine right after date collection.
func (s *CachedStore) Prewarm(ctx context.Context, date time.Time, days int) {
	for i := 0; i <= days; i++ {
		if _, err := s.BookingsForDate(ctx, date.AddDate(0, 0, i)); err != nil {
			s.log.Warn("booking cache prewarm failed", "date", date.AddDate(0, 0, i).Format("2006-01-02"), "error", err)
		}
	}
}

func (s *CachedStore) invalidate(ctx context.Context, date time.Time) {
	if date.IsZero() {
		return
	}
	if err := s.cache.Del(ctx, dateKey(date)).Err(); err != nil {
		s.log.Warn("booking cache invalidate failed", "date", date.Format("2006-01-02"), "error", err)
	}
}

func (s *CachedStore) CountWeeklyBookings(ctx context.Context, weekStart time.Time) (int, error) {
	return s.inner.CountWeeklyBookings(ctx, weekStart)
}

func (s *CachedStore) SaveBooking(ctx context.Context, b Booking) (string, error) {
	id, err := s.inner.SaveBooking(ctx, b)
	if err == nil {
		s.invalidate(ctx, b.MoveDate)
	}
	return id, err
}

func (s *CachedStore) SavePartialLead(ctx context.Context, b Booking) (string, error) {
	id, err := s.inner.SavePartialLead(ctx, b)
	if err == nil {
		s.invalidate(ctx, b.MoveDate)
	}
	return id, err
}

func (s *CachedStore) CustomerByPhone(ctx context.Context, phone string) (Customer, bool, error) {
	return s.inner.CustomerByPhone(ctx, phone)
}

func (s *CachedStore) UpdateLatestBookingAddresses(ctx context.Context, phone, pickupAddress, dropoffAddress string) (Booking, bool, error) {
	return s.inner.UpdateLatestBookingAddresses(ctx, phone, pickupAddress, dropoffAddress)
}

func (s *CachedStore) LogCall(ctx context.Context, entry CallLog) error {
	return s.inner.LogCall(ctx, entry)
}

func (s *CachedStore) CallsBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	return s.inner.CallsBetween(ctx, from, to)
}
