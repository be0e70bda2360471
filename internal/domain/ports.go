package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// CatalogGateway is the read-only query surface over the remote catalog.
type CatalogGateway interface {
	GetProperty(ctx context.Context, propertyID int64) (Property, error)
	ListRooms(ctx context.Context, propertyID int64) ([]Room, error)
	// ListAvailability returns free-room records intersecting the period,
	// with occupied bookings already excluded upstream.
	ListAvailability(ctx context.Context, propertyID int64, period Period) ([]AvailabilityRecord, error)
	ListRoomRates(ctx context.Context, roomTypeIDs []int64, period Period) ([]NightlyRate, error)
	// ListRoomRatesAll returns every rate of the property with no window filter.
	ListRoomRatesAll(ctx context.Context, propertyID int64) ([]NightlyRate, error)
	ListPromotions(ctx context.Context) ([]CatalogPromotion, error)
}

// PromotionStore is the local schedule table.
type PromotionStore interface {
	SchedulesByProperty(ctx context.Context, propertyID int64) ([]PromotionSchedule, error)
	ActiveSchedulesByProperty(ctx context.Context, propertyID int64) ([]PromotionSchedule, error)
	// ActiveOverlapping returns active+visible schedules of the property whose
	// period overlaps the given one.
	ActiveOverlapping(ctx context.Context, propertyID int64, period Period) ([]PromotionSchedule, error)
	ActiveVisibleOn(ctx context.Context, date time.Time) ([]PromotionSchedule, error)
	// ByCode returns the active, visible schedule whose promo code matches and
	// whose period contains the date, or ErrNotFound.
	ByCode(ctx context.Context, code string, on time.Time) (PromotionSchedule, error)
	UpsertSchedule(ctx context.Context, s PromotionSchedule) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Partial carries a value that may rest on incomplete upstream data. A
// degraded sub-query contributes its zero value and sets Degraded, so callers
// can tell "confirmed empty" from "upstream failed"; Cause keeps the first
// failure for logging.
type Partial[T any] struct {
	Value    T
	Degraded bool
	Cause    error
}

func OK[T any](v T) Partial[T] { return Partial[T]{Value: v} }

func Degraded[T any](v T, cause error) Partial[T] {
	return Partial[T]{Value: v, Degraded: true, Cause: cause}
}
