package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain"
)

// ---- fakes ----

type fakeCatalog struct {
	property domain.Property
	rooms    []domain.Room
	avail    []domain.AvailabilityRecord
	rates    []domain.NightlyRate
	allRates []domain.NightlyRate
	promos   []domain.CatalogPromotion

	roomsErr    error
	availErr    error
	ratesErr    error
	allRatesErr error
	promosErr   error
}

func (f *fakeCatalog) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	return f.property, nil
}
func (f *fakeCatalog) ListRooms(ctx context.Context, id int64) ([]domain.Room, error) {
	return f.rooms, f.roomsErr
}
func (f *fakeCatalog) ListAvailability(ctx context.Context, id int64, p domain.Period) ([]domain.AvailabilityRecord, error) {
	return f.avail, f.availErr
}
func (f *fakeCatalog) ListRoomRates(ctx context.Context, ids []int64, p domain.Period) ([]domain.NightlyRate, error) {
	return f.rates, f.ratesErr
}
func (f *fakeCatalog) ListRoomRatesAll(ctx context.Context, id int64) ([]domain.NightlyRate, error) {
	return f.allRates, f.allRatesErr
}
func (f *fakeCatalog) ListPromotions(ctx context.Context) ([]domain.CatalogPromotion, error) {
	return f.promos, f.promosErr
}

type fakeStore struct {
	schedules []domain.PromotionSchedule
	err       error
}

func (f *fakeStore) SchedulesByProperty(ctx context.Context, propertyID int64) ([]domain.PromotionSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PromotionSchedule
	for _, s := range f.schedules {
		if s.PropertyID == propertyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveSchedulesByProperty(ctx context.Context, propertyID int64) ([]domain.PromotionSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PromotionSchedule
	for _, s := range f.schedules {
		if s.PropertyID == propertyID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveOverlapping(ctx context.Context, propertyID int64, period domain.Period) ([]domain.PromotionSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PromotionSchedule
	for _, s := range f.schedules {
		if s.PropertyID == propertyID && s.Active && s.Visible && s.Period.Overlaps(period) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveVisibleOn(ctx context.Context, date time.Time) ([]domain.PromotionSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PromotionSchedule
	for _, s := range f.schedules {
		if s.Active && s.Visible && s.Period.Contains(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ByCode(ctx context.Context, code string, on time.Time) (domain.PromotionSchedule, error) {
	if f.err != nil {
		return domain.PromotionSchedule{}, f.err
	}
	for _, s := range f.schedules {
		if s.PromoCode != nil && *s.PromoCode == code && s.Active && s.Visible && s.Period.Contains(on) {
			return s, nil
		}
	}
	return domain.PromotionSchedule{}, domain.ErrNotFound
}

func (f *fakeStore) UpsertSchedule(ctx context.Context, s domain.PromotionSchedule) (int64, error) {
	f.schedules = append(f.schedules, s)
	return int64(len(f.schedules)), nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- helpers ----

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func span(t *testing.T, start, end string) domain.Period {
	t.Helper()
	return domain.NewPeriod(day(t, start), day(t, end))
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func room(id int64, number string, rt domain.RoomType) domain.Room {
	return domain.Room{ID: id, Number: number, PropertyID: 1, RoomType: rt}
}

func freeOn(t *testing.T, roomID int64, dates ...string) []domain.AvailabilityRecord {
	t.Helper()
	out := make([]domain.AvailabilityRecord, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.AvailabilityRecord{RoomID: roomID, Date: day(t, d)})
	}
	return out
}
