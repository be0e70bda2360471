package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func TestAverageRates_TruncatingMean(t *testing.T) {
	cat := &fakeCatalog{
		rates: []domain.NightlyRate{
			{RoomTypeID: 1, Date: day(t, "2024-06-01"), Rate: dec(t, "100.00")},
			{RoomTypeID: 1, Date: day(t, "2024-06-02"), Rate: dec(t, "105.00")},
			{RoomTypeID: 1, Date: day(t, "2024-06-03"), Rate: dec(t, "100.00")},
			{RoomTypeID: 2, Date: day(t, "2024-06-01"), Rate: dec(t, "80.50")},
			// outside the stay window, must be ignored
			{RoomTypeID: 2, Date: day(t, "2024-07-01"), Rate: dec(t, "500.00")},
		},
	}
	a := app.NewRateAggregator(cat, time.Second)

	res := a.AverageRates(context.Background(), []int64{1, 2}, span(t, "2024-06-01", "2024-06-03"))
	if res.Degraded {
		t.Fatalf("unexpected degraded: %v", res.Cause)
	}
	// (100+105+100)/3 = 101.66.. -> 101 truncated
	if got := res.Value[1]; !got.Equal(dec(t, "101")) {
		t.Fatalf("room type 1 avg = %s, want 101", got)
	}
	if got := res.Value[2]; !got.Equal(dec(t, "80")) {
		t.Fatalf("room type 2 avg = %s, want 80", got)
	}
}

func TestAverageRates_EmptyOnFailure(t *testing.T) {
	cat := &fakeCatalog{ratesErr: errors.New("catalog down")}
	a := app.NewRateAggregator(cat, time.Second)

	res := a.AverageRates(context.Background(), []int64{1}, span(t, "2024-06-01", "2024-06-03"))
	if !res.Degraded || len(res.Value) != 0 {
		t.Fatalf("expected degraded empty map, got %+v", res)
	}
}

func TestMinimumDailyRates(t *testing.T) {
	cat := &fakeCatalog{
		allRates: []domain.NightlyRate{
			{RoomTypeID: 1, Date: day(t, "2024-06-01"), Rate: dec(t, "120.00")},
			{RoomTypeID: 2, Date: day(t, "2024-06-01"), Rate: dec(t, "95.00")},
			{RoomTypeID: 1, Date: day(t, "2024-06-02"), Rate: dec(t, "110.00")},
		},
	}
	a := app.NewRateAggregator(cat, time.Second)

	res := a.MinimumDailyRates(context.Background(), 1)
	if res.Degraded {
		t.Fatalf("unexpected degraded: %v", res.Cause)
	}
	if len(res.Value) != 2 {
		t.Fatalf("expected 2 dates, got %+v", res.Value)
	}
	if got := res.Value[day(t, "2024-06-01")]; !got.Equal(dec(t, "95.00")) {
		t.Fatalf("min for 06-01 = %s, want 95.00", got)
	}
	if got := res.Value[day(t, "2024-06-02")]; !got.Equal(dec(t, "110.00")) {
		t.Fatalf("min for 06-02 = %s, want 110.00", got)
	}
}

func TestMinimumDailyRates_EmptyOnFailure(t *testing.T) {
	cat := &fakeCatalog{allRatesErr: errors.New("catalog down")}
	a := app.NewRateAggregator(cat, time.Second)

	res := a.MinimumDailyRates(context.Background(), 1)
	if !res.Degraded || len(res.Value) != 0 {
		t.Fatalf("expected degraded empty map, got %+v", res)
	}
}
