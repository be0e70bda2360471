package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain"
)

// RateAggregator reduces the catalog's nightly rates to the figures the
// engine works with: per-stay averages and a property-wide minimum calendar.
type RateAggregator struct {
	catalog    domain.CatalogGateway
	subTimeout time.Duration
}

func NewRateAggregator(c domain.CatalogGateway, subTimeout time.Duration) *RateAggregator {
	if subTimeout <= 0 {
		subTimeout = 5 * time.Second
	}
	return &RateAggregator{catalog: c, subTimeout: subTimeout}
}

// AverageRates computes, per room type, the arithmetic mean of nightly rates
// dated within the stay, truncated to whole currency units. A failed catalog
// call degrades to an empty map.
func (a *RateAggregator) AverageRates(
	ctx context.Context,
	roomTypeIDs []int64,
	stay domain.Period,
) domain.Partial[map[int64]decimal.Decimal] {
	out := make(map[int64]decimal.Decimal, len(roomTypeIDs))
	if len(roomTypeIDs) == 0 {
		return domain.OK(out)
	}

	c, cancel := context.WithTimeout(ctx, a.subTimeout)
	defer cancel()
	rates, err := a.catalog.ListRoomRates(c, roomTypeIDs, stay)
	if err != nil {
		return domain.Degraded(out, err)
	}

	sums := make(map[int64]decimal.Decimal, len(roomTypeIDs))
	counts := make(map[int64]int64, len(roomTypeIDs))
	for _, r := range rates {
		if !stay.Contains(r.Date) {
			continue
		}
		sums[r.RoomTypeID] = sums[r.RoomTypeID].Add(r.Rate)
		counts[r.RoomTypeID]++
	}
	for id, n := range counts {
		out[id] = sums[id].Div(decimal.NewFromInt(n)).Truncate(0)
	}
	return domain.OK(out)
}

// MinimumDailyRates returns the minimum nightly rate per date across every
// room type and date the catalog knows for the property. No window filter;
// this backs the rate-calendar view.
func (a *RateAggregator) MinimumDailyRates(
	ctx context.Context,
	propertyID int64,
) domain.Partial[map[time.Time]decimal.Decimal] {
	out := make(map[time.Time]decimal.Decimal)

	c, cancel := context.WithTimeout(ctx, a.subTimeout)
	defer cancel()
	rates, err := a.catalog.ListRoomRatesAll(c, propertyID)
	if err != nil {
		return domain.Degraded(out, err)
	}

	for _, r := range rates {
		d := domain.Day(r.Date)
		cur, ok := out[d]
		if !ok || r.Rate.LessThan(cur) {
			out[d] = r.Rate
		}
	}
	return domain.OK(out)
}
