package app

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain"
)

// PricingComposer joins the property's minimum-rate calendar with the store's
// active schedules to produce per-day discounted prices.
type PricingComposer struct {
	rates      *RateAggregator
	store      domain.PromotionStore
	subTimeout time.Duration
}

func NewPricingComposer(rates *RateAggregator, store domain.PromotionStore, subTimeout time.Duration) *PricingComposer {
	if subTimeout <= 0 {
		subTimeout = 5 * time.Second
	}
	return &PricingComposer{rates: rates, store: store, subTimeout: subTimeout}
}

// DailyRates returns one row per date the catalog has a rate for, ascending
// by date. When an active schedule covers the date, the discounted price is
// minimum * factor rounded half-up to 2 decimals. Overlapping schedules are
// resolved deterministically: latest start date first, then lowest id.
func (p *PricingComposer) DailyRates(ctx context.Context, propertyID int64) domain.Partial[[]domain.DailyRate] {
	minRates := p.rates.MinimumDailyRates(ctx, propertyID)

	var (
		schedules []domain.PromotionSchedule
		storeErr  error
	)
	c, cancel := context.WithTimeout(ctx, p.subTimeout)
	schedules, storeErr = p.store.ActiveSchedulesByProperty(c, propertyID)
	cancel()

	sort.Slice(schedules, func(i, j int) bool {
		si, sj := schedules[i], schedules[j]
		if !si.Period.Start.Equal(sj.Period.Start) {
			return si.Period.Start.After(sj.Period.Start)
		}
		return si.ID < sj.ID
	})

	dates := make([]time.Time, 0, len(minRates.Value))
	for d := range minRates.Value {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	one := decimal.NewFromInt(1)
	out := make([]domain.DailyRate, 0, len(dates))
	for _, d := range dates {
		row := domain.DailyRate{
			Date:        d,
			MinRate:     minRates.Value[d],
			PriceFactor: one,
			Discounted:  minRates.Value[d],
		}
		for _, s := range schedules {
			if !s.Active || !s.Period.Contains(d) {
				continue
			}
			id := s.PromotionID
			row.HasPromo = true
			row.PromotionID = &id
			row.PriceFactor = s.PriceFactor
			row.Discounted = row.MinRate.Mul(s.PriceFactor).Round(2)
			break
		}
		out = append(out, row)
	}

	degradedErr := minRates.Cause
	if degradedErr == nil {
		degradedErr = storeErr
	}
	if minRates.Degraded || storeErr != nil {
		return domain.Degraded(out, degradedErr)
	}
	return domain.OK(out)
}
