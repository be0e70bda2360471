package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

// StaySearchResult is the service-facing answer to an available-rooms query.
// The degraded flags let callers tell "no eligible rooms" from "a source was
// temporarily unavailable".
type StaySearchResult struct {
	Options              []domain.RoomTypeOption
	AvailabilityDegraded bool
	PricingDegraded      bool
}

// QueryService composes the matcher, aggregator, engine and composer behind
// the read API the controllers consume.
type QueryService struct {
	matcher  *AvailabilityMatcher
	rates    *RateAggregator
	promos   *PromotionEngine
	pricing  *PricingComposer
	store    domain.PromotionStore
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewQueryService(
	matcher *AvailabilityMatcher,
	rates *RateAggregator,
	promos *PromotionEngine,
	pricing *PricingComposer,
	store domain.PromotionStore,
	cache domain.Cache,
	ttl time.Duration,
) *QueryService {
	return &QueryService{
		matcher:  matcher,
		rates:    rates,
		promos:   promos,
		pricing:  pricing,
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// SearchStays finds room types that can host the stay and prices them.
// Options are sorted ascending by average nightly price; unpriced options
// (pricing degraded) sort last by room type id.
func (s *QueryService) SearchStays(
	ctx context.Context,
	propertyID int64,
	stay domain.Period,
	guests, rooms int,
) (StaySearchResult, error) {
	matched, err := s.matcher.FindAvailableRoomTypes(ctx, propertyID, stay, guests, rooms)
	if err != nil {
		return StaySearchResult{}, err
	}
	res := StaySearchResult{
		Options:              matched.Value,
		AvailabilityDegraded: matched.Degraded,
	}
	if matched.Degraded {
		log.Warn().Int64("property", propertyID).Err(matched.Cause).Msg("availability degraded")
	}
	if len(res.Options) == 0 {
		return res, nil
	}

	ids := make([]int64, 0, len(res.Options))
	for _, o := range res.Options {
		ids = append(ids, o.RoomType.ID)
	}
	avg := s.rates.AverageRates(ctx, ids, stay)
	if avg.Degraded {
		res.PricingDegraded = true
		log.Warn().Int64("property", propertyID).Err(avg.Cause).Msg("pricing degraded")
	}
	for i := range res.Options {
		if rate, ok := avg.Value[res.Options[i].RoomType.ID]; ok {
			r := rate
			res.Options[i].AvgNightly = &r
		}
	}

	sort.SliceStable(res.Options, func(i, j int) bool {
		a, b := res.Options[i].AvgNightly, res.Options[j].AvgNightly
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.LessThan(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return res.Options[i].RoomType.ID < res.Options[j].RoomType.ID
	})
	return res, nil
}

// RateCalendar returns the property's per-day rate/promotion rows, cached
// under a short TTL. Degraded computations are served but never cached.
func (s *QueryService) RateCalendar(ctx context.Context, propertyID int64) (domain.Partial[[]domain.DailyRate], error) {
	if propertyID <= 0 {
		return domain.Partial[[]domain.DailyRate]{}, fmt.Errorf("property id must be positive: %w", domain.ErrInvalidInput)
	}
	key := fmt.Sprintf("ratecal:%d", propertyID)
	var cached []domain.DailyRate
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return domain.OK(cached), nil
	}

	out := s.pricing.DailyRates(ctx, propertyID)
	if out.Degraded {
		log.Warn().Int64("property", propertyID).Err(out.Cause).Msg("rate calendar degraded")
		return out, nil
	}
	_ = s.cache.Set(ctx, key, out.Value, int(s.cacheTTL.Seconds()))
	return out, nil
}

// EligiblePromotions answers the promotion query for a stay; propertyID may
// be zero for catalog-only evaluation.
func (s *QueryService) EligiblePromotions(
	ctx context.Context,
	propertyID int64,
	criteria domain.EligibilityCriteria,
) (domain.Partial[[]domain.MergedPromotion], error) {
	return s.promos.EligiblePromotions(ctx, propertyID, criteria)
}

// ValidatePromoCode resolves a code to its schedule when the code is active,
// visible and today falls inside its window; otherwise domain.ErrNotFound.
func (s *QueryService) ValidatePromoCode(ctx context.Context, code string) (domain.PromotionSchedule, error) {
	if code == "" {
		return domain.PromotionSchedule{}, fmt.Errorf("empty promo code: %w", domain.ErrInvalidInput)
	}
	return s.store.ByCode(ctx, code, domain.Day(s.now()))
}
