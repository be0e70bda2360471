package app

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"staybook/internal/domain"
)

// PromotionEngine merges catalog and store promotions and filters them by
// per-stay eligibility. Store schedules win identity conflicts.
type PromotionEngine struct {
	catalog    domain.CatalogGateway
	store      domain.PromotionStore
	rules      *RuleRegistry
	subTimeout time.Duration
}

func NewPromotionEngine(c domain.CatalogGateway, s domain.PromotionStore, rules *RuleRegistry, subTimeout time.Duration) *PromotionEngine {
	if rules == nil {
		rules = NewRuleRegistry()
	}
	if subTimeout <= 0 {
		subTimeout = 5 * time.Second
	}
	return &PromotionEngine{catalog: c, store: s, rules: rules, subTimeout: subTimeout}
}

// EligiblePromotions fetches both sources concurrently, merges them with
// store precedence, and keeps the promotions the stay qualifies for. With
// propertyID <= 0 only the global catalog is consulted. Either source
// failing degrades that source to empty instead of erroring.
func (e *PromotionEngine) EligiblePromotions(
	ctx context.Context,
	propertyID int64,
	criteria domain.EligibilityCriteria,
) (domain.Partial[[]domain.MergedPromotion], error) {
	var empty domain.Partial[[]domain.MergedPromotion]
	if !criteria.Stay.Valid() {
		return empty, domain.ErrInvalidInput
	}

	var (
		catalogPromos []domain.CatalogPromotion
		schedules     []domain.PromotionSchedule
		catErr        error
		storeErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, e.subTimeout)
		defer cancel()
		catalogPromos, catErr = e.catalog.ListPromotions(c)
		return nil
	})
	if propertyID > 0 {
		g.Go(func() error {
			c, cancel := context.WithTimeout(gctx, e.subTimeout)
			defer cancel()
			schedules, storeErr = e.store.ActiveOverlapping(c, propertyID, criteria.Stay)
			return nil
		})
	}
	_ = g.Wait()

	merged := merge(catalogPromos, schedules)

	out := make([]domain.MergedPromotion, 0, len(merged))
	for _, p := range merged {
		if e.rules.Eligible(p, criteria) {
			out = append(out, p)
		}
	}

	degradedErr := catErr
	if degradedErr == nil {
		degradedErr = storeErr
	}
	if degradedErr != nil {
		return domain.Degraded(out, degradedErr), nil
	}
	return domain.OK(out), nil
}

// merge builds the reconciled promotion set: catalog promotions minus
// deactivated ones, with any schedule sharing a promotion id replacing the
// catalog entry in place, and unmatched schedules appended in promotion-id
// order so repeated queries produce identical lists.
func merge(catalog []domain.CatalogPromotion, schedules []domain.PromotionSchedule) []domain.MergedPromotion {
	out := make([]domain.MergedPromotion, 0, len(catalog)+len(schedules))
	index := make(map[int64]int, len(catalog))
	for _, cp := range catalog {
		if cp.Deactivated {
			continue
		}
		index[cp.ID] = len(out)
		out = append(out, domain.MergedPromotion{
			ID:          cp.ID,
			Title:       cp.Title,
			Description: cp.Description,
			PriceFactor: cp.PriceFactor,
			MinNights:   cp.MinNights,
		})
	}

	var appended []domain.MergedPromotion
	for _, s := range schedules {
		if !s.Active || !s.Visible {
			continue
		}
		mp := domain.MergedPromotion{
			ID:          s.PromotionID,
			Title:       s.Title,
			Description: s.Description,
			PriceFactor: s.PriceFactor,
			FromStore:   true,
			PromoCode:   s.PromoCode,
		}
		if i, ok := index[s.PromotionID]; ok {
			if i >= 0 {
				out[i] = mp
			}
			continue
		}
		index[s.PromotionID] = -1 // later duplicate schedules do not re-append
		appended = append(appended, mp)
	}
	sort.Slice(appended, func(i, j int) bool { return appended[i].ID < appended[j].ID })
	return append(out, appended...)
}
