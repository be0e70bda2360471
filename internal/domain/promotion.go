package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionSchedule is a property-scoped promotion window from the local
// store. Administrative CRUD lives outside this service; the engine only
// reads them.
type PromotionSchedule struct {
	ID          int64
	PropertyID  int64
	PromotionID int64
	Title       string
	Description string
	PromoCode   *string
	PriceFactor decimal.Decimal
	Period      Period
	Active      bool
	Visible     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CatalogPromotion comes from the remote catalog. Not property-scoped and
// fetched fresh per request.
type CatalogPromotion struct {
	ID          int64
	Title       string
	Description string
	PriceFactor decimal.Decimal
	MinNights   int
	Deactivated bool
}

// MergedPromotion is the reconciled view of catalog and store promotions.
// A store schedule sharing a promotion id with a catalog entry replaces it
// wholesale; FromStore records which source won.
type MergedPromotion struct {
	ID          int64
	Title       string
	Description string
	PriceFactor decimal.Decimal
	MinNights   int
	FromStore   bool
	PromoCode   *string
}

// EligibilityCriteria describes the stay and party a promotion is evaluated
// against. Per-request value, never persisted.
type EligibilityCriteria struct {
	Stay     Period
	Adults   int
	Seniors  int
	Children int
	// TotalGuests takes precedence over the per-category sum when set.
	TotalGuests *int
	Military    bool
	Member      bool
	Upfront     bool
}

func (c EligibilityCriteria) GuestCount() int {
	if c.TotalGuests != nil {
		return *c.TotalGuests
	}
	return c.Adults + c.Seniors + c.Children
}

// DailyRate is one row of a property's rate calendar: the minimum base rate
// for the date and, when a store schedule covers it, the discounted price.
type DailyRate struct {
	Date        time.Time
	MinRate     decimal.Decimal
	HasPromo    bool
	PromotionID *int64
	PriceFactor decimal.Decimal
	Discounted  decimal.Decimal
}
