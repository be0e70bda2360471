// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/app"
	"staybook/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/properties/{id}/stays", h.searchStays)
	s.mux.Get("/v1/properties/{id}/rate-calendar", h.rateCalendar)
	s.mux.Get("/v1/promotions", h.eligiblePromotions)
	s.mux.Get("/v1/promo-codes/{code}", h.validatePromoCode)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- query parsing ----

const dateLayout = "2006-01-02"

func parsePeriod(r *http.Request) (domain.Period, error) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		return domain.Period{}, errors.New("start must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		return domain.Period{}, errors.New("end must be YYYY-MM-DD")
	}
	p := domain.NewPeriod(start, end)
	if !p.Valid() {
		return domain.Period{}, errors.New("end must not precede start")
	}
	return p, nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryBool(r *http.Request, key string) bool {
	v := strings.ToLower(r.URL.Query().Get(key))
	return v == "1" || v == "true" || v == "yes"
}

func parseCriteria(r *http.Request, stay domain.Period) domain.EligibilityCriteria {
	c := domain.EligibilityCriteria{
		Stay:     stay,
		Adults:   queryInt(r, "adults", 0),
		Seniors:  queryInt(r, "seniors", 0),
		Children: queryInt(r, "children", 0),
		Military: queryBool(r, "military"),
		Member:   queryBool(r, "member"),
		Upfront:  queryBool(r, "upfront"),
	}
	// explicit total takes precedence over the per-category sum
	if v := r.URL.Query().Get("guests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TotalGuests = &n
		}
	}
	return c
}

// ---- response shapes ----

type roomTypeJSON struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	MaxCapacity int      `json:"maxCapacity"`
	Area        *float64 `json:"area,omitempty"`
	SingleBeds  int      `json:"singleBeds"`
	DoubleBeds  int      `json:"doubleBeds"`
}

type stayOptionJSON struct {
	RoomType       roomTypeJSON `json:"roomType"`
	RoomIDs        []int64      `json:"availableRoomIds"`
	RoomCount      int          `json:"availableRoomCount"`
	AvgNightlyRate *string      `json:"avgNightlyRate,omitempty"`
}

type staySearchJSON struct {
	Options []stayOptionJSON `json:"options"`
}

type dailyRateJSON struct {
	Date           string `json:"date"`
	MinimumRate    string `json:"minimumRate"`
	HasPromotion   bool   `json:"hasPromotion"`
	PromotionID    *int64 `json:"promotionId,omitempty"`
	PriceFactor    string `json:"priceFactor"`
	DiscountedRate string `json:"discountedRate"`
}

type promotionJSON struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	PriceFactor       string  `json:"priceFactor"`
	MinimumDaysOfStay int     `json:"minimumDaysOfStay"`
	FromStore         bool    `json:"fromStore"`
	PromoCode         *string `json:"promoCode,omitempty"`
}

type scheduleJSON struct {
	ID          int64   `json:"id"`
	PropertyID  int64   `json:"propertyId"`
	PromotionID int64   `json:"promotionId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PromoCode   *string `json:"promoCode,omitempty"`
	PriceFactor string  `json:"priceFactor"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// ---- handlers ----

func (h *Handlers) searchStays(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || propertyID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "property id must be a positive number")
		return
	}
	stay, err := parsePeriod(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date range", err.Error())
		return
	}
	criteria := parseCriteria(r, stay)
	guests := criteria.GuestCount()
	rooms := queryInt(r, "rooms", 1)

	res, err := h.Q.SearchStays(r.Context(), propertyID, stay, guests, rooms)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Search failed", "")
		return
	}

	if res.AvailabilityDegraded {
		observability.ObserveDegraded("availability")
		w.Header().Add("X-Degraded", "availability")
	}
	if res.PricingDegraded {
		observability.ObserveDegraded("pricing")
		w.Header().Add("X-Degraded", "pricing")
	}

	out := staySearchJSON{Options: make([]stayOptionJSON, 0, len(res.Options))}
	for _, o := range res.Options {
		oj := stayOptionJSON{
			RoomType: roomTypeJSON{
				ID:          o.RoomType.ID,
				Name:        o.RoomType.Name,
				MaxCapacity: o.RoomType.MaxCapacity,
				Area:        o.RoomType.AreaM2,
				SingleBeds:  o.RoomType.SingleBeds,
				DoubleBeds:  o.RoomType.DoubleBeds,
			},
			RoomIDs:   o.RoomIDs,
			RoomCount: len(o.RoomIDs),
		}
		if o.AvgNightly != nil {
			s := o.AvgNightly.StringFixed(2)
			oj.AvgNightlyRate = &s
		}
		out.Options = append(out.Options, oj)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) rateCalendar(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || propertyID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "property id must be a positive number")
		return
	}

	cal, err := h.Q.RateCalendar(r.Context(), propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Calendar failed", "")
		return
	}
	if cal.Degraded {
		observability.ObserveDegraded("calendar")
		w.Header().Add("X-Degraded", "pricing")
	}

	rows := make([]dailyRateJSON, 0, len(cal.Value))
	for _, d := range cal.Value {
		rows = append(rows, dailyRateJSON{
			Date:           d.Date.Format(dateLayout),
			MinimumRate:    d.MinRate.StringFixed(2),
			HasPromotion:   d.HasPromo,
			PromotionID:    d.PromotionID,
			PriceFactor:    d.PriceFactor.String(),
			DiscountedRate: d.Discounted.StringFixed(2),
		})
	}

	etag, body := calcETagAndBody(rows)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write rateCalendar body")
	}
}

func (h *Handlers) eligiblePromotions(w http.ResponseWriter, r *http.Request) {
	stay, err := parsePeriod(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date range", err.Error())
		return
	}
	var propertyID int64
	if v := r.URL.Query().Get("property"); v != "" {
		propertyID, err = strconv.ParseInt(v, 10, 64)
		if err != nil || propertyID <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "property must be a positive number")
			return
		}
	}

	res, err := h.Q.EligiblePromotions(r.Context(), propertyID, parseCriteria(r, stay))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Promotion query failed", "")
		return
	}
	if res.Degraded {
		observability.ObserveDegraded("promotions")
		w.Header().Add("X-Degraded", "promotions")
	}

	out := make([]promotionJSON, 0, len(res.Value))
	for _, p := range res.Value {
		out = append(out, promotionJSON{
			ID:                p.ID,
			Title:             p.Title,
			Description:       p.Description,
			PriceFactor:       p.PriceFactor.String(),
			MinimumDaysOfStay: p.MinNights,
			FromStore:         p.FromStore,
			PromoCode:         p.PromoCode,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) validatePromoCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	sched, err := h.Q.ValidatePromoCode(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeProblem(w, http.StatusBadRequest, "Invalid code", "promo code must not be empty")
		case errors.Is(err, domain.ErrNotFound):
			writeProblem(w, http.StatusNotFound, "Not Found", "no active promotion for this code")
		default:
			writeProblem(w, http.StatusInternalServerError, "Validation failed", "")
		}
		return
	}
	writeJSON(w, http.StatusOK, scheduleJSON{
		ID:          sched.ID,
		PropertyID:  sched.PropertyID,
		PromotionID: sched.PromotionID,
		Title:       sched.Title,
		Description: sched.Description,
		PromoCode:   sched.PromoCode,
		PriceFactor: sched.PriceFactor.String(),
		StartDate:   sched.Period.Start.Format(dateLayout),
		EndDate:     sched.Period.End.Format(dateLayout),
	})
}
