// internal/adapters/catalog/client.go
package catalog

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

const dateLayout = "2006-01-02"

// Client talks to the remote property/room/rate catalog. The HTTP client is
// injected so tests can point it at a fake server; nothing here is mutated
// after construction.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int, hc *http.Client) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   hc,
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) GetProperty(ctx context.Context, propertyID int64) (domain.Property, error) {
	var dto propertyDTO
	u := fmt.Sprintf("%s/properties/%d", c.base, propertyID)
	if err := c.get(ctx, "property", u, &dto); err != nil {
		return domain.Property{}, err
	}
	return domain.Property{
		ID:      dto.ID,
		Name:    dto.Name,
		Address: dto.Address,
		Phone:   dto.Phone,
		Email:   dto.Email,
	}, nil
}

func (c *Client) ListRooms(ctx context.Context, propertyID int64) ([]domain.Room, error) {
	var dtos []roomDTO
	u := fmt.Sprintf("%s/properties/%d/rooms", c.base, propertyID)
	if err := c.get(ctx, "rooms", u, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, domain.Room{
			ID:         d.ID,
			Number:     d.Number,
			PropertyID: propertyID,
			RoomType: domain.RoomType{
				ID:          d.RoomType.ID,
				Name:        d.RoomType.Name,
				MaxCapacity: d.RoomType.MaxCapacity,
				AreaM2:      d.RoomType.Area,
				SingleBeds:  d.RoomType.SingleBeds,
				DoubleBeds:  d.RoomType.DoubleBeds,
			},
		})
	}
	return out, nil
}

// ListAvailability asks the catalog for free-room records in the window.
// Records tied to a booked/occupied booking are excluded server-side via
// exclude_status.
func (c *Client) ListAvailability(ctx context.Context, propertyID int64, period domain.Period) ([]domain.AvailabilityRecord, error) {
	q := url.Values{}
	q.Set("start", period.Start.Format(dateLayout))
	q.Set("end", period.End.Format(dateLayout))
	q.Set("exclude_status", "BOOKED")
	var dtos []availabilityDTO
	u := fmt.Sprintf("%s/properties/%d/availability?%s", c.base, propertyID, q.Encode())
	if err := c.get(ctx, "availability", u, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.AvailabilityRecord, 0, len(dtos))
	for _, d := range dtos {
		day, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue // skip malformed rows, keep the rest
		}
		out = append(out, domain.AvailabilityRecord{RoomID: d.RoomID, Date: day})
	}
	return out, nil
}

func (c *Client) ListRoomRates(ctx context.Context, roomTypeIDs []int64, period domain.Period) ([]domain.NightlyRate, error) {
	ids := make([]string, 0, len(roomTypeIDs))
	for _, id := range roomTypeIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	q := url.Values{}
	q.Set("room_types", strings.Join(ids, ","))
	q.Set("start", period.Start.Format(dateLayout))
	q.Set("end", period.End.Format(dateLayout))
	var dtos []rateDTO
	u := fmt.Sprintf("%s/room-rates?%s", c.base, q.Encode())
	if err := c.get(ctx, "room_rates", u, &dtos); err != nil {
		return nil, err
	}
	return mapRates(dtos), nil
}

func (c *Client) ListRoomRatesAll(ctx context.Context, propertyID int64) ([]domain.NightlyRate, error) {
	var dtos []rateDTO
	u := fmt.Sprintf("%s/properties/%d/room-rates", c.base, propertyID)
	if err := c.get(ctx, "room_rates_all", u, &dtos); err != nil {
		return nil, err
	}
	return mapRates(dtos), nil
}

func (c *Client) ListPromotions(ctx context.Context) ([]domain.CatalogPromotion, error) {
	var dtos []promotionDTO
	u := c.base + "/promotions"
	if err := c.get(ctx, "promotions", u, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.CatalogPromotion, 0, len(dtos))
	for _, d := range dtos {
		factor, err := decimal.NewFromString(d.PriceFactor.String())
		if err != nil {
			continue
		}
		out = append(out, domain.CatalogPromotion{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			PriceFactor: factor,
			MinNights:   d.MinimumDaysOfStay,
			Deactivated: d.IsDeactivated,
		})
	}
	return out, nil
}

// ---- wire DTOs ----

type propertyDTO struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

type roomTypeDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	MaxCapacity int      `json:"maxCapacity"`
	Area        *float64 `json:"area"`
	SingleBeds  int      `json:"singleBeds"`
	DoubleBeds  int      `json:"doubleBeds"`
}

type roomDTO struct {
	ID       int64       `json:"roomId"`
	Number   string      `json:"roomNumber"`
	RoomType roomTypeDTO `json:"roomType"`
}

type availabilityDTO struct {
	RoomID int64  `json:"roomId"`
	Date   string `json:"date"`
}

type rateDTO struct {
	RoomTypeID int64       `json:"roomTypeId"`
	Date       string      `json:"date"`
	Rate       json.Number `json:"basicNightlyRate"`
}

type promotionDTO struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	PriceFactor       json.Number `json:"priceFactor"`
	MinimumDaysOfStay int         `json:"minimumDaysOfStay"`
	IsDeactivated     bool        `json:"isDeactivated"`
}

func mapRates(dtos []rateDTO) []domain.NightlyRate {
	out := make([]domain.NightlyRate, 0, len(dtos))
	for _, d := range dtos {
		day, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(d.Rate.String())
		if err != nil {
			continue
		}
		out = append(out, domain.NightlyRate{RoomTypeID: d.RoomTypeID, Date: day, Rate: price})
	}
	return out
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrForbidden    = errors.New("catalog: forbidden")
)

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After when
// provided.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	status, err := c.doGet(ctx, url, out)
	observability.ObserveExternal("catalog", endpoint, status, time.Since(start))
	return err
}

func (c *Client) doGet(ctx context.Context, url string, out any) (int, error) {
	var lastErr error
	lastStatus := 0
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "staybook/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			// network error or context canceled
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, lastErr
		}
		lastStatus = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return lastStatus, err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return lastStatus, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return lastStatus, ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return lastStatus, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return lastStatus, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return lastStatus, ctx.Err()
			}
			return lastStatus, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return lastStatus, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastStatus, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	// concurrency-safe jitter using crypto/rand
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0                  // 0..1
	j := time.Duration(0.5 * f * float64(base)) // up to +50%
	return base + j
}
