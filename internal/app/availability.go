package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"staybook/internal/domain"
)

// AvailabilityMatcher finds the room types of a property that can host every
// night of a stay with enough capacity per room.
type AvailabilityMatcher struct {
	catalog    domain.CatalogGateway
	subTimeout time.Duration
}

func NewAvailabilityMatcher(c domain.CatalogGateway, subTimeout time.Duration) *AvailabilityMatcher {
	if subTimeout <= 0 {
		subTimeout = 5 * time.Second
	}
	return &AvailabilityMatcher{catalog: c, subTimeout: subTimeout}
}

// FindAvailableRoomTypes returns, per room type, the rooms free for the whole
// stay. Input is validated before any catalog call; a failed or timed-out
// catalog sub-query degrades to empty rather than failing the request.
//
// A room counts as fully available only when its free-date set contains every
// night of the stay. The looser day-count variant (>= nights free dates,
// regardless of which dates) would let stray records outside the window pass.
func (m *AvailabilityMatcher) FindAvailableRoomTypes(
	ctx context.Context,
	propertyID int64,
	stay domain.Period,
	guests, rooms int,
) (domain.Partial[[]domain.RoomTypeOption], error) {
	var empty domain.Partial[[]domain.RoomTypeOption]
	if rooms < 1 {
		return empty, fmt.Errorf("room count must be >= 1, got %d: %w", rooms, domain.ErrInvalidInput)
	}
	if guests < 1 {
		return empty, fmt.Errorf("guest count must be >= 1, got %d: %w", guests, domain.ErrInvalidInput)
	}
	if !stay.Valid() {
		return empty, fmt.Errorf("stay end before start: %w", domain.ErrInvalidInput)
	}

	minCapacity := (guests + rooms - 1) / rooms // ceil(guests/rooms)

	var (
		allRooms []domain.Room
		free     []domain.AvailabilityRecord
		roomsErr error
		availErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, m.subTimeout)
		defer cancel()
		allRooms, roomsErr = m.catalog.ListRooms(c, propertyID)
		return nil
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, m.subTimeout)
		defer cancel()
		free, availErr = m.catalog.ListAvailability(c, propertyID, stay)
		return nil
	})
	_ = g.Wait()

	degradedErr := roomsErr
	if degradedErr == nil {
		degradedErr = availErr
	}

	// Free-date sets per room, restricted to the stay window.
	freeDates := make(map[int64]map[time.Time]struct{}, len(allRooms))
	for _, rec := range free {
		d := domain.Day(rec.Date)
		if !stay.Contains(d) {
			continue
		}
		set, ok := freeDates[rec.RoomID]
		if !ok {
			set = make(map[time.Time]struct{}, stay.Nights())
			freeDates[rec.RoomID] = set
		}
		set[d] = struct{}{}
	}

	nights := stay.Days()
	byType := make(map[int64]*domain.RoomTypeOption)
	for _, rm := range allRooms {
		if rm.RoomType.MaxCapacity < minCapacity {
			continue
		}
		set := freeDates[rm.ID]
		if len(set) < len(nights) {
			continue
		}
		covered := true
		for _, d := range nights {
			if _, ok := set[d]; !ok {
				covered = false
				break
			}
		}
		if !covered {
			continue
		}
		opt, ok := byType[rm.RoomType.ID]
		if !ok {
			opt = &domain.RoomTypeOption{RoomType: rm.RoomType}
			byType[rm.RoomType.ID] = opt
		}
		opt.RoomIDs = append(opt.RoomIDs, rm.ID)
	}

	out := make([]domain.RoomTypeOption, 0, len(byType))
	for _, opt := range byType {
		sort.Slice(opt.RoomIDs, func(i, j int) bool { return opt.RoomIDs[i] < opt.RoomIDs[j] })
		out = append(out, *opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomType.ID < out[j].RoomType.ID })

	if degradedErr != nil {
		return domain.Degraded(out, degradedErr), nil
	}
	return domain.OK(out), nil
}
