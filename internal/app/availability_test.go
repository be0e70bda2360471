package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

var (
	typeStandard = domain.RoomType{ID: 1, Name: "Standard", MaxCapacity: 2, SingleBeds: 2}
	typeFamily   = domain.RoomType{ID: 2, Name: "Family", MaxCapacity: 4, SingleBeds: 2, DoubleBeds: 1}
	typeSingle   = domain.RoomType{ID: 3, Name: "Single", MaxCapacity: 1, SingleBeds: 1}
)

func TestFindAvailableRoomTypes_CapacityAndCoverage(t *testing.T) {
	// Stay 2024-06-01..03, 3 nights, 4 guests over 2 rooms -> min capacity 2.
	cat := &fakeCatalog{
		rooms: []domain.Room{
			room(101, "101", typeStandard),
			room(102, "102", typeStandard),
			room(201, "201", typeFamily),
			room(301, "301", typeSingle), // capacity 1, filtered out
		},
	}
	cat.avail = append(cat.avail, freeOn(t, 101, "2024-06-01", "2024-06-02", "2024-06-03")...)
	cat.avail = append(cat.avail, freeOn(t, 102, "2024-06-01", "2024-06-03")...) // missing a night
	cat.avail = append(cat.avail, freeOn(t, 201, "2024-06-01", "2024-06-02", "2024-06-03")...)
	cat.avail = append(cat.avail, freeOn(t, 301, "2024-06-01", "2024-06-02", "2024-06-03")...)

	m := app.NewAvailabilityMatcher(cat, time.Second)
	res, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-03"), 4, 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %v", res.Cause)
	}
	if len(res.Value) != 2 {
		t.Fatalf("expected 2 room types, got %+v", res.Value)
	}
	if res.Value[0].RoomType.ID != 1 || len(res.Value[0].RoomIDs) != 1 || res.Value[0].RoomIDs[0] != 101 {
		t.Fatalf("standard entry wrong: %+v", res.Value[0])
	}
	if res.Value[1].RoomType.ID != 2 || len(res.Value[1].RoomIDs) != 1 {
		t.Fatalf("family entry wrong: %+v", res.Value[1])
	}
}

func TestFindAvailableRoomTypes_ExactDateCoverage(t *testing.T) {
	// Room 101 has three free dates, but one is outside the stay. Enough by
	// count, not by coverage; it must not qualify.
	cat := &fakeCatalog{
		rooms: []domain.Room{room(101, "101", typeStandard)},
		avail: freeOn(t, 101, "2024-06-01", "2024-06-02", "2024-06-10"),
	}
	m := app.NewAvailabilityMatcher(cat, time.Second)
	res, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-03"), 2, 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res.Value) != 0 {
		t.Fatalf("room with partial coverage must not qualify: %+v", res.Value)
	}
}

func TestFindAvailableRoomTypes_MinCapacityCeil(t *testing.T) {
	// guestCount=5, roomCount=2 -> min capacity per room is 3.
	cat := &fakeCatalog{
		rooms: []domain.Room{
			room(101, "101", typeStandard), // capacity 2, below 3
			room(201, "201", typeFamily),
		},
		avail: freeOn(t, 201, "2024-06-01"),
	}
	cat.avail = append(cat.avail, freeOn(t, 101, "2024-06-01")...)

	m := app.NewAvailabilityMatcher(cat, time.Second)
	res, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-01"), 5, 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res.Value) != 1 || res.Value[0].RoomType.ID != typeFamily.ID {
		t.Fatalf("expected only the family type, got %+v", res.Value)
	}
}

func TestFindAvailableRoomTypes_InvalidInput(t *testing.T) {
	cat := &fakeCatalog{}
	m := app.NewAvailabilityMatcher(cat, time.Second)

	if _, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-02"), 2, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero rooms must be rejected, got %v", err)
	}
	if _, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-02"), 0, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero guests must be rejected, got %v", err)
	}
	inverted := domain.Period{Start: day(t, "2024-06-05"), End: day(t, "2024-06-01")}
	if _, err := m.FindAvailableRoomTypes(context.Background(), 1, inverted, 2, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("inverted period must be rejected, got %v", err)
	}
}

func TestFindAvailableRoomTypes_DegradesOnCatalogFailure(t *testing.T) {
	cat := &fakeCatalog{
		rooms:    []domain.Room{room(101, "101", typeStandard)},
		availErr: errors.New("catalog down"),
	}
	m := app.NewAvailabilityMatcher(cat, time.Second)
	res, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-02"), 2, 1)
	if err != nil {
		t.Fatalf("upstream failure must not be a hard error: %v", err)
	}
	if !res.Degraded || res.Cause == nil {
		t.Fatalf("expected degraded result with cause, got %+v", res)
	}
	if len(res.Value) != 0 {
		t.Fatalf("expected empty options, got %+v", res.Value)
	}
}

func TestFindAvailableRoomTypes_NoRooms(t *testing.T) {
	m := app.NewAvailabilityMatcher(&fakeCatalog{}, time.Second)
	res, err := m.FindAvailableRoomTypes(context.Background(), 1, span(t, "2024-06-01", "2024-06-02"), 2, 1)
	if err != nil {
		t.Fatalf("zero rooms is not an error: %v", err)
	}
	if res.Degraded || len(res.Value) != 0 {
		t.Fatalf("expected clean empty result, got %+v", res)
	}
}
