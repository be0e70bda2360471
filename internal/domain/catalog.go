package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reference data served by the remote catalog. All of it is read-only to this
// service; the catalog owns its own consistency.

type Property struct {
	ID      int64
	Name    string
	Address string
	Phone   *string
	Email   *string
}

type RoomType struct {
	ID          int64
	Name        string
	MaxCapacity int
	AreaM2      *float64
	SingleBeds  int
	DoubleBeds  int
}

type Room struct {
	ID         int64
	Number     string
	PropertyID int64
	RoomType   RoomType
}

// AvailabilityRecord marks a room free on a date. The catalog query already
// excludes records whose booking is in an occupied state, so presence here
// means "free".
type AvailabilityRecord struct {
	RoomID int64
	Date   time.Time
}

// NightlyRate is one rate-plan price for a room type on a date. Several may
// exist per (room type, date); the minimum is authoritative for this engine.
type NightlyRate struct {
	RoomTypeID int64
	Date       time.Time
	Rate       decimal.Decimal
}

// RoomTypeOption is one entry of an availability search result: a room type
// that can host the stay, the concrete free rooms backing it, and the average
// nightly price when pricing succeeded.
type RoomTypeOption struct {
	RoomType   RoomType
	RoomIDs    []int64
	AvgNightly *decimal.Decimal // nil when pricing degraded
}
