package domain

import "time"

// Period is an inclusive [Start, End] range of civil dates. Both bounds are
// expected to be normalized to midnight UTC; use Day to normalize.
type Period struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to a civil date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: Day(start), End: Day(end)}
}

func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// Nights is the inclusive day count: end - start + 1.
func (p Period) Nights() int {
	if !p.Valid() {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Overlaps holds iff start1 <= end2 AND end1 >= start2.
func (p Period) Overlaps(q Period) bool {
	return !p.Start.After(q.End) && !p.End.Before(q.Start)
}

func (p Period) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days enumerates every date of the period in ascending order.
func (p Period) Days() []time.Time {
	if !p.Valid() {
		return nil
	}
	out := make([]time.Time, 0, p.Nights())
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// ISOWeekday maps time.Weekday to ISO-8601 numbering: Monday=1 .. Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

const (
	isoSaturday = 6
	isoSunday   = 7
)

// HasFullWeekend reports whether the period includes both a Saturday and a Sunday.
func (p Period) HasFullWeekend() bool {
	var sat, sun bool
	for _, d := range p.Days() {
		switch ISOWeekday(d) {
		case isoSaturday:
			sat = true
		case isoSunday:
			sun = true
		}
		if sat && sun {
			return true
		}
	}
	return false
}

// TouchesWeekend reports whether the period includes at least one Saturday or Sunday.
func (p Period) TouchesWeekend() bool {
	for _, d := range p.Days() {
		if wd := ISOWeekday(d); wd == isoSaturday || wd == isoSunday {
			return true
		}
	}
	return false
}
