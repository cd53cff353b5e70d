package slot

// Metadata is an open, backend-defined bag. The engine never reads it.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Slot is one scheduled range on one calendar date. It is a value:
// there is no mutation API, an update is a cancel followed by a new booking.
type Slot struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Metadata  Metadata `json:"metadata,omitempty"`
}

func (s Slot) StartIndex() int { return TimeToIndex(s.StartTime) }
func (s Slot) EndIndex() int   { return TimeToIndex(s.EndTime) }

func (s Slot) DurationMinutes() int {
	return (s.EndIndex() - s.StartIndex()) * IntervalMinutes
}

func (s Slot) Range() TimeRange {
	return TimeRange{StartTime: s.StartTime, EndTime: s.EndTime}
}

// WithID returns a copy carrying a backend-assigned id.
func (s Slot) WithID(id string) Slot {
	s.ID = id
	return s
}

type TimeRange struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (r TimeRange) DurationMinutes() int {
	return minutesOf(r.EndTime) - minutesOf(r.StartTime)
}

// Conflict is a pair of same-date slots whose ranges intersect.
type Conflict struct {
	Slot1          Slot `json:"slot1"`
	Slot2          Slot `json:"slot2"`
	OverlapMinutes int  `json:"overlapMinutes"`
}

// CreateInput holds the raw host fields for a booking.
type CreateInput struct {
	Date      string
	StartTime string
	EndTime   string
	Metadata  Metadata
}

// Validated is the normalized output of Validate.
type Validated struct {
	Date      string
	StartTime string
	EndTime   string
}

type AvailabilityOptions struct {
	StartHour            int
	EndHour              int // 0 means 24
	MinDurationIntervals int // 0 means 1
}

// QueryOptions filters GetAll. Empty dates and a zero Limit mean no bound.
type QueryOptions struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

type DailyStat struct {
	Date         string `json:"date"`
	SlotCount    int    `json:"slotCount"`
	TotalMinutes int    `json:"totalMinutes"`
}

// Less orders slots by (date, start, end, id), the order every listing uses.
func Less(a, b Slot) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	if a.EndTime != b.EndTime {
		return a.EndTime < b.EndTime
	}
	return a.ID < b.ID
}
