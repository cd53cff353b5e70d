package repository

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

func sortSlots(slots []slot.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slot.Less(slots[i], slots[j])
	})
}

// inDateRange treats an empty bound as open.
func inDateRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

// paginate applies offset/limit to an already sorted listing.
func paginate(slots []slot.Slot, offset, limit int) []slot.Slot {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(slots) {
		return []slot.Slot{}
	}
	slots = slots[offset:]
	if limit > 0 && limit < len(slots) {
		slots = slots[:limit]
	}
	return slots
}

func ensureID(s slot.Slot) slot.Slot {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s
}

func cloneSlot(s slot.Slot) slot.Slot {
	s.Metadata = s.Metadata.Clone()
	return s
}

// parseDate turns a YYYY-MM-DD string into midnight UTC for date columns.
func parseDate(date string) (time.Time, error) {
	return time.Parse(slot.DateLayout, date)
}
