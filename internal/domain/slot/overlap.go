package slot

// IsOverlapping uses half-open ranges: touching endpoints do not overlap.
func IsOverlapping(a, b Slot) bool {
	if a.Date != b.Date {
		return false
	}
	return a.StartIndex() < b.EndIndex() && a.EndIndex() > b.StartIndex()
}

func OverlapMinutes(a, b Slot) int {
	if !IsOverlapping(a, b) {
		return 0
	}
	start := max(a.StartIndex(), b.StartIndex())
	end := min(a.EndIndex(), b.EndIndex())
	return (end - start) * IntervalMinutes
}

// FilterOverlapping keeps the slots that overlap probe, skipping excludeID.
// Adapters without a native range query use it to emulate
// FindOverlappingSlots.
func FilterOverlapping(slots []Slot, probe Slot, excludeID string) []Slot {
	out := make([]Slot, 0)
	for _, s := range slots {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if IsOverlapping(probe, s) {
			out = append(out, s)
		}
	}
	return out
}

// PairwiseConflicts lists every overlapping pair in slots, in input order.
func PairwiseConflicts(slots []Slot) []Conflict {
	out := make([]Conflict, 0)
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if IsOverlapping(slots[i], slots[j]) {
				out = append(out, Conflict{
					Slot1:          slots[i],
					Slot2:          slots[j],
					OverlapMinutes: OverlapMinutes(slots[i], slots[j]),
				})
			}
		}
	}
	return out
}
