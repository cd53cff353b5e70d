package slot

import "sort"

// ComputeDailyStats aggregates slots per date, ascending by date. Backends
// without a native aggregate go through here.
func ComputeDailyStats(slots []Slot) []DailyStat {
	byDate := make(map[string]*DailyStat)
	for _, s := range slots {
		st, ok := byDate[s.Date]
		if !ok {
			st = &DailyStat{Date: s.Date}
			byDate[s.Date] = st
		}
		st.SlotCount++
		st.TotalMinutes += s.DurationMinutes()
	}

	out := make([]DailyStat, 0, len(byDate))
	for _, st := range byDate {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// BookedMinutes sums the duration of slots.
func BookedMinutes(slots []Slot) int {
	total := 0
	for _, s := range slots {
		total += s.DurationMinutes()
	}
	return total
}
