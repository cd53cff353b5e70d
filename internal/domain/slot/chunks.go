package slot

// SplitRange cuts r into consecutive chunks of durationMinutes that fit
// entirely inside it, turning an availability block into bookable pieces.
func SplitRange(r TimeRange, durationMinutes int) []TimeRange {
	out := make([]TimeRange, 0)
	if durationMinutes <= 0 {
		return out
	}

	start := minutesOf(r.StartTime)
	end := minutesOf(r.EndTime)

	for cur := start; cur+durationMinutes <= end; cur += durationMinutes {
		out = append(out, TimeRange{
			StartTime: MinutesToTime(cur),
			EndTime:   MinutesToTime(cur + durationMinutes),
		})
	}
	return out
}

// TimeGrid lists every start time of a day at the given step.
func TimeGrid(stepMinutes int) []string {
	out := make([]string, 0)
	if stepMinutes <= 0 {
		return out
	}
	for m := 0; m < 24*60; m += stepMinutes {
		out = append(out, MinutesToTime(m))
	}
	return out
}
