package slot

import (
	"context"

	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// GetAvailableSlots returns the maximal free runs inside the hour window,
// each at least MinDurationIntervals long. Runs touching the window edge
// are cut at the edge.
func (m *Manager) GetAvailableSlots(
	ctx context.Context,
	date string,
	opts domain.AvailabilityOptions,
) ([]domain.TimeRange, error) {

	date, err := domain.ValidateDate(date)
	if err != nil {
		return nil, err
	}
	opts, err = domain.ValidateAvailabilityOptions(opts)
	if err != nil {
		return nil, err
	}

	slots, err := m.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	var occupied [domain.IntervalsPerDay]bool
	for _, s := range slots {
		for i := s.StartIndex(); i < s.EndIndex() && i < domain.IntervalsPerDay; i++ {
			occupied[i] = true
		}
	}

	from := opts.StartHour * domain.IntervalsPerHour
	to := opts.EndHour * domain.IntervalsPerHour

	out := make([]domain.TimeRange, 0)
	emit := func(start, end int) {
		if end-start >= opts.MinDurationIntervals {
			out = append(out, domain.TimeRange{
				StartTime: domain.IndexToTime(start),
				EndTime:   domain.IndexToTime(end),
			})
		}
	}

	runStart := -1
	for i := from; i < to; i++ {
		switch {
		case !occupied[i] && runStart < 0:
			runStart = i
		case occupied[i] && runStart >= 0:
			emit(runStart, i)
			runStart = -1
		}
	}
	if runStart >= 0 {
		emit(runStart, to)
	}

	return out, nil
}

func (m *Manager) GetBookedMinutes(ctx context.Context, date string) (int, error) {
	slots, err := m.GetByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	return domain.BookedMinutes(slots), nil
}

// GetAvailableMinutes sums the free windows GetAvailableSlots reports.
func (m *Manager) GetAvailableMinutes(
	ctx context.Context,
	date string,
	opts domain.AvailabilityOptions,
) (int, error) {

	windows, err := m.GetAvailableSlots(ctx, date, opts)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, w := range windows {
		total += w.DurationMinutes()
	}
	return total, nil
}

// BookableChunks cuts a stored availability slot into ranges of
// durationMinutes, e.g. a 09:00-12:00 block into 45-minute interviews.
func (m *Manager) BookableChunks(ctx context.Context, id string, durationMinutes int) ([]domain.TimeRange, error) {
	if durationMinutes <= 0 {
		return nil, invalidRange("duration must be positive")
	}

	s, err := m.GetOrThrow(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.SplitRange(s.Range(), durationMinutes), nil
}
