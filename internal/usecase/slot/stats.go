package slot

import (
	"context"

	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// DailyStats reports slot count and booked minutes per date in the range,
// natively when the adapter can aggregate.
func (m *Manager) DailyStats(ctx context.Context, startDate, endDate string) ([]domain.DailyStat, error) {
	startDate, endDate, err := validateDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if p, ok := m.repo.(domain.DailyStatsProvider); ok {
		return p.DailyStats(ctx, startDate, endDate)
	}

	slots, err := m.repo.GetByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return domain.ComputeDailyStats(slots), nil
}

type DayStats struct {
	Date             string `json:"date"`
	SlotCount        int    `json:"slotCount"`
	BookedMinutes    int    `json:"bookedMinutes"`
	AvailableMinutes int    `json:"availableMinutes"`
}

// StatsForDate combines the booked and available totals of one date.
func (m *Manager) StatsForDate(ctx context.Context, date string, opts domain.AvailabilityOptions) (DayStats, error) {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return DayStats{}, err
	}
	slots, err := m.GetByDate(ctx, date)
	if err != nil {
		return DayStats{}, err
	}

	available, err := m.GetAvailableMinutes(ctx, date, opts)
	if err != nil {
		return DayStats{}, err
	}

	return DayStats{
		Date:             date,
		SlotCount:        len(slots),
		BookedMinutes:    domain.BookedMinutes(slots),
		AvailableMinutes: available,
	}, nil
}
