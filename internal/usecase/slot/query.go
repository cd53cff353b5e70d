package slot

import (
	"context"

	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

type Page struct {
	Slots   []domain.Slot `json:"slots"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"hasMore"`
}

func (m *Manager) Get(ctx context.Context, id string) (*domain.Slot, error) {
	return m.repo.GetByID(ctx, id)
}

func (m *Manager) GetOrThrow(ctx context.Context, id string) (domain.Slot, error) {
	s, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Slot{}, err
	}
	if s == nil {
		return domain.Slot{}, &domain.NotFoundError{ID: id}
	}
	return *s, nil
}

func (m *Manager) GetByDate(ctx context.Context, date string) ([]domain.Slot, error) {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return nil, err
	}
	return m.repo.GetByDate(ctx, date)
}

func (m *Manager) GetByDateRange(ctx context.Context, startDate, endDate string) ([]domain.Slot, error) {
	startDate, endDate, err := validateDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return m.repo.GetByDateRange(ctx, startDate, endDate)
}

// GetPage lists slots with offset/limit paging. Empty dates leave the
// range open.
func (m *Manager) GetPage(ctx context.Context, opts domain.QueryOptions) (Page, error) {
	var err error
	opts.StartDate, opts.EndDate, err = validateOptionalRange(opts.StartDate, opts.EndDate)
	if err != nil {
		return Page{}, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return Page{}, invalidRange("limit and offset must not be negative")
	}

	slots, err := m.repo.GetAll(ctx, opts)
	if err != nil {
		return Page{}, err
	}

	var total int
	if opts.StartDate == "" && opts.EndDate == "" {
		total, err = m.repo.Count(ctx, "")
	} else {
		var all []domain.Slot
		all, err = m.repo.GetAll(ctx, domain.QueryOptions{StartDate: opts.StartDate, EndDate: opts.EndDate})
		total = len(all)
	}
	if err != nil {
		return Page{}, err
	}

	return Page{
		Slots:   slots,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(slots) < total,
	}, nil
}

func (m *Manager) Count(ctx context.Context, date string) (int, error) {
	if date != "" {
		var err error
		if date, err = domain.ValidateDate(date); err != nil {
			return 0, err
		}
	}
	return m.repo.Count(ctx, date)
}

// IsAvailable reports whether a slot with these bounds would have no
// conflicts. Invalid input is simply unavailable.
func (m *Manager) IsAvailable(ctx context.Context, date, startTime, endTime string) (bool, error) {
	v, err := domain.Validate(date, startTime, endTime)
	if err != nil {
		return false, nil
	}

	conflicts, err := m.repo.FindOverlappingSlots(ctx, v.Date, v.StartTime, v.EndTime, "")
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// GetConflicts returns the same-date slots overlapping s, excluding s itself.
func (m *Manager) GetConflicts(ctx context.Context, s domain.Slot) ([]domain.Slot, error) {
	v, err := domain.Validate(s.Date, s.StartTime, s.EndTime)
	if err != nil {
		return nil, err
	}
	return m.repo.FindOverlappingSlots(ctx, v.Date, v.StartTime, v.EndTime, s.ID)
}

// FindConflicts audits the slots already stored on date for overlapping
// pairs. It is a diagnostic, not part of booking.
func (m *Manager) FindConflicts(ctx context.Context, date string) ([]domain.Conflict, error) {
	slots, err := m.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return domain.PairwiseConflicts(slots), nil
}

func validateDateRange(startDate, endDate string) (string, string, error) {
	startDate, err := domain.ValidateDate(startDate)
	if err != nil {
		return "", "", err
	}
	endDate, err = domain.ValidateDate(endDate)
	if err != nil {
		return "", "", err
	}
	if endDate < startDate {
		return "", "", invalidRange("end date must not be before start date")
	}
	return startDate, endDate, nil
}

// validateOptionalRange is validateDateRange with either end allowed empty.
func validateOptionalRange(startDate, endDate string) (string, string, error) {
	var err error
	if startDate != "" {
		if startDate, err = domain.ValidateDate(startDate); err != nil {
			return "", "", err
		}
	}
	if endDate != "" {
		if endDate, err = domain.ValidateDate(endDate); err != nil {
			return "", "", err
		}
	}
	if startDate != "" && endDate != "" && endDate < startDate {
		return "", "", invalidRange("end date must not be before start date")
	}
	return startDate, endDate, nil
}
