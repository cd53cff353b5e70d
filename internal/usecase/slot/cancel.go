package slot

import (
	"context"

	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// Cancel deletes a slot. An absent id returns false, not an error.
func (m *Manager) Cancel(ctx context.Context, id string) (bool, error) {
	ok, err := m.repo.Delete(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	m.advance(id, domain.StatePersisted, domain.StateCancelled)
	m.metrics.Cancelled(1)
	m.dispatch(EventCancelled, id, nil)
	return true, nil
}

func (m *Manager) CancelOrThrow(ctx context.Context, id string) error {
	ok, err := m.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

func (m *Manager) CancelByDate(ctx context.Context, date string) (int, error) {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return 0, err
	}

	n, err := m.repo.DeleteByDate(ctx, date)
	if err != nil {
		return 0, err
	}

	m.metrics.Cancelled(n)
	if n > 0 {
		m.dispatch(EventCancelledByDate, "", map[string]any{"date": date, "count": n})
	}
	return n, nil
}
