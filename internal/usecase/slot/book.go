package slot

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

const (
	EventBooked           = "slot_booked"
	EventBatchBooked      = "slot_batch_booked"
	EventCancelled        = "slot_cancelled"
	EventCancelledByDate  = "slots_cancelled_by_date"
	EventConflictRejected = "slot_conflict_rejected"
)

// Book validates, checks conflicts and persists one slot. A validation or
// conflict failure never reaches storage.
func (m *Manager) Book(ctx context.Context, in domain.CreateInput) (domain.Slot, error) {
	state := domain.InitialState()

	v, err := domain.ValidateInput(in)
	if err != nil {
		return domain.Slot{}, m.validationFailed(err)
	}

	candidate := domain.Slot{
		ID:        m.newID(),
		Date:      v.Date,
		StartTime: v.StartTime,
		EndTime:   v.EndTime,
		Metadata:  in.Metadata.Clone(),
	}
	state = m.advance(candidate.ID, state, domain.StateValidated)

	unlock, err := m.lockDates(ctx, []string{v.Date})
	if err != nil {
		return domain.Slot{}, err
	}
	defer unlock()

	if !m.allowOverlap {
		conflicts, err := m.repo.FindOverlappingSlots(ctx, v.Date, v.StartTime, v.EndTime, "")
		if err != nil {
			return domain.Slot{}, err
		}
		if len(conflicts) > 0 {
			return domain.Slot{}, m.rejectConflict(candidate, conflicts, fmt.Sprintf(
				"Slot %s %s-%s conflicts with %d existing slot(s).",
				v.Date, v.StartTime, v.EndTime, len(conflicts),
			))
		}
	}
	state = m.advance(candidate.ID, state, domain.StateConflictChecked)

	saved, err := m.repo.Save(ctx, candidate)
	if err != nil {
		return domain.Slot{}, err
	}
	m.advance(saved.ID, state, domain.StatePersisted)

	m.metrics.Booked("single", 1)
	m.dispatch(EventBooked, saved.ID, map[string]string{
		"date":      saved.Date,
		"startTime": saved.StartTime,
		"endTime":   saved.EndTime,
	})
	return saved, nil
}

// BookMany books every input or none. All inputs are validated first, then
// each is checked against storage and against the rest of the batch.
func (m *Manager) BookMany(ctx context.Context, inputs []domain.CreateInput) ([]domain.Slot, error) {
	if len(inputs) == 0 {
		return []domain.Slot{}, nil
	}

	candidates := make([]domain.Slot, 0, len(inputs))
	dates := make([]string, 0, len(inputs))

	for i, in := range inputs {
		v, err := domain.ValidateInput(in)
		if err != nil {
			return nil, m.validationFailed(indexed(i, err))
		}
		candidates = append(candidates, domain.Slot{
			ID:        m.newID(),
			Date:      v.Date,
			StartTime: v.StartTime,
			EndTime:   v.EndTime,
			Metadata:  in.Metadata.Clone(),
		})
		dates = append(dates, v.Date)
	}
	m.advanceAll(candidates, domain.StateProposed, domain.StateValidated)

	unlock, err := m.lockDates(ctx, dates)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !m.allowOverlap {
		for i, c := range candidates {
			conflicts, err := m.repo.FindOverlappingSlots(ctx, c.Date, c.StartTime, c.EndTime, "")
			if err != nil {
				return nil, err
			}
			if len(conflicts) > 0 {
				return nil, m.rejectConflict(c, conflicts, fmt.Sprintf(
					"slots[%d]: %s %s-%s conflicts with %d existing slot(s).",
					i, c.Date, c.StartTime, c.EndTime, len(conflicts),
				))
			}
		}

		if pairs := domain.PairwiseConflicts(candidates); len(pairs) > 0 {
			p := pairs[0]
			return nil, m.rejectConflict(p.Slot2, []domain.Slot{p.Slot1}, fmt.Sprintf(
				"Batch contains overlapping slots: %s %s-%s and %s-%s.",
				p.Slot1.Date, p.Slot1.StartTime, p.Slot1.EndTime, p.Slot2.StartTime, p.Slot2.EndTime,
			))
		}
	}

	m.advanceAll(candidates, domain.StateValidated, domain.StateConflictChecked)

	saved, err := m.persist(ctx, candidates)
	if err != nil {
		return nil, err
	}
	m.advanceAll(saved, domain.StateConflictChecked, domain.StatePersisted)

	m.metrics.Booked("batch", len(saved))
	ids := make([]string, 0, len(saved))
	for _, s := range saved {
		ids = append(ids, s.ID)
	}
	m.dispatch(EventBatchBooked, "", map[string]any{"count": len(saved), "ids": ids})
	return saved, nil
}

// persist uses the adapter's batch write when it has one. Otherwise slots
// are saved one by one and a failure mid-batch leaves the earlier writes.
func (m *Manager) persist(ctx context.Context, slots []domain.Slot) ([]domain.Slot, error) {
	if b, ok := m.repo.(domain.BatchSaver); ok {
		return b.SaveMany(ctx, slots)
	}

	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		saved, err := m.repo.Save(ctx, s)
		if err != nil {
			m.log.Warn().Err(err).Int("written", len(out)).Msg("batch interrupted, earlier slots kept")
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (m *Manager) rejectConflict(candidate domain.Slot, conflicts []domain.Slot, msg string) error {
	m.metrics.Conflict()
	m.log.Info().
		Str("date", candidate.Date).
		Str("start", candidate.StartTime).
		Str("end", candidate.EndTime).
		Int("conflicts", len(conflicts)).
		Msg("booking rejected")

	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	m.dispatch(EventConflictRejected, "", map[string]any{
		"date":        candidate.Date,
		"startTime":   candidate.StartTime,
		"endTime":     candidate.EndTime,
		"conflicting": ids,
	})

	return &domain.ConflictError{
		Message:   msg,
		Candidate: candidate,
		Conflicts: conflicts,
	}
}

func indexed(i int, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &domain.ValidationError{
			Field:   ve.Field,
			Message: fmt.Sprintf("slots[%d]: %s", i, ve.Message),
		}
	}
	return err
}
