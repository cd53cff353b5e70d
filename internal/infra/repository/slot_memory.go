package repository

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// SlotMemoryRepository keeps slots in process memory: a map by id plus a
// date -> ids index. It enforces no exclusion constraint of its own, so two
// managers sharing it without a common lock can still double-book.
type SlotMemoryRepository struct {
	mu     sync.RWMutex
	slots  map[string]slot.Slot
	byDate map[string]map[string]struct{}
}

func NewSlotMemoryRepository() *SlotMemoryRepository {
	return &SlotMemoryRepository{
		slots:  make(map[string]slot.Slot),
		byDate: make(map[string]map[string]struct{}),
	}
}

// ===============================
// Writes
// ===============================

func (r *SlotMemoryRepository) Save(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s = r.put(ensureID(s))
	return cloneSlot(s), nil
}

func (r *SlotMemoryRepository) SaveMany(ctx context.Context, slots []slot.Slot) ([]slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]slot.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, cloneSlot(r.put(ensureID(s))))
	}
	return out, nil
}

func (r *SlotMemoryRepository) put(s slot.Slot) slot.Slot {
	if prev, ok := r.slots[s.ID]; ok && prev.Date != s.Date {
		r.unindex(prev)
	}

	s = cloneSlot(s)
	r.slots[s.ID] = s

	ids, ok := r.byDate[s.Date]
	if !ok {
		ids = make(map[string]struct{})
		r.byDate[s.Date] = ids
	}
	ids[s.ID] = struct{}{}
	return s
}

func (r *SlotMemoryRepository) unindex(s slot.Slot) {
	ids := r.byDate[s.Date]
	delete(ids, s.ID)
	if len(ids) == 0 {
		delete(r.byDate, s.Date)
	}
}

func (r *SlotMemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return false, nil
	}
	delete(r.slots, id)
	r.unindex(s)
	return true, nil
}

func (r *SlotMemoryRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byDate[date]
	for id := range ids {
		delete(r.slots, id)
	}
	delete(r.byDate, date)
	return len(ids), nil
}

func (r *SlotMemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots = make(map[string]slot.Slot)
	r.byDate = make(map[string]map[string]struct{})
	return nil
}

// ===============================
// Reads
// ===============================

func (r *SlotMemoryRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	s = cloneSlot(s)
	return &s, nil
}

func (r *SlotMemoryRepository) GetByDate(ctx context.Context, date string) ([]slot.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.onDate(date), nil
}

func (r *SlotMemoryRepository) onDate(date string) []slot.Slot {
	ids := r.byDate[date]
	out := make([]slot.Slot, 0, len(ids))
	for id := range ids {
		out = append(out, cloneSlot(r.slots[id]))
	}
	sortSlots(out)
	return out
}

func (r *SlotMemoryRepository) GetByDateRange(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]slot.Slot, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filtered(startDate, endDate), nil
}

func (r *SlotMemoryRepository) filtered(startDate, endDate string) []slot.Slot {
	out := make([]slot.Slot, 0)
	for date, ids := range r.byDate {
		if !inDateRange(date, startDate, endDate) {
			continue
		}
		for id := range ids {
			out = append(out, cloneSlot(r.slots[id]))
		}
	}
	sortSlots(out)
	return out
}

func (r *SlotMemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.slots[id]
	return ok, nil
}

func (r *SlotMemoryRepository) GetAll(ctx context.Context, opts slot.QueryOptions) ([]slot.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.filtered(opts.StartDate, opts.EndDate), opts.Offset, opts.Limit), nil
}

func (r *SlotMemoryRepository) Count(ctx context.Context, date string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if date == "" {
		return len(r.slots), nil
	}
	return len(r.byDate[date]), nil
}

func (r *SlotMemoryRepository) FindOverlappingSlots(
	ctx context.Context,
	date string,
	startTime string,
	endTime string,
	excludeID string,
) ([]slot.Slot, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	probe := slot.Slot{Date: date, StartTime: startTime, EndTime: endTime}
	return slot.FilterOverlapping(r.onDate(date), probe, excludeID), nil
}

// Compile-time check
var (
	_ slot.Repository = (*SlotMemoryRepository)(nil)
	_ slot.BatchSaver = (*SlotMemoryRepository)(nil)
)
