package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
)

// Instrumented wraps a Repository with latency and error metrics. It always
// exposes the optional capabilities, falling back to plain calls when the
// wrapped adapter lacks them.
type Instrumented struct {
	next    slot.Repository
	backend string
	metrics *telemetry.Metrics
	log     zerolog.Logger
}

func NewInstrumented(next slot.Repository, backend string, metrics *telemetry.Metrics) *Instrumented {
	return &Instrumented{next: next, backend: backend, metrics: metrics, log: zerolog.Nop()}
}

// WithLogger sets the logger used to report interrupted batch writes.
func (r *Instrumented) WithLogger(log zerolog.Logger) *Instrumented {
	r.log = log.With().Str("component", "slot_storage").Str("backend", r.backend).Logger()
	return r
}

func (r *Instrumented) Unwrap() slot.Repository { return r.next }

func (r *Instrumented) observe(op string, started time.Time, err error) {
	r.metrics.ObserveStorage(r.backend, op, started, err)
}

func (r *Instrumented) Save(ctx context.Context, s slot.Slot) (out slot.Slot, err error) {
	defer func(t time.Time) { r.observe("save", t, err) }(time.Now())
	return r.next.Save(ctx, s)
}

func (r *Instrumented) GetByID(ctx context.Context, id string) (out *slot.Slot, err error) {
	defer func(t time.Time) { r.observe("get_by_id", t, err) }(time.Now())
	return r.next.GetByID(ctx, id)
}

func (r *Instrumented) GetByDate(ctx context.Context, date string) (out []slot.Slot, err error) {
	defer func(t time.Time) { r.observe("get_by_date", t, err) }(time.Now())
	return r.next.GetByDate(ctx, date)
}

func (r *Instrumented) GetByDateRange(ctx context.Context, startDate, endDate string) (out []slot.Slot, err error) {
	defer func(t time.Time) { r.observe("get_by_date_range", t, err) }(time.Now())
	return r.next.GetByDateRange(ctx, startDate, endDate)
}

func (r *Instrumented) Delete(ctx context.Context, id string) (ok bool, err error) {
	defer func(t time.Time) { r.observe("delete", t, err) }(time.Now())
	return r.next.Delete(ctx, id)
}

func (r *Instrumented) DeleteByDate(ctx context.Context, date string) (n int, err error) {
	defer func(t time.Time) { r.observe("delete_by_date", t, err) }(time.Now())
	return r.next.DeleteByDate(ctx, date)
}

func (r *Instrumented) Exists(ctx context.Context, id string) (ok bool, err error) {
	defer func(t time.Time) { r.observe("exists", t, err) }(time.Now())
	return r.next.Exists(ctx, id)
}

func (r *Instrumented) GetAll(ctx context.Context, opts slot.QueryOptions) (out []slot.Slot, err error) {
	defer func(t time.Time) { r.observe("get_all", t, err) }(time.Now())
	return r.next.GetAll(ctx, opts)
}

func (r *Instrumented) Count(ctx context.Context, date string) (n int, err error) {
	defer func(t time.Time) { r.observe("count", t, err) }(time.Now())
	return r.next.Count(ctx, date)
}

func (r *Instrumented) Clear(ctx context.Context) (err error) {
	defer func(t time.Time) { r.observe("clear", t, err) }(time.Now())
	return r.next.Clear(ctx)
}

func (r *Instrumented) FindOverlappingSlots(
	ctx context.Context,
	date string,
	startTime string,
	endTime string,
	excludeID string,
) (out []slot.Slot, err error) {

	defer func(t time.Time) { r.observe("find_overlapping", t, err) }(time.Now())
	return r.next.FindOverlappingSlots(ctx, date, startTime, endTime, excludeID)
}

// -------- Optional capabilities --------

// SaveMany forwards to the wrapped BatchSaver, or saves one by one. In the
// sequential case a failure mid-batch leaves the earlier writes in place.
func (r *Instrumented) SaveMany(ctx context.Context, slots []slot.Slot) (out []slot.Slot, err error) {
	defer func(t time.Time) { r.observe("save_many", t, err) }(time.Now())

	if b, ok := r.next.(slot.BatchSaver); ok {
		return b.SaveMany(ctx, slots)
	}

	out = make([]slot.Slot, 0, len(slots))
	for _, s := range slots {
		saved, err := r.next.Save(ctx, s)
		if err != nil {
			r.log.Warn().Err(err).Int("written", len(out)).Int("batch", len(slots)).
				Msg("batch interrupted, earlier slots kept")
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (r *Instrumented) Scope() string {
	if s, ok := r.next.(slot.Scoped); ok {
		return s.Scope()
	}
	return ""
}

func (r *Instrumented) DailyStats(ctx context.Context, startDate, endDate string) (out []slot.DailyStat, err error) {
	defer func(t time.Time) { r.observe("daily_stats", t, err) }(time.Now())

	if p, ok := r.next.(slot.DailyStatsProvider); ok {
		return p.DailyStats(ctx, startDate, endDate)
	}

	slots, err := r.next.GetByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return slot.ComputeDailyStats(slots), nil
}

var (
	_ slot.Repository         = (*Instrumented)(nil)
	_ slot.BatchSaver         = (*Instrumented)(nil)
	_ slot.Scoped             = (*Instrumented)(nil)
	_ slot.DailyStatsProvider = (*Instrumented)(nil)
)
