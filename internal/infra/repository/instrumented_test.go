package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
)

func TestInstrumentedContract(t *testing.T) {
	runContract(t, func(t *testing.T) slot.Repository {
		return NewInstrumented(NewSlotMemoryRepository(), "memory", telemetry.NewMetrics(prometheus.NewRegistry()))
	})
}

// plainRepo hides every optional capability of the memory adapter.
type plainRepo struct {
	slot.Repository
}

type failingRepo struct {
	slot.Repository
}

func (failingRepo) Count(context.Context, string) (int, error) {
	return 0, errors.New("connection reset")
}

func TestInstrumentedFallbacks(t *testing.T) {
	ctx := context.Background()
	r := NewInstrumented(plainRepo{NewSlotMemoryRepository()}, "plain", nil)

	out, err := r.SaveMany(ctx, []slot.Slot{
		{Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2025-03-11", StartTime: "09:00", EndTime: "11:00"},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	stats, err := r.DailyStats(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, []slot.DailyStat{
		{Date: "2025-03-10", SlotCount: 1, TotalMinutes: 60},
		{Date: "2025-03-11", SlotCount: 1, TotalMinutes: 120},
	}, stats)

	assert.Equal(t, "", r.Scope())
}

// flakySaveRepo fails every Save after the first `ok` ones.
type flakySaveRepo struct {
	slot.Repository
	ok    int
	calls int
}

func (r *flakySaveRepo) Save(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	r.calls++
	if r.calls > r.ok {
		return slot.Slot{}, errors.New("disk full")
	}
	return r.Repository.Save(ctx, s)
}

func TestInstrumentedLogsInterruptedBatch(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	mem := NewSlotMemoryRepository()
	r := NewInstrumented(&flakySaveRepo{Repository: mem, ok: 1}, "plain", nil).WithLogger(zerolog.New(&buf))

	_, err := r.SaveMany(ctx, []slot.Slot{
		{ID: "a", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"},
		{ID: "b", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"},
	})
	require.EqualError(t, err, "disk full")

	n, err := mem.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"written":1`)
	assert.Contains(t, buf.String(), "batch interrupted")
}

func TestInstrumentedCountsErrors(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())
	r := NewInstrumented(failingRepo{NewSlotMemoryRepository()}, "memory", m)

	_, err := r.Count(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("memory", "count")))

	_, err = r.GetByDate(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("memory", "get_by_date")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StorageDuration))
}
