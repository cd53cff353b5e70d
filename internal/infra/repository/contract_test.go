package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// runContract checks the behaviour every storage adapter must share.
// newRepo must return an empty repository.
func runContract(t *testing.T, newRepo func(t *testing.T) slot.Repository) {
	t.Helper()
	ctx := context.Background()

	save := func(t *testing.T, r slot.Repository, date, start, end string) slot.Slot {
		t.Helper()
		s, err := r.Save(ctx, slot.Slot{Date: date, StartTime: start, EndTime: end})
		require.NoError(t, err)
		require.NotEmpty(t, s.ID)
		return s
	}

	t.Run("save and get", func(t *testing.T) {
		r := newRepo(t)

		saved, err := r.Save(ctx, slot.Slot{
			ID:        "7f1c9a52-0b3e-4c55-9d0e-111111111111",
			Date:      "2025-03-10",
			StartTime: "09:00",
			EndTime:   "10:00",
			Metadata:  slot.Metadata{"notes": "hello"},
		})
		require.NoError(t, err)

		got, err := r.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, saved.ID, got.ID)
		assert.Equal(t, "2025-03-10", got.Date)
		assert.Equal(t, "09:00", got.StartTime)
		assert.Equal(t, "10:00", got.EndTime)
		assert.Equal(t, "hello", got.Metadata["notes"])
	})

	t.Run("absent id", func(t *testing.T) {
		r := newRepo(t)

		got, err := r.GetByID(ctx, "999999")
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err := r.Exists(ctx, "999999")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = r.Delete(ctx, "999999")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get by date is ordered and repeatable", func(t *testing.T) {
		r := newRepo(t)
		save(t, r, "2025-03-10", "14:00", "15:00")
		save(t, r, "2025-03-10", "09:00", "10:00")
		save(t, r, "2025-03-10", "11:00", "11:30")
		save(t, r, "2025-03-11", "08:00", "09:00")

		first, err := r.GetByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Equal(t, "09:00", first[0].StartTime)
		assert.Equal(t, "11:00", first[1].StartTime)
		assert.Equal(t, "14:00", first[2].StartTime)

		second, err := r.GetByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		empty, err := r.GetByDate(ctx, "2025-04-01")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		r := newRepo(t)
		save(t, r, "2025-03-09", "09:00", "10:00")
		save(t, r, "2025-03-12", "09:00", "10:00")
		save(t, r, "2025-03-10", "10:00", "11:00")
		save(t, r, "2025-03-10", "08:00", "09:00")
		save(t, r, "2025-03-13", "09:00", "10:00")

		got, err := r.GetByDateRange(ctx, "2025-03-10", "2025-03-12")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "2025-03-10", got[0].Date)
		assert.Equal(t, "08:00", got[0].StartTime)
		assert.Equal(t, "2025-03-10", got[1].Date)
		assert.Equal(t, "2025-03-12", got[2].Date)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		s := save(t, r, "2025-03-10", "09:00", "10:00")

		ok, err := r.Exists(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := r.GetByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("delete by date", func(t *testing.T) {
		r := newRepo(t)
		save(t, r, "2025-03-10", "09:00", "10:00")
		save(t, r, "2025-03-10", "10:00", "11:00")
		keep := save(t, r, "2025-03-11", "09:00", "10:00")

		n, err := r.DeleteByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = r.DeleteByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		total, err := r.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		ok, err := r.Exists(ctx, keep.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("get all and count", func(t *testing.T) {
		r := newRepo(t)
		save(t, r, "2025-03-10", "09:00", "10:00")
		save(t, r, "2025-03-10", "10:00", "11:00")
		save(t, r, "2025-03-11", "09:00", "10:00")
		save(t, r, "2025-03-12", "09:00", "10:00")

		all, err := r.GetAll(ctx, slot.QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, all, 4)

		page, err := r.GetAll(ctx, slot.QueryOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "10:00", page[0].StartTime)
		assert.Equal(t, "2025-03-11", page[1].Date)

		tail, err := r.GetAll(ctx, slot.QueryOptions{Offset: 3})
		require.NoError(t, err)
		require.Len(t, tail, 1)
		assert.Equal(t, "2025-03-12", tail[0].Date)

		bounded, err := r.GetAll(ctx, slot.QueryOptions{StartDate: "2025-03-11"})
		require.NoError(t, err)
		assert.Len(t, bounded, 2)

		n, err := r.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		n, err = r.Count(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("clear", func(t *testing.T) {
		r := newRepo(t)
		save(t, r, "2025-03-10", "09:00", "10:00")
		save(t, r, "2025-03-11", "09:00", "10:00")

		require.NoError(t, r.Clear(ctx))

		n, err := r.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("overlap query matches overlap math", func(t *testing.T) {
		r := newRepo(t)
		a := save(t, r, "2025-03-10", "09:00", "10:00")
		save(t, r, "2025-03-10", "10:00", "11:00")
		c := save(t, r, "2025-03-10", "11:00", "12:30")
		save(t, r, "2025-03-11", "09:00", "12:00")

		probes := []struct {
			start, end, exclude string
		}{
			{"09:30", "10:00", ""},
			{"08:00", "09:00", ""},
			{"09:30", "11:30", ""},
			{"00:00", "23:30", a.ID},
			{"12:00", "13:00", c.ID},
		}

		all, err := r.GetByDate(ctx, "2025-03-10")
		require.NoError(t, err)

		for _, p := range probes {
			got, err := r.FindOverlappingSlots(ctx, "2025-03-10", p.start, p.end, p.exclude)
			require.NoError(t, err)

			want := slot.FilterOverlapping(all, slot.Slot{Date: "2025-03-10", StartTime: p.start, EndTime: p.end}, p.exclude)
			assert.Equal(t, ids(want), ids(got), "probe %s-%s", p.start, p.end)
		}
	})

	t.Run("replace moves date", func(t *testing.T) {
		r := newRepo(t)
		s := save(t, r, "2025-03-10", "09:00", "10:00")

		moved := s
		moved.Date = "2025-03-12"
		moved.StartTime = "13:00"
		moved.EndTime = "14:00"
		_, err := r.Save(ctx, moved)
		require.NoError(t, err)

		old, err := r.GetByDate(ctx, "2025-03-10")
		require.NoError(t, err)
		assert.Empty(t, old)

		now, err := r.GetByDate(ctx, "2025-03-12")
		require.NoError(t, err)
		require.Len(t, now, 1)
		assert.Equal(t, s.ID, now[0].ID)
		assert.Equal(t, "13:00", now[0].StartTime)

		n, err := r.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("batch save", func(t *testing.T) {
		r := newRepo(t)
		b, ok := r.(slot.BatchSaver)
		if !ok {
			t.Skip("adapter has no batch save")
		}

		out, err := b.SaveMany(ctx, []slot.Slot{
			{Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"},
			{Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"},
			{Date: "2025-03-11", StartTime: "09:00", EndTime: "10:00"},
		})
		require.NoError(t, err)
		require.Len(t, out, 3)

		n, err := r.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		for _, s := range out {
			got, err := r.GetByID(ctx, s.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, s.StartTime, got.StartTime)
		}
	})
}

func ids(slots []slot.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.ID)
	}
	return out
}
