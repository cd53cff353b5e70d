package slot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/interview-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
)

const day = "2025-03-10"

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

func newManager(t *testing.T, opts ManagerOptions) (*Manager, *repository.SlotMemoryRepository) {
	t.Helper()
	repo := repository.NewSlotMemoryRepository()
	opts.Logger = zerolog.Nop()
	return NewManager(repo, opts), repo
}

func in(date, start, end string) domain.CreateInput {
	return domain.CreateInput{Date: date, StartTime: start, EndTime: end}
}

// ===============================
// Book
// ===============================

func TestBookThenGet(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	ranges := [][2]string{
		{"00:00", "00:30"},
		{"01:00", "03:30"},
		{"09:00", "10:00"},
		{"23:00", "23:30"},
	}
	for _, r := range ranges {
		s, err := m.Book(ctx, domain.CreateInput{
			Date: day, StartTime: r[0], EndTime: r[1],
			Metadata: domain.Metadata{"notes": "x"},
		})
		require.NoError(t, err, r)

		got, err := m.Get(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, s, *got)
	}
}

func TestBookValidationFailures(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	m, repo := newManager(t, ManagerOptions{Metrics: metrics})

	tests := []struct {
		start, end string
		field      domain.Field
	}{
		{"10:00", "10:00", domain.FieldRange},
		{"11:00", "10:00", domain.FieldRange},
		{"09:15", "10:00", domain.FieldStartTime},
		{"09:00", "10:45", domain.FieldEndTime},
		{"9am", "10:00", domain.FieldStartTime},
	}
	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			_, err := m.Book(ctx, in(day, tt.start, tt.end))
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.field, domain.ValidationField(err))
		})
	}

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "validation failures never reach storage")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("range")))
}

func TestBookConflictScenario(t *testing.T) {
	ctx := context.Background()
	rec := &recordingAuditor{}
	m, repo := newManager(t, ManagerOptions{Audit: rec})

	first, err := m.Book(ctx, in("2025-03-10", "09:00", "10:00"))
	require.NoError(t, err)

	_, err = m.Book(ctx, in("2025-03-10", "09:30", "10:30"))
	require.Error(t, err)

	ce, ok := domain.AsConflict(err)
	require.True(t, ok)
	require.Len(t, ce.Conflicts, 1)
	assert.Equal(t, first.ID, ce.Conflicts[0].ID)

	details := ce.Details()
	require.Len(t, details, 1)
	assert.Equal(t, 30, details[0].OverlapMinutes)

	n, err := repo.Count(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{EventBooked, EventConflictRejected}, rec.actions())
}

func TestBookTouchingRangesDoNotConflict(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	_, err := m.Book(ctx, in(day, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = m.Book(ctx, in(day, "10:00", "11:00"))
	require.NoError(t, err)
	_, err = m.Book(ctx, in(day, "08:00", "09:00"))
	require.NoError(t, err)
	_, err = m.Book(ctx, in("2025-03-11", "09:00", "10:00"))
	require.NoError(t, err)
}

func TestBookAllowOverlap(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{AllowOverlap: true})

	_, err := m.Book(ctx, in(day, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = m.Book(ctx, in(day, "09:30", "10:30"))
	require.NoError(t, err)

	conflicts, err := m.FindConflicts(ctx, day)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 30, conflicts[0].OverlapMinutes)
}

func TestBookConcurrentSameRange(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager(t, ManagerOptions{})

	var (
		wg        sync.WaitGroup
		successes int32
		conflicts int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Book(ctx, in(day, "09:00", "10:00"))
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case domain.IsConflict(err):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(19), conflicts)

	n, err := repo.Count(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

type brokenRepo struct {
	*repository.SlotMemoryRepository
	err error
}

func (r brokenRepo) Save(context.Context, domain.Slot) (domain.Slot, error) {
	return domain.Slot{}, r.err
}

func TestBookPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewManager(brokenRepo{repository.NewSlotMemoryRepository(), boom}, ManagerOptions{})

	_, err := m.Book(context.Background(), in(day, "09:00", "10:00"))
	require.ErrorIs(t, err, boom)
	assert.False(t, domain.IsConflict(err))
	assert.False(t, domain.IsValidation(err))
}

func TestBookUsesInjectedIDs(t *testing.T) {
	var n int
	m, _ := newManager(t, ManagerOptions{NewID: func() string {
		n++
		return fmt.Sprintf("slot-%d", n)
	}})

	s, err := m.Book(context.Background(), in(day, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "slot-1", s.ID)
}

// ===============================
// BookMany
// ===============================

func TestBookManyInternalOverlapFailsEntirely(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager(t, ManagerOptions{})

	_, err := m.BookMany(ctx, []domain.CreateInput{
		in(day, "09:00", "10:00"),
		in(day, "13:00", "14:00"),
		in(day, "09:30", "11:00"),
	})
	require.Error(t, err)

	ce, ok := domain.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, "09:30", ce.Candidate.StartTime)
	require.Len(t, ce.Conflicts, 1)
	assert.Equal(t, "09:00", ce.Conflicts[0].StartTime)

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBookManyConflictWithStorage(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager(t, ManagerOptions{})

	_, err := m.Book(ctx, in("2025-03-11", "10:00", "11:00"))
	require.NoError(t, err)

	_, err = m.BookMany(ctx, []domain.CreateInput{
		in(day, "09:00", "10:00"),
		in("2025-03-11", "10:30", "11:30"),
	})
	require.True(t, domain.IsConflict(err))

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBookManyValidatesEverythingFirst(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager(t, ManagerOptions{})

	_, err := m.BookMany(ctx, []domain.CreateInput{
		in(day, "09:00", "10:00"),
		in("2025-02-30", "09:00", "10:00"),
	})
	require.Error(t, err)
	assert.Equal(t, domain.FieldDate, domain.ValidationField(err))
	assert.Contains(t, err.Error(), "slots[1]")

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// sequentialRepo hides the batch capability.
type sequentialRepo struct {
	domain.Repository
}

func TestBookManySuccess(t *testing.T) {
	ctx := context.Background()

	for name, repo := range map[string]domain.Repository{
		"batch":      repository.NewSlotMemoryRepository(),
		"sequential": sequentialRepo{repository.NewSlotMemoryRepository()},
	} {
		t.Run(name, func(t *testing.T) {
			rec := &recordingAuditor{}
			m := NewManager(repo, ManagerOptions{Audit: rec})

			out, err := m.BookMany(ctx, []domain.CreateInput{
				in(day, "09:00", "10:00"),
				in(day, "10:00", "11:00"),
				in("2025-03-11", "09:00", "10:00"),
			})
			require.NoError(t, err)
			require.Len(t, out, 3)

			for _, s := range out {
				got, err := m.GetOrThrow(ctx, s.ID)
				require.NoError(t, err)
				assert.Equal(t, s.Date, got.Date)
			}
			assert.Equal(t, []string{EventBatchBooked}, rec.actions())
		})
	}

	m, _ := newManager(t, ManagerOptions{})
	out, err := m.BookMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

// ===============================
// Queries and cancellation
// ===============================

func TestCancel(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	m, _ := newManager(t, ManagerOptions{Metrics: metrics})

	s, err := m.Book(ctx, in(day, "09:00", "10:00"))
	require.NoError(t, err)

	ok, err := m.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = m.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = m.CancelOrThrow(ctx, s.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = m.GetOrThrow(ctx, s.ID)
	assert.True(t, domain.IsNotFound(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SlotsCancelled))
}

func TestCancelByDate(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	_, err := m.BookMany(ctx, []domain.CreateInput{
		in(day, "09:00", "10:00"),
		in(day, "11:00", "12:00"),
		in("2025-03-11", "09:00", "10:00"),
	})
	require.NoError(t, err)

	n, err := m.CancelByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.CancelByDate(ctx, "10/03/2025")
	assert.Equal(t, domain.FieldDate, domain.ValidationField(err))
}

func TestGetByDateRejectsBadDates(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	_, err := m.GetByDate(ctx, "2025-13-01")
	assert.Equal(t, domain.FieldDate, domain.ValidationField(err))

	_, err = m.GetByDateRange(ctx, "2025-03-12", "2025-03-10")
	assert.Equal(t, domain.FieldRange, domain.ValidationField(err))

	got, err := m.GetByDateRange(ctx, "2025-03-10", "2025-03-12")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDateOnlyOperationsTrimInput(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	_, err := m.Book(ctx, in(" "+day+" ", "09:00", "10:00"))
	require.NoError(t, err)

	got, err := m.GetByDate(ctx, " "+day+" ")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = m.GetByDateRange(ctx, " "+day, day+" ")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	free, err := m.GetAvailableSlots(ctx, day+" ", domain.AvailabilityOptions{StartHour: 9, EndHour: 11})
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeRange{{StartTime: "10:00", EndTime: "11:00"}}, free)

	n, err := m.CancelByDate(ctx, " "+day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	_, err := m.Book(ctx, in(day, "09:00", "10:00"))
	require.NoError(t, err)

	ok, err := m.IsAvailable(ctx, day, "09:30", "10:30")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.IsAvailable(ctx, day, "10:00", "10:30")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsAvailable(ctx, day, "10:15", "10:30")
	require.NoError(t, err)
	assert.False(t, ok, "invalid input is unavailable, not an error")
}

func TestGetConflictsExcludesSelf(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{AllowOverlap: true})

	a, err := m.Book(ctx, in(day, "09:00", "10:00"))
	require.NoError(t, err)
	b, err := m.Book(ctx, in(day, "09:30", "11:00"))
	require.NoError(t, err)

	got, err := m.GetConflicts(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestGetPage(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, ManagerOptions{})

	for _, start := range []string{"09:00", "10:00", "11:00", "12:00", "13:00"} {
		_, err := m.Book(ctx, in(day, start, domain.MinutesToTime(domain.TimeToIndex(start)*30+30)))
		require.NoError(t, err)
	}

	page, err := m.GetPage(ctx, domain.QueryOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Slots, 2)
	assert.Equal(t, "11:00", page.Slots[0].StartTime)
	assert.True(t, page.HasMore)

	last, err := m.GetPage(ctx, domain.QueryOptions{Limit: 2, Offset: 4, StartDate: day, EndDate: day})
	require.NoError(t, err)
	assert.Equal(t, 5, last.Total)
	assert.False(t, last.HasMore)

	_, err = m.GetPage(ctx, domain.QueryOptions{Limit: -1})
	assert.True(t, domain.IsValidation(err))
}
