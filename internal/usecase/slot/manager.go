package slot

import (
	"context"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/interview-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/lock"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
)

// Auditor receives booking events. *audit.Dispatcher implements it.
type Auditor interface {
	Dispatch(ev audit.Event)
}

type ManagerOptions struct {
	// AllowOverlap disables conflict checks and booking locks.
	AllowOverlap bool

	// Locker serializes check-then-act per scope and date. Defaults to an
	// in-process lock; lock.Noop disables it.
	Locker lock.Locker

	Audit   Auditor
	Metrics *telemetry.Metrics
	Logger  zerolog.Logger

	// NewID generates ids for fresh bookings. Defaults to uuid.NewString.
	NewID func() string
}

// Manager is the booking façade over one storage adapter. It owns
// validation and the conflict policy; durability belongs to the adapter.
type Manager struct {
	repo         domain.Repository
	allowOverlap bool
	locker       lock.Locker
	audit        Auditor
	metrics      *telemetry.Metrics
	log          zerolog.Logger
	newID        func() string
	scope        string
}

func NewManager(repo domain.Repository, opts ManagerOptions) *Manager {
	if opts.Locker == nil {
		opts.Locker = lock.NewLocal()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	scope := ""
	if s, ok := repo.(domain.Scoped); ok {
		scope = s.Scope()
	}

	return &Manager{
		repo:         repo,
		allowOverlap: opts.AllowOverlap,
		locker:       opts.Locker,
		audit:        opts.Audit,
		metrics:      opts.Metrics,
		log:          opts.Logger.With().Str("component", "slot_manager").Str("scope", scope).Logger(),
		newID:        opts.NewID,
		scope:        scope,
	}
}

func (m *Manager) AllowsOverlap() bool { return m.allowOverlap }

func (m *Manager) Scope() string { return m.scope }

// ===============================
// Helpers
// ===============================

// advance records one lifecycle step of a slot.
func (m *Manager) advance(id string, from, to domain.State) domain.State {
	if err := domain.CanTransition(from, to); err != nil {
		m.log.Error().Err(err).Str("slot_id", id).Msg("lifecycle violation")
		return from
	}
	m.log.Debug().Str("slot_id", id).Str("from", string(from)).Str("to", string(to)).Msg("slot state")
	return to
}

func (m *Manager) advanceAll(slots []domain.Slot, from, to domain.State) {
	for _, s := range slots {
		m.advance(s.ID, from, to)
	}
}

// lockDates takes the booking lock of every distinct date in sorted order,
// so two batches touching the same dates cannot deadlock.
func (m *Manager) lockDates(ctx context.Context, dates []string) (func(), error) {
	if m.allowOverlap {
		return func() {}, nil
	}

	uniq := make(map[string]struct{}, len(dates))
	sorted := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := uniq[d]; ok {
			continue
		}
		uniq[d] = struct{}{}
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	unlocks := make([]func(), 0, len(sorted))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, d := range sorted {
		unlock, err := m.locker.Lock(ctx, lock.Key(m.scope, d))
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

func (m *Manager) ownerID() *uint {
	n, err := strconv.ParseUint(m.scope, 10, 0)
	if err != nil {
		return nil
	}
	id := uint(n)
	return &id
}

func (m *Manager) dispatch(action, entityID string, metadata any) {
	if m.audit == nil {
		return
	}
	m.audit.Dispatch(audit.Event{
		OwnerID:  m.ownerID(),
		Action:   action,
		Entity:   "slot",
		EntityID: entityID,
		Metadata: metadata,
	})
}

func (m *Manager) validationFailed(err error) error {
	m.metrics.ValidationFailed(string(domain.ValidationField(err)))
	return err
}

func invalidRange(msg string) error {
	return &domain.ValidationError{Field: domain.FieldRange, Message: msg}
}
