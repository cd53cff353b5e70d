package slot

import "context"

// Repository is the storage adapter contract. Every backend implements it
// with the same semantics; FindOverlappingSlots must match filtering
// GetByDate through IsOverlapping.
type Repository interface {
	Save(ctx context.Context, s Slot) (Slot, error)

	GetByID(ctx context.Context, id string) (*Slot, error)

	GetByDate(ctx context.Context, date string) ([]Slot, error)

	GetByDateRange(
		ctx context.Context,
		startDate string,
		endDate string,
	) ([]Slot, error)

	Delete(ctx context.Context, id string) (bool, error)

	DeleteByDate(ctx context.Context, date string) (int, error)

	Exists(ctx context.Context, id string) (bool, error)

	GetAll(ctx context.Context, opts QueryOptions) ([]Slot, error)

	// Count counts slots on date, or every slot when date is "".
	Count(ctx context.Context, date string) (int, error)

	Clear(ctx context.Context) error

	FindOverlappingSlots(
		ctx context.Context,
		date string,
		startTime string,
		endTime string,
		excludeID string,
	) ([]Slot, error)
}

// -------- Optional capabilities --------

// BatchSaver persists a batch in one backend operation, atomically where
// the backend supports it.
type BatchSaver interface {
	SaveMany(ctx context.Context, slots []Slot) ([]Slot, error)
}

// Scoped exposes the partition an adapter is bound to (e.g. one interviewer),
// used to key booking locks.
type Scoped interface {
	Scope() string
}

type DailyStatsProvider interface {
	DailyStats(
		ctx context.Context,
		startDate string,
		endDate string,
	) ([]DailyStat, error)
}
