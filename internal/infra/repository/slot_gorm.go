package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/models"
)

type GormOptions struct {
	// OwnerID scopes every query to one interviewer. Zero means unscoped.
	OwnerID uint
	Mapper  SlotRowMapper
}

// SlotGormRepository stores slots in the host application's
// availability_slots table. Ids are the table's autoincrement keys.
type SlotGormRepository struct {
	db      *gorm.DB
	ownerID uint
	mapper  SlotRowMapper
}

func NewSlotGormRepository(db *gorm.DB, opts GormOptions) *SlotGormRepository {
	if opts.Mapper == nil {
		opts.Mapper = DefaultSlotMapper{}
	}
	return &SlotGormRepository{
		db:      db,
		ownerID: opts.OwnerID,
		mapper:  opts.Mapper,
	}
}

func (r *SlotGormRepository) Scope() string {
	if r.ownerID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(r.ownerID), 10)
}

// scoped starts a query on the table, limited to the owner when set.
func (r *SlotGormRepository) scoped(ctx context.Context) *gorm.DB {
	return r.scopedOn(r.db.WithContext(ctx))
}

func (r *SlotGormRepository) scopedOn(tx *gorm.DB) *gorm.DB {
	q := tx.Model(&models.AvailabilitySlot{})
	if r.ownerID != 0 {
		q = q.Where("interviewer_id = ?", r.ownerID)
	}
	return q
}

func (r *SlotGormRepository) find(q *gorm.DB) ([]slot.Slot, error) {
	var rows []models.AvailabilitySlot
	if err := q.
		Order("date ASC, start_time ASC, end_time ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]slot.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.mapper.FromRow(row))
	}
	return out, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *SlotGormRepository) Save(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	return r.saveOn(r.db.WithContext(ctx), s)
}

func (r *SlotGormRepository) saveOn(tx *gorm.DB, s slot.Slot) (slot.Slot, error) {
	row, err := r.mapper.ToRow(s, r.ownerID)
	if err != nil {
		return slot.Slot{}, err
	}

	if row.ID != 0 {
		// o id existe em outro escopo? então não é nosso
		var existing models.AvailabilitySlot
		err := r.scopedOn(tx).Where("id = ?", row.ID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row.ID = 0
		case err != nil:
			return slot.Slot{}, err
		default:
			row.CreatedAt = existing.CreatedAt
		}
	}

	if row.ID == 0 {
		err = tx.Create(&row).Error
	} else {
		err = tx.Save(&row).Error
	}
	if err != nil {
		return slot.Slot{}, err
	}
	return r.mapper.FromRow(row), nil
}

// SaveMany writes the batch in one transaction.
func (r *SlotGormRepository) SaveMany(ctx context.Context, slots []slot.Slot) ([]slot.Slot, error) {
	out := make([]slot.Slot, 0, len(slots))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range slots {
			saved, err := r.saveOn(tx, s)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SlotGormRepository) Delete(ctx context.Context, id string) (bool, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return false, nil
	}

	res := r.scoped(ctx).Where("id = ?", rowID).Delete(&models.AvailabilitySlot{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SlotGormRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	d, err := parseDate(date)
	if err != nil {
		return 0, err
	}

	res := r.scoped(ctx).Where("date = ?", d).Delete(&models.AvailabilitySlot{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *SlotGormRepository) Clear(ctx context.Context) error {
	// gorm recusa DELETE sem WHERE
	return r.scoped(ctx).Where("1 = 1").Delete(&models.AvailabilitySlot{}).Error
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *SlotGormRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, nil
	}

	var row models.AvailabilitySlot
	err := r.scoped(ctx).Where("id = ?", rowID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s := r.mapper.FromRow(row)
	return &s, nil
}

func (r *SlotGormRepository) GetByDate(ctx context.Context, date string) ([]slot.Slot, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return r.find(r.scoped(ctx).Where("date = ?", d))
}

func (r *SlotGormRepository) GetByDateRange(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]slot.Slot, error) {

	return r.GetAll(ctx, slot.QueryOptions{StartDate: startDate, EndDate: endDate})
}

func (r *SlotGormRepository) GetAll(ctx context.Context, opts slot.QueryOptions) ([]slot.Slot, error) {
	q := r.scoped(ctx)

	if opts.StartDate != "" {
		d, err := parseDate(opts.StartDate)
		if err != nil {
			return nil, err
		}
		q = q.Where("date >= ?", d)
	}
	if opts.EndDate != "" {
		d, err := parseDate(opts.EndDate)
		if err != nil {
			return nil, err
		}
		q = q.Where("date <= ?", d)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
		if opts.Limit <= 0 {
			// sqlite exige LIMIT junto com OFFSET
			q = q.Limit(-1)
		}
	}
	return r.find(q)
}

func (r *SlotGormRepository) Exists(ctx context.Context, id string) (bool, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return false, nil
	}

	var n int64
	if err := r.scoped(ctx).Where("id = ?", rowID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SlotGormRepository) Count(ctx context.Context, date string) (int, error) {
	q := r.scoped(ctx)
	if date != "" {
		d, err := parseDate(date)
		if err != nil {
			return 0, err
		}
		q = q.Where("date = ?", d)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// FindOverlappingSlots runs the half-open predicate in the database. HH:MM
// strings compare correctly as text because they are zero-padded.
func (r *SlotGormRepository) FindOverlappingSlots(
	ctx context.Context,
	date string,
	startTime string,
	endTime string,
	excludeID string,
) ([]slot.Slot, error) {

	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	q := r.scoped(ctx).Where(
		"date = ? AND start_time < ? AND end_time > ?",
		d, endTime, startTime,
	)
	if rowID, ok := parseRowID(excludeID); ok {
		q = q.Where("id <> ?", rowID)
	}
	return r.find(q)
}

// Compile-time check
var (
	_ slot.Repository = (*SlotGormRepository)(nil)
	_ slot.BatchSaver = (*SlotGormRepository)(nil)
	_ slot.Scoped     = (*SlotGormRepository)(nil)
)
