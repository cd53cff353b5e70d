package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

// PgxDB is the subset of *pgxpool.Pool the adapter needs.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresOptions struct {
	Schema string // default "public"
	Table  string // default "slots"

	SkipAutoCreate bool

	// ExclusionConstraint adds a btree_gist EXCLUDE constraint so the
	// database itself rejects overlapping rows on the same date.
	ExclusionConstraint bool
}

// postgres rejeita mais de 65535 parâmetros por comando
const upsertChunk = 1000

const exclusionViolation = "23P01"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var slotColumns = []string{
	"id",
	"to_char(date, 'YYYY-MM-DD')",
	"to_char(start_time, 'HH24:MI')",
	"to_char(end_time, 'HH24:MI')",
	"metadata",
}

var slotOrder = []string{"date", "start_time", "end_time", "id"}

type SlotPostgresRepository struct {
	db   PgxDB
	opts PostgresOptions

	mu          sync.Mutex
	initialized bool
}

func NewSlotPostgresRepository(db PgxDB, opts PostgresOptions) *SlotPostgresRepository {
	if opts.Schema == "" {
		opts.Schema = "public"
	}
	if opts.Table == "" {
		opts.Table = "slots"
	}
	return &SlotPostgresRepository{db: db, opts: opts}
}

func (r *SlotPostgresRepository) table() string {
	return pgx.Identifier{r.opts.Schema, r.opts.Table}.Sanitize()
}

// --------------------------------------------------
// Schema
// --------------------------------------------------

func (r *SlotPostgresRepository) ddl() []string {
	t := r.table()
	idx := func(suffix string) string {
		return pgx.Identifier{"idx_" + r.opts.Table + "_" + suffix}.Sanitize()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			id VARCHAR(36) PRIMARY KEY,
			date DATE NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			CHECK (end_time > start_time)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("date") + ` ON ` + t + ` (date)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("date_time") + ` ON ` + t + ` (date, start_time, end_time)`,
	}

	if r.opts.ExclusionConstraint {
		name := r.opts.Table + "_no_overlap"
		stmts = append(stmts,
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conname = '%s' AND conrelid = '%s'::regclass
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s
		EXCLUDE USING gist (date WITH =, tsrange(date + start_time, date + end_time) WITH &&);
	END IF;
END $$`, name, strings.ReplaceAll(t, "'", "''"), t, pgx.Identifier{name}.Sanitize()),
		)
	}
	return stmts
}

// Init runs the idempotent DDL once. A failed attempt is retried on the
// next call.
func (r *SlotPostgresRepository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized || r.opts.SkipAutoCreate {
		return nil
	}

	for _, stmt := range r.ddl() {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("slots postgres: init: %w", err)
		}
	}
	r.initialized = true
	return nil
}

func (r *SlotPostgresRepository) DropTable(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(ctx, `DROP TABLE IF EXISTS `+r.table()); err != nil {
		return fmt.Errorf("slots postgres: drop: %w", err)
	}
	r.initialized = false
	return nil
}

// IsExclusionViolation reports whether err came from the no-overlap
// constraint.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}

// --------------------------------------------------
// Parameters
// --------------------------------------------------

func pgClock(hm string) pgtype.Time {
	m := int64(slot.TimeToIndex(hm) * slot.IntervalMinutes)
	return pgtype.Time{Microseconds: m * int64(time.Minute/time.Microsecond), Valid: true}
}

func pgMetadata(m slot.Metadata) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *SlotPostgresRepository) upsertSQL(slots []slot.Slot) (string, []any, error) {
	q := psql.Insert(r.table()).Columns("id", "date", "start_time", "end_time", "metadata")

	for _, s := range slots {
		d, err := parseDate(s.Date)
		if err != nil {
			return "", nil, err
		}
		meta, err := pgMetadata(s.Metadata)
		if err != nil {
			return "", nil, err
		}
		q = q.Values(s.ID, d, pgClock(s.StartTime), pgClock(s.EndTime), meta)
	}

	return q.Suffix(`ON CONFLICT (id) DO UPDATE SET
		date = EXCLUDED.date,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()`).ToSql()
}

func (r *SlotPostgresRepository) listSQL(where sq.Sqlizer, limit, offset int) (string, []any, error) {
	q := psql.Select(slotColumns...).From(r.table()).OrderBy(slotOrder...)
	if where != nil {
		q = q.Where(where)
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q.ToSql()
}

func dateRangeWhere(startDate, endDate string) (sq.Sqlizer, error) {
	and := sq.And{}
	if startDate != "" {
		d, err := parseDate(startDate)
		if err != nil {
			return nil, err
		}
		and = append(and, sq.GtOrEq{"date": d})
	}
	if endDate != "" {
		d, err := parseDate(endDate)
		if err != nil {
			return nil, err
		}
		and = append(and, sq.LtOrEq{"date": d})
	}
	if len(and) == 0 {
		return nil, nil
	}
	return and, nil
}

func (r *SlotPostgresRepository) overlapWhere(date, startTime, endTime, excludeID string) (sq.Sqlizer, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	// intervalo semiaberto: encostar não conflita
	and := sq.And{
		sq.Eq{"date": d},
		// sq.Lt chamaria Value() e mandaria texto; Expr mantém o pgtype.Time
		sq.Expr("start_time < ?", pgClock(endTime)),
		sq.Expr("end_time > ?", pgClock(startTime)),
	}
	if excludeID != "" {
		and = append(and, sq.NotEq{"id": excludeID})
	}
	return and, nil
}

func (r *SlotPostgresRepository) query(ctx context.Context, op string, sql string, args []any) ([]slot.Slot, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("slots postgres: %s: %w", op, err)
	}
	defer rows.Close()

	out := make([]slot.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("slots postgres: %s: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("slots postgres: %s: %w", op, err)
	}
	return out, nil
}

func scanSlot(row pgx.Row) (slot.Slot, error) {
	var (
		s    slot.Slot
		meta []byte
	)
	if err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime, &meta); err != nil {
		return slot.Slot{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &s.Metadata); err != nil {
			return slot.Slot{}, err
		}
	}
	return s, nil
}

// ===============================
// Repository
// ===============================

func (r *SlotPostgresRepository) Save(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	out, err := r.SaveMany(ctx, []slot.Slot{s})
	if err != nil {
		return slot.Slot{}, err
	}
	return out[0], nil
}

// SaveMany upserts every slot inside one transaction.
func (r *SlotPostgresRepository) SaveMany(ctx context.Context, slots []slot.Slot) ([]slot.Slot, error) {
	if err := r.Init(ctx); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []slot.Slot{}, nil
	}

	out := make([]slot.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, cloneSlot(ensureID(s)))
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("slots postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := 0; i < len(out); i += upsertChunk {
		end := min(i+upsertChunk, len(out))

		sql, args, err := r.upsertSQL(out[i:end])
		if err != nil {
			return nil, fmt.Errorf("slots postgres: save: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("slots postgres: save: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("slots postgres: commit: %w", err)
	}
	return out, nil
}

func (r *SlotPostgresRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	sql, args, err := r.listSQL(sq.Eq{"id": id}, 0, 0)
	if err != nil {
		return nil, err
	}

	s, err := scanSlot(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slots postgres: get: %w", err)
	}
	return &s, nil
}

func (r *SlotPostgresRepository) GetByDate(ctx context.Context, date string) ([]slot.Slot, error) {
	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.listSQL(sq.Eq{"date": d}, 0, 0)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "get by date", sql, args)
}

func (r *SlotPostgresRepository) GetByDateRange(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]slot.Slot, error) {

	return r.GetAll(ctx, slot.QueryOptions{StartDate: startDate, EndDate: endDate})
}

func (r *SlotPostgresRepository) GetAll(ctx context.Context, opts slot.QueryOptions) ([]slot.Slot, error) {
	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	where, err := dateRangeWhere(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.listSQL(where, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "list", sql, args)
}

func (r *SlotPostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.delete(ctx, sq.Eq{"id": id})
	return n > 0, err
}

func (r *SlotPostgresRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	d, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	return r.delete(ctx, sq.Eq{"date": d})
}

func (r *SlotPostgresRepository) delete(ctx context.Context, where sq.Sqlizer) (int, error) {
	if err := r.Init(ctx); err != nil {
		return 0, err
	}

	sql, args, err := psql.Delete(r.table()).Where(where).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("slots postgres: delete: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *SlotPostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	if err := r.Init(ctx); err != nil {
		return false, err
	}

	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+r.table()+` WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("slots postgres: exists: %w", err)
	}
	return ok, nil
}

func (r *SlotPostgresRepository) Count(ctx context.Context, date string) (int, error) {
	if err := r.Init(ctx); err != nil {
		return 0, err
	}

	q := psql.Select("COUNT(*)").From(r.table())
	if date != "" {
		d, err := parseDate(date)
		if err != nil {
			return 0, err
		}
		q = q.Where(sq.Eq{"date": d})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("slots postgres: count: %w", err)
	}
	return n, nil
}

func (r *SlotPostgresRepository) Clear(ctx context.Context) error {
	if err := r.Init(ctx); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM `+r.table()); err != nil {
		return fmt.Errorf("slots postgres: clear: %w", err)
	}
	return nil
}

func (r *SlotPostgresRepository) FindOverlappingSlots(
	ctx context.Context,
	date string,
	startTime string,
	endTime string,
	excludeID string,
) ([]slot.Slot, error) {

	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	where, err := r.overlapWhere(date, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.listSQL(where, 0, 0)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "overlap", sql, args)
}

// DailyStats aggregates in the database.
func (r *SlotPostgresRepository) DailyStats(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]slot.DailyStat, error) {

	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	q := psql.Select(
		"to_char(date, 'YYYY-MM-DD')",
		"COUNT(*)",
		"COALESCE(SUM(EXTRACT(EPOCH FROM (end_time - start_time)) / 60), 0)::int",
	).From(r.table()).GroupBy("date").OrderBy("date")

	where, err := dateRangeWhere(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("slots postgres: stats: %w", err)
	}
	defer rows.Close()

	out := make([]slot.DailyStat, 0)
	for rows.Next() {
		var st slot.DailyStat
		if err := rows.Scan(&st.Date, &st.SlotCount, &st.TotalMinutes); err != nil {
			return nil, fmt.Errorf("slots postgres: stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Compile-time check
var (
	_ slot.Repository         = (*SlotPostgresRepository)(nil)
	_ slot.BatchSaver         = (*SlotPostgresRepository)(nil)
	_ slot.DailyStatsProvider = (*SlotPostgresRepository)(nil)
)
