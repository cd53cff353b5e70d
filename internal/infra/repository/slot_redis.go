package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

type RedisOptions struct {
	KeyPrefix       string // default "slot:"
	DateIndexPrefix string // default "slots:date:"

	// TTL expires slots after the given duration. Zero keeps them forever.
	TTL time.Duration
}

const scanCount = 100

// SlotRedisRepository stores each slot as JSON under <prefix><id> and keeps
// one set of ids per date. Redis has no range query: date ranges enumerate
// the index keys with SCAN. Like the memory adapter it has no exclusion
// constraint of its own.
type SlotRedisRepository struct {
	client redis.UniversalClient
	opts   RedisOptions
}

func NewSlotRedisRepository(client redis.UniversalClient, opts RedisOptions) *SlotRedisRepository {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "slot:"
	}
	if opts.DateIndexPrefix == "" {
		opts.DateIndexPrefix = "slots:date:"
	}
	return &SlotRedisRepository{client: client, opts: opts}
}

func (r *SlotRedisRepository) slotKey(id string) string {
	return r.opts.KeyPrefix + id
}

func (r *SlotRedisRepository) dateKey(date string) string {
	return r.opts.DateIndexPrefix + date
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *SlotRedisRepository) Save(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	out, err := r.SaveMany(ctx, []slot.Slot{s})
	if err != nil {
		return slot.Slot{}, err
	}
	return out[0], nil
}

// SaveMany writes every slot in one MULTI/EXEC.
func (r *SlotRedisRepository) SaveMany(ctx context.Context, slots []slot.Slot) ([]slot.Slot, error) {
	if len(slots) == 0 {
		return []slot.Slot{}, nil
	}

	out := make([]slot.Slot, 0, len(slots))
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		s = cloneSlot(ensureID(s))
		out = append(out, s)
		keys = append(keys, r.slotKey(s.ID))
	}

	// datas antigas, para tirar o id do índice se o slot mudou de dia
	prev, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("slots redis: save: %w", err)
	}

	payloads := make([][]byte, len(out))
	for i, s := range out {
		if payloads[i], err = json.Marshal(s); err != nil {
			return nil, fmt.Errorf("slots redis: save: %w", err)
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, s := range out {
			if old, ok := decodeSlot(prev[i]); ok && old.Date != s.Date {
				pipe.SRem(ctx, r.dateKey(old.Date), s.ID)
			}

			pipe.Set(ctx, keys[i], payloads[i], r.opts.TTL)
			pipe.SAdd(ctx, r.dateKey(s.Date), s.ID)
			if r.opts.TTL > 0 {
				pipe.Expire(ctx, r.dateKey(s.Date), r.opts.TTL)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("slots redis: save: %w", err)
	}
	return out, nil
}

func (r *SlotRedisRepository) Delete(ctx context.Context, id string) (bool, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil || s == nil {
		return false, err
	}

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.slotKey(id))
		pipe.SRem(ctx, r.dateKey(s.Date), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("slots redis: delete: %w", err)
	}
	return del.Val() > 0, nil
}

func (r *SlotRedisRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	ids, err := r.client.SMembers(ctx, r.dateKey(date)).Result()
	if err != nil {
		return 0, fmt.Errorf("slots redis: delete by date: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.slotKey(id))
	}

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		pipe.Del(ctx, r.dateKey(date))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("slots redis: delete by date: %w", err)
	}
	return int(del.Val()), nil
}

// Clear removes every slot and index key under the configured prefixes.
func (r *SlotRedisRepository) Clear(ctx context.Context) error {
	for _, pattern := range []string{r.opts.KeyPrefix + "*", r.opts.DateIndexPrefix + "*"} {
		err := r.scan(ctx, pattern, func(keys []string) error {
			return r.client.Del(ctx, keys...).Err()
		})
		if err != nil {
			return fmt.Errorf("slots redis: clear: %w", err)
		}
	}
	return nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *SlotRedisRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	raw, err := r.client.Get(ctx, r.slotKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slots redis: get: %w", err)
	}

	var s slot.Slot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("slots redis: decode %s: %w", id, err)
	}
	return &s, nil
}

// GetByDate resolves the date index and prunes ids whose value expired.
func (r *SlotRedisRepository) GetByDate(ctx context.Context, date string) ([]slot.Slot, error) {
	ids, err := r.client.SMembers(ctx, r.dateKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("slots redis: get by date: %w", err)
	}
	if len(ids) == 0 {
		return []slot.Slot{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.slotKey(id))
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("slots redis: get by date: %w", err)
	}

	out := make([]slot.Slot, 0, len(vals))
	stale := make([]any, 0)
	for i, v := range vals {
		s, ok := decodeSlot(v)
		if !ok || s.Date != date {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, s)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.dateKey(date), stale...).Err(); err != nil {
			return nil, fmt.Errorf("slots redis: prune index: %w", err)
		}
	}

	sortSlots(out)
	return out, nil
}

func (r *SlotRedisRepository) GetByDateRange(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]slot.Slot, error) {

	dates, err := r.indexedDates(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	out := make([]slot.Slot, 0)
	for _, date := range dates {
		slots, err := r.GetByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		out = append(out, slots...)
	}

	sortSlots(out)
	return out, nil
}

// indexedDates lists the dates that have an index key inside the range.
func (r *SlotRedisRepository) indexedDates(ctx context.Context, startDate, endDate string) ([]string, error) {
	dates := make([]string, 0)

	err := r.scan(ctx, r.opts.DateIndexPrefix+"*", func(keys []string) error {
		for _, k := range keys {
			date := strings.TrimPrefix(k, r.opts.DateIndexPrefix)
			if slot.IsValidDate(date) && inDateRange(date, startDate, endDate) {
				dates = append(dates, date)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("slots redis: scan dates: %w", err)
	}
	return dates, nil
}

func (r *SlotRedisRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.slotKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("slots redis: exists: %w", err)
	}
	return n > 0, nil
}

func (r *SlotRedisRepository) GetAll(ctx context.Context, opts slot.QueryOptions) ([]slot.Slot, error) {
	all, err := r.GetByDateRange(ctx, opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	return paginate(all, opts.Offset, opts.Limit), nil
}

func (r *SlotRedisRepository) Count(ctx context.Context, date string) (int, error) {
	if date != "" {
		slots, err := r.GetByDate(ctx, date)
		return len(slots), err
	}

	n := 0
	err := r.scan(ctx, r.opts.KeyPrefix+"*", func(keys []string) error {
		for _, k := range keys {
			// prefixes may nest ("slots:" vs "slots:date:")
			if !r.isIndexKey(k) {
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("slots redis: count: %w", err)
	}
	return n, nil
}

func (r *SlotRedisRepository) FindOverlappingSlots(
	ctx context.Context,
	date string,
	startTime string,
	endTime string,
	excludeID string,
) ([]slot.Slot, error) {

	existing, err := r.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	probe := slot.Slot{Date: date, StartTime: startTime, EndTime: endTime}
	return slot.FilterOverlapping(existing, probe, excludeID), nil
}

func (r *SlotRedisRepository) isIndexKey(key string) bool {
	return strings.HasPrefix(key, r.opts.DateIndexPrefix) && slot.IsValidDate(strings.TrimPrefix(key, r.opts.DateIndexPrefix))
}

// scan walks keys matching pattern with SCAN instead of KEYS.
func (r *SlotRedisRepository) scan(ctx context.Context, pattern string, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func decodeSlot(v any) (slot.Slot, bool) {
	raw, ok := v.(string)
	if !ok {
		return slot.Slot{}, false
	}
	var s slot.Slot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return slot.Slot{}, false
	}
	return s, true
}

// Compile-time check
var (
	_ slot.Repository = (*SlotRedisRepository)(nil)
	_ slot.BatchSaver = (*SlotRedisRepository)(nil)
)
