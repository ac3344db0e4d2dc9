package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarRepository persists per-day capacity counters. Rows are created
// lazily on first touch and every mutation is a conditional update, so a
// counter can never be driven below zero by concurrent bookings.
type CalendarRepository struct {
	pool *pgxpool.Pool
}

func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

func (r *CalendarRepository) Get(ctx context.Context, resourceID string, day time.Time) (domain.CalendarEntry, error) {
	const query = `
SELECT resource_id, date, available_slots
FROM resource_calendar
WHERE resource_id = $1 AND date = $2`

	var e domain.CalendarEntry
	err := querier(ctx, r.pool).QueryRow(ctx, query, resourceID, domain.Day(day)).
		Scan(&e.ResourceID, &e.Date, &e.AvailableSlots)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CalendarEntry{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.CalendarEntry{}, domain.ErrCalendarEntryNotFound
		}
		return domain.CalendarEntry{}, fmt.Errorf("get calendar entry: %w", err)
	}
	e.Date = domain.Day(e.Date)
	return e, nil
}

// GetOrCreate returns the entry for the day, inserting it at defaultSlots
// when absent. The insert is idempotent under concurrency: two racing
// first touches produce exactly one row.
func (r *CalendarRepository) GetOrCreate(ctx context.Context, resourceID string, day time.Time, defaultSlots int) (domain.CalendarEntry, error) {
	const stmt = `
INSERT INTO resource_calendar (resource_id, date, available_slots)
VALUES ($1, $2, $3)
ON CONFLICT (resource_id, date) DO NOTHING`

	if _, err := querier(ctx, r.pool).Exec(ctx, stmt, resourceID, domain.Day(day), defaultSlots); err != nil {
		if isInvalidUUID(err) {
			return domain.CalendarEntry{}, domain.ErrInvalidID
		}
		return domain.CalendarEntry{}, fmt.Errorf("create calendar entry: %w", err)
	}
	return r.Get(ctx, resourceID, day)
}

// AdjustSlots applies delta atomically. A decrement that would leave the
// counter negative matches zero rows and is reported as a CapacityError
// with the day's current availability; nothing is applied partially.
func (r *CalendarRepository) AdjustSlots(ctx context.Context, resourceID string, day time.Time, delta int) error {
	const stmt = `
UPDATE resource_calendar
SET available_slots = available_slots + $3
WHERE resource_id = $1 AND date = $2 AND available_slots + $3 >= 0`

	tag, err := querier(ctx, r.pool).Exec(ctx, stmt, resourceID, domain.Day(day), delta)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("adjust slots: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	entry, err := r.Get(ctx, resourceID, day)
	if err != nil {
		return err
	}
	return &domain.CapacityError{Date: domain.Day(day), Available: entry.AvailableSlots}
}

// Range returns existing entries for [from, to] in date order. Absent
// days are not materialized here; callers wanting a full calendar go
// through GetOrCreate.
func (r *CalendarRepository) Range(ctx context.Context, resourceID string, from, to time.Time) ([]domain.CalendarEntry, error) {
	const query = `
SELECT resource_id, date, available_slots
FROM resource_calendar
WHERE resource_id = $1 AND date BETWEEN $2 AND $3
ORDER BY date`

	rows, err := querier(ctx, r.pool).Query(ctx, query, resourceID, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("range calendar: %w", err)
	}
	defer rows.Close()

	var entries []domain.CalendarEntry
	for rows.Next() {
		var e domain.CalendarEntry
		if err := rows.Scan(&e.ResourceID, &e.Date, &e.AvailableSlots); err != nil {
			return nil, fmt.Errorf("scan calendar entry: %w", err)
		}
		e.Date = domain.Day(e.Date)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
