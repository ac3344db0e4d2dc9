package app

import (
	"context"
	"log"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

// CalendarStore persists one capacity counter per (resource, day).
// AdjustSlots must be atomic per entry: a decrement that would drive the
// counter below zero fails as a whole instead of being applied partially.
type CalendarStore interface {
	GetOrCreate(ctx context.Context, resourceID string, day time.Time, defaultSlots int) (domain.CalendarEntry, error)
	AdjustSlots(ctx context.Context, resourceID string, day time.Time, delta int) error
	Range(ctx context.Context, resourceID string, from, to time.Time) ([]domain.CalendarEntry, error)
}

// Intent is a verified soft claim: the calendar days a booking will
// decrement when its payment completes. Holding an Intent reserves
// nothing; capacity is only consumed by Commit.
type Intent struct {
	ResourceID   string
	Days         []time.Time
	Participants int
}

// Allocator turns a requested stay into calendar-day capacity checks and
// drives the commit/release pair around them.
type Allocator struct {
	calendar CalendarStore
	logger   *log.Logger
}

func NewAllocator(calendar CalendarStore, logger *log.Logger) *Allocator {
	if logger == nil {
		logger = log.Default()
	}
	return &Allocator{calendar: calendar, logger: logger}
}

// Plan verifies that every day from from to to (inclusive) can fit
// participants, materializing missing calendar days at defaultSlots. It
// fails on the first day that cannot, naming the day and what is left.
func (a *Allocator) Plan(ctx context.Context, resourceID string, from, to time.Time, participants, defaultSlots int) (Intent, error) {
	days := domain.DaysBetween(from, to)
	for _, day := range days {
		entry, err := a.calendar.GetOrCreate(ctx, resourceID, day, defaultSlots)
		if err != nil {
			return Intent{}, err
		}
		if entry.AvailableSlots < participants {
			return Intent{}, &domain.CapacityError{Date: day, Available: entry.AvailableSlots}
		}
	}
	return Intent{ResourceID: resourceID, Days: days, Participants: participants}, nil
}

// Commit decrements every day of the intent. Each decrement is a
// conditional update; when one is raced away by a concurrent commit, the
// days already taken are compensated back and ErrCommitRace is returned.
// A compensation failure leaves inventory decremented without a booking,
// so it is logged loudly rather than swallowed.
func (a *Allocator) Commit(ctx context.Context, in Intent) error {
	applied := make([]time.Time, 0, len(in.Days))
	for _, day := range in.Days {
		if err := a.calendar.AdjustSlots(ctx, in.ResourceID, day, -in.Participants); err != nil {
			for _, taken := range applied {
				if compErr := a.calendar.AdjustSlots(ctx, in.ResourceID, taken, in.Participants); compErr != nil {
					a.logger.Printf("FATAL: compensation failed for resource=%s day=%s: %v",
						in.ResourceID, taken.Format(time.DateOnly), compErr)
				}
			}
			if _, ok := err.(*domain.CapacityError); ok {
				return domain.ErrCommitRace
			}
			return err
		}
		applied = append(applied, day)
	}
	return nil
}

// Release gives back the capacity a committed booking held. Only called
// for bookings whose payment completed.
func (a *Allocator) Release(ctx context.Context, in Intent) error {
	for _, day := range in.Days {
		if err := a.calendar.AdjustSlots(ctx, in.ResourceID, day, in.Participants); err != nil {
			return err
		}
	}
	return nil
}

// Materialize returns the per-day availability for the range, creating
// missing days at defaultSlots so callers always see a full calendar.
func (a *Allocator) Materialize(ctx context.Context, resourceID string, from, to time.Time, defaultSlots int) ([]domain.CalendarEntry, error) {
	days := domain.DaysBetween(from, to)
	entries := make([]domain.CalendarEntry, 0, len(days))
	for _, day := range days {
		entry, err := a.calendar.GetOrCreate(ctx, resourceID, day, defaultSlots)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// calendarIntent rebuilds a booking's intent from its stored snapshot.
// Tour bookings store endDate = start + durationDays - 1, so the inclusive
// range covers exactly the days Plan checked.
func calendarIntent(b domain.Booking) Intent {
	return Intent{
		ResourceID:   b.HotelID,
		Days:         domain.DaysBetween(b.StartDate, b.EndDate),
		Participants: b.Participants,
	}
}
