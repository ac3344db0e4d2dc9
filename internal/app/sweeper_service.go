package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/clock"
	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

// SweepStore is the booking persistence the sweeper needs. ListExpired
// returns every non-cancelled booking whose effective end date (start +
// durationDays for tour bookings, stored endDate otherwise) is at or
// before now.
type SweepStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListExpired(ctx context.Context, now time.Time) ([]domain.Booking, error)
	GetForUpdate(ctx context.Context, id string) (domain.Booking, error)
	Delete(ctx context.Context, id string) error
}

// Sweeper reclaims inventory from bookings past their effective end date
// and hard-deletes them along with their profile mirror. Running it twice
// with no new expirations is a no-op.
type Sweeper struct {
	bookings  SweepStore
	users     UserStore
	allocator *Allocator
	clock     clock.Clock
	logger    *log.Logger
}

func NewSweeper(bookings SweepStore, users UserStore, allocator *Allocator, clk clock.Clock, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		bookings:  bookings,
		users:     users,
		allocator: allocator,
		clock:     clk,
		logger:    logger,
	}
}

// Sweep expires all eligible bookings and returns how many were removed.
// Each booking is handled in its own transaction under a row lock, so a
// racing cancellation or a second sweeper never releases inventory twice.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.bookings.ListExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, candidate := range expired {
		removed, err := s.expire(ctx, candidate.ID)
		if err != nil {
			s.logger.Printf("sweep booking %s: %v", candidate.ID, err)
			continue
		}
		if removed {
			count++
		}
	}
	return count, nil
}

func (s *Sweeper) expire(ctx context.Context, bookingID string) (bool, error) {
	removed := false
	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.bookings.GetForUpdate(txCtx, bookingID)
		if errors.Is(err, domain.ErrBookingNotFound) {
			// Another sweep already removed it.
			return nil
		}
		if err != nil {
			return err
		}
		if b.State == domain.StateCancelled {
			// Cancellation won the race and released any inventory.
			return nil
		}

		if b.State.Committed() && b.CalendarBacked() {
			if err := s.allocator.Release(txCtx, calendarIntent(b)); err != nil {
				return err
			}
		}
		// The mirror references the booking row, so it goes first.
		if err := s.users.RemoveMirror(txCtx, b.ID); err != nil {
			return err
		}
		if err := s.bookings.Delete(txCtx, b.ID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}
