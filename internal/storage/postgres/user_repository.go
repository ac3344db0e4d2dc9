package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository maintains the per-user booking mirror used for fast
// "my bookings" style checks without scanning the bookings table. A
// booking belongs to exactly one user, so the mirror is keyed by
// booking id alone for updates and removal.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) HasActiveBooking(ctx context.Context, userID string, now time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM bookings
    WHERE user_id = $1 AND status IN ('pending', 'confirmed') AND end_date >= $2
)`

	var exists bool
	if err := querier(ctx, r.pool).QueryRow(ctx, query, userID, domain.Day(now)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) MirrorBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO user_bookings (user_id, booking_id, status, payment_status)
VALUES ($1, $2, $3, $4)`

	_, err := querier(ctx, r.pool).Exec(ctx, stmt, b.UserID, b.ID, b.State.Status(), b.State.PaymentStatus())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("booking %s already mirrored: %w", b.ID, err)
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mirror booking: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateMirroredState(ctx context.Context, bookingID string, state domain.BookingState) error {
	const stmt = `
UPDATE user_bookings SET status = $2, payment_status = $3
WHERE booking_id = $1`

	tag, err := querier(ctx, r.pool).Exec(ctx, stmt, bookingID, state.Status(), state.PaymentStatus())
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update mirrored booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *UserRepository) RemoveMirror(ctx context.Context, bookingID string) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`DELETE FROM user_bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("remove mirrored booking: %w", err)
	}
	return nil
}
