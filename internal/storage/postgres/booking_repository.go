package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, user_id, COALESCE(tour_id::text, ''), COALESCE(hotel_id::text, ''),
       start_date, end_date, participants, COALESCE(room_type, ''),
       status, payment_status, total_price, created_at`

// BookingRepository persists bookings. The stored status/payment_status
// pair is projected from the domain state on write and parsed back on
// read, so corrupt combinations surface instead of being guessed at.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) Create(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, user_id, tour_id, hotel_id, start_date, end_date,
                      participants, room_type, status, payment_status, total_price, created_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, '')::uuid, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12)`

	_, err := querier(ctx, r.pool).Exec(ctx, stmt,
		b.ID,
		b.UserID,
		b.TourID,
		b.HotelID,
		b.StartDate,
		b.EndDate,
		b.Participants,
		string(b.RoomType),
		b.State.Status(),
		b.State.PaymentStatus(),
		b.TotalPrice,
		b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("booking %s already exists: %w", b.ID, err)
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(querier(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetForUpdate locks the booking row for the rest of the transaction,
// serializing lifecycle transitions per booking.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.scanOne(querier(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return r.scanAll(rows)
}

func (r *BookingRepository) UpdateState(ctx context.Context, id string, state domain.BookingState) error {
	const stmt = `UPDATE bookings SET status = $2, payment_status = $3 WHERE id = $1`

	tag, err := querier(ctx, r.pool).Exec(ctx, stmt, id, state.Status(), state.PaymentStatus())
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update booking state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	_, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) SumConfirmedForTour(ctx context.Context, tourID string, from, to time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(participants), 0)
FROM bookings
WHERE tour_id = $1 AND status = 'confirmed' AND start_date <= $3 AND end_date >= $2`

	var total int
	if err := querier(ctx, r.pool).QueryRow(ctx, query, tourID, domain.Day(from), domain.Day(to)).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum confirmed participants: %w", err)
	}
	return total, nil
}

func (r *BookingRepository) ListConfirmedForTour(ctx context.Context, tourID string, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
FROM bookings
WHERE tour_id = $1 AND status = 'confirmed' AND start_date <= $3 AND end_date >= $2`

	rows, err := querier(ctx, r.pool).Query(ctx, query, tourID, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list confirmed bookings: %w", err)
	}
	return r.scanAll(rows)
}

// ListExpired returns non-cancelled bookings whose effective end date is
// at or before now. Tour bookings expire at start + durationDays (joined
// from the tour); hotel stays at their stored end date.
func (r *BookingRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	const query = `
SELECT b.id, b.user_id, COALESCE(b.tour_id::text, ''), COALESCE(b.hotel_id::text, ''),
       b.start_date, b.end_date, b.participants, COALESCE(b.room_type, ''),
       b.status, b.payment_status, b.total_price, b.created_at
FROM bookings b
LEFT JOIN tours t ON t.id = b.tour_id
WHERE b.status <> 'cancelled'
  AND (CASE WHEN b.tour_id IS NOT NULL
            THEN b.start_date + make_interval(days => t.duration_days)
            ELSE b.end_date::timestamp
       END) <= $1`

	rows, err := querier(ctx, r.pool).Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired bookings: %w", err)
	}
	return r.scanAll(rows)
}

func (r *BookingRepository) scanOne(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var status domain.Status
	var paymentStatus domain.PaymentStatus

	err := row.Scan(
		&b.ID, &b.UserID, &b.TourID, &b.HotelID,
		&b.StartDate, &b.EndDate, &b.Participants, &b.RoomType,
		&status, &paymentStatus, &b.TotalPrice, &b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("scan booking: %w", err)
	}

	b.State, err = domain.StateOf(status, paymentStatus)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking %s: status=%s payment=%s: %w", b.ID, status, paymentStatus, err)
	}
	b.StartDate = domain.Day(b.StartDate)
	b.EndDate = domain.Day(b.EndDate)
	return b, nil
}

func (r *BookingRepository) scanAll(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
